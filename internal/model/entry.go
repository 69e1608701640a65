package model

import (
	"fmt"
	"time"
)

// EntryKind tags a program entry variant.
type EntryKind string

const (
	KindMainStage     EntryKind = "main-stage"
	KindDanceWorkshop EntryKind = "dance-workshop"
	KindMusicWorkshop EntryKind = "music-workshop"
	KindTalk          EntryKind = "talk"
	KindAviatrixTalk  EntryKind = "aviatrix-talk"
	KindDanceShow     EntryKind = "dance-show"
)

// Entry is a program entry as authored by the program committee. Each kind
// carries only the fields it needs and knows how to become an Event.
type Entry interface {
	Kind() EntryKind
	EntryID() string
	Event() (Event, error)
}

// Slot is the time window shared by every entry kind.
type Slot struct {
	ID    string
	Title string
	Start time.Time
	End   time.Time
}

func (s Slot) EntryID() string { return s.ID }

// MainStageEntry is a main-stage slot (social dancing, concerts, the main
// evening program). Type defaults to TypeMain.
type MainStageEntry struct {
	Slot
	Type        EventType
	DJs         []DJ
	Hosts       []Host
	Description string
	Images      []string
}

func (MainStageEntry) Kind() EntryKind { return KindMainStage }

func (e MainStageEntry) Event() (Event, error) {
	typ := e.Type
	if typ == "" {
		typ = TypeMain
	}
	switch typ {
	case TypeMain, TypePerformance, TypeSocial:
	default:
		return Event{}, fmt.Errorf("%w: %q not allowed for %s entries", ErrUnknownEventType, typ, KindMainStage)
	}
	return NewEvent(EventParams{
		ID: e.ID, Title: e.Title, Start: e.Start, End: e.End,
		Area: AreaMainStage, Type: typ,
		DJs: e.DJs, Hosts: e.Hosts,
		Metadata: Metadata{Description: e.Description, Images: e.Images},
	})
}

// DanceWorkshopEntry is a taught class in the dance-workshops area.
type DanceWorkshopEntry struct {
	Slot
	Instructors  []Instructor
	Difficulty   Difficulty
	Style        string
	MaxAttendees int
	Description  string
	Requirements []string
}

func (DanceWorkshopEntry) Kind() EntryKind { return KindDanceWorkshop }

func (e DanceWorkshopEntry) Event() (Event, error) {
	var tags []string
	if e.Style != "" {
		tags = []string{e.Style}
	}
	p := EventParams{
		ID: e.ID, Title: e.Title, Start: e.Start, End: e.End,
		Area: AreaDanceWorkshops, Type: TypeWorkshop,
		Instructors: e.Instructors,
		Metadata: Metadata{
			Description:  e.Description,
			Difficulty:   e.Difficulty,
			Tags:         tags,
			Requirements: e.Requirements,
		},
	}
	if e.MaxAttendees > 0 {
		c, err := NewCapacity(e.MaxAttendees, 0)
		if err != nil {
			return Event{}, err
		}
		p.Capacity = &c
	}
	return NewEvent(p)
}

// MusicWorkshopEntry is an instrument or rhythm class in the music-workshops area.
type MusicWorkshopEntry struct {
	Slot
	Instructors  []Instructor
	Difficulty   Difficulty
	Instrument   string
	Description  string
	Requirements []string
}

func (MusicWorkshopEntry) Kind() EntryKind { return KindMusicWorkshop }

func (e MusicWorkshopEntry) Event() (Event, error) {
	var tags []string
	if e.Instrument != "" {
		tags = []string{e.Instrument}
	}
	return NewEvent(EventParams{
		ID: e.ID, Title: e.Title, Start: e.Start, End: e.End,
		Area: AreaMusicWorkshops, Type: TypeWorkshop,
		Instructors: e.Instructors,
		Metadata: Metadata{
			Description:  e.Description,
			Difficulty:   e.Difficulty,
			Tags:         tags,
			Requirements: e.Requirements,
		},
	})
}

// TalkEntry is a regular talk in the salsa-talks area.
type TalkEntry struct {
	Slot
	Presenters  []Presenter
	Description string
	Slides      []Slide
	Language    []string
}

func (TalkEntry) Kind() EntryKind { return KindTalk }

func (e TalkEntry) Event() (Event, error) {
	return NewEvent(EventParams{
		ID: e.ID, Title: e.Title, Start: e.Start, End: e.End,
		Area: AreaSalsaTalks, Type: TypeTalk,
		Presenters: e.Presenters,
		Metadata: Metadata{
			Description:  e.Description,
			Slides:       e.Slides,
			Language:     e.Language,
			Requirements: []string{"projector"},
		},
	})
}

// AviatrixTalkEntry is a talk built around a moderator, a guest and one
// record under discussion.
type AviatrixTalkEntry struct {
	Slot
	Moderator   Presenter
	Guest       Presenter
	Record      string
	Artist      string
	Description string
	Slides      []Slide
}

func (AviatrixTalkEntry) Kind() EntryKind { return KindAviatrixTalk }

func (e AviatrixTalkEntry) Event() (Event, error) {
	var presenters []Presenter
	for _, p := range []Presenter{e.Moderator, e.Guest} {
		if p.ID != "" {
			presenters = append(presenters, p)
		}
	}
	var tags []string
	if e.Record != "" {
		tags = append(tags, e.Record)
	}
	if e.Artist != "" {
		tags = append(tags, e.Artist)
	}
	return NewEvent(EventParams{
		ID: e.ID, Title: e.Title, Start: e.Start, End: e.End,
		Area: AreaSalsaTalks, Type: TypeTalk,
		Presenters: presenters,
		Metadata: Metadata{
			Description:  e.Description,
			Slides:       e.Slides,
			Tags:         tags,
			Requirements: []string{"projector", "turntable"},
		},
	})
}

// DanceShowEntry is a show performed inside the main-stage slot named by ParentID.
type DanceShowEntry struct {
	Slot
	ParentID    string
	Performers  []string
	Description string
}

func (DanceShowEntry) Kind() EntryKind { return KindDanceShow }

func (e DanceShowEntry) Event() (Event, error) {
	r, err := NewTimeRange(e.Start, e.End)
	if err != nil {
		return Event{}, err
	}
	show := DanceShow{ID: e.ID, Title: e.Title, ParentEventID: e.ParentID, Range: r, Performers: e.Performers}
	return show.Event(e.Description)
}

// Show resolves the entry against its parent event.
func (e DanceShowEntry) Show(parent Event) (DanceShow, error) {
	return NewDanceShow(e.ID, e.Title, parent, e.Start, e.End.Sub(e.Start), e.Performers)
}
