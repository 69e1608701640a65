package program

import (
	"fmt"

	"festsched/internal/model"
	"festsched/internal/validation"
)

type builder struct {
	instructors map[string]model.Instructor
	presenters  map[string]model.Presenter
	hosts       map[string]model.Host
	djs         map[string]model.DJ
}

func newBuilder(p People) (*builder, error) {
	var (
		b   builder
		err error
	)
	if b.instructors, err = index("instructor", p.Instructors, func(x model.Instructor) string { return x.ID }); err != nil {
		return nil, err
	}
	if b.presenters, err = index("presenter", p.Presenters, func(x model.Presenter) string { return x.ID }); err != nil {
		return nil, err
	}
	if b.hosts, err = index("host", p.Hosts, func(x model.Host) string { return x.ID }); err != nil {
		return nil, err
	}
	if b.djs, err = index("dj", p.DJs, func(x model.DJ) string { return x.ID }); err != nil {
		return nil, err
	}
	return &b, nil
}

func index[T any](role string, people []T, id func(T) string) (map[string]T, error) {
	out := make(map[string]T, len(people))
	for i, x := range people {
		key := id(x)
		if key == "" {
			return nil, fmt.Errorf("%w: %s #%d", ErrMissingPersonID, role, i+1)
		}
		out[key] = x
	}
	return out, nil
}

func lookup[T any](registry map[string]T, role, entryID string, ids []string) ([]T, error) {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		v, ok := registry[id]
		if !ok {
			return nil, &UnknownPersonError{Role: role, ID: id, EntryID: entryID}
		}
		out = append(out, v)
	}
	return out, nil
}

func (b *builder) presenter(entryID, id string) (model.Presenter, error) {
	if id == "" {
		return model.Presenter{}, nil
	}
	ps, err := lookup(b.presenters, "presenter", entryID, []string{id})
	if err != nil {
		return model.Presenter{}, err
	}
	return ps[0], nil
}

func (b *builder) entry(d entryDoc, slot model.Slot) (model.Entry, error) {
	switch d.Kind {
	case model.KindMainStage:
		djs, err := lookup(b.djs, "dj", d.ID, d.DJs)
		if err != nil {
			return nil, err
		}
		hosts, err := lookup(b.hosts, "host", d.ID, d.Hosts)
		if err != nil {
			return nil, err
		}
		return model.MainStageEntry{
			Slot: slot, Type: d.Type, DJs: djs, Hosts: hosts,
			Description: d.Description, Images: d.Images,
		}, nil

	case model.KindDanceWorkshop:
		ins, err := lookup(b.instructors, "instructor", d.ID, d.Instructors)
		if err != nil {
			return nil, err
		}
		return model.DanceWorkshopEntry{
			Slot: slot, Instructors: ins, Difficulty: d.Difficulty, Style: d.Style,
			MaxAttendees: d.MaxAttendees, Description: d.Description, Requirements: d.Requirements,
		}, nil

	case model.KindMusicWorkshop:
		ins, err := lookup(b.instructors, "instructor", d.ID, d.Instructors)
		if err != nil {
			return nil, err
		}
		return model.MusicWorkshopEntry{
			Slot: slot, Instructors: ins, Difficulty: d.Difficulty, Instrument: d.Instrument,
			Description: d.Description, Requirements: d.Requirements,
		}, nil

	case model.KindTalk:
		ps, err := lookup(b.presenters, "presenter", d.ID, d.Presenters)
		if err != nil {
			return nil, err
		}
		return model.TalkEntry{
			Slot: slot, Presenters: ps, Description: d.Description,
			Slides: d.Slides, Language: d.Language,
		}, nil

	case model.KindAviatrixTalk:
		mod, err := b.presenter(d.ID, d.Moderator)
		if err != nil {
			return nil, err
		}
		guest, err := b.presenter(d.ID, d.Guest)
		if err != nil {
			return nil, err
		}
		return model.AviatrixTalkEntry{
			Slot: slot, Moderator: mod, Guest: guest, Record: d.Record, Artist: d.Artist,
			Description: d.Description, Slides: d.Slides,
		}, nil

	case model.KindDanceShow:
		return model.DanceShowEntry{
			Slot: slot, ParentID: d.Parent, Performers: d.Performers, Description: d.Description,
		}, nil
	}
	return nil, fmt.Errorf("entry %s: %w %q", d.ID, ErrUnknownKind, d.Kind)
}

// record is the raw-row view of an entry, as ValidateTimeSlotData expects it.
func (b *builder) record(d entryDoc, date string, entry model.Entry) validation.TimeSlotRecord {
	rec := validation.TimeSlotRecord{
		ID:           d.ID,
		Day:          date,
		StartTime:    d.Start,
		EndTime:      d.End,
		Title:        d.Title,
		Description:  d.Description,
		Difficulty:   string(d.Difficulty),
		Images:       d.Images,
		Slides:       d.Slides,
		Requirements: d.Requirements,
	}
	switch e := entry.(type) {
	case model.MainStageEntry:
		rec.Area, rec.Type = string(model.AreaMainStage), string(model.TypeMain)
		if e.Type != "" {
			rec.Type = string(e.Type)
		}
		rec.DJs, rec.Hosts = e.DJs, e.Hosts
	case model.DanceWorkshopEntry:
		rec.Area, rec.Type = string(model.AreaDanceWorkshops), string(model.TypeWorkshop)
		rec.Instructors = e.Instructors
	case model.MusicWorkshopEntry:
		rec.Area, rec.Type = string(model.AreaMusicWorkshops), string(model.TypeWorkshop)
		rec.Instructors = e.Instructors
	case model.TalkEntry:
		rec.Area, rec.Type = string(model.AreaSalsaTalks), string(model.TypeTalk)
		rec.Presenters = e.Presenters
	case model.AviatrixTalkEntry:
		rec.Area, rec.Type = string(model.AreaSalsaTalks), string(model.TypeTalk)
		for _, p := range []model.Presenter{e.Moderator, e.Guest} {
			if p.ID != "" {
				rec.Presenters = append(rec.Presenters, p)
			}
		}
	case model.DanceShowEntry:
		rec.Area, rec.Type = string(model.AreaMainStage), string(model.TypeDanceShow)
	}
	return rec
}
