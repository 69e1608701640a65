package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntries_Event(t *testing.T) {
	t.Parallel()

	slot := func(id string, sh, eh int) Slot {
		return Slot{ID: id, Title: "title." + id, Start: at(sh, 0), End: at(eh, 0)}
	}
	moderator := Presenter{ID: "mod", Name: "Moderator"}
	guest := Presenter{ID: "guest", Name: "Guest"}

	tests := []struct {
		name     string
		entry    Entry
		kind     EntryKind
		area     Area
		typ      EventType
		checkFun func(t *testing.T, ev Event)
	}{
		{
			name:  "main stage defaults to main",
			entry: MainStageEntry{Slot: slot("main", 20, 23), DJs: []DJ{{ID: "dj"}}},
			kind:  KindMainStage, area: AreaMainStage, typ: TypeMain,
		},
		{
			name:  "main stage social",
			entry: MainStageEntry{Slot: slot("social", 20, 23), Type: TypeSocial},
			kind:  KindMainStage, area: AreaMainStage, typ: TypeSocial,
		},
		{
			name: "dance workshop carries capacity",
			entry: DanceWorkshopEntry{
				Slot: slot("dw", 10, 11), Instructors: []Instructor{{ID: "i1"}},
				Difficulty: DifficultyBeginner, Style: "cuban", MaxAttendees: 40,
			},
			kind: KindDanceWorkshop, area: AreaDanceWorkshops, typ: TypeWorkshop,
			checkFun: func(t *testing.T, ev Event) {
				require.NotNil(t, ev.Capacity)
				assert.Equal(t, 40, ev.Capacity.Max())
				assert.Equal(t, []string{"cuban"}, ev.Metadata.Tags)
			},
		},
		{
			name:  "music workshop",
			entry: MusicWorkshopEntry{Slot: slot("mw", 10, 11), Instrument: "congas"},
			kind:  KindMusicWorkshop, area: AreaMusicWorkshops, typ: TypeWorkshop,
		},
		{
			name:  "talk",
			entry: TalkEntry{Slot: slot("talk", 14, 15), Presenters: []Presenter{moderator}},
			kind:  KindTalk, area: AreaSalsaTalks, typ: TypeTalk,
		},
		{
			name: "aviatrix talk merges moderator and guest",
			entry: AviatrixTalkEntry{
				Slot: slot("avi", 16, 17), Moderator: moderator, Guest: guest,
				Record: "Siembra", Artist: "Willie Colon & Ruben Blades",
			},
			kind: KindAviatrixTalk, area: AreaSalsaTalks, typ: TypeTalk,
			checkFun: func(t *testing.T, ev Event) {
				require.Len(t, ev.Presenters, 2)
				assert.Equal(t, "mod", ev.Presenters[0].ID)
				assert.Contains(t, ev.Metadata.Tags, "Siembra")
			},
		},
		{
			name:  "dance show",
			entry: DanceShowEntry{Slot: slot("show", 21, 22), ParentID: "main"},
			kind:  KindDanceShow, area: AreaMainStage, typ: TypeDanceShow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.entry.Kind())
			ev, err := tt.entry.Event()
			require.NoError(t, err)
			assert.Equal(t, tt.entry.EntryID(), ev.ID)
			assert.Equal(t, tt.area, ev.Area)
			assert.Equal(t, tt.typ, ev.Type)
			if tt.checkFun != nil {
				tt.checkFun(t, ev)
			}
		})
	}
}

func TestMainStageEntry_RejectsWorkshopType(t *testing.T) {
	_, err := MainStageEntry{
		Slot: Slot{ID: "x", Title: "x", Start: at(10, 0), End: at(11, 0)},
		Type: TypeWorkshop,
	}.Event()
	assert.ErrorIs(t, err, ErrUnknownEventType)
}
