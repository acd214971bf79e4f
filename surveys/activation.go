package surveys

import (
	"sync"

	"github.com/glimpsehq/glimpse-go/log"
	"github.com/glimpsehq/glimpse-go/model"
	"github.com/glimpsehq/glimpse-go/storage"
)

// Tracker records which event/action-triggered surveys have fired for this
// visitor. Records are keyed by survey id and persisted locally, so they
// outlive the survey list they were built from.
type Tracker struct {
	local storage.Store

	mu        sync.Mutex
	byEvent   map[string][]string
	byAction  map[string][]string
	activated map[string]bool
}

func NewTracker(local storage.Store) *Tracker {
	return &Tracker{
		local:     local,
		byEvent:   map[string][]string{},
		byAction:  map[string][]string{},
		activated: map[string]bool{},
	}
}

// Register rebuilds the trigger index from a freshly fetched survey list.
// Only surveys declaring event/action triggers are indexed; activation
// records for surveys no longer in the list are kept.
func (t *Tracker) Register(list []model.Survey) {
	byEvent := map[string][]string{}
	byAction := map[string][]string{}
	for _, survey := range list {
		if survey.Conditions == nil {
			continue
		}
		for _, name := range survey.Conditions.EventNames() {
			byEvent[name] = append(byEvent[name], survey.ID)
		}
		for _, name := range survey.Conditions.ActionNames() {
			byAction[name] = append(byAction[name], survey.ID)
		}
	}

	t.mu.Lock()
	t.byEvent = byEvent
	t.byAction = byAction
	t.mu.Unlock()
}

// OnEvent activates every registered survey triggered by the event.
func (t *Tracker) OnEvent(name string) {
	t.mu.Lock()
	ids := t.byEvent[name]
	t.mu.Unlock()
	t.activate(ids)
}

// OnAction activates every registered survey triggered by the action.
func (t *Tracker) OnAction(name string) {
	t.mu.Lock()
	ids := t.byAction[name]
	t.mu.Unlock()
	t.activate(ids)
}

func (t *Tracker) activate(ids []string) {
	for _, id := range ids {
		t.mu.Lock()
		t.activated[id] = true
		t.mu.Unlock()

		err := t.local.Set(storage.PrefixSurveyActivated+id, "true")
		if err != nil {
			log.Warnf("surveys.activation: %s", err)
		}
	}
}

// Activated reports whether the survey has been triggered for this visitor,
// in this session or a persisted earlier one.
func (t *Tracker) Activated(id string) bool {
	t.mu.Lock()
	hit := t.activated[id]
	t.mu.Unlock()
	if hit {
		return true
	}

	_, ok, err := t.local.Get(storage.PrefixSurveyActivated + id)
	if err != nil {
		log.Warnf("surveys.activation: %s", err)
	}
	return ok
}

// Reset drops the in-memory activation state. The persisted markers are
// cleared by storage.Reset.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.activated = map[string]bool{}
	t.mu.Unlock()
}
