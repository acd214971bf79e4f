package surveys

import (
	"testing"

	"github.com/glimpsehq/glimpse-go/model"
	"github.com/glimpsehq/glimpse-go/storage"
)

func triggeredSurvey(id, event string) model.Survey {
	survey := activeSurvey(id)
	survey.Conditions = &model.Conditions{
		Events: &model.TriggerList{Values: []model.Trigger{{Name: event}}},
	}
	return survey
}

func TestTrackerActivation(t *testing.T) {
	tracker := NewTracker(storage.NewMemory())
	tracker.Register([]model.Survey{
		triggeredSurvey("1", "signup completed"),
		triggeredSurvey("2", "plan upgraded"),
	})

	tracker.OnEvent("signup completed")

	if !tracker.Activated("1") {
		t.Error("survey 1 not activated by its event")
	}
	if tracker.Activated("2") {
		t.Error("survey 2 activated by someone else's event")
	}
}

func TestTrackerActions(t *testing.T) {
	survey := activeSurvey("1")
	survey.Conditions = &model.Conditions{
		Actions: &model.TriggerList{Values: []model.Trigger{{Name: "clicked upgrade"}}},
	}

	tracker := NewTracker(storage.NewMemory())
	tracker.Register([]model.Survey{survey})

	tracker.OnAction("clicked upgrade")
	if !tracker.Activated("1") {
		t.Error("survey not activated by its action")
	}
}

// Activation state has its own lifecycle: it survives both a list refresh
// and a restart sharing the same storage.
func TestTrackerPersistence(t *testing.T) {
	local := storage.NewMemory()

	tracker := NewTracker(local)
	tracker.Register([]model.Survey{triggeredSurvey("1", "signup completed")})
	tracker.OnEvent("signup completed")

	tracker.Register([]model.Survey{})
	if !tracker.Activated("1") {
		t.Error("activation lost on list refresh")
	}

	restarted := NewTracker(local)
	if !restarted.Activated("1") {
		t.Error("activation lost across restart")
	}
}

func TestTrackerReset(t *testing.T) {
	local := storage.NewMemory()
	tracker := NewTracker(local)
	tracker.Register([]model.Survey{triggeredSurvey("1", "signup completed")})
	tracker.OnEvent("signup completed")

	tracker.Reset()
	if err := storage.Reset(local); err != nil {
		t.Fatalf("storage reset: %v", err)
	}

	if tracker.Activated("1") {
		t.Error("activation survived reset")
	}
}
