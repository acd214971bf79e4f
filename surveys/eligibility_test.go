package surveys

import (
	"testing"
	"time"

	"github.com/glimpsehq/glimpse-go/model"
)

func ids(list []model.Survey) (out []string) {
	for _, survey := range list {
		out = append(out, survey.ID)
	}
	return
}

func matchingIDs(t *testing.T, store *Store) []string {
	t.Helper()
	cb, list, result := collect(t)
	store.GetActiveMatchingSurveys(cb, false)
	if result.Err != nil {
		t.Fatalf("GetActiveMatchingSurveys: %v", result.Err)
	}
	return ids(*list)
}

func TestActiveWindowFilter(t *testing.T) {
	end := model.NewTimestamp(time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC))

	running := activeSurvey("running")
	stopped := activeSurvey("stopped")
	stopped.EndDate = end
	draft := model.Survey{ID: "draft", Name: "Draft"}

	handler, _ := serveList([]model.Survey{running, stopped, draft})
	store := newTestStore(t, handler, Options{})

	got := matchingIDs(t, store)
	if len(got) != 1 || got[0] != "running" {
		t.Errorf("active surveys = %v, want [running]", got)
	}
}

func TestURLCondition(t *testing.T) {
	survey := activeSurvey("1")
	survey.Conditions = &model.Conditions{URL: "example.com"}

	tests := []struct {
		name string
		env  Environment
		want int
	}{
		{"current URL contains target", fakeEnv{url: "https://example.com/pricing"}, 1},
		{"current URL does not contain target", fakeEnv{url: "https://other.io/"}, 0},
		{"current URL unknown fails closed", fakeEnv{}, 0},
		{"no environment fails closed", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := serveList([]model.Survey{survey})
			store := newTestStore(t, handler, Options{Environment: tt.env})
			if got := matchingIDs(t, store); len(got) != tt.want {
				t.Errorf("matching = %v, want %d surveys", got, tt.want)
			}
		})
	}
}

func TestURLConditionMatchTypes(t *testing.T) {
	regex := activeSurvey("regex")
	regex.Conditions = &model.Conditions{URL: `^https://[a-z]+\.example\.com`, URLMatchType: "regex"}
	not := activeSurvey("not")
	not.Conditions = &model.Conditions{URL: "checkout", URLMatchType: "not_contains"}

	handler, _ := serveList([]model.Survey{regex, not})
	store := newTestStore(t, handler, Options{
		Environment: fakeEnv{url: "https://app.example.com/settings"},
	})

	got := matchingIDs(t, store)
	if len(got) != 2 {
		t.Errorf("matching = %v, want both surveys", got)
	}
}

func TestUnconditionedSurveyMatchesAnywhere(t *testing.T) {
	handler, _ := serveList([]model.Survey{activeSurvey("1")})
	store := newTestStore(t, handler, Options{})

	if got := matchingIDs(t, store); len(got) != 1 {
		t.Errorf("matching = %v, want unconditioned survey to pass", got)
	}
}

func TestSelectorCondition(t *testing.T) {
	survey := activeSurvey("1")
	survey.Conditions = &model.Conditions{Selector: "#feedback"}

	handler, _ := serveList([]model.Survey{survey})

	present := newTestStore(t, handler, Options{
		Environment: fakeEnv{selectors: map[string]bool{"#feedback": true}},
	})
	if got := matchingIDs(t, present); len(got) != 1 {
		t.Errorf("selector present: matching = %v, want 1", got)
	}

	handler2, _ := serveList([]model.Survey{survey})
	absent := newTestStore(t, handler2, Options{Environment: fakeEnv{}})
	if got := matchingIDs(t, absent); len(got) != 0 {
		t.Errorf("selector absent: matching = %v, want 0", got)
	}
}

func TestDeviceTypeCondition(t *testing.T) {
	survey := activeSurvey("1")
	survey.Conditions = &model.Conditions{DeviceTypes: []string{"Mobile"}}

	tests := []struct {
		name   string
		device string
		want   int
	}{
		{"matching device", "Mobile", 1},
		{"other device", "Desktop", 0},
		{"unknown device fails closed", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := serveList([]model.Survey{survey})
			store := newTestStore(t, handler, Options{Environment: fakeEnv{device: tt.device}})
			if got := matchingIDs(t, store); len(got) != tt.want {
				t.Errorf("matching = %v, want %d", got, tt.want)
			}
		})
	}
}

func TestAllConditionsMustHold(t *testing.T) {
	survey := activeSurvey("1")
	survey.Conditions = &model.Conditions{
		URL:         "example.com",
		Selector:    "#feedback",
		DeviceTypes: []string{"Desktop"},
	}

	handler, _ := serveList([]model.Survey{survey})
	store := newTestStore(t, handler, Options{
		Environment: fakeEnv{
			url:    "https://example.com/",
			device: "Desktop",
			// selector missing
		},
	})

	if got := matchingIDs(t, store); len(got) != 0 {
		t.Errorf("matching = %v, want 0 with one condition failing", got)
	}
}
