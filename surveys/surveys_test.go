package surveys

// Shared fixtures for the surveys tests.

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/render"

	"github.com/glimpsehq/glimpse-go/config"
	"github.com/glimpsehq/glimpse-go/model"
	"github.com/glimpsehq/glimpse-go/storage"
)

func testConfig(host string) config.Config {
	return config.Config{
		APIHost:        host,
		Token:          "test-token",
		RequestTimeout: 2 * time.Second,
	}
}

func newTestStore(t *testing.T, handler http.Handler, opts Options) *Store {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := New(testConfig(srv.URL), opts)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

// serveList serves the survey list and counts requests.
func serveList(list []model.Survey) (http.Handler, *atomic.Int64) {
	var requests atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		render.JSON(w, r, map[string]any{"surveys": list})
	})
	return handler, &requests
}

func activeSurvey(id string) model.Survey {
	start := model.NewTimestamp(time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC))
	return model.Survey{
		ID:        id,
		Name:      "Survey " + id,
		Type:      model.TypePopover,
		StartDate: start,
		Questions: []model.Question{{Type: "open", Question: "Thoughts?"}},
	}
}

// collect returns a Callback that stores its single invocation.
func collect(t *testing.T) (Callback, *[]model.Survey, *LoadResult) {
	t.Helper()
	var (
		list   []model.Survey
		result LoadResult
	)
	return func(l []model.Survey, r LoadResult) {
		list, result = l, r
	}, &list, &result
}

type fakeEnv struct {
	url       string
	device    string
	selectors map[string]bool
}

func (e fakeEnv) CurrentURL() (string, bool) { return e.url, e.url != "" }
func (e fakeEnv) DeviceType() (string, bool) { return e.device, e.device != "" }
func (e fakeEnv) SelectorExists(selector string) bool {
	return e.selectors[selector]
}

type fakeExtension struct {
	manager     Manager
	generateErr error
	lazy        bool
	loadErr     error
	repeatable  func(model.Survey) bool

	loaded    bool
	generated int
}

func (x *fakeExtension) GenerateSurveys(store *Store) (Manager, error) {
	x.generated++
	if x.lazy && !x.loaded {
		return nil, ErrExtensionNotReady
	}
	if x.generateErr != nil {
		return nil, x.generateErr
	}
	if x.manager != nil {
		return x.manager, nil
	}
	return &fakeManager{}, nil
}

func (x *fakeExtension) LoadExternalDependency(name string, cb func(error)) {
	if x.loadErr != nil {
		cb(x.loadErr)
		return
	}
	x.loaded = true
	cb(nil)
}

func (x *fakeExtension) CanActivateRepeatedly(survey model.Survey) bool {
	if x.repeatable != nil {
		return x.repeatable(survey)
	}
	return false
}

type fakeManager struct {
	decision RenderDecision
	rendered []string
	selector string
}

func (m *fakeManager) CanRenderSurvey(survey model.Survey) RenderDecision {
	if m.decision == (RenderDecision{}) {
		return RenderDecision{Visible: true}
	}
	return m.decision
}

func (m *fakeManager) RenderSurvey(survey model.Survey, selector string) error {
	m.rendered = append(m.rendered, survey.Name)
	m.selector = selector
	return nil
}

// memoryOptions wires an inspectable in-memory store.
func memoryOptions() (Options, storage.Store) {
	local := storage.NewMemory()
	return Options{Storage: local}, local
}

// serveNever fails the test on any API request.
func serveNever(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected API request")
	})
}
