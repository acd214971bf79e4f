// Package surveys decides which in-product surveys should be shown to a
// visitor: it fetches survey definitions once from the API, caches them
// locally, and filters them through display conditions, feature flag gates
// and event activation state.
package surveys

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/glimpsehq/glimpse-go/config"
	"github.com/glimpsehq/glimpse-go/flags"
	"github.com/glimpsehq/glimpse-go/httpx"
	"github.com/glimpsehq/glimpse-go/log"
	"github.com/glimpsehq/glimpse-go/model"
	"github.com/glimpsehq/glimpse-go/storage"
)

var (
	// ErrAlreadyLoading is the fail-fast answer to a GetSurveys call made
	// while another fetch is outstanding. Transient: retry after the
	// in-flight fetch settles.
	ErrAlreadyLoading = errors.New("surveys are already being loaded")

	// ErrExtensionNotReady may be returned by Extension.GenerateSurveys to
	// request a LoadExternalDependency round first.
	ErrExtensionNotReady = errors.New("surveys extension is not ready")

	// ErrExtensionUnavailable means no usable extension was supplied.
	ErrExtensionUnavailable = errors.New("surveys extension is not available")

	ErrSurveyNotFound = errors.New("survey not found")
)

// LoadResult is the context delivered alongside every survey callback.
// IsLoaded is true when the list came from a successful load (or the feature
// is disabled and the empty list is final); Err carries the failure
// otherwise.
type LoadResult struct {
	IsLoaded bool
	Err      error
}

type Callback func(surveys []model.Survey, result LoadResult)

// Options carries the external collaborators of a Store. Every field is
// optional; zero values fail closed (no environment means no condition can
// match, no flag checker means every configured gate fails).
type Options struct {
	Storage     storage.Store
	Environment Environment
	Flags       flags.Checker
}

// Store holds the fetched survey list and serves every survey query.
// Safe for concurrent use; callbacks are invoked synchronously on the
// calling goroutine.
type Store struct {
	cfg     config.Config
	client  *httpx.Client
	local   storage.Store
	env     Environment
	flags   flags.Checker
	tracker *Tracker

	mu           sync.Mutex
	cache        []model.Survey
	loaded       bool
	fetching     bool
	initializing bool
	extension    Extension
	manager      Manager
	subscribers  map[int]Callback
	nextSub      int
}

func New(cfg config.Config, opts Options) (store *Store, err error) {
	err = cfg.Validate()
	if err != nil {
		return
	}

	client, err := httpx.NewClient(cfg.APIHost, cfg.RequestTimeout)
	if err != nil {
		return
	}

	local := opts.Storage
	if local == nil {
		if cfg.StoragePath != "" {
			local, err = storage.Open(cfg.StoragePath)
			if err != nil {
				return
			}
		} else {
			local = storage.NewMemory()
		}
	}

	env := opts.Environment
	if env == nil {
		env = nowhere{}
	}

	store = &Store{
		cfg:         cfg,
		client:      client,
		local:       local,
		env:         env,
		flags:       opts.Flags,
		tracker:     NewTracker(local),
		subscribers: map[int]Callback{},
	}
	return
}

// GetSurveys delivers the survey list to cb: the cached list when one exists
// and forceReload is false, otherwise the result of a fresh fetch. At most
// one fetch is in flight at a time; a call that collides with one gets an
// immediate ErrAlreadyLoading instead of being queued.
func (s *Store) GetSurveys(cb Callback, forceReload bool) {
	if s.cfg.DisableSurveys {
		cb([]model.Survey{}, LoadResult{IsLoaded: true})
		return
	}

	s.mu.Lock()
	if s.loaded && !forceReload {
		cached := s.cache
		s.mu.Unlock()
		cb(cached, LoadResult{IsLoaded: true})
		return
	}
	if s.fetching {
		s.mu.Unlock()
		log.Debug("surveys.fetch: rejected, another fetch is in flight")
		cb([]model.Survey{}, LoadResult{Err: ErrAlreadyLoading})
		return
	}
	s.fetching = true
	s.mu.Unlock()

	list, err := s.fetch()

	s.mu.Lock()
	s.fetching = false
	if err != nil {
		s.mu.Unlock()
		log.Errorf("surveys.fetch: %s", err)
		result := LoadResult{Err: err}
		cb([]model.Survey{}, result)
		s.notify(nil, result)
		return
	}
	s.cache = list
	s.loaded = true
	s.mu.Unlock()

	s.tracker.Register(list)
	s.persist(list)

	log.Debugf("surveys.fetch: loaded %d surveys", len(list))
	result := LoadResult{IsLoaded: true}
	cb(list, result)
	s.notify(list, result)
}

func (s *Store) fetch() ([]model.Survey, error) {
	var body struct {
		Surveys []model.Survey `json:"surveys"`
	}
	query := url.Values{"token": {s.cfg.Token}}
	err := s.client.GetJSON("/api/surveys/", query, &body)
	if err != nil {
		return nil, err
	}
	if body.Surveys == nil {
		body.Surveys = []model.Survey{}
	}
	return body.Surveys, nil
}

// persist caches the fetched list locally. Persistence failures are logged,
// not surfaced: the in-memory copy is authoritative for this session.
func (s *Store) persist(list []model.Survey) {
	raw, err := json.Marshal(list)
	if err == nil {
		err = s.local.Set(storage.KeySurveys, string(raw))
	}
	if err != nil {
		log.Warnf("surveys.persist: %s", err)
	}
}

// LoadIfEnabled resolves the extension and warms the survey cache. It is
// idempotent: a call while already loaded or already initializing is a
// no-op. Expected failures (missing extension, failed dependency load) are
// reported to subscribers and never escape; a panic during initialization is
// re-raised after subscribers are notified.
func (s *Store) LoadIfEnabled(extension Extension) {
	if s.cfg.DisableSurveys {
		log.Debug("surveys.init: disabled by config")
		return
	}

	s.mu.Lock()
	if s.manager != nil || s.initializing {
		s.mu.Unlock()
		return
	}
	s.initializing = true
	s.mu.Unlock()

	// The dependency callback may fire asynchronously; initialization stays
	// open until it lands, so a colliding LoadIfEnabled remains a no-op.
	clearOnExit := true
	defer func() {
		if r := recover(); r != nil {
			s.endInit()
			log.Errorf("surveys.init: %v", r)
			s.notify(nil, LoadResult{Err: fmt.Errorf("surveys initialization failed: %v", r)})
			panic(r)
		}
		if clearOnExit {
			s.endInit()
		}
	}()

	if extension == nil {
		log.Error("surveys.init: no extension supplied")
		s.notify(nil, LoadResult{Err: ErrExtensionUnavailable})
		return
	}

	manager, err := extension.GenerateSurveys(s)
	switch {
	case errors.Is(err, ErrExtensionNotReady):
		clearOnExit = false
		extension.LoadExternalDependency("surveys", func(loadErr error) {
			defer s.endInit()

			if loadErr != nil {
				log.Errorf("surveys.init.load_dependency: %s", loadErr)
				s.notify(nil, LoadResult{Err: errors.Wrap(loadErr, "surveys.init")})
				return
			}
			manager, err := extension.GenerateSurveys(s)
			if err != nil {
				log.Errorf("surveys.init.generate: %s", err)
				s.notify(nil, LoadResult{Err: errors.Wrap(err, "surveys.init")})
				return
			}
			s.install(extension, manager)
		})
	case err != nil:
		log.Errorf("surveys.init.generate: %s", err)
		s.notify(nil, LoadResult{Err: errors.Wrap(err, "surveys.init")})
	default:
		s.install(extension, manager)
	}
}

func (s *Store) endInit() {
	s.mu.Lock()
	s.initializing = false
	s.mu.Unlock()
}

func (s *Store) install(extension Extension, manager Manager) {
	s.mu.Lock()
	s.extension = extension
	s.manager = manager
	s.mu.Unlock()

	log.Debug("surveys.init: extension loaded")
	s.GetSurveys(func([]model.Survey, LoadResult) {}, false)
}

// OnSurveysLoaded subscribes cb to survey load events. When a list is
// already loaded, cb is invoked immediately with it. The returned function
// removes the subscription.
func (s *Store) OnSurveysLoaded(cb Callback) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = cb
	loaded, cached := s.loaded, s.cache
	s.mu.Unlock()

	if loaded {
		cb(cached, LoadResult{IsLoaded: true})
	}

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(list []model.Survey, result LoadResult) {
	s.mu.Lock()
	subs := make([]Callback, 0, len(s.subscribers))
	for _, cb := range s.subscribers {
		subs = append(subs, cb)
	}
	s.mu.Unlock()

	if list == nil {
		list = []model.Survey{}
	}
	for _, cb := range subs {
		cb(list, result)
	}
}

// OnEvent informs the survey feature that a tracked event fired, activating
// any survey that declared it as a trigger.
func (s *Store) OnEvent(name string) {
	s.tracker.OnEvent(name)
}

// OnAction is OnEvent for named actions.
func (s *Store) OnAction(name string) {
	s.tracker.OnAction(name)
}

// DistinctID returns the visitor's anonymous id, minting and persisting one
// on first use.
func (s *Store) DistinctID() string {
	id, ok, err := s.local.Get(storage.KeyDistinctID)
	if err != nil {
		log.Warnf("surveys.distinct_id: %s", err)
	}
	if ok {
		return id
	}
	id = uuid.NewString()
	if err := s.local.Set(storage.KeyDistinctID, id); err != nil {
		log.Warnf("surveys.distinct_id: %s", err)
	}
	return id
}

// MarkSurveySeen records that the visitor saw the survey, for repeat-display
// rules and reporting.
func (s *Store) MarkSurveySeen(survey model.Survey) {
	err := s.local.Set(storage.PrefixSeenSurvey+survey.ID, "true")
	if err == nil {
		err = s.local.Set(storage.KeyLastSeenSurveyDate, time.Now().UTC().Format(time.RFC3339))
	}
	if err != nil {
		log.Warnf("surveys.seen: %s", err)
	}
}

// SurveySeen reports whether MarkSurveySeen was recorded for the id.
func (s *Store) SurveySeen(id string) bool {
	_, ok, err := s.local.Get(storage.PrefixSeenSurvey + id)
	if err != nil {
		log.Warnf("surveys.seen: %s", err)
	}
	return ok
}

// Reset clears all survey state for the visitor: activation records, seen
// markers and the cached list go; the distinct id stays.
func (s *Store) Reset() error {
	s.tracker.Reset()

	s.mu.Lock()
	s.cache = nil
	s.loaded = false
	s.mu.Unlock()

	return storage.Reset(s.local)
}
