// Package storage is the SDK's local persistence: a small key-value store
// holding the cached survey list, visitor identity, and per-survey markers.
package storage

import "strings"

// Keys used by the survey feature. Everything under these keys (except the
// visitor distinct id) is wiped by Reset.
const (
	KeySurveys            = "surveys"
	KeyLastSeenSurveyDate = "lastSeenSurveyDate"
	KeyDistinctID         = "distinctId"

	PrefixSeenSurvey      = "seenSurvey_"
	PrefixSurveyActivated = "surveyActivated_"
)

type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	// Keys lists all stored keys starting with prefix.
	Keys(prefix string) ([]string, error)
	Close() error
}

// Reset removes every survey-related key. The visitor distinct id survives:
// identity has its own lifecycle.
func Reset(s Store) error {
	for _, key := range []string{KeySurveys, KeyLastSeenSurveyDate} {
		if err := s.Delete(key); err != nil {
			return err
		}
	}
	for _, prefix := range []string{PrefixSeenSurvey, PrefixSurveyActivated} {
		keys, err := s.Keys(prefix)
		if err != nil {
			return err
		}
		for _, key := range keys {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			if err := s.Delete(key); err != nil {
				return err
			}
		}
	}
	return nil
}
