package surveys

import "github.com/glimpsehq/glimpse-go/model"

// targetingMatch applies the survey's feature flag gates and trigger
// activation rule. A survey with no flag keys at all targets every visitor.
func (s *Store) targetingMatch(survey model.Survey) bool {
	if !survey.HasTargetingFlags() {
		return true
	}

	linked := s.flagGate(survey.LinkedFlagKey)
	targeting := s.flagGate(survey.TargetingFlagKey)

	// The internal targeting flag is the one-shot guard; a survey that may
	// activate repeatedly skips it.
	internal := s.canActivateRepeatedly(survey) || s.flagGate(survey.InternalTargetingFlagKey)

	multi := true
	for _, key := range survey.FeatureFlagKeys {
		if !s.flagGate(key) {
			multi = false
			break
		}
	}

	activated := true
	if survey.HasTriggers() {
		activated = s.tracker.Activated(survey.ID)
	}

	return linked && targeting && internal && multi && activated
}

// flagGate passes vacuously for an unset key; a configured key requires the
// flag engine to report it enabled, and fails closed without an engine.
func (s *Store) flagGate(key string) bool {
	if key == "" {
		return true
	}
	if s.flags == nil {
		return false
	}
	return s.flags.IsFeatureEnabled(key)
}

func (s *Store) canActivateRepeatedly(survey model.Survey) bool {
	s.mu.Lock()
	extension := s.extension
	s.mu.Unlock()
	if extension == nil {
		return false
	}
	return extension.CanActivateRepeatedly(survey)
}
