package surveys

import (
	"github.com/glimpsehq/glimpse-go/match"
	"github.com/glimpsehq/glimpse-go/model"
)

// conditionsMatch applies the survey's display conditions against the
// visitor environment. A survey with no condition set matches
// unconditionally; a configured condition whose input is unknown fails
// closed.
func (s *Store) conditionsMatch(survey model.Survey) bool {
	c := survey.Conditions
	if c == nil {
		return true
	}
	return s.urlMatch(c) && s.selectorMatch(c) && s.deviceMatch(c)
}

func (s *Store) urlMatch(c *model.Conditions) bool {
	if c.URL == "" {
		return true
	}
	current, known := s.env.CurrentURL()
	if !known {
		return false
	}
	return match.Matches(c.URLMatchType, []string{c.URL}, current)
}

func (s *Store) selectorMatch(c *model.Conditions) bool {
	if c.Selector == "" {
		return true
	}
	return s.env.SelectorExists(c.Selector)
}

func (s *Store) deviceMatch(c *model.Conditions) bool {
	if len(c.DeviceTypes) == 0 {
		return true
	}
	device, known := s.env.DeviceType()
	if !known {
		return false
	}
	return match.Matches(c.DeviceTypesMatchType, c.DeviceTypes, device)
}
