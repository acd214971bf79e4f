// Package model defines the survey wire format served by the surveys API.
// Definitions are immutable once fetched and replaced wholesale on refetch.
package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/glimpsehq/glimpse-go/match"
)

type SurveyType string

const (
	TypePopover    SurveyType = "popover"
	TypeWidget     SurveyType = "widget"
	TypeFullScreen SurveyType = "full_screen"
	TypeAPI        SurveyType = "api"
)

type Survey struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Type        SurveyType  `json:"type"`
	Questions   []Question  `json:"questions"`
	Appearance  *Appearance `json:"appearance,omitempty"`
	Conditions  *Conditions `json:"conditions,omitempty"`

	StartDate *Timestamp `json:"start_date,omitempty"`
	EndDate   *Timestamp `json:"end_date,omitempty"`

	LinkedFlagKey            string   `json:"linked_flag_key,omitempty"`
	TargetingFlagKey         string   `json:"targeting_flag_key,omitempty"`
	InternalTargetingFlagKey string   `json:"internal_targeting_flag_key,omitempty"`
	FeatureFlagKeys          []string `json:"feature_flag_keys,omitempty"`
}

// Active reports whether the survey is inside its display window:
// launched (start_date set) and not stopped (end_date unset).
func (s Survey) Active() bool {
	return s.StartDate != nil && s.EndDate == nil
}

// HasTargetingFlags reports whether any flag gate is configured.
func (s Survey) HasTargetingFlags() bool {
	return s.LinkedFlagKey != "" ||
		s.TargetingFlagKey != "" ||
		s.InternalTargetingFlagKey != "" ||
		len(s.FeatureFlagKeys) > 0
}

// HasTriggers reports whether the survey waits for an event or action to
// fire before it may display.
func (s Survey) HasTriggers() bool {
	if s.Conditions == nil {
		return false
	}
	return len(s.Conditions.EventNames())+len(s.Conditions.ActionNames()) > 0
}

// Conditions gate survey display. Every field is optional; an absent field
// imposes no constraint.
type Conditions struct {
	URL          string     `json:"url,omitempty"`
	URLMatchType match.Type `json:"urlMatchType,omitempty"`

	DeviceTypes          []string   `json:"deviceTypes,omitempty"`
	DeviceTypesMatchType match.Type `json:"deviceTypesMatchType,omitempty"`

	Selector string `json:"selector,omitempty"`

	Events  *TriggerList `json:"events,omitempty"`
	Actions *TriggerList `json:"actions,omitempty"`
}

func (c *Conditions) EventNames() []string {
	return c.Events.names()
}

func (c *Conditions) ActionNames() []string {
	return c.Actions.names()
}

type TriggerList struct {
	Values []Trigger `json:"values"`
}

type Trigger struct {
	Name string `json:"name"`
}

func (l *TriggerList) names() (names []string) {
	if l == nil {
		return
	}
	for _, t := range l.Values {
		if t.Name != "" {
			names = append(names, t.Name)
		}
	}
	return
}

type Question struct {
	Type        string   `json:"type"`
	Question    string   `json:"question"`
	Description string   `json:"description,omitempty"`
	Optional    bool     `json:"optional,omitempty"`
	Choices     []string `json:"choices,omitempty"`
}

type Appearance struct {
	BackgroundColor  string `json:"backgroundColor,omitempty"`
	BorderColor      string `json:"borderColor,omitempty"`
	SubmitButtonText string `json:"submitButtonText,omitempty"`
	Position         string `json:"position,omitempty"`
	DisplayThankYou  bool   `json:"displayThankYouMessage,omitempty"`
}

// Timestamp accepts both RFC 3339 datetimes and bare dates, which is what
// the API emits for survey lifecycle fields.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{time.RFC3339, "2006-01-02"}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", raw)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339))
}

// NewTimestamp is a convenience for building fixtures.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{t}
}
