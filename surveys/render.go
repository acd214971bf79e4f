package surveys

import "github.com/glimpsehq/glimpse-go/model"

const (
	reasonExtensionNotLoaded = "surveys extension is not yet loaded"
	reasonSurveyNotFound     = "survey not found"
	reasonSurveysNotLoaded   = "surveys could not be loaded"
)

// CanRenderSurvey asks the render manager whether the survey may be shown.
// A disabled reason is returned when the extension is not yet loaded or the
// id is unknown.
func (s *Store) CanRenderSurvey(id string) RenderDecision {
	manager := s.currentManager()
	if manager == nil {
		return RenderDecision{DisabledReason: reasonExtensionNotLoaded}
	}

	decision := RenderDecision{DisabledReason: reasonSurveyNotFound}
	s.GetSurveys(func(list []model.Survey, result LoadResult) {
		if result.Err != nil {
			decision = RenderDecision{DisabledReason: reasonSurveysNotLoaded}
			return
		}
		if survey, ok := findByID(list, id); ok {
			decision = manager.CanRenderSurvey(survey)
		}
	}, false)
	return decision
}

// RenderSurvey renders the survey into the element named by selector,
// delegating to the render manager.
func (s *Store) RenderSurvey(id, selector string) error {
	manager := s.currentManager()
	if manager == nil {
		return ErrExtensionUnavailable
	}

	var err error = ErrSurveyNotFound
	s.GetSurveys(func(list []model.Survey, result LoadResult) {
		if result.Err != nil {
			err = result.Err
			return
		}
		if survey, ok := findByID(list, id); ok {
			err = manager.RenderSurvey(survey, selector)
		}
	}, false)
	return err
}

func (s *Store) currentManager() Manager {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager
}

// findByID returns the first survey with the given id. Duplicate ids are not
// policed; the first listing wins.
func findByID(list []model.Survey, id string) (model.Survey, bool) {
	for _, survey := range list {
		if survey.ID == id {
			return survey, true
		}
	}
	return model.Survey{}, false
}
