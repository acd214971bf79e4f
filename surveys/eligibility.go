package surveys

import "github.com/glimpsehq/glimpse-go/model"

// GetActiveMatchingSurveys delivers the surveys that should be shown to the
// visitor right now: active, condition-matched and targeting-matched, in
// API order. Load failures are passed through to cb unchanged.
func (s *Store) GetActiveMatchingSurveys(cb Callback, forceReload bool) {
	s.GetSurveys(func(list []model.Survey, result LoadResult) {
		if result.Err != nil {
			cb(list, result)
			return
		}

		matching := make([]model.Survey, 0, len(list))
		for _, survey := range list {
			if !survey.Active() {
				continue
			}
			if !s.conditionsMatch(survey) {
				continue
			}
			if !s.targetingMatch(survey) {
				continue
			}
			matching = append(matching, survey)
		}
		cb(matching, result)
	}, forceReload)
}
