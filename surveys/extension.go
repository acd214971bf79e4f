package surveys

import "github.com/glimpsehq/glimpse-go/model"

// Extension is the lazily loaded presentation module. The SDK core never
// renders anything itself; it resolves an Extension at startup and treats
// "not yet available" as an explicit state.
type Extension interface {
	// GenerateSurveys builds the render manager for this store. It may
	// return ErrExtensionNotReady to request a lazy dependency load first.
	GenerateSurveys(store *Store) (Manager, error)
	// LoadExternalDependency loads the named dependency and reports the
	// outcome through cb. The callback may fire asynchronously.
	LoadExternalDependency(name string, cb func(error))
	// CanActivateRepeatedly reports whether the survey may be shown to the
	// same visitor more than once.
	CanActivateRepeatedly(survey model.Survey) bool
}

// Manager renders surveys. Produced by Extension.GenerateSurveys.
type Manager interface {
	CanRenderSurvey(survey model.Survey) RenderDecision
	RenderSurvey(survey model.Survey, selector string) error
}

type RenderDecision struct {
	Visible        bool
	DisabledReason string
}
