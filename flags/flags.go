// Package flags is the boundary to the feature flag engine. Survey targeting
// only ever asks one question of it: is this flag enabled for the current
// visitor.
package flags

// Checker answers feature flag gate checks. Evaluation internals (rollouts,
// variants, property matching) live behind this interface.
type Checker interface {
	IsFeatureEnabled(key string) bool
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func(key string) bool

func (f CheckerFunc) IsFeatureEnabled(key string) bool {
	return f(key)
}

// Static is a fixed flag set, for demos and tests. Missing keys are disabled.
type Static map[string]bool

func (s Static) IsFeatureEnabled(key string) bool {
	return s[key]
}
