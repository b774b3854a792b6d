package playwright

import "github.com/roach88/gremlin/internal/flow"

// GroupBy selects what one generated test covers.
type GroupBy string

const (
	GroupByFlow       GroupBy = "flow"
	GroupByTransition GroupBy = "transition"
)

// Options controls generation.
type Options struct {
	GroupBy     GroupBy
	Comments    bool   // step and header comments
	Screenshots bool   // toHaveScreenshot after every step
	BaseURL     string // overrides the spec's base URL
	Extract     []flow.Option
}

// DefaultOptions groups by flow with comments on.
func DefaultOptions() Options {
	return Options{GroupBy: GroupByFlow, Comments: true}
}
