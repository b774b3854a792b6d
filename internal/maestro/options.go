package maestro

import "github.com/roach88/gremlin/internal/flow"

// GroupBy selects what one generated flow file covers.
type GroupBy string

const (
	GroupByFlow       GroupBy = "flow"
	GroupByTransition GroupBy = "transition"
)

// Options controls generation.
type Options struct {
	GroupBy     GroupBy
	Comments    bool
	Screenshots bool   // takeScreenshot after every step
	AppID       string // overrides the spec's app id
	Extract     []flow.Option
}

// DefaultOptions groups by flow with comments on.
func DefaultOptions() Options {
	return Options{GroupBy: GroupByFlow, Comments: true}
}
