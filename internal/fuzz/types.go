package fuzz

import "github.com/roach88/gremlin/internal/spec"

// Strategy names a test generation strategy.
type Strategy string

const (
	RandomWalk         Strategy = "random_walk"
	BoundaryAbuse      Strategy = "boundary_abuse"
	SequenceMutation   Strategy = "sequence_mutation"
	BackButtonChaos    Strategy = "back_button_chaos"
	RapidFire          Strategy = "rapid_fire"
	InvalidStateAccess Strategy = "invalid_state_access"
)

// AllStrategies lists every strategy in round-robin order.
var AllStrategies = []Strategy{
	RandomWalk,
	BoundaryAbuse,
	SequenceMutation,
	BackButtonChaos,
	RapidFire,
	InvalidStateAccess,
}

// Expected is the outcome hint of a fuzz test.
type Expected string

const (
	ExpectPass    Expected = "pass"
	ExpectFail    Expected = "fail"
	ExpectUnknown Expected = "unknown"
)

// StepKind discriminates fuzz steps.
type StepKind string

const (
	StepTransition     StepKind = "transition"
	StepFuzzInput      StepKind = "fuzz_input"
	StepSubmit         StepKind = "submit"
	StepBack           StepKind = "back"
	StepNavigateDirect StepKind = "navigate_direct"
	StepRapid          StepKind = "rapid"
)

// Step is one action of a fuzz test.
type Step struct {
	Kind         StepKind         `json:"kind"`
	TransitionID string           `json:"transitionId,omitempty"` // transition, rapid
	Element      *spec.ElementRef `json:"element,omitempty"`      // fuzz_input, submit
	Value        string           `json:"value,omitempty"`        // fuzz_input
	State        string           `json:"state,omitempty"`        // navigate_direct
	URL          string           `json:"url,omitempty"`          // navigate_direct
}

// FuzzTest is one generated adversarial test.
type FuzzTest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Strategy    Strategy `json:"strategy"`
	Steps       []Step   `json:"steps"`
	Expected    Expected `json:"expected"`
	Categories  []string `json:"categories"`
}

// Defaults.
const (
	DefaultCount    = 10
	DefaultMaxSteps = 20
)

// Options controls GenerateFuzzTests. Zero values take the defaults; an
// empty strategy list means all strategies.
type Options struct {
	Count      int
	MaxSteps   int
	Strategies []Strategy
	Seed       int64
}
