package spec

// Spec is the inferred state-machine model of an application.
type Spec struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Description  string       `json:"description,omitempty"`
	Variables    []Variable   `json:"variables"`
	States       []State      `json:"states"`
	InitialState string       `json:"initialState"`
	Transitions  []Transition `json:"transitions"`
	Properties   []Property   `json:"properties"`
	Metadata     Metadata     `json:"metadata"`
}

// Metadata carries provenance for a spec.
type Metadata struct {
	CreatedAt    int64  `json:"createdAt"` // Unix milliseconds
	UpdatedAt    int64  `json:"updatedAt"` // Unix milliseconds
	SessionCount int    `json:"sessionCount"`
	Platform     string `json:"platform,omitempty"` // "web", "ios", "android"
	AppID        string `json:"appId,omitempty"`
	BaseURL      string `json:"baseUrl,omitempty"`
}

// VarType is the declared type of a spec variable.
type VarType string

const (
	VarString  VarType = "string"
	VarNumber  VarType = "number"
	VarBoolean VarType = "boolean"
	VarArray   VarType = "array"
	VarObject  VarType = "object"
)

// Variable is a typed piece of model state with an initial value.
// Initial holds a JSON value: string, float64, bool, []any, map[string]any or nil.
type Variable struct {
	Name        string  `json:"name"`
	Type        VarType `json:"type"`
	Initial     any     `json:"initial"`
	Description string  `json:"description,omitempty"`
}

// State is one node of the state machine.
type State struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Invariants   []Predicate   `json:"invariants,omitempty"`
	Metadata     StateMetadata `json:"metadata"`
	Observations Observations  `json:"observations"`
}

// StateMetadata describes how a state is recognized in the running app.
type StateMetadata struct {
	URL        string `json:"url,omitempty"`
	URLPattern string `json:"urlPattern,omitempty"` // regular expression over the page URL
	Screen     string `json:"screen,omitempty"`     // native screen or route name
	Title      string `json:"title,omitempty"`
}

// Observations records how often and when a state was seen.
type Observations struct {
	Count      int      `json:"count"`
	FirstSeen  int64    `json:"firstSeen,omitempty"`
	LastSeen   int64    `json:"lastSeen,omitempty"`
	SessionIDs []string `json:"sessionIds,omitempty"`
}

// Transition is one edge of the state machine.
type Transition struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Event     Event     `json:"event"`
	Guard     Predicate `json:"guard,omitempty"`
	Action    Action    `json:"action,omitempty"`
	Frequency int       `json:"frequency"`
}

// PropertyKind is the temporal operator of a property.
type PropertyKind string

const (
	Always     PropertyKind = "always"
	Eventually PropertyKind = "eventually"
	Never      PropertyKind = "never"
)

// PropertyStatus is the verification verdict of a property.
type PropertyStatus string

const (
	StatusUnverified PropertyStatus = "unverified"
	StatusVerified   PropertyStatus = "verified"
	StatusViolated   PropertyStatus = "violated"
)

// Property is a temporal claim over the model.
type Property struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Kind           PropertyKind   `json:"kind"`
	Predicate      Predicate      `json:"predicate"`
	Status         PropertyStatus `json:"status,omitempty"`
	Counterexample []string       `json:"counterexample,omitempty"` // transition ids
}

// ElementRef identifies a UI element targeted by an event or predicate.
// X and Y are the recorded coordinates, used only as a last resort.
type ElementRef struct {
	TestID             string   `json:"testId,omitempty"`
	AccessibilityLabel string   `json:"accessibilityLabel,omitempty"`
	Text               string   `json:"text,omitempty"`
	Type               string   `json:"type,omitempty"`
	Selector           string   `json:"selector,omitempty"`
	X                  *float64 `json:"x,omitempty"`
	Y                  *float64 `json:"y,omitempty"`
}

// IsZero reports whether r carries no identifying information.
func (r ElementRef) IsZero() bool {
	return r.TestID == "" && r.AccessibilityLabel == "" && r.Text == "" &&
		r.Selector == "" && r.X == nil && r.Y == nil
}

// Label returns the most human-readable identifier of r.
func (r ElementRef) Label() string {
	switch {
	case r.AccessibilityLabel != "":
		return r.AccessibilityLabel
	case r.Text != "":
		return r.Text
	case r.TestID != "":
		return r.TestID
	case r.Selector != "":
		return r.Selector
	default:
		return "element"
	}
}
