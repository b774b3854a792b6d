package session

// SchemaVersion is the canonical session schema version written by producers.
const SchemaVersion = 1

// Session is one recorded run of an application.
type Session struct {
	Header      Header        `json:"header"`
	Elements    []ElementInfo `json:"elements"`
	Events      []Event       `json:"events"`
	Screenshots []Screenshot  `json:"screenshots"`
}

// Header carries session identity and environment metadata.
type Header struct {
	SessionID     string `json:"sessionId"`
	StartTime     int64  `json:"startTime"`         // Unix milliseconds
	EndTime       *int64 `json:"endTime,omitempty"` // Unix milliseconds, absent while recording
	Device        Device `json:"device"`
	App           App    `json:"app"`
	SchemaVersion int    `json:"schemaVersion"`
}

// Device describes the device or browser a session was captured on.
type Device struct {
	Platform     string  `json:"platform"` // "ios", "android", "web"
	OSVersion    string  `json:"osVersion,omitempty"`
	Model        string  `json:"model,omitempty"`
	ScreenWidth  int     `json:"screenWidth,omitempty"`
	ScreenHeight int     `json:"screenHeight,omitempty"`
	PixelRatio   float64 `json:"pixelRatio,omitempty"`
	Locale       string  `json:"locale,omitempty"`
}

// App describes the application under recording.
type App struct {
	Identifier string `json:"identifier"` // bundle id, package name or origin
	Name       string `json:"name,omitempty"`
	Version    string `json:"version,omitempty"`
	Build      string `json:"build,omitempty"`
}

// ElementInfo describes one UI element referenced by events.
type ElementInfo struct {
	TestID             string `json:"testId,omitempty"`
	AccessibilityLabel string `json:"accessibilityLabel,omitempty"`
	Text               string `json:"text,omitempty"`
	Type               string `json:"type"` // "button", "link", "input", ...
	Selector           string `json:"selector,omitempty"`
}

// Screenshot references a captured image stored outside the session.
type Screenshot struct {
	ID         string `json:"id"`
	EventIndex int    `json:"eventIndex"`
	URI        string `json:"uri"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
}

// PerfSample is an optional performance reading attached to an event.
// Every field is optional; nil means "not sampled".
type PerfSample struct {
	FPS         *float64 `json:"fps,omitempty"`
	MemoryMB    *float64 `json:"memory,omitempty"`
	JSThreadLag *float64 `json:"jsThreadLag,omitempty"` // milliseconds
}

// Duration returns the sum of all event dt values in milliseconds.
func (s *Session) Duration() float64 {
	var total float64
	for _, ev := range s.Events {
		total += ev.DT
	}
	return total
}
