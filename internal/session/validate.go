package session

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validation error codes (E300-E399)
const (
	ErrMissingSessionID   = "E301" // header.sessionId is required
	ErrMissingPlatform    = "E302" // header.device.platform is required
	ErrMissingApp         = "E303" // header.app.identifier is required
	ErrNegativeDelta      = "E304" // dt must be non-negative and finite
	ErrDurationOverrun    = "E305" // startTime + sum(dt) exceeds endTime
	ErrElementIndexRange  = "E306" // element index outside dictionary
	ErrUnsupportedEvent   = "E307" // event has no payload or a reserved type
	ErrScreenshotEventRef = "E308" // screenshot eventIndex outside event stream
)

// ValidationError represents a session schema violation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks s against the canonical session invariants.
// Returns all errors found (does not fail-fast).
func Validate(s *Session) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(s.Header.SessionID) == "" {
		errs = append(errs, ValidationError{
			Field:   "header.sessionId",
			Message: "session id is required",
			Code:    ErrMissingSessionID,
		})
	}
	if strings.TrimSpace(s.Header.Device.Platform) == "" {
		errs = append(errs, ValidationError{
			Field:   "header.device.platform",
			Message: "platform is required",
			Code:    ErrMissingPlatform,
		})
	}
	if strings.TrimSpace(s.Header.App.Identifier) == "" {
		errs = append(errs, ValidationError{
			Field:   "header.app.identifier",
			Message: "app identifier is required",
			Code:    ErrMissingApp,
		})
	}

	var elapsed float64
	for i, ev := range s.Events {
		field := fmt.Sprintf("events[%d]", i)

		if ev.DT < 0 || math.IsNaN(ev.DT) || math.IsInf(ev.DT, 0) {
			errs = append(errs, ValidationError{
				Field:   field + ".dt",
				Message: fmt.Sprintf("dt must be a non-negative finite number, got %v", ev.DT),
				Code:    ErrNegativeDelta,
			})
		} else {
			elapsed += ev.DT
		}

		if ev.Data == nil || !ev.Type().Known() {
			errs = append(errs, ValidationError{
				Field:   field + ".data",
				Message: "event payload is missing or uses a reserved type",
				Code:    ErrUnsupportedEvent,
			})
			continue
		}

		if idx, ok := ev.ElementIndex(); ok && (idx < 0 || idx >= len(s.Elements)) {
			errs = append(errs, ValidationError{
				Field:   field + ".data.elementIndex",
				Message: fmt.Sprintf("element index %d out of range [0,%d)", idx, len(s.Elements)),
				Code:    ErrElementIndexRange,
			})
		}
	}

	if s.Header.EndTime != nil {
		if float64(s.Header.StartTime)+elapsed > float64(*s.Header.EndTime) {
			errs = append(errs, ValidationError{
				Field: "header.endTime",
				Message: fmt.Sprintf("startTime %d plus %.0fms of events exceeds endTime %d",
					s.Header.StartTime, elapsed, *s.Header.EndTime),
				Code: ErrDurationOverrun,
			})
		}
	}

	for i, shot := range s.Screenshots {
		if shot.EventIndex < 0 || shot.EventIndex >= len(s.Events) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("screenshots[%d].eventIndex", i),
				Message: fmt.Sprintf("event index %d out of range [0,%d)", shot.EventIndex, len(s.Events)),
				Code:    ErrScreenshotEventRef,
			})
		}
	}

	return errs
}

// Check validates s and folds every violation into one error.
// Returns nil when s is valid.
func Check(s *Session) error {
	verrs := Validate(s)
	if len(verrs) == 0 {
		return nil
	}
	errs := make([]error, len(verrs))
	for i, v := range verrs {
		errs[i] = v
	}
	return fmt.Errorf("invalid session: %w", errors.Join(errs...))
}
