package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/gremlin/internal/codec"
	"github.com/roach88/gremlin/internal/session"
	"github.com/roach88/gremlin/internal/spec"
)

// Command-level error codes. Schema codes (E2xx for specs, E3xx for
// sessions) come from the spec and session packages.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeLoadFailed  = "E004" // Document could not be decoded
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeBadFlag     = "E008" // Invalid flag value
	ErrCodeArchive     = "E009" // Archive error
	ErrCodeViolated    = "E010" // A property is violated
)

// zstdMagic opens every compressed session.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// LoadError represents an error that occurred while loading an input.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadSpec decodes a spec document. It does not validate cross references.
func LoadSpec(path string) (*spec.Spec, error) {
	if err := exists(path); err != nil {
		return nil, err
	}
	s, err := spec.LoadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("failed to load spec %s", path), Err: err}
	}
	return s, nil
}

// LoadValidSpec decodes a spec document and rejects invalid ones.
func LoadValidSpec(path string) (*spec.Spec, error) {
	s, err := LoadSpec(path)
	if err != nil {
		return nil, err
	}
	if errs := spec.Validate(s); len(errs) > 0 {
		return nil, &LoadError{Code: errs[0].Code, Message: fmt.Sprintf("invalid spec %s", path), Err: spec.Check(s)}
	}
	return s, nil
}

// LoadSession reads a session as canonical JSON or as compressed bytes.
func LoadSession(path string) (*session.Session, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}

	if bytes.HasPrefix(data, zstdMagic) {
		s, err := codec.Unpack(data)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("failed to unpack %s", path), Err: err}
		}
		return s, nil
	}

	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("failed to parse session %s", path), Err: err}
	}
	return &s, nil
}

func exists(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path)}
	}
	return nil
}

// readInput reads a file after checking it exists.
func readInput(path string) ([]byte, error) {
	if err := exists(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("failed to read %s", path), Err: err}
	}
	return data, nil
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &LoadError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("failed to create %s", dir), Err: err}
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &LoadError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("failed to write %s", path), Err: err}
	}
	return nil
}

// fail reports err through the formatter and converts it to an exit error.
// Load and write errors are command errors; anything else is a failure.
func fail(f *OutputFormatter, err error) error {
	var le *LoadError
	if errors.As(err, &le) {
		msg := le.Message
		if le.Err != nil {
			msg += ": " + le.Err.Error()
		}
		_ = f.Error(le.Code, msg, nil)
		code := ExitCommandError
		if strings.HasPrefix(le.Code, "E2") || strings.HasPrefix(le.Code, "E3") {
			code = ExitFailure
		}
		return WrapExitError(code, le.Code+": "+le.Message, le.Err)
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		_ = f.Error(ErrCodeGeneric, ee.Error(), nil)
		return ee
	}
	_ = f.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitFailure, "command failed", err)
}

// badFlag reports an invalid flag value.
func badFlag(f *OutputFormatter, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	_ = f.Error(ErrCodeBadFlag, msg, nil)
	return NewExitError(ExitCommandError, msg)
}
