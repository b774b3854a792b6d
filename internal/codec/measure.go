package codec

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/gremlin/internal/session"
)

// Stats reports the size of a session at each pipeline stage.
type Stats struct {
	OriginalSize   int       `json:"originalSize"`
	OptimizedSize  int       `json:"optimizedSize"`
	CompressedSize int       `json:"compressedSize"`
	FinalRatio     float64   `json:"finalRatio"` // OriginalSize / CompressedSize
	Breakdown      Breakdown `json:"breakdown"`
}

// Breakdown is the JSON size of each section of the original session.
// The sections exclude the enclosing object syntax, so their sum never
// exceeds OriginalSize.
type Breakdown struct {
	Header      int `json:"header"`
	Elements    int `json:"elements"`
	Events      int `json:"events"`
	Screenshots int `json:"screenshots"`
}

// Total returns the sum of all sections.
func (b Breakdown) Total() int {
	return b.Header + b.Elements + b.Events + b.Screenshots
}

// OptimizationRatio returns OriginalSize / OptimizedSize.
func (s Stats) OptimizationRatio() float64 {
	if s.OptimizedSize == 0 {
		return 0
	}
	return float64(s.OriginalSize) / float64(s.OptimizedSize)
}

// MeasureCompression runs s through the pipeline and reports sizes.
func MeasureCompression(s *session.Session) (Stats, error) {
	original, err := json.Marshal(s)
	if err != nil {
		return Stats{}, fmt.Errorf("marshal session: %w", err)
	}
	opt, err := Optimize(s)
	if err != nil {
		return Stats{}, fmt.Errorf("optimize: %w", err)
	}
	optimized, err := json.Marshal(opt)
	if err != nil {
		return Stats{}, fmt.Errorf("marshal optimized session: %w", err)
	}
	compressed, err := CompressOptimized(opt)
	if err != nil {
		return Stats{}, err
	}

	var b Breakdown
	sections := []struct {
		dst *int
		v   any
	}{
		{&b.Header, s.Header},
		{&b.Elements, s.Elements},
		{&b.Events, s.Events},
		{&b.Screenshots, s.Screenshots},
	}
	for _, sec := range sections {
		raw, err := json.Marshal(sec.v)
		if err != nil {
			return Stats{}, fmt.Errorf("marshal section: %w", err)
		}
		*sec.dst = len(raw)
	}

	stats := Stats{
		OriginalSize:   len(original),
		OptimizedSize:  len(optimized),
		CompressedSize: len(compressed),
		Breakdown:      b,
	}
	if stats.CompressedSize > 0 {
		stats.FinalRatio = float64(stats.OriginalSize) / float64(stats.CompressedSize)
	}
	return stats, nil
}
