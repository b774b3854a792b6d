package codec

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/roach88/gremlin/internal/session"
)

// EncodeAll and DecodeAll are safe for concurrent use, so one encoder and
// one decoder serve every call.
var (
	encoder = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedBestCompression),
			zstd.WithEncoderCRC(true),
		)
	})
	decoder = sync.OnceValues(func() (*zstd.Decoder, error) {
		return zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	})
)

// Compress optimizes s and compresses the optimized JSON with zstd.
func Compress(s *session.Session) ([]byte, error) {
	opt, err := Optimize(s)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	return CompressOptimized(opt)
}

// CompressOptimized compresses an already optimized session.
func CompressOptimized(o *OptimizedSession) ([]byte, error) {
	raw, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("marshal optimized session: %w", err)
	}
	enc, err := encoder()
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	return enc.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// Decompress restores the optimized session from Compress output.
func Decompress(b []byte) (*OptimizedSession, error) {
	dec, err := decoder()
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	raw, err := dec.DecodeAll(b, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress session: %w", err)
	}
	var o OptimizedSession
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("unmarshal optimized session: %w", err)
	}
	return &o, nil
}

// Unpack decompresses b and reconstructs the full session.
func Unpack(b []byte) (*session.Session, error) {
	o, err := Decompress(b)
	if err != nil {
		return nil, err
	}
	return Deoptimize(o)
}
