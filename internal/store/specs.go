package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/gremlin/internal/spec"
)

// SpecRecord describes an archived spec.
type SpecRecord struct {
	Hash      string `json:"hash"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	Seq       int64  `json:"seq"`
	CreatedAt int64  `json:"createdAt"`
}

// PutSpec archives sp under its content hash and returns the hash. Specs
// differing only in timestamps share a hash; the first one archived wins.
func (s *Store) PutSpec(ctx context.Context, sp *spec.Spec) (string, error) {
	if err := spec.Check(sp); err != nil {
		return "", fmt.Errorf("put spec: %w", err)
	}
	hash, err := spec.Hash(sp)
	if err != nil {
		return "", fmt.Errorf("put spec: %w", err)
	}
	doc, err := spec.MarshalCanonical(sp)
	if err != nil {
		return "", fmt.Errorf("put spec: %w", err)
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		seq, err := nextSeq(ctx, tx, "specs")
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO specs (hash, name, version, document, seq, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(hash) DO NOTHING
		`, hash, sp.Name, sp.Version, string(doc), seq, s.now().UnixMilli())
		return err
	})
	if err != nil {
		return "", fmt.Errorf("put spec: %w", err)
	}
	s.logger.Debug("spec archived", "hash", hash, "name", sp.Name)
	return hash, nil
}

// GetSpec decodes the archived spec with the given hash.
func (s *Store) GetSpec(ctx context.Context, hash string) (*spec.Spec, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM specs WHERE hash = ?`, hash).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("spec %q: %w", hash, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get spec: %w", err)
	}

	var sp spec.Spec
	if err := json.Unmarshal([]byte(doc), &sp); err != nil {
		return nil, fmt.Errorf("spec %q: %w", hash, err)
	}
	return &sp, nil
}

// ListSpecs returns archived specs in archive order.
func (s *Store) ListSpecs(ctx context.Context) ([]SpecRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hash, name, version, seq, created_at
		FROM specs
		ORDER BY seq ASC, hash COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query specs: %w", err)
	}
	defer rows.Close()

	records := []SpecRecord{}
	for rows.Next() {
		var rec SpecRecord
		if err := rows.Scan(&rec.Hash, &rec.Name, &rec.Version, &rec.Seq, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan spec: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate specs: %w", err)
	}
	return records, nil
}
