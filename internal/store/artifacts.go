package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Artifact kinds.
const (
	KindPlaywright = "playwright"
	KindMaestro    = "maestro"
	KindFuzz       = "fuzz"
	KindReport     = "report"
)

// Artifact is one generated file tied to the spec it came from.
type Artifact struct {
	ID        string `json:"id"`
	SpecHash  string `json:"specHash"`
	Kind      string `json:"kind"`
	Path      string `json:"path"`
	Content   string `json:"content"`
	Seq       int64  `json:"seq"`
	CreatedAt int64  `json:"createdAt"`
}

// PutArtifact stores a, replacing the content of an artifact with the same
// spec, kind and path. The spec must be archived first.
func (s *Store) PutArtifact(ctx context.Context, a Artifact) (Artifact, error) {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		seq, err := nextSeq(ctx, tx, "artifacts")
		if err != nil {
			return err
		}
		a.ID = s.ids.Generate()
		a.Seq = seq
		a.CreatedAt = s.now().UnixMilli()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO artifacts (id, spec_hash, kind, path, content, seq, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(spec_hash, kind, path) DO UPDATE SET
				content = excluded.content,
				created_at = excluded.created_at
		`, a.ID, a.SpecHash, a.Kind, a.Path, a.Content, a.Seq, a.CreatedAt)
		if err != nil {
			return err
		}
		// An update keeps the original id and seq.
		return tx.QueryRowContext(ctx, `
			SELECT id, seq FROM artifacts WHERE spec_hash = ? AND kind = ? AND path = ?
		`, a.SpecHash, a.Kind, a.Path).Scan(&a.ID, &a.Seq)
	})
	if err != nil {
		return Artifact{}, fmt.Errorf("put artifact %s: %w", a.Path, err)
	}
	s.logger.Debug("artifact stored", "spec", a.SpecHash, "kind", a.Kind, "path", a.Path, "bytes", len(a.Content))
	return a, nil
}

// ListArtifacts returns the artifacts of one spec in archive order.
func (s *Store) ListArtifacts(ctx context.Context, specHash string) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, spec_hash, kind, path, content, seq, created_at
		FROM artifacts
		WHERE spec_hash = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, specHash)
	if err != nil {
		return nil, fmt.Errorf("query artifacts: %w", err)
	}
	defer rows.Close()

	artifacts := []Artifact{}
	for rows.Next() {
		var a Artifact
		if err := rows.Scan(&a.ID, &a.SpecHash, &a.Kind, &a.Path, &a.Content, &a.Seq, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}
	return artifacts, nil
}
