package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/gremlin/internal/codec"
	"github.com/roach88/gremlin/internal/session"
)

// SessionRecord describes an archived session without its payload.
type SessionRecord struct {
	ID             string `json:"id"`
	SessionID      string `json:"sessionId"`
	Platform       string `json:"platform"`
	AppID          string `json:"appId"`
	StartTime      int64  `json:"startTime"`
	EventCount     int    `json:"eventCount"`
	OriginalSize   int    `json:"originalSize"`
	CompressedSize int    `json:"compressedSize"`
	Seq            int64  `json:"seq"`
	CreatedAt      int64  `json:"createdAt"`
}

// PutSession validates, compresses and archives sess. A session whose id
// is already archived is left untouched and its existing record returned.
func (s *Store) PutSession(ctx context.Context, sess *session.Session) (SessionRecord, error) {
	if err := session.Check(sess); err != nil {
		return SessionRecord{}, fmt.Errorf("put session: %w", err)
	}
	stats, err := codec.MeasureCompression(sess)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("put session: %w", err)
	}
	data, err := codec.Compress(sess)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("put session: %w", err)
	}

	h := sess.Header
	var inserted bool
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		seq, err := nextSeq(ctx, tx, "sessions")
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO sessions
			(id, session_id, platform, app_id, start_time, event_count, original_size, compressed_size, data, seq, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(session_id) DO NOTHING
		`,
			s.ids.Generate(),
			h.SessionID,
			h.Device.Platform,
			h.App.Identifier,
			h.StartTime,
			len(sess.Events),
			stats.OriginalSize,
			len(data),
			data,
			seq,
			s.now().UnixMilli(),
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		inserted = n > 0
		return err
	})
	if err != nil {
		return SessionRecord{}, fmt.Errorf("put session: %w", err)
	}

	rec, err := s.SessionRecord(ctx, h.SessionID)
	if err != nil {
		return SessionRecord{}, err
	}
	if inserted {
		s.logger.Debug("session archived",
			"session_id", rec.SessionID,
			"events", rec.EventCount,
			"original_bytes", rec.OriginalSize,
			"compressed_bytes", rec.CompressedSize)
	}
	return rec, nil
}

// GetSession restores the archived session with the given header id.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*session.Session, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM sessions WHERE session_id = ?`, sessionID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %q: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	sess, err := codec.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, err)
	}
	return sess, nil
}

// SessionRecord returns the metadata of one archived session.
func (s *Store) SessionRecord(ctx context.Context, sessionID string) (SessionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, platform, app_id, start_time, event_count, original_size, compressed_size, seq, created_at
		FROM sessions
		WHERE session_id = ?
	`, sessionID)
	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, fmt.Errorf("session %q: %w", sessionID, ErrNotFound)
	}
	return rec, err
}

// ListSessions returns archived sessions in archive order, optionally
// restricted to one app. Returns an empty slice (not nil) when none match.
func (s *Store) ListSessions(ctx context.Context, appID string) ([]SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, platform, app_id, start_time, event_count, original_size, compressed_size, seq, created_at
		FROM sessions
		WHERE ? = '' OR app_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, appID, appID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	records := []SessionRecord{}
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (SessionRecord, error) {
	var rec SessionRecord
	err := row.Scan(
		&rec.ID, &rec.SessionID, &rec.Platform, &rec.AppID, &rec.StartTime,
		&rec.EventCount, &rec.OriginalSize, &rec.CompressedSize, &rec.Seq, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan session: %w", err)
	}
	return rec, nil
}
