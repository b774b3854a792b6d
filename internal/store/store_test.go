package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gremlin/internal/testutil"
)

// createTestStore opens a file-backed store with deterministic ids and
// clock.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithIDGenerator(testutil.NewSequentialIDs("rec")),
		WithClock(testutil.NewFixedClock(time.Second).Now),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range []string{"sessions", "specs", "artifacts"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	checks := map[string]string{
		"journal_mode": "wal",
		"foreign_keys": "1",
		"busy_timeout": "5000",
		"user_version": "1",
	}
	for name, want := range checks {
		if err := s.verifyPragma(name, want); err != nil {
			t.Error(err)
		}
	}
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	sessions, err := s.ListSessions(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.NotNil(t, sessions)
}

func TestUUIDv7Generator(t *testing.T) {
	g := UUIDv7Generator{}
	a, b := g.Generate(), g.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.Equal(t, byte('7'), a[14], "version nibble")
}

func TestSessions_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	sess := testutil.SampleSession()

	rec, err := s.PutSession(ctx, sess)
	require.NoError(t, err)

	assert.Equal(t, "rec-0001", rec.ID)
	assert.Equal(t, "sess-0001", rec.SessionID)
	assert.Equal(t, "web", rec.Platform)
	assert.Equal(t, "https://shop.example.com", rec.AppID)
	assert.Equal(t, len(sess.Events), rec.EventCount)
	assert.Equal(t, int64(1), rec.Seq)
	assert.Equal(t, testutil.Epoch.UnixMilli(), rec.CreatedAt)
	assert.Less(t, rec.CompressedSize, rec.OriginalSize)

	got, err := s.GetSession(ctx, "sess-0001")
	require.NoError(t, err)
	assert.Equal(t, sess.Header, got.Header)
	assert.Equal(t, sess.Elements, got.Elements)
	require.Len(t, got.Events, len(sess.Events))
	for i := range sess.Events {
		assert.Equal(t, sess.Events[i].Kind(), got.Events[i].Kind(), "event %d", i)
	}
}

func TestSessions_PutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	first, err := s.PutSession(ctx, testutil.SampleSession())
	require.NoError(t, err)
	second, err := s.PutSession(ctx, testutil.SampleSession())
	require.NoError(t, err)

	assert.Equal(t, first, second)

	all, err := s.ListSessions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSessions_RejectsInvalid(t *testing.T) {
	s := createTestStore(t)
	sess := testutil.SampleSession()
	sess.Header.SessionID = ""

	_, err := s.PutSession(context.Background(), sess)
	assert.Error(t, err)
}

func TestSessions_ListFiltersByApp(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	a := testutil.SampleSession()
	b := testutil.SampleSession()
	b.Header.SessionID = "sess-0002"
	b.Header.App.Identifier = "com.example.other"

	_, err := s.PutSession(ctx, a)
	require.NoError(t, err)
	_, err = s.PutSession(ctx, b)
	require.NoError(t, err)

	all, err := s.ListSessions(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "sess-0001", all[0].SessionID)
	assert.Equal(t, "sess-0002", all[1].SessionID)
	assert.Equal(t, int64(2), all[1].Seq)

	other, err := s.ListSessions(ctx, "com.example.other")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "sess-0002", other[0].SessionID)
}

func TestSessions_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetSession(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSession() error = %v, want ErrNotFound", err)
	}
}

func TestSpecs_PutGetByHash(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	sp := testutil.ShopSpec(t)

	hash, err := s.PutSpec(ctx, sp)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	got, err := s.GetSpec(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, sp.Name, got.Name)
	assert.Len(t, got.Transitions, 10)

	again, err := s.PutSpec(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, hash, again, "a decoded spec hashes to the same address")

	list, err := s.ListSpecs(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Shop", list[0].Name)
}

func TestSpecs_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.GetSpec(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArtifacts_UpsertByPath(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	hash, err := s.PutSpec(ctx, testutil.ShopSpec(t))
	require.NoError(t, err)

	first, err := s.PutArtifact(ctx, Artifact{SpecHash: hash, Kind: KindPlaywright, Path: "shop.spec.ts", Content: "v1"})
	require.NoError(t, err)
	_, err = s.PutArtifact(ctx, Artifact{SpecHash: hash, Kind: KindMaestro, Path: "index.yaml", Content: "appId: shop"})
	require.NoError(t, err)
	updated, err := s.PutArtifact(ctx, Artifact{SpecHash: hash, Kind: KindPlaywright, Path: "shop.spec.ts", Content: "v2"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, updated.ID)
	assert.Equal(t, first.Seq, updated.Seq)

	list, err := s.ListArtifacts(ctx, hash)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "shop.spec.ts", list[0].Path)
	assert.Equal(t, "v2", list[0].Content)
	assert.Equal(t, KindMaestro, list[1].Kind)
}

func TestArtifacts_RequireArchivedSpec(t *testing.T) {
	s := createTestStore(t)
	_, err := s.PutArtifact(context.Background(), Artifact{SpecHash: "nope", Kind: KindFuzz, Path: "fuzz.spec.ts"})
	assert.Error(t, err, "foreign key must reject unknown specs")
}
