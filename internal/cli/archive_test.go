package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gremlin/internal/session"
)

func archiveDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), ".gremlin", "archive.db")
}

func TestArchive_SessionListShow(t *testing.T) {
	db := archiveDB(t)
	input := writeSession(t)

	out, err := execute(t, NewArchiveCommand(&RootOptions{Format: "text"}), "session", input, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "→ sess-0001 (10 events")

	out, err = execute(t, NewArchiveCommand(&RootOptions{Format: "json"}), "list", "--db", db)
	require.NoError(t, err)
	var listing ArchiveListing
	decodeResponse(t, out, &listing)
	require.Len(t, listing.Sessions, 1)
	assert.Equal(t, "sess-0001", listing.Sessions[0].SessionID)
	assert.Equal(t, "https://shop.example.com", listing.Sessions[0].AppID)
	assert.Empty(t, listing.Specs)

	out, err = execute(t, NewArchiveCommand(&RootOptions{Format: "json"}), "show", "sess-0001", "--db", db)
	require.NoError(t, err)
	var s session.Session
	decodeResponse(t, out, &s)
	assert.Equal(t, "sess-0001", s.Header.SessionID)
	assert.Len(t, s.Events, 10)
}

func TestArchive_ListFiltersByApp(t *testing.T) {
	db := archiveDB(t)
	_, err := execute(t, NewArchiveCommand(&RootOptions{Format: "text"}), "session", writeSession(t), "--db", db)
	require.NoError(t, err)

	out, err := execute(t, NewArchiveCommand(&RootOptions{Format: "text"}), "list", "--app", "com.example.other", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Sessions (0)")
	assert.NotContains(t, out, "sess-0001")
}

func TestArchive_ShowMissing(t *testing.T) {
	out, err := execute(t, NewArchiveCommand(&RootOptions{Format: "text"}), "show", "nope", "--db", archiveDB(t))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}

func TestArchive_SpecAndArtifacts(t *testing.T) {
	db := archiveDB(t)

	out, err := execute(t, NewArchiveCommand(&RootOptions{Format: "json"}), "spec", writeShopSpec(t), "--db", db)
	require.NoError(t, err)
	var hashes map[string]string
	decodeResponse(t, out, &hashes)
	require.Len(t, hashes, 1)
	var hash string
	for _, h := range hashes {
		hash = h
	}
	require.Len(t, hash, 64)

	out, err = execute(t, NewArchiveCommand(&RootOptions{Format: "text"}), "artifacts", hash, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No artifacts archived.")

	out, err = execute(t, NewArchiveCommand(&RootOptions{Format: "text"}), "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, hash[:12]+"  Shop 1.0")
}

func TestArchive_ArtifactsRestore(t *testing.T) {
	db := archiveDB(t)
	out, err := execute(t, NewGenerateCommand(&RootOptions{Format: "json"}),
		"maestro", writeShopSpec(t), "-o", t.TempDir(), "--limit", "2", "--archive", "--db", db)
	require.NoError(t, err)
	var result GenerateResult
	decodeResponse(t, out, &result)

	restore := t.TempDir()
	_, err = execute(t, NewArchiveCommand(&RootOptions{Format: "text"}), "artifacts", result.SpecHash, "--db", db, "-o", restore)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(restore, "maestro", "index.yaml"))
}

func TestArchive_UnknownSpecHash(t *testing.T) {
	_, err := execute(t, NewArchiveCommand(&RootOptions{Format: "text"}), "artifacts", "deadbeef", "--db", archiveDB(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}
