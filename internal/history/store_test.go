// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docsync/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(input string, force bool) types.Run {
	start := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	return types.Run{
		Config:     types.SyncConfig{InputDir: input, OutputDir: "/out", Force: force, SourceExt: ".docx", TargetExt: ".pdf"},
		Backend:    "soffice",
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
		Found:      3,
		Converted:  1,
		Skipped:    1,
		Failed:     1,
		Files: []types.FileResult{
			{Name: "a.docx", Source: input + "/a.docx", Destination: "/out/a.pdf", Status: types.StatusConverted},
			{Name: "b.docx", Source: input + "/b.docx", Destination: "/out/b.pdf", Status: types.StatusSkipped},
			{Name: "c.docx", Source: input + "/c.docx", Destination: "/out/c.pdf", Status: types.StatusFailed, Error: "soffice exited 1"},
		},
	}
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.Record(ctx, sampleRun("/in/first", false))
	require.NoError(t, err)
	second, err := s.Record(ctx, sampleRun("/in/second", true))
	require.NoError(t, err)
	assert.Greater(t, second, first)

	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, second, runs[0].ID, "newest run first")
	assert.Equal(t, "/in/second", runs[0].InputDir)
	assert.True(t, runs[0].Force)
	assert.False(t, runs[1].Force)
	assert.Equal(t, "soffice", runs[0].Backend)
	assert.Equal(t, 3, runs[0].Found)
	assert.Equal(t, 1, runs[0].Converted)
	assert.Equal(t, 1, runs[0].Skipped)
	assert.Equal(t, 1, runs[0].Failed)
	assert.Equal(t, 3*time.Second, runs[0].FinishedAt.Sub(runs[0].StartedAt))
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.Record(ctx, sampleRun("/in", false))
		require.NoError(t, err)
	}

	runs, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestFiles(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Record(ctx, sampleRun("/in", false))
	require.NoError(t, err)

	files, err := s.Files(ctx, id)
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, "a.docx", files[0].Name)
	assert.Equal(t, types.StatusConverted, files[0].Status)
	assert.Empty(t, files[0].Error)
	assert.Equal(t, types.StatusFailed, files[2].Status)
	assert.Equal(t, "soffice exited 1", files[2].Error)
}

func TestOpenReusesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Record(ctx, sampleRun("/in", false))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	runs, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
