// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/transcript-md/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun(input string) types.Run {
	return types.Run{
		Input:       input,
		Output:      "out.md",
		InputSHA256: "abc123",
		ConversionResult: types.ConversionResult{
			Lines:      12,
			Records:    10,
			Skipped:    1,
			Fragments:  8,
			Characters: 4200,
			Truncated:  true,
		},
	}
}

func TestRecordFillsIDAndTime(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	before := time.Now().UTC()
	run, err := store.Record(ctx, sampleRun("a.jsonl"))
	require.NoError(t, err)

	assert.Len(t, run.ID, 36, "ID should be a UUID")
	assert.False(t, run.ConvertedAt.Before(before.Add(-time.Second)))
	assert.Equal(t, time.UTC, run.ConvertedAt.Location())

	got, err := store.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.ConversionResult, got.ConversionResult)
	assert.Equal(t, "abc123", got.InputSHA256)
	assert.True(t, run.ConvertedAt.Equal(got.ConvertedAt))
}

func TestRecordKeepsGivenID(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	in := sampleRun("a.jsonl")
	in.ID = "fixed-id"
	in.ConvertedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	run, err := store.Record(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", run.ID)

	_, err = store.Record(ctx, in)
	require.Error(t, err, "duplicate IDs are rejected")
}

func TestListNewestFirst(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for _, input := range []string{"first.jsonl", "second.jsonl", "third.jsonl"} {
		_, err := store.Record(ctx, sampleRun(input))
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "all", limit: 0, want: []string{"third.jsonl", "second.jsonl", "first.jsonl"}},
		{name: "negative means all", limit: -5, want: []string{"third.jsonl", "second.jsonl", "first.jsonl"}},
		{name: "limited", limit: 2, want: []string{"third.jsonl", "second.jsonl"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := store.List(ctx, tt.limit)
			require.NoError(t, err)
			var inputs []string
			for _, r := range runs {
				inputs = append(inputs, r.Input)
			}
			assert.Equal(t, tt.want, inputs)
		})
	}
}

func TestListEmpty(t *testing.T) {
	runs, err := testStore(t).List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestGetNotFound(t *testing.T) {
	_, err := testStore(t).Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	require.NoError(t, err)
	_, err = store.Record(context.Background(), sampleRun("a.jsonl"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestWriteYAML(t *testing.T) {
	run := sampleRun("a.jsonl")
	run.ID = "r1"
	run.ConvertedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, []types.Run{run}))

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0]["id"])
	assert.Equal(t, 4200, got[0]["characters"], "result fields are inlined")
	assert.Equal(t, true, got[0]["truncated"])
}

func TestWriteJSON(t *testing.T) {
	run := sampleRun("a.jsonl")
	run.ID = "r1"

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []types.Run{run}))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "a.jsonl", got[0]["input"])
	assert.Equal(t, float64(8), got[0]["fragments"])
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteYAML(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestFileDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	got, err := FileDigest(path)
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", got)

	_, err = FileDigest(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
