package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maarif-labs/maarif/internal/core/domain"
)

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m))
		lines = append(lines, m)
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestSink_AppendsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "events.jsonl")
	sink, err := New(path)
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sink.RecordLifecycle(context.Background(), domain.LifecycleEvent{
		Action:     domain.LifecycleCreated,
		DocumentID: "doc-1",
		Title:      "Leave Policy",
		Department: domain.DepartmentHR,
		Version:    "1",
		Chunks:     3,
		At:         now,
	})
	sink.RecordQuery(context.Background(), domain.QuerySummary{
		Query:      "كم عدد أيام الإجازة؟",
		Language:   domain.LanguageArabic,
		State:      domain.StateFinalized,
		Confidence: 92.5,
		Duration:   1500 * time.Millisecond,
		At:         now,
	})
	require.NoError(t, sink.Close())

	lines := readLines(t, path)
	require.Len(t, lines, 2)

	assert.Equal(t, "lifecycle", lines[0]["type"])
	assert.Equal(t, "created", lines[0]["action"])
	assert.Equal(t, "doc-1", lines[0]["document_id"])
	assert.EqualValues(t, 3, lines[0]["chunks"])

	assert.Equal(t, "query", lines[1]["type"])
	assert.Equal(t, "كم عدد أيام الإجازة؟", lines[1]["query"])
	assert.Equal(t, string(domain.StateFinalized), lines[1]["state"])
	assert.EqualValues(t, 1500, lines[1]["duration_ms"])
}

func TestSink_AppendsAcrossReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	for i := 0; i < 2; i++ {
		sink, err := New(path)
		require.NoError(t, err)
		sink.RecordLifecycle(context.Background(), domain.LifecycleEvent{
			Action:     domain.LifecycleDeleted,
			DocumentID: "doc-1",
			At:         time.Now().UTC(),
		})
		require.NoError(t, sink.Close())
	}

	assert.Len(t, readLines(t, path), 2)
}
