package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/ixbrlcheck/internal/model"
)

// setupTestStore creates a store in a temporary directory
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "data", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, s.Close()) })

	return s
}

// fixedClock returns a clock that advances one second per call
func fixedClock() func() time.Time {
	current := time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func testReport(docID, source string, valid bool) *model.Report {
	var findings []model.Finding
	if !valid {
		findings = append(findings, model.Finding{
			RuleID:   "fact.missing_context_ref",
			Severity: model.SeverityError,
			Message:  "ifrs-full:Revenue references undeclared context \"C9\"",
			Subject:  &model.Subject{Kind: model.SubjectFact, Concept: "ifrs-full:Revenue", Index: 2},
		})
	}
	if findings == nil {
		findings = []model.Finding{}
	}
	return &model.Report{
		DocumentID: docID,
		Source:     source,
		Profile:    "ESEF",
		Valid:      valid,
		Findings:   findings,
		Summary:    model.Summarize(findings),
		Stats:      model.Stats{Contexts: 1, Units: 1, Facts: 6, Numeric: 1, SchemaRefs: 1},
	}
}

func TestStore_SaveAndLatest(t *testing.T) {
	s := setupTestStore(t)
	s.now = fixedClock()
	ctx := context.Background()

	first := testReport("doc-1", "acme.xhtml", false)
	second := testReport("doc-1", "acme-fixed.xhtml", true)
	require.NoError(t, s.Save(ctx, first))
	require.NoError(t, s.Save(ctx, second))
	require.NoError(t, s.Save(ctx, testReport("doc-2", "other.xhtml", true)))

	run, err := s.Latest(ctx, "doc-1")
	require.NoError(t, err)

	assert.Equal(t, "acme-fixed.xhtml", run.Source)
	assert.True(t, run.Valid)
	assert.Equal(t, 6, run.Facts)
	assert.Equal(t, second, run.Report)

	got, err := s.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run, got)
}

func TestStore_ReportRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	report := testReport("doc-1", "acme.xhtml", false)
	require.NoError(t, s.Save(ctx, report))

	run, err := s.Latest(ctx, "doc-1")
	require.NoError(t, err)

	assert.Equal(t, report, run.Report)
	assert.False(t, run.Valid)
	assert.Equal(t, 1, run.Errors)
	assert.Equal(t, model.SeverityError, run.Report.Findings[0].Severity)
}

func TestStore_List(t *testing.T) {
	s := setupTestStore(t)
	s.now = fixedClock()
	ctx := context.Background()

	for _, source := range []string{"a.xhtml", "b.xhtml", "c.xhtml"} {
		require.NoError(t, s.Save(ctx, testReport("doc-"+source, source, true)))
	}

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "c.xhtml", runs[0].Source)
	assert.Equal(t, "a.xhtml", runs[2].Source)
	assert.Nil(t, runs[0].Report)
	assert.True(t, runs[0].CreatedAt.After(runs[1].CreatedAt))

	limited, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestStore_NotFound(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Latest(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	runs, err := s.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStore_ReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, testReport("doc-1", "acme.xhtml", true)))
	require.NoError(t, s.Close())

	// Migrations must not reapply
	s, err = Open(path)
	require.NoError(t, err)
	defer func() { assert.NoError(t, s.Close()) }()

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	assert.Equal(t, path, s.Path())
}

func TestStore_ConcurrentSaves(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			errs <- s.Save(ctx, testReport("doc-1", "acme.xhtml", true))
		}()
	}
	for i := 0; i < 8; i++ {
		assert.NoError(t, <-errs)
	}

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 8)
}
