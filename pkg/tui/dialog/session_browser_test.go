package dialog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill/pkg/session"
)

func summariesForTest(now time.Time) []session.Summary {
	return []session.Summary{
		{ID: "s1", Title: "fresh chat", CreatedAt: now.Add(-time.Hour)},
		{ID: "s2", Title: "yesterday chat", CreatedAt: now.AddDate(0, 0, -1)},
		{ID: "s3", Title: "midweek chat", CreatedAt: now.AddDate(0, 0, -4)},
		{ID: "s4", Title: "ancient chat", CreatedAt: now.AddDate(0, 0, -30)},
		{ID: "s5", Title: "", CreatedAt: now},
	}
}

func newBrowserForTest(t *testing.T) *sessionBrowserDialog {
	t.Helper()
	// Noon keeps the date buckets stable regardless of when the test runs.
	now := time.Date(2026, time.August, 20, 12, 0, 0, 0, time.Local)
	d := NewSessionBrowserDialog(summariesForTest(now)).(*sessionBrowserDialog)
	d.openedAt = now
	d.rebuildRows()
	d.SetSize(120, 40)
	return d
}

func TestBrowserGroupsByDate(t *testing.T) {
	t.Parallel()

	d := newBrowserForTest(t)

	var headers []string
	for _, row := range d.rows {
		if row.isHeader() {
			headers = append(headers, row.header)
		}
	}
	assert.Equal(t, []string{"Today", "Yesterday", "This Week", "Older"}, headers)
}

func TestBrowserHidesUntitledSessions(t *testing.T) {
	t.Parallel()

	d := newBrowserForTest(t)
	for _, row := range d.rows {
		if !row.isHeader() {
			assert.NotEqual(t, "s5", row.summary.ID)
		}
	}
}

func TestBrowserSelectionSkipsHeaders(t *testing.T) {
	t.Parallel()

	d := newBrowserForTest(t)

	s, ok := d.selectedSummary()
	require.True(t, ok)
	assert.Equal(t, "s1", s.ID)

	d.moveSelection(1)
	s, ok = d.selectedSummary()
	require.True(t, ok)
	assert.Equal(t, "s2", s.ID, "selection jumps over the Yesterday header")

	d.moveSelection(-1)
	s, _ = d.selectedSummary()
	assert.Equal(t, "s1", s.ID)

	// Up from the first entry stays put.
	d.moveSelection(-1)
	s, _ = d.selectedSummary()
	assert.Equal(t, "s1", s.ID)
}

func TestBrowserFilterNarrowsRows(t *testing.T) {
	t.Parallel()

	d := newBrowserForTest(t)
	d.textInput.SetValue("midweek")
	d.rebuildRows()

	var ids []string
	for _, row := range d.rows {
		if !row.isHeader() {
			ids = append(ids, row.summary.ID)
		}
	}
	assert.Equal(t, []string{"s3"}, ids)

	s, ok := d.selectedSummary()
	require.True(t, ok)
	assert.Equal(t, "s3", s.ID)
}

func TestBrowserRemoveSession(t *testing.T) {
	t.Parallel()

	d := newBrowserForTest(t)
	d.removeSession("s1")

	for _, row := range d.rows {
		if !row.isHeader() {
			assert.NotEqual(t, "s1", row.summary.ID)
		}
	}
	_, ok := d.selectedSummary()
	assert.True(t, ok, "selection moves to a surviving session")
}

func TestBrowserViewShowsSessions(t *testing.T) {
	t.Parallel()

	d := newBrowserForTest(t)
	view := d.View()
	assert.Contains(t, view, "fresh chat")
	assert.Contains(t, view, "Today")
}
