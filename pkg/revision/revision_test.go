package revision_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/revstats/pkg/revision"
)

const testRepoURL = "svn://example.org/repo"

func TestParseAction(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"A", "M", "D", "R"} {
		action, err := revision.ParseAction(code)
		require.NoError(t, err)
		assert.Equal(t, code, action.String())
	}

	_, err := revision.ParseAction("X")
	require.ErrorIs(t, err, revision.ErrUnknownAction)

	_, err = revision.ParseAction("AM")
	require.ErrorIs(t, err, revision.ErrUnknownAction)
}

func TestAction_Label(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "added", revision.Added.Label())
	assert.Equal(t, "replaced", revision.Replaced.Label())
	assert.Equal(t, "unknown", revision.Action('Z').Label())
}

func TestSince_Inclusive(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	records := []revision.Record{
		{Number: 1, Timestamp: base.Add(-time.Hour)},
		{Number: 2, Timestamp: base},
		{Number: 3, Timestamp: base.Add(time.Hour)},
	}

	got := revision.Since(records, base)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].Number)

	assert.Len(t, revision.Since(records, time.Time{}), 3)
}

func TestMemorySource_OrdersByNumber(t *testing.T) {
	t.Parallel()

	src := revision.NewMemorySource()
	src.Put(testRepoURL, []revision.Record{{Number: 7}, {Number: 3}, {Number: 5}})

	got, err := src.AllRecords(context.Background(), testRepoURL)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{3, 5, 7}, []int64{got[0].Number, got[1].Number, got[2].Number})

	empty, err := src.AllRecords(context.Background(), "svn://other")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
