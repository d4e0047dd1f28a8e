package product

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/coursetrack-server-go/internal/features/view"
)

func (f *fixture) statistics() []Statistic {
	f.t.Helper()
	rows, err := Aggregates(f.ctx, f.db)
	require.NoError(f.t, err)
	stats, err := WithCoefficients(f.ctx, f.db, rows)
	require.NoError(f.t, err)
	return stats
}

func TestStatistics_EmptyTable(t *testing.T) {
	f := newFixture(t)

	stats := f.statistics()
	assert.NotNil(t, stats)
	assert.Empty(t, stats)
}

func TestStatistics_Aggregates(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner")
	alice := f.user("alice")
	bob := f.user("bob")
	f.user("carol")
	intro := f.lesson(owner.ID, "Intro", 600)
	loops := f.lesson(owner.ID, "Loops", 300)

	first, err := Create(f.ctx, f.db, owner.ID, CreateInput{
		Title:        "Go course",
		Usernames:    []string{"alice", "bob"},
		LessonTitles: []string{"Intro", "Loops"},
	}, time.Now())
	require.NoError(t, err)
	_, err = Create(f.ctx, f.db, owner.ID, CreateInput{Title: "Unused"}, time.Now())
	require.NoError(t, err)

	now := time.Now()
	_, err = view.RecordProgress(f.ctx, f.db, alice.ID, intro.ID, 500, 600, now)
	require.NoError(t, err)
	_, err = view.RecordProgress(f.ctx, f.db, alice.ID, loops.ID, 100, 300, now)
	require.NoError(t, err)
	_, err = view.RecordProgress(f.ctx, f.db, bob.ID, loops.ID, 290, 300, now)
	require.NoError(t, err)
	// The owner's progress is outside the access pairs and must not be counted.
	_, err = view.RecordProgress(f.ctx, f.db, owner.ID, intro.ID, 600, 600, now)
	require.NoError(t, err)

	stats := f.statistics()
	require.Len(t, stats, 2)

	assert.Equal(t, first.Title, stats[0].Title)
	assert.EqualValues(t, 2, stats[0].CountViewing)
	assert.EqualValues(t, 890, stats[0].AllTimeViewings)
	assert.EqualValues(t, 2, stats[0].CountStudents)
	assert.InDelta(t, 0.5, stats[0].BuyCoefficient, 1e-9)

	assert.Equal(t, "Unused", stats[1].Title)
	assert.Zero(t, stats[1].CountViewing)
	assert.Zero(t, stats[1].AllTimeViewings)
	assert.Zero(t, stats[1].CountStudents)
	assert.Zero(t, stats[1].BuyCoefficient)
}

func TestStatistics_NoUsers(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.db.Create(&Product{Title: "Orphan", OwnerID: uuid.New()}).Error)

	stats := f.statistics()
	require.Len(t, stats, 1)
	assert.Zero(t, stats[0].BuyCoefficient)
}

func TestWithCoefficients_ReadsCurrentUserCount(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner")
	f.user("alice")

	_, err := Create(f.ctx, f.db, owner.ID, CreateInput{Title: "Go course", Usernames: []string{"alice"}}, time.Now())
	require.NoError(t, err)

	rows, err := Aggregates(f.ctx, f.db)
	require.NoError(t, err)

	stats, err := WithCoefficients(f.ctx, f.db, rows)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, stats[0].BuyCoefficient, 1e-9)

	f.user("bob")
	f.user("carol")

	stats, err = WithCoefficients(f.ctx, f.db, rows)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, stats[0].BuyCoefficient, 1e-9)
}

func TestBuyCoefficient(t *testing.T) {
	tests := []struct {
		students, total int64
		want            float64
	}{
		{students: 0, total: 0, want: 0},
		{students: 3, total: 0, want: 0},
		{students: 1, total: 3, want: 0.3333},
		{students: 2, total: 3, want: 0.6667},
		{students: 4, total: 4, want: 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BuyCoefficient(tt.students, tt.total), "%d/%d", tt.students, tt.total)
	}
}
