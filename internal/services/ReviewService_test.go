package services

import (
	"photoaudit/internal/models"
	"photoaudit/internal/testutil"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() *models.ReviewSession {
	return &models.ReviewSession{
		ID: "s1",
		Config: models.SessionConfig{
			Buckets:  []string{"Real", " Fake "},
			Reviewer: "ann",
		},
		Visits: []models.Visit{
			{FormID: "f1", UserID: "u1", Photos: make([]models.PhotoRecord, 2)},
			models.NewDecoyVisit(0, "/bad/x.png", "x.png", "png"),
		},
	}
}

func newReviewService(t *testing.T) *ReviewService {
	t.Helper()
	rs := NewReviewService(&testutil.MockLogger{}).(*ReviewService)
	rs.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local) }
	return rs
}

func TestReviewService_NoSession(t *testing.T) {
	rs := newReviewService(t)

	_, _, _, err := rs.Current()
	assert.ErrorIs(t, err, ErrNoSession)
	_, _, err = rs.Record("Real")
	assert.ErrorIs(t, err, ErrNoSession)

	reviewed, total := rs.Progress()
	assert.Zero(t, reviewed)
	assert.Zero(t, total)
	assert.False(t, rs.Done())
	assert.Nil(t, rs.Session())
}

func TestReviewService_WalksSession(t *testing.T) {
	rs := newReviewService(t)
	rs.Start(testSession())

	visit, pos, total, err := rs.Current()
	require.NoError(t, err)
	assert.Equal(t, "f1", visit.FormID)
	assert.Equal(t, 1, pos)
	assert.Equal(t, 2, total)

	rec, complete, err := rs.Record("Real")
	require.NoError(t, err)
	assert.False(t, complete)
	assert.Equal(t, "f1", rec.FormID)
	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, "ann", rec.Reviewer)

	visit, pos, _, err = rs.Current()
	require.NoError(t, err)
	assert.True(t, visit.IsDecoy)
	assert.Equal(t, 2, pos)

	rec, complete, err = rs.Record("Fake")
	require.NoError(t, err)
	assert.True(t, complete)
	assert.Equal(t, "x.png", rec.FormID)
	assert.Equal(t, "DECOY_0", rec.UserID)
	assert.True(t, rec.IsDecoy)
	assert.Equal(t, "Fake", rec.Bucket)

	_, _, _, err = rs.Current()
	assert.ErrorIs(t, err, ErrSessionComplete)
	_, _, err = rs.Record("Real")
	assert.ErrorIs(t, err, ErrSessionComplete)
	assert.True(t, rs.Done())
	assert.Len(t, rs.Results(), 2)
}

func TestReviewService_UnknownBucketDoesNotAdvance(t *testing.T) {
	rs := newReviewService(t)
	rs.Start(testSession())

	_, _, err := rs.Record("Maybe")
	assert.ErrorIs(t, err, ErrUnknownBucket)

	_, pos, _, err := rs.Current()
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.Empty(t, rs.Results())
}

func TestReviewService_ResultsIsCopy(t *testing.T) {
	rs := newReviewService(t)
	rs.Start(testSession())
	_, _, err := rs.Record("Real")
	require.NoError(t, err)

	res := rs.Results()
	res[0].Bucket = "changed"
	assert.Equal(t, "Real", rs.Results()[0].Bucket)
}

func TestReviewService_StartResets(t *testing.T) {
	rs := newReviewService(t)
	rs.Start(testSession())
	_, _, _ = rs.Record("Real")

	rs.Start(testSession())
	reviewed, total := rs.Progress()
	assert.Zero(t, reviewed)
	assert.Equal(t, 2, total)
}

func TestReviewService_ConcurrentRecord(t *testing.T) {
	rs := newReviewService(t)
	session := &models.ReviewSession{
		ID:     "s",
		Config: models.SessionConfig{Buckets: []string{"A", "B"}},
	}
	for i := 0; i < 50; i++ {
		session.Visits = append(session.Visits, models.Visit{FormID: models.DecoyID(i)})
	}
	rs.Start(session)

	var wg sync.WaitGroup
	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = rs.Record("A")
		}()
	}
	wg.Wait()

	reviewed, total := rs.Progress()
	assert.Equal(t, 50, reviewed)
	assert.Equal(t, 50, total)
}
