package services

import (
	"errors"
	"fmt"
	"photoaudit/internal/models"
	"photoaudit/internal/providers"
	"strings"
	"sync"
	"time"
)

var (
	ErrNoSession       = errors.New("no review session started")
	ErrSessionComplete = errors.New("review session is complete")
	ErrUnknownBucket   = errors.New("unknown bucket")
)

type ReviewServiceInterface interface {
	Start(session *models.ReviewSession)
	Session() *models.ReviewSession
	Current() (visit models.Visit, position int, total int, err error)
	Record(bucket string) (rec models.ReviewRecord, complete bool, err error)
	Results() []models.ReviewRecord
	Progress() (reviewed int, total int)
	Done() bool
}

// ReviewService walks a session visit by visit and keeps the reviewer's
// judgments in memory until they are exported.
type ReviewService struct {
	mu      sync.Mutex
	logger  providers.Logger
	session *models.ReviewSession
	buckets map[string]struct{}
	cursor  int
	results []models.ReviewRecord
	now     func() time.Time
}

func NewReviewService(logger providers.Logger) ReviewServiceInterface {
	return &ReviewService{
		logger: logger,
		now:    time.Now,
	}
}

// Start replaces any previous session and discards its results.
func (rs *ReviewService) Start(session *models.ReviewSession) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.session = session
	rs.cursor = 0
	rs.results = make([]models.ReviewRecord, 0, len(session.Visits))
	rs.buckets = make(map[string]struct{}, len(session.Config.Buckets))
	for _, b := range session.Config.Buckets {
		if b = strings.TrimSpace(b); b != "" {
			rs.buckets[b] = struct{}{}
		}
	}
	rs.logger.Infof(providers.TypeReview, "Review started: session %s, %d visits", session.ID, len(session.Visits))
}

func (rs *ReviewService) Session() *models.ReviewSession {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.session
}

// Current returns the visit awaiting a bucket and its 1-based position.
func (rs *ReviewService) Current() (models.Visit, int, int, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.session == nil {
		return models.Visit{}, 0, 0, ErrNoSession
	}
	total := len(rs.session.Visits)
	if rs.cursor >= total {
		return models.Visit{}, total, total, ErrSessionComplete
	}
	return rs.session.Visits[rs.cursor], rs.cursor + 1, total, nil
}

// Record classifies the current visit and advances to the next one.
func (rs *ReviewService) Record(bucket string) (models.ReviewRecord, bool, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.session == nil {
		return models.ReviewRecord{}, false, ErrNoSession
	}
	if rs.cursor >= len(rs.session.Visits) {
		return models.ReviewRecord{}, true, ErrSessionComplete
	}
	bucket = strings.TrimSpace(bucket)
	if _, ok := rs.buckets[bucket]; !ok {
		return models.ReviewRecord{}, false, fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
	}

	visit := rs.session.Visits[rs.cursor]
	rec := models.NewReviewRecord(visit, rs.session.Config.Reviewer, bucket, rs.now())
	rs.results = append(rs.results, rec)
	rs.cursor++

	rs.logger.Debugf(providers.TypeReview, "Visit %d/%d %s classified as %s", rs.cursor, len(rs.session.Visits), visit.FormID, bucket)

	complete := rs.cursor >= len(rs.session.Visits)
	if complete {
		rs.logger.Infof(providers.TypeReview, "Review complete: session %s, %d visits", rs.session.ID, len(rs.results))
	}
	return rec, complete, nil
}

func (rs *ReviewService) Results() []models.ReviewRecord {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	out := make([]models.ReviewRecord, len(rs.results))
	copy(out, rs.results)
	return out
}

func (rs *ReviewService) Progress() (int, int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.session == nil {
		return 0, 0
	}
	return len(rs.results), len(rs.session.Visits)
}

func (rs *ReviewService) Done() bool {
	reviewed, total := rs.Progress()
	return total > 0 && reviewed >= total
}
