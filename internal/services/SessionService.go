package services

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"photoaudit/internal/models"
	"photoaudit/internal/providers"
	"photoaudit/internal/scanner"
	"photoaudit/internal/structures"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidConfig = errors.New("invalid session configuration")
	ErrNoData        = errors.New("no photos match the selected questions")
	ErrNoVisits      = errors.New("no visits selected for review")
)

type SessionServiceInterface interface {
	Build(records []models.PhotoRecord, conf models.SessionConfig) (*models.ReviewSession, error)
}

type SessionService struct {
	logger  providers.Logger
	shuffle func(n int, swap func(i, j int))
	now     func() time.Time
}

func NewSessionService(logger providers.Logger) SessionServiceInterface {
	return &SessionService{
		logger:  logger,
		shuffle: rand.Shuffle,
		now:     time.Now,
	}
}

// SessionConfigFromConfig maps the review section of the loaded
// configuration onto session parameters.
func SessionConfigFromConfig(conf *structures.Config) models.SessionConfig {
	return models.SessionConfig{
		QuestionIDs:   conf.Review.Questions,
		Buckets:       conf.Review.Buckets,
		Percent:       conf.Review.Percent,
		IncludeDecoys: conf.Review.Decoys.Enabled,
		DecoyDir:      conf.Review.Decoys.Dir,
		DecoyCount:    conf.Review.Decoys.Count,
		Reviewer:      conf.Review.Reviewer,
	}
}

// ValidateSessionConfig rejects a configuration before any session work is
// done. Every returned error wraps ErrInvalidConfig.
func ValidateSessionConfig(conf models.SessionConfig) error {
	questions := 0
	for _, q := range conf.QuestionIDs {
		if strings.TrimSpace(q) != "" {
			questions++
		}
	}
	if questions == 0 {
		return fmt.Errorf("%w: select at least one question", ErrInvalidConfig)
	}

	buckets := make(map[string]struct{})
	for _, b := range conf.Buckets {
		if b = strings.TrimSpace(b); b != "" {
			buckets[b] = struct{}{}
		}
	}
	if len(buckets) < 2 {
		return fmt.Errorf("%w: at least two distinct buckets are required", ErrInvalidConfig)
	}

	if !(conf.Percent > 0 && conf.Percent <= 100) {
		return fmt.Errorf("%w: percent must be in (0, 100], got %v", ErrInvalidConfig, conf.Percent)
	}

	if conf.IncludeDecoys {
		if conf.DecoyDir == "" {
			return fmt.Errorf("%w: decoy directory is required", ErrInvalidConfig)
		}
		info, err := os.Stat(conf.DecoyDir)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("%w: decoy directory %q is not a directory", ErrInvalidConfig, conf.DecoyDir)
		}
		if conf.DecoyCount <= 0 {
			return fmt.Errorf("%w: decoy count must be positive, got %d", ErrInvalidConfig, conf.DecoyCount)
		}
	}
	return nil
}

// TargetPhotoCount is the number of photos a session has to cover:
// round(filtered*(percent/100)) with halves rounded to even, at least one
// whenever anything matched. The share is taken first so float ties land
// where the original tool's did.
func TargetPhotoCount(filtered int, percent float64) int {
	if filtered <= 0 {
		return 0
	}
	target := int(math.RoundToEven(float64(filtered) * (percent / 100)))
	return max(1, target)
}

// EstimatePhotoCount is the unfloored sample size shown before a session
// is built.
func EstimatePhotoCount(filtered int, percent float64) int {
	if filtered <= 0 || percent <= 0 {
		return 0
	}
	return int(math.RoundToEven(float64(filtered) * (percent / 100)))
}

func filterByQuestion(records []models.PhotoRecord, conf models.SessionConfig) []models.PhotoRecord {
	filtered := make([]models.PhotoRecord, 0, len(records))
	for _, rec := range records {
		if conf.HasQuestion(rec.QuestionID) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

func visitsFromRecords(records []models.PhotoRecord) []models.Visit {
	groups := scanner.GroupByFormID(records)
	visits := make([]models.Visit, 0, len(groups))
	for _, g := range groups {
		visits = append(visits, models.Visit{
			FormID: g.Key,
			UserID: g.Photos[0].UserID,
			Photos: g.Photos,
		})
	}
	return visits
}

// selectVisits takes whole visits in order until their photos reach target.
func selectVisits(visits []models.Visit, target int) []models.Visit {
	selected := make([]models.Visit, 0)
	covered := 0
	for _, v := range visits {
		if covered >= target {
			break
		}
		selected = append(selected, v)
		covered += v.PhotoCount()
	}
	return selected
}

func (s *SessionService) loadDecoys(dir string, count int) ([]models.Visit, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read decoy directory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		p := filepath.Join(dir, entry.Name())
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			paths = append(paths, p)
		}
	}

	s.shuffle(len(paths), func(i, j int) { paths[i], paths[j] = paths[j], paths[i] })
	if len(paths) > count {
		paths = paths[:count]
	}

	decoys := make([]models.Visit, 0, len(paths))
	for i, p := range paths {
		name := filepath.Base(p)
		_, ext := scanner.SplitExtension(name)
		decoys = append(decoys, models.NewDecoyVisit(i, p, name, ext))
	}
	return decoys, nil
}

func (s *SessionService) Build(records []models.PhotoRecord, conf models.SessionConfig) (*models.ReviewSession, error) {
	if err := ValidateSessionConfig(conf); err != nil {
		return nil, err
	}

	filtered := filterByQuestion(records, conf)
	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, strings.Join(conf.QuestionIDs, ", "))
	}

	visits := visitsFromRecords(filtered)
	s.shuffle(len(visits), func(i, j int) { visits[i], visits[j] = visits[j], visits[i] })

	target := TargetPhotoCount(len(filtered), conf.Percent)
	selected := selectVisits(visits, target)

	if conf.IncludeDecoys {
		decoys, err := s.loadDecoys(conf.DecoyDir, conf.DecoyCount)
		if err != nil {
			return nil, err
		}
		selected = append(selected, decoys...)
	}

	s.shuffle(len(selected), func(i, j int) { selected[i], selected[j] = selected[j], selected[i] })
	if len(selected) == 0 {
		return nil, ErrNoVisits
	}

	session := &models.ReviewSession{
		ID:            uuid.NewString(),
		Config:        conf,
		FilteredCount: len(filtered),
		TargetCount:   target,
		Visits:        selected,
		CreatedAt:     s.now(),
	}

	nVisits, nDecoys, nPhotos := session.Counts()
	s.logger.Infof(providers.TypeSession, "Session %s: %d filtered photos, target %d, %d visits (%d photos), %d decoys",
		session.ID, len(filtered), target, nVisits, nPhotos, nDecoys)

	return session, nil
}
