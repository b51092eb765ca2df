package services

import (
	"photoaudit/internal/models"
	"photoaudit/internal/providers"
	"photoaudit/internal/scanner"
)

type QuestionSummary struct {
	QuestionID string `json:"question_id"`
	Photos     int    `json:"photos"`
	Visits     int    `json:"visits"`
}

type ScanSummary struct {
	Root         string            `json:"root"`
	Valid        int               `json:"valid"`
	Invalid      int               `json:"invalid"`
	InvalidFiles []string          `json:"invalid_files"`
	Questions    []QuestionSummary `json:"questions"`
	Selected     int               `json:"selected_photos"`
	Estimate     int               `json:"estimated_sample"`
}

type ScanServiceInterface interface {
	Scan(root string) (*scanner.ScanResult, error)
	Summarize(res *scanner.ScanResult, conf models.SessionConfig) ScanSummary
}

type ScanService struct {
	logger providers.Logger
}

func NewScanService(logger providers.Logger) ScanServiceInterface {
	return &ScanService{logger: logger}
}

func (s *ScanService) Scan(root string) (*scanner.ScanResult, error) {
	res, err := scanner.ScanDirectory(root)
	if err != nil {
		s.logger.Errorf(providers.TypeScan, "Scan failed: %s", err)
		return nil, err
	}

	s.logger.Infof(providers.TypeScan, "Scanned %s: %d valid, %d invalid", root, len(res.Valid), len(res.Invalid))
	if len(res.Invalid) > 0 {
		s.logger.Warnf(providers.TypeScan, "%d files do not follow the naming format and will be ignored", len(res.Invalid))
	}
	return res, nil
}

// Summarize reports per-question counts in sorted question order and the
// estimated sample size for the questions selected in conf.
func (s *ScanService) Summarize(res *scanner.ScanResult, conf models.SessionConfig) ScanSummary {
	summary := ScanSummary{
		Root:         res.Root,
		Valid:        len(res.Valid),
		Invalid:      len(res.Invalid),
		InvalidFiles: res.Invalid,
		Questions:    make([]QuestionSummary, 0),
	}

	byQuestion := make(map[string][]models.PhotoRecord)
	for _, g := range scanner.GroupByQuestionID(res.Valid) {
		byQuestion[g.Key] = g.Photos
	}
	for _, id := range scanner.QuestionIDs(res.Valid) {
		photos := byQuestion[id]
		summary.Questions = append(summary.Questions, QuestionSummary{
			QuestionID: id,
			Photos:     len(photos),
			Visits:     len(scanner.GroupByFormID(photos)),
		})
		if conf.HasQuestion(id) {
			summary.Selected += len(photos)
		}
	}
	summary.Estimate = EstimatePhotoCount(summary.Selected, conf.Percent)
	return summary
}
