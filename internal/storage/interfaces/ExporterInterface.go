package interfaces

import (
	"photoaudit/internal/models"
	"time"
)

type ExporterInterface interface {
	ExportPath(now time.Time) string
	SaveResults(path string, records []models.ReviewRecord) error
	LoadResults(path string) ([]models.ReviewRecord, error)
	Close()
}
