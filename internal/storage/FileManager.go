package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"photoaudit/internal/models"
	"photoaudit/internal/providers"
	"photoaudit/internal/storage/interfaces"
	"photoaudit/internal/structures"
	"strings"
	"time"
)

// CompressedSuffix selects zstd compression for an export path.
const CompressedSuffix = ".zst"

func DefaultExportName(now time.Time) string {
	return "review_results_" + now.Format("20060102_150405") + ".csv"
}

type FileManager struct {
	compressor interfaces.CompressorInterface
	conf       *structures.Config
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

func NewFileManager(compressor interfaces.CompressorInterface, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) interfaces.ExporterInterface {
	return &FileManager{
		compressor: compressor,
		conf:       conf,
		logger:     logger,
		metrics:    metrics,
	}
}

// ExportPath is the configured export path, or a timestamped file name in
// the export directory.
func (f *FileManager) ExportPath(now time.Time) string {
	if f.conf.Export.Path != "" {
		return f.conf.Export.Path
	}
	return filepath.Join(f.conf.Export.Dir, DefaultExportName(now))
}

// SaveResults replaces path atomically with the CSV export of records.
func (f *FileManager) SaveResults(path string, records []models.ReviewRecord) error {
	start := time.Now()

	var buf bytes.Buffer
	if err := WriteResults(&buf, records); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	data := buf.Bytes()

	if strings.HasSuffix(path, CompressedSuffix) {
		var err error
		data, err = f.compressor.Compress(data)
		if err != nil {
			return fmt.Errorf("compress results: %w", err)
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			f.logger.Errorf(providers.TypeExport, "Export to %s failed: %s", path, err)
			return err
		}
	}

	if err := writeAtomic(path, data); err != nil {
		f.logger.Errorf(providers.TypeExport, "Export to %s failed: %s", path, err)
		return err
	}

	f.metrics.ObserveExportDuration(time.Since(start))
	f.logger.Infof(providers.TypeExport, "Exported %d results to %s", len(records), path)
	return nil
}

func writeAtomic(fileName string, data []byte) error {
	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) LoadResults(path string) ([]models.ReviewRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(path, CompressedSuffix) {
		data, err = f.compressor.Decompress(data)
		if err != nil {
			return nil, fmt.Errorf("decompress results: %w", err)
		}
	}
	return ReadResults(bytes.NewReader(data))
}

func (f *FileManager) Close() {
	f.compressor.Close()
}
