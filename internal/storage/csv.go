package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"photoaudit/internal/models"
	"slices"
	"time"
)

var ErrMalformedExport = errors.New("malformed results export")

// WriteResults writes the header and one row per record.
func WriteResults(w io.Writer, records []models.ReviewRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.CSVHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(rec.CSVRow()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadResults parses an export written by WriteResults. Timestamps are read
// back in local time at second precision.
func ReadResults(r io.Reader) ([]models.ReviewRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(models.CSVHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExport, err)
	}
	if !slices.Equal(header, models.CSVHeader) {
		return nil, fmt.Errorf("%w: unexpected header %v", ErrMalformedExport, header)
	}

	records := make([]models.ReviewRecord, 0)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedExport, err)
		}

		at, err := time.ParseInLocation(models.DateReviewedLayout, row[5], time.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedExport, err)
		}
		var decoy bool
		switch row[4] {
		case "True":
			decoy = true
		case "False":
		default:
			return nil, fmt.Errorf("%w: is_known_bad %q", ErrMalformedExport, row[4])
		}

		records = append(records, models.ReviewRecord{
			FormID:     row[0],
			UserID:     row[1],
			Reviewer:   row[2],
			Bucket:     row[3],
			IsDecoy:    decoy,
			ReviewedAt: at,
		})
	}
	return records, nil
}
