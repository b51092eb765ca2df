package models

import (
	"strings"
	"time"
)

const DateReviewedLayout = "2006-01-02 15:04:05"

// ReviewRecord is one exported row. For decoys FormID holds the photo file
// name and UserID the DECOY_<n> token.
type ReviewRecord struct {
	FormID     string    `json:"form_id"`
	UserID     string    `json:"user_id"`
	Reviewer   string    `json:"reviewer"`
	Bucket     string    `json:"bucket"`
	IsDecoy    bool      `json:"is_known_bad"`
	ReviewedAt time.Time `json:"date_reviewed"`
}

func NewReviewRecord(v Visit, reviewer, bucket string, at time.Time) ReviewRecord {
	rec := ReviewRecord{
		FormID:     v.FormID,
		UserID:     v.UserID,
		Reviewer:   strings.TrimSpace(reviewer),
		Bucket:     bucket,
		IsDecoy:    v.IsDecoy,
		ReviewedAt: at,
	}
	if v.IsDecoy {
		rec.FormID = "unknown"
		if len(v.Photos) > 0 {
			rec.FormID = v.Photos[0].DisplayName
		}
		rec.UserID = v.FormID
	}
	return rec
}

var CSVHeader = []string{"form_id", "user_id", "reviewer", "bucket", "is_known_bad", "date_reviewed"}

// CSVRow renders the record in CSVHeader order, timestamps in local time.
func (r ReviewRecord) CSVRow() []string {
	knownBad := "False"
	if r.IsDecoy {
		knownBad = "True"
	}
	return []string{
		r.FormID,
		r.UserID,
		r.Reviewer,
		r.Bucket,
		knownBad,
		r.ReviewedAt.Local().Format(DateReviewedLayout),
	}
}
