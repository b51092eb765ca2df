package models

import "time"

// SessionConfig is everything the reviewer chooses before a session starts.
type SessionConfig struct {
	QuestionIDs   []string
	Buckets       []string
	Percent       float64
	IncludeDecoys bool
	DecoyDir      string
	DecoyCount    int
	Reviewer      string
}

// HasQuestion reports whether id is part of the selected question set.
func (c SessionConfig) HasQuestion(id string) bool {
	for _, q := range c.QuestionIDs {
		if q == id {
			return true
		}
	}
	return false
}

type ReviewSession struct {
	ID            string
	Config        SessionConfig
	FilteredCount int
	TargetCount   int
	Visits        []Visit
	CreatedAt     time.Time
}

// Counts splits the visit list into real and decoy visits.
func (s *ReviewSession) Counts() (visits int, decoys int, photos int) {
	for _, v := range s.Visits {
		if v.IsDecoy {
			decoys++
			continue
		}
		visits++
		photos += v.PhotoCount()
	}
	return visits, decoys, photos
}
