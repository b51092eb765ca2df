package models

import "strconv"

const (
	DecoyPrefix   = "DECOY_"
	DecoySentinel = "known_bad"
)

// Visit is every photo sharing one form submission. Decoy visits carry a
// single photo from the known-bad pool and a DECOY_<n> placeholder id.
type Visit struct {
	FormID  string        `json:"form_id"`
	UserID  string        `json:"user_id"`
	Photos  []PhotoRecord `json:"photos"`
	IsDecoy bool          `json:"is_decoy"`
}

func DecoyID(index int) string {
	return DecoyPrefix + strconv.Itoa(index)
}

// NewDecoyVisit wraps a known-bad photo as a single-photo visit.
func NewDecoyVisit(index int, location, name, extension string) Visit {
	id := DecoyID(index)
	return Visit{
		FormID: id,
		Photos: []PhotoRecord{{
			JSONBlock:   DecoySentinel,
			QuestionID:  DecoySentinel,
			FormID:      id,
			Extension:   extension,
			DisplayName: name,
			Location:    location,
		}},
		IsDecoy: true,
	}
}

func (v Visit) PhotoCount() int {
	return len(v.Photos)
}
