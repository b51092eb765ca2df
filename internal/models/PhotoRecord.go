package models

// PhotoRecord is the identity recovered from one photo's file name.
// Records are built once by the parser and never mutated.
type PhotoRecord struct {
	JSONBlock   string `json:"json_block"`
	QuestionID  string `json:"question_id"`
	UserID      string `json:"user_id"`
	FormID      string `json:"form_id"`
	Extension   string `json:"extension"`
	DisplayName string `json:"display_name"`
	Location    string `json:"-"`
}

// PhotoGroup is one bucket of a grouping view, in first-seen order.
type PhotoGroup struct {
	Key    string
	Photos []PhotoRecord
}
