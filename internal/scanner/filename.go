package scanner

import (
	"path"
	"path/filepath"
	"photoaudit/internal/models"
	"regexp"
	"strings"
)

const uuidPattern = `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`

var (
	// <json_block>-<question_id>-<user_id>-form_<form_id>
	baseGrammar = regexp.MustCompile(
		`(?i)^(?P<json_block>[a-z0-9_\-]+)-(?P<question_id>[a-z0-9_\-]+)-(?P<user_id>[a-z0-9]+)-form_(?P<form_id>` + uuidPattern + `)$`,
	)

	// <ignored>-<ignored>-<json_block>-<question_id>[-<path>...]-<user_id>-form_<form_id>
	// The question id is the first hyphen-free token after the json block;
	// deeper group path tokens before the user id are dropped. An empty
	// token (a doubled hyphen) leaves no question id, so such names do not
	// parse.
	prefixedGrammar = regexp.MustCompile(
		`(?i)^[^-]+-[^-]+-(?P<json_block>[a-z0-9_\-]+?)-(?P<question_id>[a-z0-9_]+)-(?:[a-z0-9_\-]+-)?(?P<user_id>[a-z0-9]+)-form_(?P<form_id>` + uuidPattern + `)$`,
	)

	grammars = []*regexp.Regexp{baseGrammar, prefixedGrammar}
)

var imageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

func IsImageExtension(ext string) bool {
	_, ok := imageExtensions[strings.ToLower(ext)]
	return ok
}

// SplitExtension returns the name without its last suffix and the suffix
// lower-cased without the dot. A leading dot alone does not start a suffix.
func SplitExtension(name string) (stem, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return name, ""
	}
	return name[:i], strings.ToLower(name[i+1:])
}

// ParseFilename recovers photo metadata from the base name of location.
// The second result is false when no grammar matches.
func ParseFilename(location string) (models.PhotoRecord, bool) {
	name := path.Base(filepath.ToSlash(location))
	stem, ext := SplitExtension(name)

	for _, re := range grammars {
		m := re.FindStringSubmatch(stem)
		if m == nil {
			continue
		}
		return models.PhotoRecord{
			JSONBlock:   m[re.SubexpIndex("json_block")],
			QuestionID:  m[re.SubexpIndex("question_id")],
			UserID:      m[re.SubexpIndex("user_id")],
			FormID:      m[re.SubexpIndex("form_id")],
			Extension:   ext,
			DisplayName: name,
			Location:    location,
		}, true
	}
	return models.PhotoRecord{}, false
}

// IsFormID reports whether s has the 8-4-4-4-12 hex shape used for form ids.
func IsFormID(s string) bool {
	return formIDShape.MatchString(s)
}

var formIDShape = regexp.MustCompile(`(?i)^` + uuidPattern + `$`)
