package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"photoaudit/internal/models"
	"sort"
)

var ErrInvalidRoot = errors.New("scan root is not a directory")

// ScanResult holds the parsed photos and the locations that failed parsing,
// both in directory iteration order.
type ScanResult struct {
	Root    string
	Valid   []models.PhotoRecord
	Invalid []string
}

func (r *ScanResult) Total() int {
	return len(r.Valid) + len(r.Invalid)
}

// ScanDirectory classifies the direct children of root. Only regular files
// (symlinks are followed) with an image extension are considered; anything
// else is skipped without being reported.
func ScanDirectory(root string) (*ScanResult, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRoot, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRoot, root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRoot, root, err)
	}

	result := &ScanResult{
		Root:    root,
		Valid:   make([]models.PhotoRecord, 0, len(entries)),
		Invalid: make([]string, 0),
	}
	for _, entry := range entries {
		location := filepath.Join(root, entry.Name())
		fi, err := os.Stat(location)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		if _, ext := SplitExtension(entry.Name()); !IsImageExtension(ext) {
			continue
		}

		if rec, ok := ParseFilename(location); ok {
			result.Valid = append(result.Valid, rec)
		} else {
			result.Invalid = append(result.Invalid, location)
		}
	}
	return result, nil
}

func groupBy(records []models.PhotoRecord, key func(models.PhotoRecord) string) []models.PhotoGroup {
	index := make(map[string]int)
	groups := make([]models.PhotoGroup, 0)
	for _, rec := range records {
		k := key(rec)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, models.PhotoGroup{Key: k})
		}
		groups[i].Photos = append(groups[i].Photos, rec)
	}
	return groups
}

func GroupByQuestionID(records []models.PhotoRecord) []models.PhotoGroup {
	return groupBy(records, func(r models.PhotoRecord) string { return r.QuestionID })
}

func GroupByFormID(records []models.PhotoRecord) []models.PhotoGroup {
	return groupBy(records, func(r models.PhotoRecord) string { return r.FormID })
}

// QuestionIDs returns the distinct question ids, sorted.
func QuestionIDs(records []models.PhotoRecord) []string {
	groups := GroupByQuestionID(records)
	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.Key)
	}
	sort.Strings(ids)
	return ids
}
