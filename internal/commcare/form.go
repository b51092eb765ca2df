package commcare

import (
	"sort"
	"strings"
)

type Attachment struct {
	URL         string `json:"url"`
	DownloadURL string `json:"download_url"`
	ContentType string `json:"content_type"`
	Length      int64  `json:"length"`
}

// Location prefers the explicit download URL.
func (a Attachment) Location() string {
	if a.DownloadURL != "" {
		return a.DownloadURL
	}
	return a.URL
}

type Form struct {
	ID          string                `json:"id"`
	Domain      string                `json:"domain"`
	ReceivedOn  string                `json:"received_on"`
	Data        map[string]any        `json:"form"`
	Attachments map[string]Attachment `json:"attachments"`
}

type pageMeta struct {
	Next       *string `json:"next"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
	TotalCount int     `json:"total_count"`
}

type formPage struct {
	Meta    pageMeta `json:"meta"`
	Objects []Form   `json:"objects"`
}

// UserID is form.meta.userID, "unknown" when absent.
func (f Form) UserID() string {
	if meta, ok := f.Data["meta"].(map[string]any); ok {
		if id, ok := meta["userID"].(string); ok && id != "" {
			return id
		}
	}
	return "unknown"
}

// QuestionFor finds the form question whose answer names the attachment.
// Nested groups are searched depth first with keys in sorted order; an
// answer that merely contains the name also counts. The attachment name
// without its extension is the fallback.
func (f Form) QuestionFor(attachment string) string {
	if q, ok := findQuestion(f.Data, attachment); ok {
		return q
	}
	stem := attachment
	for _, ext := range []string{".jpeg", ".jpg", ".png"} {
		stem = strings.ReplaceAll(stem, ext, "")
	}
	return stem
}

func findQuestion(data map[string]any, attachment string) (string, bool) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch v := data[key].(type) {
		case string:
			if v == attachment || strings.Contains(v, attachment) {
				return key, true
			}
		case map[string]any:
			if q, ok := findQuestion(v, attachment); ok {
				return q, true
			}
		}
	}
	return "", false
}

// ImageAttachments returns the names of attachments with an accepted image
// extension, sorted.
func (f Form) ImageAttachments(accept func(ext string) bool) []string {
	names := make([]string, 0, len(f.Attachments))
	for name := range f.Attachments {
		i := strings.LastIndexByte(name, '.')
		if i <= 0 || !accept(strings.ToLower(name[i+1:])) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
