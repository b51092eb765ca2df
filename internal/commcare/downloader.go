package commcare

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"photoaudit/internal/providers"
	"photoaudit/internal/scanner"
	"regexp"
	"strings"
)

var (
	blockUnsafe    = regexp.MustCompile(`[^A-Za-z0-9_\-]+`)
	questionUnsafe = regexp.MustCompile(`[^A-Za-z0-9_]+`)
	userUnsafe     = regexp.MustCompile(`[^A-Za-z0-9]+`)
)

// sanitizeToken maps s onto the filename grammar's token class.
func sanitizeToken(re *regexp.Regexp, s string) string {
	s = strings.Trim(re.ReplaceAllString(s, "_"), "-")
	if s == "" {
		return "unknown"
	}
	return s
}

func sanitizeUser(s string) string {
	s = userUnsafe.ReplaceAllString(s, "")
	if s == "" {
		return "unknown"
	}
	return s
}

// PhotoFileName builds a name the scanner parses back into the same
// question, user and form. Questions lose their hyphens so the greedy json
// block cannot absorb part of them.
func PhotoFileName(jsonBlock, question, userID, formID, ext string) string {
	return fmt.Sprintf("%s-%s-%s-form_%s.%s",
		sanitizeToken(blockUnsafe, jsonBlock), sanitizeToken(questionUnsafe, question), sanitizeUser(userID), formID, strings.ToLower(ext))
}

type Downloader struct {
	client    ClientInterface
	jsonBlock string
	logger    providers.Logger
}

func NewDownloader(client ClientInterface, jsonBlock string, logger providers.Logger) *Downloader {
	return &Downloader{client: client, jsonBlock: jsonBlock, logger: logger}
}

// Download saves every image attachment of forms into dir, one at a time.
// Individual failures are logged and skipped; the saved paths are returned.
func (d *Downloader) Download(ctx context.Context, forms []Form, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	saved := make([]string, 0)
	for _, form := range forms {
		if !scanner.IsFormID(form.ID) {
			d.logger.Warnf(providers.TypeFetch, "Skipping form with non-UUID id %q", form.ID)
			continue
		}
		user := form.UserID()

		for _, name := range form.ImageAttachments(scanner.IsImageExtension) {
			if err := ctx.Err(); err != nil {
				return saved, err
			}

			att := form.Attachments[name]
			if att.Location() == "" {
				d.logger.Warnf(providers.TypeFetch, "No download URL for %s on form %s", name, form.ID)
				continue
			}

			data, err := d.client.Download(ctx, att.Location())
			if err != nil {
				if ctx.Err() != nil {
					return saved, ctx.Err()
				}
				d.logger.Errorf(providers.TypeFetch, "Error downloading %s: %s", name, err)
				continue
			}

			_, ext := scanner.SplitExtension(name)
			path := filepath.Join(dir, PhotoFileName(d.jsonBlock, form.QuestionFor(name), user, form.ID, ext))
			if err := os.WriteFile(path, data, 0644); err != nil {
				d.logger.Errorf(providers.TypeFetch, "Error saving %s: %s", path, err)
				continue
			}
			saved = append(saved, path)
			d.logger.Debugf(providers.TypeFetch, "Downloaded %s", filepath.Base(path))
		}
	}
	return saved, nil
}
