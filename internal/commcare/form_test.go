package commcare

import (
	"photoaudit/internal/scanner"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleForm = `{
  "id": "12fff2a8-ba62-4c37-b703-e74358e4a48e",
  "domain": "demo",
  "received_on": "2024-05-01T10:00:00.000000Z",
  "form": {
    "meta": {"userID": "6accdb14457aadff034d"},
    "muac_group": {
      "muac_photo": "1714557600123.jpg",
      "notes": "none"
    },
    "site_photo": "prefix-1714557600999.png"
  },
  "attachments": {
    "form.xml": {"url": "https://example.org/form.xml"},
    "1714557600123.jpg": {"url": "https://example.org/a.jpg", "content_type": "image/jpeg"},
    "1714557600999.png": {"download_url": "https://example.org/b.png", "url": "https://example.org/ignored.png"},
    "clip.gif": {"url": "https://example.org/c.gif"}
  }
}`

func decodeForm(t *testing.T) Form {
	t.Helper()
	var f Form
	require.NoError(t, json.Unmarshal([]byte(sampleForm), &f))
	return f
}

func TestForm_UserID(t *testing.T) {
	assert.Equal(t, "6accdb14457aadff034d", decodeForm(t).UserID())
	assert.Equal(t, "unknown", Form{}.UserID())
}

func TestForm_QuestionFor(t *testing.T) {
	f := decodeForm(t)
	assert.Equal(t, "muac_photo", f.QuestionFor("1714557600123.jpg"))
	assert.Equal(t, "site_photo", f.QuestionFor("1714557600999.png"))
	assert.Equal(t, "orphan", f.QuestionFor("orphan.jpeg"))
}

func TestForm_ImageAttachments(t *testing.T) {
	f := decodeForm(t)
	assert.Equal(t, []string{"1714557600123.jpg", "1714557600999.png"}, f.ImageAttachments(scanner.IsImageExtension))
}

func TestAttachment_Location(t *testing.T) {
	f := decodeForm(t)
	assert.Equal(t, "https://example.org/b.png", f.Attachments["1714557600999.png"].Location())
	assert.Equal(t, "https://example.org/a.jpg", f.Attachments["1714557600123.jpg"].Location())
}
