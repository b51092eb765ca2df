package commcare

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"photoaudit/internal/scanner"
	"photoaudit/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	forms     map[string][]Form
	files     map[string][]byte
	listErr   error
	downloads []string
}

func (f *fakeClient) ListForms(_ context.Context, domain string, _ FormQuery) ([]Form, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.forms[domain], nil
}

func (f *fakeClient) Download(_ context.Context, location string) ([]byte, error) {
	f.downloads = append(f.downloads, location)
	data, ok := f.files[location]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func TestPhotoFileName_ParsesBack(t *testing.T) {
	name := PhotoFileName("commcare", "muac-photo (1)", "user.id@x", "12fff2a8-ba62-4c37-b703-e74358e4a48e", "JPG")
	assert.Equal(t, "commcare-muac_photo_1_-useridx-form_12fff2a8-ba62-4c37-b703-e74358e4a48e.jpg", name)

	rec, ok := scanner.ParseFilename(name)
	require.True(t, ok)
	assert.Equal(t, "commcare", rec.JSONBlock)
	assert.Equal(t, "muac_photo_1_", rec.QuestionID)
	assert.Equal(t, "useridx", rec.UserID)
	assert.Equal(t, "12fff2a8-ba62-4c37-b703-e74358e4a48e", rec.FormID)
}

func TestPhotoFileName_HyphenatedBlock(t *testing.T) {
	name := PhotoFileName("my-block", "q", "", "12fff2a8-ba62-4c37-b703-e74358e4a48e", "png")
	rec, ok := scanner.ParseFilename(name)
	require.True(t, ok)
	assert.Equal(t, "my-block", rec.JSONBlock)
	assert.Equal(t, "q", rec.QuestionID)
	assert.Equal(t, "unknown", rec.UserID)
}

func TestDownloader_Download(t *testing.T) {
	client := &fakeClient{files: map[string][]byte{
		"https://example.org/a.jpg": []byte("jpeg-bytes"),
		"https://example.org/b.png": []byte("png-bytes"),
	}}
	logger := &testutil.MockLogger{}
	d := NewDownloader(client, "commcare", logger)
	dir := filepath.Join(t.TempDir(), "out")

	forms := []Form{
		decodeForm(t),
		{ID: "not-a-uuid", Attachments: map[string]Attachment{"x.jpg": {URL: "https://example.org/x.jpg"}}},
		{ID: "{1afa2004-ba50-468e-af42-7493974ef164}", Attachments: map[string]Attachment{"y.jpg": {URL: "https://example.org/y.jpg"}}},
		{ID: "1afa2004ba50468eaf427493974ef164", Attachments: map[string]Attachment{"z.jpg": {URL: "https://example.org/z.jpg"}}},
		{
			ID:          "1afa2004-ba50-468e-af42-7493974ef164",
			Attachments: map[string]Attachment{"missing.jpg": {URL: "https://example.org/missing.jpg"}, "nourl.jpg": {}},
		},
	}

	saved, err := d.Download(context.Background(), forms, dir)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.NotContains(t, client.downloads, "https://example.org/x.jpg")
	assert.NotContains(t, client.downloads, "https://example.org/y.jpg")
	assert.NotContains(t, client.downloads, "https://example.org/z.jpg")
	assert.NotContains(t, client.downloads, "https://example.org/c.gif")

	res, err := scanner.ScanDirectory(dir)
	require.NoError(t, err)
	assert.Len(t, res.Valid, 2)
	assert.Empty(t, res.Invalid)
	assert.ElementsMatch(t, []string{"muac_photo", "site_photo"}, scanner.QuestionIDs(res.Valid))

	data, err := os.ReadFile(filepath.Join(dir, "commcare-muac_photo-6accdb14457aadff034d-form_12fff2a8-ba62-4c37-b703-e74358e4a48e.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
	assert.True(t, logger.HasLevel("error"))
	assert.True(t, logger.HasLevel("warn"))
}

func TestDownloader_StopsOnCanceledContext(t *testing.T) {
	client := &fakeClient{files: map[string][]byte{}}
	d := NewDownloader(client, "commcare", &testutil.MockLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Download(ctx, []Form{decodeForm(t)}, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, client.downloads)
}
