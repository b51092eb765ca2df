package commcare

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadCredentials(t *testing.T) {
	path := writeFile(t, ".env", "COMMCARE_USERNAME=user@example.org\nCOMMCARE_API_KEY=abc123\nOTHER=x\n")

	creds, err := LoadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, "user@example.org", creds.Username)
	assert.Equal(t, "abc123", creds.APIKey)
}

func TestLoadCredentials_Verbatim(t *testing.T) {
	path := writeFile(t, ".env", "COMMCARE_USERNAME=\" user@example.org\"\nCOMMCARE_API_KEY=\"abc 123 \"\n")

	creds, err := LoadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, " user@example.org", creds.Username)
	assert.Equal(t, "abc 123 ", creds.APIKey)
}

func TestLoadCredentials_Missing(t *testing.T) {
	_, err := LoadCredentials(filepath.Join(t.TempDir(), ".env"))
	assert.ErrorIs(t, err, ErrMissingCredentials)

	path := writeFile(t, ".env", "COMMCARE_USERNAME=user\n")
	_, err = LoadCredentials(path)
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestLoadInputs(t *testing.T) {
	path := writeFile(t, "api_inputs.txt", `# domain -> app id
{
  # second project
  "zeta-project": "app2",
  "alpha-project": " app1 "
}
`)
	targets, err := LoadInputs(path)
	require.NoError(t, err)
	assert.Equal(t, []Target{
		{Domain: "alpha-project", AppID: "app1"},
		{Domain: "zeta-project", AppID: "app2"},
	}, targets)
}

func TestLoadInputs_Invalid(t *testing.T) {
	cases := map[string]string{
		"not json": "domain: app\n",
		"empty":    "# nothing here\n",
		"blank ids": `{"": "app", "d": ""}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadInputs(writeFile(t, "inputs.txt", content))
			assert.ErrorIs(t, err, ErrInvalidInputs)
		})
	}

	_, err := LoadInputs(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, ErrInvalidInputs)
}
