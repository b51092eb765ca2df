package commcare

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/joho/godotenv"
)

const (
	envUsername = "COMMCARE_USERNAME"
	envAPIKey   = "COMMCARE_API_KEY"
)

var (
	ErrMissingCredentials = errors.New("missing CommCare credentials")
	ErrInvalidInputs      = errors.New("invalid API inputs file")
)

type Credentials struct {
	Username string
	APIKey   string
}

// LoadCredentials reads the username and API key from an env file. Values
// are taken verbatim.
func LoadCredentials(envFile string) (Credentials, error) {
	values, err := godotenv.Read(envFile)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrMissingCredentials, err)
	}

	creds := Credentials{
		Username: values[envUsername],
		APIKey:   values[envAPIKey],
	}
	if creds.Username == "" || creds.APIKey == "" {
		return Credentials{}, fmt.Errorf("%w: %s and %s must be set in %s", ErrMissingCredentials, envUsername, envAPIKey, envFile)
	}
	return creds, nil
}

// Target is one project space and the application whose forms are fetched.
type Target struct {
	Domain string
	AppID  string
}

// LoadInputs parses a JSON object of domain to app id. Lines starting with
// # are comments. Targets are returned sorted by domain.
func LoadInputs(path string) ([]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInputs, err)
	}

	var filtered bytes.Buffer
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		filtered.WriteString(line)
		filtered.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInputs, err)
	}

	var pairs map[string]string
	if err := json.Unmarshal(filtered.Bytes(), &pairs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInputs, err)
	}

	targets := make([]Target, 0, len(pairs))
	for domain, appID := range pairs {
		domain = strings.Trim(strings.TrimSpace(domain), `"`)
		appID = strings.Trim(strings.TrimSpace(appID), `"`)
		if domain == "" || appID == "" {
			continue
		}
		targets = append(targets, Target{Domain: domain, AppID: appID})
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no domain/app pairs in %s", ErrInvalidInputs, path)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Domain < targets[j].Domain })
	return targets, nil
}
