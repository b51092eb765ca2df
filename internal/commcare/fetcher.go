package commcare

import (
	"context"
	"path/filepath"
	"photoaudit/internal/providers"
	"photoaudit/internal/structures"
	"time"
)

type FetchResult struct {
	Dir   string
	Forms int
	Files []string
}

type FetcherInterface interface {
	Fetch(ctx context.Context) (*FetchResult, error)
}

// Fetcher pulls forms for every target in the inputs file and downloads
// their photos into a fresh timestamped directory.
type Fetcher struct {
	conf      *structures.Config
	logger    providers.Logger
	newClient func(creds Credentials) ClientInterface
	now       func() time.Time
}

func NewFetcher(conf *structures.Config, logger providers.Logger) FetcherInterface {
	return &Fetcher{
		conf:   conf,
		logger: logger,
		newClient: func(creds Credentials) ClientInterface {
			return NewClient(conf, creds, logger)
		},
		now: time.Now,
	}
}

func (f *Fetcher) Fetch(ctx context.Context) (*FetchResult, error) {
	cc := f.conf.CommCare

	creds, err := LoadCredentials(cc.EnvFile)
	if err != nil {
		return nil, err
	}
	targets, err := LoadInputs(cc.InputsFile)
	if err != nil {
		return nil, err
	}

	client := f.newClient(creds)
	downloader := NewDownloader(client, cc.JSONBlock, f.logger)
	result := &FetchResult{
		Dir:   filepath.Join(cc.DownloadDir, "fetch_"+f.now().Format("20060102_150405")),
		Files: make([]string, 0),
	}

	for _, target := range targets {
		f.logger.Infof(providers.TypeFetch, "Fetching forms for domain %s, app %s", target.Domain, target.AppID)
		forms, err := client.ListForms(ctx, target.Domain, FormQuery{
			AppID:         target.AppID,
			Limit:         cc.Limit,
			MaxForms:      cc.MaxForms,
			ReceivedStart: cc.ReceivedStart,
			ReceivedEnd:   cc.ReceivedEnd,
		})
		if err != nil {
			f.logger.Errorf(providers.TypeFetch, "Listing forms for %s failed: %s", target.Domain, err)
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			continue
		}
		result.Forms += len(forms)

		files, err := downloader.Download(ctx, forms, result.Dir)
		result.Files = append(result.Files, files...)
		if err != nil {
			return result, err
		}
		f.logger.Infof(providers.TypeFetch, "%s: %d forms, %d photos downloaded", target.Domain, len(forms), len(files))
	}
	return result, nil
}
