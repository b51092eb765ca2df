package controllers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"photoaudit/internal/preview"
	"photoaudit/internal/providers"
	"photoaudit/internal/services"
	"photoaudit/internal/storage/interfaces"
	"strconv"
	"strings"
	"time"
)

// ErrExportAbandoned is returned when the reviewer gives up retrying a
// failed export.
var ErrExportAbandoned = errors.New("export abandoned")

// ConsoleController is the terminal review surface: one contact sheet per
// visit, a bucket read from the input per visit, and an export at the end.
type ConsoleController struct {
	in       *bufio.Reader
	out      io.Writer
	logger   providers.Logger
	review   services.ReviewServiceInterface
	renderer preview.RendererInterface
	exporter interfaces.ExporterInterface
	metrics  providers.MetricsProviderInterface
	now      func() time.Time
}

func NewConsoleController(logger providers.Logger, review services.ReviewServiceInterface, renderer preview.RendererInterface, exporter interfaces.ExporterInterface, metrics providers.MetricsProviderInterface) *ConsoleController {
	return &ConsoleController{
		in:       bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		logger:   logger,
		review:   review,
		renderer: renderer,
		exporter: exporter,
		metrics:  metrics,
		now:      time.Now,
	}
}

// SetIO redirects the prompt input and the report output.
func (cc *ConsoleController) SetIO(in io.Reader, out io.Writer) {
	cc.in = bufio.NewReader(in)
	cc.out = out
}

func (cc *ConsoleController) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(cc.out, format, args...)
}

func (cc *ConsoleController) readLine() (string, error) {
	line, err := cc.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (cc *ConsoleController) PrintSummary(s services.ScanSummary) {
	cc.printf("Directory: %s\n", s.Root)
	cc.printf("Valid photos: %d\n", s.Valid)
	cc.printf("Invalid file names: %d\n", s.Invalid)
	for _, f := range s.InvalidFiles {
		cc.printf("  %s\n", f)
	}
	if s.Invalid > 0 {
		cc.printf("Files that do not follow the naming format are ignored.\n")
	}
	cc.printf("Questions:\n")
	for _, q := range s.Questions {
		cc.printf("  %-40s %5d photos %5d visits\n", q.QuestionID, q.Photos, q.Visits)
	}
	if s.Selected > 0 {
		cc.printf("Selected: %d photos, sample ~%d photos\n", s.Selected, s.Estimate)
	}
}

// bucketFor accepts a 1-based bucket number or a label, case-insensitive.
func bucketFor(input string, buckets []string) (string, bool) {
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(buckets) {
			return strings.TrimSpace(buckets[n-1]), true
		}
		return "", false
	}
	for _, b := range buckets {
		if strings.EqualFold(strings.TrimSpace(b), input) {
			return strings.TrimSpace(b), true
		}
	}
	return "", false
}

// Run reviews the started session until it is complete or the reviewer
// quits, then exports whatever was collected. It returns the export path,
// empty when nothing was reviewed.
func (cc *ConsoleController) Run(ctx context.Context) (string, error) {
	session := cc.review.Session()
	if session == nil {
		return "", services.ErrNoSession
	}

	prompt := make([]string, 0, len(session.Config.Buckets))
	for i, b := range session.Config.Buckets {
		prompt = append(prompt, fmt.Sprintf("[%d] %s", i+1, strings.TrimSpace(b)))
	}

review:
	for ctx.Err() == nil {
		visit, pos, total, err := cc.review.Current()
		if errors.Is(err, services.ErrSessionComplete) {
			break
		}
		if err != nil {
			return "", err
		}

		cc.printf("\nPhoto Review %d/%d (%d photos)\n", pos, total, len(visit.Photos))
		if path, err := cc.renderer.WriteContactSheet(visit, pos); err != nil {
			cc.logger.Errorf(providers.TypeReview, "Contact sheet failed: %s", err)
			cc.printf("Contact sheet unavailable: %s\n", err)
		} else {
			cc.printf("Open %s\n", path)
		}

		for {
			cc.printf("%s  [q] quit: ", strings.Join(prompt, "  "))
			input, err := cc.readLine()
			if err != nil || strings.EqualFold(input, "q") {
				cc.printf("\nStopping review.\n")
				break review
			}
			bucket, ok := bucketFor(input, session.Config.Buckets)
			if !ok {
				cc.printf("Unknown bucket %q\n", input)
				continue
			}
			rec, _, err := cc.review.Record(bucket)
			if err != nil {
				return "", err
			}
			cc.metrics.IncVisitsReviewed(rec.Bucket, rec.IsDecoy)
			break
		}
	}

	return cc.export()
}

// export saves the results, offering a retry after each failure.
func (cc *ConsoleController) export() (string, error) {
	results := cc.review.Results()
	if len(results) == 0 {
		cc.printf("No visits reviewed, nothing to export.\n")
		return "", nil
	}

	path := cc.exporter.ExportPath(cc.now())
	for {
		err := cc.exporter.SaveResults(path, results)
		if err == nil {
			cc.printf("Saved %d results to %s\n", len(results), path)
			return path, nil
		}

		cc.printf("Export failed: %s\nRetry? [Y/n/path]: ", err)
		input, readErr := cc.readLine()
		switch {
		case readErr != nil || strings.EqualFold(input, "n"):
			return "", fmt.Errorf("%w: %v", ErrExportAbandoned, err)
		case input != "" && !strings.EqualFold(input, "y"):
			path = input
		}
	}
}
