package internal

import (
	"context"
	"errors"
	"fmt"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"os"
	"os/signal"
	"photoaudit/internal/commcare"
	"photoaudit/internal/controllers"
	"photoaudit/internal/providers"
	"photoaudit/internal/scanner"
	"photoaudit/internal/services"
	"photoaudit/internal/storage/interfaces"
	"photoaudit/internal/structures"
	"strconv"
	"syscall"
	"time"
)

const (
	CommandScan   = "scan"
	CommandReview = "review"
	CommandServe  = "serve"
	CommandFetch  = "fetch"
)

var ErrUnknownCommand = errors.New("unknown command")

type App struct {
	conf     *structures.Config
	logger   providers.Logger
	scan     services.ScanServiceInterface
	sessions services.SessionServiceInterface
	review   services.ReviewServiceInterface
	console  *controllers.ConsoleController
	health   *controllers.HealthController
	fetcher  commcare.FetcherInterface
	exporter interfaces.ExporterInterface
	router   providers.RouterProviderInterface
	metrics  providers.MetricsProviderInterface
}

func NewApp(conf *structures.Config, logger providers.Logger, scan services.ScanServiceInterface, sessions services.SessionServiceInterface, review services.ReviewServiceInterface, console *controllers.ConsoleController, health *controllers.HealthController, fetcher commcare.FetcherInterface, exporter interfaces.ExporterInterface, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) *App {
	return &App{
		conf:     conf,
		logger:   logger,
		scan:     scan,
		sessions: sessions,
		review:   review,
		console:  console,
		health:   health,
		fetcher:  fetcher,
		exporter: exporter,
		router:   router,
		metrics:  metrics,
	}
}

// Run executes the command selected on the command line. Failures are
// logged before they are returned.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof(providers.TypeApp, "Starting %s %s", a.conf.AppName, a.conf.Command)
	err := a.dispatch(ctx)
	if err != nil {
		a.logger.Errorf(providers.TypeApp, "%s failed: %s", a.conf.Command, err)
	}
	return err
}

func (a *App) dispatch(ctx context.Context) error {

	switch a.conf.Command {
	case CommandScan:
		_, err := a.scanDirectory(a.conf.Review.Directory)
		return err
	case CommandReview:
		if err := a.startSession(); err != nil {
			return err
		}
		_, err := a.console.Run(ctx)
		return err
	case CommandServe:
		if err := a.startSession(); err != nil {
			return err
		}
		return a.serve()
	case CommandFetch:
		return a.fetch(ctx)
	default:
		return fmt.Errorf("%w %q (want %s, %s, %s or %s)", ErrUnknownCommand, a.conf.Command,
			CommandScan, CommandReview, CommandServe, CommandFetch)
	}
}

// Close releases the exporter and flushes the log file.
func (a *App) Close() {
	a.exporter.Close()
	a.logger.Close()
}

func (a *App) scanDirectory(dir string) (*scanner.ScanResult, error) {
	res, err := a.scan.Scan(dir)
	if err != nil {
		return nil, err
	}
	a.console.PrintSummary(a.scan.Summarize(res, services.SessionConfigFromConfig(a.conf)))
	return res, nil
}

func (a *App) startSession() error {
	res, err := a.scanDirectory(a.conf.Review.Directory)
	if err != nil {
		return err
	}
	session, err := a.sessions.Build(res.Valid, services.SessionConfigFromConfig(a.conf))
	if err != nil {
		return err
	}
	a.review.Start(session)
	return nil
}

// Handler is the review surface plus /health and, when enabled, /metrics.
func (a *App) Handler() http.Handler {
	apiMux := http.NewServeMux()
	for _, route := range a.router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}

	instrumentedAPI := providers.LoggingMiddleware(a.logger, providers.MetricsMiddleware(a.metrics, apiMux))

	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.health.Health)
	if a.conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", instrumentedAPI)
	return mux
}

func (a *App) serve() error {
	server := &http.Server{
		Addr:         a.conf.WebServer.Host + ":" + strconv.Itoa(a.conf.WebServer.Port),
		Handler:      a.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Infof(providers.TypeApp, "Review surface on http://%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		a.logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	if err := a.exportOnShutdown(); err != nil {
		return err
	}
	a.logger.Infof(providers.TypeApp, "gracefully stopped")
	return nil
}

// exportOnShutdown saves whatever was reviewed so a stopped server never
// loses judgments.
func (a *App) exportOnShutdown() error {
	results := a.review.Results()
	if len(results) == 0 {
		return nil
	}
	path := a.exporter.ExportPath(time.Now())
	if err := a.exporter.SaveResults(path, results); err != nil {
		return fmt.Errorf("export on shutdown: %w", err)
	}
	a.logger.Infof(providers.TypeExport, "Saved %d results to %s", len(results), path)
	return nil
}

func (a *App) fetch(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := a.fetcher.Fetch(ctx)
	if err != nil {
		return err
	}
	if len(res.Files) == 0 {
		a.logger.Warnf(providers.TypeFetch, "No photos downloaded from %d forms", res.Forms)
		return nil
	}
	_, err = a.scanDirectory(res.Dir)
	return err
}
