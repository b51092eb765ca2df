package controllers

import (
	"errors"
	"fmt"
	json "github.com/goccy/go-json"
	"net/http"
	"photoaudit/internal/models"
	"photoaudit/internal/preview"
	"photoaudit/internal/providers"
	"photoaudit/internal/services"
	"photoaudit/internal/storage/interfaces"
	"strconv"
	"time"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ReviewController struct {
	logger   providers.Logger
	review   services.ReviewServiceInterface
	renderer preview.RendererInterface
	exporter interfaces.ExporterInterface
	cache    providers.CacheProviderInterface
	metrics  providers.MetricsProviderInterface
}

func NewReviewController(logger providers.Logger, review services.ReviewServiceInterface, renderer preview.RendererInterface, exporter interfaces.ExporterInterface, cache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface) *ReviewController {
	return &ReviewController{
		logger:   logger,
		review:   review,
		renderer: renderer,
		exporter: exporter,
		cache:    cache,
		metrics:  metrics,
	}
}

type progressResponse struct {
	Reviewed int  `json:"reviewed"`
	Total    int  `json:"total"`
	Done     bool `json:"done"`
}

type sessionResponse struct {
	ID       string           `json:"id"`
	Reviewer string           `json:"reviewer"`
	Buckets  []string         `json:"buckets"`
	Filtered int              `json:"filtered_photos"`
	Target   int              `json:"target_photos"`
	Progress progressResponse `json:"progress"`
}

// visitResponse deliberately omits identifiers so decoys look like any
// other visit.
type visitResponse struct {
	Position int      `json:"position"`
	Total    int      `json:"total"`
	Photos   []string `json:"photos"`
}

type classifyRequest struct {
	Bucket string `json:"bucket"`
}

type classifyResponse struct {
	Complete bool             `json:"complete"`
	Progress progressResponse `json:"progress"`
}

type exportResponse struct {
	Path string `json:"path"`
	Rows int    `json:"rows"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	gson, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps review errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNoSession):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrSessionComplete):
		return http.StatusConflict
	case errors.Is(err, services.ErrUnknownBucket):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (rc *ReviewController) progress() progressResponse {
	reviewed, total := rc.review.Progress()
	return progressResponse{Reviewed: reviewed, Total: total, Done: total > 0 && reviewed >= total}
}

func (rc *ReviewController) GetSession(w http.ResponseWriter, r *http.Request) {
	session := rc.review.Session()
	if session == nil {
		writeError(w, http.StatusServiceUnavailable, services.ErrNoSession)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		ID:       session.ID,
		Reviewer: session.Config.Reviewer,
		Buckets:  session.Config.Buckets,
		Filtered: session.FilteredCount,
		Target:   session.TargetCount,
		Progress: rc.progress(),
	})
}

func (rc *ReviewController) GetVisit(w http.ResponseWriter, r *http.Request) {
	visit, pos, total, err := rc.review.Current()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	photos := make([]string, 0, len(visit.Photos))
	for i := range visit.Photos {
		photos = append(photos, "/photo?i="+strconv.Itoa(i))
	}
	writeJSON(w, http.StatusOK, visitResponse{Position: pos, Total: total, Photos: photos})
}

// GetPhoto serves photo i of the current visit resized for display. A photo
// that cannot be rendered is replaced by a placeholder image.
func (rc *ReviewController) GetPhoto(w http.ResponseWriter, r *http.Request) {
	visit, _, _, err := rc.review.Current()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	i, err := strconv.Atoi(r.URL.Query().Get("i"))
	if err != nil || i < 0 || i >= len(visit.Photos) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("photo index must be in [0, %d)", len(visit.Photos)))
		return
	}
	photo := visit.Photos[i]

	if data, ok := rc.cache.Get(photo.Location); ok {
		writeImage(w, "image/jpeg", data)
		return
	}

	data, err := rc.renderer.Render(photo)
	if err != nil {
		rc.servePlaceholder(w, photo, err)
		return
	}
	rc.cache.Set(photo.Location, data)
	writeImage(w, "image/jpeg", data)
}

func (rc *ReviewController) servePlaceholder(w http.ResponseWriter, photo models.PhotoRecord, cause error) {
	data, err := rc.renderer.Placeholder(photo, cause)
	if err != nil {
		rc.logger.Errorf(providers.TypeReview, "Placeholder for %s failed: %s", photo.Location, err)
		writeError(w, http.StatusInternalServerError, cause)
		return
	}
	writeImage(w, "image/png", data)
}

func writeImage(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (rc *ReviewController) Classify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	rec, complete, err := rc.review.Record(payload.Bucket)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	rc.metrics.IncVisitsReviewed(rec.Bucket, rec.IsDecoy)

	writeJSON(w, http.StatusOK, classifyResponse{Complete: complete, Progress: rc.progress()})
}

// Export writes the results collected so far. A failed export leaves them
// in memory so the request can be repeated.
func (rc *ReviewController) Export(w http.ResponseWriter, r *http.Request) {
	results := rc.review.Results()
	path := rc.exporter.ExportPath(time.Now())

	if err := rc.exporter.SaveResults(path, results); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("export failed, results kept: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{Path: path, Rows: len(results)})
}

func (rc *ReviewController) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(indexPage))
}
