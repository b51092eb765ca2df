package controllers

import (
	"fmt"
	json "github.com/goccy/go-json"
	"net/http"
	"photoaudit/internal/services"
	"time"
)

type HealthController struct {
	review    services.ReviewServiceInterface
	startTime time.Time
}

type healthResponse struct {
	Status         string  `json:"status"`
	Uptime         string  `json:"uptime"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	SessionID      string  `json:"session_id"`
	VisitsTotal    int     `json:"visits_total"`
	VisitsReviewed int     `json:"visits_reviewed"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	reviewed, total := hc.review.Progress()
	resp := healthResponse{
		Status:         "ok",
		Uptime:         formatDuration(uptime),
		UptimeSeconds:  uptime.Seconds(),
		VisitsTotal:    total,
		VisitsReviewed: reviewed,
	}
	if session := hc.review.Session(); session != nil {
		resp.SessionID = session.ID
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(review services.ReviewServiceInterface) *HealthController {
	return &HealthController{
		review:    review,
		startTime: time.Now(),
	}
}
