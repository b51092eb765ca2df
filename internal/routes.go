package internal

import (
	"net/http"
	"photoaudit/internal/controllers"
	"photoaudit/internal/providers"
	"photoaudit/internal/structures"
)

func InitRoutes(reviewController *controllers.ReviewController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/", http.HandlerFunc(reviewController.Index))
	routers.Get("/session", http.HandlerFunc(reviewController.GetSession))
	routers.Get("/visit", http.HandlerFunc(reviewController.GetVisit))
	routers.Get("/photo", http.HandlerFunc(reviewController.GetPhoto))
	routers.Post("/classify", http.HandlerFunc(reviewController.Classify))
	routers.Post("/export", http.HandlerFunc(reviewController.Export))
	return routers
}
