package http

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"versebox/internal/handlers"
	"versebox/internal/recommend"
	"versebox/internal/storage"
	"versebox/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine         recommend.Engine
	VectorStore    vectorstore.VectorStore
	DB             *sql.DB
	PostboxStore   storage.PostboxStore
	PostcardStore  storage.PostcardStore
	CollectionName string
	UnlockDate     time.Time
	BaseURL        string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	recommendHandler := handlers.NewRecommendHandler(deps.Engine)
	postboxHandler := handlers.NewPostboxHandler(deps.PostboxStore, deps.PostcardStore, deps.UnlockDate, deps.BaseURL)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.DB, deps.CollectionName)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/recommend-verses", recommendHandler)
		r.Post("/create-postbox", postboxHandler.CreatePostbox)
		r.Post("/send-postcard", postboxHandler.SendPostcard)
		r.Get("/postboxes/{id}", postboxHandler.GetPostbox)
		r.Get("/postboxes/{id}/postcards", postboxHandler.ListPostcards)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	return r
}
