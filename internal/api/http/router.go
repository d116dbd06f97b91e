// Package http provides the HTTP delivery layer: routing, authentication
// middleware and request handlers for the URL shortener API.
package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/RAJVEER42/url-shortener/internal/auth"
	"github.com/RAJVEER42/url-shortener/internal/models"
)

// URLService defines the interface for the core URL shortening business logic.
type URLService interface {
	// ShortenURL allocates a unique short code for the original URL and
	// persists a new record owned by userID.
	ShortenURL(ctx context.Context, userID, originalURL string) (*models.URL, error)

	// ResolveShortCode returns the redirect destination for the short code
	// and records the click in the background.
	ResolveShortCode(ctx context.Context, shortCode string) (string, error)

	// ListUserURLs returns all records owned by the given user.
	ListUserURLs(ctx context.Context, userID string) ([]models.URL, error)

	// DeleteURL removes the record matched by id and owner together and
	// returns its snapshot.
	DeleteURL(ctx context.Context, userID string, id int64) (*models.URL, error)
}

// getValidate initializes a new validator instance for validating incoming request payloads.
// It customizes tag name extraction from struct fields to match JSON tags.
func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// NewRouter initializes and returns a new HTTP router with all routes and middleware configured.
func NewRouter(logger *httplog.Logger, urlSvc URLService, authn auth.Authenticator) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.yml")
	})

	r.Get("/ping", handlePing)

	r.Get("/r/{shortCode}", handleRedirect(urlSvc))

	r.Route("/urls", func(r chi.Router) {
		validate := getValidate()

		r.Use(authenticate(authn))

		r.Get("/", handleListURLs(urlSvc))
		r.Post("/", handleCreateURL(urlSvc, validate))
		r.Delete("/", handleDeleteURL(urlSvc))
	})

	return r
}
