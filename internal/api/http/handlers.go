package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/RAJVEER42/url-shortener/internal/database"
	"github.com/RAJVEER42/url-shortener/internal/models"
	"github.com/RAJVEER42/url-shortener/internal/service"
	"github.com/RAJVEER42/url-shortener/pkg/response"
)

// handlePing handles health check requests to ensure the server is running.
func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "pong")
}

// shortenRequest represents the request payload for creating a shortened URL.
// Field names follow the original wire format.
type shortenRequest struct {
	OriginalURL string `json:"originalUrl" validate:"required,url"`
}

// urlResponse represents a URL record in response payloads.
type urlResponse struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"userId"`
	OriginalURL string    `json:"originalUrl"`
	ShortCode   string    `json:"shortCode"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toURLResponse(url *models.URL) urlResponse {
	return urlResponse{
		ID:          url.ID,
		UserID:      url.UserID,
		OriginalURL: url.OriginalURL,
		ShortCode:   url.ShortCode,
		Clicks:      url.Clicks,
		CreatedAt:   url.CreatedAt,
		UpdatedAt:   url.UpdatedAt,
	}
}

// validationResponse maps a validation failure on the shorten payload to the
// contract's error codes: a missing URL and a syntactically invalid URL are
// distinct client errors.
func validationResponse(err error) response.Response {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		switch vErrs[0].Tag() {
		case "required":
			return response.MissingFieldsResponse
		case "url":
			return response.InvalidURLResponse
		}
	}

	return response.ValidationErrorResponse(err)
}

// handleListURLs handles GET requests to list the authenticated caller's URLs.
func handleListURLs(svc URLService) http.HandlerFunc {
	const op = "api.http.handleListURLs"
	const successMsg = "URLs retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userIDFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.UnauthorizedResponse)
			return
		}

		urls, err := svc.ListUserURLs(r.Context(), userID)
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		data := make([]urlResponse, 0, len(urls))
		for i := range urls {
			data = append(data, toURLResponse(&urls[i]))
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, map[string]any{"urls": data}))
	}
}

// handleCreateURL handles POST requests to shorten a URL.
//
// The request must contain a valid absolute URL. The handler validates the
// input, allocates a unique short code and returns the created record.
func handleCreateURL(svc URLService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleCreateURL"
	const successMsg = "The URL has been shortened successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userIDFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.UnauthorizedResponse)
			return
		}

		var req shortenRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, validationResponse(err))
			return
		}

		url, err := svc.ShortenURL(r.Context(), userID, req.OriginalURL)
		if err != nil {
			if errors.Is(err, service.ErrInvalidURL) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.InvalidURLResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, map[string]any{"url": toURLResponse(url)}))
	}
}

// handleDeleteURL handles DELETE requests to remove one of the caller's URLs.
//
// The id query parameter must parse as an integer. A record owned by another
// user is reported identically to a missing one.
func handleDeleteURL(svc URLService) http.HandlerFunc {
	const op = "api.http.handleDeleteURL"
	const successMsg = "URL deleted successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userIDFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.UnauthorizedResponse)
			return
		}

		id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.InvalidIDResponse)
			return
		}

		url, err := svc.DeleteURL(r.Context(), userID, id)
		if err != nil {
			if errors.Is(err, database.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, map[string]any{"deletedUrl": toURLResponse(url)}))
	}
}

// handleRedirect handles GET requests on the public redirect endpoint.
//
// Errors are rendered as HTML pages rather than JSON; the redirect itself is
// a permanent redirect to the stored original URL.
func handleRedirect(svc URLService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		dest, err := svc.ResolveShortCode(r.Context(), shortCode)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidShortCode):
				renderErrorPage(w, http.StatusBadRequest, errorPage{
					Title:   "Invalid Short URL",
					Heading: "Invalid Short URL",
					Detail:  "The short code provided is not valid.",
				})
			case errors.Is(err, database.ErrURLNotFound):
				renderErrorPage(w, http.StatusNotFound, errorPage{
					Title:     "Short URL Not Found",
					Heading:   "Short URL Not Found",
					Detail:    "This short URL doesn't exist or may have been deleted.",
					ShortCode: shortCode,
				})
			case errors.Is(err, service.ErrInvalidDestination):
				renderErrorPage(w, http.StatusBadRequest, errorPage{
					Title:   "Invalid Destination URL",
					Heading: "Invalid Destination URL",
					Detail:  "The original URL for this short link is invalid or malformed.",
				})
			default:
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				renderErrorPage(w, http.StatusInternalServerError, errorPage{
					Title:   "Redirect Error",
					Heading: "Redirect Error",
					Detail:  "An unexpected error occurred while processing your request.",
				})
			}
			return
		}

		http.Redirect(w, r, dest, http.StatusMovedPermanently)
	}
}
