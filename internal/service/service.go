package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/RAJVEER42/url-shortener/internal/cache"
	"github.com/RAJVEER42/url-shortener/internal/database"
	"github.com/RAJVEER42/url-shortener/internal/models"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// shortCodeAlphabet is the 62-symbol alphabet short codes are drawn from.
const shortCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// clickTimeout bounds the background click-recording update.
const clickTimeout = 5 * time.Second

var (
	// ErrMaxRetriesExceeded is returned when the maximum number of retries for generating a short code is exceeded.
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")
	// ErrInvalidURL is returned when the submitted original URL is not an absolute URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrInvalidShortCode is returned when the short code is empty.
	ErrInvalidShortCode = errors.New("invalid short code")
	// ErrInvalidDestination is returned when a stored original URL is malformed
	// and must not be redirected to.
	ErrInvalidDestination = errors.New("invalid destination url")
)

// URLRepository defines the interface for working with URLs at the business logic layer.
type URLRepository interface {
	// Create inserts a new shortened URL owned by the given user.
	// Returns database.ErrShortCodeExists when the short code is taken.
	Create(ctx context.Context, userID, shortCode, originalURL string) (*models.URL, error)

	// GetByShortCode retrieves a URL by its short code without touching
	// its click count.
	GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error)

	// IncrementClicks bumps the click counter and modification timestamp
	// for the given short code.
	IncrementClicks(ctx context.Context, shortCode string) error

	// ListByUserID retrieves all URLs owned by the given user.
	ListByUserID(ctx context.Context, userID string) ([]models.URL, error)

	// DeleteByIDAndUserID removes a URL matched by id and owner together.
	// Returns database.ErrURLNotFound when no such record exists, including
	// records owned by someone else.
	DeleteByIDAndUserID(ctx context.Context, id int64, userID string) (*models.URL, error)
}

// ResolveCache caches short code resolutions on the redirect path.
type ResolveCache interface {
	Get(ctx context.Context, shortCode string) (string, error)
	Set(ctx context.Context, shortCode, originalURL string) error
	Del(ctx context.Context, shortCode string) error
}

// URLService provides methods to manage URL shortening operations.
// The service uses a URLRepository interface to interact with the underlying database.
type URLService struct {
	repo            URLRepository
	cache           ResolveCache
	logger          *slog.Logger
	shortCodeLength int
}

// NewURLService creates a new instance of URLService. The cache may be nil,
// in which case every resolution hits the repository.
func NewURLService(repo URLRepository, cache ResolveCache, logger *slog.Logger, shortCodeLength int) *URLService {
	return &URLService{
		repo:            repo,
		cache:           cache,
		logger:          logger,
		shortCodeLength: shortCodeLength,
	}
}

// isAbsoluteURL reports whether s parses as an absolute URL with both a
// scheme and a host.
func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// ShortenURL allocates a unique short code for the original URL and persists
// a new record owned by userID. It retries with a freshly drawn code when the
// store reports a collision, up to a fixed retry budget.
func (s *URLService) ShortenURL(ctx context.Context, userID, originalURL string) (*models.URL, error) {
	const op = "service.URLService.ShortenURL"
	const maxRetries = 5

	originalURL = strings.TrimSpace(originalURL)
	if !isAbsoluteURL(originalURL) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidURL)
	}

	for i := 0; i < maxRetries; i++ {
		shortCode, err := gonanoid.Generate(shortCodeAlphabet, s.shortCodeLength)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		url, err := s.repo.Create(ctx, userID, shortCode, originalURL)
		if err != nil {
			if errors.Is(err, database.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return url, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// ResolveShortCode returns the redirect destination for the given short code
// and records the click in the background. The click update never delays the
// returned destination and its failure is logged only.
func (s *URLService) ResolveShortCode(ctx context.Context, shortCode string) (string, error) {
	const op = "service.URLService.ResolveShortCode"

	if shortCode == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidShortCode)
	}

	originalURL, found := s.cachedDestination(ctx, shortCode)
	if !found {
		url, err := s.repo.GetByShortCode(ctx, shortCode)
		if err != nil {
			return "", fmt.Errorf("%s: failed to resolve short code: %w", op, err)
		}
		originalURL = url.OriginalURL

		if s.cache != nil {
			if err := s.cache.Set(ctx, shortCode, originalURL); err != nil {
				s.logger.Warn("failed to cache resolution",
					slog.String("short_code", shortCode), slog.Any("err", err))
			}
		}
	}

	if !isAbsoluteURL(originalURL) {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidDestination)
	}

	go s.recordClick(shortCode)

	return originalURL, nil
}

func (s *URLService) cachedDestination(ctx context.Context, shortCode string) (string, bool) {
	if s.cache == nil {
		return "", false
	}

	originalURL, err := s.cache.Get(ctx, shortCode)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("resolve cache lookup failed",
				slog.String("short_code", shortCode), slog.Any("err", err))
		}
		return "", false
	}

	return originalURL, true
}

// recordClick runs detached from the request that triggered it. A failed
// update is logged and otherwise dropped.
func (s *URLService) recordClick(shortCode string) {
	ctx, cancel := context.WithTimeout(context.Background(), clickTimeout)
	defer cancel()

	if err := s.repo.IncrementClicks(ctx, shortCode); err != nil {
		s.logger.Error("failed to record click",
			slog.String("short_code", shortCode), slog.Any("err", err))
	}
}

// ListUserURLs returns all records owned by the given user.
func (s *URLService) ListUserURLs(ctx context.Context, userID string) ([]models.URL, error) {
	const op = "service.URLService.ListUserURLs"

	urls, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list urls: %w", op, err)
	}

	return urls, nil
}

// DeleteURL removes the record matched by id and owner together and returns
// its snapshot. A record owned by another user is reported identically to a
// missing one.
func (s *URLService) DeleteURL(ctx context.Context, userID string, id int64) (*models.URL, error) {
	const op = "service.URLService.DeleteURL"

	url, err := s.repo.DeleteByIDAndUserID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to delete url: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, url.ShortCode); err != nil {
			s.logger.Warn("failed to invalidate cached resolution",
				slog.String("short_code", url.ShortCode), slog.Any("err", err))
		}
	}

	return url, nil
}
