package alpacahack

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ctfwatch/internal/domain"
)

const (
	SourceID   = "alpacahack"
	SourceName = "AlpacaHack"
)

// Config holds AlpacaHack source configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Source fetches the public challenge listing from AlpacaHack.
type Source struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// New creates a new AlpacaHack source. Retry policy lives in the scheduler,
// so a failed request surfaces immediately as a FetchError.
func New(cfg Config, logger *slog.Logger) *Source {
	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		logger:  logger.With("source", SourceID),
	}
}

// Name returns the human-readable source name.
func (s *Source) Name() string {
	return SourceName
}

// Fetch retrieves and parses the current challenge listing. One outbound
// request per call.
func (s *Source) Fetch(ctx context.Context) (domain.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return domain.Snapshot{}, &domain.FetchError{Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", "ctfwatch/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.Snapshot{}, &domain.FetchError{Err: fmt.Errorf("execute request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Snapshot{}, &domain.FetchError{Err: fmt.Errorf("unexpected status: %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return domain.Snapshot{}, &domain.FetchError{Err: fmt.Errorf("parse markup: %w", err)}
	}

	// NewRequestWithContext already validated the URL
	base, _ := url.Parse(s.baseURL)

	challenges, err := s.parseListing(doc, base)
	if err != nil {
		return domain.Snapshot{}, &domain.FetchError{Err: err}
	}

	s.logger.Debug("fetched challenge listing", "challenges", len(challenges))

	return domain.Snapshot{
		Challenges: challenges,
		FetchedAt:  time.Now().UTC(),
	}, nil
}
