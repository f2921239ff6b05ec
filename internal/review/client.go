package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the New York Times book reviews endpoint.
const DefaultBaseURL = "https://api.nytimes.com/svc/books/v3/reviews.json"

const apiKeyParam = "api-key"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type ClientConfig struct {
	BaseURL string
	APIKey  string
	// RPS caps outbound calls per second; zero means unlimited.
	RPS float64
	// Timeout bounds one call; zero means none.
	Timeout time.Duration
}

// Client issues exactly one GET per lookup. It never retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}
}

// apiResponse matches reviews.json. Results is a pointer so that an absent
// field can be told apart from an empty list.
type apiResponse struct {
	Status     string       `json:"status"`
	NumResults int          `json:"num_results"`
	Results    *[]apiReview `json:"results"`
}

type apiReview struct {
	BookTitle     string `json:"book_title"`
	BookAuthor    string `json:"book_author"`
	Byline        string `json:"byline"`
	PublicationDt string `json:"publication_dt"`
	Summary       string `json:"summary"`
	URL           string `json:"url"`
}

func (c *Client) FindReviews(ctx context.Context, title string) ([]Review, error) {
	u, err := c.requestURL(title)
	if err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "fetching reviews", "url", redactAPIKey(*u))

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport errors quote the request URL, key included.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			uerr.URL = redactAPIKey(*u)
		}
		return nil, fmt.Errorf("review api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if body.Results == nil {
		return nil, fmt.Errorf("%w: missing results", ErrMalformedResponse)
	}

	reviews := make([]Review, 0, len(*body.Results))
	for _, r := range *body.Results {
		reviews = append(reviews, Review{
			BookTitle: r.BookTitle,
			Author:    r.BookAuthor,
			Reviewer:  r.Byline,
			Date:      r.PublicationDt,
			Summary:   r.Summary,
			URL:       r.URL,
		})
	}
	return reviews, nil
}

func (c *Client) requestURL(title string) (*url.URL, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse review api url: %w", err)
	}
	q := u.Query()
	q.Set("title", title)
	q.Set(apiKeyParam, c.apiKey)
	u.RawQuery = q.Encode()
	return u, nil
}

func redactAPIKey(u url.URL) string {
	q := u.Query()
	if q.Get(apiKeyParam) != "" {
		q.Set(apiKeyParam, "***")
	}
	u.RawQuery = q.Encode()
	return u.String()
}
