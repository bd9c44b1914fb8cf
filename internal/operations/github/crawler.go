package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"CryptoModelBot/internal/models"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://api.github.com"

// SearchOptions mirror the repository search query parameters.
type SearchOptions struct {
	Query   string
	PerPage int
	Sort    string
	Order   string
}

// Crawler discovers trading-model repositories through the search API.
type Crawler struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	token      string
	opts       SearchOptions
	logger     zerolog.Logger

	maxElapsed time.Duration
}

func NewCrawler(baseURL, token string, opts SearchOptions, logger zerolog.Logger) *Crawler {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Crawler{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		// unauthenticated search allows 10 requests per minute
		limiter:    rate.NewLimiter(rate.Every(6*time.Second), 1),
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		opts:       opts,
		logger:     logger.With().Str("component", "github_crawler").Logger(),
		maxElapsed: 30 * time.Second,
	}
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	FullName        string   `json:"full_name"`
	Description     *string  `json:"description"`
	HTMLURL         string   `json:"html_url"`
	PushedAt        string   `json:"pushed_at"`
	StargazersCount int      `json:"stargazers_count"`
	Language        *string  `json:"language"`
	Topics          []string `json:"topics"`
}

// FetchRecentModels returns the repositories currently matching the query.
func (c *Crawler) FetchRecentModels(ctx context.Context) ([]models.Model, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	params := url.Values{}
	params.Set("q", c.opts.Query)
	params.Set("sort", c.opts.Sort)
	params.Set("order", c.opts.Order)
	params.Set("per_page", strconv.Itoa(c.opts.PerPage))
	searchURL := c.baseURL + "/search/repositories?" + params.Encode()

	c.logger.Debug().Str("url", searchURL).Msg("Querying GitHub")

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("Accept", "application/vnd.github+json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("HTTP request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			statusErr := fmt.Errorf("non-200 status code: %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(statusErr)
			}
			return statusErr
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response body: %w", err)
		}
		return nil
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = c.maxElapsed

	if err := backoff.Retry(operation, backoff.WithContext(backoffStrategy, ctx)); err != nil {
		return nil, fmt.Errorf("after retries: %w", err)
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	c.logger.Info().Int("count", len(payload.Items)).Msg("Fetched repositories from GitHub")

	result := make([]models.Model, 0, len(payload.Items))
	for _, item := range payload.Items {
		result = append(result, normalize(item))
	}
	return result, nil
}

func normalize(item searchItem) models.Model {
	m := models.Model{
		RepoID:   item.ID,
		Name:     item.Name,
		FullName: item.FullName,
		HTMLURL:  item.HTMLURL,
		Stars:    item.StargazersCount,
	}
	if item.Description != nil {
		m.Description = *item.Description
	}
	if item.Language != nil {
		m.Language = *item.Language
	}
	if item.PushedAt != "" {
		if pushed, err := time.Parse(time.RFC3339, item.PushedAt); err == nil {
			pushed = pushed.UTC()
			m.PushedAt = &pushed
		}
	}
	for _, topic := range item.Topics {
		m.Topics = append(m.Topics, strings.ToLower(topic))
	}
	return m
}
