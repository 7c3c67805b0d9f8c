package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/yourusername/invest-tracker/internal/metrics"
	"github.com/yourusername/invest-tracker/internal/models"
)

const newsSource = "news"

// newsResponse is the headline feed document
type newsResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// NewsClient fetches market headlines and keeps the latest batch
type NewsClient struct {
	client   *RateLimitedHTTPClient
	endpoint string
	apiKey   string
	limit    int

	mu       sync.RWMutex
	articles []models.NewsArticle
	fetched  time.Time
}

// NewNewsClient creates a news client. limit caps the stored headlines.
func NewNewsClient(client *RateLimitedHTTPClient, endpoint, apiKey string, limit int) *NewsClient {
	if limit <= 0 {
		limit = 20
	}
	return &NewsClient{
		client:   client,
		endpoint: endpoint,
		apiKey:   apiKey,
		limit:    limit,
	}
}

// Fetch downloads the current headlines
func (c *NewsClient) Fetch(ctx context.Context) ([]models.NewsArticle, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, NewSourceError(newsSource, ErrCodeInvalidData, "bad endpoint", err)
	}
	if c.apiKey != "" {
		q := u.Query()
		q.Set("apiKey", c.apiKey)
		u.RawQuery = q.Encode()
	}

	resp, err := c.client.Get(ctx, u.String())
	if err != nil {
		return nil, NewSourceError(newsSource, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(newsSource, resp.StatusCode)
	}

	var doc newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, NewSourceError(newsSource, ErrCodeInvalidData, "failed to decode articles", err)
	}
	if doc.Status != "" && doc.Status != "ok" {
		return nil, NewSourceError(newsSource, ErrCodeInvalidData, fmt.Sprintf("feed status %q", doc.Status), nil)
	}

	articles := make([]models.NewsArticle, 0, len(doc.Articles))
	for _, a := range doc.Articles {
		if a.Title == "" {
			continue
		}
		articles = append(articles, models.NewsArticle{
			Title:       a.Title,
			Source:      a.Source.Name,
			URL:         a.URL,
			Summary:     a.Description,
			PublishedAt: a.PublishedAt,
		})
		if len(articles) == c.limit {
			break
		}
	}
	return articles, nil
}

// Refresh fetches headlines and replaces the stored batch. A failed refresh
// keeps the previous batch.
func (c *NewsClient) Refresh(ctx context.Context) error {
	articles, err := c.Fetch(ctx)
	if err != nil {
		metrics.RecordNewsFetch(metrics.StatusFailure)
		return err
	}
	metrics.RecordNewsFetch(metrics.StatusSuccess)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.articles = articles
	c.fetched = time.Now().UTC()
	return nil
}

// Latest returns the stored headlines and when they were fetched
func (c *NewsClient) Latest() ([]models.NewsArticle, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.NewsArticle, len(c.articles))
	copy(out, c.articles)
	return out, c.fetched
}
