package feeds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	strip "github.com/grokify/html-strip-tags-go"
)

const defaultNewsURL = "https://newsdata.io/api/1"

const (
	MinPageSize = 1
	MaxPageSize = 50
)

var (
	ErrNewsNotConfigured = errors.New("News API key not configured")
	ErrInvalidPageSize   = fmt.Errorf("pageSize must be between %d and %d", MinPageSize, MaxPageSize)
)

type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Article struct {
	Source      Source `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	URLToImage  string `json:"urlToImage"`
	Author      string `json:"author"`
}

// Headlines is the normalized news payload returned to the desktop.
type Headlines struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

type NewsConfig struct {
	APIKey          string
	DefaultCountry  string
	DefaultPageSize int
	TTL             time.Duration
	BaseURL         string
	Timeout         time.Duration
}

// News serves the latest headlines from newsdata.io.
type News struct {
	client          *http.Client
	baseURL         string
	apiKey          string
	defaultCountry  string
	defaultPageSize int
	cache           *Cache[Headlines]
}

func NewNews(cfg NewsConfig) *News {
	if cfg.TTL == 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.DefaultCountry == "" {
		cfg.DefaultCountry = "za"
	}
	if cfg.DefaultPageSize == 0 {
		cfg.DefaultPageSize = 7
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultNewsURL
	}
	return &News{
		client:          &http.Client{Timeout: cfg.Timeout},
		baseURL:         baseURL,
		apiKey:          cfg.APIKey,
		defaultCountry:  cfg.DefaultCountry,
		defaultPageSize: cfg.DefaultPageSize,
		cache:           NewCache[Headlines](cfg.TTL),
	}
}

func (n *News) Configured() bool {
	return n.apiKey != ""
}

// DefaultPageSize is used when a request does not name one.
func (n *News) DefaultPageSize() int {
	return n.defaultPageSize
}

// Latest returns up to pageSize headlines for a country. Empty arguments
// fall back to the configured defaults.
func (n *News) Latest(ctx context.Context, country string, pageSize int) (Result[Headlines], error) {
	if !n.Configured() {
		return Result[Headlines]{}, ErrNewsNotConfigured
	}
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		country = n.defaultCountry
	}
	if pageSize == 0 {
		pageSize = n.defaultPageSize
	}
	if pageSize < MinPageSize || pageSize > MaxPageSize {
		return Result[Headlines]{}, ErrInvalidPageSize
	}

	key := country + ":" + strconv.Itoa(pageSize)
	return n.cache.Get(ctx, key, func(ctx context.Context) (Headlines, error) {
		return n.fetch(ctx, country, pageSize)
	})
}

type newsdataResponse struct {
	Status       string          `json:"status"`
	TotalResults int             `json:"totalResults"`
	Results      json.RawMessage `json:"results"`
}

type newsdataArticle struct {
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Description string   `json:"description"`
	PubDate     string   `json:"pubDate"`
	ImageURL    string   `json:"image_url"`
	SourceID    string   `json:"source_id"`
	SourceName  string   `json:"source_name"`
	Creator     []string `json:"creator"`
}

func (n *News) fetch(ctx context.Context, country string, pageSize int) (Headlines, error) {
	q := url.Values{
		"apikey":   {n.apiKey},
		"country":  {country},
		"language": {"en"},
		"size":     {strconv.Itoa(pageSize)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/latest?"+q.Encode(), nil)
	if err != nil {
		return Headlines{}, err
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return Headlines{}, fmt.Errorf("news: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Headlines{}, fmt.Errorf("news: %s", resp.Status)
	}
	var raw newsdataResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Headlines{}, fmt.Errorf("news: decode: %w", err)
	}
	if raw.Status != "success" {
		return Headlines{}, fmt.Errorf("news: upstream status %q", raw.Status)
	}

	var results []newsdataArticle
	if err := json.Unmarshal(raw.Results, &results); err != nil {
		return Headlines{}, fmt.Errorf("news: decode results: %w", err)
	}
	return normalize(raw.TotalResults, results, pageSize), nil
}

func normalize(total int, results []newsdataArticle, pageSize int) Headlines {
	out := Headlines{Status: "ok", TotalResults: total, Articles: []Article{}}
	for _, r := range results {
		if len(out.Articles) == pageSize {
			break
		}
		if r.Title == "" {
			continue
		}
		name := r.SourceName
		if name == "" {
			name = r.SourceID
		}
		out.Articles = append(out.Articles, Article{
			Source:      Source{ID: r.SourceID, Name: name},
			Title:       strings.TrimSpace(r.Title),
			Description: cleanText(r.Description),
			URL:         r.Link,
			PublishedAt: r.PubDate,
			URLToImage:  r.ImageURL,
			Author:      strings.Join(r.Creator, ", "),
		})
	}
	return out
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(strip.StripTags(s))), " ")
}
