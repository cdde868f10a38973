// Package newsapi fetches top headlines from a NewsAPI-compatible endpoint.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/irfansharif/headlines/pkg/news"
)

// DefaultEndpoint is the NewsAPI top-headlines endpoint.
const DefaultEndpoint = "https://newsapi.org/v2/top-headlines"

// ErrMalformed is wrapped by errors for response bodies that are not the
// expected JSON shape.
var ErrMalformed = errors.New("malformed response")

// APIError is returned when the endpoint reports a failure, either through a
// non-2xx status or a {"status":"error"} body.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("newsapi HTTP %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("newsapi HTTP %d", e.StatusCode)
}

// Options configures a Client.
type Options struct {
	Endpoint string
	APIKey   string
	Country  string
}

// Page is one page of headlines.
type Page struct {
	Articles     []news.Article
	TotalResults int
}

// Client talks to the headline endpoint.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
	apiKey     string
	country    string
	sanitizer  *bluemonday.Policy
}

// NewClient creates a Client. A nil httpClient gets a client with a 30s
// timeout; empty options fall back to the public endpoint and "us".
func NewClient(httpClient *http.Client, logger *slog.Logger, opts Options) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Country == "" {
		opts.Country = "us"
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   opts.Endpoint,
		apiKey:     opts.APIKey,
		country:    opts.Country,
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

// Fetch retrieves one page of headlines for the category.
func (c *Client) Fetch(ctx context.Context, category news.Category, page, pageSize int) (Page, error) {
	if !category.Valid() {
		return Page{}, fmt.Errorf("%w: %v", news.ErrUnknownCategory, category)
	}
	if page < 1 {
		return Page{}, fmt.Errorf("invalid page %d", page)
	}
	if pageSize < 1 {
		return Page{}, fmt.Errorf("invalid page size %d", pageSize)
	}

	p, err := c.fetch(ctx, category, page, pageSize)
	if err != nil {
		c.logger.Error("fetching headlines failed",
			slog.String("category", category.Query()),
			slog.Int("page", page),
			slog.String("error", err.Error()),
		)
		return Page{}, err
	}
	c.logger.Debug("fetched headlines",
		slog.String("category", category.Query()),
		slog.Int("page", page),
		slog.Int("count", len(p.Articles)),
	)
	return p, nil
}

func (c *Client) fetch(ctx context.Context, category news.Category, page, pageSize int) (Page, error) {
	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return Page{}, fmt.Errorf("parsing endpoint: %w", err)
	}
	q := reqURL.Query()
	q.Set("country", c.country)
	q.Set("category", category.Query())
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("apiKey", c.apiKey)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return Page{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "headlines/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetching headlines: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("reading response: %w", err)
	}

	var r response
	decodeErr := json.Unmarshal(body, &r)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Code = deref(r.Code)
			apiErr.Message = deref(r.Message)
		}
		return Page{}, apiErr
	}
	if decodeErr != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrMalformed, decodeErr)
	}
	if deref(r.Status) == "error" {
		return Page{}, &APIError{
			StatusCode: resp.StatusCode,
			Code:       deref(r.Code),
			Message:    deref(r.Message),
		}
	}
	if r.Articles == nil {
		return Page{}, fmt.Errorf("%w: missing articles", ErrMalformed)
	}

	articles := make([]news.Article, 0, len(*r.Articles))
	for i, entry := range *r.Articles {
		var raw rawArticle
		if err := json.Unmarshal(entry, &raw); err != nil {
			c.logger.Debug("skipping malformed article",
				slog.String("category", category.Query()),
				slog.Int("page", page),
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)
			continue
		}
		a, ok := c.coerce(raw)
		if !ok {
			continue
		}
		articles = append(articles, a)
	}

	total := len(articles)
	if r.TotalResults != nil {
		total = *r.TotalResults
	}
	return Page{Articles: articles, TotalResults: total}, nil
}

// response mirrors the endpoint payload with every field optional; nothing in
// it is trusted until coerce has run. Articles are decoded one at a time so a
// bad entry costs only itself.
type response struct {
	Status       *string            `json:"status"`
	Code         *string            `json:"code"`
	Message      *string            `json:"message"`
	TotalResults *int               `json:"totalResults"`
	Articles     *[]json.RawMessage `json:"articles"`
}

type rawArticle struct {
	Source      rawSource     `json:"source"`
	Author      lenientString `json:"author"`
	Title       lenientString `json:"title"`
	Description lenientString `json:"description"`
	URL         lenientString `json:"url"`
	URLToImage  lenientString `json:"urlToImage"`
	PublishedAt lenientString `json:"publishedAt"`
}

// lenientString decodes a JSON string. Any other JSON value, null included,
// decodes as the empty string.
type lenientString string

func (s *lenientString) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		*s = ""
		return nil
	}
	*s = lenientString(v)
	return nil
}

// rawSource is the article's source object. Anything that is not an object
// with a string name decodes as an unnamed source.
type rawSource struct {
	Name lenientString
}

func (s *rawSource) UnmarshalJSON(b []byte) error {
	var v struct {
		Name lenientString `json:"name"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		*s = rawSource{}
		return nil
	}
	s.Name = v.Name
	return nil
}

// publishedLayouts are tried in order on publishedAt. Layouts without a zone
// are read as UTC.
var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
}

func parsePublished(s string) (time.Time, bool) {
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// coerce turns a raw payload entry into an Article. Entries without a URL are
// rejected since the URL is the article's identity.
func (c *Client) coerce(raw rawArticle) (news.Article, bool) {
	u := strings.TrimSpace(string(raw.URL))
	if u == "" {
		return news.Article{}, false
	}
	a := news.Article{
		URL:         u,
		Title:       c.clean(string(raw.Title)),
		URLToImage:  strings.TrimSpace(string(raw.URLToImage)),
		PublishedAt: strings.TrimSpace(string(raw.PublishedAt)),
		Source:      c.clean(string(raw.Source.Name)),
		Author:      c.clean(string(raw.Author)),
		Description: c.clean(string(raw.Description)),
	}
	if t, ok := parsePublished(a.PublishedAt); ok {
		a.Published = t
	}
	return a, true
}

// clean strips markup from a text field and collapses whitespace.
func (c *Client) clean(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(c.sanitizer.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
