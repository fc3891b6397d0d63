// Package blog finds the newest post on the blog homepage.
package blog

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/schema"
	"github.com/rs/zerolog"
)

// PlaceholderTitle is used when no post title can be found.
const PlaceholderTitle = "Latest Post"

const maxPageBytes = 4 << 20

var (
	postCardRe = regexp.MustCompile(`(?s)<div class="post-card" onclick="window\.location\.href='([^']+)'">.*?<div class="post-title">([^<]+)</div>`)
	onclickRe  = regexp.MustCompile(`onclick="window\.location\.href='([^']+)'"`)
	titleRe    = regexp.MustCompile(`<div class="post-title">([^<]+)</div>`)
)

// Scraper fetches the homepage and extracts the first post card.
type Scraper struct {
	pageURL    string
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

var _ contract.PostSource = &Scraper{} // Compile-time check

// Option configures a Scraper.
type Option func(*Scraper)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Scraper) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Scraper) { s.httpClient.Timeout = timeout }
}

// WithLogger sets the logger used to report parse fallbacks.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scraper) { s.log = l }
}

// NewScraper reads posts from pageURL. Relative post links are joined onto baseURL.
func NewScraper(pageURL, baseURL string, opts ...Option) *Scraper {
	s := &Scraper{
		pageURL:    pageURL,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: contract.DefaultHTTPTimeout},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Latest returns the newest post. Transport and HTTP status failures are errors;
// a page that cannot be parsed yields the placeholder post instead.
func (s *Scraper) Latest(ctx context.Context) (schema.BlogPost, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL, nil)
	if err != nil {
		return schema.BlogPost{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "pulse")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return schema.BlogPost{}, fmt.Errorf("blog request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return schema.BlogPost{}, fmt.Errorf("blog page %s returned status %d", s.pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return schema.BlogPost{}, fmt.Errorf("read blog page: %w", err)
	}

	post := Parse(string(body), s.baseURL)
	evt := s.log.Debug()
	if post.Fallback {
		evt = s.log.Warn()
	}
	evt.Str("title", post.Title).Str("url", post.URL).Bool("fallback", post.Fallback).Msg("parsed latest blog post")
	return post, nil
}

// Parse extracts the first post from page. It never fails: a card with both link and
// title wins, then the first link with the first title, then the placeholder.
func Parse(page, baseURL string) schema.BlogPost {
	baseURL = strings.TrimRight(baseURL, "/")

	if m := postCardRe.FindStringSubmatch(page); m != nil {
		return schema.BlogPost{Title: cleanTitle(m[2]), URL: resolveURL(m[1], baseURL)}
	}

	if m := onclickRe.FindStringSubmatch(page); m != nil {
		title := PlaceholderTitle
		if t := titleRe.FindStringSubmatch(page); t != nil {
			title = cleanTitle(t[1])
		}
		return schema.BlogPost{Title: title, URL: resolveURL(m[1], baseURL)}
	}

	return schema.BlogPost{Title: PlaceholderTitle, URL: baseURL, Fallback: true}
}

func cleanTitle(raw string) string {
	title := strings.TrimSpace(html.UnescapeString(raw))
	if title == "" {
		return PlaceholderTitle
	}
	return title
}

// resolveURL keeps absolute links and joins relative ones onto baseURL.
func resolveURL(link, baseURL string) string {
	if strings.HasPrefix(link, "http") {
		return link
	}
	return baseURL + "/" + strings.TrimLeft(link, "/")
}
