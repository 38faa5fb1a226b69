// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notes

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/hammerboard/models"
)

const (
	DefaultBaseURL = "https://www.artsaca.com"
	DefaultLimit   = 6
	MaxLimit       = 20

	userAgent = "Mozilla/5.0 (compatible; PrehammerNotes/1.0)"
)

// FetchError is a non-2xx answer from the notes site
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("FETCH_%d", e.Status)
}

// Client reads auction notes from the research blog. It is read-only and
// has no state of its own.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL. A nil hc gets a client with a
// 10 second timeout.
func NewClient(baseURL string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

// Latest lists the newest auction posts, at most limit of them. Posts
// are fetched in parallel; any failed post fails the listing.
func (c *Client) Latest(ctx context.Context, limit int) ([]models.NoteItem, error) {
	urls, err := c.latestURLs(ctx, limit)
	if err != nil {
		return nil, err
	}

	items := make([]models.NoteItem, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		g.Go(func() error {
			item, err := c.fetchItem(gctx, u, false)
			if err != nil {
				return err
			}
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// Note fetches one post by slug, including its first paragraph
func (c *Client) Note(ctx context.Context, slug string) (models.NoteItem, error) {
	return c.fetchItem(ctx, c.baseURL+"/post/"+url.PathEscape(slug), true)
}

func (c *Client) latestURLs(ctx context.Context, limit int) ([]string, error) {
	root := c.baseURL + "/sitemap.xml"

	// An unreadable index falls back to treating the root as a urlset
	candidates := []string{root}
	if idx, err := c.fetchSitemap(ctx, root); err == nil {
		if children := idx.children(); len(children) > 0 {
			if len(children) > maxChildSitemaps {
				children = children[:maxChildSitemaps]
			}
			candidates = children
		}
	} else {
		slog.Warn("failed to read sitemap index", "url", root, "error", err)
	}

	var posts []auctionPost
	for _, u := range candidates {
		sm, err := c.fetchSitemap(ctx, u)
		if err != nil {
			slog.Warn("skipping sitemap", "url", u, "error", err)
			continue
		}
		posts = append(posts, sm.auctionPosts()...)
	}
	return latest(posts, limit), nil
}

func (c *Client) fetchSitemap(ctx context.Context, u string) (*sitemap, error) {
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return parseSitemap(body)
}

func (c *Client) fetchItem(ctx context.Context, u string, withExcerpt bool) (models.NoteItem, error) {
	_, slug, _ := strings.Cut(u, "/post/")
	slug = strings.TrimSpace(slug)
	if s, err := url.PathUnescape(slug); err == nil {
		slug = s
	}

	body, err := c.get(ctx, u)
	if err != nil {
		return models.NoteItem{}, err
	}
	defer body.Close()

	p, err := parsePage(body)
	if err != nil {
		return models.NoteItem{}, fmt.Errorf("failed to parse %s: %w", u, err)
	}

	rawTitle := p.first("property:og:title", "name:twitter:title")
	if rawTitle == "" {
		rawTitle = p.title
	}
	if rawTitle == "" {
		rawTitle = slug
	}
	parsed := ParseTitle(rawTitle)

	title := CleanTitle(rawTitle)
	if title == "" {
		title = slug
	}
	norm := parsed.Norm
	if norm == "" {
		norm = title
	}

	item := models.NoteItem{
		Slug:      slug,
		URL:       u,
		Title:     title,
		NormTitle: norm,
		Image:     p.first("property:og:image", "name:twitter:image"),
		House:     parsed.House,
		Year:      parsed.Year,
		Status:    parsed.Status,
		Price:     parsed.Price,
	}
	if withExcerpt {
		item.Excerpt = p.excerpt()
	}
	return item, nil
}

func (c *Client) get(ctx context.Context, u string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en;q=0.7")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &FetchError{URL: u, Status: resp.StatusCode}
	}
	return resp.Body, nil
}

// ClampLimit parses a ?limit value. Anything unparseable gives
// DefaultLimit; numbers are truncated and clamped to [1, MaxLimit].
func ClampLimit(raw string) int {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return DefaultLimit
	}
	switch {
	case n < 1:
		return 1
	case n > MaxLimit:
		return MaxLimit
	}
	return int(n)
}
