// Package feed owns the headline feed state: the selected category, the page
// cursor, the fetched articles, likes, the search and date filters, and the
// article being viewed.
//
// Fetching is split in two so that no I/O happens while state is held. An
// operation that needs data returns a Request; the caller runs Request.Do on
// whatever goroutine it likes and hands the Result back to Apply. Every
// request carries the generation it was issued in. Selecting a category or
// refreshing starts a new generation, and results from an older one are
// dropped. Within a generation, pages are applied strictly in page order so
// that overlapping LoadMore calls cannot reorder articles.
//
// A Controller is not safe for concurrent use; only Request.Do may run
// elsewhere.
package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/irfansharif/headlines/pkg/news"
	"github.com/irfansharif/headlines/pkg/newsapi"
)

// DefaultPageSize is the number of headlines requested per page.
const DefaultPageSize = 10

// Mode is the view mode the presentation layer should be in.
type Mode int

const (
	ListMode Mode = iota
	ArticleMode
)

// String returns "list" or "article".
func (m Mode) String() string {
	if m == ArticleMode {
		return "article"
	}
	return "list"
}

// Source fetches one page of headlines. *newsapi.Client implements it.
type Source interface {
	Fetch(ctx context.Context, category news.Category, page, pageSize int) (newsapi.Page, error)
}

// Request describes a fetch issued by the controller.
type Request struct {
	Generation uint64
	Category   news.Category
	Page       int
	PageSize   int
}

// Do performs the fetch. It does not touch the controller.
func (r Request) Do(ctx context.Context, src Source) Result {
	p, err := src.Fetch(ctx, r.Category, r.Page, r.PageSize)
	return Result{
		Request:  r,
		Articles: p.Articles,
		Total:    p.TotalResults,
		Err:      err,
	}
}

// Result is the outcome of a Request.
type Result struct {
	Request
	Articles []news.Article
	Total    int
	Err      error
}

// Options configures a Controller.
type Options struct {
	PageSize int
	Now      func() time.Time
	Logger   *slog.Logger
}

// Controller holds the feed state. The zero value is not usable; use New.
type Controller struct {
	pageSize int
	now      func() time.Time
	logger   *slog.Logger

	category   news.Category
	page       int
	articles   []news.Article
	liked      map[string]struct{}
	query      string
	dateFilter news.DateFilter
	selected   string

	generation uint64
	inflight   int
	nextPage   int
	pending    map[int]Result
	total      int
	err        error
}

// New returns a controller in its initial state: General, page 1, no
// articles, list mode.
func New(opts Options) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Controller{
		pageSize: opts.PageSize,
		now:      opts.Now,
		logger:   opts.Logger,
		category: news.General,
		page:     1,
		articles: []news.Article{},
		liked:    make(map[string]struct{}),
		nextPage: 1,
		pending:  make(map[int]Result),
	}
}

// Start returns the request for the first page of the current category.
func (c *Controller) Start() Request {
	return c.Refresh()
}

// SelectCategory switches to cat, discarding all fetched articles, and
// returns the request for its first page. Selecting the current category
// refetches it from page 1. An invalid category leaves state untouched.
func (c *Controller) SelectCategory(cat news.Category) (Request, error) {
	if !cat.Valid() {
		return Request{}, fmt.Errorf("%w: %v", news.ErrUnknownCategory, cat)
	}
	c.category = cat
	c.page = 1
	c.articles = []news.Article{}
	c.newGeneration()
	return c.issue(1), nil
}

// SelectCategoryName is SelectCategory for a category given by name.
func (c *Controller) SelectCategoryName(name string) (Request, error) {
	cat, err := news.ParseCategory(name)
	if err != nil {
		return Request{}, err
	}
	return c.SelectCategory(cat)
}

// LoadMore advances the page cursor and returns the request for the new
// page, whose articles are appended once they arrive. The cursor is not
// rolled back if the fetch fails.
func (c *Controller) LoadMore() Request {
	c.page++
	return c.issue(c.page)
}

// Refresh refetches the current category from page 1. The articles on screen
// stay until the new first page replaces them.
func (c *Controller) Refresh() Request {
	c.page = 1
	c.newGeneration()
	return c.issue(1)
}

func (c *Controller) newGeneration() {
	c.generation++
	c.inflight = 0
	c.nextPage = 1
	c.pending = make(map[int]Result)
	c.total = 0
}

func (c *Controller) issue(page int) Request {
	c.inflight++
	return Request{
		Generation: c.generation,
		Category:   c.category,
		Page:       page,
		PageSize:   c.pageSize,
	}
}

// Apply folds a fetch result into the state. It reports false if the result
// was discarded because it belongs to an earlier generation.
func (c *Controller) Apply(res Result) bool {
	if res.Generation != c.generation || res.Page < c.nextPage {
		c.logger.Debug("discarding stale headlines",
			slog.Uint64("generation", res.Generation),
			slog.Uint64("current_generation", c.generation),
			slog.String("category", res.Category.Query()),
			slog.Int("page", res.Page),
		)
		return false
	}
	if _, dup := c.pending[res.Page]; dup {
		return false
	}
	if c.inflight > 0 {
		c.inflight--
	}

	c.pending[res.Page] = res
	for {
		r, ok := c.pending[c.nextPage]
		if !ok {
			break
		}
		delete(c.pending, c.nextPage)
		c.applyPage(r)
		c.nextPage++
	}
	return true
}

func (c *Controller) applyPage(r Result) {
	if r.Err != nil {
		c.err = r.Err
		c.logger.Error("loading headlines failed",
			slog.String("category", r.Category.Query()),
			slog.Int("page", r.Page),
			slog.String("error", r.Err.Error()),
		)
		return
	}
	c.err = nil
	c.total = r.Total
	if r.Page == 1 {
		c.articles = append([]news.Article{}, r.Articles...)
		return
	}
	c.articles = append(c.articles, r.Articles...)
}

// Sync runs req against src and applies the result in place. It returns the
// fetch error, if any; state is updated either way.
func (c *Controller) Sync(ctx context.Context, src Source, req Request) error {
	res := req.Do(ctx, src)
	c.Apply(res)
	return res.Err
}

// SetSearchQuery sets the case-insensitive title filter.
func (c *Controller) SetSearchQuery(text string) {
	c.query = text
}

// SetDateFilter sets the publication-time filter.
func (c *Controller) SetDateFilter(f news.DateFilter) {
	c.dateFilter = f
}

// ToggleLike adds url to the liked set, or removes it if already present.
// Likes are independent of the category and of what is currently fetched.
func (c *Controller) ToggleLike(url string) {
	if _, ok := c.liked[url]; ok {
		delete(c.liked, url)
		return
	}
	c.liked[url] = struct{}{}
}

// SelectArticle switches to article mode for url.
func (c *Controller) SelectArticle(url string) {
	c.selected = url
}

// ClearSelectedArticle returns to list mode.
func (c *Controller) ClearSelectedArticle() {
	c.selected = ""
}

// Visible returns the fetched articles that pass the search and date
// filters, in fetch order.
func (c *Controller) Visible() []news.Article {
	query := strings.ToLower(c.query)
	threshold := c.now().Add(-24 * time.Hour)

	out := make([]news.Article, 0, len(c.articles))
	for _, a := range c.articles {
		if !strings.Contains(strings.ToLower(a.Title), query) {
			continue
		}
		// A zero Published (unparsable timestamp) never passes.
		if c.dateFilter == news.Last24Hours && !a.Published.After(threshold) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Category returns the selected category.
func (c *Controller) Category() news.Category { return c.category }

// Page returns the highest page requested in the current category.
func (c *Controller) Page() int { return c.page }

// Loading reports whether any request of the current generation is
// outstanding.
func (c *Controller) Loading() bool { return c.inflight > 0 }

// Articles returns a copy of every fetched article, unfiltered.
func (c *Controller) Articles() []news.Article {
	return append([]news.Article{}, c.articles...)
}

// IsLiked reports whether url is in the liked set.
func (c *Controller) IsLiked(url string) bool {
	_, ok := c.liked[url]
	return ok
}

// LikedURLs returns the liked set, sorted.
func (c *Controller) LikedURLs() []string {
	out := make([]string, 0, len(c.liked))
	for u := range c.liked {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// LikedCount returns the size of the liked set.
func (c *Controller) LikedCount() int { return len(c.liked) }

// SearchQuery returns the title filter as entered.
func (c *Controller) SearchQuery() string { return c.query }

// DateFilter returns the publication-time filter.
func (c *Controller) DateFilter() news.DateFilter { return c.dateFilter }

// SelectedArticle returns the URL being viewed, if any.
func (c *Controller) SelectedArticle() (string, bool) {
	return c.selected, c.selected != ""
}

// Mode returns ArticleMode while an article is selected, ListMode otherwise.
func (c *Controller) Mode() Mode {
	if c.selected != "" {
		return ArticleMode
	}
	return ListMode
}

// Err returns the error of the most recent failed page, cleared by the next
// successful one.
func (c *Controller) Err() error { return c.err }

// Total is the result count the source reported for the current generation.
func (c *Controller) Total() int { return c.total }

// PageSize returns the number of headlines requested per page.
func (c *Controller) PageSize() int { return c.pageSize }

// HasMore reports whether the source claimed more results than have been
// fetched. It is a hint; LoadMore is never refused.
func (c *Controller) HasMore() bool {
	return c.total > len(c.articles)
}
