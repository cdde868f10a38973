package feed_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/datadriven"

	"github.com/irfansharif/headlines/pkg/feed"
	"github.com/irfansharif/headlines/pkg/news"
)

// testNow is the wall clock seen by every controller under test.
var testNow = time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)

type harness struct {
	c      *feed.Controller
	issued []feed.Request
}

// TestController drives the controller through the scenarios under
// testdata/controller. Fetches are resolved by hand with the "resolve"
// command so that arrival order can be scripted.
func TestController(t *testing.T) {
	datadriven.Walk(t, "testdata/controller", func(t *testing.T, path string) {
		h := &harness{}
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			return h.run(t, d)
		})
	})
}

func (h *harness) run(t *testing.T, d *datadriven.TestData) string {
	t.Helper()
	if h.c == nil && d.Cmd != "new" {
		d.Fatalf(t, "%s before new", d.Cmd)
	}
	switch d.Cmd {
	case "new":
		h.c = feed.New(feed.Options{Now: func() time.Time { return testNow }})
		h.issued = nil
		return h.state()

	case "state":
		return h.state()

	case "start":
		return h.record(h.c.Start())

	case "select-category":
		var name string
		d.ScanArgs(t, "name", &name)
		req, err := h.c.SelectCategoryName(name)
		if err != nil {
			return fmt.Sprintf("error: %v\n", err)
		}
		return h.record(req)

	case "load-more":
		return h.record(h.c.LoadMore())

	case "refresh":
		return h.record(h.c.Refresh())

	case "resolve":
		return h.resolve(t, d)

	case "articles":
		return formatArticles(h.c.Articles())

	case "visible":
		return formatArticles(h.c.Visible())

	case "search":
		var q string
		if d.HasArg("q") {
			d.ScanArgs(t, "q", &q)
		}
		h.c.SetSearchQuery(q)
		return h.state()

	case "date-filter":
		var mode string
		d.ScanArgs(t, "mode", &mode)
		switch mode {
		case "all":
			h.c.SetDateFilter(news.AllDates)
		case "24h":
			h.c.SetDateFilter(news.Last24Hours)
		default:
			d.Fatalf(t, "unknown date filter %q", mode)
		}
		return h.state()

	case "like":
		var url string
		d.ScanArgs(t, "url", &url)
		h.c.ToggleLike(url)
		return fmt.Sprintf("liked=%t\n", h.c.IsLiked(url))

	case "liked":
		urls := h.c.LikedURLs()
		if len(urls) == 0 {
			return "none\n"
		}
		return strings.Join(urls, "\n") + "\n"

	case "select":
		var url string
		d.ScanArgs(t, "url", &url)
		h.c.SelectArticle(url)
		return h.state()

	case "clear":
		h.c.ClearSelectedArticle()
		return h.state()

	default:
		d.Fatalf(t, "unknown command %q", d.Cmd)
		return ""
	}
}

func (h *harness) record(req feed.Request) string {
	h.issued = append(h.issued, req)
	return fmt.Sprintf("request gen=%d category=%s page=%d size=%d\n",
		req.Generation, req.Category.Query(), req.Page, req.PageSize)
}

// resolve completes a previously issued request. Without gen=, the most
// recent request for the page is used. Input lines are url|title|publishedAt.
func (h *harness) resolve(t *testing.T, d *datadriven.TestData) string {
	t.Helper()
	var page int
	d.ScanArgs(t, "page", &page)
	gen := -1
	if d.HasArg("gen") {
		d.ScanArgs(t, "gen", &gen)
	}

	var req feed.Request
	found := false
	for i := len(h.issued) - 1; i >= 0; i-- {
		r := h.issued[i]
		if r.Page == page && (gen < 0 || r.Generation == uint64(gen)) {
			req, found = r, true
			break
		}
	}
	if !found {
		d.Fatalf(t, "no request issued for page %d (gen %d)", page, gen)
	}

	res := feed.Result{Request: req}
	if d.HasArg("error") {
		var msg string
		d.ScanArgs(t, "error", &msg)
		res.Err = errors.New(msg)
	} else {
		res.Articles = parseArticles(t, d, d.Input)
		res.Total = len(res.Articles)
		if d.HasArg("total") {
			d.ScanArgs(t, "total", &res.Total)
		}
	}

	verdict := "discarded"
	if h.c.Apply(res) {
		verdict = "accepted"
	}
	return verdict + "\n" + h.state()
}

func (h *harness) state() string {
	return fmt.Sprintf("category=%s page=%d loading=%t mode=%s articles=%d liked=%d more=%t err=%v\n",
		h.c.Category(), h.c.Page(), h.c.Loading(), h.c.Mode(),
		len(h.c.Articles()), h.c.LikedCount(), h.c.HasMore(), h.c.Err())
}

func parseArticles(t *testing.T, d *datadriven.TestData, input string) []news.Article {
	t.Helper()
	var out []news.Article
	for _, line := range strings.Split(input, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 3 {
			d.Fatalf(t, "expected url|title|publishedAt, got %q", line)
		}
		a := news.Article{URL: parts[0], Title: parts[1], PublishedAt: parts[2]}
		if ts, err := time.Parse(time.RFC3339, parts[2]); err == nil {
			a.Published = ts
		}
		out = append(out, a)
	}
	return out
}

func formatArticles(articles []news.Article) string {
	if len(articles) == 0 {
		return "empty\n"
	}
	var sb strings.Builder
	for _, a := range articles {
		fmt.Fprintf(&sb, "%s %q\n", a.URL, a.Title)
	}
	return sb.String()
}
