package feed

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/irfansharif/headlines/pkg/news"
	"github.com/irfansharif/headlines/pkg/newsapi"
)

type fakeSource struct {
	pages map[news.Category][][]news.Article
	err   error
	calls []Request
}

func (f *fakeSource) Fetch(_ context.Context, cat news.Category, page, pageSize int) (newsapi.Page, error) {
	f.calls = append(f.calls, Request{Category: cat, Page: page, PageSize: pageSize})
	if f.err != nil {
		return newsapi.Page{}, f.err
	}
	pages := f.pages[cat]
	if page > len(pages) {
		return newsapi.Page{}, nil
	}
	return newsapi.Page{Articles: pages[page-1], TotalResults: 100}, nil
}

func article(url, title string, published time.Time) news.Article {
	return news.Article{URL: url, Title: title, Published: published, PublishedAt: published.Format(time.RFC3339)}
}

func urls(articles []news.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.URL)
	}
	return out
}

func TestSelectCategoryResets(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	src := &fakeSource{pages: map[news.Category][][]news.Article{
		news.General: {
			{article("a1", "one", now), article("a2", "two", now)},
			{article("a3", "three", now)},
		},
	}}
	c := New(Options{})
	if err := c.Sync(ctx, src, c.Start()); err != nil {
		t.Fatal(err)
	}
	if err := c.Sync(ctx, src, c.LoadMore()); err != nil {
		t.Fatal(err)
	}
	if c.Page() != 2 || len(c.Articles()) != 3 {
		t.Fatalf("unexpected state: page=%d articles=%d", c.Page(), len(c.Articles()))
	}

	for _, cat := range news.Categories() {
		if _, err := c.SelectCategory(cat); err != nil {
			t.Fatal(err)
		}
		if c.Page() != 1 {
			t.Errorf("%v: page = %d, want 1", cat, c.Page())
		}
		if len(c.Articles()) != 0 {
			t.Errorf("%v: articles not cleared", cat)
		}
		if c.Category() != cat {
			t.Errorf("category = %v, want %v", c.Category(), cat)
		}
	}
}

func TestSelectCategoryInvalid(t *testing.T) {
	c := New(Options{})
	c.Start()
	_, err := c.SelectCategory(news.Category(42))
	if !errors.Is(err, news.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	if c.Category() != news.General || c.Page() != 1 || !c.Loading() {
		t.Error("state changed after rejected category")
	}
}

func TestToggleLikeInvolutive(t *testing.T) {
	c := New(Options{})
	c.ToggleLike("keep")
	for _, u := range []string{"x", "keep", ""} {
		before := c.LikedURLs()
		c.ToggleLike(u)
		c.ToggleLike(u)
		if after := c.LikedURLs(); !reflect.DeepEqual(before, after) {
			t.Errorf("ToggleLike(%q) twice: %v -> %v", u, before, after)
		}
	}
}

func TestVisibleIsPure(t *testing.T) {
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	c := New(Options{Now: func() time.Time { return now }})
	req := c.Start()
	c.Apply(Result{Request: req, Articles: []news.Article{
		article("a", "Alpha", now.Add(-time.Hour)),
		article("b", "Beta", now.Add(-30*time.Hour)),
	}})
	c.SetSearchQuery("a")
	c.SetDateFilter(news.Last24Hours)

	first := c.Visible()
	second := c.Visible()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Visible() changed between calls: %v vs %v", first, second)
	}
	if len(c.Articles()) != 2 {
		t.Error("Visible() must not modify the fetched articles")
	}
}

func TestSearchFilter(t *testing.T) {
	c := New(Options{})
	req := c.Start()
	c.Apply(Result{Request: req, Articles: []news.Article{
		{URL: "1", Title: "Apple News"},
		{URL: "2", Title: "banana report"},
		{URL: "3", Title: "Other"},
		{URL: "4"},
	}})

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"1", "2", "3", "4"}},
		{"n", []string{"1", "2"}},
		{"N", []string{"1", "2"}},
		{"ANA", []string{"2"}},
		{"news", []string{"1"}},
		{"missing", []string{}},
	}
	for _, tt := range tests {
		c.SetSearchQuery(tt.query)
		if got := urls(c.Visible()); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("query %q: got %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestDateFilter(t *testing.T) {
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	c := New(Options{Now: func() time.Time { return now }})
	req := c.Start()
	c.Apply(Result{Request: req, Articles: []news.Article{
		article("recent", "Recent", now.Add(-time.Hour)),
		article("old", "Old", now.Add(-48*time.Hour)),
		{URL: "undated", Title: "Undated", PublishedAt: "garbage"},
		article("edge", "Exactly a day", now.Add(-24*time.Hour)),
	}})

	c.SetDateFilter(news.Last24Hours)
	if got := urls(c.Visible()); !reflect.DeepEqual(got, []string{"recent"}) {
		t.Errorf("24h filter: got %v", got)
	}
	c.SetDateFilter(news.AllDates)
	if got := urls(c.Visible()); len(got) != 4 {
		t.Errorf("all filter: got %v", got)
	}
}

func TestAppendVersusReplace(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	src := &fakeSource{pages: map[news.Category][][]news.Article{
		news.General: {
			{article("a1", "a1", now), article("a2", "a2", now)},
			{article("a3", "a3", now), article("a4", "a4", now)},
		},
		news.Health: {
			{article("b1", "b1", now)},
		},
	}}

	c := New(Options{})
	if err := c.Sync(ctx, src, c.Start()); err != nil {
		t.Fatal(err)
	}
	if err := c.Sync(ctx, src, c.LoadMore()); err != nil {
		t.Fatal(err)
	}
	if got := urls(c.Articles()); !reflect.DeepEqual(got, []string{"a1", "a2", "a3", "a4"}) {
		t.Errorf("after LoadMore: %v", got)
	}

	req, err := c.SelectCategory(news.Health)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Sync(ctx, src, req); err != nil {
		t.Fatal(err)
	}
	if got := urls(c.Articles()); !reflect.DeepEqual(got, []string{"b1"}) {
		t.Errorf("after SelectCategory: %v", got)
	}

	want := []Request{
		{Category: news.General, Page: 1, PageSize: DefaultPageSize},
		{Category: news.General, Page: 2, PageSize: DefaultPageSize},
		{Category: news.Health, Page: 1, PageSize: DefaultPageSize},
	}
	if !reflect.DeepEqual(src.calls, want) {
		t.Errorf("source calls = %+v, want %+v", src.calls, want)
	}
}

func TestFetchFailureLeavesStateIntact(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	src := &fakeSource{pages: map[news.Category][][]news.Article{
		news.General: {{article("a1", "a1", now)}},
	}}
	c := New(Options{})
	if err := c.Sync(ctx, src, c.Start()); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	src.err = boom
	req := c.LoadMore()
	before := c.Articles()
	page, cat := c.Page(), c.Category()

	if err := c.Sync(ctx, src, req); !errors.Is(err, boom) {
		t.Fatalf("Sync error = %v, want %v", err, boom)
	}
	if !reflect.DeepEqual(c.Articles(), before) {
		t.Errorf("articles changed: %v", c.Articles())
	}
	if c.Page() != page || c.Category() != cat {
		t.Errorf("page/category changed: %d %v", c.Page(), c.Category())
	}
	if c.Loading() {
		t.Error("loading should be false after failure")
	}
	if !errors.Is(c.Err(), boom) {
		t.Errorf("Err() = %v", c.Err())
	}
}

func TestLikePersistsAcrossCategorySwitch(t *testing.T) {
	c := New(Options{})
	c.ToggleLike("X")
	if _, err := c.SelectCategory(news.Sports); err != nil {
		t.Fatal(err)
	}
	if _, err := c.SelectCategory(news.Technology); err != nil {
		t.Fatal(err)
	}
	if !c.IsLiked("X") {
		t.Error("X should still be liked")
	}
}

func TestViewMode(t *testing.T) {
	c := New(Options{})
	if c.Mode() != ListMode {
		t.Fatal("initial mode should be list")
	}
	c.SelectArticle("https://example.com/a")
	if c.Mode() != ArticleMode {
		t.Error("expected article mode")
	}
	if u, ok := c.SelectedArticle(); !ok || u != "https://example.com/a" {
		t.Errorf("SelectedArticle() = %q, %t", u, ok)
	}
	c.ClearSelectedArticle()
	if c.Mode() != ListMode {
		t.Error("expected list mode")
	}
	if _, ok := c.SelectedArticle(); ok {
		t.Error("selection should be cleared")
	}
}

func TestApplyIgnoresDuplicatePage(t *testing.T) {
	c := New(Options{})
	c.Start()
	c.LoadMore()
	req := c.LoadMore()
	res := Result{Request: req, Articles: []news.Article{{URL: "p3"}}}
	if !c.Apply(res) {
		t.Fatal("first delivery should be accepted")
	}
	if c.Apply(res) {
		t.Error("duplicate delivery should be rejected")
	}
	if !c.Loading() {
		t.Error("pages 1 and 2 are still outstanding")
	}
}

func TestTotalResetsWithGeneration(t *testing.T) {
	src := &fakeSource{pages: map[news.Category][][]news.Article{
		news.General: {{article("a1", "a1", time.Now())}},
	}}
	c := New(Options{PageSize: 2})
	if got := c.PageSize(); got != 2 {
		t.Fatalf("PageSize() = %d, want 2", got)
	}
	if err := c.Sync(context.Background(), src, c.Start()); err != nil {
		t.Fatal(err)
	}
	if got := c.Total(); got != 100 {
		t.Errorf("Total() = %d, want 100", got)
	}
	if !c.HasMore() {
		t.Error("HasMore() = false with 1 of 100 fetched")
	}

	if _, err := c.SelectCategory(news.Health); err != nil {
		t.Fatal(err)
	}
	if c.Total() != 0 || c.HasMore() {
		t.Errorf("after switch: Total() = %d, HasMore() = %t", c.Total(), c.HasMore())
	}
}
