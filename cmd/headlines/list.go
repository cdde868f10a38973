package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/irfansharif/headlines/pkg/feed"
	"github.com/irfansharif/headlines/pkg/news"
)

type listItem struct {
	Title       string `json:"title"`
	Source      string `json:"source,omitempty"`
	Author      string `json:"author,omitempty"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt,omitempty"`
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		pages      int
		query      string
		last24h    bool
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print headlines for a category and exit",
		Long: `Fetch headlines for a category and print them as a table.

Examples:
  headlines list                       # General headlines, first page
  headlines list -c sports --pages 3   # First three pages of sports
  headlines list -s election --24h     # Matching titles from the last day
  headlines list --json                # Output as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pages < 1 {
				return fmt.Errorf("--pages must be at least 1, got %d", pages)
			}
			e, err := opts.setup()
			if err != nil {
				return err
			}
			defer e.closer.Close()

			ctx := cmd.Context()
			src := e.client()
			ctrl := e.controller()
			req, err := ctrl.SelectCategoryName(opts.category)
			if err != nil {
				return err
			}
			if err := ctrl.Sync(ctx, src, req); err != nil {
				return err
			}
			if err := fetchRemaining(ctx, ctrl, src, pages); err != nil {
				return err
			}

			ctrl.SetSearchQuery(query)
			if last24h {
				ctrl.SetDateFilter(news.Last24Hours)
			}

			visible := ctrl.Visible()
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), visible)
			}
			writeTable(cmd.OutOrStdout(), visible, time.Now())
			return nil
		},
	}

	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to fetch")
	cmd.Flags().StringVarP(&query, "search", "s", "", "only show titles containing this text")
	cmd.Flags().BoolVar(&last24h, "24h", false, "only show headlines from the last 24 hours")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

// fetchRemaining fetches pages 2 through pages concurrently, stopping at the
// last page the source reported. Results are handed to the controller as they
// come back; it applies them in page order.
func fetchRemaining(ctx context.Context, ctrl *feed.Controller, src feed.Source, pages int) error {
	last := min(pages, (ctrl.Total()+ctrl.PageSize()-1)/ctrl.PageSize())
	var reqs []feed.Request
	for ctrl.Page() < last {
		reqs = append(reqs, ctrl.LoadMore())
	}

	results := make(chan feed.Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, req := range reqs {
		g.Go(func() error {
			res := req.Do(gctx, src)
			results <- res
			return res.Err
		})
	}
	err := g.Wait()
	close(results)
	for res := range results {
		ctrl.Apply(res)
	}
	return err
}

func writeJSON(w io.Writer, articles []news.Article) error {
	items := make([]listItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, listItem{
			Title:       a.Title,
			Source:      a.Source,
			Author:      a.Author,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func writeTable(w io.Writer, articles []news.Article, now time.Time) {
	if len(articles) == 0 {
		fmt.Fprintln(w, "No headlines.")
		return
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "TITLE", "SOURCE", "PUBLISHED", "URL").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	for i, a := range articles {
		published := ""
		if !a.Published.IsZero() {
			published = a.Published.Format(time.RFC3339)
			if age := now.Sub(a.Published); age >= 0 && age < 24*time.Hour {
				published = age.Truncate(time.Minute).String() + " ago"
			}
		}
		t.Row(strconv.Itoa(i+1), a.Title, a.Source, published, a.URL)
	}
	fmt.Fprintln(w, t)
}
