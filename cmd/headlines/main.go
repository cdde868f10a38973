package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/irfansharif/headlines/pkg/config"
	"github.com/irfansharif/headlines/pkg/feed"
	"github.com/irfansharif/headlines/pkg/logger"
	"github.com/irfansharif/headlines/pkg/news"
	"github.com/irfansharif/headlines/pkg/newsapi"
	"github.com/irfansharif/headlines/pkg/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every command.
type rootOptions struct {
	cfgFile  string
	category string
	verbose  bool
}

// env is what a command needs once the config is loaded.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	closer io.Closer
}

func (o *rootOptions) setup() (*env, error) {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		path := o.cfgFile
		if path == "" {
			path = config.Path()
		}
		return nil, fmt.Errorf("no API key: set api_key in %s or %s", path, config.APIKeyEnv)
	}

	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	l, closer, err := logger.Open(cfg.LogFile, level)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: l, closer: closer}, nil
}

func (e *env) client() *newsapi.Client {
	return newsapi.NewClient(nil, e.logger, newsapi.Options{
		Endpoint: e.cfg.Endpoint,
		APIKey:   e.cfg.APIKey,
		Country:  e.cfg.Country,
	})
}

func (e *env) controller() *feed.Controller {
	return feed.New(feed.Options{
		PageSize: e.cfg.PageSize,
		Logger:   e.logger,
	})
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "headlines",
		Short: "Browse top headlines in the terminal",
		Long: `headlines shows top headlines from a NewsAPI-compatible endpoint as a
grid of tiles. Switch categories, search titles, like articles and read
them without leaving the terminal.

Example usage:
  headlines                        # Browse general headlines
  headlines --category science     # Start on science
  headlines list -c business       # Print business headlines and exit`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ~/.headlines/headlines.toml)")
	root.PersistentFlags().StringVarP(&opts.category, "category", "c", news.General.Query(), "category to show")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(newListCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

func runTUI(opts *rootOptions) error {
	cat, err := news.ParseCategory(opts.category)
	if err != nil {
		return err
	}
	e, err := opts.setup()
	if err != nil {
		return err
	}
	defer e.closer.Close()

	ctrl := e.controller()
	// The model's Init issues the first fetch for whichever category is
	// current, so the request returned here is not needed.
	if _, err := ctrl.SelectCategory(cat); err != nil {
		return err
	}

	model := tui.New(ctrl, e.client(), tui.Options{
		Viewer: e.cfg.Viewer,
		Logger: e.logger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
