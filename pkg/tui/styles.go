package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all the lipgloss styles for the TUI.
type Styles struct {
	// App-level styles
	App    lipgloss.Style
	Header lipgloss.Style
	Footer lipgloss.Style
	Badge  lipgloss.Style

	// Tile styles
	Tile         lipgloss.Style
	SelectedTile lipgloss.Style
	TileTitle    lipgloss.Style
	TileMeta     lipgloss.Style
	TileImage    lipgloss.Style
	Heart        lipgloss.Style
	HeartLiked   lipgloss.Style

	// Category bar
	CategoryBar      lipgloss.Style
	CategoryActive   lipgloss.Style
	CategoryInactive lipgloss.Style

	// Article viewer
	ViewerHeader lipgloss.Style

	// Status styles
	Spinner lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style

	// Search styles
	SearchPrompt      lipgloss.Style
	SearchPlaceholder lipgloss.Style
	SearchText        lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}
	purple := lipgloss.AdaptiveColor{Light: "#6A1B9A", Dark: "#B388FF"}
	lavender := lipgloss.AdaptiveColor{Light: "#F3E5F5", Dark: "#3A2A4A"}
	heart := lipgloss.AdaptiveColor{Light: "#FF5C5C", Dark: "#FF8888"}
	text := lipgloss.AdaptiveColor{Light: "#333333", Dark: "#fafafa"}

	return Styles{
		App: lipgloss.NewStyle().
			Padding(0, 1),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(purple).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(subtle),

		Badge: lipgloss.NewStyle().
			Foreground(purple).
			Bold(true),

		Tile: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 1),

		SelectedTile: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(purple).
			Padding(0, 1),

		TileTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(text),

		TileMeta: lipgloss.NewStyle().
			Foreground(subtle),

		TileImage: lipgloss.NewStyle().
			Foreground(purple).
			Italic(true),

		Heart: lipgloss.NewStyle().
			Foreground(purple),

		HeartLiked: lipgloss.NewStyle().
			Foreground(heart),

		CategoryBar: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(subtle),

		CategoryActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(purple).
			Padding(0, 1),

		CategoryInactive: lipgloss.NewStyle().
			Foreground(purple).
			Background(lavender).
			Padding(0, 1),

		ViewerHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(purple).
			Padding(0, 1),

		Spinner: lipgloss.NewStyle().
			Foreground(purple),

		Error: lipgloss.NewStyle().
			Foreground(heart),

		Muted: lipgloss.NewStyle().
			Foreground(subtle),

		SearchPrompt: lipgloss.NewStyle().
			Foreground(subtle).
			SetString("⌕ "),

		SearchPlaceholder: lipgloss.NewStyle().
			Foreground(subtle).
			Italic(true),

		SearchText: lipgloss.NewStyle().
			Foreground(text),
	}
}
