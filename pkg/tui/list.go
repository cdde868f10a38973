package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/irfansharif/headlines/pkg/news"
)

const (
	gridColumns   = 2
	tileLines     = 4 // image marker, two title lines, meta line
	tileHeight    = tileLines + 2
	minTileWidth  = 16
	titleMaxLines = 2
)

// formatRelativeTime returns a human-readable time relative to now. The zero
// time renders as the empty string.
func formatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("Jan 2")
	}
}

// truncateString shortens s to width cells, adding an ellipsis if needed.
func truncateString(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return strings.TrimRight(string(runes), " ") + "…"
}

// wrapTitle word-wraps s into at most maxLines lines of width cells. The
// last line is truncated if the title does not fit.
func wrapTitle(s string, width, maxLines int) []string {
	words := strings.Fields(s)
	var lines []string
	for len(words) > 0 {
		if len(lines) == maxLines-1 {
			return append(lines, truncateString(strings.Join(words, " "), width))
		}
		n := 1
		for n < len(words) && lipgloss.Width(strings.Join(words[:n+1], " ")) <= width {
			n++
		}
		lines = append(lines, truncateString(strings.Join(words[:n], " "), width))
		words = words[n:]
	}
	return lines
}

// renderTile renders one article tile, width cells wide including borders.
func renderTile(a news.Article, liked, selected bool, width int, now time.Time, styles Styles) string {
	style := styles.Tile
	if selected {
		style = styles.SelectedTile
	}
	// Border and horizontal padding.
	inner := width - 4
	if inner < 1 {
		inner = 1
	}

	lines := make([]string, 0, tileLines)
	if a.HasImage() {
		lines = append(lines, styles.TileImage.Render(truncateString("▣ image", inner)))
	} else {
		lines = append(lines, "")
	}

	title := a.Title
	if title == "" {
		title = "Untitled"
	}
	wrapped := wrapTitle(title, inner, titleMaxLines)
	for i := 0; i < titleMaxLines; i++ {
		var l string
		if i < len(wrapped) {
			l = wrapped[i]
		}
		lines = append(lines, styles.TileTitle.Render(l))
	}

	heart := styles.Heart.Render("♡")
	if liked {
		heart = styles.HeartLiked.Render("♥")
	}
	var metaParts []string
	if a.Source != "" {
		metaParts = append(metaParts, a.Source)
	}
	if rel := formatRelativeTime(a.Published, now); rel != "" {
		metaParts = append(metaParts, rel)
	}
	meta := truncateString(strings.Join(metaParts, " · "), inner-2)
	pad := inner - lipgloss.Width(meta) - 1
	if pad < 1 {
		pad = 1
	}
	lines = append(lines, styles.TileMeta.Render(meta)+strings.Repeat(" ", pad)+heart)

	return style.Width(width - 2).Render(strings.Join(lines, "\n"))
}

// gridWindow returns the range of rows to draw so that the cursor's row is
// visible, given room for visibleRows rows.
func gridWindow(cursor, count, visibleRows int) (startRow, endRow int) {
	totalRows := (count + gridColumns - 1) / gridColumns
	if visibleRows < 1 {
		visibleRows = 1
	}
	cursorRow := cursor / gridColumns
	if cursorRow >= visibleRows {
		startRow = cursorRow - visibleRows + 1
	}
	endRow = startRow + visibleRows
	if endRow > totalRows {
		endRow = totalRows
	}
	return startRow, endRow
}

// renderGrid lays tiles out two per row.
func renderGrid(
	articles []news.Article,
	isLiked func(string) bool,
	cursor, width, visibleRows int,
	now time.Time,
	styles Styles,
) string {
	tileWidth := (width - 1) / gridColumns
	if tileWidth < minTileWidth {
		tileWidth = minTileWidth
	}

	startRow, endRow := gridWindow(cursor, len(articles), visibleRows)
	rows := make([]string, 0, endRow-startRow)
	for r := startRow; r < endRow; r++ {
		var tiles []string
		for c := 0; c < gridColumns; c++ {
			i := r*gridColumns + c
			if i >= len(articles) {
				break
			}
			if c > 0 {
				tiles = append(tiles, " ")
			}
			a := articles[i]
			tiles = append(tiles, renderTile(a, isLiked(a.URL), i == cursor, tileWidth, now, styles))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderCategoryBar renders the category selector with the active category
// highlighted.
func renderCategoryBar(active news.Category, width int, styles Styles) string {
	var parts []string
	for i, c := range news.Categories() {
		label := fmt.Sprintf("%d %s %s", i+1, c.Glyph(), c)
		if c == active {
			parts = append(parts, styles.CategoryActive.Render(label))
		} else {
			parts = append(parts, styles.CategoryInactive.Render(label))
		}
	}

	// Stop adding categories once the row would overflow.
	var row string
	for i, p := range parts {
		candidate := row
		if i > 0 {
			candidate += " "
		}
		candidate += p
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}
	return styles.CategoryBar.Width(width).Render(row)
}

// renderEmptyState renders the message shown when a category has no
// headlines.
func renderEmptyState(styles Styles) string {
	return styles.Muted.Render("No headlines yet. Press 'r' to refresh.")
}

// renderNoResults renders the message shown when filters hide everything.
func renderNoResults(query string, filter news.DateFilter, styles Styles) string {
	switch {
	case query != "" && filter == news.Last24Hours:
		return styles.Muted.Render(fmt.Sprintf("No headlines from the last 24 hours matching '%s'", query))
	case query != "":
		return styles.Muted.Render(fmt.Sprintf("No headlines matching '%s'", query))
	default:
		return styles.Muted.Render("No headlines from the last 24 hours")
	}
}
