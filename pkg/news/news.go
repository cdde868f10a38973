// Package news holds the types shared by the headline client, the feed
// controller and the TUI.
package news

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownCategory is returned when a category name falls outside the fixed
// set the news source understands.
var ErrUnknownCategory = errors.New("unknown category")

// Category is one of the fixed headline categories.
type Category int

const (
	General Category = iota
	Business
	Entertainment
	Health
	Science
	Sports
	Technology
)

var categoryNames = [...]string{
	General:       "General",
	Business:      "Business",
	Entertainment: "Entertainment",
	Health:        "Health",
	Science:       "Science",
	Sports:        "Sports",
	Technology:    "Technology",
}

var categoryGlyphs = [...]string{
	General:       "▤",
	Business:      "$",
	Entertainment: "♫",
	Health:        "✚",
	Science:       "⚗",
	Sports:        "⚽",
	Technology:    "⚙",
}

// Categories returns every category in display order.
func Categories() []Category {
	out := make([]Category, len(categoryNames))
	for i := range categoryNames {
		out[i] = Category(i)
	}
	return out
}

// ParseCategory matches s case-insensitively against the category names.
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	return c >= 0 && int(c) < len(categoryNames)
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Query returns the lower-cased name sent to the news source.
func (c Category) Query() string {
	return strings.ToLower(c.String())
}

// Glyph returns the single-cell icon shown in the category bar.
func (c Category) Glyph() string {
	if !c.Valid() {
		return "?"
	}
	return categoryGlyphs[c]
}

// Article is a headline as received from the news source. Fields the source
// left out are empty; Published is zero when PublishedAt could not be parsed.
type Article struct {
	URL         string
	Title       string
	URLToImage  string
	PublishedAt string
	Published   time.Time
	Source      string
	Author      string
	Description string
}

// HasImage reports whether the article carries an image URL.
func (a Article) HasImage() bool {
	return a.URLToImage != ""
}

// DateFilter restricts the visible articles by publication time.
type DateFilter int

const (
	AllDates DateFilter = iota
	Last24Hours
)

func (f DateFilter) String() string {
	if f == Last24Hours {
		return "24h"
	}
	return "all"
}

// Toggle switches between AllDates and Last24Hours.
func (f DateFilter) Toggle() DateFilter {
	if f == Last24Hours {
		return AllDates
	}
	return Last24Hours
}
