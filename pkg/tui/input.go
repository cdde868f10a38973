package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// SearchInputModel handles the title search box.
type SearchInputModel struct {
	textInput textinput.Model
	styles    Styles
	active    bool
}

// NewSearchInput creates a new search input model.
func NewSearchInput(styles Styles) SearchInputModel {
	ti := textinput.New()
	ti.Placeholder = "Search headlines..."
	ti.Prompt = ""
	ti.CharLimit = 100
	ti.Width = 40

	return SearchInputModel{
		textInput: ti,
		styles:    styles,
	}
}

// Update handles messages for the search input.
func (m SearchInputModel) Update(msg tea.Msg) (SearchInputModel, tea.Cmd) {
	if !m.active {
		return m, nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// View renders the search input.
func (m SearchInputModel) View() string {
	if m.active {
		return m.styles.SearchPrompt.Render("") + m.textInput.View()
	}
	if m.textInput.Value() != "" {
		return m.styles.SearchPrompt.Render("") + m.styles.SearchText.Render(m.textInput.Value())
	}
	return m.styles.SearchPrompt.Render("") + m.styles.SearchPlaceholder.Render("Search headlines...")
}

// Value returns the current search query.
func (m SearchInputModel) Value() string {
	return m.textInput.Value()
}

// SetWidth fits the input to the terminal width.
func (m SearchInputModel) SetWidth(w int) SearchInputModel {
	if w > 10 {
		m.textInput.Width = w - 10
	}
	return m
}

// Activate enables search input mode.
func (m SearchInputModel) Activate() (SearchInputModel, tea.Cmd) {
	m.active = true
	cmd := m.textInput.Focus()
	return m, cmd
}

// Deactivate disables search input mode.
func (m SearchInputModel) Deactivate() SearchInputModel {
	m.active = false
	m.textInput.Blur()
	return m
}

// Clear clears the search query.
func (m SearchInputModel) Clear() SearchInputModel {
	m.textInput.Reset()
	return m
}

// IsActive returns whether search is active.
func (m SearchInputModel) IsActive() bool {
	return m.active
}
