package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/reelbox/internal/browser"
	"github.com/lepinkainen/reelbox/internal/movie"
)

const cardWidth = 26

var (
	accentColor = lipgloss.Color("214")

	asciiBorder = lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	cardStyle = lipgloss.NewStyle().
			Border(asciiBorder).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1).
			Foreground(lipgloss.Color("252"))

	selectedCardStyle = cardStyle.Copy().
				BorderForeground(accentColor).
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("237"))

	lightboxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(1, 2)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	focusedInputStyle = inputStyle.Copy().
				BorderForeground(accentColor)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254"))

	metadataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true)

	notFoundStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("161"))

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

func (m *model) View() string {
	header := headerStyle.Render(fmt.Sprintf("reelbox  %d movies  width %d  layout %s",
		len(m.view.Movies), m.view.Width, m.view.Layout))

	if m.view.Lightbox {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.renderLightbox(),
			helpStyle.Render("Left/Right browse | Esc close | Ctrl+C quit"))
	}

	sections := []string{header, m.renderInputs()}
	if status := m.renderStatus(); status != "" {
		sections = append(sections, status)
	}
	sections = append(sections, m.renderMovies())
	if m.pages.TotalPages > 1 {
		sections = append(sections, m.pages.View())
	}
	sections = append(sections, helpStyle.Render(
		"Tab focus | Enter search/open | Left/Right page | L layout | / search | q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *model) renderInputs() string {
	titleBox, yearBox := inputStyle, inputStyle
	switch m.focus {
	case focusTitle:
		titleBox = focusedInputStyle
	case focusYear:
		yearBox = focusedInputStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		titleBox.Render(m.title.View()),
		yearBox.Render(m.year.View()))
}

func (m *model) renderStatus() string {
	var parts []string
	if m.view.Phase == browser.PhaseFetching {
		parts = append(parts, fmt.Sprintf("%s fetching %d", m.spinner.View(), m.view.InFlight))
	}
	if m.view.NotFound {
		parts = append(parts, notFoundStyle.Render(browser.NotFoundText))
	}
	return strings.Join(parts, "  ")
}

func (m *model) renderMovies() string {
	if len(m.view.Movies) == 0 {
		if m.view.Phase == browser.PhaseInitializing || m.view.Phase == browser.PhaseFetching {
			return metadataStyle.Render("Loading movies...")
		}
		return metadataStyle.Render("No movies yet. Search for a title above.")
	}

	start, end := m.pages.GetSliceBounds(len(m.view.Movies))
	page := m.view.Movies[start:end]

	switch m.view.Layout {
	case "list":
		lines := make([]string, len(page))
		for i, mv := range page {
			marker := "  "
			if start+i == m.view.Current {
				marker = "> "
			}
			lines[i] = marker + truncate(mv.Label(), m.width-2)
		}
		return strings.Join(lines, "\n")
	case "grid":
		perRow := clamp(3, m.width/(cardWidth+2), 1)
		var rows []string
		for i := 0; i < len(page); i += perRow {
			var cards []string
			for j := i; j < min(i+perRow, len(page)); j++ {
				cards = append(cards, m.renderCard(page[j], start+j, cardWidth))
			}
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
		}
		return lipgloss.JoinVertical(lipgloss.Left, rows...)
	default:
		cards := make([]string, len(page))
		for i, mv := range page {
			cards[i] = m.renderCard(mv, start+i, clamp(72, m.width-4, 30))
		}
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}
}

func (m *model) renderCard(mv movie.Movie, index, width int) string {
	style := cardStyle
	if index == m.view.Current {
		style = selectedCardStyle
	}
	inner := width - 4
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(truncate(strings.ToUpper(mv.Title()), inner)),
		metadataStyle.Render(truncate(formatMetadata(mv), inner)))
	return style.Width(width).Render(content)
}

func (m *model) renderLightbox() string {
	if m.view.Current < 0 || m.view.Current >= len(m.view.Movies) {
		return lightboxStyle.Render(metadataStyle.Render("No movie selected"))
	}
	mv := m.view.Movies[m.view.Current]
	width := clamp(76, m.width-4, 30)

	lines := []string{
		titleStyle.Render(mv.Label()),
		metadataStyle.Render(formatMetadata(mv)),
		"",
		wrap(mv.Plot(), width-6),
	}
	if poster := mv.Poster(); poster != "" {
		lines = append(lines, "", metadataStyle.Render("Poster: "+poster))
	}
	lines = append(lines, "", metadataStyle.Render(fmt.Sprintf("%d / %d", m.view.Current+1, len(m.view.Movies))))
	return lightboxStyle.Width(width).Render(strings.Join(lines, "\n"))
}

// formatMetadata builds the one-line summary shown under a title.
func formatMetadata(mv movie.Movie) string {
	var parts []string
	for _, key := range []string{"Year", "Runtime", "Genre", "imdbRating"} {
		if v := mv.String(key); v != "" && v != "N/A" {
			if key == "imdbRating" {
				v += "/10"
			}
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return "No metadata available"
	}
	return strings.Join(parts, " | ")
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if width <= 0 || len(runes) <= width {
		return value
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

func wrap(text string, width int) string {
	if text == "" || text == "N/A" {
		return metadataStyle.Render("No plot available")
	}
	return lipgloss.NewStyle().Width(max(width, 10)).Render(text)
}

func clamp(defaultValue, available, minimum int) int {
	width := defaultValue
	if available > 0 && available < defaultValue {
		width = available
	}
	if width < minimum {
		width = minimum
	}
	return width
}
