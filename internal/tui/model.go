// Package tui is the interactive terminal front end of the movie browser.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/reelbox/internal/browser"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	pageSize      = 6
)

// Layouts cycled with the "L" key. The browser accepts any layout name.
var Layouts = []string{"inline", "grid", "list"}

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m, tea.WithAltScreen()).Run()
}

// Controller is the part of the movie browser the UI drives.
type Controller interface {
	State() browser.View
	Changes() <-chan struct{}
	Done() <-chan struct{}
	Search(title, year string) bool
	SetInputs(title, year string)
	Previous()
	Next()
	OpenLightbox(i int)
	CloseLightbox()
	SetLayout(layout string)
	Resize(width int)
}

type focusArea int

const (
	focusTitle focusArea = iota
	focusYear
	focusList
)

type stateChangedMsg struct{}

type browserClosedMsg struct{}

type model struct {
	browser Controller
	view    browser.View

	title   textinput.Model
	year    textinput.Model
	focus   focusArea
	spinner spinner.Model
	pages   paginator.Model

	width  int
	height int
}

func newModel(b Controller) *model {
	title := textinput.New()
	title.Placeholder = "Movie title"
	title.CharLimit = 100
	title.Width = 30
	title.Focus()

	year := textinput.New()
	year.Placeholder = "Year"
	year.CharLimit = 4
	year.Width = 6

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)

	pages := paginator.New()
	pages.Type = paginator.Dots
	pages.PerPage = pageSize

	m := &model{
		browser: b,
		title:   title,
		year:    year,
		spinner: sp,
		pages:   pages,
		width:   defaultWidth,
		height:  defaultHeight,
	}
	m.refresh()
	return m
}

func waitForChange(b Controller) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.Changes():
			return stateChangedMsg{}
		case <-b.Done():
			return browserClosedMsg{}
		}
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForChange(m.browser))
}

// refresh pulls the browser state and mirrors its input fields.
func (m *model) refresh() {
	m.view = m.browser.State()
	if m.title.Value() != m.view.TitleField {
		m.title.SetValue(m.view.TitleField)
	}
	if m.year.Value() != m.view.YearField {
		m.year.SetValue(m.view.YearField)
	}
	m.pages.SetTotalPages(len(m.view.Movies))
	if m.pages.TotalPages > 0 {
		m.pages.Page = min(max(m.view.Current, 0)/pageSize, m.pages.TotalPages-1)
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateChangedMsg:
		m.refresh()
		return m, waitForChange(m.browser)
	case browserClosedMsg:
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.browser.Resize(msg.Width)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.view.Lightbox {
		switch msg.String() {
		case "esc", "enter", "q", " ":
			m.browser.CloseLightbox()
		case "left", "h":
			m.browser.Previous()
		case "right", "l":
			m.browser.Next()
		}
		m.refresh()
		return m, nil
	}

	if msg.String() == "tab" {
		m.setFocus((m.focus + 1) % 3)
		return m, textinput.Blink
	}
	if msg.String() == "shift+tab" {
		m.setFocus((m.focus + 2) % 3)
		return m, textinput.Blink
	}

	if m.focus == focusList {
		return m.handleListKey(msg)
	}

	switch msg.String() {
	case "enter":
		m.browser.Search(m.title.Value(), m.year.Value())
		m.refresh()
		return m, m.spinner.Tick
	case "esc":
		m.setFocus(focusList)
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusTitle {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.year, cmd = m.year.Update(msg)
	}
	m.browser.SetInputs(m.title.Value(), m.year.Value())
	return m, cmd
}

func (m *model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h", "up", "k":
		m.browser.Previous()
	case "right", "l", "down", "j":
		m.browser.Next()
	case "enter", " ":
		if m.view.Current < len(m.view.Movies) {
			m.browser.OpenLightbox(m.view.Current)
		}
	case "L":
		m.browser.SetLayout(nextLayout(m.view.Layout))
	case "/":
		m.setFocus(focusTitle)
		return m, textinput.Blink
	}
	m.refresh()
	return m, nil
}

func (m *model) setFocus(f focusArea) {
	m.focus = f
	m.title.Blur()
	m.year.Blur()
	switch f {
	case focusTitle:
		m.title.Focus()
	case focusYear:
		m.year.Focus()
	}
}

func nextLayout(current string) string {
	for i, layout := range Layouts {
		if layout == current {
			return Layouts[(i+1)%len(Layouts)]
		}
	}
	return Layouts[0]
}

// Run starts the interactive browser and blocks until the user quits.
func Run(b Controller) error {
	if _, err := runProgram(newModel(b)); err != nil {
		return fmt.Errorf("failed to run browser UI: %w", err)
	}
	return nil
}
