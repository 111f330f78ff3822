package tui

import (
	"fmt"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/reelbox/internal/browser"
	"github.com/lepinkainen/reelbox/internal/movie"
)

type fakeController struct {
	mu       sync.Mutex
	view     browser.View
	changes  chan struct{}
	done     chan struct{}
	searches [][2]string
	widths   []int
}

func newFakeController(movies ...movie.Movie) *fakeController {
	return &fakeController{
		view: browser.View{
			Movies: movie.List(movies),
			Layout: browser.DefaultLayout,
			Width:  80,
			Phase:  browser.PhaseIdle,
		},
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func (f *fakeController) State() browser.View {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.view
	v.Movies = f.view.Movies.Copy()
	return v
}

func (f *fakeController) Changes() <-chan struct{} { return f.changes }
func (f *fakeController) Done() <-chan struct{}    { return f.done }

func (f *fakeController) Search(title, year string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, [2]string{title, year})
	f.view.TitleField, f.view.YearField = "", ""
	f.view.Phase = browser.PhaseFetching
	f.view.InFlight++
	return true
}

func (f *fakeController) SetInputs(title, year string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.view.TitleField, f.view.YearField = title, year
}

func (f *fakeController) Previous() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.view.Current > 0 {
		f.view.Current--
	}
}

func (f *fakeController) Next() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.view.Current < len(f.view.Movies) {
		f.view.Current++
	}
}

func (f *fakeController) OpenLightbox(i int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.view.Current = i
	f.view.Lightbox = true
}

func (f *fakeController) CloseLightbox() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.view.Lightbox = false
}

func (f *fakeController) SetLayout(layout string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.view.Layout = layout
}

func (f *fakeController) Resize(width int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.widths = append(f.widths, width)
	f.view.Width = width
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m *model, text string) {
	for _, r := range text {
		m.Update(keyRunes(string(r)))
	}
}

func sampleMovies(n int) []movie.Movie {
	out := make([]movie.Movie, n)
	for i := range out {
		out[i] = movie.Movie{
			"Title":      fmt.Sprintf("Movie %d", i),
			"Year":       fmt.Sprintf("%d", 1990+i),
			"Plot":       "Plot of movie " + fmt.Sprint(i),
			"Runtime":    "120 min",
			"imdbRating": "7.5",
		}
	}
	return out
}

func TestTypingMirrorsInputsAndEnterSearches(t *testing.T) {
	ctrl := newFakeController()
	m := newModel(ctrl)

	typeText(m, "Heat")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "1995")

	assert.Equal(t, "Heat", ctrl.State().TitleField)
	assert.Equal(t, "1995", ctrl.State().YearField)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)
	require.Len(t, ctrl.searches, 1)
	assert.Equal(t, [2]string{"Heat", "1995"}, ctrl.searches[0])

	assert.Empty(t, m.title.Value(), "inputs follow the browser state after searching")
	assert.Empty(t, m.year.Value())
	assert.Contains(t, m.View(), "fetching 1")
}

func TestStateChangeRefreshesView(t *testing.T) {
	ctrl := newFakeController()
	m := newModel(ctrl)

	ctrl.mu.Lock()
	ctrl.view.NotFound = true
	ctrl.view.TitleField = browser.NotFoundText
	ctrl.mu.Unlock()

	_, cmd := m.Update(stateChangedMsg{})
	assert.NotNil(t, cmd, "keeps listening for changes")
	assert.Equal(t, browser.NotFoundText, m.title.Value())
	assert.Contains(t, m.View(), browser.NotFoundText)
}

func TestWaitForChange(t *testing.T) {
	ctrl := newFakeController()

	ctrl.changes <- struct{}{}
	assert.Equal(t, stateChangedMsg{}, waitForChange(ctrl)())

	close(ctrl.done)
	assert.Equal(t, browserClosedMsg{}, waitForChange(ctrl)())
}

func TestBrowserClosedQuits(t *testing.T) {
	m := newModel(newFakeController())

	_, cmd := m.Update(browserClosedMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestWindowSizeResizesBrowser(t *testing.T) {
	ctrl := newFakeController()
	m := newModel(ctrl)

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, []int{120}, ctrl.widths)
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)
}

func TestListNavigationAndLightbox(t *testing.T) {
	ctrl := newFakeController(sampleMovies(3)...)
	m := newModel(ctrl)
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, focusList, m.focus)

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, ctrl.State().Current)

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, ctrl.State().Current)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	view := ctrl.State()
	assert.True(t, view.Lightbox)
	assert.Equal(t, 1, view.Current)
	assert.Contains(t, m.View(), "Movie 1 (1991)")
	assert.Contains(t, m.View(), "2 / 3")

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 2, ctrl.State().Current)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, ctrl.State().Lightbox)
}

func TestLayoutCycling(t *testing.T) {
	ctrl := newFakeController(sampleMovies(2)...)
	m := newModel(ctrl)
	m.setFocus(focusList)

	m.Update(keyRunes("L"))
	assert.Equal(t, "grid", ctrl.State().Layout)
	m.Update(keyRunes("L"))
	assert.Equal(t, "list", ctrl.State().Layout)
	assert.Contains(t, m.View(), "> Movie 0 (1990)")
	m.Update(keyRunes("L"))
	assert.Equal(t, "inline", ctrl.State().Layout)

	assert.Equal(t, "inline", nextLayout("something-custom"))
}

func TestQuitKeys(t *testing.T) {
	m := newModel(newFakeController())

	m.Update(keyRunes("q"))
	assert.Equal(t, "q", m.title.Value(), "q types into the focused title input")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	m.setFocus(focusList)
	_, cmd = m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestPaginationFollowsCurrent(t *testing.T) {
	ctrl := newFakeController(sampleMovies(8)...)
	m := newModel(ctrl)
	m.setFocus(focusList)

	assert.Equal(t, 2, m.pages.TotalPages)
	assert.Equal(t, 0, m.pages.Page)
	assert.Contains(t, m.View(), "MOVIE 0")
	assert.NotContains(t, m.View(), "MOVIE 7")

	for i := 0; i < 7; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyRight})
	}
	assert.Equal(t, 1, m.pages.Page)
	assert.Contains(t, m.View(), "MOVIE 7")
}

func TestEmptyStates(t *testing.T) {
	ctrl := newFakeController()
	ctrl.view.Phase = browser.PhaseInitializing
	m := newModel(ctrl)
	assert.Contains(t, m.View(), "Loading movies...")

	ctrl.view.Phase = browser.PhaseIdle
	m.refresh()
	assert.Contains(t, m.View(), "No movies yet")
}

func TestRun(t *testing.T) {
	orig := runProgram
	t.Cleanup(func() { runProgram = orig })

	var got tea.Model
	runProgram = func(m tea.Model) (tea.Model, error) {
		got = m
		return m, nil
	}
	require.NoError(t, Run(newFakeController()))
	assert.IsType(t, &model{}, got)

	runProgram = func(m tea.Model) (tea.Model, error) {
		return nil, fmt.Errorf("no tty")
	}
	err := Run(newFakeController())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tty")
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a long...", truncate("a long title here", 9))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, 72, clamp(72, 0, 30))
	assert.Equal(t, 50, clamp(72, 50, 30))
	assert.Equal(t, 30, clamp(72, 10, 30))

	assert.Equal(t, "No metadata available", formatMetadata(movie.Movie{"Title": "X"}))
	assert.Equal(t, "1995 | 170 min | 8.3/10",
		formatMetadata(movie.Movie{"Year": "1995", "Runtime": "170 min", "imdbRating": "8.3", "Genre": "N/A"}))
}
