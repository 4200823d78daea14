// Package terminal renders an engine-backed grid as a scrollable Bubble Tea
// program. One terminal row is one layout unit, so the engine's windowing
// math runs unchanged on character cells instead of pixels.
package terminal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/go-theft-auto/vgrid"
)

// Cell layout in character cells. Width and height exclude the gap.
const (
	cellWidth  = 18
	cellHeight = 3
	cellGap    = 1
	chromeRows = 2 // status line + help line
)

var (
	cellStyle = lipgloss.NewStyle().
			Width(cellWidth).
			Height(cellHeight).
			Padding(0, 1).
			Background(lipgloss.AdaptiveColor{Light: "254", Dark: "236"})
	pendingStyle = cellStyle.
			Foreground(lipgloss.AdaptiveColor{Light: "245", Dark: "243"})
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	indexStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "245", Dark: "243"})
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
)

// KeyMap defines the scroll and quit bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Quit     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k")),
		Down:     key.NewBinding(key.WithKeys("down", "j")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "b")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "f", " ")),
		Home:     key.NewBinding(key.WithKeys("home", "g")),
		End:      key.NewBinding(key.WithKeys("end", "G")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc")),
	}
}

// bufferMsg carries the latest engine push into the Bubble Tea loop.
type bufferMsg[T any] struct {
	slots  []*vgrid.Slot[T]
	height float32
}

// Model is a tea.Model over one virtualized grid.
//
// The engine's sink publishes into a latest-value channel; a long-running
// command reads it and feeds the Bubble Tea loop, so a burst of engine pushes
// collapses to the newest buffer instead of queueing stale frames.
type Model[T any] struct {
	engine *vgrid.Engine[T]
	render func(T) string
	total  int

	updates chan bufferMsg[T]
	sp      spinner.Model
	keys    KeyMap

	width    int
	height   int
	scroll   float32
	geom     vgrid.Geometry
	slots    map[int]*vgrid.Slot[T]
	contentH float32
}

// New builds a grid model over totalCount items fetched in pages of pageSize.
// render turns one item into its cell label; opts are passed through to the
// engine. The caller runs the returned model with tea.NewProgram.
func New[T any](totalCount, pageSize int, provider vgrid.Provider[T], render func(T) string, opts ...vgrid.Option[T]) *Model[T] {
	m := &Model[T]{
		render:  render,
		total:   totalCount,
		updates: make(chan bufferMsg[T], 1),
		keys:    DefaultKeyMap(),
		slots:   make(map[int]*vgrid.Slot[T]),
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle
	m.sp = sp

	sink := vgrid.SinkFunc[T](func(slots []*vgrid.Slot[T], height float32) {
		msg := bufferMsg[T]{slots: slots, height: height}
		for {
			select {
			case m.updates <- msg:
				return
			default:
				select {
				case <-m.updates: // drop the stale buffer
				default:
				}
			}
		}
	})
	opts = append(opts, vgrid.WithSink(sink))
	m.engine = vgrid.New(totalCount, pageSize, provider, opts...)
	return m
}

// Init satisfies tea.Model.
func (m *Model[T]) Init() tea.Cmd {
	return tea.Batch(m.sp.Tick, m.waitForBuffer())
}

// waitForBuffer blocks on the next engine push.
func (m *Model[T]) waitForBuffer() tea.Cmd {
	return func() tea.Msg {
		return <-m.updates
	}
}

// Update handles resize, scrolling, spinner ticks, and engine pushes.
func (m *Model[T]) Update(rawMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := rawMsg.(type) {

	case tea.WindowSizeMsg:
		m.width = v.Width
		m.height = v.Height
		cols := (v.Width + cellGap) / (cellWidth + cellGap)
		m.geom = vgrid.ResolveGeometry(vgrid.MeasurementSample{
			Columns:     cols,
			RowGap:      cellGap,
			ColGap:      cellGap,
			ProbeWidth:  cellWidth,
			ProbeHeight: cellHeight,
		})
		m.engine.SetGeometry(m.geom)
		m.pushViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(v)

	case bufferMsg[T]:
		m.slots = make(map[int]*vgrid.Slot[T], len(v.slots))
		for _, s := range v.slots {
			m.slots[s.Index] = s
		}
		m.contentH = v.height
		return m, m.waitForBuffer()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.sp, cmd = m.sp.Update(v)
		return m, cmd
	}
	return m, nil
}

func (m *Model[T]) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	rowStep := m.geom.ItemHeight
	if rowStep == 0 {
		rowStep = cellHeight + cellGap
	}
	switch {
	case key.Matches(k, m.keys.Quit):
		m.engine.Close()
		return m, tea.Quit
	case key.Matches(k, m.keys.Up):
		m.scrollTo(m.scroll - rowStep)
	case key.Matches(k, m.keys.Down):
		m.scrollTo(m.scroll + rowStep)
	case key.Matches(k, m.keys.PageUp):
		m.scrollTo(m.scroll - m.viewportHeight())
	case key.Matches(k, m.keys.PageDown):
		m.scrollTo(m.scroll + m.viewportHeight())
	case key.Matches(k, m.keys.Home):
		m.scrollTo(0)
	case key.Matches(k, m.keys.End):
		m.scrollTo(m.contentH)
	}
	return m, nil
}

func (m *Model[T]) viewportHeight() float32 {
	h := m.height - chromeRows
	if h < 1 {
		h = 1
	}
	return float32(h)
}

func (m *Model[T]) scrollTo(target float32) {
	max := m.contentH - m.viewportHeight()
	if target > max {
		target = max
	}
	if target < 0 {
		target = 0
	}
	m.scroll = target
	m.pushViewport()
}

func (m *Model[T]) pushViewport() {
	m.engine.SetViewport(m.scroll, m.viewportHeight())
}

// View paints the visible rows from the slot buffer. Indices the buffer does
// not cover yet render as blanks; pending slots render a spinner.
func (m *Model[T]) View() string {
	if m.width == 0 || !m.geom.Valid() {
		return "loading..."
	}

	rowH := int(m.geom.ItemHeight)
	firstRow := int(m.scroll) / rowH
	visibleRows := (int(m.viewportHeight()) + rowH - 1) / rowH
	totalRows := (m.total + m.geom.Columns - 1) / m.geom.Columns

	var b strings.Builder
	b.WriteString(m.statusLine())
	b.WriteByte('\n')
	for row := firstRow; row < firstRow+visibleRows && row < totalRows; row++ {
		cells := make([]string, 0, m.geom.Columns)
		for col := 0; col < m.geom.Columns; col++ {
			index := row*m.geom.Columns + col
			if index >= m.total {
				break
			}
			cells = append(cells, m.renderCell(index))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			strings.Join(cells, strings.Repeat(" ", cellGap))))
		b.WriteString(strings.Repeat("\n", cellGap+1))
	}
	b.WriteString(helpStyle.Render("j/k scroll · f/b page · g/G ends · q quit"))
	return b.String()
}

func (m *Model[T]) renderCell(index int) string {
	s, ok := m.slots[index]
	if !ok || s.Pending {
		return pendingStyle.Render(fmt.Sprintf("%s #%d", m.sp.View(), index))
	}
	label := indexStyle.Render(fmt.Sprintf("#%d", index))
	return cellStyle.Render(label + "\n" + m.render(s.Value))
}

func (m *Model[T]) statusLine() string {
	stats := m.engine.Stats()
	return statusStyle.Render(fmt.Sprintf(
		"%d items · scroll %.0f/%.0f · %d pages cached · %d fetches",
		m.total, m.scroll, m.contentH, stats.CachedPages, stats.Fetches))
}
