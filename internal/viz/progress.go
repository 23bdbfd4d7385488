package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/pdratio/internal/estimator"
	"github.com/san-kum/pdratio/internal/model"
)

// PointMsg reports one finished grid point.
type PointMsg estimator.Point

// DoneMsg ends the live view with the estimator's outcome.
type DoneMsg struct {
	Result *estimator.Result
	Err    error
}

type TickMsg time.Time

// Progress is a Bubble Tea model showing grid points as they complete.
type Progress struct {
	grid   []float64
	values []float64
	params model.Params
	cancel func()

	done     int
	start    time.Time
	now      time.Time
	width    int
	result   *estimator.Result
	err      error
	quitting bool
}

// NewProgress prepares a view over grid. cancel is called when the user
// quits before the estimation finishes; it may be nil.
func NewProgress(grid []float64, p model.Params, cancel func()) Progress {
	values := make([]float64, len(grid))
	for i := range values {
		values[i] = math.NaN()
	}
	now := time.Now()
	return Progress{
		grid:   grid,
		values: values,
		params: p,
		cancel: cancel,
		start:  now,
		now:    now,
		width:  40,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/10, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Progress) Init() tea.Cmd {
	return tick()
}

func (m Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			if m.cancel != nil && m.result == nil {
				m.cancel()
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = max(10, min(60, msg.Width-30))

	case PointMsg:
		if msg.Index >= 0 && msg.Index < len(m.values) {
			m.values[msg.Index] = msg.Value
			m.done++
		}

	case DoneMsg:
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case TickMsg:
		m.now = time.Time(msg)
		return m, tick()
	}

	return m, nil
}

func (m Progress) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("pdratio") + " ")
	switch {
	case m.err != nil:
		b.WriteString(StatusFailed.Render("FAILED"))
	case m.result != nil:
		b.WriteString(StatusRunning.Render("DONE"))
	default:
		b.WriteString(StatusRunning.Render("RUNNING"))
	}
	b.WriteString("\n\n")

	b.WriteString(ProgressBar(m.Fraction(), m.width))
	b.WriteString(fmt.Sprintf(" %d/%d points\n\n", m.done, len(m.grid)))

	b.WriteString(MetricLabel.Render("paths") + MetricValue.Render(fmt.Sprintf("%d", m.params.M)) + "\n")
	b.WriteString(MetricLabel.Render("steps") + MetricValue.Render(fmt.Sprintf("%d", m.params.N)) + "\n")
	b.WriteString(MetricLabel.Render("elapsed") + MetricValue.Render(m.now.Sub(m.start).Truncate(100*time.Millisecond).String()) + "\n")
	b.WriteString(MetricLabel.Render("v(x)") + Sparkline(m.values) + "\n")

	if m.err != nil {
		b.WriteString("\n" + StatusFailed.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n" + KeyHint.Render("q: cancel and quit"))
	return Panel.Render(b.String()) + "\n"
}

// Fraction is the share of grid points finished so far.
func (m Progress) Fraction() float64 {
	if len(m.grid) == 0 {
		return 1
	}
	return float64(m.done) / float64(len(m.grid))
}

func (m Progress) Values() []float64         { return m.values }
func (m Progress) Result() *estimator.Result { return m.result }
func (m Progress) Err() error                { return m.err }
func (m Progress) Quitting() bool            { return m.quitting }

// Sender is the part of *tea.Program the observer bridge needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Forward returns an observer that relays finished points to s.
func Forward(s Sender) estimator.Observer {
	return estimator.ObserverFunc(func(pt estimator.Point) {
		s.Send(PointMsg(pt))
	})
}
