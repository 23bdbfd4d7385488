package viz

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/pdratio/internal/estimator"
	"github.com/san-kum/pdratio/internal/model"
)

func TestPlotASCII(t *testing.T) {
	grid := []float64{-0.1, 0, 0.1}
	out := PlotASCII(grid, []float64{30, 25, 20}, "v(x)")

	if !strings.Contains(out, "v(x)") {
		t.Errorf("expected caption in plot, got %q", out)
	}
	if !strings.Contains(out, "-0.100") || !strings.Contains(out, "0.100") {
		t.Errorf("expected grid range in caption, got %q", out)
	}
}

func TestPlotASCII_NoFiniteValues(t *testing.T) {
	out := PlotASCII([]float64{0, 1}, []float64{math.Inf(1), math.NaN()}, "v")
	if out != "v: no finite estimates" {
		t.Errorf("unexpected output %q", out)
	}
	if out := PlotASCII(nil, nil, "v"); out != "v: no data" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "values.png")
	grid := []float64{-0.2, 0, 0.2}

	err := SavePNG(path, grid, []float64{31, 25, math.Inf(1)}, []float64{0.1, 0.1, 0}, "v(x)")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected non-empty image")
	}
}

func TestSavePNG_Errors(t *testing.T) {
	dir := t.TempDir()
	if err := SavePNG(filepath.Join(dir, "a.png"), []float64{0}, []float64{1, 2}, nil, ""); err == nil {
		t.Error("expected error for mismatched lengths")
	}
	if err := SavePNG(filepath.Join(dir, "b.png"), []float64{0}, []float64{math.NaN()}, nil, ""); err == nil {
		t.Error("expected error when nothing is finite")
	}
}

func TestParamsTable(t *testing.T) {
	out := ParamsTable("baseline", model.DefaultParams())

	for _, want := range []string{"baseline", "gamma", "0.96", "20000"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in table", want)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil); got != "" {
		t.Errorf("expected empty sparkline, got %q", got)
	}
	out := Sparkline([]float64{1, math.NaN(), 3})
	if !strings.Contains(out, "▁") || !strings.Contains(out, "█") {
		t.Errorf("expected lowest and highest glyphs, got %q", out)
	}
}

func TestProgressUpdate(t *testing.T) {
	grid := []float64{-0.1, 0, 0.1}
	var m tea.Model = NewProgress(grid, model.DefaultParams(), nil)

	m, _ = m.Update(PointMsg{Index: 2, X: 0.1, Value: 20})
	m, _ = m.Update(PointMsg{Index: 0, X: -0.1, Value: 30})
	m, _ = m.Update(PointMsg{Index: 7, Value: 1})

	p := m.(Progress)
	if math.Abs(p.Fraction()-2.0/3.0) > 1e-12 {
		t.Errorf("expected fraction 2/3, got %v", p.Fraction())
	}
	if p.Values()[0] != 30 || p.Values()[2] != 20 || !math.IsNaN(p.Values()[1]) {
		t.Errorf("unexpected values %v", p.Values())
	}

	res := &estimator.Result{Grid: grid}
	m, cmd := m.Update(DoneMsg{Result: res})
	if cmd == nil {
		t.Fatal("expected quit command after done")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if m.(Progress).Result() != res {
		t.Error("expected result to be kept")
	}
	if !strings.Contains(m.View(), "DONE") {
		t.Error("expected DONE in view")
	}
}

func TestProgressQuitCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var m tea.Model = NewProgress([]float64{0}, model.DefaultParams(), cancel)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Error("expected context to be cancelled")
	}
	if !m.(Progress).Quitting() {
		t.Error("expected quitting state")
	}
}

func TestProgressViewFailure(t *testing.T) {
	var m tea.Model = NewProgress([]float64{0}, model.DefaultParams(), nil)
	m, _ = m.Update(DoneMsg{Err: errors.New("boom")})

	view := m.View()
	if !strings.Contains(view, "FAILED") || !strings.Contains(view, "boom") {
		t.Errorf("expected failure in view, got %q", view)
	}
}

type recordingSender struct{ msgs []tea.Msg }

func (r *recordingSender) Send(msg tea.Msg) { r.msgs = append(r.msgs, msg) }

func TestForward(t *testing.T) {
	var s recordingSender
	obs := Forward(&s)
	obs.OnPoint(estimator.Point{Index: 1, X: 0.2, Value: 5})

	if len(s.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(s.msgs))
	}
	msg, ok := s.msgs[0].(PointMsg)
	if !ok || msg.Index != 1 || msg.Value != 5 {
		t.Errorf("unexpected message %#v", s.msgs[0])
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		fraction float64
		filled   int
	}{
		{0, 0},
		{0.5, 5},
		{1, 10},
		{1.7, 10},
		{-1, 0},
	}

	for _, tt := range tests {
		out := ProgressBar(tt.fraction, 10)
		if got := strings.Count(out, "━"); got != tt.filled {
			t.Errorf("fraction %v: expected %d filled cells, got %d", tt.fraction, tt.filled, got)
		}
		if got := strings.Count(out, "─"); got != 10-tt.filled {
			t.Errorf("fraction %v: expected %d empty cells, got %d", tt.fraction, 10-tt.filled, got)
		}
	}
}
