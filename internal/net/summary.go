package net

import (
	"fmt"
	"io"
	"strconv"

	"github.com/FlavioCFOliveira/GoBackprop/internal/activations"
	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)
)

// NewTable returns an empty table in the style used by Summary.
// Column 0 is right aligned, the rest left aligned.
func NewTable() *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if row == lgtable.HeaderRow {
				return headerRowStyle
			}
			if row%2 == 0 {
				s = oddRowStyle
			} else {
				s = evenRowStyle
			}
			if col == 0 {
				return s.Align(lipgloss.Right)
			}
			return s.Align(lipgloss.Left)
		})
}

// Summary writes a table of the network's layers to w.
func (n *Network) Summary(w io.Writer) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	t := NewTable().Headers("Layer", "Neurons", "Inputs", "Activation", "Params")
	total := 0
	for i, l := range n.layers {
		name := activations.Name(l.Activation())
		if name == "" {
			name = fmt.Sprintf("%T", l.Activation())
		}
		params := l.NumParams()
		total += params
		t.Row(strconv.Itoa(i), strconv.Itoa(l.Size()), strconv.Itoa(l.InputArity()), name, strconv.Itoa(params))
	}
	t.Row("", "", "", "Total", strconv.Itoa(total))

	_, err := fmt.Fprintln(w, t.Render())
	return errors.Wrap(err, "failed to write summary")
}

// RenderWeights renders a weight snapshot as a table, one row per neuron, bias weight last.
func RenderWeights(w Weights) string {
	width := 0
	for _, l := range w {
		for _, neuron := range l {
			width = max(width, len(neuron))
		}
	}
	headers := []string{"Layer", "Neuron"}
	for k := 0; k < width; k++ {
		if k == width-1 {
			headers = append(headers, "bias")
		} else {
			headers = append(headers, "w"+strconv.Itoa(k))
		}
	}

	t := NewTable().Headers(headers...)
	for i, l := range w {
		for j, neuron := range l {
			row := []string{strconv.Itoa(i), strconv.Itoa(j)}
			for _, v := range neuron {
				row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
			}
			t.Row(row...)
		}
	}
	return t.Render()
}
