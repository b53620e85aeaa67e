package net

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"k8s.io/klog/v2"
)

// SaveErrorPlot renders the error curve mse (one value per epoch, epoch 1
// first) to filename. The format follows the file extension (png, svg, pdf...).
// If revertedEpoch > 0 that epoch is marked. Non-finite values are skipped.
func SaveErrorPlot(filename, title string, mse []float64, revertedEpoch int) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "mse"
	p.Add(plotter.NewGrid())

	points := make(plotter.XYs, 0, len(mse))
	var reverted plotter.XYs
	for i, v := range mse {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		pt := plotter.XY{X: float64(i + 1), Y: v}
		if i+1 == revertedEpoch {
			reverted = append(reverted, pt)
		}
		points = append(points, pt)
	}
	if len(points) == 0 {
		return errors.Errorf("no finite error values to plot in %s", filename)
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return errors.Wrap(err, "failed to build error curve")
	}
	p.Add(line)
	p.Legend.Add("mse", line)

	if len(reverted) > 0 {
		marker, err := plotter.NewScatter(reverted)
		if err != nil {
			return errors.Wrap(err, "failed to mark reverted epoch")
		}
		marker.GlyphStyle.Shape = draw.CrossGlyph{}
		marker.GlyphStyle.Radius = vg.Points(4)
		p.Add(marker)
		p.Legend.Add("reverted", marker)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, filename); err != nil {
		return errors.Wrapf(err, "failed to save plot %s", filename)
	}
	return nil
}

// PlotCallback renders the error curve to Filename when training ends.
type PlotCallback struct {
	BaseCallback
	Filename string
	Title    string

	mse      []float64
	reverted int
}

// NewPlotCallback creates a new PlotCallback.
func NewPlotCallback(filename, title string) *PlotCallback {
	return &PlotCallback{Filename: filename, Title: title}
}

func (c *PlotCallback) OnTrainBegin(w Weights) {
	c.mse = c.mse[:0]
	c.reverted = 0
}

func (c *PlotCallback) OnEpochEnd(epoch int, mse float64, w Weights) {
	c.mse = append(c.mse, mse)
}

func (c *PlotCallback) OnRevert(epoch int, restored Weights) {
	c.reverted = epoch
}

func (c *PlotCallback) OnTrainEnd(epochs int, reason StopReason, w Weights) {
	if err := SaveErrorPlot(c.Filename, c.Title, c.mse, c.reverted); err != nil {
		klog.Warningf("PlotCallback: %v", err)
	}
}
