package main

import (
	"fmt"
	"os"

	"github.com/FlavioCFOliveira/GoBackprop/internal/net"
	"github.com/schollz/progressbar/v3"
)

// progressBar shows training progress against the epoch cap.
type progressBar struct {
	net.BaseCallback
	maxEpochs int
	bar       *progressbar.ProgressBar
}

func newProgressBar(maxEpochs int) *progressBar {
	return &progressBar{maxEpochs: maxEpochs}
}

func (p *progressBar) OnTrainBegin(w net.Weights) {
	p.bar = progressbar.NewOptions(p.maxEpochs,
		progressbar.OptionSetDescription("training"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("epochs"),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }))
}

func (p *progressBar) OnEpochEnd(epoch int, mse float64, w net.Weights) {
	if p.bar == nil {
		return
	}
	p.bar.Describe(fmt.Sprintf("training mse=%.6f", mse))
	_ = p.bar.Add(1)
}

func (p *progressBar) OnTrainEnd(epochs int, reason net.StopReason, w net.Weights) {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}
