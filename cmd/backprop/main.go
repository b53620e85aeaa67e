// backprop trains a feedforward network described by a YAML run file.
//
//	backprop -config run.yaml [-data examples.csv] [-err-csv err.csv] [-weights-csv weights.csv] [-plot err.png] [-save net.gob] [-seed N] [-progress] [-predictions] [-log-every N]
package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/FlavioCFOliveira/GoBackprop/internal/config"
	"github.com/FlavioCFOliveira/GoBackprop/internal/net"
	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagConfig     = flag.String("config", "", "YAML run file describing the network, training settings and examples.")
	flagData       = flag.String("data", "", "CSV file of examples. Overrides data.path of the run file.")
	flagErrCSV     = flag.String("err-csv", "", "If set, write the error of every epoch to this CSV file.")
	flagWeightsCSV = flag.String("weights-csv", "", "If set, write weight snapshots to this CSV file.")
	flagPlot       = flag.String("plot", "", "If set, render the error curve to this file (png, svg or pdf).")
	flagSave       = flag.String("save", "", "If set, save the trained network to this file.")
	flagSeed       = flag.Uint64("seed", 0, "Seed for random starting weights. 0 draws a random seed.")
	flagProgress   = flag.Bool("progress", true, "Display a progress bar while training.")
	flagPredict    = flag.Bool("predictions", true, "Print the prediction of every training example.")
	flagLogEvery   = flag.Int("log-every", 0, "Log the error every N epochs. 0 only logs reverts and the stop reason.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagConfig == "" {
		fmt.Fprintln(os.Stderr, "usage: backprop -config run.yaml [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		klog.Exitf("%v", err)
	}
	train, holdout, err := cfg.LoadExamples(*flagData)
	if err != nil {
		klog.Exitf("%v", err)
	}

	var src rand.Source
	if *flagSeed != 0 {
		src = rand.NewPCG(*flagSeed, *flagSeed)
	}
	n, err := cfg.NewNetwork(src)
	if err != nil {
		klog.Exitf("%v", err)
	}
	must.M(n.Summary(os.Stdout))

	history := &net.History{}
	tc := n.Config()
	tc.Callbacks = append(tc.Callbacks, history, net.Logger{Interval: *flagLogEvery})
	if *flagErrCSV != "" {
		tc.Callbacks = append(tc.Callbacks, net.NewCSVLogger(*flagErrCSV, false))
	}
	if *flagWeightsCSV != "" {
		tc.Callbacks = append(tc.Callbacks, net.NewWeightsLogger(*flagWeightsCSV))
	}
	if *flagPlot != "" {
		tc.Callbacks = append(tc.Callbacks, net.NewPlotCallback(*flagPlot, *flagConfig))
	}
	if *flagProgress {
		maxEpochs := tc.MaxEpochs
		if maxEpochs == 0 {
			maxEpochs = net.MaxEpochs
		}
		tc.Callbacks = append(tc.Callbacks, newProgressBar(maxEpochs))
	}
	must.M(n.Configure(tc))

	fmt.Printf("Training on %s examples, learning rate %g\n", humanize.Comma(int64(len(train))), cfg.LearningRate)
	start := time.Now()
	epochs := must.M1(n.Train(train, cfg.LearningRate))
	elapsed := time.Since(start)

	fmt.Printf("Stopped after %s epochs (%s) in %s\n", humanize.Comma(int64(epochs)), history.Reason, elapsed.Round(time.Microsecond))
	if bestEpoch, best := history.Best(); bestEpoch > 0 {
		fmt.Printf("Best training error: %.6g at epoch %d\n", best, bestEpoch)
	}
	if history.RevertedEpoch > 0 {
		fmt.Printf("Epoch %d increased the error and was reverted\n", history.RevertedEpoch)
	}
	if len(holdout) > 0 {
		mse := must.M1(n.Evaluate(holdout))
		fmt.Printf("Held-out error on %s examples: %.6g\n", humanize.Comma(int64(len(holdout))), mse)
	}

	fmt.Println(net.RenderWeights(n.GetWeights()))
	if *flagPredict {
		printPredictions(os.Stdout, n, train)
	}

	if *flagSave != "" {
		must.M(n.Save(*flagSave))
		info := must.M1(os.Stat(*flagSave))
		fmt.Printf("Network saved to %s (%s)\n", *flagSave, humanize.Bytes(uint64(info.Size())))
	}
}

// printPredictions writes one row per example with its inputs (bias excluded),
// targets and the network's outputs.
func printPredictions(w io.Writer, n *net.Network, examples []net.Example) {
	t := net.NewTable().Headers("#", "Inputs", "Targets", "Outputs")
	for i, ex := range examples {
		out := must.M1(n.ProcessInputs(ex.Inputs, nil))
		t.Row(strconv.Itoa(i), formatVector(ex.Inputs[:len(ex.Inputs)-1]), formatVector(ex.Targets), formatVector(out))
	}
	fmt.Fprintln(w, t.Render())
}

func formatVector(v []float64) string {
	s := ""
	for i, x := range v {
		if i > 0 {
			s += " "
		}
		s += strconv.FormatFloat(x, 'f', 4, 64)
	}
	return s
}
