// Package backprop is the public API of the feedforward backpropagation network.
package backprop

import (
	"math/rand/v2"

	"github.com/FlavioCFOliveira/GoBackprop/internal/activations"
	"github.com/FlavioCFOliveira/GoBackprop/internal/net"
	"github.com/FlavioCFOliveira/GoBackprop/internal/neuron"
)

// Re-export common types and functions for easier access
type (
	Network        = net.Network
	Architecture   = net.Architecture
	Example        = net.Example
	Weights        = net.Weights
	OutputCache    = net.OutputCache
	TrainConfig    = net.TrainConfig
	DerivativeMode = net.DerivativeMode
	StopReason     = net.StopReason
	Activation     = activations.Activation
	Neuron         = neuron.Neuron
	NeuronExample  = neuron.Example
)

// Errors
var (
	ErrShape      = net.ErrShape
	ErrConfig     = net.ErrConfig
	ErrNoExamples = net.ErrNoExamples
)

// Training policy
const (
	MaxEpochs          = net.MaxEpochs
	InitialPreviousMSE = net.InitialPreviousMSE

	SigmoidDerivative = net.SigmoidDerivative
	LayerDerivative   = net.LayerDerivative

	StopRegressed = net.StopRegressed
	StopDiverged  = net.StopDiverged
	StopMaxEpochs = net.StopMaxEpochs
	StopPlateau   = net.StopPlateau
)

// Activations
var (
	Step     = activations.Step{}
	Sigmoid  = activations.Sigmoid{}
	Tanh     = activations.Tanh{}
	Identity = activations.Identity{}
)

// ParseActivation returns the activation registered under name.
func ParseActivation(name string) (Activation, error) {
	return activations.Parse(name)
}

// New creates a network. startingWeights may be nil for random weights drawn from src.
func New(arch Architecture, startingWeights Weights, src rand.Source) (*Network, error) {
	return net.New(arch, startingWeights, src)
}

// NewNeuron creates a single neuron with explicit weights, bias weight last.
func NewNeuron(inputCount int, weights []float64, act Activation) (*Neuron, error) {
	return neuron.New(inputCount, weights, act)
}

// NewRandomNeuron creates a single neuron with random weights drawn from src.
func NewRandomNeuron(inputCount int, act Activation, src rand.Source) (*Neuron, error) {
	return neuron.NewRandom(inputCount, act, src)
}

// Callbacks
type (
	Callback     = net.Callback
	BaseCallback = net.BaseCallback
	History      = net.History
)

func Logger(interval int) net.Logger {
	return net.Logger{Interval: interval}
}

func CSVLogger(filename string, append bool) *net.CSVLogger {
	return net.NewCSVLogger(filename, append)
}

func WeightsLogger(filename string) *net.WeightsLogger {
	return net.NewWeightsLogger(filename)
}

func PlotCallback(filename, title string) *net.PlotCallback {
	return net.NewPlotCallback(filename, title)
}

func ModelCheckpoint(filename string, arch Architecture) *net.ModelCheckpoint {
	return net.NewModelCheckpoint(filename, arch)
}

// Data
func LoadCSV(filename string, targetCols []int, hasHeader, appendBias bool) ([]Example, error) {
	return net.LoadCSV(filename, targetCols, hasHeader, appendBias)
}

// Model Persistence
func Load(filename string) (*Network, error) {
	return net.Load(filename)
}
