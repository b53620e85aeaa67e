// Package neuron implements a single artificial neuron: a weight vector with a
// trailing bias weight, an activation function and the delta-rule update.
package neuron

import (
	"math/rand/v2"

	"github.com/FlavioCFOliveira/GoBackprop/internal/activations"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Random initialization parameters: non-bias weights are drawn uniformly from
// [-InitRange, InitRange] and the bias weight starts at InitBias.
const (
	InitRange = 0.05
	InitBias  = 1.0
)

var (
	// ErrShape is returned when a vector does not have the length the neuron or network expects.
	ErrShape = errors.New("shape mismatch")

	// ErrConfig is returned for invalid construction parameters.
	ErrConfig = errors.New("invalid configuration")

	// ErrNoExamples is returned when training is asked to run over an empty example set.
	ErrNoExamples = errors.New("no training examples")
)

// Neuron holds a weight vector of inputCount+1 values; the last one is the
// bias weight, paired with a constant 1.0 input.
type Neuron struct {
	inputCount int
	weights    []float64
	act        activations.Activation
}

// Example is a training example for a single neuron. Inputs must include the
// bias input as its last value.
type Example struct {
	Inputs []float64
	Target float64
}

// New creates a neuron with a copy of the given weights.
// The weights must have inputCount+1 values, the extra one being the bias weight.
func New(inputCount int, weights []float64, act activations.Activation) (*Neuron, error) {
	if inputCount < 0 {
		return nil, errors.Wrapf(ErrConfig, "negative input count %d", inputCount)
	}
	if act == nil {
		return nil, errors.Wrap(ErrConfig, "neuron requires an activation function")
	}
	switch len(weights) {
	case inputCount + 1:
	case inputCount:
		return nil, errors.Wrapf(ErrShape,
			"got %d weights for %d inputs, an extra weight for the bias/threshold is required",
			len(weights), inputCount)
	default:
		return nil, errors.Wrapf(ErrShape, "got %d weights for %d inputs, want %d",
			len(weights), inputCount, inputCount+1)
	}
	return &Neuron{
		inputCount: inputCount,
		weights:    append([]float64(nil), weights...),
		act:        act,
	}, nil
}

// NewRandom creates a neuron with small random weights and a bias weight of InitBias.
// If src is nil the global generator is used.
func NewRandom(inputCount int, act activations.Activation, src rand.Source) (*Neuron, error) {
	if inputCount < 0 {
		return nil, errors.Wrapf(ErrConfig, "negative input count %d", inputCount)
	}
	dist := distuv.Uniform{Min: -InitRange, Max: InitRange, Src: src}
	weights := make([]float64, inputCount+1)
	for i := 0; i < inputCount; i++ {
		weights[i] = dist.Rand()
	}
	weights[inputCount] = InitBias
	return New(inputCount, weights, act)
}

// InputCount returns the number of inputs, excluding the bias input.
func (n *Neuron) InputCount() int {
	return n.inputCount
}

// Activation returns the neuron's activation function.
func (n *Neuron) Activation() activations.Activation {
	return n.act
}

// Weights returns a copy of the weight vector, bias weight last.
func (n *Neuron) Weights() []float64 {
	return append([]float64(nil), n.weights...)
}

// Weight returns the k-th weight without copying the vector.
func (n *Neuron) Weight(k int) float64 {
	return n.weights[k]
}

// SetWeights replaces the weight vector with a copy of weights.
func (n *Neuron) SetWeights(weights []float64) error {
	if len(weights) != n.inputCount+1 {
		return errors.Wrapf(ErrShape, "got %d weights, want %d", len(weights), n.inputCount+1)
	}
	copy(n.weights, weights)
	return nil
}

// ProcessInputs returns the activation of the weighted sum of inputs.
// inputs must include the bias input as its last value.
func (n *Neuron) ProcessInputs(inputs []float64) (float64, error) {
	if len(inputs) != n.inputCount+1 {
		return 0, errors.Wrapf(ErrShape, "neuron got %d inputs, want %d (including bias)",
			len(inputs), n.inputCount+1)
	}
	return n.act.Activate(floats.Dot(inputs, n.weights)), nil
}

// TrainStep applies the delta rule, w[k] += learningRate * errorTerm * inputs[k].
// inputs must be the vector presented to the neuron in the last forward pass;
// it panics if its length is not InputCount()+1.
func (n *Neuron) TrainStep(inputs []float64, errorTerm, learningRate float64) {
	floats.AddScaled(n.weights, learningRate*errorTerm, inputs)
}

// TrainEpoch runs one stochastic gradient descent pass over examples, updating the
// weights after each one with the error (t - o), and returns the mean squared error.
// All examples are validated before any weight changes.
func (n *Neuron) TrainEpoch(examples []Example, learningRate float64) (float64, error) {
	if len(examples) == 0 {
		return 0, errors.WithStack(ErrNoExamples)
	}
	for i, ex := range examples {
		if len(ex.Inputs) != n.inputCount+1 {
			return 0, errors.Wrapf(ErrShape, "example #%d has %d inputs, want %d (including bias)",
				i, len(ex.Inputs), n.inputCount+1)
		}
	}

	var sum float64
	for _, ex := range examples {
		output := n.act.Activate(floats.Dot(ex.Inputs, n.weights))
		errorTerm := ex.Target - output
		sum += errorTerm * errorTerm
		n.TrainStep(ex.Inputs, errorTerm, learningRate)
	}
	return sum / float64(len(examples)), nil
}
