// Package layer groups neurons that share an activation function and consume the same input vector.
package layer

import (
	"math/rand/v2"

	"github.com/FlavioCFOliveira/GoBackprop/internal/activations"
	"github.com/FlavioCFOliveira/GoBackprop/internal/neuron"
	"github.com/pkg/errors"
)

// Layer is a fully connected layer: every neuron sees the whole input vector,
// bias input included.
type Layer struct {
	neurons    []*neuron.Neuron
	act        activations.Activation
	inputArity int
}

// New creates a layer of size neurons taking inputArity inputs each (bias included).
// If weights is nil the neurons are randomly initialized from src; otherwise
// weights must hold one vector of inputArity values per neuron.
func New(size, inputArity int, act activations.Activation, weights [][]float64, src rand.Source) (*Layer, error) {
	if size <= 0 {
		return nil, errors.Wrapf(neuron.ErrConfig, "layer size must be positive, got %d", size)
	}
	if inputArity < 1 {
		return nil, errors.Wrapf(neuron.ErrConfig, "input arity must include the bias input, got %d", inputArity)
	}
	if act == nil {
		return nil, errors.Wrap(neuron.ErrConfig, "layer requires an activation function")
	}
	if weights != nil && len(weights) != size {
		return nil, errors.Wrapf(neuron.ErrShape,
			"all starting weights must be provided: got %d weight vectors for %d neurons", len(weights), size)
	}

	l := &Layer{
		neurons:    make([]*neuron.Neuron, size),
		act:        act,
		inputArity: inputArity,
	}
	for j := range l.neurons {
		var (
			n   *neuron.Neuron
			err error
		)
		if weights == nil {
			n, err = neuron.NewRandom(inputArity-1, act, src)
		} else {
			if weights[j] == nil {
				return nil, errors.Wrapf(neuron.ErrShape, "all starting weights must be provided: neuron %d has none", j)
			}
			n, err = neuron.New(inputArity-1, weights[j], act)
		}
		if err != nil {
			return nil, errors.WithMessagef(err, "neuron %d", j)
		}
		l.neurons[j] = n
	}
	return l, nil
}

// Forward feeds inputs to every neuron and writes neuron j's output to out[j].
// out must have Size() elements.
func (l *Layer) Forward(inputs, out []float64) error {
	if len(inputs) != l.inputArity {
		return errors.Wrapf(neuron.ErrShape, "layer got %d inputs, want %d", len(inputs), l.inputArity)
	}
	for j, n := range l.neurons {
		o, err := n.ProcessInputs(inputs)
		if err != nil {
			return errors.WithMessagef(err, "neuron %d", j)
		}
		out[j] = o
	}
	return nil
}

// Update applies the delta rule to every neuron: neuron j moves by
// learningRate * errorTerms[j] * inputs.
func (l *Layer) Update(inputs, errorTerms []float64, learningRate float64) {
	for j, n := range l.neurons {
		n.TrainStep(inputs, errorTerms[j], learningRate)
	}
}

// Size returns the number of neurons in the layer.
func (l *Layer) Size() int {
	return len(l.neurons)
}

// InputArity returns the number of inputs of each neuron, bias included.
func (l *Layer) InputArity() int {
	return l.inputArity
}

// Activation returns the activation function shared by the layer's neurons.
func (l *Layer) Activation() activations.Activation {
	return l.act
}

// Neuron returns the j-th neuron.
func (l *Layer) Neuron(j int) *neuron.Neuron {
	return l.neurons[j]
}

// Weight returns the weight neuron j assigns to input k.
func (l *Layer) Weight(j, k int) float64 {
	return l.neurons[j].Weight(k)
}

// NumParams returns the number of weights in the layer, biases included.
func (l *Layer) NumParams() int {
	return len(l.neurons) * l.inputArity
}

// Weights returns a deep copy of every neuron's weights.
func (l *Layer) Weights() [][]float64 {
	weights := make([][]float64, len(l.neurons))
	for j, n := range l.neurons {
		weights[j] = n.Weights()
	}
	return weights
}

// CheckWeights validates that weights fits the layer without changing anything.
func (l *Layer) CheckWeights(weights [][]float64) error {
	if len(weights) != len(l.neurons) {
		return errors.Wrapf(neuron.ErrShape, "got %d weight vectors for %d neurons", len(weights), len(l.neurons))
	}
	for j, w := range weights {
		if len(w) != l.inputArity {
			return errors.Wrapf(neuron.ErrShape, "neuron %d: got %d weights, want %d", j, len(w), l.inputArity)
		}
	}
	return nil
}

// SetWeights copies weights into the neurons. Nothing is written if the shape is wrong.
func (l *Layer) SetWeights(weights [][]float64) error {
	if err := l.CheckWeights(weights); err != nil {
		return err
	}
	for j, n := range l.neurons {
		_ = n.SetWeights(weights[j])
	}
	return nil
}
