// Package net provides the feedforward network: layered neurons, forward
// propagation, backpropagation of error terms and the epoch training loop.
package net

import (
	"math/rand/v2"
	"sync"

	"github.com/FlavioCFOliveira/GoBackprop/internal/activations"
	"github.com/FlavioCFOliveira/GoBackprop/internal/layer"
	"github.com/FlavioCFOliveira/GoBackprop/internal/loss"
	"github.com/FlavioCFOliveira/GoBackprop/internal/neuron"
	"github.com/pkg/errors"
)

// Errors reported by the network. Use errors.Is to test for them.
var (
	ErrShape      = neuron.ErrShape
	ErrConfig     = neuron.ErrConfig
	ErrNoExamples = neuron.ErrNoExamples
)

// Architecture describes the shape of a network.
type Architecture struct {
	// LayerSizes holds the number of neurons of each layer, first hidden layer first.
	LayerSizes []int

	// InputArity is the number of inputs of every neuron, including the bias input,
	// which is always the last one and is expected to be 1.0.
	InputArity int

	// Activations holds one activation function per layer.
	Activations []activations.Activation
}

// Validate checks the architecture is buildable.
//
// Layer i > 0 receives a copy of layer i-1's input with its leading slots replaced
// by layer i-1's outputs, so non-final layers may not be wider than InputArity-1:
// the bias slot must survive.
func (a Architecture) Validate() error {
	if len(a.LayerSizes) == 0 {
		return errors.Wrap(ErrConfig, "architecture has no layers")
	}
	if a.InputArity < 1 {
		return errors.Wrapf(ErrConfig, "input arity must count the bias input, got %d", a.InputArity)
	}
	if len(a.Activations) != len(a.LayerSizes) {
		return errors.Wrapf(ErrConfig, "got %d activation functions for %d layers",
			len(a.Activations), len(a.LayerSizes))
	}
	last := len(a.LayerSizes) - 1
	for i, size := range a.LayerSizes {
		if size <= 0 {
			return errors.Wrapf(ErrConfig, "layer %d has %d neurons", i, size)
		}
		if a.Activations[i] == nil {
			return errors.Wrapf(ErrConfig, "layer %d has no activation function", i)
		}
		if i < last && size > a.InputArity-1 {
			return errors.Wrapf(ErrConfig,
				"layer %d has %d neurons but the next layer only has %d non-bias inputs",
				i, size, a.InputArity-1)
		}
	}
	return nil
}

// OutputSize returns the number of neurons of the last layer.
func (a Architecture) OutputSize() int {
	return a.LayerSizes[len(a.LayerSizes)-1]
}

func (a Architecture) clone() Architecture {
	return Architecture{
		LayerSizes:  append([]int(nil), a.LayerSizes...),
		InputArity:  a.InputArity,
		Activations: append([]activations.Activation(nil), a.Activations...),
	}
}

// Example is one training example. Inputs has InputArity values, bias input last;
// Targets has one value per output neuron.
type Example struct {
	Inputs  []float64
	Targets []float64
}

// Weights is a snapshot of every weight in the network, indexed [layer][neuron][weight].
type Weights [][][]float64

// Clone returns a deep copy of w.
func (w Weights) Clone() Weights {
	if w == nil {
		return nil
	}
	c := make(Weights, len(w))
	for i, l := range w {
		c[i] = make([][]float64, len(l))
		for j, n := range l {
			c[i][j] = append([]float64(nil), n...)
		}
	}
	return c
}

// OutputCache records, for one forward pass, the input vector each layer
// consumed and the outputs it produced.
type OutputCache struct {
	Inputs  [][]float64
	Outputs [][]float64
}

func (c *OutputCache) reset(numLayers int) {
	if len(c.Inputs) != numLayers {
		c.Inputs = make([][]float64, numLayers)
		c.Outputs = make([][]float64, numLayers)
	}
}

// Network is a fully connected feedforward network.
//
// All methods are safe for concurrent use: calls are serialized by a mutex,
// not run in parallel.
type Network struct {
	mu     sync.Mutex
	arch   Architecture
	layers []*layer.Layer
	loss   loss.Loss
	config TrainConfig
}

// New creates a network with the given architecture.
//
// If startingWeights is nil every neuron gets random weights drawn from src
// (nil src uses the global generator). Otherwise it must provide every weight of
// every neuron; the values are copied into the network.
func New(arch Architecture, startingWeights Weights, src rand.Source) (*Network, error) {
	if err := arch.Validate(); err != nil {
		return nil, err
	}
	if startingWeights != nil && len(startingWeights) != len(arch.LayerSizes) {
		return nil, errors.Wrapf(ErrShape, "all starting weights must be provided: got %d layers, want %d",
			len(startingWeights), len(arch.LayerSizes))
	}

	layers := make([]*layer.Layer, len(arch.LayerSizes))
	for i, size := range arch.LayerSizes {
		var weights [][]float64
		if startingWeights != nil {
			if startingWeights[i] == nil {
				return nil, errors.Wrapf(ErrShape, "all starting weights must be provided: layer %d has none", i)
			}
			weights = startingWeights[i]
		}
		l, err := layer.New(size, arch.InputArity, arch.Activations[i], weights, src)
		if err != nil {
			return nil, errors.WithMessagef(err, "layer %d", i)
		}
		layers[i] = l
	}

	return &Network{
		arch:   arch.clone(),
		layers: layers,
		loss:   loss.SquaredError{},
		config: DefaultTrainConfig(),
	}, nil
}

// Architecture returns a copy of the network's architecture.
func (n *Network) Architecture() Architecture {
	return n.arch.clone()
}

// ProcessInputs runs a forward pass and returns the outputs of the last layer.
// inputs must have InputArity values, bias input last. If cache is not nil it
// receives every layer's input and output vectors.
func (n *Network) ProcessInputs(inputs []float64, cache *OutputCache) ([]float64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.forward(inputs, cache)
}

func (n *Network) forward(inputs []float64, cache *OutputCache) ([]float64, error) {
	if len(inputs) != n.arch.InputArity {
		return nil, errors.Wrapf(ErrShape, "input provided doesn't match architecture: got %d values, want %d",
			len(inputs), n.arch.InputArity)
	}
	if cache != nil {
		cache.reset(len(n.layers))
	}

	current := append([]float64(nil), inputs...)
	var outputs []float64
	for i, l := range n.layers {
		outputs = make([]float64, l.Size())
		if err := l.Forward(current, outputs); err != nil {
			return nil, errors.WithMessagef(err, "layer %d", i)
		}
		if cache != nil {
			cache.Inputs[i] = current
			cache.Outputs[i] = outputs
		}
		if i+1 < len(n.layers) {
			// The next layer sees this layer's outputs in the leading slots. The
			// rest, bias included, carry over from this layer's input vector.
			next := append([]float64(nil), current...)
			copy(next, outputs)
			current = next
		}
	}
	return append([]float64(nil), outputs...), nil
}

// TrainEpoch runs one pass of online backpropagation over examples and returns
// the mean over examples of the summed squared output error.
// Weights are updated after every example. All examples are validated first.
func (n *Network) TrainEpoch(examples []Example, learningRate float64) (float64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.checkExamples(examples); err != nil {
		return 0, err
	}
	return n.trainEpoch(examples, learningRate)
}

func (n *Network) checkExamples(examples []Example) error {
	if len(examples) == 0 {
		return errors.WithStack(ErrNoExamples)
	}
	outputSize := n.arch.OutputSize()
	for i, ex := range examples {
		if len(ex.Inputs) != n.arch.InputArity {
			return errors.Wrapf(ErrShape, "example #%d has %d inputs, want %d (including bias)",
				i, len(ex.Inputs), n.arch.InputArity)
		}
		if len(ex.Targets) != outputSize {
			return errors.Wrapf(ErrShape, "example #%d has %d targets, want %d",
				i, len(ex.Targets), outputSize)
		}
	}
	return nil
}

func (n *Network) trainEpoch(examples []Example, learningRate float64) (float64, error) {
	cache := &OutputCache{}
	errorTerms := make([][]float64, len(n.layers))
	for i, l := range n.layers {
		errorTerms[i] = make([]float64, l.Size())
	}

	var total float64
	for i, ex := range examples {
		outputs, err := n.forward(ex.Inputs, cache)
		if err != nil {
			return 0, errors.WithMessagef(err, "example #%d", i)
		}
		total += n.loss.Forward(outputs, ex.Targets)

		n.backward(cache, ex.Targets, errorTerms)
		for i, l := range n.layers {
			l.Update(cache.Inputs[i], errorTerms[i], learningRate)
		}
	}
	return total / float64(len(examples)), nil
}

// Evaluate returns the mean over examples of the summed squared output error,
// without changing any weight.
func (n *Network) Evaluate(examples []Example) (float64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.checkExamples(examples); err != nil {
		return 0, err
	}
	var total float64
	for i, ex := range examples {
		outputs, err := n.forward(ex.Inputs, nil)
		if err != nil {
			return 0, errors.WithMessagef(err, "example #%d", i)
		}
		total += n.loss.Forward(outputs, ex.Targets)
	}
	return total / float64(len(examples)), nil
}

// backward fills terms with every neuron's error term, output layer first.
// No weight is changed until all terms are known.
func (n *Network) backward(cache *OutputCache, targets []float64, terms [][]float64) {
	last := len(n.layers) - 1
	n.loss.BackwardInPlace(cache.Outputs[last], targets, terms[last])
	if n.config.Derivatives == LayerDerivative {
		act := n.layers[last].Activation()
		for k, o := range cache.Outputs[last] {
			terms[last][k] *= act.OutputDerivative(o)
		}
	}

	for i := last - 1; i >= 0; i-- {
		next := n.layers[i+1]
		deriv := n.hiddenDerivative(i)
		for j, o := range cache.Outputs[i] {
			// Neuron j of layer i feeds input j of every neuron k in layer i+1.
			var sum float64
			for k := 0; k < next.Size(); k++ {
				sum += next.Weight(k, j) * terms[i+1][k]
			}
			terms[i][j] = deriv.OutputDerivative(o) * sum
		}
	}
}

func (n *Network) hiddenDerivative(i int) activations.Activation {
	if n.config.Derivatives == LayerDerivative {
		return n.layers[i].Activation()
	}
	return activations.Sigmoid{}
}

// GetWeights returns a deep copy of all the network's weights.
func (n *Network) GetWeights() Weights {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.weights()
}

func (n *Network) weights() Weights {
	w := make(Weights, len(n.layers))
	for i, l := range n.layers {
		w[i] = l.Weights()
	}
	return w
}

// SetWeights copies w into the network. The whole snapshot is validated before
// anything is written.
func (n *Network) SetWeights(w Weights) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.setWeights(w)
}

func (n *Network) setWeights(w Weights) error {
	if len(w) != len(n.layers) {
		return errors.Wrapf(ErrShape, "got weights for %d layers, want %d", len(w), len(n.layers))
	}
	for i, l := range n.layers {
		if err := l.CheckWeights(w[i]); err != nil {
			return errors.WithMessagef(err, "layer %d", i)
		}
	}
	for i, l := range n.layers {
		_ = l.SetWeights(w[i])
	}
	return nil
}
