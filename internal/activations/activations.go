// Package activations provides the scalar activation functions used by neurons.
package activations

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Activation is an activation function with derivative.
type Activation interface {
	// Activate computes f(x)
	Activate(x float64) float64

	// Derivative computes f'(x)
	Derivative(x float64) float64

	// OutputDerivative computes f'(x) given only y = f(x).
	// Backpropagation only caches outputs, so this is the form it uses.
	OutputDerivative(y float64) float64
}

// Step is the threshold function: 1 when x >= 0, else 0.
type Step struct{}

// Activate computes step(x)
func (s Step) Activate(x float64) float64 {
	if x >= 0 {
		return 1
	}
	return 0
}

// Derivative is 0 everywhere it is defined.
func (s Step) Derivative(x float64) float64 {
	return 0
}

// OutputDerivative is 0 everywhere it is defined.
func (s Step) OutputDerivative(y float64) float64 {
	return 0
}

// Sigmoid activation function.
type Sigmoid struct{}

// sigmoid computes the logistic function
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Activate computes sigmoid(x)
func (s Sigmoid) Activate(x float64) float64 {
	return sigmoid(x)
}

// Derivative computes sigmoid(x) * (1 - sigmoid(x))
func (s Sigmoid) Derivative(x float64) float64 {
	sigma := sigmoid(x)
	return sigma * (1 - sigma)
}

// OutputDerivative computes y * (1 - y)
func (s Sigmoid) OutputDerivative(y float64) float64 {
	return y * (1 - y)
}

// Tanh activation function.
type Tanh struct{}

// Activate computes tanh(x)
func (t Tanh) Activate(x float64) float64 {
	return math.Tanh(x)
}

// Derivative computes 1 - tanh(x)^2
func (t Tanh) Derivative(x float64) float64 {
	tanhX := math.Tanh(x)
	return 1 - tanhX*tanhX
}

// OutputDerivative computes 1 - y^2
func (t Tanh) OutputDerivative(y float64) float64 {
	return 1 - y*y
}

// Identity passes the weighted sum through unchanged.
type Identity struct{}

// Activate returns x
func (i Identity) Activate(x float64) float64 {
	return x
}

// Derivative returns 1
func (i Identity) Derivative(x float64) float64 {
	return 1
}

// OutputDerivative returns 1
func (i Identity) OutputDerivative(y float64) float64 {
	return 1
}

// Names accepted by Parse, in canonical form.
const (
	StepName     = "step"
	TanhName     = "tanh"
	SigmoidName  = "sigmoid"
	IdentityName = "identity"
)

// Parse returns the activation registered under name (case-insensitive).
// "none" and "linear" are accepted as aliases of "identity".
func Parse(name string) (Activation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StepName:
		return Step{}, nil
	case TanhName:
		return Tanh{}, nil
	case SigmoidName, "logistic":
		return Sigmoid{}, nil
	case IdentityName, "none", "linear":
		return Identity{}, nil
	}
	return nil, errors.Errorf("unknown activation %q, valid values are %s, %s, %s, %s",
		name, StepName, TanhName, SigmoidName, IdentityName)
}

// ParseAll parses a list of activation names.
func ParseAll(names []string) ([]Activation, error) {
	acts := make([]Activation, len(names))
	for i, name := range names {
		act, err := Parse(name)
		if err != nil {
			return nil, errors.WithMessagef(err, "activation #%d", i)
		}
		acts[i] = act
	}
	return acts, nil
}

// Name returns the registry name of act, or "" if it is not a registered activation.
func Name(act Activation) string {
	switch act.(type) {
	case Step, *Step:
		return StepName
	case Tanh, *Tanh:
		return TanhName
	case Sigmoid, *Sigmoid:
		return SigmoidName
	case Identity, *Identity:
		return IdentityName
	default:
		return ""
	}
}
