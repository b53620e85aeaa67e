package net

import (
	"math"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

const (
	// MaxEpochs is the default cap on the number of epochs Train runs.
	MaxEpochs = 135

	// InitialPreviousMSE is the "previous epoch" error Train compares the first
	// epoch against. Any finite first epoch is an improvement.
	InitialPreviousMSE = 1e300
)

// DerivativeMode selects the activation derivative used in backpropagation.
type DerivativeMode int

const (
	// SigmoidDerivative uses o(1-o) for every hidden neuron regardless of its
	// activation, and t-o as the output error term.
	SigmoidDerivative DerivativeMode = iota

	// LayerDerivative uses each layer's own activation derivative, including
	// on the output layer.
	LayerDerivative
)

var derivativeModeNames = map[DerivativeMode]string{
	SigmoidDerivative: "sigmoid",
	LayerDerivative:   "layer",
}

func (m DerivativeMode) String() string {
	if name, ok := derivativeModeNames[m]; ok {
		return name
	}
	return "DerivativeMode(invalid)"
}

// ParseDerivativeMode converts "sigmoid" or "layer" to a DerivativeMode.
// The empty string selects SigmoidDerivative.
func ParseDerivativeMode(s string) (DerivativeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sigmoid":
		return SigmoidDerivative, nil
	case "layer":
		return LayerDerivative, nil
	}
	return 0, errors.Wrapf(ErrConfig, "unknown derivative mode %q, valid values are sigmoid, layer", s)
}

// TrainConfig holds the settings Train uses.
type TrainConfig struct {
	// MaxEpochs caps the number of epochs. 0 means the MaxEpochs constant.
	MaxEpochs int

	Derivatives DerivativeMode

	// Callbacks are notified, in order, of training events.
	Callbacks []Callback
}

// DefaultTrainConfig returns the configuration a new network starts with.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{MaxEpochs: MaxEpochs}
}

func (c TrainConfig) maxEpochs() int {
	if c.MaxEpochs == 0 {
		return MaxEpochs
	}
	return c.MaxEpochs
}

// Configure replaces the network's training configuration.
func (n *Network) Configure(cfg TrainConfig) error {
	if cfg.MaxEpochs < 0 {
		return errors.Wrapf(ErrConfig, "max epochs must not be negative, got %d", cfg.MaxEpochs)
	}
	if _, ok := derivativeModeNames[cfg.Derivatives]; !ok {
		return errors.Wrapf(ErrConfig, "invalid derivative mode %d", int(cfg.Derivatives))
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	cfg.Callbacks = append([]Callback(nil), cfg.Callbacks...)
	n.config = cfg
	return nil
}

// Config returns the network's training configuration.
func (n *Network) Config() TrainConfig {
	n.mu.Lock()
	defer n.mu.Unlock()
	cfg := n.config
	cfg.Callbacks = append([]Callback(nil), cfg.Callbacks...)
	return cfg
}

// StopReason tells why Train stopped.
type StopReason int

const (
	// StopRegressed means the last epoch increased the error and was reverted.
	StopRegressed StopReason = iota
	// StopDiverged means the last epoch produced a NaN or infinite error and was reverted.
	StopDiverged
	// StopMaxEpochs means the epoch cap was reached.
	StopMaxEpochs
	// StopPlateau means the last epoch left the error exactly unchanged.
	StopPlateau
)

func (r StopReason) String() string {
	switch r {
	case StopRegressed:
		return "regressed"
	case StopDiverged:
		return "diverged"
	case StopMaxEpochs:
		return "max epochs"
	case StopPlateau:
		return "plateau"
	}
	return "StopReason(invalid)"
}

// Reverted reports whether the final epoch was undone.
func (r StopReason) Reverted() bool {
	return r == StopRegressed || r == StopDiverged
}

// Train runs TrainEpoch repeatedly and returns the number of epochs executed,
// counting a final epoch that was reverted.
//
// After each epoch:
//   - if the error grew (or is not finite) the weights go back to what they were
//     when the epoch started and training stops;
//   - if the epoch cap is reached training stops;
//   - if the error is exactly equal to the previous epoch's training stops;
//   - otherwise the weights become the new restore point.
//
// Invalid examples return 0 epochs and leave the weights unchanged.
func (n *Network) Train(examples []Example, learningRate float64) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.checkExamples(examples); err != nil {
		return 0, err
	}

	callbacks := n.config.Callbacks
	snapshot := func() Weights {
		if len(callbacks) == 0 {
			return nil
		}
		return n.weights()
	}

	maxEpochs := n.config.maxEpochs()
	previousMSE := InitialPreviousMSE
	lastGood := n.weights()
	for _, cb := range callbacks {
		cb.OnTrainBegin(lastGood.Clone())
	}

	var (
		epochs int
		reason StopReason
	)
	for {
		epochs++
		if len(callbacks) > 0 {
			w := lastGood.Clone()
			for _, cb := range callbacks {
				cb.OnEpochBegin(epochs, w)
			}
		}

		mse, err := n.trainEpoch(examples, learningRate)
		if err != nil {
			_ = n.setWeights(lastGood)
			return epochs, errors.WithMessagef(err, "epoch %d", epochs)
		}
		if len(callbacks) > 0 {
			w := snapshot()
			for _, cb := range callbacks {
				cb.OnEpochEnd(epochs, mse, w)
			}
		}
		klog.V(2).Infof("epoch %d: mse=%g", epochs, mse)

		if math.IsNaN(mse) || math.IsInf(mse, 0) || mse > previousMSE {
			reason = StopRegressed
			if math.IsNaN(mse) || math.IsInf(mse, 0) {
				reason = StopDiverged
			}
			_ = n.setWeights(lastGood)
			for _, cb := range callbacks {
				cb.OnRevert(epochs, lastGood.Clone())
			}
			break
		}
		if epochs >= maxEpochs {
			reason = StopMaxEpochs
			break
		}
		if mse == previousMSE {
			reason = StopPlateau
			break
		}
		previousMSE = mse
		lastGood = n.weights()
	}

	klog.V(1).Infof("training stopped after %d epochs: %s", epochs, reason)
	if len(callbacks) > 0 {
		w := snapshot()
		for _, cb := range callbacks {
			cb.OnTrainEnd(epochs, reason, w)
		}
	}
	return epochs, nil
}
