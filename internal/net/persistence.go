package net

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/FlavioCFOliveira/GoBackprop/internal/activations"
	"github.com/pkg/errors"
)

// savedNetwork is the gob representation of a network.
type savedNetwork struct {
	LayerSizes  []int
	InputArity  int
	Activations []string
	MaxEpochs   int
	Derivatives string
	Weights     Weights
}

func newSavedNetwork(arch Architecture, w Weights, cfg TrainConfig) (*savedNetwork, error) {
	names := make([]string, len(arch.Activations))
	for i, act := range arch.Activations {
		names[i] = activations.Name(act)
		if names[i] == "" {
			return nil, errors.Errorf("activation %T of layer %d has no registered name", act, i)
		}
	}
	return &savedNetwork{
		LayerSizes:  arch.LayerSizes,
		InputArity:  arch.InputArity,
		Activations: names,
		MaxEpochs:   cfg.MaxEpochs,
		Derivatives: cfg.Derivatives.String(),
		Weights:     w,
	}, nil
}

// Save saves the network to a file using gob encoding.
func (n *Network) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", filename)
	}
	if err := n.Encode(file); err != nil {
		file.Close()
		return err
	}
	return errors.Wrapf(file.Close(), "failed to close %s", filename)
}

// Encode writes the architecture, training settings and weights of the network
// to w using gob encoding. Callbacks are not saved.
func (n *Network) Encode(w io.Writer) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	saved, err := newSavedNetwork(n.arch, n.weights(), n.config)
	if err != nil {
		return err
	}
	return errors.Wrap(gob.NewEncoder(w).Encode(saved), "failed to encode network")
}

func saveSnapshot(filename string, arch Architecture, w Weights) error {
	saved, err := newSavedNetwork(arch, w, DefaultTrainConfig())
	if err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", filename)
	}
	if err := gob.NewEncoder(file).Encode(saved); err != nil {
		file.Close()
		return errors.Wrapf(err, "failed to encode %s", filename)
	}
	return errors.Wrapf(file.Close(), "failed to close %s", filename)
}

// Load loads a network from a file written by Save.
func Load(filename string) (*Network, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", filename)
	}
	defer file.Close()
	n, err := Decode(file)
	return n, errors.WithMessage(err, filename)
}

// Decode reads a network written by Encode.
func Decode(r io.Reader) (*Network, error) {
	var saved savedNetwork
	if err := gob.NewDecoder(r).Decode(&saved); err != nil {
		return nil, errors.Wrap(err, "failed to decode network")
	}

	acts, err := activations.ParseAll(saved.Activations)
	if err != nil {
		return nil, err
	}
	arch := Architecture{
		LayerSizes:  saved.LayerSizes,
		InputArity:  saved.InputArity,
		Activations: acts,
	}
	n, err := New(arch, saved.Weights, nil)
	if err != nil {
		return nil, err
	}

	mode, err := ParseDerivativeMode(saved.Derivatives)
	if err != nil {
		return nil, err
	}
	if err := n.Configure(TrainConfig{MaxEpochs: saved.MaxEpochs, Derivatives: mode}); err != nil {
		return nil, err
	}
	return n, nil
}
