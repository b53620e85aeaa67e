package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/FlavioCFOliveira/GoBackprop/internal/net"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const xorRun = `
layers: [2, 2]
inputs: 3
activations: [sigmoid, identity]
learning_rate: 0.05
max_epochs: 135
derivatives: sigmoid
weights: [[[0.5,-0.2,0.5],[0.1,0.2,0.3]],[[0.7,0.6,0.2],[0.9,0.8,0.4]]]
examples:
  - {inputs: [0, 0, 1], targets: [0, 0]}
  - {inputs: [0, 1, 1], targets: [1, 1]}
  - {inputs: [1, 0, 1], targets: [1, 1]}
  - {inputs: [1, 1, 1], targets: [0, 0]}
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(xorRun))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, cfg.Layers)
	assert.Equal(t, 3, cfg.Inputs)
	assert.Equal(t, 0.05, cfg.LearningRate)
	assert.Len(t, cfg.Examples, 4)
	assert.Equal(t, net.Weights{
		{{0.5, -0.2, 0.5}, {0.1, 0.2, 0.3}},
		{{0.7, 0.6, 0.2}, {0.9, 0.8, 0.4}},
	}, cfg.Weights)

	n, err := cfg.NewNetwork(nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.Weights, n.GetWeights())
	assert.Equal(t, 135, n.Config().MaxEpochs)
	assert.Equal(t, net.SigmoidDerivative, n.Config().Derivatives)

	train, holdout, err := cfg.LoadExamples("")
	require.NoError(t, err)
	assert.Len(t, train, 4)
	assert.Empty(t, holdout)
	assert.Equal(t, []float64{1, 1}, train[1].Targets)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"no layers", "inputs: 3\nlearning_rate: 0.1\n", "layers"},
		{"no inputs", "layers: [1]\nactivations: [sigmoid]\nlearning_rate: 0.1\n", "inputs"},
		{"activation count", "layers: [1]\ninputs: 3\nactivations: [sigmoid, tanh]\nlearning_rate: 0.1\n", "activations"},
		{"unknown activation", "layers: [1]\ninputs: 3\nactivations: [relu]\nlearning_rate: 0.1\n", "activations"},
		{"no learning rate", "layers: [1]\ninputs: 3\nactivations: [sigmoid]\n", "learning_rate"},
		{"negative max epochs", "layers: [1]\ninputs: 3\nactivations: [sigmoid]\nlearning_rate: 0.1\nmax_epochs: -1\n", "max_epochs"},
		{"bad derivatives", "layers: [1]\ninputs: 3\nactivations: [sigmoid]\nlearning_rate: 0.1\nderivatives: relu\n", "derivatives"},
		{"example inputs", "layers: [1]\ninputs: 3\nactivations: [sigmoid]\nlearning_rate: 0.1\nexamples: [{inputs: [1, 1], targets: [1]}]\n", "examples"},
		{"example targets", "layers: [1]\ninputs: 3\nactivations: [sigmoid]\nlearning_rate: 0.1\nexamples: [{inputs: [1, 1, 1], targets: [1, 0]}]\n", "examples"},
		{"data path", "layers: [1]\ninputs: 3\nactivations: [sigmoid]\nlearning_rate: 0.1\ndata: {target_columns: [2]}\n", "data.path"},
		{"data targets", "layers: [1]\ninputs: 3\nactivations: [sigmoid]\nlearning_rate: 0.1\ndata: {path: x.csv}\n", "data.target_columns"},
		{"data holdout", "layers: [1]\ninputs: 3\nactivations: [sigmoid]\nlearning_rate: 0.1\ndata: {path: x.csv, target_columns: [2], holdout: 1}\n", "data.holdout"},
		{"hidden layer too wide", "layers: [3, 1]\ninputs: 3\nactivations: [sigmoid, sigmoid]\nlearning_rate: 0.1\n", "layers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, net.ErrConfig), "expected ErrConfig, got %v", err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("layers: [1]\ninputs: 3\nactivations: [sigmoid]\nlearning_rate: 0.1\nmomentum: 0.9\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "momentum")
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(nil)
	assert.True(t, errors.Is(err, net.ErrConfig))
}

func TestNewNetworkBadWeights(t *testing.T) {
	cfg, err := Parse([]byte("layers: [1]\ninputs: 3\nactivations: [sigmoid]\nlearning_rate: 0.1\nweights: [[[0, 0]]]\n"))
	require.NoError(t, err)
	_, err = cfg.NewNetwork(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, net.ErrShape))
	assert.Contains(t, err.Error(), "weights")
}

func TestLoadWithDataFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "and.csv"),
		[]byte("a,b,y\n0,0,0\n0,1,0\n1,0,0\n1,1,1\n"), 0644))
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
layers: [1]
inputs: 3
activations: [sigmoid]
learning_rate: 0.5
data: {path: and.csv, target_columns: [2], header: true, append_bias: true, holdout: 0.25}
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	train, holdout, err := cfg.LoadExamples("")
	require.NoError(t, err)
	require.Len(t, train, 3)
	require.Len(t, holdout, 1)
	assert.Equal(t, []float64{0, 1, 1}, train[1].Inputs)
	assert.Equal(t, []float64{1, 1, 1}, holdout[0].Inputs)
	assert.Equal(t, []float64{1}, holdout[0].Targets)
}

func TestLoadExamplesOverride(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "xor.csv")
	require.NoError(t, os.WriteFile(data, []byte("0,0,0,0\n0,1,1,1\n1,0,1,1\n1,1,0,0\n"), 0644))

	cfg, err := Parse([]byte(xorRun))
	require.NoError(t, err)
	train, holdout, err := cfg.LoadExamples(data)
	require.NoError(t, err)
	assert.Empty(t, holdout)
	require.Len(t, train, 4)
	assert.Equal(t, net.Example{Inputs: []float64{0, 1, 1}, Targets: []float64{1, 1}}, train[1])
}

func TestLoadExamplesNone(t *testing.T) {
	cfg, err := Parse([]byte("layers: [1]\ninputs: 3\nactivations: [sigmoid]\nlearning_rate: 0.1\n"))
	require.NoError(t, err)
	_, _, err = cfg.LoadExamples("")
	assert.True(t, errors.Is(err, net.ErrNoExamples))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
