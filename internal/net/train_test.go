package net

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/FlavioCFOliveira/GoBackprop/internal/activations"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder logs every callback event and keeps the weights each epoch started with.
type recorder struct {
	events      []string
	beginEpochs []Weights
}

func (r *recorder) OnTrainBegin(w Weights) { r.events = append(r.events, "train begin") }
func (r *recorder) OnEpochBegin(epoch int, w Weights) {
	r.events = append(r.events, fmt.Sprintf("epoch %d begin", epoch))
	r.beginEpochs = append(r.beginEpochs, w)
}
func (r *recorder) OnEpochEnd(epoch int, mse float64, w Weights) {
	r.events = append(r.events, fmt.Sprintf("epoch %d end", epoch))
}
func (r *recorder) OnRevert(epoch int, restored Weights) {
	r.events = append(r.events, fmt.Sprintf("revert %d", epoch))
}
func (r *recorder) OnTrainEnd(epochs int, reason StopReason, w Weights) {
	r.events = append(r.events, fmt.Sprintf("train end %d %s", epochs, reason))
}

// newOvershootingNeuron returns an identity neuron whose second epoch on
// overshootExamples at learning rate 1.5 increases the error from 1 to 4.
func newOvershootingNeuron(t *testing.T) *Network {
	t.Helper()
	n, err := New(Architecture{
		LayerSizes:  []int{1},
		InputArity:  2,
		Activations: []activations.Activation{activations.Identity{}},
	}, Weights{{{0, 0}}}, nil)
	require.NoError(t, err)
	return n
}

var overshootExamples = []Example{{Inputs: []float64{1, 1}, Targets: []float64{1}}}

func TestTrainRevertsRegression(t *testing.T) {
	n := newOvershootingNeuron(t)
	history := &History{}
	rec := &recorder{}
	require.NoError(t, n.Configure(TrainConfig{Callbacks: []Callback{history, rec}}))

	epochs, err := n.Train(overshootExamples, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 2, epochs)
	assert.Equal(t, Weights{{{1.5, 1.5}}}, n.GetWeights())

	assert.Equal(t, []float64{1, 4}, history.MSE)
	assert.Equal(t, 2, history.RevertedEpoch)
	assert.Equal(t, StopRegressed, history.Reason)
	assert.Equal(t, Weights{{{1.5, 1.5}}}, history.Final)

	assert.Equal(t, []string{
		"train begin",
		"epoch 1 begin", "epoch 1 end",
		"epoch 2 begin", "epoch 2 end",
		"revert 2",
		"train end 2 regressed",
	}, rec.events)
}

func TestTrainStopsOnPlateau(t *testing.T) {
	n := newANDNeuron(t, activations.Step{}, []float64{1, 1, -1.5})
	history := &History{}
	require.NoError(t, n.Configure(TrainConfig{Callbacks: []Callback{history}}))

	epochs, err := n.Train(andExamples, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 2, epochs)
	assert.Equal(t, StopPlateau, history.Reason)
	assert.Equal(t, []float64{0, 0}, history.MSE)
	assert.Equal(t, Weights{{{1, 1, -1.5}}}, n.GetWeights())
}

func TestTrainRevertsDivergence(t *testing.T) {
	n := newOvershootingNeuron(t)
	history := &History{}
	require.NoError(t, n.Configure(TrainConfig{Callbacks: []Callback{history}}))

	examples := []Example{{Inputs: []float64{math.NaN(), 1}, Targets: []float64{1}}}
	epochs, err := n.Train(examples, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 1, epochs)
	assert.Equal(t, StopDiverged, history.Reason)
	assert.True(t, history.Reason.Reverted())
	assert.Equal(t, Weights{{{0, 0}}}, n.GetWeights())
}

func TestTrainLearnsAND(t *testing.T) {
	n := newANDNeuron(t, activations.Sigmoid{}, []float64{0, 0, 1})
	history := &History{}
	require.NoError(t, n.Configure(TrainConfig{Callbacks: []Callback{history}}))

	epochs, err := n.Train(andExamples, 0.5)
	require.NoError(t, err)
	assert.Equal(t, MaxEpochs, epochs)
	assert.Equal(t, StopMaxEpochs, history.Reason)
	assert.Zero(t, history.RevertedEpoch)
	require.Len(t, history.MSE, MaxEpochs)
	for i := 1; i < len(history.MSE); i++ {
		require.Less(t, history.MSE[i], history.MSE[i-1], "epoch %d", i+1)
	}
	assert.Less(t, history.MSE[len(history.MSE)-1], 0.01)

	bestEpoch, best := history.Best()
	assert.Equal(t, MaxEpochs, bestEpoch)
	assert.Equal(t, history.MSE[MaxEpochs-1], best)

	for _, ex := range andExamples {
		out, err := n.ProcessInputs(ex.Inputs, nil)
		require.NoError(t, err)
		assert.InDelta(t, ex.Targets[0], out[0], 0.25, "AND%v", ex.Inputs[:2])
	}
}

func TestTrainMaxEpochsOverride(t *testing.T) {
	n := newANDNeuron(t, activations.Sigmoid{}, []float64{0, 0, 1})
	require.NoError(t, n.Configure(TrainConfig{MaxEpochs: 5}))

	epochs, err := n.Train(andExamples, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 5, epochs)
}

func TestTrainInvalidExamples(t *testing.T) {
	n := newReferenceNetwork(t)
	rec := &recorder{}
	require.NoError(t, n.Configure(TrainConfig{Callbacks: []Callback{rec}}))

	epochs, err := n.Train([]Example{{Inputs: []float64{1, 1}, Targets: []float64{1, 1}}}, 0.05)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShape))
	assert.Zero(t, epochs)
	assert.Equal(t, referenceWeights(), n.GetWeights())
	assert.Empty(t, rec.events, "no callback runs when validation fails")

	epochs, err = n.Train(nil, 0.05)
	assert.True(t, errors.Is(err, ErrNoExamples))
	assert.Zero(t, epochs)
}

// TestTrainInvariants trains random networks and checks the epoch bounds and
// that a reverted run always ends on the weights its last epoch started from.
func TestTrainInvariants(t *testing.T) {
	examples := []Example{
		{Inputs: []float64{0, 0, 1}, Targets: []float64{0}},
		{Inputs: []float64{0, 1, 1}, Targets: []float64{1}},
		{Inputs: []float64{1, 0, 1}, Targets: []float64{1}},
		{Inputs: []float64{1, 1, 1}, Targets: []float64{0}},
	}
	acts := []activations.Activation{activations.Sigmoid{}, activations.Tanh{}, activations.Identity{}}
	rng := rand.New(rand.NewPCG(42, 42))

	for trial := 0; trial < 40; trial++ {
		sizes := []int{1 + rng.IntN(2), 1}
		if trial%2 == 1 {
			sizes = []int{1 + rng.IntN(2), 1 + rng.IntN(2), 1}
		}
		arch := Architecture{LayerSizes: sizes, InputArity: 3}
		for range sizes {
			arch.Activations = append(arch.Activations, acts[rng.IntN(len(acts))])
		}
		n, err := New(arch, nil, rand.NewPCG(uint64(trial), 7))
		require.NoError(t, err)
		history := &History{}
		rec := &recorder{}
		require.NoError(t, n.Configure(TrainConfig{Callbacks: []Callback{history, rec}}))

		lr := []float64{0.01, 0.5, 5}[trial%3]
		epochs, err := n.Train(examples, lr)
		require.NoError(t, err)
		require.GreaterOrEqual(t, epochs, 1)
		require.LessOrEqual(t, epochs, MaxEpochs)
		require.Len(t, history.MSE, epochs)

		if history.Reason.Reverted() {
			assert.Equal(t, rec.beginEpochs[epochs-1], n.GetWeights(), "trial %d", trial)
		}
		kept := history.MSE
		if history.Reason.Reverted() {
			kept = kept[:len(kept)-1]
		}
		for i := 1; i < len(kept); i++ {
			assert.LessOrEqual(t, kept[i], kept[i-1], "trial %d epoch %d", trial, i+1)
		}
	}
}

func TestConfigure(t *testing.T) {
	n := newReferenceNetwork(t)
	assert.Equal(t, MaxEpochs, n.Config().MaxEpochs)
	assert.Equal(t, SigmoidDerivative, n.Config().Derivatives)

	err := n.Configure(TrainConfig{MaxEpochs: -1})
	assert.True(t, errors.Is(err, ErrConfig))
	err = n.Configure(TrainConfig{Derivatives: DerivativeMode(7)})
	assert.True(t, errors.Is(err, ErrConfig))
	assert.Equal(t, MaxEpochs, n.Config().MaxEpochs, "failed Configure must not change the configuration")

	require.NoError(t, n.Configure(TrainConfig{MaxEpochs: 10, Derivatives: LayerDerivative}))
	assert.Equal(t, 10, n.Config().MaxEpochs)
	assert.Equal(t, LayerDerivative, n.Config().Derivatives)
}

func TestParseDerivativeMode(t *testing.T) {
	for input, want := range map[string]DerivativeMode{
		"":         SigmoidDerivative,
		"sigmoid":  SigmoidDerivative,
		" Layer ":  LayerDerivative,
		"LAYER":    LayerDerivative,
		"sigmoid ": SigmoidDerivative,
	} {
		got, err := ParseDerivativeMode(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	_, err := ParseDerivativeMode("relu")
	assert.True(t, errors.Is(err, ErrConfig))
}

func TestStopReasonString(t *testing.T) {
	assert.Equal(t, "regressed", StopRegressed.String())
	assert.Equal(t, "diverged", StopDiverged.String())
	assert.Equal(t, "max epochs", StopMaxEpochs.String())
	assert.Equal(t, "plateau", StopPlateau.String())
	assert.False(t, StopPlateau.Reverted())
	assert.False(t, StopMaxEpochs.Reverted())
}
