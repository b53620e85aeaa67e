package net

import (
	"math"

	"k8s.io/klog/v2"
)

// Callback receives training events from Train.
//
// Callbacks run while the network is locked and must not call back into it.
// The Weights they receive are snapshots, shared between the callbacks of one
// event: treat them as read-only.
type Callback interface {
	OnTrainBegin(w Weights)
	OnEpochBegin(epoch int, w Weights)
	OnEpochEnd(epoch int, mse float64, w Weights)
	OnRevert(epoch int, restored Weights)
	OnTrainEnd(epochs int, reason StopReason, w Weights)
}

// BaseCallback provides default empty implementations for Callback.
type BaseCallback struct{}

func (c BaseCallback) OnTrainBegin(w Weights)                              {}
func (c BaseCallback) OnEpochBegin(epoch int, w Weights)                   {}
func (c BaseCallback) OnEpochEnd(epoch int, mse float64, w Weights)        {}
func (c BaseCallback) OnRevert(epoch int, restored Weights)                {}
func (c BaseCallback) OnTrainEnd(epochs int, reason StopReason, w Weights) {}

// Logger logs training progress with klog.
type Logger struct {
	BaseCallback
	Interval int
}

func (c Logger) OnEpochEnd(epoch int, mse float64, w Weights) {
	if c.Interval > 0 && epoch%c.Interval == 0 {
		klog.Infof("Epoch %d: mse = %.6f", epoch, mse)
	}
}

func (c Logger) OnRevert(epoch int, restored Weights) {
	klog.Infof("Epoch %d increased the error, weights restored", epoch)
}

func (c Logger) OnTrainEnd(epochs int, reason StopReason, w Weights) {
	klog.Infof("Training stopped after %d epochs (%s)", epochs, reason)
}

// History records the error of every epoch.
type History struct {
	BaseCallback

	// MSE holds the error of each epoch, reverted epochs included.
	MSE []float64

	// RevertedEpoch is the epoch that was undone, or 0.
	RevertedEpoch int

	Epochs int
	Reason StopReason

	// Final holds the weights the network ended with.
	Final Weights
}

func (h *History) OnTrainBegin(w Weights) {
	h.MSE = h.MSE[:0]
	h.RevertedEpoch = 0
	h.Epochs = 0
	h.Final = nil
}

func (h *History) OnEpochEnd(epoch int, mse float64, w Weights) {
	h.MSE = append(h.MSE, mse)
}

func (h *History) OnRevert(epoch int, restored Weights) {
	h.RevertedEpoch = epoch
}

func (h *History) OnTrainEnd(epochs int, reason StopReason, w Weights) {
	h.Epochs = epochs
	h.Reason = reason
	h.Final = w.Clone()
}

// Best returns the lowest error recorded and its epoch, or (0, +Inf) if there is none.
func (h *History) Best() (epoch int, mse float64) {
	mse = math.Inf(1)
	for i, v := range h.MSE {
		if v < mse {
			epoch, mse = i+1, v
		}
	}
	return epoch, mse
}

// ModelCheckpoint saves the network to Filename after every epoch that sets a
// new lowest error.
type ModelCheckpoint struct {
	BaseCallback
	Filename string

	arch     Architecture
	bestLoss float64
}

// NewModelCheckpoint creates a checkpoint writer for networks with the given architecture.
func NewModelCheckpoint(filename string, arch Architecture) *ModelCheckpoint {
	return &ModelCheckpoint{
		Filename: filename,
		arch:     arch.clone(),
		bestLoss: math.Inf(1),
	}
}

func (c *ModelCheckpoint) OnTrainBegin(w Weights) {
	c.bestLoss = math.Inf(1)
}

func (c *ModelCheckpoint) OnEpochEnd(epoch int, mse float64, w Weights) {
	if !(mse < c.bestLoss) {
		return
	}
	c.bestLoss = mse
	if err := saveSnapshot(c.Filename, c.arch, w); err != nil {
		klog.Warningf("ModelCheckpoint: %v", err)
		return
	}
	klog.V(1).Infof("Checkpoint saved: mse %.6f is new best", mse)
}
