// Package activations provides benchmarks for activation functions.
package activations

import (
	"math/rand"
	"testing"
)

// fillRandom fills a slice with random values.
func fillRandom(slice []float64) {
	for i := range slice {
		slice[i] = rand.Float64()*8 - 4
	}
}

func benchmarkActivate(b *testing.B, act Activation) {
	inputs := make([]float64, 1000)
	fillRandom(inputs)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, x := range inputs {
			act.Activate(x)
		}
	}
}

// BenchmarkSigmoidActivate benchmarks the Sigmoid activation function.
func BenchmarkSigmoidActivate(b *testing.B) {
	benchmarkActivate(b, Sigmoid{})
}

// BenchmarkTanhActivate benchmarks the Tanh activation function.
func BenchmarkTanhActivate(b *testing.B) {
	benchmarkActivate(b, Tanh{})
}

// BenchmarkStepActivate benchmarks the Step activation function.
func BenchmarkStepActivate(b *testing.B) {
	benchmarkActivate(b, Step{})
}

// BenchmarkSigmoidOutputDerivative benchmarks the derivative used by backpropagation.
func BenchmarkSigmoidOutputDerivative(b *testing.B) {
	s := Sigmoid{}
	outputs := make([]float64, 1000)
	fillRandom(outputs)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, y := range outputs {
			s.OutputDerivative(y)
		}
	}
}
