package main

import (
	"fmt"

	"github.com/FlavioCFOliveira/GoBackprop/internal/activations"
	"github.com/FlavioCFOliveira/GoBackprop/internal/net"
	"github.com/FlavioCFOliveira/GoBackprop/internal/neuron"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var andExamples = []neuron.Example{
	{Inputs: []float64{0, 0, 1}, Target: 0},
	{Inputs: []float64{0, 1, 1}, Target: 0},
	{Inputs: []float64{1, 0, 1}, Target: 0},
	{Inputs: []float64{1, 1, 1}, Target: 1},
}

// train runs net.MaxEpochs epochs over examples and returns the error of each one.
func train(n *neuron.Neuron, examples []neuron.Example, learningRate float64) ([]float64, error) {
	mses := make([]float64, 0, net.MaxEpochs)
	for epoch := 1; epoch <= net.MaxEpochs; epoch++ {
		mse, err := n.TrainEpoch(examples, learningRate)
		if err != nil {
			return nil, err
		}
		mses = append(mses, mse)
	}
	return mses, nil
}

func main() {
	klog.InitFlags(nil)
	fmt.Println("=== AND Gate: single neuron ===")

	n, err := neuron.New(2, []float64{0, 0, 1}, activations.Sigmoid{})
	if err != nil {
		klog.Exitf("%v", err)
	}

	for epoch, mse := range must.M1(train(n, andExamples, 0.5)) {
		if (epoch+1)%15 == 0 {
			fmt.Printf("Epoch %d, MSE: %.6f\n", epoch+1, mse)
		}
	}

	fmt.Println("\nTesting trained neuron:")
	for _, ex := range andExamples {
		out, err := n.ProcessInputs(ex.Inputs)
		if err != nil {
			klog.Exitf("%v", err)
		}
		fmt.Printf("Input: %v, Predicted: %.4f, Target: %v\n", ex.Inputs[:2], out, ex.Target)
	}
	fmt.Printf("Weights (bias last): %v\n", n.Weights())
}
