package main

import (
	"fmt"
	"os"

	"github.com/FlavioCFOliveira/GoBackprop/internal/activations"
	"github.com/FlavioCFOliveira/GoBackprop/internal/net"
	"k8s.io/klog/v2"
)

func main() {
	klog.InitFlags(nil)
	fmt.Println("=== XOR Training Example ===")

	// 2 inputs plus bias -> 2 sigmoid neurons -> 2 identity outputs, both trained on XOR.
	arch := net.Architecture{
		LayerSizes:  []int{2, 2},
		InputArity:  3,
		Activations: []activations.Activation{activations.Sigmoid{}, activations.Identity{}},
	}
	network, err := net.New(arch, net.Weights{
		{{0.5, -0.2, 0.5}, {0.1, 0.2, 0.3}},
		{{0.7, 0.6, 0.2}, {0.9, 0.8, 0.4}},
	}, nil)
	if err != nil {
		klog.Exitf("failed to build network: %v", err)
	}
	if err := network.Summary(os.Stdout); err != nil {
		klog.Exitf("%v", err)
	}

	examples := []net.Example{
		{Inputs: []float64{0, 0, 1}, Targets: []float64{0, 0}},
		{Inputs: []float64{0, 1, 1}, Targets: []float64{1, 1}},
		{Inputs: []float64{1, 0, 1}, Targets: []float64{1, 1}},
		{Inputs: []float64{1, 1, 1}, Targets: []float64{0, 0}},
	}

	history := &net.History{}
	if err := network.Configure(net.TrainConfig{
		Callbacks: []net.Callback{history, net.Logger{Interval: 15}},
	}); err != nil {
		klog.Exitf("%v", err)
	}

	epochs, err := network.Train(examples, 0.05)
	if err != nil {
		klog.Exitf("training failed: %v", err)
	}
	fmt.Printf("Trained for %d epochs, stopped on %s\n", epochs, history.Reason)

	fmt.Println("\nTesting trained network:")
	for _, ex := range examples {
		pred, err := network.ProcessInputs(ex.Inputs, nil)
		if err != nil {
			klog.Exitf("%v", err)
		}
		fmt.Printf("Input: %v, Predicted: [%.4f %.4f], Target: %v\n",
			ex.Inputs[:2], pred[0], pred[1], ex.Targets)
	}
	fmt.Println(net.RenderWeights(network.GetWeights()))

	fmt.Println("\nSaving network to disk...")
	if err := network.Save("xor_network.gob"); err != nil {
		fmt.Printf("Error saving network: %v\n", err)
		return
	}
	fmt.Println("Network saved successfully!")
}
