// Package loss provides the error measures used by the training loop.
package loss

// Loss is a loss function together with the error term it feeds back to the output layer.
type Loss interface {
	// Forward computes the loss between predicted and true values.
	Forward(yPred, yTrue []float64) float64

	// BackwardInPlace writes the output error terms into terms.
	// The terms point in the direction the outputs should move.
	BackwardInPlace(yPred, yTrue, terms []float64)
}

// SquaredError is the per-example squared error, sum((y_true - y_pred)^2).
// The epoch mean over examples is the training MSE.
type SquaredError struct{}

// Forward computes sum((y_true - y_pred)^2)
func (SquaredError) Forward(yPred, yTrue []float64) float64 {
	n := len(yPred)
	if n != len(yTrue) {
		panic("SquaredError: prediction and target must have same length")
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue[i] - yPred[i]
		sum += diff * diff
	}
	return sum
}

// BackwardInPlace writes the raw error y_true - y_pred into terms.
// No activation derivative is applied here; callers that want one multiply it in.
func (SquaredError) BackwardInPlace(yPred, yTrue, terms []float64) {
	n := len(yPred)
	if n != len(yTrue) || n != len(terms) {
		panic("SquaredError: prediction, target and terms must have same length")
	}
	for i := 0; i < n; i++ {
		terms[i] = yTrue[i] - yPred[i]
	}
}
