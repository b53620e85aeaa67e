package net

import (
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// LoadCSV loads training examples from a CSV file of numbers.
// targetCols specifies the indices of columns used as targets, in that order.
// All other columns are used as inputs, in file order.
// hasHeader skips the first line if true.
// appendBias adds a constant 1.0 as the last input of every example.
func LoadCSV(filename string, targetCols []int, hasHeader bool, appendBias bool) ([]Example, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", filename)
	}
	defer file.Close()

	df := dataframe.ReadCSV(file,
		dataframe.HasHeader(hasHeader),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.Float))
	if df.Err != nil {
		return nil, errors.Wrapf(df.Err, "failed to read csv %s", filename)
	}
	if df.Nrow() == 0 {
		return nil, errors.Errorf("csv file %s has no data rows", filename)
	}
	if len(targetCols) == 0 {
		return nil, errors.Errorf("no target columns given for %s", filename)
	}

	numCols := df.Ncol()
	isTargetCol := make(map[int]bool, len(targetCols))
	for _, col := range targetCols {
		if col < 0 || col >= numCols {
			return nil, errors.Errorf("target column %d out of range, %s has %d columns", col, filename, numCols)
		}
		if isTargetCol[col] {
			return nil, errors.Errorf("target column %d given twice", col)
		}
		isTargetCol[col] = true
	}
	if numCols == len(targetCols) && !appendBias {
		return nil, errors.Errorf("%s has no input columns", filename)
	}

	numInputs := numCols - len(targetCols)
	if appendBias {
		numInputs++
	}
	examples := make([]Example, df.Nrow())
	for row := range examples {
		inputs := make([]float64, 0, numInputs)
		for col := 0; col < numCols; col++ {
			if isTargetCol[col] {
				continue
			}
			v, err := cellFloat(df, row, col)
			if err != nil {
				return nil, errors.WithMessage(err, filename)
			}
			inputs = append(inputs, v)
		}
		if appendBias {
			inputs = append(inputs, 1)
		}

		targets := make([]float64, len(targetCols))
		for i, col := range targetCols {
			v, err := cellFloat(df, row, col)
			if err != nil {
				return nil, errors.WithMessage(err, filename)
			}
			targets[i] = v
		}
		examples[row] = Example{Inputs: inputs, Targets: targets}
	}
	return examples, nil
}

func cellFloat(df dataframe.DataFrame, row, col int) (float64, error) {
	elem := df.Elem(row, col)
	if elem.IsNA() {
		return 0, errors.Errorf("value at row %d, col %d is not a number", row, col)
	}
	return elem.Float(), nil
}

// NormalizeInputs applies min-max normalization to every input column of
// examples, in place. Constant columns, such as the bias input, are left unchanged.
// Every example must have the same number of inputs; otherwise nothing is changed.
func NormalizeInputs(examples []Example) error {
	if len(examples) == 0 {
		return nil
	}

	numInputs := len(examples[0].Inputs)
	for i, ex := range examples {
		if len(ex.Inputs) != numInputs {
			return errors.Wrapf(ErrShape, "example #%d has %d inputs, example #0 has %d",
				i, len(ex.Inputs), numInputs)
		}
	}

	lo := append([]float64(nil), examples[0].Inputs...)
	hi := append([]float64(nil), examples[0].Inputs...)
	for _, ex := range examples {
		for i, val := range ex.Inputs {
			lo[i] = min(lo[i], val)
			hi[i] = max(hi[i], val)
		}
	}

	for _, ex := range examples {
		for i := range ex.Inputs {
			if diff := hi[i] - lo[i]; diff != 0 {
				ex.Inputs[i] = (ex.Inputs[i] - lo[i]) / diff
			}
		}
	}
	return nil
}

// Split splits examples in two based on the given ratio (0.0 to 1.0).
// The halves share storage with examples.
func Split(examples []Example, ratio float64) (train, test []Example) {
	if ratio <= 0 {
		return nil, examples
	}
	if ratio >= 1 {
		return examples, nil
	}
	splitIdx := int(float64(len(examples)) * ratio)
	return examples[:splitIdx], examples[splitIdx:]
}
