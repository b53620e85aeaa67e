package net

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// RevertMarker is the row WeightsLogger writes between the weights of a
// reverted epoch and the weights they were restored to.
const RevertMarker = "# revert"

// csvSink is an append-or-truncate CSV file shared by the loggers.
type csvSink struct {
	file   *os.File
	writer *csv.Writer
}

func openCSVSink(filename string, appendMode bool) (*csvSink, bool, error) {
	mode := os.O_CREATE | os.O_WRONLY
	if appendMode {
		mode |= os.O_APPEND
	} else {
		mode |= os.O_TRUNC
	}
	file, err := os.OpenFile(filename, mode, 0644)
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to open %s", filename)
	}
	empty := true
	if info, err := file.Stat(); err == nil {
		empty = info.Size() == 0
	}
	return &csvSink{file: file, writer: csv.NewWriter(file)}, empty, nil
}

func (s *csvSink) write(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return err
	}
	s.writer.Flush()
	return s.writer.Error()
}

func (s *csvSink) close() error {
	s.writer.Flush()
	err := s.writer.Error()
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// CSVLogger writes the error of every epoch to a CSV file with the header
// "epoch,mse". Values are written with full precision.
type CSVLogger struct {
	BaseCallback
	Filename string
	Append   bool

	sink *csvSink
}

// NewCSVLogger creates a new CSVLogger.
func NewCSVLogger(filename string, append bool) *CSVLogger {
	return &CSVLogger{
		Filename: filename,
		Append:   append,
	}
}

func (c *CSVLogger) OnTrainBegin(w Weights) {
	sink, empty, err := openCSVSink(c.Filename, c.Append)
	if err != nil {
		klog.Warningf("CSVLogger: %v", err)
		return
	}
	c.sink = sink
	if empty || !c.Append {
		c.writeRecord([]string{"epoch", "mse"})
	}
}

func (c *CSVLogger) OnEpochEnd(epoch int, mse float64, w Weights) {
	c.writeRecord([]string{strconv.Itoa(epoch), formatFloat(mse)})
}

func (c *CSVLogger) OnTrainEnd(epochs int, reason StopReason, w Weights) {
	if c.sink == nil {
		return
	}
	if err := c.sink.close(); err != nil {
		klog.Warningf("CSVLogger: failed to close %s: %v", c.Filename, err)
	}
	c.sink = nil
}

func (c *CSVLogger) writeRecord(record []string) {
	if c.sink == nil {
		return
	}
	if err := c.sink.write(record); err != nil {
		klog.Warningf("CSVLogger: failed to write record: %v", err)
	}
}

// WeightsLogger writes weight snapshots to a CSV file, one row per neuron:
// "epoch,layer,neuron,w0,...". The epoch column counts the epochs completed
// when the weights were recorded.
//
// Weights are written at the start of every epoch and after the last one.
// When an epoch is reverted its weights are written, then a RevertMarker row,
// then the weights that were restored.
type WeightsLogger struct {
	BaseCallback
	Filename string

	sink    *csvSink
	lastEnd Weights
}

// NewWeightsLogger creates a new WeightsLogger.
func NewWeightsLogger(filename string) *WeightsLogger {
	return &WeightsLogger{Filename: filename}
}

func (c *WeightsLogger) OnTrainBegin(w Weights) {
	sink, _, err := openCSVSink(c.Filename, false)
	if err != nil {
		klog.Warningf("WeightsLogger: %v", err)
		return
	}
	c.sink = sink
	c.lastEnd = nil

	header := []string{"epoch", "layer", "neuron"}
	if len(w) > 0 && len(w[0]) > 0 {
		for k := range w[0][0] {
			header = append(header, "w"+strconv.Itoa(k))
		}
	}
	c.writeRecord(header)
}

func (c *WeightsLogger) OnEpochBegin(epoch int, w Weights) {
	c.writeWeights(epoch-1, w)
}

func (c *WeightsLogger) OnEpochEnd(epoch int, mse float64, w Weights) {
	c.lastEnd = w
}

func (c *WeightsLogger) OnRevert(epoch int, restored Weights) {
	c.writeWeights(epoch, c.lastEnd)
	c.writeRecord([]string{RevertMarker})
	c.writeWeights(epoch-1, restored)
}

func (c *WeightsLogger) OnTrainEnd(epochs int, reason StopReason, w Weights) {
	if c.sink == nil {
		return
	}
	if !reason.Reverted() {
		c.writeWeights(epochs, w)
	}
	if err := c.sink.close(); err != nil {
		klog.Warningf("WeightsLogger: failed to close %s: %v", c.Filename, err)
	}
	c.sink = nil
	c.lastEnd = nil
}

func (c *WeightsLogger) writeWeights(epoch int, w Weights) {
	for i, l := range w {
		for j, neuron := range l {
			record := make([]string, 0, 3+len(neuron))
			record = append(record, strconv.Itoa(epoch), strconv.Itoa(i), strconv.Itoa(j))
			for _, v := range neuron {
				record = append(record, formatFloat(v))
			}
			c.writeRecord(record)
		}
	}
}

func (c *WeightsLogger) writeRecord(record []string) {
	if c.sink == nil {
		return
	}
	if err := c.sink.write(record); err != nil {
		klog.Warningf("WeightsLogger: failed to write record: %v", err)
	}
}
