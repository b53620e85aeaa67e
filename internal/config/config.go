// Package config loads the YAML run files used by the backprop command.
package config

import (
	"bytes"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/FlavioCFOliveira/GoBackprop/internal/activations"
	"github.com/FlavioCFOliveira/GoBackprop/internal/net"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is a training run: the network to build, how to train it and on what.
type Config struct {
	Layers       []int       `yaml:"layers"`
	Inputs       int         `yaml:"inputs"`
	Activations  []string    `yaml:"activations"`
	LearningRate float64     `yaml:"learning_rate"`
	MaxEpochs    int         `yaml:"max_epochs"`
	Derivatives  string      `yaml:"derivatives"`
	Weights      net.Weights `yaml:"weights"`
	Examples     []Example   `yaml:"examples"`
	Data         *Data       `yaml:"data"`

	// dir is the directory relative data paths are resolved against.
	dir string
}

// Example is an inline training example.
type Example struct {
	Inputs  []float64 `yaml:"inputs"`
	Targets []float64 `yaml:"targets"`
}

// Data points to a CSV file of examples.
type Data struct {
	Path          string `yaml:"path"`
	TargetColumns []int  `yaml:"target_columns"`
	Header        bool   `yaml:"header"`
	AppendBias    bool   `yaml:"append_bias"`
	Normalize     bool   `yaml:"normalize"`

	// Holdout is the fraction of examples, taken from the end of the file,
	// kept out of training and only evaluated.
	Holdout float64 `yaml:"holdout"`
}

// Load reads and validates the run file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open config %s", path)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Parse parses and validates a run file held in memory.
func Parse(data []byte) (*Config, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads and validates a run file. Unknown fields are errors.
func Decode(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.Wrap(net.ErrConfig, "config is empty")
		}
		return nil, errors.Wrap(err, "failed to parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// invalid reports a bad field as "field: detail: invalid configuration".
func invalid(field, format string, args ...any) error {
	return errors.Wrapf(net.ErrConfig, field+": "+format, args...)
}

// Validate checks every field, reporting the first offending one.
// Architecture constraints are checked too, so a valid config always builds.
func (c *Config) Validate() error {
	if len(c.Layers) == 0 {
		return invalid("layers", "at least one layer is required")
	}
	if c.Inputs < 1 {
		return invalid("inputs", "must count the bias input, got %d", c.Inputs)
	}
	if len(c.Activations) != len(c.Layers) {
		return invalid("activations", "got %d for %d layers", len(c.Activations), len(c.Layers))
	}
	if _, err := activations.ParseAll(c.Activations); err != nil {
		return invalid("activations", "%v", err)
	}
	if !(c.LearningRate > 0) || math.IsInf(c.LearningRate, 0) {
		return invalid("learning_rate", "must be a positive number, got %g", c.LearningRate)
	}
	if c.MaxEpochs < 0 {
		return invalid("max_epochs", "must not be negative, got %d", c.MaxEpochs)
	}
	if _, err := net.ParseDerivativeMode(c.Derivatives); err != nil {
		return errors.WithMessage(err, "derivatives")
	}
	for i, ex := range c.Examples {
		if len(ex.Inputs) != c.Inputs {
			return invalid("examples", "example #%d has %d inputs, want %d (including bias)", i, len(ex.Inputs), c.Inputs)
		}
		if want := c.Layers[len(c.Layers)-1]; len(ex.Targets) != want {
			return invalid("examples", "example #%d has %d targets, want %d", i, len(ex.Targets), want)
		}
	}
	if c.Data != nil {
		if c.Data.Path == "" {
			return invalid("data.path", "is required")
		}
		if len(c.Data.TargetColumns) == 0 {
			return invalid("data.target_columns", "at least one target column is required")
		}
		if c.Data.Holdout < 0 || c.Data.Holdout >= 1 {
			return invalid("data.holdout", "must be in [0, 1), got %g", c.Data.Holdout)
		}
	}
	if _, err := c.Architecture(); err != nil {
		return errors.WithMessage(err, "layers")
	}
	return nil
}

// Architecture returns the network architecture described by the config.
func (c *Config) Architecture() (net.Architecture, error) {
	acts, err := activations.ParseAll(c.Activations)
	if err != nil {
		return net.Architecture{}, invalid("activations", "%v", err)
	}
	arch := net.Architecture{
		LayerSizes:  c.Layers,
		InputArity:  c.Inputs,
		Activations: acts,
	}
	return arch, arch.Validate()
}

// TrainConfig returns the training settings described by the config.
func (c *Config) TrainConfig() (net.TrainConfig, error) {
	mode, err := net.ParseDerivativeMode(c.Derivatives)
	if err != nil {
		return net.TrainConfig{}, err
	}
	return net.TrainConfig{MaxEpochs: c.MaxEpochs, Derivatives: mode}, nil
}

// NewNetwork builds the network described by the config, using the configured
// starting weights if there are any.
func (c *Config) NewNetwork(src rand.Source) (*net.Network, error) {
	arch, err := c.Architecture()
	if err != nil {
		return nil, err
	}
	n, err := net.New(arch, c.Weights, src)
	if err != nil {
		return nil, errors.WithMessage(err, "weights")
	}
	tc, err := c.TrainConfig()
	if err != nil {
		return nil, err
	}
	if err := n.Configure(tc); err != nil {
		return nil, err
	}
	return n, nil
}

// defaultTargetColumns assumes a data file laid out as the non-bias inputs
// followed by one column per output neuron.
func (c *Config) defaultTargetColumns() []int {
	outputs := c.Layers[len(c.Layers)-1]
	cols := make([]int, outputs)
	for i := range cols {
		cols[i] = c.Inputs - 1 + i
	}
	return cols
}

// LoadExamples returns the training and held-out examples of the run.
// dataPath, if not empty, replaces data.path; it is used as given, while
// data.path is relative to the config file. Inline examples are used when
// there is no data file.
func (c *Config) LoadExamples(dataPath string) (train, holdout []net.Example, err error) {
	data := c.Data
	if dataPath != "" {
		if data == nil {
			data = &Data{TargetColumns: c.defaultTargetColumns(), AppendBias: true}
		}
		override := *data
		override.Path = dataPath
		data = &override
	} else if data != nil && !filepath.IsAbs(data.Path) && c.dir != "" {
		resolved := *data
		resolved.Path = filepath.Join(c.dir, data.Path)
		data = &resolved
	}

	var examples []net.Example
	if data != nil {
		examples, err = net.LoadCSV(data.Path, data.TargetColumns, data.Header, data.AppendBias)
		if err != nil {
			return nil, nil, err
		}
		if data.Normalize {
			if err := net.NormalizeInputs(examples); err != nil {
				return nil, nil, err
			}
		}
	} else {
		examples = make([]net.Example, len(c.Examples))
		for i, ex := range c.Examples {
			examples[i] = net.Example{Inputs: ex.Inputs, Targets: ex.Targets}
		}
	}
	if len(examples) == 0 {
		return nil, nil, errors.Wrap(net.ErrNoExamples, "neither examples nor data given")
	}

	if data != nil && data.Holdout > 0 {
		train, holdout = net.Split(examples, 1-data.Holdout)
		return train, holdout, nil
	}
	return examples, nil, nil
}
