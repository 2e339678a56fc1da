// Package config defines the pipeline configuration and its loading hooks.
//
// Conventions:
//   - New() returns the built-in defaults; Load layers a file and env vars on top.
//   - The Config is passed explicitly to the pipeline, never looked up globally.
//   - Errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"strings"

	"github.com/okian/survival/internal/domain/forest"
)

// Group names one value of the grouping column whose survival rate is reported.
type Group struct {
	// Name is the rate key, e.g. "women_survival_rate".
	Name string `koanf:"name"`

	// Value is the cell value selecting the group, e.g. "female".
	Value string `koanf:"value"`

	// Label is the human-readable caption printed with the rate.
	Label string `koanf:"label"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches the log handler to JSON output.
	LogJSON bool `koanf:"log_json"`

	// TrainPath and TestPath locate the labelled and unlabelled passenger files.
	TrainPath string `koanf:"train_path"`
	TestPath  string `koanf:"test_path"`

	// OutputPath is where the submission file is written.
	OutputPath string `koanf:"output_path"`

	// MetricsFile, when set, receives the run metrics in textfile format.
	MetricsFile string `koanf:"metrics_file"`

	// IDColumn is copied from the test data into the submission.
	IDColumn string `koanf:"id_column"`

	// LabelColumn holds the 0/1 outcome.
	LabelColumn string `koanf:"label_column"`

	// Features are the columns fed to the model.
	Features []string `koanf:"features"`

	// GroupColumn and Groups drive the exploratory survival rates.
	GroupColumn string  `koanf:"group_column"`
	Groups      []Group `koanf:"groups"`

	// Forest hyperparameters.
	TreeCount       int   `koanf:"tree_count"`
	MaxDepth        int   `koanf:"max_depth"`
	RandomState     int64 `koanf:"random_state"`
	MinSamplesSplit int   `koanf:"min_samples_split"`
	MaxFeatures     int   `koanf:"max_features"`
	Bootstrap       bool  `koanf:"bootstrap"`
}

// New creates a Config holding the built-in defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		TrainPath:   "titanic/train.csv",
		TestPath:    "titanic/test.csv",
		OutputPath:  "output/submission.csv",
		IDColumn:    "PassengerId",
		LabelColumn: "Survived",
		Features:    []string{"Pclass", "Sex", "SibSp", "Parch"},
		GroupColumn: "Sex",
		Groups: []Group{
			{Name: "women_survival_rate", Value: "female", Label: "Women survival rate"},
			{Name: "men_survival_rate", Value: "male", Label: "Men survival rate"},
		},
		TreeCount:       forest.DefaultTreeCount,
		MaxDepth:        forest.DefaultMaxDepth,
		RandomState:     forest.DefaultRandomState,
		MinSamplesSplit: forest.DefaultMinSamplesSplit,
		Bootstrap:       true,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	required := []struct{ key, val string }{
		{"train_path", c.TrainPath},
		{"test_path", c.TestPath},
		{"output_path", c.OutputPath},
		{"id_column", c.IDColumn},
		{"label_column", c.LabelColumn},
	}
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidConfig, r.key)
		}
	}
	if len(c.Features) == 0 {
		return fmt.Errorf("%w: features must not be empty", ErrInvalidConfig)
	}
	for _, f := range c.Features {
		if f == c.LabelColumn {
			return fmt.Errorf("%w: label column %q listed as a feature", ErrInvalidConfig, f)
		}
	}
	if len(c.Groups) > 0 && c.GroupColumn == "" {
		return fmt.Errorf("%w: group_column must be set when groups are", ErrInvalidConfig)
	}
	for i, g := range c.Groups {
		if g.Name == "" {
			return fmt.Errorf("%w: groups[%d] has no name", ErrInvalidConfig, i)
		}
	}
	if err := c.ForestParams().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ForestParams returns the model hyperparameters.
func (c *Config) ForestParams() forest.Params {
	return forest.Params{
		TreeCount:       c.TreeCount,
		MaxDepth:        c.MaxDepth,
		RandomState:     c.RandomState,
		MinSamplesSplit: c.MinSamplesSplit,
		MaxFeatures:     c.MaxFeatures,
		Bootstrap:       c.Bootstrap,
	}
}
