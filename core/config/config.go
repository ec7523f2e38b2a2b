// Package config holds the shell's tunable settings.
package config

import (
	_ "embed"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"

	"github.com/mkarren/gush/core/parse"
)

//go:embed default/config.yaml
var defaultConfigData []byte

// Configuration controls the interactive shell. All fields have working
// defaults; a config file only needs the keys it wants to change.
type Configuration struct {
	// Prompt is printed before each line is read.
	Prompt string `json:"prompt" validate:"required"`
	// MaxLineLen bounds a single command line in bytes.
	MaxLineLen int `json:"max_line_len" validate:"gte=64"`
	// MaxTokens bounds the number of lexemes in a line.
	MaxTokens int `json:"max_tokens" validate:"gte=2"`
	// MaxPipeline bounds the number of commands in one pipeline.
	MaxPipeline int `json:"max_pipeline" validate:"gte=1,lte=1024"`
	// Color renders the prompt with terminal colors.
	Color bool `json:"color"`
	// EventLog is the path of a newline-delimited JSON event log. Empty
	// disables event logging.
	EventLog string `json:"event_log"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// Limits returns the parser limits the configuration implies.
func (c *Configuration) Limits() parse.Limits {
	return parse.Limits{MaxTokens: c.MaxTokens, MaxPipeline: c.MaxPipeline}
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
