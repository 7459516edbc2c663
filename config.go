package rebuild

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read by the rebuild command when present.
const DefaultConfigFile = "rebuild.yaml"

// FileConfig is the optional project configuration file.
//
//	source_dir: .
//	build_dir: build
//	out_dir: lib
//	generator: Ninja
//	config: Release
//	parallel: 4
//	build_args: ["-DWITH_TESTS=OFF"]
//	env:
//	  CXXFLAGS: -O2
//	retry:
//	  max_retries: 5
//	  delay: 2s
//
// The runtime fields are deliberately absent: they come from the environment
// or command line, with the invoker defaults behind them.
type FileConfig struct {
	SourceDir  string            `yaml:"source_dir"`
	BuildDir   string            `yaml:"build_dir"`
	OutDir     string            `yaml:"out_dir"`
	HeadersDir string            `yaml:"headers_dir"`
	Generator  string            `yaml:"generator"`
	Config     string            `yaml:"config"`
	Parallel   int               `yaml:"parallel"`
	BuildArgs  []string          `yaml:"build_args"`
	Env        map[string]string `yaml:"env"`
	Retry      RetryConfig       `yaml:"retry"`
}

// RetryConfig overrides the default Policy. Unset fields keep the defaults.
type RetryConfig struct {
	MaxRetries *int   `yaml:"max_retries"`
	Delay      string `yaml:"delay"`
}

// LoadFileConfig reads path. A missing file yields an empty config.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &FileConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyTo copies every set field into opts, leaving fields opts already has
// untouched. Env entries are merged the same way.
func (c *FileConfig) ApplyTo(opts *Options) {
	setIfEmpty := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	setIfEmpty(&opts.SourceDir, c.SourceDir)
	setIfEmpty(&opts.BuildDir, c.BuildDir)
	setIfEmpty(&opts.OutDir, c.OutDir)
	setIfEmpty(&opts.HeadersDir, c.HeadersDir)
	setIfEmpty(&opts.Generator, c.Generator)
	setIfEmpty(&opts.Config, c.Config)

	if opts.Parallel == 0 {
		opts.Parallel = c.Parallel
	}
	if len(opts.BuildArgs) == 0 && len(c.BuildArgs) > 0 {
		opts.BuildArgs = append([]string(nil), c.BuildArgs...)
	}
	if len(c.Env) > 0 {
		if opts.Env == nil {
			opts.Env = make(map[string]string, len(c.Env))
		}
		for k, v := range c.Env {
			if _, ok := opts.Env[k]; !ok {
				opts.Env[k] = v
			}
		}
	}
}

// Policy returns the retry policy described by the file.
func (c *FileConfig) Policy() (Policy, error) {
	p := DefaultPolicy()
	if c.Retry.MaxRetries != nil {
		p.MaxRetries = *c.Retry.MaxRetries
	}
	if c.Retry.Delay != "" {
		d, err := time.ParseDuration(c.Retry.Delay)
		if err != nil {
			return p, fmt.Errorf("retry.delay: %w", err)
		}
		p.Delay = d
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("retry: %w", err)
	}
	return p, nil
}
