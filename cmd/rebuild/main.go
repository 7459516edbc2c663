package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/contriboss/rebuild-go"
)

var version = "dev"

var (
	okStyle   = color.New(color.FgGreen, color.Bold)
	failStyle = color.New(color.FgRed, color.Bold)
	keyStyle  = color.New(color.FgCyan)
)

// CLI is the rebuild command line. Runtime flags override the
// npm_config_wcjs_* environment variables; everything else overrides the
// config file.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"rebuild.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Runtime        string `help:"Embedding-host runtime (default electron)" placeholder:"NAME"`
	RuntimeVersion string `help:"Runtime version to compile against (default 11.0.0)" placeholder:"VERSION"`
	Arch           string `help:"Target CPU architecture (default host)" placeholder:"ARCH"`

	SourceDir  string `short:"s" help:"Directory containing CMakeLists.txt" placeholder:"DIR"`
	BuildDir   string `short:"b" help:"CMake build directory" placeholder:"DIR"`
	OutDir     string `short:"o" help:"Copy built modules into this directory" placeholder:"DIR"`
	HeadersDir string `help:"Runtime headers directory (default cmake-js cache)" placeholder:"DIR"`
	Parallel   int    `short:"j" help:"Parallel build jobs"`

	BuildConfig string `help:"CMake build configuration (default Release)" placeholder:"CONFIG"`
	Generator   string `short:"G" help:"CMake generator (default Ninja when installed)" placeholder:"NAME"`

	DryRun bool `help:"Print the resolved configuration without building"`

	logger *slog.Logger
	stdout io.Writer
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	c.logger = newLogger(os.Stderr, c.Verbose)
	slog.SetDefault(c.logger)
	return nil
}

func main() {
	cli := &CLI{stdout: os.Stdout}
	parser := kong.Parse(cli,
		kong.Name("rebuild"),
		kong.Description("Rebuild a CMake native module for an embedding-host runtime, retrying while dependencies are missing."),
		kong.Vars{"version": version},
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cli.Run(ctx, os.LookupEnv)
	cancel()
	parser.FatalIfErrorf(err)
}

// Run resolves configuration and drives the invoker.
func (c *CLI) Run(ctx context.Context, lookup rebuild.LookupFunc) error {
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.stdout == nil {
		c.stdout = os.Stdout
	}

	fileCfg, err := rebuild.LoadFileConfig(c.Config)
	if err != nil {
		return err
	}
	policy, err := fileCfg.Policy()
	if err != nil {
		return fmt.Errorf("config %s: %w", c.Config, err)
	}

	opts := c.options(lookup)
	fileCfg.ApplyTo(&opts)

	inv := rebuild.NewInvoker(rebuild.CMakeFactory)
	inv.Policy = policy
	inv.Logger = c.logger

	if c.DryRun {
		resolved, err := inv.Resolve(opts)
		if err != nil {
			return err
		}
		c.printOptions(resolved, policy)
		return nil
	}

	result, err := inv.Run(ctx, opts)
	if err != nil {
		_, _ = failStyle.Fprintln(c.stdout, "✗ rebuild failed")
		return err
	}

	_, _ = okStyle.Fprintf(c.stdout, "✓ rebuilt %d module(s)\n", len(result.Artifacts))
	for _, a := range result.Artifacts {
		fmt.Fprintf(c.stdout, "  %s\n", a)
	}
	for _, s := range result.Staged {
		fmt.Fprintf(c.stdout, "  → %s\n", s)
	}
	return nil
}

// options merges environment overrides with flags; flags win.
func (c *CLI) options(lookup rebuild.LookupFunc) rebuild.Options {
	opts := rebuild.OptionsFromEnv(lookup)
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&opts.Runtime, c.Runtime)
	override(&opts.RuntimeVersion, c.RuntimeVersion)
	override(&opts.Arch, c.Arch)

	opts.SourceDir = c.SourceDir
	opts.BuildDir = c.BuildDir
	opts.OutDir = c.OutDir
	opts.HeadersDir = c.HeadersDir
	opts.Parallel = c.Parallel
	opts.Config = c.BuildConfig
	opts.Generator = c.Generator
	opts.Verbose = c.Verbose
	return opts
}

func (c *CLI) printOptions(opts rebuild.Options, policy rebuild.Policy) {
	row := func(k string, v any) {
		_, _ = keyStyle.Fprintf(c.stdout, "%-16s", k)
		fmt.Fprintf(c.stdout, "%v\n", v)
	}
	row("runtime", opts.Runtime)
	row("runtime_version", opts.RuntimeVersion)
	row("arch", opts.Arch)
	row("source_dir", opts.SourceDir)
	row("build_dir", opts.BuildDir)
	if opts.OutDir != "" {
		row("out_dir", opts.OutDir)
	}
	row("config", opts.Config)
	row("max_attempts", policy.MaxAttempts())
	row("retry_delay", policy.Delay)
}
