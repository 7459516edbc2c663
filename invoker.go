package rebuild

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Defaults applied after construction when the build system leaves the
// runtime unset.
const (
	DefaultRuntime        = "electron"
	DefaultRuntimeVersion = "11.0.0"
)

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// RetryHook is called before each wait. attempt is the attempt that just
// failed (1-based).
type RetryHook func(attempt int, delay time.Duration, err error)

// Invoker runs a build system, retrying while it reports CodeModuleNotFound.
//
// # Usage
//
//	inv := rebuild.NewInvoker(rebuild.CMakeFactory)
//	result, err := inv.Run(ctx, rebuild.OptionsFromEnv(os.LookupEnv))
//
// Every attempt constructs a fresh build system from the same options and
// re-applies DefaultRuntime and DefaultRuntimeVersion. Success or a
// non-retryable failure ends the run at once; a retryable failure is retried
// after Policy.Delay until Policy.MaxRetries retries have been spent, at which
// point the last failure is returned unmodified.
type Invoker struct {
	NewBuildSystem Factory
	Policy         Policy
	Logger         *slog.Logger

	// Wait defaults to a context-aware timer.
	Wait WaitFunc

	// OnRetry is optional.
	OnRetry RetryHook
}

// NewInvoker returns an Invoker using factory and the default policy.
func NewInvoker(factory Factory) *Invoker {
	return &Invoker{
		NewBuildSystem: factory,
		Policy:         DefaultPolicy(),
	}
}

// retryState is the only mutable state of a run.
type retryState struct {
	attempt int // attempts started
	retries int // retryable failures absorbed so far
}

// Run performs the rebuild and returns the result of the last attempt.
func (inv *Invoker) Run(ctx context.Context, opts Options) (*BuildResult, error) {
	if inv.NewBuildSystem == nil {
		return nil, BuildError(CodeInvalidConfig, "invoker setup", nil, errors.New("no build system factory"))
	}
	if err := inv.Policy.Validate(); err != nil {
		return nil, BuildError(CodeInvalidConfig, "invoker setup", nil, err)
	}

	logger := inv.logger().With("run_id", uuid.NewString())
	state := retryState{}

	for {
		state.attempt++
		result, err := inv.attempt(ctx, logger, opts, state.attempt)

		switch Classify(err) {
		case OutcomeSucceeded:
			logger.Info("Rebuild succeeded", "attempt", state.attempt, "artifacts", artifactsOf(result))
			return result, nil
		case OutcomeFatal:
			logger.Error("Rebuild failed", "attempt", state.attempt, "error", err)
			return result, err
		}

		if state.retries >= inv.Policy.MaxRetries {
			logger.Error("Rebuild failed, retries exhausted",
				"attempt", state.attempt, "max_retries", inv.Policy.MaxRetries, "error", err)
			return result, err
		}
		state.retries++

		delay := inv.Policy.Delay
		logger.Warn("Module not found, retrying",
			"attempt", state.attempt, "retry", state.retries, "delay", delay, "error", err)
		if inv.OnRetry != nil {
			inv.OnRetry(state.attempt, delay, err)
		}

		if waitErr := inv.wait(ctx, delay); waitErr != nil {
			return result, fmt.Errorf("rebuild canceled after %d attempts: %w", state.attempt, errors.Join(waitErr, err))
		}
	}
}

// Resolve constructs a build system for opts and returns its configuration
// with the runtime defaults applied, without building.
func (inv *Invoker) Resolve(opts Options) (Options, error) {
	if inv.NewBuildSystem == nil {
		return Options{}, BuildError(CodeInvalidConfig, "invoker setup", nil, errors.New("no build system factory"))
	}
	system, err := inv.NewBuildSystem(opts)
	if err != nil {
		return Options{}, err
	}
	applyRuntimeDefaults(system.Options())
	return system.Options().Clone(), nil
}

func (inv *Invoker) attempt(ctx context.Context, logger *slog.Logger, opts Options, n int) (*BuildResult, error) {
	system, err := inv.NewBuildSystem(opts.Clone())
	if err != nil {
		return nil, err
	}

	resolved := system.Options()
	applyRuntimeDefaults(resolved)

	logger.Info("Starting rebuild",
		"attempt", n,
		"build_system", system.Name(),
		"runtime", resolved.Runtime,
		"runtime_version", resolved.RuntimeVersion,
		"arch", resolved.Arch)

	return system.Rebuild(ctx)
}

// applyRuntimeDefaults fills the two fields build systems leave unset.
// Arch is intentionally not defaulted here.
func applyRuntimeDefaults(opts *Options) {
	if opts.Runtime == "" {
		opts.Runtime = DefaultRuntime
	}
	if opts.RuntimeVersion == "" {
		opts.RuntimeVersion = DefaultRuntimeVersion
	}
}

func (inv *Invoker) logger() *slog.Logger {
	if inv.Logger != nil {
		return inv.Logger
	}
	return slog.Default()
}

func (inv *Invoker) wait(ctx context.Context, d time.Duration) error {
	if inv.Wait != nil {
		return inv.Wait(ctx, d)
	}
	return sleepContext(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func artifactsOf(result *BuildResult) []string {
	if result == nil {
		return nil
	}
	return result.Artifacts
}
