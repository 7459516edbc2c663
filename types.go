package rebuild

import "context"

// BuildResult contains the output and status of a rebuild.
//
// After a rebuild completes, this structure provides:
//   - Success status indicating if the rebuild completed without errors
//   - Output lines captured from cmake (stdout/stderr)
//   - Artifacts: compiled native modules (.node) relative to the build directory
//   - Staged: copies of the artifacts placed in Options.OutDir, if set
type BuildResult struct {
	Success   bool     // True if the rebuild completed successfully
	Output    []string // Lines of output from the build tools
	Artifacts []string // Built modules, relative to BuildDir
	Staged    []string // Absolute paths of the artifacts in OutDir
	Error     error    // Error if the rebuild failed, nil otherwise
}

// Options configures a build system.
//
// Target runtime:
//   - Runtime: embedding-host runtime identifier (electron, node, nw)
//   - RuntimeVersion: version of that runtime to compile against
//   - Arch: target CPU architecture in Node naming (x64, ia32, arm64)
//
// Runtime and RuntimeVersion are left empty by NewCMakeBuildSystem; the
// Invoker fills them in after construction. Arch is defaulted by the build
// system itself to the host architecture.
//
// Source paths:
//   - SourceDir: directory containing CMakeLists.txt
//   - BuildDir: cmake binary directory (wiped on every rebuild)
//   - OutDir: optional directory the built modules are copied to
//   - HeadersDir: optional runtime headers directory; resolved from the
//     cmake-js cache layout when empty
type Options struct {
	Runtime        string
	RuntimeVersion string
	Arch           string

	SourceDir  string
	BuildDir   string
	OutDir     string
	HeadersDir string

	Generator string            // cmake -G value; Ninja when available, else cmake's default
	Config    string            // Release or Debug
	BuildArgs []string          // Extra arguments for the configure step
	Env       map[string]string // Extra environment for every cmake invocation
	Parallel  int               // cmake --build --parallel N (0 = cmake default)
	Verbose   bool
}

// Clone returns a deep copy of the options.
func (o Options) Clone() Options {
	c := o
	if o.BuildArgs != nil {
		c.BuildArgs = append([]string(nil), o.BuildArgs...)
	}
	if o.Env != nil {
		c.Env = make(map[string]string, len(o.Env))
		for k, v := range o.Env {
			c.Env[k] = v
		}
	}
	return c
}

// CommonBuildSteps defines the configure → build → find pattern a build
// system runs on every rebuild, with an optional install step for staging
// the located artifacts.
type CommonBuildSteps struct {
	// ConfigureFunc generates the build tree (cmake -B ...)
	ConfigureFunc func(ctx context.Context, opts *Options, result *BuildResult) error

	// BuildFunc compiles the module (cmake --build ...)
	BuildFunc func(ctx context.Context, opts *Options, result *BuildResult) error

	// FindFunc locates the compiled modules after the build completes
	FindFunc func(opts *Options) ([]string, error)

	// InstallFunc copies located modules to their destination. Optional.
	InstallFunc func(opts *Options, artifacts []string) ([]string, error)
}
