package rebuild

import "context"

// BuildSystem is the client the Invoker drives for each rebuild attempt.
//
// A BuildSystem is constructed from Options by a Factory, applies its own
// internal defaults, and exposes the resolved configuration back through
// Options so the caller can fill in anything it left unset before calling
// Rebuild.
//
// # Example Implementation
//
//	type MyBuildSystem struct{ opts Options }
//
//	func (b *MyBuildSystem) Name() string       { return "MyBuild" }
//	func (b *MyBuildSystem) Options() *Options  { return &b.opts }
//
//	func (b *MyBuildSystem) Rebuild(ctx context.Context) (*BuildResult, error) {
//	    // clean, configure, compile
//	    return &BuildResult{Success: true}, nil
//	}
//
//	func (b *MyBuildSystem) Clean(ctx context.Context) error { return nil }
//
// # Failures
//
// Rebuild reports failures as *BuildFailure. A failure whose Code is
// CodeModuleNotFound tells the Invoker the attempt may succeed later; every
// other code is final.
//
// # Thread Safety
//
// A BuildSystem instance serves a single attempt and is not shared.
type BuildSystem interface {
	// Name returns the human-readable name of this build system.
	//
	// This name is used in error messages and logs.
	Name() string

	// Options returns the resolved configuration.
	//
	// The returned pointer is live: changes made before Rebuild is called
	// take effect for that rebuild.
	Options() *Options

	// Rebuild cleans the build tree and compiles the module from scratch.
	//
	// Returns:
	//   - BuildResult with Success=true and Artifacts on success
	//   - BuildResult with Success=false and a *BuildFailure on failure
	Rebuild(ctx context.Context) (*BuildResult, error)

	// Clean removes build artifacts.
	Clean(ctx context.Context) error
}

// Factory constructs a BuildSystem for one attempt.
type Factory func(opts Options) (BuildSystem, error)

// CMakeFactory is the Factory for the cmake-based build system.
func CMakeFactory(opts Options) (BuildSystem, error) {
	b, err := NewCMakeBuildSystem(opts)
	if err != nil {
		return nil, err
	}
	return b, nil
}
