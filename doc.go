// Package rebuild compiles CMake-based native modules for an embedding-host
// runtime (Electron, Node.js, NW.js) and retries the build while the
// dependencies it needs are still missing.
//
// # Basic Usage
//
// Read the runtime overrides from the environment and run the invoker:
//
//	inv := rebuild.NewInvoker(rebuild.CMakeFactory)
//
//	opts := rebuild.OptionsFromEnv(os.LookupEnv)
//	opts.SourceDir = "/path/to/module"
//
//	result, err := inv.Run(ctx, opts)
//
// # Configuration
//
// Three optional environment variables select the target:
//
//	npm_config_wcjs_runtime          runtime identifier (default "electron")
//	npm_config_wcjs_runtime_version  runtime version (default "11.0.0")
//	npm_config_wcjs_arch             CPU architecture (default: host)
//
// The runtime defaults are applied by the Invoker after the build system has
// been constructed; the architecture default belongs to the build system.
//
// # Retries
//
// A rebuild failing with CodeModuleNotFound is retried up to five times, two
// seconds apart, for six attempts in total. Any other failure, and the sixth
// module-not-found failure, is returned as-is.
//
//	Idle → Attempting → Succeeded
//	                  → FailedRetryable → (2s) → Attempting
//	                  → FailedFatal
//
// # Architecture
//
//	Invoker
//	└── Factory → BuildSystem
//	              └── CMakeBuildSystem (configure → build → find → stage)
//
// # Requirements
//
// Requires Go 1.25 or later and cmake on PATH. Ninja is used when installed.
package rebuild
