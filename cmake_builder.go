package rebuild

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Build tool constants
const (
	cmakeProgram   = "cmake"
	ninjaProgram   = "ninja"
	ninjaGenerator = "Ninja"
	defaultConfig  = "Release"

	visualStudioPrefix = "Visual Studio"
	platformWindows    = "windows"

	// cmakeJSCompatVersion is reported to CMakeLists.txt files written for
	// cmake-js through CMAKE_JS_VERSION.
	cmakeJSCompatVersion = "6.3.2"
)

// runCommandFunc runs name with args in dir and returns combined output.
type runCommandFunc func(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error)

func execCommand(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = env
	return cmd.CombinedOutput()
}

// CMakeBuildSystem compiles a native module for an embedding-host runtime
// with cmake, following the conventions of cmake-js: runtime headers are
// passed through CMAKE_JS_INC and the module lands in <BuildDir>/<Config>.
type CMakeBuildSystem struct {
	opts Options
	run  runCommandFunc
}

// NewCMakeBuildSystem resolves opts and returns a build system for them.
//
// Defaults applied here: Arch (host architecture), SourceDir ("."),
// BuildDir (<SourceDir>/build) and Config (Release). Runtime and
// RuntimeVersion are left as given.
func NewCMakeBuildSystem(opts Options) (*CMakeBuildSystem, error) {
	resolved := opts.Clone()

	if resolved.Arch == "" {
		resolved.Arch = HostArch()
	}
	if resolved.SourceDir == "" {
		resolved.SourceDir = "."
	}
	if resolved.BuildDir == "" {
		resolved.BuildDir = filepath.Join(resolved.SourceDir, "build")
	}
	if resolved.Config == "" {
		resolved.Config = defaultConfig
	}
	if resolved.Parallel < 0 {
		return nil, BuildError(CodeInvalidConfig, "CMake setup", nil,
			fmt.Errorf("parallel must be >= 0, got %d", resolved.Parallel))
	}

	src, err := filepath.Abs(resolved.SourceDir)
	if err != nil {
		return nil, BuildError(CodeInvalidConfig, "CMake setup", nil, err)
	}
	build, err := filepath.Abs(resolved.BuildDir)
	if err != nil {
		return nil, BuildError(CodeInvalidConfig, "CMake setup", nil, err)
	}
	if err := checkBuildDir(src, build); err != nil {
		return nil, BuildError(CodeInvalidConfig, "CMake setup", nil, err)
	}
	resolved.SourceDir = src
	resolved.BuildDir = build

	if resolved.OutDir != "" {
		out, err := filepath.Abs(resolved.OutDir)
		if err != nil {
			return nil, BuildError(CodeInvalidConfig, "CMake setup", nil, err)
		}
		resolved.OutDir = out
	}

	return &CMakeBuildSystem{opts: resolved, run: execCommand}, nil
}

// checkBuildDir rejects a build directory that is, or contains, the source
// directory. Rebuild removes the build directory first.
func checkBuildDir(src, build string) error {
	rel, err := filepath.Rel(build, src)
	if err != nil {
		return nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return fmt.Errorf("build directory %s must not contain source directory %s", build, src)
}

// Name returns the build system name
func (b *CMakeBuildSystem) Name() string {
	return "CMake"
}

// Options returns the resolved options
func (b *CMakeBuildSystem) Options() *Options {
	return &b.opts
}

// RequiredTools lists the binaries a rebuild shells out to.
// Visual Studio generators locate MSVC themselves, so the compiler is only
// optional there.
func (b *CMakeBuildSystem) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{Name: cmakeProgram, Purpose: "CMake build system"},
		{Name: ninjaProgram, Optional: true, Purpose: "Ninja build tool"},
		{Name: "c++", Alternatives: []string{"g++", "clang++", "cl"}, Optional: b.usesVisualStudio(), Purpose: "C++ compiler"},
	}
}

// usesVisualStudio reports whether cmake will generate a Visual Studio
// solution: an explicit VS generator, or no generator on Windows.
func (b *CMakeBuildSystem) usesVisualStudio() bool {
	generator := b.generator()
	if strings.HasPrefix(generator, visualStudioPrefix) {
		return true
	}
	return generator == "" && runtime.GOOS == platformWindows
}

// CheckTools verifies the required tools are on PATH
func (b *CMakeBuildSystem) CheckTools() error {
	return CheckRequiredTools(b.RequiredTools())
}

// Rebuild wipes the build directory and runs configure → build → find
func (b *CMakeBuildSystem) Rebuild(ctx context.Context) (*BuildResult, error) {
	if err := b.CheckTools(); err != nil {
		return &BuildResult{Error: err}, err
	}
	if err := b.Clean(ctx); err != nil {
		failure := BuildError(CodeBuildFailed, "CMake clean", nil, err)
		return &BuildResult{Error: failure}, failure
	}

	return runCommonBuild(ctx, &b.opts, CommonBuildSteps{
		ConfigureFunc: b.configure,
		BuildFunc:     b.build,
		FindFunc:      b.find,
		InstallFunc:   b.install,
	})
}

// Clean removes the build directory
func (b *CMakeBuildSystem) Clean(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkBuildDir(b.opts.SourceDir, b.opts.BuildDir); err != nil {
		return err
	}
	return os.RemoveAll(b.opts.BuildDir)
}

// HeadersDir returns the runtime headers directory passed as CMAKE_JS_INC.
//
// When Options.HeadersDir is empty the cmake-js cache layout is used:
// $CMAKE_JS_HOME (default ~/.cmake-js)/<runtime>-<arch>/v<version>/include/node.
func (b *CMakeBuildSystem) HeadersDir() (string, error) {
	if b.opts.HeadersDir != "" {
		return b.opts.HeadersDir, nil
	}

	home := os.Getenv("CMAKE_JS_HOME")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		home = filepath.Join(userHome, ".cmake-js")
	}

	version := strings.TrimPrefix(b.opts.RuntimeVersion, "v")
	return filepath.Join(home, b.opts.Runtime+"-"+b.opts.Arch, "v"+version, "include", "node"), nil
}

// configureArgs builds the argument list for the configure step
func (b *CMakeBuildSystem) configureArgs(headersDir string) []string {
	opts := &b.opts
	args := []string{
		"-S", opts.SourceDir,
		"-B", opts.BuildDir,
		"-DCMAKE_BUILD_TYPE=" + opts.Config,
		"-DCMAKE_LIBRARY_OUTPUT_DIRECTORY=" + filepath.Join(opts.BuildDir, opts.Config),
		"-DCMAKE_JS_VERSION=" + cmakeJSCompatVersion,
		"-DCMAKE_JS_INC=" + headersDir,
		"-DNODE_RUNTIME=" + opts.Runtime,
		"-DNODE_RUNTIMEVERSION=" + strings.TrimPrefix(opts.RuntimeVersion, "v"),
		"-DNODE_ARCH=" + opts.Arch,
	}

	if generator := b.generator(); generator != "" {
		args = append(args, "-G", generator)
	}

	return append(args, opts.BuildArgs...)
}

// configure runs cmake to generate the build tree
func (b *CMakeBuildSystem) configure(ctx context.Context, opts *Options, result *BuildResult) error {
	if opts.Runtime == "" || opts.RuntimeVersion == "" {
		return BuildError(CodeInvalidConfig, "CMake configure", nil,
			fmt.Errorf("runtime and runtime version must be set (runtime=%q version=%q)", opts.Runtime, opts.RuntimeVersion))
	}

	headersDir, err := b.HeadersDir()
	if err != nil {
		return BuildError(CodeInvalidConfig, "CMake configure", nil, err)
	}
	if info, statErr := os.Stat(headersDir); statErr != nil || !info.IsDir() {
		return BuildError(CodeModuleNotFound, "CMake configure", nil,
			fmt.Errorf("%s %s headers not found at %s", opts.Runtime, opts.RuntimeVersion, headersDir))
	}

	if err := os.MkdirAll(opts.BuildDir, 0o755); err != nil {
		return BuildError(CodeBuildFailed, "CMake configure", nil, err)
	}

	args := b.configureArgs(headersDir)
	return b.runStep(ctx, "CMake configure", opts.SourceDir, args, result)
}

// build compiles the configured tree
func (b *CMakeBuildSystem) build(ctx context.Context, opts *Options, result *BuildResult) error {
	args := []string{"--build", opts.BuildDir, "--config", opts.Config}
	if opts.Parallel > 0 {
		args = append(args, "--parallel", fmt.Sprintf("%d", opts.Parallel))
	}
	return b.runStep(ctx, "CMake build", opts.SourceDir, args, result)
}

// find locates the compiled module; finding none counts as a missing module
func (b *CMakeBuildSystem) find(opts *Options) ([]string, error) {
	artifacts, err := findArtifacts(opts.BuildDir)
	if err != nil {
		return nil, BuildError(CodeBuildFailed, "artifact search", nil, err)
	}
	if len(artifacts) == 0 {
		return nil, BuildError(CodeModuleNotFound, "artifact search", nil,
			fmt.Errorf("no %s found under %s", artifactPattern, opts.BuildDir))
	}
	return artifacts, nil
}

func (b *CMakeBuildSystem) install(opts *Options, artifacts []string) ([]string, error) {
	staged, err := stageArtifacts(opts.BuildDir, opts.OutDir, artifacts)
	if err != nil {
		return staged, BuildError(CodeBuildFailed, "artifact staging", nil, err)
	}
	return staged, nil
}

// runStep runs one cmake invocation, appending its output to result and
// classifying a failure by that output.
func (b *CMakeBuildSystem) runStep(ctx context.Context, step, dir string, args []string, result *BuildResult) error {
	opts := &b.opts
	if opts.Verbose {
		result.Output = append(result.Output,
			fmt.Sprintf("Running: %s %s", cmakeProgram, strings.Join(args, " ")),
			fmt.Sprintf("Working directory: %s", dir))
	}

	output, err := b.run(ctx, dir, commandEnv(opts.Env), cmakeProgram, args...)
	lines := splitOutput(output)
	result.Output = append(result.Output, lines...)

	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if MatchesModuleMissing(lines) {
		return BuildError(CodeModuleNotFound, step, lines, err)
	}
	return BuildError(CodeBuildFailed, step, lines, err)
}

// generator returns the cmake generator; Ninja is preferred when installed
func (b *CMakeBuildSystem) generator() string {
	if b.opts.Generator != "" {
		return b.opts.Generator
	}
	if generator := os.Getenv("CMAKE_GENERATOR"); generator != "" {
		return generator
	}
	if CheckToolAvailable(ninjaProgram) == nil {
		return ninjaGenerator
	}
	return ""
}

// HostArch returns the host CPU architecture in Node naming.
func HostArch() string {
	return nodeArch(runtime.GOARCH)
}

func nodeArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x64"
	case "386":
		return "ia32"
	default:
		return goarch
	}
}
