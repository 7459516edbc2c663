package rebuild

import "context"

// runCommonBuild executes the configure → build → find (→ install) sequence.
//
// # Process Flow
//
//  1. Create empty BuildResult
//  2. Call ConfigureFunc to generate the build tree
//  3. Call BuildFunc to compile
//  4. Call FindFunc to locate compiled modules
//  5. Call InstallFunc, if set, to stage them
//  6. Return BuildResult with Success=true
//
// # Error Handling
//
// If any step returns an error:
//   - result.Error is set to the error
//   - result.Success remains false
//   - The BuildResult and error are returned
//   - Subsequent steps are not executed
//
// Step errors are returned as-is so that a *BuildFailure keeps its code for
// Classify.
func runCommonBuild(ctx context.Context, opts *Options, steps CommonBuildSteps) (*BuildResult, error) {
	result := &BuildResult{
		Success: false,
		Output:  []string{},
	}

	if err := steps.ConfigureFunc(ctx, opts, result); err != nil {
		result.Error = err
		return result, err
	}

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result, err
	}

	if err := steps.BuildFunc(ctx, opts, result); err != nil {
		result.Error = err
		return result, err
	}

	artifacts, err := steps.FindFunc(opts)
	if err != nil {
		result.Error = err
		return result, err
	}
	result.Artifacts = artifacts

	if steps.InstallFunc != nil {
		staged, err := steps.InstallFunc(opts, artifacts)
		if err != nil {
			result.Error = err
			return result, err
		}
		result.Staged = staged
	}

	result.Success = true
	return result, nil
}
