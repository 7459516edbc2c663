package rebuild

import (
	"fmt"
	"os/exec"
	"strings"
)

// lookPath is swapped out in tests.
var lookPath = exec.LookPath

// ToolChecker is implemented by build systems that depend on external tools.
//
// # Consumer Usage
//
// Check tools before building:
//
//	if checker, ok := system.(ToolChecker); ok {
//	    if err := checker.CheckTools(); err != nil {
//	        return fmt.Errorf("build tools missing: %w", err)
//	    }
//	}
type ToolChecker interface {
	// RequiredTools returns the list of tools this build system needs.
	RequiredTools() []ToolRequirement

	// CheckTools verifies that all required tools are available.
	//
	// Returns nil if all required tools are found, or a *BuildFailure with
	// CodeToolMissing naming the missing ones. Optional tools never fail.
	CheckTools() error
}

// ToolRequirement describes a build tool dependency.
//
// Tool with alternatives:
//
//	ToolRequirement{
//	    Name:         "c++",
//	    Alternatives: []string{"g++", "clang++", "cl"},
//	    Purpose:      "C++ compiler",
//	}
type ToolRequirement struct {
	// Name is the primary tool binary name (e.g., "cmake").
	Name string

	// Alternatives can satisfy the requirement when Name is absent.
	Alternatives []string

	// Optional tools are reported by ToolAvailable but never fail CheckRequiredTools.
	Optional bool

	// Purpose is a human-readable description of why this tool is needed.
	Purpose string
}

// CheckToolAvailable checks if a tool is available in the system PATH.
func CheckToolAvailable(tool string) error {
	if _, err := lookPath(tool); err != nil {
		return fmt.Errorf("%s not found in PATH", tool)
	}
	return nil
}

// ToolAvailable reports whether the requirement, or one of its
// alternatives, is on PATH.
func ToolAvailable(req ToolRequirement) bool {
	if CheckToolAvailable(req.Name) == nil {
		return true
	}
	for _, alt := range req.Alternatives {
		if CheckToolAvailable(alt) == nil {
			return true
		}
	}
	return false
}

// CheckRequiredTools verifies all required tools are available.
//
// # Error Format
//
// Single missing tool:
//
//	[TOOL_MISSING] tool check failed: cmake (CMake build system) not found in PATH
//
// Multiple missing tools:
//
//	[TOOL_MISSING] tool check failed: missing required tools: cmake (CMake build system), c++ (C++ compiler)
func CheckRequiredTools(requirements []ToolRequirement) error {
	var missingTools []string

	for _, req := range requirements {
		if req.Optional || ToolAvailable(req) {
			continue
		}
		if req.Purpose != "" {
			missingTools = append(missingTools, fmt.Sprintf("%s (%s)", req.Name, req.Purpose))
		} else {
			missingTools = append(missingTools, req.Name)
		}
	}

	switch len(missingTools) {
	case 0:
		return nil
	case 1:
		return BuildError(CodeToolMissing, "tool check", nil,
			fmt.Errorf("%s not found in PATH", missingTools[0]))
	default:
		return BuildError(CodeToolMissing, "tool check", nil,
			fmt.Errorf("missing required tools: %s", strings.Join(missingTools, ", ")))
	}
}
