package rebuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckToolAvailable(t *testing.T) {
	stubLookPath(t, "cmake")

	assert.NoError(t, CheckToolAvailable("cmake"))
	assert.EqualError(t, CheckToolAvailable("ninja"), "ninja not found in PATH")
}

func TestToolAvailableAlternatives(t *testing.T) {
	stubLookPath(t, "clang++")

	assert.True(t, ToolAvailable(ToolRequirement{Name: "c++", Alternatives: []string{"g++", "clang++"}}))
	assert.False(t, ToolAvailable(ToolRequirement{Name: "c++", Alternatives: []string{"g++"}}))
}

func TestCheckRequiredTools(t *testing.T) {
	requirements := []ToolRequirement{
		{Name: "cmake", Purpose: "CMake build system"},
		{Name: "ninja", Optional: true},
		{Name: "c++", Alternatives: []string{"g++"}, Purpose: "C++ compiler"},
	}

	testCases := []struct {
		name      string
		available []string
		wantErr   string
	}{
		{
			name:      "all present",
			available: []string{"cmake", "g++"},
		},
		{
			name:      "one missing",
			available: []string{"g++"},
			wantErr:   "[TOOL_MISSING] tool check failed: cmake (CMake build system) not found in PATH",
		},
		{
			name:    "several missing",
			wantErr: "[TOOL_MISSING] tool check failed: missing required tools: cmake (CMake build system), c++ (C++ compiler)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stubLookPath(t, tc.available...)

			err := CheckRequiredTools(requirements)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tc.wantErr)
			assert.Equal(t, OutcomeFatal, Classify(err))
		})
	}
}

func TestCMakeRequiredTools(t *testing.T) {
	var b CMakeBuildSystem
	names := make([]string, 0, 3)
	for _, req := range b.RequiredTools() {
		names = append(names, req.Name)
	}
	assert.Equal(t, []string{"cmake", "ninja", "c++"}, names)
}
