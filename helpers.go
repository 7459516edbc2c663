package rebuild

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// moduleMissingPatterns match tool output that means a dependency the build
// expects has not been installed (yet). A build that fails with any of these
// is reported as CodeModuleNotFound.
var moduleMissingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)Cannot find module`),
	regexp.MustCompile(`(?m)Could not find a package configuration file`),
	regexp.MustCompile(`(?m)fatal error: .+: No such file or directory`),
	regexp.MustCompile(`(?m)fatal error C1083: Cannot open include file`),
	regexp.MustCompile(`(?m)'[^']+' file not found`),
}

// MatchesModuleMissing reports whether any line of output matches one of
// the module-missing signatures.
//
// # Example
//
//	if MatchesModuleMissing(result.Output) {
//	    // dependency not installed yet, worth retrying
//	}
func MatchesModuleMissing(output []string) bool {
	joined := strings.Join(output, "\n")
	for _, re := range moduleMissingPatterns {
		if re.MatchString(joined) {
			return true
		}
	}
	return false
}

// splitOutput turns combined command output into lines, dropping the
// trailing empty line left by a final newline.
func splitOutput(output []byte) []string {
	s := strings.TrimRight(string(output), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// commandEnv returns the process environment with extra appended in key
// order, so later entries override inherited ones.
func commandEnv(extra map[string]string) []string {
	env := os.Environ()
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, extra[k]))
	}
	return env
}
