package rebuild

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// artifactPattern matches compiled native modules anywhere in the build tree.
const artifactPattern = "**/*.node"

// findArtifacts returns the native modules under buildDir, relative to it
// (slash separated, sorted). cmake's own scratch directories are skipped.
func findArtifacts(buildDir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(buildDir), artifactPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to glob %s in %s: %w", artifactPattern, buildDir, err)
	}

	var artifacts []string
	for _, m := range matches {
		if strings.HasPrefix(m, "CMakeFiles/") || strings.Contains(m, "/CMakeFiles/") {
			continue
		}
		artifacts = append(artifacts, m)
	}
	sort.Strings(artifacts)
	return artifacts, nil
}

// stageArtifacts copies every artifact into outDir, flattened to its base
// name, and returns the destination paths. An empty outDir stages nothing.
func stageArtifacts(buildDir, outDir string, artifacts []string) ([]string, error) {
	if outDir == "" || len(artifacts) == 0 {
		return nil, nil
	}

	var staged []string
	seen := make(map[string]string, len(artifacts))
	for _, rel := range artifacts {
		base := path.Base(rel)
		if prev, ok := seen[base]; ok {
			return staged, fmt.Errorf("artifacts %s and %s would both be staged as %s", prev, rel, base)
		}
		seen[base] = rel

		src := filepath.Join(buildDir, filepath.FromSlash(rel))
		dest := filepath.Join(outDir, base)
		if sameFile(src, dest) {
			staged = append(staged, dest)
			continue
		}
		if err := copyFile(src, dest); err != nil {
			return staged, err
		}
		staged = append(staged, dest)
	}
	return staged, nil
}

// sameFile reports whether both paths exist and name the same file.
func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

func copyFile(srcPath, destPath string) error {
	info, err := os.Stat(srcPath)
	if err != nil {
		return err
	}

	if mkErr := os.MkdirAll(filepath.Dir(destPath), 0o755); mkErr != nil {
		return mkErr
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
