//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target to run when none is specified
var Default = Build

// Build compiles the rebuild command into bin/
func Build() error {
	return sh.RunV("go", "build", "-o", "bin/rebuild", "./cmd/rebuild")
}

// Test runs the unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Rebuild builds the command and runs it against the current directory
func Rebuild() error {
	mg.Deps(Build)
	return sh.RunV("./bin/rebuild")
}
