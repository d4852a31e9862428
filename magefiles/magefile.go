// Package main contains Mage build targets for notes2latex developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "notes2latex"
	cmdPkg  = "./cmd/notes2latex"
)

// Build compiles the CLI binary into bin/. Set VERSION to stamp a release
// version into the binary.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	args := []string{"build", "-o", out}
	if v := os.Getenv("VERSION"); v != "" {
		args = append(args, "-ldflags", "-X main.version="+v)
	}
	args = append(args, cmdPkg)
	if err := sh.RunV("go", args...); err != nil {
		return err
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the full test suite. Browser tests skip themselves when no
// Chrome or Chromium is installed.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet across all packages.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs Vet, then the test suite.
func Check() error {
	mg.Deps(Vet)
	return Test()
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll(binDir)
}
