//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Builds and runs one bootstrap pass with validation layers and debug logs.
func (Run) Bootstrap() error {
	mg.Deps(Build.Binary)
	fmt.Println("Run bootstrap...")
	if _, err := executeCmd("bin/segfault", withArgs("--validation", "--log-level", "debug"), withStream()); err != nil {
		return err
	}
	return nil
}

type Test mg.Namespace

// Runs the unit tests.
func (Test) Unit() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs only the device selection tests; they need no GPU or display.
func (Test) Selection() error {
	if _, err := executeCmd("go", withArgs("test", "./engine/renderer/selection/...", "./engine/core/..."), withStream()); err != nil {
		return err
	}
	return nil
}
