//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

const defaultConfig = "conf/subpasses.toml"

// Compiles the shaders and runs the renderer with the default config.
func (Run) Renderer() error {
	if err := buildShaders(); err != nil {
		return err
	}
	fmt.Println("Run renderer...")
	_, err := executeCmd("go", withArgs("run", ".", "--config", defaultConfig), withStream())
	return err
}

// Runs the unit tests of every package.
func (Run) Tests() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}
