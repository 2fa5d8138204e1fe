//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

const (
	shaderSrcDir = "shaders/src"
	shaderOutDir = "shaders/output"
	shaderApp    = "hala-subpasses/HALA_SUBPASSES"
	shaderModel  = "6_8"
)

// stage suffixes of the HLSL sources, e.g. default.ms.hlsl
var shaderStages = []string{"as", "ms", "ps"}

// Compiles the HLSL shaders to SPIR-V for the debug and release flavors.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the renderer binary with validation and debug output disabled.
func (Build) Release() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("build", "-tags", "release", "-o", "bin/subpasses", "."), withEnv("CGO_ENABLED", "1"), withStream())
	return err
}

// Builds the renderer binary with validation layers enabled.
func (Build) Debug() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("build", "-o", "bin/subpasses-debug", "."), withStream())
	return err
}

func buildShaders() error {
	sources, err := filepath.Glob(filepath.Join(shaderSrcDir, "*.hlsl"))
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no shaders found in %s", shaderSrcDir)
	}
	for _, flavor := range []string{"debug", "release"} {
		out := filepath.Join(shaderOutDir, flavor, shaderApp)
		if err := os.MkdirAll(out, 0o755); err != nil {
			return err
		}
		for _, src := range sources {
			if err := compileShader(src, out, flavor == "debug"); err != nil {
				return err
			}
		}
	}
	return nil
}

// compileShader turns name.<stage>.hlsl into name.<stage>_6_8.spv.
func compileShader(src, outDir string, debug bool) error {
	base := strings.TrimSuffix(filepath.Base(src), ".hlsl")
	name, stage, ok := strings.Cut(base, ".")
	if !ok || !knownStage(stage) {
		fmt.Printf("Skipping %s: unknown shader stage\n", src)
		return nil
	}
	profile := stage + "_" + shaderModel
	target := filepath.Join(outDir, fmt.Sprintf("%s.%s.spv", name, profile))

	args := []string{
		"-spirv", "-fspv-target-env=vulkan1.3",
		"-T", profile, "-E", "main",
		"-I", shaderSrcDir,
		"-Fo", target,
	}
	if debug {
		args = append(args, "-Od", "-Zi", "-fspv-debug=vulkan-with-source", "-D", "DEBUG=1")
	} else {
		args = append(args, "-O3")
	}
	args = append(args, src)
	_, err := executeCmd(shaderCompiler(), withArgs(args...))
	return err
}

func knownStage(stage string) bool {
	for _, s := range shaderStages {
		if s == stage {
			return true
		}
	}
	return false
}
