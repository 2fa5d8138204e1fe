// Package cmd implements the command line of the deferred renderer sample.
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/xlab/closer"

	"github.com/spaghettifunk/subpasses/app"
	"github.com/spaghettifunk/subpasses/engine"
	"github.com/spaghettifunk/subpasses/engine/assets"
	"github.com/spaghettifunk/subpasses/engine/config"
	"github.com/spaghettifunk/subpasses/engine/core"
	"github.com/spaghettifunk/subpasses/engine/platform"
	"github.com/spaghettifunk/subpasses/engine/renderer"
)

// OutputDir holds the files written at runtime, like the UI layout.
var OutputDir = "./out"

// launch runs the renderer with a validated config. Tests replace it.
var launch = runRenderer

type flags struct {
	logFile    string
	configFile string
}

// NewRootCommand builds the `subpasses` command.
func NewRootCommand() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "subpasses",
		Short: "Deferred renderer comparing subpass and multi-pass G-buffer strategies",
		Long: `Renders a glTF scene with a deferred Vulkan renderer.

The G-buffer strategy (subpasses, transient attachments, 128-bit layout)
is read from the config file and shown in a debug panel.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.configFile == "" {
				cmd.PrintErrln("Error: the config file is required")
				cmd.PrintErrln(cmd.UsageString())
				return core.ErrMissingConfigPath
			}
			cfg, err := prepare(f)
			if err != nil {
				return err
			}
			return launch(cfg)
		},
	}
	cmd.Flags().StringVarP(&f.logFile, "log", "l", core.DefaultLogFile, "path of the rolling log file")
	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "path of the TOML config file (required)")
	return cmd
}

// Execute runs the root command against the process arguments.
func Execute() error {
	err := NewRootCommand().Execute()
	if err != nil {
		core.LogError("%s", err)
	}
	return err
}

// prepare installs logging, loads the config and creates the output directory.
func prepare(f *flags) (*config.AppConfig, error) {
	if err := core.SetupLogging(app.LogOptions(f.logFile)); err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	closer.Bind(func() {
		_ = core.ShutdownLogging()
	})

	cfg, err := config.LoadAndValidate(f.configFile)
	if err != nil {
		return nil, err
	}
	if err := core.EnsureDir(OutputDir); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runRenderer(cfg *config.AppConfig) error {
	am, err := assets.NewAssetManager()
	if err != nil {
		return fmt.Errorf("failed to create the asset manager: %w", err)
	}
	defer func() {
		if err := am.Close(); err != nil {
			core.LogWarn("failed to stop the asset watcher: %s", err)
		}
	}()
	if err := am.Initialize(assetRoots(cfg)...); err != nil {
		return err
	}

	application := app.New(cfg, app.DefaultBackend(am))
	eng, err := engine.New(application, platform.New())
	if err != nil {
		return err
	}
	defer func() {
		if err := eng.Shutdown(); err != nil {
			core.LogError("shutdown failed: %s", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	defer func() {
		signal.Stop(sigCh)
		close(done)
	}()
	go func() {
		select {
		case sig := <-sigCh:
			core.LogInfo("%s received, quitting", sig)
			eng.RequestQuit()
		case <-done:
		}
	}()

	if err := eng.Initialize(); err != nil {
		return err
	}
	return eng.Run()
}

// assetRoots lists the directories the asset manager watches. Roots that
// do not exist are skipped; shaders are then read straight from disk.
func assetRoots(cfg *config.AppConfig) []string {
	candidates := []string{
		renderer.ShaderDir(core.DebugBuild),
		filepath.Dir(cfg.SceneFile),
	}
	var roots []string
	seen := make(map[string]bool)
	for _, dir := range candidates {
		clean := filepath.Clean(dir)
		if seen[clean] {
			continue
		}
		seen[clean] = true
		if info, err := os.Stat(clean); err == nil && info.IsDir() {
			roots = append(roots, clean)
		}
	}
	return roots
}
