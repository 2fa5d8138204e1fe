package core

import (
	"errors"
)

var (
	ErrSwapchainBooting  = errors.New("swapchain resized or recreated, booting")
	ErrInvalidConfig     = errors.New("invalid config")
	ErrMissingConfigPath = errors.New("missing config file path")
	ErrRendererNotReady  = errors.New("renderer not ready")
	ErrUnsupportedDevice = errors.New("no physical device meets the requirements")
)
