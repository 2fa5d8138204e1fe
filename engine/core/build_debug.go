//go:build !release

package core

// DebugBuild is true unless the binary is built with the `release` tag.
const DebugBuild = true
