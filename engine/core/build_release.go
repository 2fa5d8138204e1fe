//go:build release

package core

const DebugBuild = false
