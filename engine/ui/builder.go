// Package ui declares immediate mode panels and draws them with Dear ImGui.
package ui

import (
	"fmt"

	"github.com/inkyblackness/imgui-go/v4"
)

// Builder is the subset of immediate mode widgets panels are declared with.
type Builder interface {
	// Window declares a window placed at (x, y) the first time it is shown.
	Window(title string, x, y float32, autoResize bool, contents func())
	// Checkbox toggles value and reports whether it changed this frame.
	Checkbox(label string, value *bool) bool
	// Disabled greys out the widgets declared by contents. Disabled widgets never change their values.
	Disabled(disabled bool, contents func())
	Text(format string, args ...interface{})
}

// ImguiBuilder declares widgets on the current ImGui context.
type ImguiBuilder struct {
	disabled int
}

func (b *ImguiBuilder) Window(title string, x, y float32, autoResize bool, contents func()) {
	imgui.SetNextWindowPosV(imgui.Vec2{X: x, Y: y}, imgui.ConditionFirstUseEver, imgui.Vec2{})
	imgui.SetNextWindowCollapsed(false, imgui.ConditionFirstUseEver)

	var flags imgui.WindowFlags
	if autoResize {
		flags |= imgui.WindowFlagsAlwaysAutoResize
	}
	if imgui.BeginV(title, nil, flags) {
		contents()
	}
	imgui.End()
}

func (b *ImguiBuilder) Checkbox(label string, value *bool) bool {
	if b.disabled > 0 {
		shown := *value
		imgui.Checkbox(label, &shown)
		return false
	}
	return imgui.Checkbox(label, value)
}

func (b *ImguiBuilder) Disabled(disabled bool, contents func()) {
	if !disabled {
		contents()
		return
	}
	imgui.PushStyleVarFloat(imgui.StyleVarAlpha, 0.5)
	b.disabled++
	defer func() {
		b.disabled--
		imgui.PopStyleVar()
	}()
	contents()
}

func (b *ImguiBuilder) Text(format string, args ...interface{}) {
	imgui.Text(fmt.Sprintf(format, args...))
}
