package app

import "github.com/spaghettifunk/subpasses/engine/ui"

const (
	LabelUseSubpasses    = "Use Subpasses"
	LabelUseTransient    = "Use Transient"
	LabelUseSmallGBuffer = "Use Small(128-bits) G-Buffer"
)

// Settings are the renderer toggles shown in the debug panel.
type Settings struct {
	UseSubpasses    bool
	UseTransient    bool
	UseSmallGBuffer bool
}

// Panel is the debug window with one checkbox per setting.
type Panel struct {
	Title    string
	Settings *Settings
	// ReadOnly shows the settings without letting them change.
	ReadOnly bool
	// Notice is shown under the checkboxes when not empty.
	Notice string
}

func (p *Panel) Build(b ui.Builder) {
	target := p.Settings
	if p.ReadOnly {
		scratch := *p.Settings
		target = &scratch
	}
	b.Window(p.Title, 10, 10, true, func() {
		b.Disabled(p.ReadOnly, func() {
			b.Checkbox(LabelUseSubpasses, &target.UseSubpasses)
			b.Checkbox(LabelUseTransient, &target.UseTransient)
			b.Checkbox(LabelUseSmallGBuffer, &target.UseSmallGBuffer)
		})
		if p.Notice != "" {
			b.Text("%s", p.Notice)
		}
	})
}
