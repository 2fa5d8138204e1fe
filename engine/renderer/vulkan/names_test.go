package vulkan

import (
	"slices"
	"strings"
	"testing"
)

func TestImageDebugName(t *testing.T) {
	a, b := imageDebugName("gbuffer-color"), imageDebugName("gbuffer-color")
	if !strings.HasPrefix(a, "gbuffer-color-") {
		t.Errorf("name %q does not start with its label", a)
	}
	if a == b {
		t.Errorf("two images got the same name %q", a)
	}
}

func TestObjectNames(t *testing.T) {
	n := newObjectNames()
	n.set(0x10, "gbuffer-depth-1")
	n.set(0x20, "gbuffer-color-2")
	n.set(0, "null-handle")

	if name, ok := n.lookup(0x10); !ok || name != "gbuffer-depth-1" {
		t.Errorf("lookup(0x10) = %q, %t", name, ok)
	}
	if _, ok := n.lookup(0); ok {
		t.Error("null handle was registered")
	}
	if got := n.live(); !slices.Equal(got, []string{"gbuffer-color-2", "gbuffer-depth-1"}) {
		t.Errorf("live = %v", got)
	}

	n.remove(0x10)
	if _, ok := n.lookup(0x10); ok {
		t.Error("removed handle still named")
	}
	if got := n.live(); !slices.Equal(got, []string{"gbuffer-color-2"}) {
		t.Errorf("live after remove = %v", got)
	}
}

func TestDescribeObject(t *testing.T) {
	debugNames.set(0xbeef, "gbuffer-normal-depth-x")
	t.Cleanup(func() { debugNames.remove(0xbeef) })

	if got := describeObject(0xbeef, "layout mismatch"); got != "(gbuffer-normal-depth-x) layout mismatch" {
		t.Errorf("got %q", got)
	}
	if got := describeObject(0xcafe, "layout mismatch"); got != "layout mismatch" {
		t.Errorf("unknown object changed the message: %q", got)
	}
}
