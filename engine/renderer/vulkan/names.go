package vulkan

import (
	"fmt"
	"slices"
	"sync"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/google/uuid"
)

// objectNames maps live Vulkan handles to readable names, so messages from
// the validation layers can say which object they are about.
type objectNames struct {
	mu    sync.RWMutex
	names map[uint64]string
}

func newObjectNames() *objectNames {
	return &objectNames{names: make(map[uint64]string)}
}

func (n *objectNames) set(object uint64, name string) {
	if object == 0 {
		return
	}
	n.mu.Lock()
	n.names[object] = name
	n.mu.Unlock()
}

func (n *objectNames) remove(object uint64) {
	n.mu.Lock()
	delete(n.names, object)
	n.mu.Unlock()
}

func (n *objectNames) lookup(object uint64) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	name, ok := n.names[object]
	return name, ok
}

// live returns the names still registered, sorted.
func (n *objectNames) live() []string {
	n.mu.RLock()
	out := make([]string, 0, len(n.names))
	for _, name := range n.names {
		out = append(out, name)
	}
	n.mu.RUnlock()
	slices.Sort(out)
	return out
}

// debugNames is shared with the debug report callback, which has no
// reference to the renderer.
var debugNames = newObjectNames()

func imageDebugName(label string) string {
	return fmt.Sprintf("%s-%s", label, uuid.NewString())
}

func imageHandle(img vk.Image) uint64 {
	return uint64(uintptr(unsafe.Pointer(img)))
}

// describeObject prefixes a layer message with the name of the object it
// reports on, when that object is known.
func describeObject(object uint64, message string) string {
	if name, ok := debugNames.lookup(object); ok {
		return fmt.Sprintf("(%s) %s", name, message)
	}
	return message
}
