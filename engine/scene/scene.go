// Package scene reads the summary of a glTF document the renderer is asked to draw.
package scene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// Scene holds the counts and bounds of a loaded glTF document together with
// the document itself, which the renderer uploads on commit.
type Scene struct {
	Path       string
	Meshes     int
	Primitives int
	Materials  int
	Nodes      int
	Vertices   int
	Min        mgl32.Vec3
	Max        mgl32.Vec3

	Document *gltf.Document
}

// Load opens a .gltf or .glb file.
func Load(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene %q: %w", path, err)
	}
	return FromDocument(path, doc), nil
}

func FromDocument(path string, doc *gltf.Document) *Scene {
	s := &Scene{
		Path:      path,
		Meshes:    len(doc.Meshes),
		Materials: len(doc.Materials),
		Nodes:     len(doc.Nodes),
		Document:  doc,
	}
	inf := float32(math.Inf(1))
	s.Min = mgl32.Vec3{inf, inf, inf}
	s.Max = mgl32.Vec3{-inf, -inf, -inf}

	hasBounds := false
	for _, m := range doc.Meshes {
		s.Primitives += len(m.Primitives)
		for _, p := range m.Primitives {
			idx, ok := p.Attributes[gltf.POSITION]
			if !ok || int(idx) >= len(doc.Accessors) {
				continue
			}
			acc := doc.Accessors[idx]
			s.Vertices += int(acc.Count)
			if len(acc.Min) < 3 || len(acc.Max) < 3 {
				continue
			}
			for i := 0; i < 3; i++ {
				s.Min[i] = min(s.Min[i], float32(acc.Min[i]))
				s.Max[i] = max(s.Max[i], float32(acc.Max[i]))
			}
			hasBounds = true
		}
	}
	if !hasBounds {
		s.Min = mgl32.Vec3{}
		s.Max = mgl32.Vec3{}
	}
	return s
}

func (s *Scene) Center() mgl32.Vec3 {
	return s.Min.Add(s.Max).Mul(0.5)
}

// Radius is half the diagonal of the bounding box.
func (s *Scene) Radius() float32 {
	return s.Max.Sub(s.Min).Len() * 0.5
}

func (s *Scene) String() string {
	return fmt.Sprintf("%s: %d meshes, %d primitives, %d materials, %d nodes, %d vertices",
		s.Path, s.Meshes, s.Primitives, s.Materials, s.Nodes, s.Vertices)
}
