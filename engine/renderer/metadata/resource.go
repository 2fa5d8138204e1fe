package metadata

type ResourceType int

const (
	ResourceTypeNone ResourceType = iota
	// SPIR-V shader binary.
	ResourceTypeShader
	// glTF or GLB scene document.
	ResourceTypeScene
	// Raw bytes.
	ResourceTypeBinary
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeShader:
		return "shader"
	case ResourceTypeScene:
		return "scene"
	case ResourceTypeBinary:
		return "binary"
	default:
		return "none"
	}
}

// Resource is what every asset loader produces.
type Resource struct {
	Type     ResourceType
	Name     string
	FullPath string
	DataSize uint64
	// Data is loader specific, e.g. []uint32 SPIR-V words for shaders.
	Data interface{}
}
