package loaders

import (
	"github.com/spaghettifunk/subpasses/engine/renderer/metadata"
	"github.com/spaghettifunk/subpasses/engine/scene"
)

type SceneLoader struct{}

func (sl *SceneLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	s, err := scene.Load(path)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Type:     metadata.ResourceTypeScene,
		Name:     path,
		FullPath: path,
		DataSize: uint64(s.Vertices),
		Data:     s,
	}, nil
}

func (sl *SceneLoader) Unload(r *metadata.Resource) error {
	r.Data = nil
	return nil
}
