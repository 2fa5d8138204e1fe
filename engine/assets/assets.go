package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/subpasses/engine/assets/loaders"
	"github.com/spaghettifunk/subpasses/engine/core"
	"github.com/spaghettifunk/subpasses/engine/renderer/metadata"
)

type AssetInfo struct {
	Path     string
	Type     metadata.ResourceType
	Modified time.Time
}

type ChangeOp int

const (
	AssetCreated ChangeOp = iota
	AssetModified
	AssetRemoved
)

func (op ChangeOp) String() string {
	switch op {
	case AssetCreated:
		return "created"
	case AssetModified:
		return "modified"
	default:
		return "removed"
	}
}

// ChangeFunc is called from the watcher goroutine.
type ChangeFunc func(info AssetInfo, op ChangeOp)

// AssetManager indexes the known assets under a set of roots and keeps the
// index current while the program runs.
type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex    sync.RWMutex
	onChange ChangeFunc

	startOnce sync.Once
	done      chan struct{}
	stopped   chan struct{}
	fsnotify  *fsnotify.Watcher
	isClosed  bool
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	am := &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	am.registerLoader(metadata.ResourceTypeShader, &loaders.BinaryLoader{})
	am.registerLoader(metadata.ResourceTypeScene, &loaders.SceneLoader{})
	return am, nil
}

// Initialize indexes every root recursively and starts watching them.
func (am *AssetManager) Initialize(roots ...string) error {
	am.startOnce.Do(func() { go am.start() })

	for _, root := range roots {
		if err := am.addRecursive(root); err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
	}
	return nil
}

// OnChange registers the callback invoked for every indexed asset change.
func (am *AssetManager) OnChange(fn ChangeFunc) {
	am.mutex.Lock()
	am.onChange = fn
	am.mutex.Unlock()
}

func (am *AssetManager) Close() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	// unblocks a watcher loop that never started
	am.startOnce.Do(func() { close(am.stopped) })
	<-am.stopped
	return am.fsnotify.Close()
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	am.mutex.RLock()
	closed := am.isClosed
	am.mutex.RUnlock()
	if closed {
		return errors.New("asset manager already closed")
	}
	return am.watchRecursive(name)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Lookup returns the index entry for path.
func (am *AssetManager) Lookup(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	a, ok := am.assets[filepath.Clean(path)]
	return a, ok
}

// List returns the indexed assets of type t, sorted by path.
func (am *AssetManager) List(t metadata.ResourceType) []AssetInfo {
	am.mutex.RLock()
	out := make([]AssetInfo, 0, len(am.assets))
	for _, a := range am.assets {
		if a.Type == t {
			out = append(out, a)
		}
	}
	am.mutex.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// LoadAsset loads an indexed asset with the loader registered for its type.
// Files outside the watched roots are loaded when their type is known.
func (am *AssetManager) LoadAsset(path string, params interface{}) (*metadata.Resource, error) {
	path = filepath.Clean(path)

	am.mutex.RLock()
	asset, exists := am.assets[path]
	am.mutex.RUnlock()
	if !exists {
		t := determineAssetType(path)
		if t == metadata.ResourceTypeNone {
			return nil, fmt.Errorf("asset not found: %s", path)
		}
		asset = AssetInfo{Path: path, Type: t}
	}

	loader, loaderExists := am.loaders[asset.Type]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Load(path, params)
}

func (am *AssetManager) UnloadAsset(res *metadata.Resource) error {
	loader, ok := am.loaders[res.Type]
	if !ok {
		return fmt.Errorf("no loader registered for asset type: %s", res.Type)
	}
	return loader.Unload(res)
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	if e.Op&fsnotify.Create != 0 {
		if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
			if err := am.watchRecursive(e.Name); err != nil {
				core.LogWarn("failed to watch %s: %s", e.Name, err)
			}
			return
		}
	}
	switch {
	case e.Op&fsnotify.Create != 0:
		am.handleFileEvent(e.Name, AssetCreated)
	case e.Op&fsnotify.Write != 0:
		am.handleFileEvent(e.Name, AssetModified)
	case e.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// Can't stat a deleted path, so it may have been a watched directory.
		_ = am.fsnotify.Remove(e.Name)
		am.removeAsset(e.Name)
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files found on the way.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if strings.HasPrefix(fi.Name(), ".") && walkPath != path {
				return filepath.SkipDir
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath, AssetCreated)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string, op ChangeOp) {
	path = filepath.Clean(path)
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return
	}
	info := AssetInfo{
		Path:     path,
		Type:     assetType,
		Modified: time.Now(),
	}

	am.mutex.Lock()
	if _, known := am.assets[path]; known && op == AssetCreated {
		op = AssetModified
	}
	am.assets[path] = info
	fn := am.onChange
	am.mutex.Unlock()

	if fn != nil {
		fn(info, op)
	}
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	path = filepath.Clean(path)

	am.mutex.Lock()
	info, ok := am.assets[path]
	delete(am.assets, path)
	fn := am.onChange
	am.mutex.Unlock()

	if ok && fn != nil {
		fn(info, AssetRemoved)
	}
}

func determineAssetType(path string) metadata.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".spv":
		return metadata.ResourceTypeShader
	case ".gltf", ".glb":
		return metadata.ResourceTypeScene
	default:
		return metadata.ResourceTypeNone
	}
}
