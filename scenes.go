package ambientor

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/vsariola/ambientor/graph"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed scenes/*.yml
var builtinSceneFS embed.FS

// Catalog is the set of scenes an engine can switch to, keyed by name.
// It is safe for concurrent use.
type Catalog struct {
	mu     sync.RWMutex
	scenes map[string]graph.SceneSpec
}

var builtinScenes = sync.OnceValue(func() *Catalog {
	c := NewCatalog()
	if _, err := c.LoadFS(builtinSceneFS, "scenes"); err != nil {
		panic(fmt.Sprintf("ambientor: built-in scenes are broken: %v", err))
	}
	return c
})

// BuiltinScenes returns the catalog of the scenes compiled into the
// package. The returned catalog is shared; use Clone before adding scenes
// to it.
func BuiltinScenes() *Catalog {
	return builtinScenes()
}

func NewCatalog() *Catalog {
	return &Catalog{scenes: map[string]graph.SceneSpec{}}
}

func (c *Catalog) Clone() *Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ret := NewCatalog()
	for k, v := range c.scenes {
		ret.scenes[k] = v
	}
	return ret
}

// Add validates spec and adds it, replacing any scene with the same name.
func (c *Catalog) Add(spec graph.SceneSpec) error {
	if spec.Name == "" {
		return errors.New("scene has no name")
	}
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("scene %q: %w", spec.Name, err)
	}
	spec.Voices = slices.Clone(spec.Voices)
	c.mu.Lock()
	c.scenes[spec.Name] = spec
	c.mu.Unlock()
	return nil
}

// Lookup returns the scene with the given name.
func (c *Catalog) Lookup(name string) (graph.SceneSpec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	spec, ok := c.scenes[name]
	return spec, ok
}

// Names returns the scene names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.scenes))
	for name := range c.scenes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LoadFS adds every .yml file under dir in fsys as a scene named after the
// file. Files that do not parse or validate are skipped and reported in
// the returned error; the others are still added.
func (c *Catalog) LoadFS(fsys fs.FS, dir string) (int, error) {
	var errs []error
	count := 0
	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".yml" {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		spec, err := ParseScene(data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%v: %w", p, err))
			return nil
		}
		spec.Name = filenameToSceneName(path.Base(p))
		if err := c.Add(spec); err != nil {
			errs = append(errs, fmt.Errorf("%v: %w", p, err))
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}
	return count, errors.Join(errs...)
}

// ParseScene decodes a scene from YAML. Unknown fields are errors.
func ParseScene(data []byte) (graph.SceneSpec, error) {
	var spec graph.SceneSpec
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return graph.SceneSpec{}, fmt.Errorf("could not parse scene: %w", err)
	}
	return spec, nil
}

// MarshalScene encodes a scene as YAML, the inverse of ParseScene.
func MarshalScene(spec graph.SceneSpec) ([]byte, error) {
	return yaml.Marshal(&spec)
}

func filenameToSceneName(filename string) string {
	name := strings.TrimSuffix(filename, path.Ext(filename))
	return strings.ReplaceAll(strings.ToLower(name), "_", "-")
}

// DisplayName turns a scene name like "slow-drone" into "Slow Drone".
func DisplayName(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "-", " "))
}
