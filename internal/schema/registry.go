package schema

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed resources.yaml
var defaultResources []byte

type document struct {
	Resources []Resource `yaml:"resources"`
}

// Registry is the ordered, read-only set of resource definitions.
type Registry struct {
	order  []string
	byName map[string]Resource
}

// Parse builds a registry from a YAML document.
func Parse(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse resources: %w", err)
	}
	if len(doc.Resources) == 0 {
		return nil, fmt.Errorf("parse resources: no resources defined")
	}

	reg := &Registry{byName: make(map[string]Resource, len(doc.Resources))}
	for _, r := range doc.Resources {
		if err := r.validate(); err != nil {
			return nil, err
		}
		if _, dup := reg.byName[r.Name]; dup {
			return nil, fmt.Errorf("duplicate resource %q", r.Name)
		}
		if r.Label == "" {
			r.Label = r.Name
		}
		if r.Singular == "" {
			r.Singular = r.Name
		}
		reg.order = append(reg.order, r.Name)
		reg.byName[r.Name] = r
	}

	for _, r := range reg.byName {
		for _, rel := range r.Relations() {
			if _, ok := reg.byName[rel]; !ok {
				return nil, fmt.Errorf("%s: relation to unknown resource %q", r.Name, rel)
			}
		}
	}
	return reg, nil
}

// Default returns the registry compiled into the binary.
func Default() (*Registry, error) {
	return Parse(defaultResources)
}

// Load reads definitions from path, or the built-in set when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resources file: %w", err)
	}
	return Parse(data)
}

func (r *Registry) Lookup(name string) (Resource, bool) {
	res, ok := r.byName[name]
	return res, ok
}

// All returns the resources in file order.
func (r *Registry) All() []Resource {
	out := make([]Resource, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}
