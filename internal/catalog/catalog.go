// internal/catalog/catalog.go
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"device-configurator/internal/codec"
	"device-configurator/internal/model"
)

//go:embed devices.yml
var defaultDefinitions []byte

type document struct {
	Spec []deviceNode `yaml:"spec"`
}

type deviceNode struct {
	Signature model.DeviceIdentity `yaml:"signature"`
	Title     string               `yaml:"title"`
	Sections  []sectionNode        `yaml:"sections"`
}

type sectionNode struct {
	Name  string           `yaml:"name"`
	Help  string           `yaml:"help"`
	Items []codec.ItemNode `yaml:"items"`
}

// Default returns the specification set compiled into the binary.
func Default() (*model.SpecSet, error) {
	return Parse(defaultDefinitions)
}

// LoadFile reads a specification set from a YAML file. An empty path
// selects the compiled-in definitions.
func LoadFile(path string) (*model.SpecSet, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read specification file: %w", err)
	}

	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Parse decodes and checks a YAML specification document.
func Parse(data []byte) (*model.SpecSet, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse specification: %w", err)
	}

	if len(doc.Spec) == 0 {
		return nil, fmt.Errorf("specification document defines no devices")
	}

	specs := make([]*model.DeviceSpecification, 0, len(doc.Spec))
	for _, d := range doc.Spec {
		spec := &model.DeviceSpecification{
			Signature: d.Signature,
			Title:     d.Title,
			Sections:  make([]model.Section, 0, len(d.Sections)),
		}
		for _, s := range d.Sections {
			section := model.Section{Name: s.Name, Help: s.Help}
			for _, n := range s.Items {
				section.Items = append(section.Items, n.Item)
			}
			spec.Sections = append(spec.Sections, section)
		}
		if err := check(spec); err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	return model.NewSpecSet(specs), nil
}

// check enforces that item ids are unique within a specification, since the
// device addresses fields by id alone.
func check(spec *model.DeviceSpecification) error {
	seen := make(map[string]string)
	for _, s := range spec.Sections {
		for _, item := range s.Items {
			if prev, ok := seen[item.ID()]; ok {
				return fmt.Errorf("%s: duplicate item id %q in sections %q and %q",
					spec.Signature, item.ID(), prev, s.Name)
			}
			seen[item.ID()] = s.Name
		}
	}
	return nil
}
