// internal/model/specification.go
package model

// ItemKind names one of the closed set of configuration item kinds.
type ItemKind string

const (
	ItemKindInt    ItemKind = "int"
	ItemKindHex    ItemKind = "hex"
	ItemKindText   ItemKind = "text"
	ItemKindChoice ItemKind = "choice"
	ItemKindCheck  ItemKind = "check"
)

// ConfigItem is a typed configuration field that knows how to validate its
// value and translate it to and from the device wire text.
type ConfigItem interface {
	ID() string
	Caption() string
	Kind() ItemKind

	// Validate reports whether the current value may be sent to the device.
	Validate() error
	// Decode stores a wire value received from the device.
	Decode(wire string)
	// Encode returns the wire value for the current value.
	Encode() string

	// Value returns the display value (int, string, bool or choice index).
	Value() any
	// SetValue stores a display value edited by a collaborator.
	SetValue(v any) error

	View() ItemView
	Clone() ConfigItem
}

// ChoiceOption is one entry of a choice item: the underlying wire value and
// its description.
type ChoiceOption struct {
	Value       int    `json:"value" yaml:"val"`
	Description string `json:"description" yaml:"desc"`
}

// ItemView is the plain-data rendering of a configuration item handed to
// UI collaborators.
type ItemView struct {
	ID      string         `json:"id"`
	Caption string         `json:"caption"`
	Kind    ItemKind       `json:"kind"`
	Value   any            `json:"value"`
	Min     *int           `json:"min,omitempty"`
	Max     *int           `json:"max,omitempty"`
	MaxLen  int            `json:"max_len,omitempty"`
	LSB     bool           `json:"lsb,omitempty"`
	Options []ChoiceOption `json:"options,omitempty"`
}

// Section groups configuration items under a tab name and help text.
type Section struct {
	Name  string       `json:"name"`
	Help  string       `json:"help"`
	Items []ConfigItem `json:"-"`
}

// Find returns the first item with the given wire id.
func (s *Section) Find(id string) (ConfigItem, bool) {
	for _, item := range s.Items {
		if item.ID() == id {
			return item, true
		}
	}
	return nil, false
}

// DeviceSpecification describes the configuration schema of one device
// signature.
type DeviceSpecification struct {
	Signature DeviceIdentity `json:"signature"`
	Title     string         `json:"title"`
	Sections  []Section      `json:"-"`
}

// Find looks an item up by id, scanning sections then items in order.
func (d *DeviceSpecification) Find(id string) (ConfigItem, *Section, bool) {
	for i := range d.Sections {
		if item, ok := d.Sections[i].Find(id); ok {
			return item, &d.Sections[i], true
		}
	}
	return nil, nil, false
}

// Clone returns a deep copy whose items can be edited without touching the
// loaded specification set.
func (d *DeviceSpecification) Clone() *DeviceSpecification {
	out := &DeviceSpecification{
		Signature: d.Signature,
		Title:     d.Title,
		Sections:  make([]Section, len(d.Sections)),
	}
	for i, s := range d.Sections {
		items := make([]ConfigItem, len(s.Items))
		for j, item := range s.Items {
			items[j] = item.Clone()
		}
		out.Sections[i] = Section{Name: s.Name, Help: s.Help, Items: items}
	}
	return out
}

// WireValues returns the encoded value of every item keyed by id.
func (d *DeviceSpecification) WireValues() map[string]string {
	values := make(map[string]string)
	for _, s := range d.Sections {
		for _, item := range s.Items {
			values[item.ID()] = item.Encode()
		}
	}
	return values
}

// SpecSet is the immutable list of known device specifications.
type SpecSet struct {
	specs []*DeviceSpecification
}

// NewSpecSet wraps a loaded list of specifications.
func NewSpecSet(specs []*DeviceSpecification) *SpecSet {
	copied := make([]*DeviceSpecification, len(specs))
	copy(copied, specs)
	return &SpecSet{specs: copied}
}

// Len returns the number of specifications.
func (s *SpecSet) Len() int {
	return len(s.specs)
}

// At returns the specification at index i.
func (s *SpecSet) At(i int) *DeviceSpecification {
	return s.specs[i]
}

// Resolve returns the index of the first specification whose signature
// matches identity. A miss is a normal outcome.
func (s *SpecSet) Resolve(identity DeviceIdentity) (int, bool) {
	for i, spec := range s.specs {
		if spec.Signature.Equal(identity) {
			return i, true
		}
	}
	return -1, false
}

// Signatures lists the identities of all known specifications.
func (s *SpecSet) Signatures() []DeviceIdentity {
	out := make([]DeviceIdentity, len(s.specs))
	for i, spec := range s.specs {
		out[i] = spec.Signature
	}
	return out
}
