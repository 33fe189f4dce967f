// internal/model/identity.go
package model

import (
	"fmt"
	"strconv"
)

// DefaultVersion is used when the version captured from a signature line
// cannot be parsed as an integer.
const DefaultVersion = 1

// DeviceIdentity is the (product, model, version) signature reported by a
// device. Version changes can alter the configuration schema, so identities
// only match when all three fields are equal.
type DeviceIdentity struct {
	Product string `json:"product" yaml:"product"`
	Model   string `json:"model" yaml:"model"`
	Version int    `json:"version" yaml:"version"`
}

// NewDeviceIdentity builds an identity from raw signature captures.
func NewDeviceIdentity(product, model, version string) DeviceIdentity {
	return DeviceIdentity{
		Product: product,
		Model:   model,
		Version: ParseVersion(version),
	}
}

// ParseVersion parses a version capture, falling back to DefaultVersion.
func ParseVersion(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return DefaultVersion
	}
	return v
}

// Equal reports whether both identities describe the same schema.
func (id DeviceIdentity) Equal(other DeviceIdentity) bool {
	return id.Product == other.Product &&
		id.Model == other.Model &&
		id.Version == other.Version
}

func (id DeviceIdentity) String() string {
	return fmt.Sprintf("%s<%s>V%d", id.Product, id.Model, id.Version)
}
