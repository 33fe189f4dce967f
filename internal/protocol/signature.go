// internal/protocol/signature.go
package protocol

import (
	"context"
	"fmt"
	"regexp"

	"device-configurator/internal/model"
)

// VersionCommand asks the device for its signature line.
const VersionCommand = "ver"

// signaturePattern matches "<junk>[<product><<model>>V<version>]<junk>".
var signaturePattern = regexp.MustCompile(`^(.*)\[(.+)<(.+)>V(\d+)\](.*)$`)

// ParseSignature extracts a device identity from a signature line.
func ParseSignature(line string) (model.DeviceIdentity, error) {
	m := signaturePattern.FindStringSubmatch(line)
	if m == nil {
		return model.DeviceIdentity{}, fmt.Errorf("%w: unrecognized signature line %q", model.ErrProtocol, line)
	}
	return model.NewDeviceIdentity(m[2], m[3], m[4]), nil
}

// QueryIdentity issues the version query and parses the first reply line.
func QueryIdentity(ctx context.Context, ch CommandSender) (model.DeviceIdentity, error) {
	resp, err := ch.SendCommand(ctx, VersionCommand)
	if err != nil {
		return model.DeviceIdentity{}, err
	}
	if !resp.OK || len(resp.Lines) == 0 {
		return model.DeviceIdentity{}, fmt.Errorf("%w: can't read device signature", model.ErrProtocol)
	}
	return ParseSignature(resp.Lines[0])
}
