// internal/codec/convert.go
package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"device-configurator/internal/model"
)

// asInt accepts the numeric shapes a collaborator may hand over: Go ints,
// JSON numbers and decimal strings.
func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %v is not an integer", model.ErrValidation, n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", model.ErrValidation, err)
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", model.ErrValidation, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: unsupported integer value %T", model.ErrValidation, v)
	}
}

func asString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	default:
		return "", fmt.Errorf("%w: unsupported text value %T", model.ErrValidation, v)
	}
}

func asBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, fmt.Errorf("%w: %q is not a boolean", model.ErrValidation, b)
		}
		return parsed, nil
	default:
		return false, fmt.Errorf("%w: unsupported boolean value %T", model.ErrValidation, v)
	}
}
