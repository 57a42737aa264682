package method

import (
	"encoding/json"
	"fmt"
	"math"
	"net"
	"strconv"
	"strings"
)

func argString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidArgument, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidArgument, key)
	}
	return s, nil
}

func argBool(args map[string]any, key string) (bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return false, fmt.Errorf("%w: %s is required", ErrInvalidArgument, key)
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, fmt.Errorf("%w: %s must be a boolean", ErrInvalidArgument, key)
		}
		return parsed, nil
	}
	return false, fmt.Errorf("%w: %s must be a boolean", ErrInvalidArgument, key)
}

// argPort accepts native integers, integral floats (JSON numbers) and
// numeric strings in [0, 65535].
func argPort(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidArgument, key)
	}

	var n int64
	switch p := v.(type) {
	case int:
		n = int64(p)
	case int32:
		n = int64(p)
	case int64:
		n = p
	case uint16:
		n = int64(p)
	case uint32:
		n = int64(p)
	case float64:
		if p != math.Trunc(p) || math.IsInf(p, 0) || p < math.MinInt32 || p > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidArgument, key)
		}
		n = int64(p)
	case json.Number:
		i, err := p.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidArgument, key)
		}
		n = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be numeric", ErrInvalidArgument, key)
		}
		n = i
	default:
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidArgument, key)
	}

	if n < 0 || n > 65535 {
		return 0, fmt.Errorf("%w: %s %d is outside [0, 65535]", ErrInvalidArgument, key, n)
	}
	return int(n), nil
}

// validHost accepts IP literals and RFC 1123 host names. A name whose last
// label is all digits is a malformed IP literal, not a host name.
func validHost(host string) bool {
	if host == "" {
		return false
	}
	if net.ParseIP(host) != nil {
		return true
	}
	if len(host) > 253 {
		return false
	}
	host = strings.TrimSuffix(host, ".")
	labels := strings.Split(host, ".")
	if allDigits(labels[len(labels)-1]) {
		return false
	}
	for _, label := range labels {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for _, r := range label {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			default:
				return false
			}
		}
	}
	return true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
