package postageapp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// parseFunc coerces a raw value from a credential store, the environment or
// a setter into the type stored for a parameter.
type parseFunc func(v any) (any, error)

var methodListSeparator = regexp.MustCompile(`\s*(?:,|\s)\s*`)

func parseString(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case fmt.Stringer:
		return val.String(), nil
	case bool, int, int32, int64, uint, uint32, uint64, float32, float64:
		return fmt.Sprint(val), nil
	default:
		return nil, ErrInvalidValue
	}
}

// parseBool accepts "true", "yes" and "on" as true; any other string is
// true only when its leading integer is non-zero.
func parseBool(v any) (any, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case nil:
		return false, nil
	case string:
		switch val {
		case "true", "yes", "on":
			return true, nil
		}
		return leadingInt(val) != 0, nil
	default:
		return true, nil
	}
}

func parseInt(v any) (any, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int32:
		return int(val), nil
	case int64:
		return int(val), nil
	case uint:
		return int(val), nil
	case uint32:
		return int(val), nil
	case uint64:
		return int(val), nil
	case float32:
		return int(val), nil
	case float64:
		return int(val), nil
	case time.Duration:
		return int(val / time.Second), nil
	case string:
		return leadingInt(val), nil
	case nil:
		return 0, nil
	default:
		return nil, ErrInvalidValue
	}
}

// parseMethodSet turns a comma and/or whitespace separated string, or a
// list, into an ordered list of distinct method names.
func parseMethodSet(v any) (any, error) {
	var names []string

	switch val := v.(type) {
	case nil:
		return []string{}, nil
	case string:
		names = methodListSeparator.Split(strings.TrimSpace(val), -1)
	case []string:
		names = val
	case []any:
		for _, item := range val {
			s, err := parseString(item)
			if err != nil {
				return nil, err
			}
			names = append(names, s.(string))
		}
	default:
		return nil, ErrInvalidValue
	}

	seen := make(map[string]struct{}, len(names))
	set := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		set = append(set, name)
	}
	return set, nil
}

// leadingInt parses the optional sign and digits at the start of s and
// ignores the rest. Strings without leading digits yield 0.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
