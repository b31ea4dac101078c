package util

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderRe matches {key} and {key?} instruction placeholders.
var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)(\?)?\}`)

// InjectState substitutes {key} placeholders in an instruction text with
// values from the lookup function. A required placeholder {key} with no value
// is an error; an optional placeholder {key?} resolves to the empty string.
// List values are rendered one item per line.
func InjectState(text string, lookup func(key string) (any, bool)) (string, error) {
	var injectErr error

	out := placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		groups := placeholderRe.FindStringSubmatch(match)
		key, optional := groups[1], groups[2] == "?"

		value, ok := lookup(key)
		if !ok || value == nil {
			if optional {
				return ""
			}
			if injectErr == nil {
				injectErr = fmt.Errorf("instruction references unknown state key %q", key)
			}
			return match
		}

		return renderValue(value)
	})

	if injectErr != nil {
		return "", injectErr
	}

	return out, nil
}

// renderValue converts a state value to prompt text.
func renderValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, "\n")
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = fmt.Sprintf("%v", item)
		}
		return strings.Join(items, "\n")
	default:
		return fmt.Sprintf("%v", v)
	}
}
