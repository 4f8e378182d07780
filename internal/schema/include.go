package schema

import "strings"

// ShouldInclude reports whether a value carries data worth sending. nil,
// empty or blank strings and the literal "null" are all treated as absent.
// Lists are present whenever they are non-nil, even when empty.
func ShouldInclude(value any) bool {
	switch x := value.(type) {
	case nil:
		return false
	case string:
		s := strings.TrimSpace(x)
		return s != "" && s != "null"
	case *string:
		return x != nil && ShouldInclude(*x)
	case Phone:
		return !x.IsZero()
	case *Phone:
		return x != nil && !x.IsZero()
	case []string:
		return x != nil
	case []any:
		return x != nil
	default:
		return true
	}
}
