package criteria

import (
	"github.com/viant/storyflow/service/dao"
)

// Matches returns true when every parameter matches the corresponding record
// field. Parameters naming unknown fields are ignored.
func Matches(fields map[string]string, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		actual, ok := fields[parameter.Name]
		if !ok {
			continue
		}
		if !matchValue(actual, parameter.Value) {
			return false
		}
	}
	return true
}

func matchValue(actual string, expected interface{}) bool {
	switch candidate := expected.(type) {
	case string:
		return actual == candidate
	case []string:
		for _, s := range candidate {
			if actual == s {
				return true
			}
		}
		return false
	}
	return true
}
