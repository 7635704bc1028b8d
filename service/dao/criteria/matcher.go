package criteria

import (
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao"
)

// Match reports whether fields satisfy every parameter. A parameter naming a
// field missing from fields is ignored; a multi-value parameter matches any of
// its values.
func Match(fields map[string]string, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		actual, ok := fields[parameter.Name]
		if !ok {
			continue
		}
		if !contains(parameter.Values(), actual) {
			return false
		}
	}
	return true
}

func contains(values []string, candidate string) bool {
	for _, v := range values {
		if v == candidate {
			return true
		}
	}
	return false
}
