package config

import (
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// trimSliceHookFunc trims list items that arrived as a comma separated
// string, so "a, b" from the environment decodes to ["a" "b"].
func trimSliceHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		items, ok := data.([]string)
		if !ok || t.Kind() != reflect.Slice {
			return data, nil
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out, nil
	}
}
