package manifest

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// undecodedWarnings reports TOML keys that did not map onto any manifest field.
func undecodedWarnings(md toml.MetaData) []string {
	var warnings []string
	for _, key := range md.Undecoded() {
		warnings = append(warnings, fmt.Sprintf("unknown field %q (ignored)", key.String()))
	}
	return warnings
}

// detectUnknownFields compares a generic YAML or JSON document with the
// known manifest fields.
func detectUnknownFields(doc interface{}) []string {
	root, ok := doc.(map[string]interface{})
	if !ok {
		return nil
	}

	var warnings []string
	warnings = append(warnings, unknownKeys(root, reflect.TypeOf(Manifest{}), "")...)

	suites, _ := root["test_suite"].([]interface{})
	for i, rawSuite := range suites {
		suite, ok := rawSuite.(map[string]interface{})
		if !ok {
			continue
		}
		prefix := fmt.Sprintf("test_suite[%d].", i)
		warnings = append(warnings, unknownKeys(suite, reflect.TypeOf(Suite{}), prefix)...)

		tests, _ := suite["tests"].([]interface{})
		for j, rawTest := range tests {
			test, ok := rawTest.(map[string]interface{})
			if !ok {
				continue
			}
			testPrefix := fmt.Sprintf("%stests[%d].", prefix, j)
			warnings = append(warnings, unknownKeys(test, reflect.TypeOf(TestCase{}), testPrefix)...)
		}
	}

	return warnings
}

func unknownKeys(fields map[string]interface{}, t reflect.Type, prefix string) []string {
	known := getTagFields(t, "json")
	var keys []string
	for key := range fields {
		if key == "$schema" {
			continue
		}
		if !known[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	warnings := make([]string, 0, len(keys))
	for _, key := range keys {
		warnings = append(warnings, fmt.Sprintf("unknown field %q (ignored)", prefix+key))
	}
	return warnings
}

// getTagFields returns the set of field names declared by tag on struct type t.
func getTagFields(t reflect.Type, tag string) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		value := t.Field(i).Tag.Get(tag)
		if value == "" || value == "-" {
			continue
		}
		name := strings.Split(value, ",")[0]
		if name != "" {
			fields[name] = true
		}
	}
	return fields
}
