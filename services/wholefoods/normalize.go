package wholefoods

import (
	"encoding/json"
	"strconv"
	"strings"
)

// The normalizer reduces loosely typed json values into record fields. Every
// function accepts absent or mistyped input and returns a neutral value.

func firstElement(v any) any {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return v
}

// TruncateDate returns the date portion of an ISO-8601 timestamp, or of the
// first timestamp in a list.
func TruncateDate(v any) string {
	text, ok := firstElement(v).(string)
	if !ok {
		return ""
	}
	date, _, _ := strings.Cut(text, "T")
	return date
}

func fieldList(v any, field string) []string {
	out := []string{}
	list, ok := v.([]any)
	if !ok {
		return out
	}
	for _, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		value, ok := obj[field].(string)
		if !ok {
			continue
		}
		out = append(out, value)
	}
	return out
}

// NameList returns the "name" of each object in a list.
func NameList(v any) []string {
	return fieldList(v, "name")
}

// SlugList returns the "slug" of each object in a list.
func SlugList(v any) []string {
	return fieldList(v, "slug")
}

// StringList accepts a list of strings, a list of named objects, or a single
// string.
func StringList(v any) []string {
	out := []string{}
	switch value := v.(type) {
	case string:
		if value != "" {
			out = append(out, value)
		}
	case []any:
		for _, entry := range value {
			switch e := entry.(type) {
			case string:
				out = append(out, e)
			case map[string]any:
				if name, ok := e["name"].(string); ok {
					out = append(out, name)
				}
			}
		}
	}
	return out
}

// IsUsableAmount reports whether a per-serving amount is present and not
// zero-equivalent (numeric zero, false, "" or "0").
func IsUsableAmount(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case string:
		return value != "" && value != "0"
	case float64:
		return value != 0
	case float32:
		return value != 0
	case int:
		return value != 0
	case int64:
		return value != 0
	case json.Number:
		f, err := value.Float64()
		if err != nil {
			return value != ""
		}
		return f != 0
	}
	return true
}

// FilterNutrition renames raw nutrition elements and drops the ones without a
// usable per-serving amount.
func FilterNutrition(raw []RawNutritionElement) []NutritionElement {
	out := []NutritionElement{}
	for _, elem := range raw {
		if !IsUsableAmount(elem.PerServing) {
			continue
		}
		out = append(out, NutritionElement{
			Key:                   textValue(elem.Key),
			Name:                  textValue(elem.Name),
			UnitOfMeasure:         textValue(elem.UOM),
			AmountPerServing:      elem.PerServing,
			RecommendedDailyValue: elem.FullDVP,
		})
	}
	return out
}

// FilterUsable applies the FilterNutrition gate to already renamed elements.
func FilterUsable(elements []NutritionElement) []NutritionElement {
	out := []NutritionElement{}
	for _, elem := range elements {
		if IsUsableAmount(elem.AmountPerServing) {
			out = append(out, elem)
		}
	}
	return out
}

// CleanID strips square brackets from an identifier, or from the first
// identifier in a list.
func CleanID(v any) string {
	first := firstElement(v)
	text, ok := first.(string)
	if !ok {
		return textValue(first)
	}
	return strings.NewReplacer("[", "", "]", "").Replace(text)
}

func textValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case json.Number:
		return value.String()
	}
	return ""
}

func numberValue(v any) *float64 {
	switch value := v.(type) {
	case float64:
		return &value
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil
		}
		return &f
	case json.Number:
		f, err := value.Float64()
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}

func boolValue(v any) *bool {
	value, ok := v.(bool)
	if !ok {
		return nil
	}
	return &value
}

func intValue(v any) int {
	n := numberValue(v)
	if n == nil {
		return 0
	}
	return int(*n)
}

func rawValue(raw json.RawMessage) json.RawMessage {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	return raw
}

// categoryPath walks the category chain up to three levels, a level is only
// filled when every level above it is.
func categoryPath(root *categoryNode) [3]string {
	var path [3]string
	node := root
	for i := 0; i < len(path) && node != nil; i++ {
		name := textValue(node.Name)
		if name == "" {
			break
		}
		path[i] = name
		node = node.ChildCategory
	}
	return path
}
