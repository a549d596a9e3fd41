package llmtool

import (
	"fmt"
	"reflect"
	"strings"
)

// Struct tags read by FieldsFromStruct:
//
//	json:"name,omitempty"   field name (falls back to the Go name)
//	prompt_desc:"..."       description shown to the model
//	prompt_type:"..."       overrides the derived type name
//	prompt:"optional"       marks the field optional ("required" is the default, "-" skips it)
const (
	tagDesc   = "prompt_desc"
	tagType   = "prompt_type"
	tagPrompt = "prompt"
)

// FieldsFromStruct builds prompt fields from a Go struct using tags.
func FieldsFromStruct(v any) ([]PromptField, error) {
	if v == nil {
		return nil, fmt.Errorf("llmtool: struct is nil")
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("llmtool: expected struct, got %s", t.Kind())
	}
	fields := make([]PromptField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		opts := promptOptions(f)
		if opts["-"] {
			continue
		}
		name := fieldName(f)
		if name == "" {
			continue
		}
		typ := strings.TrimSpace(f.Tag.Get(tagType))
		if typ == "" {
			typ = typeString(f.Type)
		}
		fields = append(fields, PromptField{
			Name:        name,
			Type:        typ,
			Required:    !opts["optional"],
			Description: strings.TrimSpace(f.Tag.Get(tagDesc)),
		})
	}
	return fields, nil
}

// MustFieldsFromStruct panics on error; useful for package-level prompt specs.
func MustFieldsFromStruct(v any) []PromptField {
	fields, err := FieldsFromStruct(v)
	if err != nil {
		panic(err)
	}
	return fields
}

func promptOptions(f reflect.StructField) map[string]bool {
	out := map[string]bool{}
	for _, part := range strings.Split(f.Tag.Get(tagPrompt), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out[part] = true
		}
	}
	return out
}

func fieldName(f reflect.StructField) string {
	name := strings.Split(f.Tag.Get("json"), ",")[0]
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

func typeString(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "[]" + typeString(t.Elem())
	case reflect.Map:
		return "object"
	case reflect.Struct:
		if t.Name() != "" {
			return t.Name()
		}
		return "object"
	default:
		return "any"
	}
}
