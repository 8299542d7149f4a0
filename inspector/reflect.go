package inspector

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Widget types for rendering fields.
type Widget int

const (
	WidgetAuto Widget = iota
	WidgetLabel
	WidgetBar
	WidgetVec
	WidgetBool
	WidgetSkip
)

// Field represents a struct field with rendering hints.
type Field struct {
	Name    string
	Value   any
	Widget  Widget
	Options map[string]string
}

// ParseTag parses an inspect struct tag.
// Format: `inspect:"widget[,option:value...]"`
// Examples:
//
//	`inspect:"bar,min:-25,max:25"`
//	`inspect:"vec,fmt:%.2f"`
//	`inspect:"label,fmt:%.1f"`
//	`inspect:"skip"`
func ParseTag(tag string) (Widget, map[string]string) {
	options := make(map[string]string)
	if tag == "" {
		return WidgetAuto, options
	}

	parts := strings.Split(tag, ",")
	var widget Widget
	switch strings.TrimSpace(parts[0]) {
	case "label":
		widget = WidgetLabel
	case "bar":
		widget = WidgetBar
	case "vec":
		widget = WidgetVec
	case "bool":
		widget = WidgetBool
	case "skip":
		widget = WidgetSkip
	default:
		widget = WidgetAuto
	}

	for _, part := range parts[1:] {
		kv := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(kv) == 2 {
			options[kv[0]] = kv[1]
		}
	}
	return widget, options
}

// ExtractFields lists the exported fields of a struct or struct pointer.
// Embedded structs are flattened.
func ExtractFields(v any) []Field {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return extract(rv)
}

func extract(rv reflect.Value) []Field {
	t := rv.Type()
	var fields []Field
	for i := 0; i < rv.NumField(); i++ {
		sf := t.Field(i)
		fv := rv.Field(i)
		if !sf.IsExported() {
			continue
		}

		widget, options := ParseTag(sf.Tag.Get("inspect"))
		if widget == WidgetSkip {
			continue
		}
		if sf.Anonymous && fv.Kind() == reflect.Struct {
			fields = append(fields, extract(fv)...)
			continue
		}
		if widget == WidgetAuto {
			widget = autoDetectWidget(fv)
		}

		fields = append(fields, Field{
			Name:    sf.Name,
			Value:   fv.Interface(),
			Widget:  widget,
			Options: options,
		})
	}
	return fields
}

var vecType = reflect.TypeOf(mgl64.Vec3{})

func autoDetectWidget(v reflect.Value) Widget {
	if v.Type() == vecType {
		return WidgetVec
	}
	if v.Kind() == reflect.Bool {
		return WidgetBool
	}
	return WidgetLabel
}

// FormatValue formats a field value as a string.
func FormatValue(value any, fmtStr string) string {
	if fmtStr == "" {
		switch v := value.(type) {
		case float32:
			return fmt.Sprintf("%.2f", v)
		case float64:
			return fmt.Sprintf("%.2f", v)
		default:
			return fmt.Sprintf("%v", value)
		}
	}
	return fmt.Sprintf(fmtStr, value)
}

// FormatVec formats a 3-vector as "(x, y, z)" with fmtStr per component.
func FormatVec(v mgl64.Vec3, fmtStr string) string {
	if fmtStr == "" {
		fmtStr = "%.2f"
	}
	f := "(" + fmtStr + ", " + fmtStr + ", " + fmtStr + ")"
	return fmt.Sprintf(f, v[0], v[1], v[2])
}

// GetRange returns the min and max options, defaulting to [0, 1].
func GetRange(options map[string]string) (lo, hi float32) {
	lo, hi = 0, 1
	if s, ok := options["min"]; ok {
		if f, err := strconv.ParseFloat(s, 32); err == nil {
			lo = float32(f)
		}
	}
	if s, ok := options["max"]; ok {
		if f, err := strconv.ParseFloat(s, 32); err == nil {
			hi = float32(f)
		}
	}
	return lo, hi
}

// GetFloatValue extracts a float32 from numeric values.
func GetFloatValue(value any) (float32, bool) {
	switch v := value.(type) {
	case float32:
		return v, true
	case float64:
		return float32(v), true
	case int:
		return float32(v), true
	case int32:
		return float32(v), true
	case int64:
		return float32(v), true
	default:
		return 0, false
	}
}
