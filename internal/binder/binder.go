// internal/binder/binder.go
//
// Binder from a flat Namespace onto a typed settings struct.
//
/*
Context
--------
`Bind(ns, "AppSettings", &s)` rebuilds the namespace as a nested tree, loads
it into koanf, cuts the section, and decodes it onto s with mapstructure.
Keys match field names case-insensitively.  Struct-typed fields decode from
the sub-section of the same name, which is how nested groups are bound.

Field tags
----------

	SomeKey string `settings:"SomeKey,required"`
	Host    Host   `settings:"Host"`          // nested, optional
	Secret  string `settings:"-"`             // never bound

Untagged fields use the Go field name.  A nested struct that is not marked
required and has no key under its prefix keeps its zero value; otherwise its
own required fields are enforced.

Errors
------
A coercion failure is reported before any missing field.  Missing fields are
reported in declaration order, depth first.  Paths are relative to the
section and use tag names (for example `Host.AppName`), which is what the
operator sees in the config file.

Notes
-----
  - Supported kinds: string, bool, signed and unsigned integers, floats,
    time.Duration, []string, and nested structs.  The kind check walks the
    type before any value is decoded.
  - Integers parse in base 10 at the field's width.  Scalars other than
    strings are trimmed first; strings keep their whitespace.
  - When a key is both a value and a section (`Host` and `Host:AppName`),
    the section wins in the tree.  A scalar field there is a TypeMismatch
    that carries the scalar's raw value.
*/
package binder

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	koanf "github.com/knadh/koanf/v2"
	"github.com/knadh/koanf/providers/confmap"

	"github.com/yanizio/forecast/internal/source"
)

// ErrUnsupportedType marks a target field kind the binder cannot coerce.
var ErrUnsupportedType = errors.New("unsupported field type")

const tagName = "settings"

var durationType = reflect.TypeOf(time.Duration(0))

// mapstructure quotes the failing field's dotted path first in every
// coercion error it produces.
var errPath = regexp.MustCompile(`'([^']+)'`)

// Bind populates target, which must be a non-nil pointer to a struct, from
// the keys of ns under section.
func Bind(ns *source.Namespace, section string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("binder: target must be a non-nil pointer to struct, got %T", target)
	}
	fields, err := plan(rv.Elem().Type(), "")
	if err != nil {
		return err
	}

	section = source.NormalizeKey(section)
	k := koanf.New(source.Delim)
	if err := k.Load(confmap.Provider(tree(ns), ""), nil); err != nil {
		return fmt.Errorf("binder: load namespace: %w", err)
	}

	var md mapstructure.Metadata
	err = k.Cut(section).UnmarshalWithConf("", target, koanf.UnmarshalConf{
		Tag: tagName,
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				trimScalar,
				mapstructure.StringToTimeDurationHookFunc(),
				decimal,
				mapstructure.StringToSliceHookFunc(","),
				trimElems,
			),
			Metadata:         &md,
			Result:           target,
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		be := &BindError{Kind: TypeMismatch, Err: err}
		if m := errPath.FindStringSubmatch(err.Error()); m != nil {
			be.Path = m[1]
			be.Raw, _ = ns.Get(join(section, m[1]))
		}
		return be
	}

	unset := make(map[string]bool, len(md.Unset))
	for _, p := range md.Unset {
		unset[p] = true
	}
	return missing(fields, unset)
}

// fieldPlan describes one bindable struct field after tag parsing.
type fieldPlan struct {
	path     string
	required bool
	children []fieldPlan // nested structs only
}

// plan walks t and its nested structs, rejecting kinds the binder cannot
// coerce.  Paths are built the way mapstructure reports them.
func plan(t reflect.Type, prefix string) ([]fieldPlan, error) {
	var out []fieldPlan
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, required, skip := parseTag(sf)
		if skip {
			continue
		}
		f := fieldPlan{path: join(prefix, name), required: required}

		ft := sf.Type
		switch {
		case ft == durationType:
		case ft.Kind() == reflect.Struct:
			children, err := plan(ft, f.path)
			if err != nil {
				return nil, err
			}
			f.children = children
		case ft.Kind() == reflect.Slice && ft.Elem().Kind() == reflect.String:
		case scalar(ft.Kind()):
		default:
			return nil, fmt.Errorf("binder: field %s: %w", f.path, ErrUnsupportedType)
		}
		out = append(out, f)
	}
	return out, nil
}

func parseTag(sf reflect.StructField) (name string, required, skip bool) {
	tag, ok := sf.Tag.Lookup(tagName)
	if !ok {
		return sf.Name, false, false
	}
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = strings.TrimSpace(parts[0])
	if name == "" {
		name = sf.Name
	}
	for _, opt := range parts[1:] {
		if strings.TrimSpace(opt) == "required" {
			required = true
		}
	}
	return name, required, false
}

func scalar(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// missing returns the first required field mapstructure left unset.  An
// absent optional section is not descended into.
func missing(fields []fieldPlan, unset map[string]bool) error {
	for _, f := range fields {
		if unset[f.path] {
			if f.required {
				return &BindError{Kind: MissingRequiredField, Path: f.path}
			}
			continue
		}
		if err := missing(f.children, unset); err != nil {
			return err
		}
	}
	return nil
}

// tree nests the namespace's dotted keys.  Keys are visited in sorted order,
// and a section always replaces a scalar at the same key.
func tree(ns *source.Namespace) map[string]any {
	keys := ns.Keys()
	slices.Sort(keys)

	root := map[string]any{}
	for _, key := range keys {
		val, _ := ns.Get(key)
		parts := strings.Split(key, source.Delim)
		node := root
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[p] = child
			}
			node = child
		}
		leaf := parts[len(parts)-1]
		if _, isSection := node[leaf].(map[string]any); isSection {
			continue
		}
		node[leaf] = val
	}
	return root
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + source.Delim + name
}

// Decode hooks.  Each passes through values it does not handle.

func trimScalar(f, t reflect.Type, data any) (any, error) {
	s, ok := data.(string)
	if !ok || f.Kind() != reflect.String || t.Kind() == reflect.String {
		return data, nil
	}
	return strings.TrimSpace(s), nil
}

func decimal(_, t reflect.Type, data any) (any, error) {
	s, ok := data.(string)
	if !ok || t == durationType {
		return data, nil
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		return n, err
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		return n, err
	}
	return data, nil
}

func trimElems(_, _ reflect.Type, data any) (any, error) {
	parts, ok := data.([]string)
	if !ok {
		return data, nil
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out, nil
}
