package vetted

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register the tags field plans read with sentinel
	sentinel.Tag("json")
	sentinel.Tag("yaml")
	sentinel.Tag("msgpack")
	sentinel.Tag("bson")
	sentinel.Tag(tagVetted)
}

const (
	tagVetted = "vetted"

	// tagOptional marks a field as optional regardless of its format tag:
	//
	//	Note string `json:"note" vetted:"optional"`
	tagOptional = "optional"
)

// Document is a read-only view over the keys of one encoded object.
// Codecs implement it over their raw representation.
type Document interface {
	// Field reports whether key is present. When the value under key is
	// itself an object, the returned Document describes it; otherwise it is nil.
	Field(key string) (Document, bool)

	// Null reports whether key is present with an explicit null value.
	Null(key string) bool

	// NullItem reports whether the value under key is a list or an object
	// holding a null element.
	NullItem(key string) bool
}

// Object is a Document that can list its keys, used to reject unknown keys.
type Object interface {
	Document
	Keys() []string
}

// FieldRules tells the required-field check how a format maps struct
// fields to keys.
type FieldRules struct {
	// TagKey is the struct tag the format reads, e.g. "json".
	TagKey string

	// Name returns the key for a field without an explicit tag name.
	// Nil means the Go field name.
	Name func(goName string) string

	// FlattenEmbedded treats untagged embedded structs as part of the parent
	// object, as encoding/json does.
	FlattenEmbedded bool

	// SelfDecoding reports types that decode themselves. Their contents are
	// not checked; their own unmarshaler is responsible for them.
	SelfDecoding func(reflect.Type) bool

	// ContentType is the codec's content type. Types that validate when
	// decoded with it (see ValidatesOnDecode) are checked like plain structs,
	// and a null where one is expected fails with ErrNullInput.
	ContentType string

	// FoldCase matches unknown keys against field keys case-insensitively.
	FoldCase bool
}

// fieldPlan describes one field of a struct for the required-field check.
type fieldPlan struct {
	name          string    // Go field path for error messages
	key           string    // key expected in the input
	required      bool      // absence is a structural error
	flatten       bool      // embedded struct sharing the parent's document
	pointer       bool      // field is a pointer; nil is a valid absence
	validates     bool      // field type validates on decode; null is rejected
	itemValidates bool      // element type validates on decode; null elements are rejected
	nested        *typePlan // plan for struct or pointer-to-struct fields
}

// typePlan holds the field plans of one struct type for one format.
type typePlan struct {
	fields []fieldPlan
	needed bool // true if anything in this type or below must be checked
	object bool // struct decoded key by key; other keys are unknown
}

// planKey combines type, tag key and content type for cache lookup.
type planKey struct {
	typ         reflect.Type
	tagKey      string
	contentType string
}

// maxFlattenDepth bounds the search through embedded structs for a key.
const maxFlattenDepth = 16

var (
	plans   = make(map[planKey]*typePlan)
	plansMu sync.RWMutex
)

// NeedsFields reports whether decoding t with rules can fail a required-field
// check. Codecs use it to skip building a Document.
func NeedsFields(t reflect.Type, rules FieldRules) bool {
	return getOrBuildPlan(t, rules).needed
}

// RequireFields checks that every required field of t is present in doc.
// It returns a *MissingFieldError for the first absent key.
func RequireFields(t reflect.Type, rules FieldRules, doc Document) error {
	plan := getOrBuildPlan(t, rules)
	if !plan.needed {
		return nil
	}
	return checkPlan(plan, doc, "")
}

// RejectUnknown checks that every key of doc, and of the objects nested in it
// through struct fields, is decoded by some field of t. It returns an error
// matching ErrUnknownField for the first one that is not.
func RejectUnknown(t reflect.Type, rules FieldRules, doc Object) error {
	return checkKeys(getOrBuildPlan(t, rules), doc, rules.FoldCase, "")
}

// checkKeys walks the keys of doc against plan.
func checkKeys(plan *typePlan, doc Object, fold bool, prefix string) error {
	if !plan.object || doc == nil {
		return nil
	}
	for _, key := range doc.Keys() {
		f, ok := plan.lookup(key, fold, 0)
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownField, prefix+key)
		}
		if f.nested == nil {
			continue
		}
		child, _ := doc.Field(key)
		if obj, isObject := child.(Object); isObject {
			if err := checkKeys(f.nested, obj, fold, prefix+key+"."); err != nil {
				return err
			}
		}
	}
	return nil
}

// lookup finds the field decoding key, searching flattened embedded structs.
func (p *typePlan) lookup(key string, fold bool, depth int) (*fieldPlan, bool) {
	for i := range p.fields {
		f := &p.fields[i]
		if f.flatten {
			if f.nested != nil && depth < maxFlattenDepth {
				if nf, ok := f.nested.lookup(key, fold, depth+1); ok {
					return nf, true
				}
			}
			continue
		}
		if f.key == key || (fold && strings.EqualFold(f.key, key)) {
			return f, true
		}
	}
	return nil, false
}

// checkPlan walks plan against doc.
func checkPlan(plan *typePlan, doc Document, prefix string) error {
	for _, f := range plan.fields {
		if f.flatten {
			if f.nested != nil && !f.pointer {
				if err := checkPlan(f.nested, doc, prefix); err != nil {
					return err
				}
			}
			continue
		}

		var child Document
		present := false
		if doc != nil {
			child, present = doc.Field(f.key)
		}
		if !present {
			if f.required {
				return &MissingFieldError{Field: prefix + f.name, Key: f.key}
			}
			continue
		}
		if f.validates && doc.Null(f.key) {
			return fmt.Errorf("%w for field %s", ErrNullInput, prefix+f.name)
		}
		if f.itemValidates && doc.NullItem(f.key) {
			return fmt.Errorf("%w in field %s", ErrNullInput, prefix+f.name)
		}

		if f.nested != nil && f.nested.needed && child != nil {
			if err := checkPlan(f.nested, child, prefix+f.name+"."); err != nil {
				return err
			}
		}
	}
	return nil
}

// getOrBuildPlan returns the cached plan for t or builds it.
func getOrBuildPlan(t reflect.Type, rules FieldRules) *typePlan {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	key := planKey{typ: t, tagKey: rules.TagKey, contentType: rules.ContentType}

	plansMu.RLock()
	if cached, ok := plans[key]; ok {
		plansMu.RUnlock()
		return cached
	}
	plansMu.RUnlock()

	plansMu.Lock()
	defer plansMu.Unlock()

	if cached, ok := plans[key]; ok {
		return cached
	}

	plan := buildPlan(t, rules, make(map[reflect.Type]*typePlan))
	plans[key] = plan
	return plan
}

// buildPlan builds the plan for t. Types already in progress are reused so
// recursive types terminate.
func buildPlan(t reflect.Type, rules FieldRules, inProgress map[reflect.Type]*typePlan) *typePlan {
	if plan, ok := inProgress[t]; ok {
		return plan
	}

	plan := &typePlan{}
	inProgress[t] = plan

	if t.Kind() != reflect.Struct || selfDecoding(t, rules) {
		return plan
	}
	plan.object = true

	spec := scanType(t)
	for _, field := range spec.Fields {
		name, opts := parseTag(field.Tags[rules.TagKey])
		if name == "-" && opts == "" {
			continue
		}

		sf := t.FieldByIndex(field.Index)
		structType, isPointer := structTarget(field)
		if structType != nil && selfDecoding(structType, rules) {
			structType = nil
		}

		fp := fieldPlan{
			name:    field.Name,
			pointer: isPointer,
		}

		inline := hasOption(opts, "inline")
		if structType != nil && (inline || (sf.Anonymous && name == "" && rules.FlattenEmbedded)) {
			fp.flatten = true
			fp.nested = buildPlan(structType, rules, inProgress)
			plan.fields = append(plan.fields, fp)
			if !isPointer && fp.nested.needed {
				plan.needed = true
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}

		fp.key = name
		if fp.key == "" {
			fp.key = defaultKey(rules, field.Name)
		}
		fp.required = !isOptional(field, opts)
		fp.validates = validatesOnDecode(sf.Type, rules.ContentType)
		if field.Kind == sentinel.KindSlice || field.Kind == sentinel.KindMap {
			fp.itemValidates = validatesOnDecode(sf.Type.Elem(), rules.ContentType)
		}
		if structType != nil {
			fp.nested = buildPlan(structType, rules, inProgress)
		}

		if fp.required || fp.validates || fp.itemValidates || (fp.nested != nil && fp.nested.needed) {
			plan.needed = true
		}
		plan.fields = append(plan.fields, fp)
	}

	return plan
}

// selfDecoding reports types whose contents are left to their own unmarshaler.
// Types that validate on decode are not among them: their unmarshaler decodes
// a method-less copy of the type with the same rules.
func selfDecoding(t reflect.Type, rules FieldRules) bool {
	if rules.SelfDecoding == nil || !rules.SelfDecoding(t) {
		return false
	}
	return !validatesOnDecode(t, rules.ContentType)
}

// validatesOnDecode reports whether values of t run Validate when decoded
// with contentType. Pointers and interfaces may be null and never count.
func validatesOnDecode(t reflect.Type, contentType string) bool {
	if contentType == "" {
		return false
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface:
		return false
	}
	return ValidatesOnDecode(reflect.New(t).Interface(), contentType)
}

// scanType returns the field metadata of a struct type. Metadata sentinel
// already holds, for example from the scan a Decoder runs when it is built,
// is reused; other types are read with reflect.
func scanType(rt reflect.Type) sentinel.Metadata {
	if spec, ok := lookupType(rt); ok {
		return spec
	}

	spec := sentinel.Metadata{
		ReflectType: rt,
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() && !sf.Anonymous {
			continue
		}

		tags := make(map[string]string)
		for _, key := range []string{"json", "yaml", "msgpack", "bson", tagVetted} {
			if val := sf.Tag.Get(key); val != "" {
				tags[key] = val
			}
		}

		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        tags,
		}

		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Ptr:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}

		spec.Fields = append(spec.Fields, fm)
	}

	return spec
}

// lookupType returns sentinel's cached metadata for rt. Sentinel keys types by
// package path and name and skips unexported fields, so unnamed types and
// types embedding an unexported struct are read with reflect instead.
func lookupType(rt reflect.Type) (sentinel.Metadata, bool) {
	if rt.Name() == "" || rt.PkgPath() == "" {
		return sentinel.Metadata{}, false
	}
	for i := 0; i < rt.NumField(); i++ {
		if sf := rt.Field(i); sf.Anonymous && !sf.IsExported() {
			return sentinel.Metadata{}, false
		}
	}
	spec, ok := sentinel.Lookup(rt.PkgPath() + "." + rt.Name())
	if !ok || spec.ReflectType != rt {
		return sentinel.Metadata{}, false
	}
	return spec, true
}

// structTarget returns the struct type a field holds directly or through a
// pointer, and whether it is held through a pointer.
func structTarget(field sentinel.FieldMetadata) (reflect.Type, bool) {
	switch field.Kind {
	case sentinel.KindStruct:
		return field.ReflectType, false
	case sentinel.KindPointer:
		if field.ReflectType.Elem().Kind() == reflect.Struct {
			return field.ReflectType.Elem(), true
		}
	}
	return nil, false
}

// isOptional reports whether a missing field is acceptable.
func isOptional(field sentinel.FieldMetadata, opts string) bool {
	if field.Kind == sentinel.KindPointer || field.Kind == sentinel.KindInterface {
		return true
	}
	if hasOption(opts, "omitempty") || hasOption(opts, "omitzero") {
		return true
	}
	return hasOption(field.Tags[tagVetted], tagOptional)
}

func defaultKey(rules FieldRules, goName string) string {
	if rules.Name == nil {
		return goName
	}
	return rules.Name(goName)
}

// parseTag splits a format tag into its name and options.
func parseTag(tag string) (string, string) {
	name, opts, _ := strings.Cut(tag, ",")
	return name, opts
}

// hasOption reports whether a comma separated option list contains opt.
func hasOption(opts, opt string) bool {
	for opts != "" {
		var cur string
		cur, opts, _ = strings.Cut(opts, ",")
		if strings.TrimSpace(cur) == opt {
			return true
		}
	}
	return false
}
