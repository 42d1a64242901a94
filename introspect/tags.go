package introspect

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TagName is the struct tag consulted for field injection.
const TagName = "inject"

// tagOptions represents parsed options from an inject tag.
type tagOptions struct {
	skip     bool   // Don't inject this field
	optional bool   // Leave zero if the dependency is unbound
	named    bool   // Qualifier is the field name
	lazy     bool   // Defer construction until first use
	name     string // Explicit keyed-binding qualifier
}

// parseInjectTag parses an inject struct tag and returns options.
// Supported formats:
//   - `inject:""` - basic injection
//   - `inject:"named"` - keyed by the field name
//   - `inject:"name=foo"` - keyed by foo
//   - `inject:"lazy"` - deferred handle
//   - `inject:"optional"` - skip unbound dependencies
//   - `inject:"lazy,name=foo"` - combined options
//   - `inject:"-"` - never inject
func parseInjectTag(tag string) tagOptions {
	opts := tagOptions{}

	if tag == "" {
		return opts
	}

	if tag == "-" {
		opts.skip = true
		return opts
	}

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)

		switch {
		case part == "optional":
			opts.optional = true
		case part == "named":
			opts.named = true
		case part == "lazy":
			opts.lazy = true
		case strings.HasPrefix(part, "name="):
			opts.name = strings.TrimSpace(strings.TrimPrefix(part, "name="))
		}
	}

	return opts
}

// qualifier returns the keyed-binding name for a field, or "".
func (o tagOptions) qualifier(fieldName string) string {
	if o.name != "" {
		return o.name
	}
	if o.named {
		return KeyForField(fieldName)
	}
	return ""
}

// KeyForField turns an exported Go field name into the key used for
// `inject:"named"` and `property:""`: the first letter is lower-cased, so
// Email becomes email.
func KeyForField(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToLower(r)) + name[size:]
}
