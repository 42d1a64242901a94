package properties

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/toutaio/toutago-nasc-assembler/introspect"
)

// TagName is the struct tag naming the property a field is filled from.
// An empty value uses the field name with a lower-cased first letter.
const TagName = "property"

var durationType = reflect.TypeOf(time.Duration(0))

// PostProcessor assigns `property`-tagged fields from a Source.
// Fields whose key is absent are left untouched.
type PostProcessor struct {
	source Source
}

// NewPostProcessor creates a PostProcessor reading from src.
func NewPostProcessor(src Source) *PostProcessor {
	if src == nil {
		src = Source{}
	}
	return &PostProcessor{source: src}
}

// Source returns the properties the processor applies.
func (p *PostProcessor) Source() Source {
	return p.source
}

// Apply fills the tagged fields of instance, which must be a pointer to a
// struct. Other values are ignored.
func (p *PostProcessor) Apply(instance any) error {
	value := reflect.ValueOf(instance)
	if value.Kind() != reflect.Ptr || value.IsNil() || value.Elem().Kind() != reflect.Struct {
		return nil
	}

	elem := value.Elem()
	typ := elem.Type()

	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		key, tagged := sf.Tag.Lookup(TagName)
		if !tagged || sf.PkgPath != "" {
			continue
		}
		if key == "" {
			key = introspect.KeyForField(sf.Name)
		}

		raw, ok := p.source.Lookup(key)
		if !ok {
			continue
		}

		if err := setFromString(elem.Field(i), raw); err != nil {
			return errors.Wrapf(err, "property %q -> %s.%s", key, typ.Name(), sf.Name)
		}
	}

	return nil
}

// setFromString converts raw to the field's kind and assigns it.
func setFromString(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)

	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return errors.Errorf("unsupported slice type %v", field.Type())
		}
		var parts []string
		if raw != "" {
			parts = strings.Split(raw, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
		}
		field.Set(reflect.ValueOf(parts).Convert(field.Type()))

	default:
		return errors.Errorf("unsupported field type %v", field.Type())
	}

	return nil
}
