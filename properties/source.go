// Package properties loads flat key/value configuration from .env and YAML
// files and applies it to freshly assembled objects.
//
//	src, err := properties.Load("app.yaml")
//	container := nasc.New(nasc.WithProperties(src))
//
// YAML documents are flattened into dotted keys, so
//
//	smtp:
//	  host: mail.example.com
//
// is available as "smtp.host".
package properties

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format identifies a property file syntax.
type Format string

const (
	FormatEnv  Format = "env"
	FormatYAML Format = "yaml"
)

// Source is a flat set of properties keyed by dotted names.
type Source map[string]string

// FormatOf picks a format from a file name.
func FormatOf(path string) (Format, error) {
	base := filepath.Base(path)
	switch ext := strings.ToLower(filepath.Ext(base)); {
	case ext == ".yaml" || ext == ".yml":
		return FormatYAML, nil
	case ext == ".env" || base == ".env":
		return FormatEnv, nil
	default:
		return "", errors.Errorf("unsupported property file %q (want .env, .yaml or .yml)", path)
	}
}

// Load reads a property file, choosing the format from its extension.
func Load(path string) (Source, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening properties %s", path)
	}
	defer f.Close()

	src, err := Parse(f, format)
	if err != nil {
		return nil, errors.Wrapf(err, "reading properties %s", path)
	}
	return src, nil
}

// Parse reads properties in the given format.
func Parse(r io.Reader, format Format) (Source, error) {
	switch format {
	case FormatEnv:
		values, err := godotenv.Parse(r)
		if err != nil {
			return nil, err
		}
		return Source(values), nil

	case FormatYAML:
		var doc map[string]any
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			if err == io.EOF {
				return Source{}, nil
			}
			return nil, err
		}
		src := Source{}
		flatten("", doc, src)
		return src, nil

	default:
		return nil, errors.Errorf("unknown property format %q", format)
	}
}

func flatten(prefix string, node any, into Source) {
	switch v := node.(type) {
	case map[string]any:
		for k, child := range v {
			flatten(join(prefix, k), child, into)
		}
	case map[any]any:
		for k, child := range v {
			flatten(join(prefix, fmt.Sprint(k)), child, into)
		}
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		into[prefix] = strings.Join(parts, ",")
	case nil:
		into[prefix] = ""
	default:
		into[prefix] = fmt.Sprint(v)
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// Lookup returns the value stored under key.
func (s Source) Lookup(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// Merge returns a new Source holding s overlaid with other.
func (s Source) Merge(other Source) Source {
	out := make(Source, len(s)+len(other))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Keys returns the property names in sorted order.
func (s Source) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
