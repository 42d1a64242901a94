package introspect

import (
	"reflect"

	"github.com/pkg/errors"
)

var errorInterface = reflect.TypeOf((*error)(nil)).Elem()

// ParseConstructor analyzes a constructor function and extracts metadata.
// Supported signatures:
//   - func(...) *T
//   - func(...) (*T, error)
//
// names qualifies parameters by position; names[i] == "" leaves parameter i
// unqualified. Passing more names than parameters is an error.
func ParseConstructor(fn any, names ...string) (*Constructor, error) {
	if fn == nil {
		return nil, errors.New("constructor cannot be nil")
	}

	fnValue := reflect.ValueOf(fn)
	fnType := fnValue.Type()

	if fnType.Kind() != reflect.Func {
		return nil, errors.Errorf("constructor must be a function, got %v", fnType.Kind())
	}
	if fnType.IsVariadic() {
		return nil, errors.Errorf("constructor must not be variadic: %v", fnType)
	}

	numOut := fnType.NumOut()
	if numOut == 0 || numOut > 2 {
		return nil, errors.Errorf("constructor must return (*T) or (*T, error), got %d return values", numOut)
	}

	out := fnType.Out(0)
	if out.Kind() != reflect.Ptr {
		return nil, errors.Errorf("constructor must return a pointer, got %v", out)
	}

	returnsError := false
	if numOut == 2 {
		if !fnType.Out(1).Implements(errorInterface) {
			return nil, errors.Errorf("constructor's second return value must be error, got %v", fnType.Out(1))
		}
		returnsError = true
	}

	numParams := fnType.NumIn()
	if len(names) > numParams {
		return nil, errors.Errorf("constructor %v has %d parameters but %d names were given", fnType, numParams, len(names))
	}

	params := make([]Param, numParams)
	for i := 0; i < numParams; i++ {
		params[i] = Param{Type: fnType.In(i)}
		if i < len(names) {
			params[i].Name = names[i]
		}
	}

	return &Constructor{
		Fn:           fnValue,
		Params:       params,
		Out:          out,
		ReturnsError: returnsError,
	}, nil
}
