package domain

// TypenameField is the field that carries the concrete type of an object.
const TypenameField = "__typename"

// Variable is an argument value that refers to an operation variable by name.
type Variable string

// Field is one requested field of a query shape.
type Field struct {
	// Name is the schema name of the field.
	Name string
	// Alias is the response name of the field, if different from Name.
	Alias string
	// Arguments holds the field arguments. Values may be Variables.
	Arguments map[string]any
	// Selections is the shape requested for object values.
	Selections []Field
}

// ResponseName returns the name under which the field appears in result data.
func (f Field) ResponseName() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// IsComposite reports whether the field selects sub-fields.
func (f Field) IsComposite() bool {
	return len(f.Selections) > 0
}

// ResolvedArguments returns the arguments with variables substituted.
// Arguments bound to an absent variable are omitted.
func (f Field) ResolvedArguments(variables map[string]any) map[string]any {
	if len(f.Arguments) == 0 {
		return nil
	}
	out := make(map[string]any, len(f.Arguments))
	for name, v := range f.Arguments {
		resolved, ok := resolveArgument(v, variables)
		if !ok {
			continue
		}
		out[name] = resolved
	}
	return out
}

func resolveArgument(v any, variables map[string]any) (any, bool) {
	switch val := v.(type) {
	case Variable:
		resolved, ok := variables[string(val)]
		return resolved, ok
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			if r, ok := resolveArgument(e, variables); ok {
				out[k] = r
			}
		}
		return out, true
	case []any:
		out := make([]any, 0, len(val))
		for _, e := range val {
			if r, ok := resolveArgument(e, variables); ok {
				out = append(out, r)
			}
		}
		return out, true
	default:
		return val, true
	}
}

// Operation is a query shape together with its variables.
type Operation struct {
	// Name is the operation name, used for diagnostics only.
	Name       string
	Selections []Field
	Variables  map[string]any
}
