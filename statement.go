package cyphertx

// Statement pairs an opaque Cypher query text with its bound parameters.
// Parameter names referenced in the text are not validated client-side; a
// missing parameter surfaces as an endpoint error. A Statement must not be
// mutated after it has been handed to an execution call.
type Statement struct {
	text   string
	params map[string]Value
}

// NewStatement builds a Statement with no parameters bound. Zero-parameter
// statements are valid and common for literal queries.
func NewStatement(text string) *Statement {
	return &Statement{text: text}
}

// WithParam binds a parameter, overwriting any prior binding for the same
// name. It returns the statement so bindings can be chained.
func (s *Statement) WithParam(name string, value Value) *Statement {
	if s.params == nil {
		s.params = make(map[string]Value)
	}
	s.params[name] = value
	return s
}

// WithParams binds every entry of the given mapping, overwriting prior
// bindings for the same names.
func (s *Statement) WithParams(params map[string]Value) *Statement {
	for name, value := range params {
		s.WithParam(name, value)
	}
	return s
}

// Text returns the query text.
func (s *Statement) Text() string { return s.text }

// Params returns a copy of the bound parameters.
func (s *Statement) Params() map[string]Value {
	out := make(map[string]Value, len(s.params))
	for name, value := range s.params {
		out[name] = value
	}
	return out
}

// ParamsAny lowers the bound parameters to plain Go values for runners that
// take map[string]any, such as the Bolt adapter. Returns nil when no
// parameters are bound.
func (s *Statement) ParamsAny() map[string]any {
	if len(s.params) == 0 {
		return nil
	}
	out := make(map[string]any, len(s.params))
	for name, value := range s.params {
		out[name] = value.Interface()
	}
	return out
}
