package lang

import "github.com/sergev/codelang/parser"

// Binding is one variable slot: its declared type, current value and
// whether it may be reassigned.
type Binding struct {
	Type    ValueType
	Value   Value
	Mutable bool
}

// Env implements a lexical environment chain.
type Env struct {
	parent *Env
	values map[string]*Binding
}

// NewEnv creates an environment with optional parent.
func NewEnv(parent *Env) *Env {
	return &Env{
		parent: parent,
		values: make(map[string]*Binding),
	}
}

// Define binds name in the current frame. A name that is already bound in
// this frame keeps its first binding and Define returns false.
func (e *Env) Define(name string, val Value, typ ValueType, mutable bool) bool {
	if _, ok := e.values[name]; ok {
		return false
	}
	e.values[name] = &Binding{Type: typ, Value: val, Mutable: mutable}
	return true
}

// Set binds name in the current frame, replacing any binding it already
// has there. Function declarations use it, so a later declaration wins.
func (e *Env) Set(name string, val Value, typ ValueType, mutable bool) {
	e.values[name] = &Binding{Type: typ, Value: val, Mutable: mutable}
}

// Lookup finds the binding for name, searching parents if necessary.
func (e *Env) Lookup(name string) (*Binding, bool) {
	for env := e; env != nil; env = env.parent {
		if b, ok := env.values[name]; ok {
			return b, true
		}
	}
	return nil, false
}

func (e *Env) lookup(name parser.Token) (*Binding, error) {
	b, ok := e.Lookup(name.Lexeme)
	if !ok {
		return nil, newFault(UndefinedVariable, name, "Undefined variable '%s'.", name.Lexeme)
	}
	return b, nil
}

// Get retrieves the value bound to name.
func (e *Env) Get(name parser.Token) (Value, error) {
	b, err := e.lookup(name)
	if err != nil {
		return Value{}, err
	}
	return b.Value, nil
}

// GetType retrieves the declared type of name.
func (e *Env) GetType(name parser.Token) (ValueType, error) {
	b, err := e.lookup(name)
	if err != nil {
		return TypeNull, err
	}
	return b.Type, nil
}

// GetMutability reports whether name may be reassigned.
func (e *Env) GetMutability(name parser.Token) (bool, error) {
	b, err := e.lookup(name)
	if err != nil {
		return false, err
	}
	return b.Mutable, nil
}

// Assign updates the binding in the scope that declared name. The value
// must have exactly the declared type.
func (e *Env) Assign(name parser.Token, val Value) error {
	b, err := e.lookup(name)
	if err != nil {
		return err
	}
	if !b.Mutable {
		return newFault(ImmutableAssignment, name,
			"Cannot assign the value '%s' to an immutable variable.", val)
	}
	if val.Type != b.Type {
		return newFault(TypeMismatch, name,
			"Cannot assign the value '%s' to variable of type %s.", val, b.Type)
	}
	b.Value = val
	return nil
}

// Parent returns the parent environment.
func (e *Env) Parent() *Env {
	return e.parent
}

// Depth counts the frames between e and the global environment.
func (e *Env) Depth() int {
	depth := 0
	for env := e.parent; env != nil; env = env.parent {
		depth++
	}
	return depth
}
