package object

import (
	"fmt"

	"github.com/kristofer/loxvm/internal/table"
	"github.com/kristofer/loxvm/internal/value"
)

// InitMethodName is the method name the runtime treats as a class's
// initializer, invoked automatically on instance construction.
const InitMethodName = "init"

// ObjClass is a class declaration: its name and its method table. A
// class with a superclass has that superclass's methods copied into its
// own table at OP_INHERIT time (rather than chained by reference),
// which keeps method lookup a single table.Get instead of a walk up a
// superclass chain.
//
// Initializer caches whatever OP_METHOD most recently defined under the
// name "init", so OP_CALL on a class can check for an initializer
// without a table probe on every instantiation; it is Nil for classes
// with none.
type ObjClass struct {
	value.ObjHeader
	Name        *ObjString
	Methods     *table.Table
	Initializer value.Value
}

// NewClass returns a class named name with an empty method table.
func NewClass(name *ObjString) *ObjClass {
	return &ObjClass{
		ObjHeader:   value.ObjHeader{Kind: value.ObjClass},
		Name:        name,
		Methods:     table.New(),
		Initializer: value.Nil,
	}
}

// FindMethod looks up name in c's method table, returning the closure
// value the VM should bind.
func (c *ObjClass) FindMethod(name *ObjString) (value.Value, bool) {
	return c.Methods.Get(name)
}

// DefineMethod adds name to the method table and, when name is "init",
// also refreshes the cached Initializer.
func (c *ObjClass) DefineMethod(name *ObjString, method value.Value) {
	c.Methods.Set(name, method)
	if name.Chars == InitMethodName {
		c.Initializer = method
	}
}

// Inherit copies every method (and the cached initializer) from super
// into c. Run once, at OP_INHERIT time, rather than chaining lookups
// through a superclass pointer at every call.
func (c *ObjClass) Inherit(super *ObjClass) {
	super.Methods.ForEach(func(key table.StringKey, v value.Value) {
		if s, ok := key.(*ObjString); ok {
			c.Methods.Set(s, v)
		}
	})
	c.Initializer = super.Initializer
}

func (c *ObjClass) String() string { return fmt.Sprintf("<class %s>", c.Name.Chars) }
