package object

import (
	"fmt"

	"github.com/kristofer/loxvm/internal/table"
	"github.com/kristofer/loxvm/internal/value"
)

// ObjInstance is a live instance of a class: a pointer back to its
// class (for method lookup) plus its own field table. Fields and
// methods live in separate tables — a field always shadows a method of
// the same name, which OP_GET_PROPERTY checks for in that order.
type ObjInstance struct {
	value.ObjHeader
	Class  *ObjClass
	Fields *table.Table
}

// NewInstance returns a fresh instance of class with no fields set.
func NewInstance(class *ObjClass) *ObjInstance {
	return &ObjInstance{
		ObjHeader: value.ObjHeader{Kind: value.ObjInstance},
		Class:     class,
		Fields:    table.New(),
	}
}

func (i *ObjInstance) String() string {
	return fmt.Sprintf("<%s instance>", i.Class.Name.Chars)
}
