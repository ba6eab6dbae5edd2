package compiler

import (
	"ecmacore/pkg/ast"
	"ecmacore/pkg/bytecode"
)

// compileReferenceTarget leaves a Reference on top of the VM's
// reference stack, ready for OpGetValue/OpPutValue, without touching
// the accumulator's final value. Used by compound assignment and
// update expressions, where the same binding or property slot is read
// then written; plain reads/writes of a property (simple `=`, or a
// bare property access with no read-modify-write) go through the more
// direct OpGetPropertyIdentifier/OpSetPropertyIdentifier/
// OpGetPropertyExpression/OpSetPropertyExpression ops instead (see
// compileMemberRead / compileAssignment), which don't need a Reference
// at all.
func (c *Compiler) compileReferenceTarget(e ast.Expression) bool {
	line := e.Pos().Line
	switch t := e.(type) {
	case *ast.Identifier:
		c.emit1(bytecode.OpResolveBinding, c.addString(t.Name), line)
		return true
	case *ast.MemberExpression:
		c.compileExpression(t.Object)
		c.emitLoad(line)
		if t.Computed {
			c.compileExpression(t.Property)
		} else {
			id := t.Property.(*ast.Identifier)
			c.emit1(bytecode.OpLoadConstant, c.addString(id.Name), line)
		}
		c.emitLoad(line)
		c.emit(bytecode.OpPushReference, line)
		c.pop(2)
		return true
	default:
		c.fail(e.Pos(), "invalid assignment target %T", e)
		return false
	}
}
