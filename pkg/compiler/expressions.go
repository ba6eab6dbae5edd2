package compiler

import (
	"strconv"

	"ecmacore/pkg/ast"
	"ecmacore/pkg/bytecode"
	"ecmacore/pkg/value"
)

// compileExpression lowers e so that, after the emitted instructions
// run, the accumulator holds e's value. The value stack is left at the
// same depth it had on entry (every push this function emits is
// balanced by a corresponding pop before it returns), so callers can
// freely sequence compileExpression calls around their own OpLoad/
// OpStore bookkeeping.
func (c *Compiler) compileExpression(e ast.Expression) {
	line := e.Pos().Line
	switch n := e.(type) {
	case *ast.NumberLiteral:
		c.emit1(bytecode.OpLoadConstant, c.exe.AddConstant(c.heap.NewNumber(n.Value)), line)
	case *ast.StringLiteral:
		c.emit1(bytecode.OpLoadConstant, c.addString(n.Value), line)
	case *ast.BooleanLiteral:
		c.emit1(bytecode.OpLoadConstant, c.exe.AddConstant(value.Boolean(n.Value)), line)
	case *ast.NullLiteral:
		c.emit1(bytecode.OpLoadConstant, c.exe.AddConstant(value.Null), line)
	case *ast.UndefinedLiteral:
		c.emit1(bytecode.OpLoadConstant, c.exe.AddConstant(value.Undefined), line)
	case *ast.ThisExpression:
		c.emit(bytecode.OpResolveThisBinding, line)
	case *ast.Identifier:
		c.compileIdentifierRead(n)
	case *ast.ArrayLiteral:
		c.compileArrayLiteral(n)
	case *ast.ObjectLiteral:
		c.compileObjectLiteral(n)
	case *ast.FunctionLiteral:
		c.compileFunctionLiteral(n)
	case *ast.UnaryExpression:
		c.compileUnary(n)
	case *ast.UpdateExpression:
		c.compileUpdate(n)
	case *ast.BinaryExpression:
		c.compileBinary(n)
	case *ast.LogicalExpression:
		c.compileLogical(n)
	case *ast.AssignmentExpression:
		c.compileAssignment(n)
	case *ast.ConditionalExpression:
		c.compileConditional(n)
	case *ast.CallExpression:
		c.compileCall(n)
	case *ast.NewExpression:
		c.compileNew(n)
	case *ast.MemberExpression:
		c.compileMemberRead(n)
	case *ast.SequenceExpression:
		for _, expr := range n.Expressions {
			c.compileExpression(expr)
		}
	default:
		c.fail(e.Pos(), "unsupported expression form %T", e)
		c.emit1(bytecode.OpLoadConstant, c.exe.AddConstant(value.Undefined), line)
	}
}

func (c *Compiler) compileIdentifierRead(id *ast.Identifier) {
	line := id.Position.Line
	c.emit1(bytecode.OpResolveBinding, c.addString(id.Name), line)
	c.emit(bytecode.OpGetValue, line)
	c.emit(bytecode.OpPopReference, line)
}

func (c *Compiler) compileArrayLiteral(n *ast.ArrayLiteral) {
	line := n.Position.Line
	for _, el := range n.Elements {
		if el == nil {
			c.emit1(bytecode.OpLoadConstant, c.exe.AddConstant(value.Hole), line)
		} else {
			c.compileExpression(el)
		}
		c.emitLoad(line)
	}
	c.emit1(bytecode.OpArrayCreate, uint16(len(n.Elements)), line)
	c.pop(len(n.Elements))
}

// compileObjectLiteral supports string/identifier/numeric keys only:
// computed keys (`{[expr]: v}`) are rejected, since OpObjectSetProperty
// only carries a constant-pool NameIdx and reusing the generic
// OpSetPropertyExpression here would consume the in-progress object off
// the value stack instead of leaving it for the next property (that op
// is shaped for member-assignment expressions, which return the
// assigned value, not the receiver) — a narrower, documented cut
// relative to computed *member access* (`obj[expr]`), which is fully
// supported (see compileMemberRead/compilePlainAssign).
func (c *Compiler) compileObjectLiteral(n *ast.ObjectLiteral) {
	line := n.Position.Line
	c.emit(bytecode.OpObjectCreate, line)
	c.emitLoad(line)
	for _, prop := range n.Properties {
		if prop.Computed {
			c.fail(n.Position, "computed object literal keys are not supported")
			continue
		}
		name, ok := staticKeyName(prop.Key)
		if !ok {
			c.fail(n.Position, "unsupported object literal key form %T", prop.Key)
			continue
		}
		c.compileExpression(prop.Value)
		c.emit1(bytecode.OpObjectSetProperty, c.addString(name), line)
	}
	c.emitStore(line)
}

func staticKeyName(key ast.Expression) (string, bool) {
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name, true
	case *ast.StringLiteral:
		return k.Value, true
	case *ast.NumberLiteral:
		return formatNumberKey(k.Value), true
	}
	return "", false
}

func (c *Compiler) compileFunctionLiteral(n *ast.FunctionLiteral) {
	line := n.Position.Line
	exe := c.compileFunctionBody(n)
	desc := bytecode.FunctionDescriptor{
		Name:           n.Name,
		ParameterCount: len(n.Params),
		IsArrow:        n.IsArrow,
		Executable:     exe,
	}
	if n.IsArrow {
		idx := c.exe.AddArrowFunction(desc)
		c.emit1(bytecode.OpInstantiateArrowFunctionExpression, idx, line)
	} else {
		idx := c.exe.AddFunctionExpression(desc)
		c.emit1(bytecode.OpMakeClosure, idx, line)
	}
}

// compileFunctionBody compiles n's body as an independent Executable: a
// fresh Compiler, own constant pool, own value-stack depth counter.
func (c *Compiler) compileFunctionBody(n *ast.FunctionLiteral) *bytecode.Executable {
	name := n.Name
	if name == "" {
		name = "<anonymous>"
	}
	fc := New(c.heap, name)
	fc.exe.IsArrow = n.IsArrow
	for _, p := range n.Params {
		fc.exe.ParameterNames = append(fc.exe.ParameterNames, p.Name)
	}
	for _, stmt := range n.Body.Body {
		fc.compileStatement(stmt)
	}
	// Every function body falls off the end returning undefined if it
	// never hit an explicit return.
	fc.emit1(bytecode.OpLoadConstant, fc.exe.AddConstant(value.Undefined), n.Position.Line)
	fc.emit(bytecode.OpReturn, n.Position.Line)
	fc.exe.StackSlots = fc.maxDepth
	c.errs = append(c.errs, fc.errs...)
	return fc.exe
}

func (c *Compiler) compileUnary(n *ast.UnaryExpression) {
	line := n.Position.Line
	if n.Operator == "delete" {
		c.compileDelete(n)
		return
	}
	if n.Operator == "void" {
		c.compileExpression(n.Operand)
		c.emit1(bytecode.OpLoadConstant, c.exe.AddConstant(value.Undefined), line)
		return
	}
	if n.Operator == "typeof" {
		c.compileExpression(n.Operand)
		c.emit(bytecode.OpTypeofValue, line)
		return
	}
	c.compileExpression(n.Operand)
	switch n.Operator {
	case "!":
		c.emit(bytecode.OpLogicalNot, line)
	case "-":
		c.emit(bytecode.OpUnaryMinus, line)
	case "+":
		c.emit(bytecode.OpToNumber, line)
	case "~":
		c.emit(bytecode.OpBitwiseNot, line)
	default:
		c.fail(n.Position, "unsupported unary operator %q", n.Operator)
	}
}

func (c *Compiler) compileDelete(n *ast.UnaryExpression) {
	line := n.Position.Line
	member, ok := n.Operand.(*ast.MemberExpression)
	if !ok {
		c.fail(n.Position, "delete of a bare identifier is not supported")
		return
	}
	c.compileExpression(member.Object)
	c.emitLoad(line)
	if member.Computed {
		c.compileExpression(member.Property)
	} else {
		id := member.Property.(*ast.Identifier)
		c.emit1(bytecode.OpLoadConstant, c.addString(id.Name), line)
	}
	c.emitLoad(line)
	c.emit(bytecode.OpDeleteProperty, line)
	c.pop(2)
}

// compileUpdate implements `++`/`--` using OpLoad's non-clearing-
// accumulator behavior to retain the pre-update value: postfix needs
// two retained copies (one to hand back as the expression result, one
// consumed computing the new value), prefix needs only one.
func (c *Compiler) compileUpdate(n *ast.UpdateExpression) {
	line := n.Position.Line
	op := bytecode.BinAdd
	if n.Operator == "--" {
		op = bytecode.BinSubtract
	}
	c.compileReferenceTarget(n.Operand)
	c.emit(bytecode.OpGetValue, line) // peek: acc = old value
	c.emitLoad(line)                  // copy A (result, for postfix)
	if !n.Prefix {
		c.emitLoad(line) // copy B (consumed below)
	}
	c.emit1(bytecode.OpLoadConstant, c.exe.AddConstant(c.heap.NewNumber(1)), line)
	c.emit1(bytecode.OpApplyBinary, uint16(op), line) // pop top copy, acc = new value
	c.pop(1)
	c.emit(bytecode.OpPutValue, line)                // pop reference, store new value; acc unchanged (new)
	if !n.Prefix {
		c.emitStore(line) // pop copy A (old value) into acc: the postfix result
	}
}

func (c *Compiler) compileBinary(n *ast.BinaryExpression) {
	line := n.Position.Line
	if n.Operator == "in" {
		c.compileExpression(n.Left) // key
		c.emitLoad(line)
		c.compileExpression(n.Right) // base
		c.emit(bytecode.OpHasProperty, line)
		c.pop(1)
		return
	}
	if n.Operator == "instanceof" {
		c.compileExpression(n.Left)
		c.emitLoad(line)
		c.compileExpression(n.Right)
		c.emit(bytecode.OpInstanceofOperator, line)
		c.pop(1)
		return
	}
	c.compileExpression(n.Left)
	c.emitLoad(line)
	c.compileExpression(n.Right)
	if op, ok := compareOps[n.Operator]; ok {
		c.emit(op, line)
		c.pop(1)
		return
	}
	if op, ok := applyBinaryOps[n.Operator]; ok {
		c.emit1(bytecode.OpApplyBinary, uint16(op), line)
		c.pop(1)
		return
	}
	c.fail(n.Position, "unsupported binary operator %q", n.Operator)
}

// compileLogical implements short-circuit `&&`/`||` with a single
// JumpConditional testing the left operand (still in the accumulator at
// the jump, so the short-circuit path needs no extra instructions to
// produce its result) and `??` with a two-copy nullish test (see
// SPEC_FULL.md-grounded design notes in DESIGN.md).
func (c *Compiler) compileLogical(n *ast.LogicalExpression) {
	line := n.Position.Line
	switch n.Operator {
	case "&&":
		c.compileExpression(n.Left)
		thenOff, elseOff := c.emitJumpConditional(line)
		c.patchJump(thenOff)
		c.compileExpression(n.Right)
		c.patchJumpTo(elseOff, c.currentPC())
	case "||":
		c.compileExpression(n.Left)
		thenOff, elseOff := c.emitJumpConditional(line)
		c.patchJump(elseOff)
		c.compileExpression(n.Right)
		c.patchJumpTo(thenOff, c.currentPC())
	case "??":
		c.compileExpression(n.Left) // acc = L
		c.emitLoad(line)            // copy A (result if non-nullish)
		c.emitLoad(line)            // copy B (consumed by the test)
		c.emit1(bytecode.OpLoadConstant, c.exe.AddConstant(value.Null), line)
		c.emit(bytecode.OpIsLooselyEqual, line) // pop copy B, compare L==null (true for null or undefined)
		c.pop(1)
		thenOff, elseOff := c.emitJumpConditional(line) // then = nullish -> eval right, else = non-nullish
		c.patchJump(thenOff)
		c.emitStore(line) // discard copy A, about to be overwritten
		c.compileExpression(n.Right)
		endOff := c.emitJump(line)
		c.patchJumpTo(elseOff, c.currentPC())
		c.emitStore(line) // copy A -> acc = L
		c.patchJump(endOff)
	default:
		c.fail(n.Position, "unsupported logical operator %q", n.Operator)
	}
}

func (c *Compiler) compileConditional(n *ast.ConditionalExpression) {
	line := n.Position.Line
	c.compileExpression(n.Test)
	thenOff, elseOff := c.emitJumpConditional(line)
	c.patchJump(thenOff)
	c.compileExpression(n.Consequent)
	endOff := c.emitJump(line)
	c.patchJumpTo(elseOff, c.currentPC())
	c.compileExpression(n.Alternate)
	c.patchJump(endOff)
}

// compileAssignment handles `=` directly against the property/binding
// ops (no Reference needed: a plain store never needs to read the old
// value first) and every compound form through compileReferenceTarget's
// read-modify-write dance. Short-circuiting logical-assignment forms
// (`&&=`, `||=`, `??=`) are out of scope for this pass.
func (c *Compiler) compileAssignment(n *ast.AssignmentExpression) {
	line := n.Position.Line
	if n.Operator == "&&=" || n.Operator == "||=" || n.Operator == "??=" {
		c.fail(n.Position, "logical assignment operator %q is not supported", n.Operator)
		return
	}
	if n.Operator == "=" {
		c.compilePlainAssign(n.Target, n.Value)
		return
	}
	jsOp, ok := compoundAssignOps[n.Operator]
	if !ok {
		c.fail(n.Position, "unsupported assignment operator %q", n.Operator)
		return
	}
	c.compileReferenceTarget(n.Target)
	c.emit(bytecode.OpGetValue, line) // peek: acc = old value
	c.emitLoad(line)
	c.compileExpression(n.Value)
	if op, ok := applyBinaryOps[jsOp]; ok {
		c.emit1(bytecode.OpApplyBinary, uint16(op), line)
	} else if op, ok := compareOps[jsOp]; ok {
		c.emit(op, line)
	}
	c.pop(1)
	c.emit(bytecode.OpPutValue, line)
}

func (c *Compiler) compilePlainAssign(target, rhs ast.Expression) {
	line := target.Pos().Line
	switch t := target.(type) {
	case *ast.Identifier:
		c.emit1(bytecode.OpResolveBinding, c.addString(t.Name), line)
		c.compileExpression(rhs)
		c.emit(bytecode.OpPutValue, line)
	case *ast.MemberExpression:
		c.compileExpression(t.Object)
		c.emitLoad(line)
		if t.Computed {
			c.compileExpression(t.Property)
			c.emitLoad(line)
			c.compileExpression(rhs)
			c.emit(bytecode.OpSetPropertyExpression, line)
			c.pop(2)
		} else {
			id := t.Property.(*ast.Identifier)
			c.compileExpression(rhs)
			c.emit1(bytecode.OpSetPropertyIdentifier, c.addString(id.Name), line)
			c.pop(1)
		}
	default:
		c.fail(target.Pos(), "invalid assignment target %T", target)
	}
}

func (c *Compiler) compileMemberRead(n *ast.MemberExpression) {
	line := n.Position.Line
	c.compileExpression(n.Object)
	if n.Computed {
		c.emitLoad(line)
		c.compileExpression(n.Property)
		c.emit(bytecode.OpGetPropertyExpression, line)
		c.pop(1)
	} else {
		id := n.Property.(*ast.Identifier)
		c.emit1(bytecode.OpGetPropertyIdentifier, c.addString(id.Name), line)
	}
}

// compileCall emits the `[this, func, arg0, ..., argN-1]` stack
// protocol OpEvaluateCall expects. A plain call's `this` is undefined;
// a member call's `this` is the object the method was read off, kept
// alive on the stack across the property read by relying on OpLoad
// (identifier-keyed) or a double push (computed-keyed) to not disturb
// it — see DESIGN.md for the full derivation.
func (c *Compiler) compileCall(n *ast.CallExpression) {
	line := n.Position.Line
	if member, ok := n.Callee.(*ast.MemberExpression); ok {
		c.compileExpression(member.Object) // acc = obj
		c.emitLoad(line)                   // stack = [obj(this)]
		if member.Computed {
			c.emitLoad(line) // stack = [obj, obj]
			c.compileExpression(member.Property)
			c.emit(bytecode.OpGetPropertyExpression, line) // pop obj(copy2); acc = func
			c.pop(1)
		} else {
			id := member.Property.(*ast.Identifier)
			c.emit1(bytecode.OpGetPropertyIdentifier, c.addString(id.Name), line) // acc(obj) -> acc(func)
		}
		c.emitLoad(line) // stack = [this, func]
	} else {
		c.emit1(bytecode.OpLoadConstant, c.exe.AddConstant(value.Undefined), line)
		c.emitLoad(line) // stack = [undefined]
		c.compileExpression(n.Callee)
		c.emitLoad(line) // stack = [undefined, func]
	}
	for _, arg := range n.Arguments {
		c.compileExpression(arg)
		c.emitLoad(line)
	}
	c.emit1(bytecode.OpEvaluateCall, uint16(len(n.Arguments)), line)
	c.pop(2 + len(n.Arguments))
}

func (c *Compiler) compileNew(n *ast.NewExpression) {
	line := n.Position.Line
	c.compileExpression(n.Callee)
	c.emitLoad(line)
	for _, arg := range n.Arguments {
		c.compileExpression(arg)
		c.emitLoad(line)
	}
	c.emit1(bytecode.OpEvaluateNew, uint16(len(n.Arguments)), line)
	c.pop(1 + len(n.Arguments))
}

func formatNumberKey(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
