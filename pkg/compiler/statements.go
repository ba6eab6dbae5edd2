package compiler

import (
	"ecmacore/pkg/ast"
	"ecmacore/pkg/bytecode"
	"ecmacore/pkg/value"
)

func (c *Compiler) compileStatement(s ast.Statement) {
	switch n := s.(type) {
	case *ast.ExpressionStatement:
		c.compileExpression(n.Expression)
	case *ast.VarStatement:
		c.compileVarStatement(n)
	case *ast.BlockStatement:
		for _, stmt := range n.Body {
			c.compileStatement(stmt)
		}
	case *ast.IfStatement:
		c.compileIf(n)
	case *ast.WhileStatement:
		c.compileWhile(n)
	case *ast.DoWhileStatement:
		c.compileDoWhile(n)
	case *ast.ForStatement:
		c.compileFor(n)
	case *ast.ForInOfStatement:
		c.fail(n.Position, "for-in/for-of iteration is not supported")
	case *ast.ReturnStatement:
		if n.Argument != nil {
			c.compileExpression(n.Argument)
		} else {
			c.emit1(bytecode.OpLoadConstant, c.exe.AddConstant(value.Undefined), n.Position.Line)
		}
		c.emit(bytecode.OpReturn, n.Position.Line)
	case *ast.BreakStatement:
		c.compileBreak(n)
	case *ast.ContinueStatement:
		c.compileContinue(n)
	case *ast.ThrowStatement:
		c.compileExpression(n.Argument)
		c.emit(bytecode.OpThrow, n.Position.Line)
	case *ast.TryStatement:
		c.compileTry(n)
	case *ast.FunctionDeclaration:
		c.compileFunctionDeclaration(n)
	default:
		c.fail(s.Pos(), "unsupported statement form %T", s)
	}
}

func (c *Compiler) compileVarStatement(n *ast.VarStatement) {
	line := n.Position.Line
	if n.Init != nil {
		c.compileExpression(n.Init)
	} else {
		c.emit1(bytecode.OpLoadConstant, c.exe.AddConstant(value.Undefined), line)
	}
	nameIdx := c.addString(n.Name)
	if n.Kind == "const" {
		c.emit1(bytecode.OpCreateImmutableBinding, nameIdx, line)
	} else {
		c.emit1(bytecode.OpCreateMutableBinding, nameIdx, line)
	}
}

func (c *Compiler) compileFunctionDeclaration(n *ast.FunctionDeclaration) {
	line := n.Position.Line
	exe := c.compileFunctionBody(n.Function)
	desc := bytecode.FunctionDescriptor{
		Name:           n.Function.Name,
		ParameterCount: len(n.Function.Params),
		Executable:     exe,
	}
	idx := c.exe.AddFunctionExpression(desc)
	c.emit1(bytecode.OpInstantiateOrdinaryFunctionExpression, idx, line)
	c.emit1(bytecode.OpCreateMutableBinding, c.addString(n.Function.Name), line)
}

func (c *Compiler) compileIf(n *ast.IfStatement) {
	line := n.Position.Line
	c.compileExpression(n.Test)
	thenOff, elseOff := c.emitJumpConditional(line)
	c.patchJump(thenOff)
	c.compileStatement(n.Consequent)
	if n.Alternate != nil {
		endOff := c.emitJump(line)
		c.patchJumpTo(elseOff, c.currentPC())
		c.compileStatement(n.Alternate)
		c.patchJump(endOff)
	} else {
		c.patchJumpTo(elseOff, c.currentPC())
	}
}

func (c *Compiler) pushLoop() *loopContext {
	l := &loopContext{}
	c.loops = append(c.loops, l)
	return l
}

func (c *Compiler) popLoop() *loopContext {
	l := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]
	return l
}

func (c *Compiler) compileWhile(n *ast.WhileStatement) {
	line := n.Position.Line
	testPC := c.currentPC()
	c.compileExpression(n.Test)
	thenOff, elseOff := c.emitJumpConditional(line)
	c.patchJump(thenOff)
	l := c.pushLoop()
	c.compileStatement(n.Body)
	c.popLoop()
	for _, off := range l.continueTargets {
		c.patchJumpTo(off, testPC)
	}
	backOff := c.emitJump(line)
	c.patchJumpTo(backOff, testPC)
	end := c.currentPC()
	c.patchJumpTo(elseOff, end)
	for _, off := range l.breakTargets {
		c.patchJumpTo(off, end)
	}
}

func (c *Compiler) compileDoWhile(n *ast.DoWhileStatement) {
	line := n.Position.Line
	bodyPC := c.currentPC()
	l := c.pushLoop()
	c.compileStatement(n.Body)
	c.popLoop()
	testPC := c.currentPC()
	for _, off := range l.continueTargets {
		c.patchJumpTo(off, testPC)
	}
	c.compileExpression(n.Test)
	thenOff, elseOff := c.emitJumpConditional(line)
	c.patchJumpTo(thenOff, bodyPC)
	end := c.currentPC()
	c.patchJumpTo(elseOff, end)
	for _, off := range l.breakTargets {
		c.patchJumpTo(off, end)
	}
}

func (c *Compiler) compileFor(n *ast.ForStatement) {
	line := n.Position.Line
	if n.Init != nil {
		c.compileStatement(n.Init)
	}
	testPC := c.currentPC()
	var thenOff, elseOff int
	hasTest := n.Test != nil
	if hasTest {
		c.compileExpression(n.Test)
		thenOff, elseOff = c.emitJumpConditional(line)
		c.patchJump(thenOff)
	}
	l := c.pushLoop()
	c.compileStatement(n.Body)
	c.popLoop()
	updatePC := c.currentPC()
	for _, off := range l.continueTargets {
		c.patchJumpTo(off, updatePC)
	}
	if n.Update != nil {
		c.compileExpression(n.Update)
	}
	backOff := c.emitJump(line)
	c.patchJumpTo(backOff, testPC)
	end := c.currentPC()
	if hasTest {
		c.patchJumpTo(elseOff, end)
	}
	for _, off := range l.breakTargets {
		c.patchJumpTo(off, end)
	}
}

func (c *Compiler) compileBreak(n *ast.BreakStatement) {
	if len(c.loops) == 0 {
		c.fail(n.Position, "break outside of a loop")
		return
	}
	l := c.loops[len(c.loops)-1]
	off := c.emitJump(n.Position.Line)
	l.breakTargets = append(l.breakTargets, off)
}

func (c *Compiler) compileContinue(n *ast.ContinueStatement) {
	if len(c.loops) == 0 {
		c.fail(n.Position, "continue outside of a loop")
		return
	}
	l := c.loops[len(c.loops)-1]
	off := c.emitJump(n.Position.Line)
	l.continueTargets = append(l.continueTargets, off)
}

// compileTry lowers try/catch/finally onto PushExceptionJumpTarget's
// handler-offset mechanism. Simplification (documented in DESIGN.md):
// a break/continue/return inside the try block does not re-run a
// pending finally block the way full ECMAScript completion-record
// plumbing would — finally only reliably runs on the normal-completion
// and thrown-exception paths.
func (c *Compiler) compileTry(n *ast.TryStatement) {
	line := n.Position.Line
	c.exe.WriteOp(bytecode.OpPushExceptionJumpTarget, line)
	handlerOperandOff := len(c.exe.Code)
	c.exe.WriteUint16(0xFFFF)

	c.compileStatement(n.Block)
	c.emit(bytecode.OpPopExceptionJumpTarget, line)
	if n.Finally != nil {
		c.compileStatement(n.Finally)
	}
	skipHandlerOff := c.emitJump(line)

	handlerPC := c.currentPC()
	c.patchJumpTo(handlerOperandOff, handlerPC)
	if n.Catch != nil {
		if n.Catch.Param != "" {
			c.emit1(bytecode.OpCreateCatchBinding, c.addString(n.Catch.Param), line)
		}
		c.compileStatement(n.Catch.Body)
	}
	if n.Finally != nil {
		c.compileStatement(n.Finally)
	}
	c.emit(bytecode.OpRethrowExceptionIfAny, line)
	c.patchJump(skipHandlerOff)
}
