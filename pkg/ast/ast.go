// Package ast defines the syntax tree pkg/parser produces and
// pkg/compiler lowers to bytecode. It is deliberately lean: no type
// annotations, no ComputedType field, no generic-parameter nodes — the
// checker that consumed those fields in the teacher repo has no
// equivalent here, so the tree only carries what a compiler targeting
// runtime semantics needs (SPEC_FULL.md's explicit Non-goal "specifying
// the exact parser AST" leaves this shape unconstrained).
package ast

import "ecmacore/pkg/errors"

// Node is any syntax tree node; Pos anchors diagnostics to source.
type Node interface {
	Pos() errors.Position
}

type Expression interface {
	Node
	expressionNode()
}

type Statement interface {
	Node
	statementNode()
}

type Program struct {
	Body     []Statement
	Position errors.Position
}

func (p *Program) Pos() errors.Position { return p.Position }

// --- Expressions ---

type Identifier struct {
	Name     string
	Position errors.Position
}

func (i *Identifier) Pos() errors.Position { return i.Position }
func (*Identifier) expressionNode()        {}

type NumberLiteral struct {
	Value    float64
	Position errors.Position
}

func (*NumberLiteral) expressionNode()        {}
func (n *NumberLiteral) Pos() errors.Position { return n.Position }

type StringLiteral struct {
	Value    string
	Position errors.Position
}

func (*StringLiteral) expressionNode()        {}
func (s *StringLiteral) Pos() errors.Position { return s.Position }

type BooleanLiteral struct {
	Value    bool
	Position errors.Position
}

func (*BooleanLiteral) expressionNode()        {}
func (b *BooleanLiteral) Pos() errors.Position { return b.Position }

type NullLiteral struct{ Position errors.Position }

func (*NullLiteral) expressionNode()        {}
func (n *NullLiteral) Pos() errors.Position { return n.Position }

type UndefinedLiteral struct{ Position errors.Position }

func (*UndefinedLiteral) expressionNode()        {}
func (u *UndefinedLiteral) Pos() errors.Position { return u.Position }

type ThisExpression struct{ Position errors.Position }

func (*ThisExpression) expressionNode()        {}
func (t *ThisExpression) Pos() errors.Position { return t.Position }

type ArrayLiteral struct {
	Elements []Expression // a nil element marks an elided "hole"
	Position errors.Position
}

func (*ArrayLiteral) expressionNode()        {}
func (a *ArrayLiteral) Pos() errors.Position { return a.Position }

type ObjectProperty struct {
	Key      Expression
	Value    Expression
	Computed bool
}

type ObjectLiteral struct {
	Properties []ObjectProperty
	Position   errors.Position
}

func (*ObjectLiteral) expressionNode()        {}
func (o *ObjectLiteral) Pos() errors.Position { return o.Position }

type FunctionLiteral struct {
	Name     string // empty for anonymous function expressions
	Params   []*Identifier
	Body     *BlockStatement
	IsArrow  bool
	Position errors.Position
}

func (*FunctionLiteral) expressionNode()        {}
func (f *FunctionLiteral) Pos() errors.Position { return f.Position }

type UnaryExpression struct {
	Operator string // "!", "-", "+", "~", "typeof", "void", "delete"
	Operand  Expression
	Position errors.Position
}

func (*UnaryExpression) expressionNode()        {}
func (u *UnaryExpression) Pos() errors.Position { return u.Position }

type UpdateExpression struct {
	Operator string // "++" or "--"
	Operand  Expression
	Prefix   bool
	Position errors.Position
}

func (*UpdateExpression) expressionNode()        {}
func (u *UpdateExpression) Pos() errors.Position { return u.Position }

type BinaryExpression struct {
	Operator string
	Left     Expression
	Right    Expression
	Position errors.Position
}

func (*BinaryExpression) expressionNode()        {}
func (b *BinaryExpression) Pos() errors.Position { return b.Position }

type LogicalExpression struct {
	Operator string // "&&", "||", "??"
	Left     Expression
	Right    Expression
	Position errors.Position
}

func (*LogicalExpression) expressionNode()        {}
func (l *LogicalExpression) Pos() errors.Position { return l.Position }

type AssignmentExpression struct {
	Operator string // "=", "+=", "-=", ...
	Target   Expression
	Value    Expression
	Position errors.Position
}

func (*AssignmentExpression) expressionNode()        {}
func (a *AssignmentExpression) Pos() errors.Position { return a.Position }

type ConditionalExpression struct {
	Test       Expression
	Consequent Expression
	Alternate  Expression
	Position   errors.Position
}

func (*ConditionalExpression) expressionNode()        {}
func (c *ConditionalExpression) Pos() errors.Position { return c.Position }

type CallExpression struct {
	Callee    Expression
	Arguments []Expression
	Position  errors.Position
}

func (*CallExpression) expressionNode()        {}
func (c *CallExpression) Pos() errors.Position { return c.Position }

type NewExpression struct {
	Callee    Expression
	Arguments []Expression
	Position  errors.Position
}

func (*NewExpression) expressionNode()        {}
func (n *NewExpression) Pos() errors.Position { return n.Position }

type MemberExpression struct {
	Object   Expression
	Property Expression // Identifier when !Computed, arbitrary expression when Computed
	Computed bool
	Position errors.Position
}

func (*MemberExpression) expressionNode()        {}
func (m *MemberExpression) Pos() errors.Position { return m.Position }

type SequenceExpression struct {
	Expressions []Expression
	Position    errors.Position
}

func (*SequenceExpression) expressionNode()        {}
func (s *SequenceExpression) Pos() errors.Position { return s.Position }

// --- Statements ---

type ExpressionStatement struct {
	Expression Expression
	Position   errors.Position
}

func (*ExpressionStatement) statementNode()        {}
func (e *ExpressionStatement) Pos() errors.Position { return e.Position }

type VarStatement struct {
	Kind     string // "var", "let", "const"
	Name     string
	Init     Expression // nil if no initializer
	Position errors.Position
}

func (*VarStatement) statementNode()        {}
func (v *VarStatement) Pos() errors.Position { return v.Position }

type BlockStatement struct {
	Body     []Statement
	Position errors.Position
}

func (*BlockStatement) statementNode()        {}
func (b *BlockStatement) Pos() errors.Position { return b.Position }

type IfStatement struct {
	Test       Expression
	Consequent Statement
	Alternate  Statement // nil if no else
	Position   errors.Position
}

func (*IfStatement) statementNode()        {}
func (i *IfStatement) Pos() errors.Position { return i.Position }

type WhileStatement struct {
	Test     Expression
	Body     Statement
	Position errors.Position
}

func (*WhileStatement) statementNode()        {}
func (w *WhileStatement) Pos() errors.Position { return w.Position }

type DoWhileStatement struct {
	Test     Expression
	Body     Statement
	Position errors.Position
}

func (*DoWhileStatement) statementNode()        {}
func (d *DoWhileStatement) Pos() errors.Position { return d.Position }

type ForStatement struct {
	Init     Statement // nil, or *VarStatement / *ExpressionStatement
	Test     Expression
	Update   Expression
	Body     Statement
	Position errors.Position
}

func (*ForStatement) statementNode()        {}
func (f *ForStatement) Pos() errors.Position { return f.Position }

// ForInOfStatement covers both `for (x in obj)` and `for (x of iterable)`.
type ForInOfStatement struct {
	Kind     string // "var", "let", "const", or "" when Name targets an existing binding
	Name     string
	IsOf     bool
	Right    Expression
	Body     Statement
	Position errors.Position
}

func (*ForInOfStatement) statementNode()        {}
func (f *ForInOfStatement) Pos() errors.Position { return f.Position }

type ReturnStatement struct {
	Argument Expression // nil for bare `return;`
	Position errors.Position
}

func (*ReturnStatement) statementNode()        {}
func (r *ReturnStatement) Pos() errors.Position { return r.Position }

type BreakStatement struct{ Position errors.Position }

func (*BreakStatement) statementNode()        {}
func (b *BreakStatement) Pos() errors.Position { return b.Position }

type ContinueStatement struct{ Position errors.Position }

func (*ContinueStatement) statementNode()        {}
func (c *ContinueStatement) Pos() errors.Position { return c.Position }

type ThrowStatement struct {
	Argument Expression
	Position errors.Position
}

func (*ThrowStatement) statementNode()        {}
func (t *ThrowStatement) Pos() errors.Position { return t.Position }

type CatchClause struct {
	Param string // empty if the catch has no binding
	Body  *BlockStatement
}

type TryStatement struct {
	Block    *BlockStatement
	Catch    *CatchClause // nil if no catch
	Finally  *BlockStatement // nil if no finally
	Position errors.Position
}

func (*TryStatement) statementNode()        {}
func (t *TryStatement) Pos() errors.Position { return t.Position }

type FunctionDeclaration struct {
	Function *FunctionLiteral
	Position errors.Position
}

func (*FunctionDeclaration) statementNode()        {}
func (f *FunctionDeclaration) Pos() errors.Position { return f.Position }
