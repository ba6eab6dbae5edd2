// Package parser is a recursive-descent/Pratt parser building pkg/ast
// trees directly out of pkg/lexer tokens, grounded on the teacher's
// pkg/parser (precedence table shape, prefix/infix function-table
// dispatch) but producing the lean untyped tree pkg/ast defines instead
// of the teacher's type-annotated one — there is no checker downstream
// to consume type syntax, so this parser never parses any of it.
package parser

import (
	"fmt"
	"strconv"

	"ecmacore/pkg/ast"
	"ecmacore/pkg/errors"
	"ecmacore/pkg/lexer"
	"ecmacore/pkg/source"
)

type precedence int

const (
	_ precedence = iota
	precLowest
	precAssignment
	precConditional
	precCoalesce
	precLogicalOr
	precLogicalAnd
	precBitwiseOr
	precBitwiseXor
	precBitwiseAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precExponent
	precUnary
	precUpdate
	precCall
	precMember
)

var precedences = map[lexer.TokenType]precedence{
	lexer.ASSIGN:                      precAssignment,
	lexer.PLUS_ASSIGN:                 precAssignment,
	lexer.MINUS_ASSIGN:                precAssignment,
	lexer.ASTERISK_ASSIGN:             precAssignment,
	lexer.SLASH_ASSIGN:                precAssignment,
	lexer.REMAINDER_ASSIGN:            precAssignment,
	lexer.EXPONENT_ASSIGN:             precAssignment,
	lexer.BITWISE_AND_ASSIGN:          precAssignment,
	lexer.BITWISE_OR_ASSIGN:           precAssignment,
	lexer.BITWISE_XOR_ASSIGN:          precAssignment,
	lexer.LEFT_SHIFT_ASSIGN:           precAssignment,
	lexer.RIGHT_SHIFT_ASSIGN:          precAssignment,
	lexer.UNSIGNED_RIGHT_SHIFT_ASSIGN: precAssignment,
	lexer.LOGICAL_AND_ASSIGN:          precAssignment,
	lexer.LOGICAL_OR_ASSIGN:           precAssignment,
	lexer.COALESCE_ASSIGN:             precAssignment,
	lexer.QUESTION:                    precConditional,
	lexer.COALESCE:                    precCoalesce,
	lexer.LOGICAL_OR:                  precLogicalOr,
	lexer.LOGICAL_AND:                 precLogicalAnd,
	lexer.PIPE:                        precBitwiseOr,
	lexer.BITWISE_XOR:                 precBitwiseXor,
	lexer.BITWISE_AND:                 precBitwiseAnd,
	lexer.EQ:                          precEquality,
	lexer.NOT_EQ:                      precEquality,
	lexer.STRICT_EQ:                   precEquality,
	lexer.STRICT_NOT_EQ:               precEquality,
	lexer.LT:                          precRelational,
	lexer.GT:                          precRelational,
	lexer.LE:                          precRelational,
	lexer.GE:                          precRelational,
	lexer.INSTANCEOF:                  precRelational,
	lexer.IN:                          precRelational,
	lexer.LEFT_SHIFT:                  precShift,
	lexer.RIGHT_SHIFT:                 precShift,
	lexer.UNSIGNED_RIGHT_SHIFT:        precShift,
	lexer.PLUS:                        precAdditive,
	lexer.MINUS:                       precAdditive,
	lexer.ASTERISK:                    precMultiplicative,
	lexer.SLASH:                       precMultiplicative,
	lexer.REMAINDER:                   precMultiplicative,
	lexer.EXPONENT:                    precExponent,
	lexer.LPAREN:                      precCall,
	lexer.DOT:                         precMember,
	lexer.LBRACKET:                    precMember,
	lexer.INC:                         precUpdate,
	lexer.DEC:                         precUpdate,
}

// Parser builds one ast.Program per source file; it is single-use.
type Parser struct {
	l      *lexer.Lexer
	src    *source.SourceFile
	cur    lexer.Token
	peek   lexer.Token
	errors []errors.EngineError
}

func New(src *source.SourceFile) *Parser {
	p := &Parser{l: lexer.NewLexerWithSource(src), src: src}
	p.next()
	p.next()
	return p
}

func (p *Parser) Errors() []errors.EngineError { return p.errors }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) pos(t lexer.Token) errors.Position {
	return errors.Position{Line: t.Line, Column: t.Column, StartPos: t.StartPos, EndPos: t.EndPos, Source: p.src}
}

func (p *Parser) errorf(t lexer.Token, format string, args ...interface{}) {
	p.errors = append(p.errors, &errors.SyntaxError{Position: p.pos(t), Msg: fmt.Sprintf(format, args...)})
}

func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	t := p.cur
	if p.cur.Type != tt {
		p.errorf(p.cur, "expected %s, got %s (%q)", tt, p.cur.Type, p.cur.Literal)
	} else {
		p.next()
	}
	return t
}

func (p *Parser) skipSemicolon() {
	if p.cur.Type == lexer.SEMICOLON {
		p.next()
	}
}

// ParseProgram parses the whole source file.
func ParseProgram(src *source.SourceFile) (*ast.Program, []errors.EngineError) {
	p := New(src)
	prog := &ast.Program{Position: p.pos(p.cur)}
	for p.cur.Type != lexer.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Body = append(prog.Body, stmt)
		}
	}
	return prog, p.errors
}

// --- Statements ---

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case lexer.VAR, lexer.LET, lexer.CONST:
		return p.parseVarStatement()
	case lexer.LBRACE:
		return p.parseBlockStatement()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.DO:
		return p.parseDoWhileStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.BREAK:
		pos := p.pos(p.cur)
		p.next()
		p.skipSemicolon()
		return &ast.BreakStatement{Position: pos}
	case lexer.CONTINUE:
		pos := p.pos(p.cur)
		p.next()
		p.skipSemicolon()
		return &ast.ContinueStatement{Position: pos}
	case lexer.THROW:
		return p.parseThrowStatement()
	case lexer.TRY:
		return p.parseTryStatement()
	case lexer.FUNCTION:
		return p.parseFunctionDeclaration()
	case lexer.SEMICOLON:
		p.next()
		return nil
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseVarStatement() ast.Statement {
	kind := string(p.cur.Type)
	pos := p.pos(p.cur)
	p.next()
	name := p.expect(lexer.IDENT).Literal
	var init ast.Expression
	if p.cur.Type == lexer.ASSIGN {
		p.next()
		init = p.parseExpression(precAssignment)
	}
	stmt := &ast.VarStatement{Kind: kindLower(kind), Name: name, Init: init, Position: pos}
	p.skipSemicolon()
	return stmt
}

func kindLower(k string) string {
	switch k {
	case "VAR":
		return "var"
	case "LET":
		return "let"
	case "CONST":
		return "const"
	default:
		return k
	}
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	pos := p.pos(p.cur)
	p.expect(lexer.LBRACE)
	block := &ast.BlockStatement{Position: pos}
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		if s := p.parseStatement(); s != nil {
			block.Body = append(block.Body, s)
		}
	}
	p.expect(lexer.RBRACE)
	return block
}

func (p *Parser) parseIfStatement() ast.Statement {
	pos := p.pos(p.cur)
	p.next()
	p.expect(lexer.LPAREN)
	test := p.parseExpression(precLowest)
	p.expect(lexer.RPAREN)
	cons := p.parseStatement()
	var alt ast.Statement
	if p.cur.Type == lexer.ELSE {
		p.next()
		alt = p.parseStatement()
	}
	return &ast.IfStatement{Test: test, Consequent: cons, Alternate: alt, Position: pos}
}

func (p *Parser) parseWhileStatement() ast.Statement {
	pos := p.pos(p.cur)
	p.next()
	p.expect(lexer.LPAREN)
	test := p.parseExpression(precLowest)
	p.expect(lexer.RPAREN)
	body := p.parseStatement()
	return &ast.WhileStatement{Test: test, Body: body, Position: pos}
}

func (p *Parser) parseDoWhileStatement() ast.Statement {
	pos := p.pos(p.cur)
	p.next()
	body := p.parseStatement()
	p.expect(lexer.WHILE)
	p.expect(lexer.LPAREN)
	test := p.parseExpression(precLowest)
	p.expect(lexer.RPAREN)
	p.skipSemicolon()
	return &ast.DoWhileStatement{Test: test, Body: body, Position: pos}
}

func (p *Parser) parseForStatement() ast.Statement {
	pos := p.pos(p.cur)
	p.next()
	p.expect(lexer.LPAREN)

	var init ast.Statement
	declKind := ""
	declName := ""
	if p.cur.Type == lexer.VAR || p.cur.Type == lexer.LET || p.cur.Type == lexer.CONST {
		declKind = kindLower(string(p.cur.Type))
		declPos := p.pos(p.cur)
		p.next()
		declName = p.expect(lexer.IDENT).Literal
		if p.cur.Type == lexer.OF || p.cur.Type == lexer.IN {
			isOf := p.cur.Type == lexer.OF
			p.next()
			right := p.parseExpression(precLowest)
			p.expect(lexer.RPAREN)
			body := p.parseStatement()
			return &ast.ForInOfStatement{Kind: declKind, Name: declName, IsOf: isOf, Right: right, Body: body, Position: pos}
		}
		var decInit ast.Expression
		if p.cur.Type == lexer.ASSIGN {
			p.next()
			decInit = p.parseExpression(precAssignment)
		}
		init = &ast.VarStatement{Kind: declKind, Name: declName, Init: decInit, Position: declPos}
	} else if p.cur.Type != lexer.SEMICOLON {
		exprPos := p.pos(p.cur)
		expr := p.parseExpression(precLowest)
		if ident, ok := expr.(*ast.Identifier); ok && (p.cur.Type == lexer.OF || p.cur.Type == lexer.IN) {
			isOf := p.cur.Type == lexer.OF
			p.next()
			right := p.parseExpression(precLowest)
			p.expect(lexer.RPAREN)
			body := p.parseStatement()
			return &ast.ForInOfStatement{Name: ident.Name, IsOf: isOf, Right: right, Body: body, Position: pos}
		}
		init = &ast.ExpressionStatement{Expression: expr, Position: exprPos}
	}
	p.expect(lexer.SEMICOLON)

	var test ast.Expression
	if p.cur.Type != lexer.SEMICOLON {
		test = p.parseExpression(precLowest)
	}
	p.expect(lexer.SEMICOLON)

	var update ast.Expression
	if p.cur.Type != lexer.RPAREN {
		update = p.parseExpression(precLowest)
	}
	p.expect(lexer.RPAREN)

	body := p.parseStatement()
	return &ast.ForStatement{Init: init, Test: test, Update: update, Body: body, Position: pos}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	pos := p.pos(p.cur)
	p.next()
	var arg ast.Expression
	if p.cur.Type != lexer.SEMICOLON && p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		arg = p.parseExpression(precLowest)
	}
	p.skipSemicolon()
	return &ast.ReturnStatement{Argument: arg, Position: pos}
}

func (p *Parser) parseThrowStatement() ast.Statement {
	pos := p.pos(p.cur)
	p.next()
	arg := p.parseExpression(precLowest)
	p.skipSemicolon()
	return &ast.ThrowStatement{Argument: arg, Position: pos}
}

func (p *Parser) parseTryStatement() ast.Statement {
	pos := p.pos(p.cur)
	p.next()
	block := p.parseBlockStatement()
	stmt := &ast.TryStatement{Block: block, Position: pos}
	if p.cur.Type == lexer.CATCH {
		p.next()
		clause := &ast.CatchClause{}
		if p.cur.Type == lexer.LPAREN {
			p.next()
			clause.Param = p.expect(lexer.IDENT).Literal
			p.expect(lexer.RPAREN)
		}
		clause.Body = p.parseBlockStatement()
		stmt.Catch = clause
	}
	if p.cur.Type == lexer.FINALLY {
		p.next()
		stmt.Finally = p.parseBlockStatement()
	}
	return stmt
}

func (p *Parser) parseFunctionDeclaration() ast.Statement {
	pos := p.pos(p.cur)
	fn := p.parseFunctionLiteral(pos)
	return &ast.FunctionDeclaration{Function: fn, Position: pos}
}

func (p *Parser) parseFunctionLiteral(pos errors.Position) *ast.FunctionLiteral {
	p.expect(lexer.FUNCTION)
	name := ""
	if p.cur.Type == lexer.IDENT {
		name = p.cur.Literal
		p.next()
	}
	params := p.parseParamList()
	body := p.parseBlockStatement()
	return &ast.FunctionLiteral{Name: name, Params: params, Body: body, Position: pos}
}

func (p *Parser) parseParamList() []*ast.Identifier {
	p.expect(lexer.LPAREN)
	var params []*ast.Identifier
	for p.cur.Type != lexer.RPAREN && p.cur.Type != lexer.EOF {
		params = append(params, &ast.Identifier{Name: p.cur.Literal, Position: p.pos(p.cur)})
		p.next()
		if p.cur.Type == lexer.COMMA {
			p.next()
		}
	}
	p.expect(lexer.RPAREN)
	return params
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	pos := p.pos(p.cur)
	expr := p.parseExpression(precLowest)
	p.skipSemicolon()
	return &ast.ExpressionStatement{Expression: expr, Position: pos}
}

// --- Expressions (Pratt) ---

func (p *Parser) parseExpression(prec precedence) ast.Expression {
	left := p.parsePrefix()
	for p.cur.Type != lexer.SEMICOLON && prec < p.curPrecedence() {
		left = p.parseInfix(left)
	}
	if p.cur.Type == lexer.COMMA && prec == precLowest {
		seq := &ast.SequenceExpression{Expressions: []ast.Expression{left}, Position: left.Pos()}
		for p.cur.Type == lexer.COMMA {
			p.next()
			seq.Expressions = append(seq.Expressions, p.parseExpression(precAssignment))
		}
		return seq
	}
	return left
}

func (p *Parser) curPrecedence() precedence {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return precLowest
}

func (p *Parser) parsePrefix() ast.Expression {
	tok := p.cur
	pos := p.pos(tok)
	switch tok.Type {
	case lexer.IDENT:
		p.next()
		if p.cur.Type == lexer.ARROW {
			return p.parseArrowFromIdent(tok, pos)
		}
		return &ast.Identifier{Name: tok.Literal, Position: pos}
	case lexer.NUMBER:
		p.next()
		f, _ := strconv.ParseFloat(tok.Literal, 64)
		return &ast.NumberLiteral{Value: f, Position: pos}
	case lexer.STRING:
		p.next()
		return &ast.StringLiteral{Value: tok.Literal, Position: pos}
	case lexer.TRUE:
		p.next()
		return &ast.BooleanLiteral{Value: true, Position: pos}
	case lexer.FALSE:
		p.next()
		return &ast.BooleanLiteral{Value: false, Position: pos}
	case lexer.NULL:
		p.next()
		return &ast.NullLiteral{Position: pos}
	case lexer.UNDEFINED:
		p.next()
		return &ast.UndefinedLiteral{Position: pos}
	case lexer.THIS:
		p.next()
		return &ast.ThisExpression{Position: pos}
	case lexer.LPAREN:
		return p.parseParenOrArrow()
	case lexer.LBRACKET:
		return p.parseArrayLiteral()
	case lexer.LBRACE:
		return p.parseObjectLiteral()
	case lexer.FUNCTION:
		return p.parseFunctionLiteral(pos)
	case lexer.NEW:
		return p.parseNewExpression()
	case lexer.BANG, lexer.MINUS, lexer.PLUS, lexer.BITWISE_NOT, lexer.TYPEOF, lexer.VOID, lexer.DELETE:
		p.next()
		operand := p.parseExpression(precUnary)
		return &ast.UnaryExpression{Operator: tok.Literal, Operand: operand, Position: pos}
	case lexer.INC, lexer.DEC:
		p.next()
		operand := p.parseExpression(precUnary)
		return &ast.UpdateExpression{Operator: string(tok.Type), Operand: operand, Prefix: true, Position: pos}
	default:
		p.errorf(tok, "unexpected token %s (%q)", tok.Type, tok.Literal)
		p.next()
		return &ast.UndefinedLiteral{Position: pos}
	}
}

func (p *Parser) parseArrowFromIdent(ident lexer.Token, pos errors.Position) ast.Expression {
	p.expect(lexer.ARROW)
	params := []*ast.Identifier{{Name: ident.Literal, Position: pos}}
	return p.finishArrow(params, pos)
}

func (p *Parser) parseParenOrArrow() ast.Expression {
	pos := p.pos(p.cur)
	save := p.l.SaveState()
	savedCur, savedPeek := p.cur, p.peek

	if params, ok := p.tryParseArrowParams(); ok && p.cur.Type == lexer.ARROW {
		p.next()
		return p.finishArrow(params, pos)
	}

	p.l.RestoreState(save)
	p.cur, p.peek = savedCur, savedPeek

	p.expect(lexer.LPAREN)
	expr := p.parseExpression(precLowest)
	p.expect(lexer.RPAREN)
	return expr
}

// tryParseArrowParams speculatively parses "(a, b)" as a parameter list;
// callers restore lexer state themselves if the following token isn't
// "=>", since plain parenthesized expressions use the same prefix.
func (p *Parser) tryParseArrowParams() (params []*ast.Identifier, ok bool) {
	if p.cur.Type != lexer.LPAREN {
		return nil, false
	}
	p.next()
	for p.cur.Type != lexer.RPAREN {
		if p.cur.Type != lexer.IDENT {
			return nil, false
		}
		params = append(params, &ast.Identifier{Name: p.cur.Literal, Position: p.pos(p.cur)})
		p.next()
		if p.cur.Type == lexer.COMMA {
			p.next()
		} else if p.cur.Type != lexer.RPAREN {
			return nil, false
		}
	}
	p.next()
	return params, true
}

func (p *Parser) finishArrow(params []*ast.Identifier, pos errors.Position) ast.Expression {
	fn := &ast.FunctionLiteral{Params: params, IsArrow: true, Position: pos}
	if p.cur.Type == lexer.LBRACE {
		fn.Body = p.parseBlockStatement()
	} else {
		exprPos := p.pos(p.cur)
		expr := p.parseExpression(precAssignment)
		fn.Body = &ast.BlockStatement{
			Body:     []ast.Statement{&ast.ReturnStatement{Argument: expr, Position: exprPos}},
			Position: exprPos,
		}
	}
	return fn
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	pos := p.pos(p.cur)
	p.next()
	arr := &ast.ArrayLiteral{Position: pos}
	for p.cur.Type != lexer.RBRACKET && p.cur.Type != lexer.EOF {
		if p.cur.Type == lexer.COMMA {
			arr.Elements = append(arr.Elements, nil)
			p.next()
			continue
		}
		arr.Elements = append(arr.Elements, p.parseExpression(precAssignment))
		if p.cur.Type == lexer.COMMA {
			p.next()
		}
	}
	p.expect(lexer.RBRACKET)
	return arr
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	pos := p.pos(p.cur)
	p.next()
	obj := &ast.ObjectLiteral{Position: pos}
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		var key ast.Expression
		computed := false
		if p.cur.Type == lexer.LBRACKET {
			p.next()
			key = p.parseExpression(precLowest)
			p.expect(lexer.RBRACKET)
			computed = true
		} else if p.cur.Type == lexer.STRING {
			key = &ast.StringLiteral{Value: p.cur.Literal, Position: p.pos(p.cur)}
			p.next()
		} else if p.cur.Type == lexer.NUMBER {
			key = &ast.StringLiteral{Value: p.cur.Literal, Position: p.pos(p.cur)}
			p.next()
		} else {
			key = &ast.StringLiteral{Value: p.cur.Literal, Position: p.pos(p.cur)}
			p.next()
		}

		var val ast.Expression
		if p.cur.Type == lexer.COLON {
			p.next()
			val = p.parseExpression(precAssignment)
		} else if ident, ok := key.(*ast.StringLiteral); ok {
			// shorthand { x }
			val = &ast.Identifier{Name: ident.Value, Position: ident.Position}
		}
		obj.Properties = append(obj.Properties, ast.ObjectProperty{Key: key, Value: val, Computed: computed})
		if p.cur.Type == lexer.COMMA {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	return obj
}

func (p *Parser) parseNewExpression() ast.Expression {
	pos := p.pos(p.cur)
	p.next()
	callee := p.parseExpression(precMember)
	var args []ast.Expression
	if p.cur.Type == lexer.LPAREN {
		args = p.parseArgumentList()
	}
	return &ast.NewExpression{Callee: callee, Arguments: args, Position: pos}
}

func (p *Parser) parseArgumentList() []ast.Expression {
	p.expect(lexer.LPAREN)
	var args []ast.Expression
	for p.cur.Type != lexer.RPAREN && p.cur.Type != lexer.EOF {
		args = append(args, p.parseExpression(precAssignment))
		if p.cur.Type == lexer.COMMA {
			p.next()
		}
	}
	p.expect(lexer.RPAREN)
	return args
}

var assignmentOps = map[lexer.TokenType]bool{
	lexer.ASSIGN: true, lexer.PLUS_ASSIGN: true, lexer.MINUS_ASSIGN: true,
	lexer.ASTERISK_ASSIGN: true, lexer.SLASH_ASSIGN: true, lexer.REMAINDER_ASSIGN: true,
	lexer.EXPONENT_ASSIGN: true, lexer.BITWISE_AND_ASSIGN: true, lexer.BITWISE_OR_ASSIGN: true,
	lexer.BITWISE_XOR_ASSIGN: true, lexer.LEFT_SHIFT_ASSIGN: true, lexer.RIGHT_SHIFT_ASSIGN: true,
	lexer.UNSIGNED_RIGHT_SHIFT_ASSIGN: true, lexer.LOGICAL_AND_ASSIGN: true,
	lexer.LOGICAL_OR_ASSIGN: true, lexer.COALESCE_ASSIGN: true,
}

func (p *Parser) parseInfix(left ast.Expression) ast.Expression {
	tok := p.cur
	pos := p.pos(tok)

	switch tok.Type {
	case lexer.DOT:
		p.next()
		prop := &ast.Identifier{Name: p.cur.Literal, Position: p.pos(p.cur)}
		p.next()
		return &ast.MemberExpression{Object: left, Property: prop, Computed: false, Position: pos}
	case lexer.LBRACKET:
		p.next()
		prop := p.parseExpression(precLowest)
		p.expect(lexer.RBRACKET)
		return &ast.MemberExpression{Object: left, Property: prop, Computed: true, Position: pos}
	case lexer.LPAREN:
		args := p.parseArgumentList()
		return &ast.CallExpression{Callee: left, Arguments: args, Position: pos}
	case lexer.INC, lexer.DEC:
		p.next()
		return &ast.UpdateExpression{Operator: string(tok.Type), Operand: left, Prefix: false, Position: pos}
	case lexer.QUESTION:
		p.next()
		cons := p.parseExpression(precAssignment)
		p.expect(lexer.COLON)
		alt := p.parseExpression(precAssignment)
		return &ast.ConditionalExpression{Test: left, Consequent: cons, Alternate: alt, Position: pos}
	case lexer.LOGICAL_AND, lexer.LOGICAL_OR, lexer.COALESCE:
		prec := p.curPrecedence()
		p.next()
		right := p.parseExpression(prec)
		return &ast.LogicalExpression{Operator: string(tok.Type), Left: left, Right: right, Position: pos}
	default:
		if assignmentOps[tok.Type] {
			p.next()
			right := p.parseExpression(precAssignment - 1)
			return &ast.AssignmentExpression{Operator: string(tok.Type), Target: left, Value: right, Position: pos}
		}
		prec := p.curPrecedence()
		p.next()
		rightPrec := prec
		if tok.Type == lexer.EXPONENT {
			rightPrec-- // right-associative
		}
		right := p.parseExpression(rightPrec)
		return &ast.BinaryExpression{Operator: tok.Literal, Left: left, Right: right, Position: pos}
	}
}
