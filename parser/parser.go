// Recursive descent parser
// https://en.wikipedia.org/wiki/Recursive_descent_parser
//
// A recursive descent parser is a top-down parser: it starts from the
// top grammar rule and works its way down into nested sub-expressions
// before reaching the leaves of the syntax tree (terminal rules).
package parser

import (
	"fmt"

	"github.com/oddbirdflies/osprey/ast"
	"github.com/oddbirdflies/osprey/token"
)

// Parser holds a single mutable cursor over a token buffer.
type Parser struct {
	tokens   []token.Token
	position int
}

// Make initialises a Parser positioned at the first token.
func Make(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, position: 0}
}

// Parse parses the full token buffer into a Program, or returns the
// first parse error encountered. There is no error recovery: parsing
// short-circuits on the first failure.
func Parse(tokens []token.Token) (ast.Program, error) {
	parser := Make(tokens)
	statements := []ast.Stmt{}

	for parser.current().TokenType != token.EOF {
		stmt, err := parser.statement()
		if err != nil {
			return ast.Program{}, err
		}
		statements = append(statements, stmt)
	}

	return ast.Program{Statements: statements}, nil
}

// peek returns the token offset units ahead of the parser's current
// position without consuming anything. peek(0) is the current token.
func (parser *Parser) peek(offset int) token.Token {
	idx := parser.position + offset
	if idx >= len(parser.tokens) {
		return parser.tokens[len(parser.tokens)-1]
	}
	return parser.tokens[idx]
}

func (parser *Parser) current() token.Token {
	return parser.peek(0)
}

// consume unconditionally advances the cursor one token and returns the
// token that was current before advancing.
func (parser *Parser) consume() token.Token {
	tok := parser.current()
	if tok.TokenType != token.EOF {
		parser.position++
	}
	return tok
}

// matchConsume advances only if the current token's kind equals kind.
func (parser *Parser) matchConsume(kind token.TokenType) bool {
	if parser.current().TokenType == kind {
		parser.consume()
		return true
	}
	return false
}

// matchAny advances and returns the consumed token if the current
// token's kind is any of kinds.
func (parser *Parser) matchAny(kinds ...token.TokenType) (token.Token, bool) {
	current := parser.current()
	for _, kind := range kinds {
		if current.TokenType == kind {
			parser.consume()
			return current, true
		}
	}
	return token.Token{}, false
}

// expect consumes the current token if it matches kind, otherwise
// returns a SyntaxError annotated with the offending token's position.
func (parser *Parser) expect(kind token.TokenType, message string) (token.Token, error) {
	if parser.current().TokenType == kind {
		return parser.consume(), nil
	}
	current := parser.current()
	return token.Token{}, CreateSyntaxError(current.Line, current.Column, message)
}

// statement dispatches on lookahead: `identifier ':' '='` is a function
// declaration, as is `identifier ':'` followed by a function literal
// (a parameter list whose `-> type` is followed by '{' rather than '=');
// any other `identifier ':' ...` is a variable declaration, and a bare
// `identifier` starts an assignment. `return` and `if` dispatch on the
// first token alone.
func (parser *Parser) statement() (ast.Stmt, error) {
	current := parser.current()
	switch current.TokenType {
	case token.Return:
		return parser.returnStatement()
	case token.If:
		return parser.ifStatement()
	case token.Identifier:
		if parser.peek(1).TokenType == token.Colon {
			if parser.peek(2).TokenType == token.Assign {
				return parser.functionDecl()
			}
			if parser.peek(2).TokenType == token.LeftParen {
				if parser.peek(3).TokenType == token.Identifier && parser.peek(4).TokenType == token.Colon {
					return parser.functionDecl()
				}
				saved := parser.position
				parser.position += 2
				_, typeErr := parser.parseType()
				isFunction := typeErr == nil && parser.current().TokenType == token.LeftCurly
				parser.position = saved
				if isFunction {
					return parser.functionDecl()
				}
			}
			return parser.variableDecl()
		}
		return parser.assignment()
	default:
		return nil, CreateSyntaxError(current.Line, current.Column,
			fmt.Sprintf("unexpected token %q at start of statement", current.Lexeme))
	}
}

func (parser *Parser) returnStatement() (ast.Stmt, error) {
	parser.consume() // 'return'
	value, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.expect(token.Semicolon, "expected ';' after return statement"); err != nil {
		return nil, err
	}
	return ast.Return{Value: value}, nil
}

func (parser *Parser) ifStatement() (ast.Stmt, error) {
	parser.consume() // 'if'
	if _, err := parser.expect(token.LeftParen, "expected '(' after 'if'"); err != nil {
		return nil, err
	}
	predicate, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.expect(token.RightParen, "expected ')' after if condition"); err != nil {
		return nil, err
	}
	body, err := parser.block()
	if err != nil {
		return nil, err
	}
	return ast.If{Predicate: predicate, True: body}, nil
}

// block parses `'{' statement* '}'`.
func (parser *Parser) block() (ast.Block, error) {
	if _, err := parser.expect(token.LeftCurly, "expected '{' to start block"); err != nil {
		return ast.Block{}, err
	}

	statements := []ast.Stmt{}
	for parser.current().TokenType != token.RightCurly {
		if parser.current().TokenType == token.EOF {
			current := parser.current()
			return ast.Block{}, CreateSyntaxError(current.Line, current.Column, "unterminated block")
		}
		stmt, err := parser.statement()
		if err != nil {
			return ast.Block{}, err
		}
		statements = append(statements, stmt)
	}
	parser.consume() // '}'

	return ast.Block{Statements: statements}, nil
}

// functionDecl parses `identifier ':' '='? function_expr`.
func (parser *Parser) functionDecl() (ast.Stmt, error) {
	name := parser.consume()          // identifier
	parser.consume()                  // ':'
	parser.matchConsume(token.Assign) // optional '='

	function, err := parser.functionExpr()
	if err != nil {
		return nil, err
	}
	return ast.FunctionDecl{Identifier: name.Lexeme, Function: function}, nil
}

// variableDecl parses `identifier ':' ('mut')? type '=' expr ';'`.
func (parser *Parser) variableDecl() (ast.Stmt, error) {
	name := parser.consume() // identifier
	parser.consume()         // ':'

	mutable := parser.matchConsume(token.Mutable)
	declaredType, err := parser.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := parser.expect(token.Assign, "expected '=' in variable declaration"); err != nil {
		return nil, err
	}
	value, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.expect(token.Semicolon, "expected ';' after variable declaration"); err != nil {
		return nil, err
	}

	return ast.VariableDecl{
		Identifier:  name.Lexeme,
		Type:        declaredType,
		Mutable:     mutable,
		Initializer: value,
	}, nil
}

// assignment parses `identifier '=' expr ';'`.
func (parser *Parser) assignment() (ast.Stmt, error) {
	name := parser.consume() // identifier
	if _, err := parser.expect(token.Assign, "expected '=' in assignment"); err != nil {
		return nil, err
	}
	value, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.expect(token.Semicolon, "expected ';' after assignment"); err != nil {
		return nil, err
	}
	return ast.Assignment{Identifier: name.Lexeme, Value: value}, nil
}

// functionExpr parses `'(' parameter_list? ')' '->' type block`.
func (parser *Parser) functionExpr() (ast.FunctionExpr, error) {
	if _, err := parser.expect(token.LeftParen, "expected '(' to start function parameters"); err != nil {
		return ast.FunctionExpr{}, err
	}

	params := []ast.Param{}
	if parser.current().TokenType != token.RightParen {
		for {
			name, err := parser.expect(token.Identifier, "expected parameter name")
			if err != nil {
				return ast.FunctionExpr{}, err
			}
			if _, err := parser.expect(token.Colon, "expected ':' after parameter name"); err != nil {
				return ast.FunctionExpr{}, err
			}
			paramType, err := parser.parseType()
			if err != nil {
				return ast.FunctionExpr{}, err
			}
			params = append(params, ast.Param{Identifier: name.Lexeme, Type: paramType})
			if !parser.matchConsume(token.Comma) {
				break
			}
		}
	}
	if _, err := parser.expect(token.RightParen, "expected ')' after parameter list"); err != nil {
		return ast.FunctionExpr{}, err
	}
	if _, err := parser.expect(token.RightArrow, "expected '->' after parameter list"); err != nil {
		return ast.FunctionExpr{}, err
	}
	returnType, err := parser.parseType()
	if err != nil {
		return ast.FunctionExpr{}, err
	}
	body, err := parser.block()
	if err != nil {
		return ast.FunctionExpr{}, err
	}

	return ast.FunctionExpr{
		Signature: ast.FunctionSignature{Parameters: params, ReturnType: returnType},
		Body:      body,
	}, nil
}

// parseType parses `type := 'i32' | function_type`.
func (parser *Parser) parseType() (ast.Type, error) {
	if parser.matchConsume(token.I32) {
		return ast.I32Type{}, nil
	}

	if parser.current().TokenType == token.LeftParen {
		parser.consume()
		params := []ast.Type{}
		if parser.current().TokenType != token.RightParen {
			for {
				paramType, err := parser.parseType()
				if err != nil {
					return nil, err
				}
				params = append(params, paramType)
				if !parser.matchConsume(token.Comma) {
					break
				}
			}
		}
		if _, err := parser.expect(token.RightParen, "expected ')' after function type parameters"); err != nil {
			return nil, err
		}
		if _, err := parser.expect(token.RightArrow, "expected '->' in function type"); err != nil {
			return nil, err
		}
		returnType, err := parser.parseType()
		if err != nil {
			return nil, err
		}
		return ast.FunctionType{Parameters: params, Return: returnType}, nil
	}

	current := parser.current()
	return nil, CreateSyntaxError(current.Line, current.Column, "expected a type")
}

// expression is the entry point for the precedence ladder; it starts at
// the lowest-precedence rule, logical_or.
func (parser *Parser) expression() (ast.Expr, error) {
	return parser.logicalOr()
}

// logicalOr accepts at most one '||' right-hand operand.
func (parser *Parser) logicalOr() (ast.Expr, error) {
	left, err := parser.logicalAnd()
	if err != nil {
		return nil, err
	}
	if op, ok := parser.matchAny(token.Or); ok {
		right, err := parser.logicalAnd()
		if err != nil {
			return nil, err
		}
		return ast.BinaryExpr{Op: op.TokenType, Left: left, Right: right}, nil
	}
	return left, nil
}

// logicalAnd accepts at most one '&&' right-hand operand.
func (parser *Parser) logicalAnd() (ast.Expr, error) {
	left, err := parser.equality()
	if err != nil {
		return nil, err
	}
	if op, ok := parser.matchAny(token.And); ok {
		right, err := parser.equality()
		if err != nil {
			return nil, err
		}
		return ast.BinaryExpr{Op: op.TokenType, Left: left, Right: right}, nil
	}
	return left, nil
}

// equality accepts at most one '=='/'!=' right-hand operand.
func (parser *Parser) equality() (ast.Expr, error) {
	left, err := parser.relational()
	if err != nil {
		return nil, err
	}
	if op, ok := parser.matchAny(token.Equality, token.NotEquality); ok {
		right, err := parser.relational()
		if err != nil {
			return nil, err
		}
		return ast.BinaryExpr{Op: op.TokenType, Left: left, Right: right}, nil
	}
	return left, nil
}

// relational is left-associative over '<', '<=', '>', '>='.
func (parser *Parser) relational() (ast.Expr, error) {
	left, err := parser.additive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := parser.matchAny(token.Lt, token.LtEq, token.Gt, token.GtEq)
		if !ok {
			break
		}
		right, err := parser.additive()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryExpr{Op: op.TokenType, Left: left, Right: right}
	}
	return left, nil
}

// additive is left-associative over '+' and '-'.
func (parser *Parser) additive() (ast.Expr, error) {
	left, err := parser.multiplicative()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := parser.matchAny(token.Plus, token.Minus)
		if !ok {
			break
		}
		right, err := parser.multiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryExpr{Op: op.TokenType, Left: left, Right: right}
	}
	return left, nil
}

// multiplicative is left-associative over '*', '/', '%'.
func (parser *Parser) multiplicative() (ast.Expr, error) {
	left, err := parser.unary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := parser.matchAny(token.Asterisk, token.Divide, token.Percent)
		if !ok {
			break
		}
		right, err := parser.unary()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryExpr{Op: op.TokenType, Left: left, Right: right}
	}
	return left, nil
}

// unary parses a prefix '!' or '-', recursing to allow stacking
// (e.g. "--x"), otherwise defers to primary.
func (parser *Parser) unary() (ast.Expr, error) {
	if op, ok := parser.matchAny(token.Exclamation, token.Minus); ok {
		operand, err := parser.unary()
		if err != nil {
			return nil, err
		}
		return ast.UnaryExpr{Op: op.TokenType, Operand: operand}, nil
	}
	return parser.primary()
}

// primary parses integer literals, variable references, calls, function
// expressions, and parenthesised sub-expressions.
func (parser *Parser) primary() (ast.Expr, error) {
	current := parser.current()

	switch current.TokenType {
	case token.I32:
		parser.consume()
		return ast.Literal{Type: ast.I32Type{}, Value: current.Value}, nil

	case token.Identifier:
		parser.consume()
		if parser.current().TokenType != token.LeftParen {
			return ast.Variable{Identifier: current.Lexeme}, nil
		}
		parser.consume() // '('
		args := []ast.Expr{}
		if parser.current().TokenType != token.RightParen {
			for {
				arg, err := parser.expression()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if !parser.matchConsume(token.Comma) {
					break
				}
			}
		}
		if _, err := parser.expect(token.RightParen, "expected ')' after call arguments"); err != nil {
			return nil, err
		}
		return ast.FunctionCall{Identifier: current.Lexeme, Args: args}, nil

	case token.LeftParen:
		if parser.looksLikeFunctionExpr() {
			return parser.functionExpr()
		}
		parser.consume()
		inner, err := parser.expression()
		if err != nil {
			return nil, err
		}
		if _, err := parser.expect(token.RightParen, "expected ')' to close expression"); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		return nil, CreateSyntaxError(current.Line, current.Column, fmt.Sprintf("unexpected token %q", current.Lexeme))
	}
}

// looksLikeFunctionExpr decides, at an opening '(', whether this begins a
// function expression: either an empty parameter list `()` or a typed
// parameter `identifier ':'`. Anything else is a parenthesised expression.
func (parser *Parser) looksLikeFunctionExpr() bool {
	if parser.peek(1).TokenType == token.RightParen {
		return true
	}
	return parser.peek(1).TokenType == token.Identifier && parser.peek(2).TokenType == token.Colon
}
