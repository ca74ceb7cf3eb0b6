package gridsheet

import (
	"strings"
)

// TokenType represents different types of tokens in formulas
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenString
	TokenCell
	TokenRange
	TokenFunction
	TokenUnaryPrefixOp
	TokenBinaryOp
	TokenComma
	TokenLeftParen
	TokenRightParen
	TokenWhitespace
	TokenError
)

// BinaryOp represents binary operators in AST nodes
type BinaryOp int

const (
	BinOpAdd BinaryOp = iota
	BinOpSubtract
	BinOpMultiply
	BinOpDivide
)

// UnaryOp represents unary operators in AST nodes
type UnaryOp int

const (
	UnaryOpPlus UnaryOp = iota
	UnaryOpMinus
)

// Token represents a lexical token with position information
type Token struct {
	Type  TokenType
	Value string
	Pos   int // rune position in input
}

// TokenState is what the lexer saw last, which decides what may follow
type TokenState int

const (
	StateStart TokenState = iota
	StateAfterValue
	StateAfterOperator
	StateAfterLeftParen
	StateAfterRightParen
	StateAfterComma
	StateAfterFunction
)

// tokenSet is a bitmask of token types
type tokenSet uint16

func setOf(types ...TokenType) tokenSet {
	var s tokenSet
	for _, t := range types {
		s |= 1 << t
	}
	return s
}

func (s tokenSet) has(t TokenType) bool {
	return s&(1<<t) != 0
}

var (
	// operands that may open an expression. a bare range is allowed so the
	// parser can report it as a type mismatch rather than a syntax error.
	operandStart = setOf(TokenNumber, TokenString, TokenCell, TokenRange, TokenFunction, TokenLeftParen, TokenUnaryPrefixOp)
	// ranges only make sense as function arguments
	operandAfterOp = setOf(TokenNumber, TokenString, TokenCell, TokenFunction, TokenLeftParen, TokenUnaryPrefixOp)
	afterOperand   = setOf(TokenBinaryOp, TokenRightParen, TokenComma, TokenEOF)
)

// follows lists the token types accepted in each state
var follows = [...]tokenSet{
	StateStart:           operandStart,
	StateAfterValue:      afterOperand,
	StateAfterOperator:   operandAfterOp,
	StateAfterLeftParen:  operandStart | setOf(TokenRightParen),
	StateAfterRightParen: afterOperand,
	StateAfterComma:      operandStart,
	StateAfterFunction:   setOf(TokenLeftParen),
}

// stateAfter is the state entered once a token of type t is accepted
func stateAfter(t TokenType) TokenState {
	switch t {
	case TokenNumber, TokenString, TokenCell, TokenRange:
		return StateAfterValue
	case TokenUnaryPrefixOp, TokenBinaryOp:
		return StateAfterOperator
	case TokenLeftParen:
		return StateAfterLeftParen
	case TokenRightParen:
		return StateAfterRightParen
	case TokenComma:
		return StateAfterComma
	default:
		return StateAfterFunction
	}
}

// Lexer tokenizes a formula body (the text after the leading '=')
type Lexer struct {
	src    []rune
	pos    int
	state  TokenState
	depth  int
	tokens []Token
}

// NewLexer creates a new lexer for the given formula body
func NewLexer(input string) *Lexer {
	return &Lexer{src: []rune(input)}
}

// Tokenize tokenizes the entire input. the returned slice always ends with
// a TokenEOF on success.
func (l *Lexer) Tokenize() ([]Token, error) {
	if strings.TrimSpace(string(l.src)) == "" {
		return nil, NewEvaluationError(SyntaxError, "empty formula")
	}

	for {
		tok := l.next()
		if tok.Type == TokenError {
			return nil, NewEvaluationError(SyntaxError, tok.Value)
		}
		if !follows[l.state].has(tok.Type) {
			if tok.Type == TokenEOF {
				return nil, NewEvaluationError(SyntaxError, "unexpected end of formula")
			}
			return nil, NewEvaluationError(SyntaxError, "unexpected token: "+tok.Value)
		}
		l.tokens = append(l.tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
		l.state = stateAfter(tok.Type)
	}

	if l.depth > 0 {
		return nil, NewEvaluationError(SyntaxError, "unbalanced parentheses: missing closing parenthesis")
	}
	return l.tokens, nil
}

func (l *Lexer) peek(offset int) rune {
	if i := l.pos + offset; i >= 0 && i < len(l.src) {
		return l.src[i]
	}
	return 0
}

// acceptRun consumes runes while ok holds and reports how many it took
func (l *Lexer) acceptRun(ok func(rune) bool) int {
	start := l.pos
	for l.pos < len(l.src) && ok(l.src[l.pos]) {
		l.pos++
	}
	return l.pos - start
}

func (l *Lexer) emit(t TokenType, start int) Token {
	return Token{Type: t, Value: string(l.src[start:l.pos]), Pos: start}
}

func (l *Lexer) fail(start int, msg string) Token {
	return Token{Type: TokenError, Value: msg, Pos: start}
}

func (l *Lexer) next() Token {
	l.acceptRun(isSpace)
	start := l.pos
	if start >= len(l.src) {
		return Token{Type: TokenEOF, Pos: start}
	}

	switch ch := l.src[start]; {
	case ch == '"':
		return l.scanString()
	case isDigit(ch), ch == '.' && isDigit(l.peek(1)):
		return l.scanNumber()
	case isLetter(ch), ch == '_':
		return l.scanName()
	case ch == '(':
		l.pos++
		l.depth++
		return l.emit(TokenLeftParen, start)
	case ch == ')':
		l.pos++
		if l.depth--; l.depth < 0 {
			return l.fail(start, "unexpected closing parenthesis")
		}
		return l.emit(TokenRightParen, start)
	case ch == ',':
		l.pos++
		return l.emit(TokenComma, start)
	case ch == '+', ch == '-':
		l.pos++
		// a sign where an operand is expected binds to that operand
		if follows[l.state].has(TokenUnaryPrefixOp) {
			return l.emit(TokenUnaryPrefixOp, start)
		}
		return l.emit(TokenBinaryOp, start)
	case ch == '*', ch == '/':
		l.pos++
		return l.emit(TokenBinaryOp, start)
	default:
		l.pos++
		return l.fail(start, "unexpected character: "+string(ch))
	}
}

// scanNumber reads digits with an optional fraction and exponent
func (l *Lexer) scanNumber() Token {
	start := l.pos
	l.acceptRun(isDigit)
	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		l.pos++
		l.acceptRun(isDigit)
	}
	if e := l.peek(0); e == 'e' || e == 'E' {
		mark := l.pos
		l.pos++
		if s := l.peek(0); s == '+' || s == '-' {
			l.pos++
		}
		if l.acceptRun(isDigit) == 0 {
			l.pos = mark
		}
	}

	if next := l.peek(0); isLetter(next) || next == '.' {
		return l.fail(start, "malformed number: "+string(l.src[start:l.pos+1]))
	}
	return l.emit(TokenNumber, start)
}

// scanString reads a quoted literal; "" inside it is one quote
func (l *Lexer) scanString() Token {
	start := l.pos
	l.pos++

	var b strings.Builder
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		l.pos++
		if ch != '"' {
			b.WriteRune(ch)
			continue
		}
		if l.peek(0) != '"' {
			return Token{Type: TokenString, Value: b.String(), Pos: start}
		}
		b.WriteRune('"')
		l.pos++
	}
	return l.fail(start, "unclosed string literal")
}

// scanName reads a cell, a range or a function name. named ranges are not
// supported, so any other word is an error.
func (l *Lexer) scanName() Token {
	start := l.pos
	l.acceptRun(func(r rune) bool { return isLetter(r) || isDigit(r) || r == '_' })
	word := string(l.src[start:l.pos])

	if !isCellShape(word) {
		if l.peek(0) == '(' {
			return Token{Type: TokenFunction, Value: strings.ToUpper(word), Pos: start}
		}
		return l.fail(start, "unknown name: "+word)
	}
	if l.peek(0) != ':' {
		return Token{Type: TokenCell, Value: strings.ToUpper(word), Pos: start}
	}

	l.pos++
	endStart := l.pos
	l.acceptRun(func(r rune) bool { return isLetter(r) || isDigit(r) })
	end := string(l.src[endStart:l.pos])
	if !isCellShape(end) {
		return l.fail(start, "invalid range reference: "+word+":"+end)
	}
	return Token{Type: TokenRange, Value: strings.ToUpper(word + ":" + end), Pos: start}
}

// isCellShape reports letters followed by digits, in either case. the row
// is not range checked here.
func isCellShape(s string) bool {
	letters := strings.IndexFunc(s, func(r rune) bool { return !isLetter(r) })
	if letters <= 0 {
		return false
	}
	return strings.IndexFunc(s[letters:], func(r rune) bool { return !isDigit(r) }) == -1
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
