package gridsheet

import (
	"fmt"
	"strconv"
	"strings"
)

type NodePosition struct {
	Start int
	End   int
}

// ASTNode is one node of a parsed formula. trees are rebuilt from the
// formula source on every evaluation pass and never persisted.
type ASTNode interface {
	Eval(ctx *EvalContext) (Primitive, error)
	GetPosition() NodePosition
	ToString() string
}

// binaryOps maps operator text to its operator and binding strength
var binaryOps = map[string]struct {
	op   BinaryOp
	prec int
}{
	"+": {BinOpAdd, 1},
	"-": {BinOpSubtract, 1},
	"*": {BinOpMultiply, 2},
	"/": {BinOpDivide, 2},
}

func (op BinaryOp) String() string {
	switch op {
	case BinOpAdd:
		return "+"
	case BinOpSubtract:
		return "-"
	case BinOpMultiply:
		return "*"
	case BinOpDivide:
		return "/"
	default:
		return "?"
	}
}

func (op BinaryOp) apply(l, r float64) (Primitive, error) {
	switch op {
	case BinOpAdd:
		return l + r, nil
	case BinOpSubtract:
		return l - r, nil
	case BinOpMultiply:
		return l * r, nil
	case BinOpDivide:
		if r == 0 {
			return nil, NewEvaluationError(DivisionByZero, "division by zero")
		}
		return l / r, nil
	default:
		return nil, NewEvaluationError(SyntaxError, "unknown operator")
	}
}

// StringNode represents a string literal
type StringNode struct {
	Value    string
	Position NodePosition
}

func (n *StringNode) Eval(*EvalContext) (Primitive, error) { return n.Value, nil }
func (n *StringNode) GetPosition() NodePosition { return n.Position }
func (n *StringNode) ToString() string {
	return `"` + strings.ReplaceAll(n.Value, `"`, `""`) + `"`
}

// NumberNode represents a numeric literal
type NumberNode struct {
	Value    float64
	Position NodePosition
}

func (n *NumberNode) Eval(*EvalContext) (Primitive, error) { return n.Value, nil }
func (n *NumberNode) GetPosition() NodePosition { return n.Position }
func (n *NumberNode) ToString() string { return FormatNumber(n.Value) }

// CellRefNode represents a reference to a single cell
type CellRefNode struct {
	Coord    Coord
	Position NodePosition
}

func (n *CellRefNode) Eval(ctx *EvalContext) (Primitive, error) {
	if !ctx.inBounds(n.Coord) {
		return nil, NewEvaluationError(UnresolvedReference, fmt.Sprintf("%s is outside the grid", ToLabel(n.Coord)))
	}
	return ctx.value(n.Coord)
}

func (n *CellRefNode) GetPosition() NodePosition { return n.Position }
func (n *CellRefNode) ToString() string { return ToLabel(n.Coord) }

// RangeNode represents a rectangular block of cells, only meaningful as an
// aggregate argument
type RangeNode struct {
	Range    Range
	Position NodePosition
}

func (n *RangeNode) Eval(ctx *EvalContext) (Primitive, error) {
	if !ctx.inBounds(n.Range.Start) || !ctx.inBounds(n.Range.End) {
		return nil, NewEvaluationError(UnresolvedReference, fmt.Sprintf("%s is outside the grid", n.Range))
	}
	return &rangeValue{bounds: n.Range, ctx: ctx}, nil
}

func (n *RangeNode) GetPosition() NodePosition { return n.Position }
func (n *RangeNode) ToString() string {
	return ToLabel(n.Range.Start) + ":" + ToLabel(n.Range.End)
}

// BinaryOpNode represents a binary operation. both sides are evaluated
// before either is coerced.
type BinaryOpNode struct {
	Op       BinaryOp
	Left     ASTNode
	Right    ASTNode
	Position NodePosition
}

func (n *BinaryOpNode) Eval(ctx *EvalContext) (Primitive, error) {
	var vals [2]Primitive
	for i, side := range [2]ASTNode{n.Left, n.Right} {
		v, err := side.Eval(ctx)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	var nums [2]float64
	for i, v := range vals {
		num, err := toNumber(v)
		if err != nil {
			return nil, err
		}
		nums[i] = num
	}
	return n.Op.apply(nums[0], nums[1])
}

func (n *BinaryOpNode) GetPosition() NodePosition { return n.Position }
func (n *BinaryOpNode) ToString() string {
	return "(" + n.Left.ToString() + n.Op.String() + n.Right.ToString() + ")"
}

// UnaryOpNode represents a sign applied to an operand
type UnaryOpNode struct {
	Op       UnaryOp
	Operand  ASTNode
	Position NodePosition
}

func (n *UnaryOpNode) Eval(ctx *EvalContext) (Primitive, error) {
	v, err := n.Operand.Eval(ctx)
	if err != nil {
		return nil, err
	}
	num, err := toNumber(v)
	if err != nil {
		return nil, err
	}
	if n.Op == UnaryOpMinus {
		return -num, nil
	}
	return num, nil
}

func (n *UnaryOpNode) GetPosition() NodePosition { return n.Position }
func (n *UnaryOpNode) ToString() string {
	if n.Op == UnaryOpMinus {
		return "-" + n.Operand.ToString()
	}
	return "+" + n.Operand.ToString()
}

// FunctionCallNode represents an aggregate call such as SUM(A1:A3)
type FunctionCallNode struct {
	Name     string
	Args     []ASTNode
	Position NodePosition
}

func (n *FunctionCallNode) Eval(ctx *EvalContext) (Primitive, error) {
	args := make([]Primitive, 0, len(n.Args))
	for _, arg := range n.Args {
		v, err := arg.Eval(ctx)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return callAggregate(n.Name, args)
}

func (n *FunctionCallNode) GetPosition() NodePosition { return n.Position }
func (n *FunctionCallNode) ToString() string {
	args := make([]string, len(n.Args))
	for i, arg := range n.Args {
		args[i] = arg.ToString()
	}
	return n.Name + "(" + strings.Join(args, ",") + ")"
}

// Parser builds an AST from lexer tokens by precedence climbing
type Parser struct {
	tokens   []Token
	pos      int
	depth    int
	maxDepth int
}

// NewParser creates a new parser over tokens produced by the Lexer
func NewParser(tokens []Token, maxDepth int) *Parser {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxFormulaDepth
	}
	return &Parser{tokens: tokens, maxDepth: maxDepth}
}

// Parse parses the tokens into an AST
func (p *Parser) Parse() (ASTNode, error) {
	if len(p.tokens) == 0 {
		return nil, NewEvaluationError(SyntaxError, "no tokens to parse")
	}
	node, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, NewEvaluationError(SyntaxError, "unexpected token after expression: "+tok.Value)
	}
	return node, nil
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	p.pos++
	return tok
}

func (p *Parser) expect(t TokenType, msg string) (Token, error) {
	if p.peek().Type != t {
		return Token{}, NewEvaluationError(SyntaxError, msg)
	}
	return p.advance(), nil
}

// parseExpr parses operands joined by operators binding at least as
// tightly as minPrec. operators of equal strength associate left.
func (p *Parser) parseExpr(minPrec int) (ASTNode, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		info, ok := binaryOps[tok.Value]
		if tok.Type != TokenBinaryOp || !ok || info.prec < minPrec {
			return left, nil
		}
		p.pos++

		right, err := p.parseExpr(info.prec + 1)
		if err != nil {
			return nil, err
		}
		left = &BinaryOpNode{
			Op:       info.op,
			Left:     left,
			Right:    right,
			Position: NodePosition{Start: left.GetPosition().Start, End: right.GetPosition().End},
		}
	}
}

// parseOperand parses a signed primary. every nesting level passes
// through here, so this is where the depth bound is enforced.
func (p *Parser) parseOperand() (ASTNode, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		return nil, NewEvaluationError(SyntaxError, fmt.Sprintf("formula nested deeper than %d levels", p.maxDepth))
	}

	if p.peek().Type != TokenUnaryPrefixOp {
		return p.parsePrimary()
	}
	sign := p.advance()
	operand, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op := UnaryOpPlus
	if sign.Value == "-" {
		op = UnaryOpMinus
	}
	return &UnaryOpNode{
		Op:       op,
		Operand:  operand,
		Position: NodePosition{Start: sign.Pos, End: operand.GetPosition().End},
	}, nil
}

// span is the rune extent of a token whose text is its value
func span(tok Token) NodePosition {
	return NodePosition{Start: tok.Pos, End: tok.Pos + len([]rune(tok.Value))}
}

func (p *Parser) parsePrimary() (ASTNode, error) {
	switch tok := p.peek(); tok.Type {
	case TokenNumber:
		p.pos++
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, NewEvaluationError(SyntaxError, "invalid number: "+tok.Value)
		}
		return &NumberNode{Value: v, Position: span(tok)}, nil

	case TokenString:
		p.pos++
		pos := span(tok)
		pos.End += 2 // quotes
		return &StringNode{Value: tok.Value, Position: pos}, nil

	case TokenCell:
		p.pos++
		c, err := parseReferenceLabel(tok.Value)
		if err != nil {
			return nil, err
		}
		return &CellRefNode{Coord: c, Position: span(tok)}, nil

	case TokenRange:
		p.pos++
		return parseRangeToken(tok)

	case TokenFunction:
		return p.parseCall()

	case TokenLeftParen:
		p.pos++
		node, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen, "expected closing parenthesis"); err != nil {
			return nil, err
		}
		return node, nil

	case TokenEOF:
		return nil, NewEvaluationError(SyntaxError, "unexpected end of formula")

	default:
		return nil, NewEvaluationError(SyntaxError, "unexpected token: "+tok.Value)
	}
}

// parseCall parses NAME(arg, ...). only aggregates are known.
func (p *Parser) parseCall() (ASTNode, error) {
	name := p.advance()
	if !isAggregate(name.Value) {
		return nil, NewEvaluationError(SyntaxError, "unknown function: "+name.Value)
	}
	if _, err := p.expect(TokenLeftParen, "expected '(' after function name"); err != nil {
		return nil, err
	}

	call := &FunctionCallNode{Name: name.Value, Args: []ASTNode{}}
	if p.peek().Type != TokenRightParen {
		for {
			arg, err := p.parseExpr(1)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if p.peek().Type != TokenComma {
				break
			}
			p.pos++
		}
	}

	closing, err := p.expect(TokenRightParen, "expected ',' or ')' in function arguments")
	if err != nil {
		return nil, err
	}
	call.Position = NodePosition{Start: name.Pos, End: closing.Pos + 1}
	return call, nil
}

func parseRangeToken(tok Token) (ASTNode, error) {
	first, second, ok := strings.Cut(tok.Value, ":")
	if !ok {
		return nil, NewEvaluationError(SyntaxError, "invalid range format: "+tok.Value)
	}
	start, err := parseReferenceLabel(first)
	if err != nil {
		return nil, err
	}
	end, err := parseReferenceLabel(second)
	if err != nil {
		return nil, err
	}
	return &RangeNode{Range: Normalize(start, end), Position: span(tok)}, nil
}

// parseReferenceLabel resolves an uppercase label inside a formula.
// labels that lexed as cells but cannot be addressed (A0, overflowing
// columns) are unresolved references rather than syntax errors.
func parseReferenceLabel(label string) (Coord, error) {
	c, err := FromLabel(label)
	if err != nil {
		return Coord{}, NewEvaluationError(UnresolvedReference, "cannot resolve "+label)
	}
	return c, nil
}
