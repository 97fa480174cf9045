package formula

import (
	"strconv"
	"strings"

	"github.com/edwingeng/deque"
)

// OpKind tags an [Op].
type OpKind int

const (
	OpNumber OpKind = iota
	OpString
	OpVariable
	OpOperator
	OpCall
)

//nolint:gochecknoglobals
var opKindNames = [...]string{
	OpNumber:   "number",
	OpString:   "string",
	OpVariable: "variable",
	OpOperator: "operator",
	OpCall:     "call",
}

func (k OpKind) String() string {
	if k >= 0 && int(k) < len(opKindNames) {
		return opKindNames[k]
	}

	return "OpKind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText encodes k by name.
func (k OpKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Op is one postfix instruction.
type Op struct {
	Kind OpKind  `json:"kind"`
	Text string  `json:"text"`
	Num  float64 `json:"num,omitempty"`
	Argc int     `json:"argc,omitempty"`
}

// Program is a compiled postfix program. It is never modified after
// compilation and may be shared between goroutines.
type Program []Op

func (p Program) String() string {
	parts := make([]string, len(p))

	for i, op := range p {
		switch op.Kind {
		case OpString:
			parts[i] = strconv.Quote(op.Text)
		case OpVariable:
			parts[i] = "{{" + op.Text + "}}"
		case OpCall:
			parts[i] = op.Text + "/" + strconv.Itoa(op.Argc)
		default:
			parts[i] = op.Text
		}
	}

	return strings.Join(parts, " ")
}

// Variables returns the distinct variable names referenced by p in order of
// first use.
func (p Program) Variables() []string {
	var out []string

	seen := map[string]bool{}

	for _, op := range p {
		if op.Kind == OpVariable && !seen[op.Text] {
			seen[op.Text] = true
			out = append(out, op.Text)
		}
	}

	return out
}

const negate = "NEG"

type assoc struct {
	prec  int
	right bool
}

//nolint:gochecknoglobals
var binary = map[string]assoc{
	"^":   {6, true},
	"*":   {5, false},
	"/":   {5, false},
	"+":   {4, false},
	"-":   {4, false},
	"==":  {3, false},
	"!=":  {3, false},
	">":   {3, false},
	">=":  {3, false},
	"<":   {3, false},
	"<=":  {3, false},
	"AND": {2, false},
	"OR":  {2, false},
	"&":   {1, false},
}

const unaryPrec = 7

type frameKind int

const (
	frameOperator frameKind = iota
	frameParen
	frameCall
)

type frame struct {
	kind frameKind
	text string
	pos  int
	fn   *Function
	seps int
	open bool
}

func (f frame) prec() assoc {
	if f.text == negate {
		return assoc{unaryPrec, true}
	}

	return binary[f.text]
}

// compiler is the shunting-yard state of one [ToRPN] call.
type compiler struct {
	src    string
	out    Program
	stack  deque.Deque
	expect bool // next lexeme must start an operand
}

func (c *compiler) push(f frame) { c.stack.PushBack(f) }

func (c *compiler) top() (frame, bool) {
	if c.stack.Empty() {
		return frame{}, false
	}

	return c.stack.Back().(frame), true
}

func (c *compiler) pop() frame { return c.stack.PopBack().(frame) }

func (c *compiler) fail(pos int, detail string) *ParseError {
	return newParseError(ParseFailure, c.src, pos, detail)
}

// drain moves operators to the output until a parenthesis or call frame is
// on top.
func (c *compiler) drain() {
	for {
		f, ok := c.top()
		if !ok || f.kind != frameOperator {
			return
		}

		c.emitOperator(c.pop())
	}
}

func (c *compiler) emitOperator(f frame) {
	c.out = append(c.out, Op{Kind: OpOperator, Text: f.text})
}

// Compile lexes and compiles expr.
func Compile(expr string) (Program, error) {
	lexemes, err := Lex(expr)
	if err != nil {
		return nil, err
	}

	return toRPN(expr, lexemes)
}

// ToRPN compiles lexemes into a postfix program. The result depends only on
// its input.
func ToRPN(lexemes []Lexeme) (Program, error) {
	return toRPN("", lexemes)
}

func toRPN(src string, lexemes []Lexeme) (Program, error) {
	c := &compiler{
		src:    src,
		out:    make(Program, 0, len(lexemes)),
		stack:  deque.NewDeque(),
		expect: true,
	}

	for i, lx := range lexemes {
		if err := c.step(lx, i > 0 && lexemes[i-1].Kind == LexOpen); err != nil {
			return nil, err
		}
	}

	if len(lexemes) == 0 {
		return nil, c.fail(0, "empty expression")
	}

	if c.expect {
		return nil, c.fail(len(src), "missing operand at end of expression")
	}

	for !c.stack.Empty() {
		f := c.pop()

		switch f.kind {
		case frameParen:
			return nil, c.fail(f.pos, "unbalanced parentheses: missing ')'")
		case frameCall:
			return nil, c.fail(f.pos, "missing ')' to close "+f.text)
		default:
			c.emitOperator(f)
		}
	}

	return c.out, nil
}

func (c *compiler) step(lx Lexeme, afterOpen bool) error {
	if f, ok := c.top(); ok && f.kind == frameCall && !f.open && lx.Kind != LexOpen {
		return c.fail(f.pos, "missing '(' after "+f.text)
	}

	switch lx.Kind {
	case LexNumber, LexString, LexVariable:
		if !c.expect {
			return c.fail(lx.Pos, "missing operator before "+strconv.Quote(lx.Text)+
				" (use & to concatenate)")
		}

		c.out = append(c.out, operand(lx))
		c.expect = false

	case LexFunction:
		if !c.expect {
			return c.fail(lx.Pos, "missing operator before "+lx.Text)
		}

		fn, ok := LookupFunction(lx.Text)
		if !ok {
			detail := "unknown function " + lx.Text
			if hint := Suggest(lx.Text, 1); len(hint) > 0 {
				detail += ", did you mean " + hint[0] + "?"
			}

			return c.fail(lx.Pos, detail)
		}

		c.push(frame{kind: frameCall, text: fn.Name, pos: lx.Pos, fn: fn})

	case LexOpen:
		if f, ok := c.top(); ok && f.kind == frameCall && !f.open {
			f = c.pop()
			f.open = true
			c.push(f)

			return nil
		}

		if !c.expect {
			return c.fail(lx.Pos, "missing operator before '('")
		}

		c.push(frame{kind: frameParen, pos: lx.Pos})

	case LexClose:
		return c.close(lx, afterOpen)

	case LexSeparator:
		if c.expect {
			return c.fail(lx.Pos, "missing argument before "+strconv.Quote(lx.Text))
		}

		c.drain()

		f, ok := c.top()
		if !ok || f.kind != frameCall {
			return c.fail(lx.Pos, "argument separator outside of a function call")
		}

		f = c.pop()
		f.seps++
		c.push(f)
		c.expect = true

	case LexOperator:
		return c.operator(lx)
	}

	return nil
}

func (c *compiler) operator(lx Lexeme) error {
	if c.expect {
		switch lx.Text {
		case "-":
			c.push(frame{kind: frameOperator, text: negate, pos: lx.Pos})

			return nil
		case "+":
			return nil
		}

		return c.fail(lx.Pos, "missing operand before "+strconv.Quote(lx.Text))
	}

	cur := binary[lx.Text]

	for {
		f, ok := c.top()
		if !ok || f.kind != frameOperator {
			break
		}

		p := f.prec()
		if p.prec < cur.prec || (p.prec == cur.prec && cur.right) {
			break
		}

		c.emitOperator(c.pop())
	}

	c.push(frame{kind: frameOperator, text: lx.Text, pos: lx.Pos})
	c.expect = true

	return nil
}

func (c *compiler) close(lx Lexeme, afterOpen bool) error {
	empty := false

	if c.expect {
		f, ok := c.top()
		if !(afterOpen && ok && f.kind == frameCall) {
			return c.fail(lx.Pos, "missing operand before ')'")
		}

		empty = true
	}

	c.drain()

	f, ok := c.top()
	if !ok {
		return c.fail(lx.Pos, "unbalanced parentheses: unexpected ')'")
	}

	c.pop()
	c.expect = false

	if f.kind == frameParen {
		return nil
	}

	argc := f.seps + 1
	if empty {
		argc = 0
	}

	if !f.fn.Accepts(argc) {
		return newParseError(ArityMismatch, c.src, f.pos,
			f.fn.Name+" takes "+f.fn.Arity()+" arguments, got "+strconv.Itoa(argc))
	}

	c.out = append(c.out, Op{Kind: OpCall, Text: f.fn.Name, Argc: argc})

	return nil
}

func operand(lx Lexeme) Op {
	switch lx.Kind {
	case LexNumber:
		return Op{Kind: OpNumber, Text: lx.Text, Num: lx.Num}
	case LexString:
		return Op{Kind: OpString, Text: lx.Text}
	default:
		return Op{Kind: OpVariable, Text: lx.Text}
	}
}
