package pdf

import (
	"fmt"
	"io"
	"strconv"
)

// ObjectKind identifies the type of a content-stream operand.
type ObjectKind int

const (
	KindNull ObjectKind = iota
	KindBool
	KindNumber
	KindString
	KindName
	KindArray
	KindDict
	KindOperator
)

// Structural markers used only while lexing; they never appear in parsed output.
const (
	kindArrayEnd ObjectKind = -1
	kindDictEnd  ObjectKind = -2
)

// Object is a single operand in a content stream.
type Object struct {
	Kind  ObjectKind
	Str   string   // KindString, KindName and KindOperator
	Num   float64  // KindNumber
	Bool  bool     // KindBool
	Items []Object // KindArray elements; KindDict key/value pairs in order
}

// Operation is one content-stream instruction together with the operands that
// preceded it.
type Operation struct {
	Operator string
	Operands []Object
}

// FirstString returns the first element of the operation's leading array
// operand if that element is a string. This is the only token shape the
// statement scanner consumes: text drawn by the array form of the text-show
// operator.
func (op Operation) FirstString() (string, bool) {
	if len(op.Operands) == 0 || op.Operands[0].Kind != KindArray {
		return "", false
	}
	items := op.Operands[0].Items
	if len(items) == 0 || items[0].Kind != KindString {
		return "", false
	}
	return items[0].Str, true
}

// ParseContent tokenizes one decoded content stream into its operations.
// Operands accumulate until an operator token closes them off.
func ParseContent(data []byte) ([]Operation, error) {
	lx := &contentLexer{data: data}
	var ops []Operation
	var operands []Object
	for {
		obj, err := lx.next()
		if err == io.EOF {
			// trailing operands without an operator are dropped
			return ops, nil
		}
		if err != nil {
			return nil, err
		}
		switch obj.Kind {
		case kindArrayEnd:
			return nil, lx.errorf("unexpected ']'")
		case kindDictEnd:
			return nil, lx.errorf("unexpected '>>'")
		case KindOperator:
			if obj.Str == "ID" {
				// inline image data is opaque to the lexer; skip to the closing EI
				if err := lx.skipInlineImage(); err != nil {
					return nil, err
				}
				operands = nil
				continue
			}
			ops = append(ops, Operation{Operator: obj.Str, Operands: operands})
			operands = nil
		default:
			operands = append(operands, obj)
		}
	}
}

type contentLexer struct {
	data []byte
	pos  int
}

func (lx *contentLexer) errorf(format string, args ...any) error {
	return fmt.Errorf("content stream offset %d: %s", lx.pos, fmt.Sprintf(format, args...))
}

func isWhitespace(c byte) bool {
	switch c {
	case 0x00, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(c byte) bool {
	return !isWhitespace(c) && !isDelimiter(c)
}

func (lx *contentLexer) skipWhitespace() {
	for lx.pos < len(lx.data) {
		c := lx.data[lx.pos]
		if isWhitespace(c) {
			lx.pos++
			continue
		}
		if c == '%' {
			for lx.pos < len(lx.data) && lx.data[lx.pos] != '\n' && lx.data[lx.pos] != '\r' {
				lx.pos++
			}
			continue
		}
		break
	}
}

// next returns the next object or operator in the stream, or io.EOF.
func (lx *contentLexer) next() (Object, error) {
	lx.skipWhitespace()
	if lx.pos >= len(lx.data) {
		return Object{}, io.EOF
	}

	c := lx.data[lx.pos]
	switch {
	case c == '(':
		lx.pos++
		return lx.readLiteralString()
	case c == '<':
		if lx.pos+1 < len(lx.data) && lx.data[lx.pos+1] == '<' {
			lx.pos += 2
			return lx.readDict()
		}
		lx.pos++
		return lx.readHexString()
	case c == '>':
		if lx.pos+1 < len(lx.data) && lx.data[lx.pos+1] == '>' {
			lx.pos += 2
			return Object{Kind: kindDictEnd}, nil
		}
		return Object{}, lx.errorf("unexpected '>'")
	case c == '[':
		lx.pos++
		return lx.readArray()
	case c == ']':
		lx.pos++
		return Object{Kind: kindArrayEnd}, nil
	case c == '/':
		lx.pos++
		return lx.readName()
	case c == ')':
		return Object{}, lx.errorf("unexpected ')'")
	case c == '{' || c == '}':
		return Object{}, lx.errorf("unexpected %q", string(c))
	case c >= '0' && c <= '9', c == '+', c == '-', c == '.':
		return lx.readNumber()
	default:
		return lx.readKeyword()
	}
}

func (lx *contentLexer) readLiteralString() (Object, error) {
	var out []byte
	depth := 1
	for {
		if lx.pos >= len(lx.data) {
			return Object{}, lx.errorf("unterminated string")
		}
		c := lx.data[lx.pos]
		lx.pos++
		switch c {
		case '\\':
			if lx.pos >= len(lx.data) {
				return Object{}, lx.errorf("unterminated string escape")
			}
			e := lx.data[lx.pos]
			lx.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(', ')', '\\':
				out = append(out, e)
			case '\r':
				// escaped line break continues the string
				if lx.pos < len(lx.data) && lx.data[lx.pos] == '\n' {
					lx.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && lx.pos < len(lx.data); i++ {
						d := lx.data[lx.pos]
						if d < '0' || d > '7' {
							break
						}
						v = v*8 + int(d-'0')
						lx.pos++
					}
					out = append(out, byte(v))
				} else {
					// unknown escapes keep the raw character
					out = append(out, e)
				}
			}
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return Object{Kind: KindString, Str: string(out)}, nil
			}
			out = append(out, c)
		case '\r':
			// CRLF and bare CR inside a string both read back as LF
			if lx.pos < len(lx.data) && lx.data[lx.pos] == '\n' {
				lx.pos++
			}
			out = append(out, '\n')
		default:
			out = append(out, c)
		}
	}
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func (lx *contentLexer) readHexString() (Object, error) {
	var digits []byte
	for {
		if lx.pos >= len(lx.data) {
			return Object{}, lx.errorf("unterminated hex string")
		}
		c := lx.data[lx.pos]
		lx.pos++
		if c == '>' {
			break
		}
		if isWhitespace(c) {
			continue
		}
		v, ok := hexValue(c)
		if !ok {
			return Object{}, lx.errorf("invalid hex digit %q", string(c))
		}
		digits = append(digits, v)
	}
	if len(digits)%2 == 1 {
		digits = append(digits, 0)
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i < len(digits); i += 2 {
		out = append(out, digits[i]<<4|digits[i+1])
	}
	return Object{Kind: KindString, Str: string(out)}, nil
}

func (lx *contentLexer) readName() (Object, error) {
	var out []byte
	for lx.pos < len(lx.data) && isRegular(lx.data[lx.pos]) {
		c := lx.data[lx.pos]
		lx.pos++
		if c == '#' && lx.pos+1 < len(lx.data) {
			hi, okHi := hexValue(lx.data[lx.pos])
			lo, okLo := hexValue(lx.data[lx.pos+1])
			if okHi && okLo {
				out = append(out, hi<<4|lo)
				lx.pos += 2
				continue
			}
		}
		out = append(out, c)
	}
	return Object{Kind: KindName, Str: string(out)}, nil
}

func (lx *contentLexer) readNumber() (Object, error) {
	start := lx.pos
	for lx.pos < len(lx.data) && isRegular(lx.data[lx.pos]) {
		lx.pos++
	}
	text := string(lx.data[start:lx.pos])
	num, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Object{}, lx.errorf("invalid number %q", text)
	}
	return Object{Kind: KindNumber, Num: num}, nil
}

func (lx *contentLexer) readKeyword() (Object, error) {
	start := lx.pos
	for lx.pos < len(lx.data) && isRegular(lx.data[lx.pos]) {
		lx.pos++
	}
	word := string(lx.data[start:lx.pos])
	switch word {
	case "true":
		return Object{Kind: KindBool, Bool: true}, nil
	case "false":
		return Object{Kind: KindBool, Bool: false}, nil
	case "null":
		return Object{Kind: KindNull}, nil
	}
	return Object{Kind: KindOperator, Str: word}, nil
}

func (lx *contentLexer) readArray() (Object, error) {
	var items []Object
	for {
		obj, err := lx.next()
		if err == io.EOF {
			return Object{}, lx.errorf("unterminated array")
		}
		if err != nil {
			return Object{}, err
		}
		switch obj.Kind {
		case kindArrayEnd:
			return Object{Kind: KindArray, Items: items}, nil
		case kindDictEnd:
			return Object{}, lx.errorf("unexpected '>>' in array")
		case KindOperator:
			return Object{}, lx.errorf("unexpected token %q in array", obj.Str)
		}
		items = append(items, obj)
	}
}

func (lx *contentLexer) readDict() (Object, error) {
	var items []Object
	for {
		key, err := lx.next()
		if err == io.EOF {
			return Object{}, lx.errorf("unterminated dictionary")
		}
		if err != nil {
			return Object{}, err
		}
		if key.Kind == kindDictEnd {
			return Object{Kind: KindDict, Items: items}, nil
		}
		if key.Kind != KindName {
			return Object{}, lx.errorf("dictionary key must be a name")
		}
		val, err := lx.next()
		if err == io.EOF {
			return Object{}, lx.errorf("unterminated dictionary")
		}
		if err != nil {
			return Object{}, err
		}
		if val.Kind == kindArrayEnd || val.Kind == kindDictEnd || val.Kind == KindOperator {
			return Object{}, lx.errorf("invalid dictionary value")
		}
		items = append(items, key, val)
	}
}

// skipInlineImage advances past the binary payload that follows an ID operator,
// leaving the lexer positioned after the closing EI.
func (lx *contentLexer) skipInlineImage() error {
	if lx.pos < len(lx.data) && isWhitespace(lx.data[lx.pos]) {
		lx.pos++
	}
	for i := lx.pos; i+1 < len(lx.data); i++ {
		if lx.data[i] != 'E' || lx.data[i+1] != 'I' {
			continue
		}
		if i > lx.pos && !isWhitespace(lx.data[i-1]) {
			continue
		}
		if i+2 < len(lx.data) && isRegular(lx.data[i+2]) {
			continue
		}
		lx.pos = i + 2
		return nil
	}
	return lx.errorf("unterminated inline image")
}
