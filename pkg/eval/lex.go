package eval

import (
	"fmt"
	"strings"
	"text/scanner"
)

type tokKind int

const (
	tEOF tokKind = iota
	tIdent
	tInt
	tFloat
	tOp
	tLParen
	tRParen
)

type token struct {
	kind tokKind
	text string
}

// lexer tokenizes a BLZ expression with text/scanner doing the heavy
// lifting (identifiers, int/float literals); multi-rune operators
// (==, !=, <=, >=, &&, ||) are assembled by peeking one rune ahead.
type lexer struct {
	sc *scanner.Scanner
}

func newLexer(src string) *lexer {
	var sc scanner.Scanner
	sc.Init(strings.NewReader(src))
	sc.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats
	sc.Error = func(*scanner.Scanner, string) {}
	return &lexer{sc: &sc}
}

func (l *lexer) next() (token, error) {
	r := l.sc.Scan()
	switch r {
	case scanner.EOF:
		return token{kind: tEOF}, nil
	case scanner.Ident:
		return token{kind: tIdent, text: l.sc.TokenText()}, nil
	case scanner.Int:
		return token{kind: tInt, text: l.sc.TokenText()}, nil
	case scanner.Float:
		return token{kind: tFloat, text: l.sc.TokenText()}, nil
	case '(':
		return token{kind: tLParen, text: "("}, nil
	case ')':
		return token{kind: tRParen, text: ")"}, nil
	case '=':
		if l.sc.Peek() == '=' {
			l.sc.Next()
			return token{kind: tOp, text: "=="}, nil
		}
		return token{}, fmt.Errorf("eval: unexpected '=' (did you mean '==')")
	case '!':
		if l.sc.Peek() == '=' {
			l.sc.Next()
			return token{kind: tOp, text: "!="}, nil
		}
		return token{kind: tOp, text: "!"}, nil
	case '<':
		if l.sc.Peek() == '=' {
			l.sc.Next()
			return token{kind: tOp, text: "<="}, nil
		}
		return token{kind: tOp, text: "<"}, nil
	case '>':
		if l.sc.Peek() == '=' {
			l.sc.Next()
			return token{kind: tOp, text: ">="}, nil
		}
		return token{kind: tOp, text: ">"}, nil
	case '&':
		if l.sc.Peek() == '&' {
			l.sc.Next()
			return token{kind: tOp, text: "&&"}, nil
		}
		return token{}, fmt.Errorf("eval: unexpected '&' (did you mean '&&')")
	case '|':
		if l.sc.Peek() == '|' {
			l.sc.Next()
			return token{kind: tOp, text: "||"}, nil
		}
		return token{}, fmt.Errorf("eval: unexpected '|' (did you mean '||')")
	case '+', '-', '*', '/':
		return token{kind: tOp, text: string(r)}, nil
	default:
		return token{}, fmt.Errorf("eval: unexpected character %q", r)
	}
}
