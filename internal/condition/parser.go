package condition

import (
	"fmt"
	"strconv"
)

// Узлы дерева выражения. Грамматика (по убыванию связности):
//
//	expr       := orExpr
//	orExpr     := andExpr ("or" andExpr)*
//	andExpr    := notExpr ("and" notExpr)*
//	notExpr    := "not" notExpr | comparison
//	comparison := primary (("==" | "!=" | "<" | "<=" | ">" | ">=" | "in" | "not" "in") primary)?
//	primary    := number | string | "true" | "false" | "null" | "none" | ident | "(" expr ")"
//
// Идентификатор разрешается только в ключ payload — никаких вызовов
// функций, доступа к атрибутам или индексации грамматика не допускает.
type node interface{}

type literalNode struct {
	value any
}

type identNode struct {
	name string
}

type notNode struct {
	operand node
}

type binaryNode struct {
	op    string // "and", "or", "==", "!=", "<", "<=", ">", ">=", "in", "not in"
	left  node
	right node
}

// parser — рекурсивный спуск по списку токенов.
type parser struct {
	tokens []token
	pos    int
}

// parse строит дерево выражения.
func parse(input string) (node, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if p.current().kind != tokenEOF {
		return nil, fmt.Errorf("%w: unexpected %q at position %d",
			ErrMalformedExpression, p.current().text, p.current().pos)
	}
	return expr, nil
}

func (p *parser) current() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

// matchKeyword съедает указанное ключевое слово, если оно следующее.
func (p *parser) matchKeyword(word string) bool {
	if p.current().kind == tokenKeyword && p.current().text == word {
		p.advance()
		return true
	}
	return false
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.matchKeyword("or") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: "or", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.matchKeyword("and") {
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: "and", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (node, error) {
	if p.current().kind == tokenKeyword && p.current().text == "not" {
		// "not in" обрабатывается внутри parseComparison — здесь "not"
		// является префиксным только если за ним не следует "in".
		next := p.tokens[p.pos+1]
		if !(next.kind == tokenKeyword && next.text == "in") {
			p.advance()
			operand, err := p.parseNot()
			if err != nil {
				return nil, err
			}
			return &notNode{operand: operand}, nil
		}
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	tok := p.current()

	switch {
	case tok.kind == tokenOp:
		p.advance()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &binaryNode{op: tok.text, left: left, right: right}, nil

	case tok.kind == tokenKeyword && tok.text == "in":
		p.advance()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &binaryNode{op: "in", left: left, right: right}, nil

	case tok.kind == tokenKeyword && tok.text == "not":
		// "x not in y"
		if p.tokens[p.pos+1].kind == tokenKeyword && p.tokens[p.pos+1].text == "in" {
			p.advance()
			p.advance()
			right, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			return &binaryNode{op: "not in", left: left, right: right}, nil
		}
	}

	return left, nil
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.current()

	switch tok.kind {
	case tokenNumber:
		p.advance()
		n, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q", ErrMalformedExpression, tok.text)
		}
		return &literalNode{value: n}, nil

	case tokenString:
		p.advance()
		return &literalNode{value: tok.text}, nil

	case tokenKeyword:
		switch tok.text {
		case "true":
			p.advance()
			return &literalNode{value: true}, nil
		case "false":
			p.advance()
			return &literalNode{value: false}, nil
		case "null", "none":
			p.advance()
			return &literalNode{value: nil}, nil
		}
		return nil, fmt.Errorf("%w: unexpected keyword %q at position %d",
			ErrMalformedExpression, tok.text, tok.pos)

	case tokenIdent:
		p.advance()
		return &identNode{name: tok.text}, nil

	case tokenLParen:
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.current().kind != tokenRParen {
			return nil, fmt.Errorf("%w: missing ')' at position %d", ErrMalformedExpression, p.current().pos)
		}
		p.advance()
		return expr, nil

	default:
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrMalformedExpression)
	}
}
