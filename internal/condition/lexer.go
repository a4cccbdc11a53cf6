package condition

import (
	"fmt"
	"strings"
	"unicode"
)

// tokenKind — тип токена выражения.
type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenNumber
	tokenString
	tokenLParen
	tokenRParen
	tokenOp      // == != < <= > >=
	tokenKeyword // and or not in true false null none
)

// token — один токен выражения.
type token struct {
	kind tokenKind
	text string
	pos  int
}

// keywords — зарезервированные слова грамматики.
var keywords = map[string]bool{
	"and":   true,
	"or":    true,
	"not":   true,
	"in":    true,
	"true":  true,
	"false": true,
	"null":  true,
	"none":  true,
}

// tokenize разбивает выражение на токены.
// Любой символ вне грамматики — ошибка.
func tokenize(input string) ([]token, error) {
	var tokens []token
	runes := []rune(input)
	i := 0

	for i < len(runes) {
		ch := runes[i]

		switch {
		case unicode.IsSpace(ch):
			i++

		case ch == '(':
			tokens = append(tokens, token{tokenLParen, "(", i})
			i++

		case ch == ')':
			tokens = append(tokens, token{tokenRParen, ")", i})
			i++

		case ch == '\'' || ch == '"':
			str, next, err := scanString(runes, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{tokenString, str, i})
			i = next

		case ch == '=' || ch == '!' || ch == '<' || ch == '>':
			op, next, err := scanOperator(runes, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{tokenOp, op, i})
			i = next

		case unicode.IsDigit(ch) || (ch == '-' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			start := i
			i++
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			tokens = append(tokens, token{tokenNumber, string(runes[start:i]), start})

		case unicode.IsLetter(ch) || ch == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			word := string(runes[start:i])
			if keywords[strings.ToLower(word)] {
				tokens = append(tokens, token{tokenKeyword, strings.ToLower(word), start})
			} else {
				tokens = append(tokens, token{tokenIdent, word, start})
			}

		default:
			return nil, fmt.Errorf("%w: unexpected character %q at position %d", ErrMalformedExpression, ch, i)
		}
	}

	tokens = append(tokens, token{tokenEOF, "", len(runes)})
	return tokens, nil
}

// scanString читает строковый литерал в одинарных или двойных кавычках.
func scanString(runes []rune, start int) (string, int, error) {
	quote := runes[start]
	i := start + 1
	var sb strings.Builder

	for i < len(runes) {
		if runes[i] == quote {
			return sb.String(), i + 1, nil
		}
		sb.WriteRune(runes[i])
		i++
	}

	return "", 0, fmt.Errorf("%w: unterminated string at position %d", ErrMalformedExpression, start)
}

// scanOperator читает оператор сравнения.
func scanOperator(runes []rune, start int) (string, int, error) {
	ch := runes[start]
	hasEq := start+1 < len(runes) && runes[start+1] == '='

	switch ch {
	case '=':
		if !hasEq {
			return "", 0, fmt.Errorf("%w: single '=' at position %d (use '==')", ErrMalformedExpression, start)
		}
		return "==", start + 2, nil
	case '!':
		if !hasEq {
			return "", 0, fmt.Errorf("%w: single '!' at position %d (use '!=')", ErrMalformedExpression, start)
		}
		return "!=", start + 2, nil
	case '<':
		if hasEq {
			return "<=", start + 2, nil
		}
		return "<", start + 1, nil
	default: // '>'
		if hasEq {
			return ">=", start + 2, nil
		}
		return ">", start + 1, nil
	}
}
