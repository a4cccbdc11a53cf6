package condition

import (
	"fmt"
	"reflect"
	"strings"
)

// Evaluate вычисляет булево выражение над read-only представлением payload.
//
// Выражение ограничено безопасной грамматикой: сравнения, and/or/not,
// членство (in / not in), литералы и идентификаторы, разрешающиеся
// только в ключи payload. Любая синтаксическая ошибка, неизвестный
// идентификатор или несовместимое сравнение — ошибка; вызывающий
// логирует предупреждение и трактует условие как false, ошибка
// наружу не распространяется.
func Evaluate(expr string, payload map[string]any) (bool, error) {
	if strings.TrimSpace(expr) == "" {
		return false, fmt.Errorf("%w: empty expression", ErrMalformedExpression)
	}

	tree, err := parse(expr)
	if err != nil {
		return false, err
	}

	value, err := eval(tree, payload)
	if err != nil {
		return false, err
	}
	return truthy(value), nil
}

// eval вычисляет узел дерева. payload доступен только на чтение.
func eval(n node, payload map[string]any) (any, error) {
	switch v := n.(type) {
	case *literalNode:
		return v.value, nil

	case *identNode:
		value, ok := payload[v.name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown identifier %q", ErrUnknownIdentifier, v.name)
		}
		return value, nil

	case *notNode:
		operand, err := eval(v.operand, payload)
		if err != nil {
			return nil, err
		}
		return !truthy(operand), nil

	case *binaryNode:
		return evalBinary(v, payload)

	default:
		return nil, fmt.Errorf("%w: unknown expression node", ErrMalformedExpression)
	}
}

func evalBinary(n *binaryNode, payload map[string]any) (any, error) {
	// and/or вычисляются лениво, как в обычных языках.
	if n.op == "and" || n.op == "or" {
		left, err := eval(n.left, payload)
		if err != nil {
			return nil, err
		}
		if n.op == "and" && !truthy(left) {
			return false, nil
		}
		if n.op == "or" && truthy(left) {
			return true, nil
		}
		right, err := eval(n.right, payload)
		if err != nil {
			return nil, err
		}
		return truthy(right), nil
	}

	left, err := eval(n.left, payload)
	if err != nil {
		return nil, err
	}
	right, err := eval(n.right, payload)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case "==":
		return equal(left, right), nil
	case "!=":
		return !equal(left, right), nil
	case "<", "<=", ">", ">=":
		return compare(n.op, left, right)
	case "in":
		return contains(right, left)
	case "not in":
		ok, err := contains(right, left)
		if err != nil {
			return nil, err
		}
		return !ok, nil
	default:
		return nil, fmt.Errorf("%w: unknown operator %q", ErrMalformedExpression, n.op)
	}
}

// equal сравнивает значения на равенство с числовой коэрцией.
func equal(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return reflect.DeepEqual(a, b)
}

// compare выполняет упорядочивающее сравнение чисел или строк.
func compare(op string, a, b any) (bool, error) {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		if !bok {
			return false, fmt.Errorf("%w: cannot compare number with %T", ErrIncomparable, b)
		}
		return applyOrder(op, compareFloats(af, bf)), nil
	}

	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return applyOrder(op, strings.Compare(as, bs)), nil
	}

	return false, fmt.Errorf("%w: cannot order %T and %T", ErrIncomparable, a, b)
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func applyOrder(op string, cmp int) bool {
	switch op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	default: // ">="
		return cmp >= 0
	}
}

// contains проверяет членство needle в container:
// слайс — поэлементное равенство, map — наличие строкового ключа,
// строка — подстрока.
func contains(container, needle any) (bool, error) {
	switch c := container.(type) {
	case []any:
		for _, item := range c {
			if equal(item, needle) {
				return true, nil
			}
		}
		return false, nil

	case map[string]any:
		key, ok := needle.(string)
		if !ok {
			return false, fmt.Errorf("%w: map membership requires string key, got %T", ErrIncomparable, needle)
		}
		_, exists := c[key]
		return exists, nil

	case string:
		sub, ok := needle.(string)
		if !ok {
			return false, fmt.Errorf("%w: string membership requires string, got %T", ErrIncomparable, needle)
		}
		return strings.Contains(c, sub), nil

	default:
		return false, fmt.Errorf("%w: %T does not support membership", ErrIncomparable, container)
	}
}

// toFloat приводит числовые типы (включая то, что приходит из JSON) к float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// truthy — приведение значения к bool в духе динамических payload'ов:
// nil/false/0/""/пустая коллекция — false, всё остальное — true.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		if f, ok := toFloat(v); ok {
			return f != 0
		}
		return true
	}
}
