package condition

import (
	"errors"
	"testing"
)

func TestEvaluateComparisons(t *testing.T) {
	payload := map[string]any{
		"score":    85,
		"ratio":    0.5,
		"name":     "cafe",
		"approved": true,
		"tags":     []any{"food", "local"},
		"owner":    map[string]any{"city": "riga"},
		"missing":  nil,
	}

	cases := []struct {
		expr string
		want bool
	}{
		{"score == 85", true},
		{"score != 85", false},
		{"score > 70", true},
		{"score >= 85", true},
		{"score < 85", false},
		{"score <= 84", false},
		{"ratio < 1", true},
		{`name == "cafe"`, true},
		{`name == 'cafe'`, true},
		{`name < "dog"`, true},
		{"approved == true", true},
		{"approved != false", true},
		{"missing == null", true},
		{"missing == none", true},
		{"score > -10", true},

		// Логические связки и скобки.
		{"score > 70 and approved", true},
		{"score > 90 or approved", true},
		{"score > 90 and approved", false},
		{"not approved", false},
		{"not (score > 90)", true},
		{"(score > 90 or approved) and name == 'cafe'", true},

		// Членство: списки, ключи map, подстроки.
		{`"food" in tags`, true},
		{`"tech" in tags`, false},
		{`"tech" not in tags`, true},
		{`"city" in owner`, true},
		{`"caf" in name`, true},
		{`"dog" not in name`, true},

		// Truthiness без сравнения.
		{"approved", true},
		{"name", true},
		{"missing", false},
	}

	for _, tc := range cases {
		got, err := Evaluate(tc.expr, payload)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.expr, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q = %v, want %v", tc.expr, got, tc.want)
		}
	}
}

func TestEvaluateShortCircuit(t *testing.T) {
	// Правый операнд or не должен вычисляться при истинном левом:
	// неизвестный идентификатор справа не ломает выражение.
	payload := map[string]any{"approved": true}
	got, err := Evaluate("approved or unknown_key > 5", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Error("short-circuit or = false")
	}

	got, err = Evaluate("not approved and unknown_key > 5", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("short-circuit and = true")
	}
}

func TestEvaluateErrors(t *testing.T) {
	payload := map[string]any{"score": 85, "name": "cafe"}

	cases := []struct {
		expr    string
		wantErr error
	}{
		{"", ErrMalformedExpression},
		{"score >=", ErrMalformedExpression},
		{"score = 85", ErrMalformedExpression},
		{"score !< 85", ErrMalformedExpression},
		{"(score > 5", ErrMalformedExpression},
		{"score > 5)", ErrMalformedExpression},
		{`name == "unterminated`, ErrMalformedExpression},
		{"and score", ErrMalformedExpression},
		{"ghost > 5", ErrUnknownIdentifier},
		{"name > 5", ErrIncomparable},
		{"score > true", ErrIncomparable},
	}

	for _, tc := range cases {
		_, err := Evaluate(tc.expr, payload)
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("%q: err = %v, want %v", tc.expr, err, tc.wantErr)
		}
	}
}

func TestEvaluateNumericCoercion(t *testing.T) {
	// JSON-декодер даёт float64, обработчики могут класть int.
	payload := map[string]any{
		"int_val":   42,
		"float_val": 42.0,
		"json_val":  float64(42),
	}

	for _, expr := range []string{
		"int_val == 42",
		"float_val == 42",
		"json_val == 42",
		"int_val == float_val",
		"int_val >= json_val",
	} {
		got, err := Evaluate(expr, payload)
		if err != nil {
			t.Errorf("%q: %v", expr, err)
			continue
		}
		if !got {
			t.Errorf("%q = false", expr)
		}
	}
}

func TestEvaluateNoCodeExecution(t *testing.T) {
	// Синтаксис вызовов и доступа к атрибутам не поддерживается:
	// такие выражения — ошибка разбора, а не выполнение.
	payload := map[string]any{"x": 1}
	for _, expr := range []string{
		"__import__('os')",
		"x.__class__",
		"open(x)",
	} {
		if _, err := Evaluate(expr, payload); !errors.Is(err, ErrMalformedExpression) {
			t.Errorf("%q: err = %v, want ErrMalformedExpression", expr, err)
		}
	}
}
