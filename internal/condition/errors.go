package condition

import "errors"

// Ошибки вычисления условий. Никогда не распространяются из
// PathwayExecutor наружу: ошибочное условие трактуется как false.
var (
	// ErrMalformedExpression — выражение не разбирается грамматикой.
	ErrMalformedExpression = errors.New("malformed condition expression")

	// ErrUnknownIdentifier — идентификатор не является ключом payload.
	ErrUnknownIdentifier = errors.New("unknown identifier")

	// ErrIncomparable — операнды несовместимы для данного оператора.
	ErrIncomparable = errors.New("incomparable operands")
)
