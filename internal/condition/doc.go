// Package condition — безопасное вычисление условий шагов pathway.
//
// Включает:
//   - lexer.go  — разбиение выражения на токены
//   - parser.go — рекурсивный спуск, дерево выражения
//   - eval.go   — вычисление дерева над read-only payload
//
// Грамматика намеренно ограничена: сравнения, and/or/not, членство
// и литералы. Никаких вызовов функций, доступа к атрибутам или
// импортов — это не песочница вокруг общего интерпретатора,
// а отдельный маленький язык.
package condition
