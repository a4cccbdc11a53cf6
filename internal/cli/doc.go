// Package cli реализует команды инструмента dirigent-cli.
//
// Пакет намеренно не импортирует internal/api: типы запросов и ответов
// продублированы локально, чтобы CLI зависел только от wire-формата API,
// а не от его внутренних структур.
package cli
