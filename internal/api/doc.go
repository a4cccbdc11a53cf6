// Package api — HTTP API ядра: регистрация nodes, выполнение task,
// запуск pathway, schedules и сводка метрик.
//
// Формат ответов: {"data": ...} при успехе,
// {"error": {"code", "message"}} при ошибке.
package api
