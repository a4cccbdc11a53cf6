// Package telemetry — настройка structured logging (log/slog)
// и Prometheus-метрики ядра.
package telemetry
