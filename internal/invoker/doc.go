// Package invoker — граница ядра и worker-nodes.
//
// Определяет интерфейс Invoker и его HTTP-реализацию: request/response
// вызов invocation_target node с дедлайном из task.
package invoker
