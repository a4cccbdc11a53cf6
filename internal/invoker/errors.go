package invoker

import "errors"

// Ошибки вызова node. Диспетчер превращает их в failure TaskResult,
// наружу они не паникуют и процесс не роняют.
var (
	// ErrInvocation — транспортная ошибка, не-2xx код или
	// несоответствующий ответ node.
	ErrInvocation = errors.New("node invocation failed")

	// ErrDeadlineExceeded — вызов не уложился в timeout_seconds task.
	ErrDeadlineExceeded = errors.New("task deadline exceeded")
)
