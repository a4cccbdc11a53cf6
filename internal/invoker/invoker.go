package invoker

import (
	"context"

	"github.com/shaiso/Dirigent/internal/domain"
)

// Invoker — интерфейс вызова node.
//
// Реализация выполняет request/response вызов invocation_target node,
// передавая {task_id, action, payload}, и возвращает ответ
// {status, result?, error?}. Любая транспортная ошибка или
// несоответствующий ответ — error; Response с Status != "success" —
// логическая ошибка на стороне node.
//
// ctx несёт дедлайн task; прервать уже отправленный удалённый вызов
// невозможно — таймаут останавливает только локальное ожидание.
type Invoker interface {
	Invoke(ctx context.Context, node *domain.Node, task *domain.Task) (*Response, error)
}

// Response — ответ node на вызов.
type Response struct {
	// Status — "success" или "failure".
	Status string `json:"status"`

	// Result — полезная нагрузка ответа (при success).
	Result map[string]any `json:"result,omitempty"`

	// Error — описание ошибки на стороне node (при failure).
	Error string `json:"error,omitempty"`
}

// IsSuccess возвращает true для успешного ответа.
func (r *Response) IsSuccess() bool {
	return r.Status == string(domain.TaskStatusSuccess)
}

// Request — тело запроса к node.
type Request struct {
	TaskID  string         `json:"task_id"`
	Action  string         `json:"action"`
	Payload map[string]any `json:"payload,omitempty"`
}
