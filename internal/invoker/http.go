package invoker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shaiso/Dirigent/internal/domain"
)

// maxResponseBytes — предел чтения тела ответа node.
const maxResponseBytes = 4 << 20

// HTTP — Invoker поверх HTTP.
//
// POST на node.InvocationTarget с телом {task_id, action, payload};
// ожидает 2xx и JSON {status, result?, error?}. Не-2xx код,
// транспортная ошибка или нечитаемое тело — InvocationError;
// истёкший дедлайн контекста — DeadlineExceeded.
type HTTP struct {
	client *http.Client
}

// NewHTTP создаёт HTTP-invoker.
// Таймауты управляются контекстом вызова, поэтому у клиента
// собственного таймаута нет.
func NewHTTP() *HTTP {
	return &HTTP{client: &http.Client{}}
}

// Invoke выполняет вызов node.
func (h *HTTP) Invoke(ctx context.Context, node *domain.Node, task *domain.Task) (*Response, error) {
	body, err := json.Marshal(Request{
		TaskID:  task.ID,
		Action:  task.Action,
		Payload: task.Payload,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrInvocation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, node.InvocationTarget, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrInvocation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: task %s did not complete within %s",
				ErrDeadlineExceeded, task.ID, task.Timeout())
		}
		return nil, fmt.Errorf("%w: %v", ErrInvocation, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: task %s did not complete within %s",
				ErrDeadlineExceeded, task.ID, task.Timeout())
		}
		return nil, fmt.Errorf("%w: read response: %v", ErrInvocation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: node %s returned HTTP %d: %s",
			ErrInvocation, node.ID, resp.StatusCode, truncate(string(respBody), 200))
	}

	var out Response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("%w: malformed response from node %s: %v", ErrInvocation, node.ID, err)
	}
	if out.Status == "" {
		return nil, fmt.Errorf("%w: response from node %s carries no status", ErrInvocation, node.ID)
	}

	return &out, nil
}

// truncate обрезает строку до указанной длины.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
