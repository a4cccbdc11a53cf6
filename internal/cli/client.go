package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// NodeResponse — node из API.
type NodeResponse struct {
	NodeID           string         `json:"node_id"`
	CapabilityType   string         `json:"capability_type"`
	InvocationTarget string         `json:"invocation_target"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	Status           string         `json:"status"`
	RegisteredAt     string         `json:"registered_at"`
	LastHeartbeat    string         `json:"last_heartbeat"`
}

// HealthReportResponse — отчёт о живости node из API.
type HealthReportResponse struct {
	NodeID        string  `json:"node_id"`
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	LastHeartbeat string  `json:"last_heartbeat"`
}

// TaskResultResponse — результат task из API.
type TaskResultResponse struct {
	TaskID      string         `json:"task_id"`
	Status      string         `json:"status"`
	State       string         `json:"state,omitempty"`
	Result      map[string]any `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
	DurationMs  int64          `json:"duration_ms,omitempty"`
	StartedAt   string         `json:"started_at,omitempty"`
	CompletedAt string         `json:"completed_at,omitempty"`
}

// StepResultResponse — результат шага pathway из API.
type StepResultResponse struct {
	StepIndex      int            `json:"step_index"`
	CapabilityType string         `json:"capability_type"`
	Action         string         `json:"action"`
	Status         string         `json:"status"`
	Result         map[string]any `json:"result,omitempty"`
	Error          string         `json:"error,omitempty"`
	Reason         string         `json:"reason,omitempty"`
	Attempts       int            `json:"attempts,omitempty"`
}

// PathwayRunResponse — контекст выполнения pathway из API.
type PathwayRunResponse struct {
	PathwayID   string               `json:"pathway_id"`
	Name        string               `json:"name"`
	Status      string               `json:"status"`
	StartedAt   string               `json:"started_at"`
	CompletedAt string               `json:"completed_at,omitempty"`
	Steps       []StepResultResponse `json:"steps"`
	Error       string               `json:"error,omitempty"`
}

// ScheduleResponse — schedule из API.
type ScheduleResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	CronExpr    string         `json:"cron_expr,omitempty"`
	IntervalSec int            `json:"interval_sec,omitempty"`
	Timezone    string         `json:"timezone"`
	Enabled     bool           `json:"enabled"`
	Pathway     map[string]any `json:"pathway"`
	NextDueAt   string         `json:"next_due_at,omitempty"`
	LastRunAt   string         `json:"last_run_at,omitempty"`
	LastRunID   string         `json:"last_run_id,omitempty"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

// MetricsSummaryResponse — сводка метрик из API.
type MetricsSummaryResponse struct {
	RegisteredNodes int `json:"registered_nodes"`
	PendingTasks    int `json:"pending_tasks"`
	ActiveTasks     int `json:"active_tasks"`
	CompletedTasks  int `json:"completed_tasks"`
	ActivePathways  int `json:"active_pathways"`
	Schedules       int `json:"schedules"`
}

// --- Request types ---

// SubmitTaskRequest — постановка или выполнение task.
type SubmitTaskRequest struct {
	CapabilityType string         `json:"capability_type"`
	Action         string         `json:"action"`
	Payload        map[string]any `json:"payload,omitempty"`
	Priority       int            `json:"priority,omitempty"`
	TimeoutSec     int            `json:"timeout_seconds,omitempty"`
}

// ExecutePathwayRequest — запуск pathway.
type ExecutePathwayRequest struct {
	Pathway json.RawMessage `json:"pathway"`
	Payload map[string]any  `json:"payload,omitempty"`
}

// ExecutePathwayResponse — ответ на запуск pathway.
type ExecutePathwayResponse struct {
	PathwayID string `json:"pathway_id"`
	Status    string `json:"status"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Dirigent API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Nodes ---

// ListNodes возвращает все nodes.
func (c *Client) ListNodes() ([]NodeResponse, error) {
	var nodes []NodeResponse
	err := c.list("/api/v1/nodes", &nodes)
	return nodes, err
}

// GetNode возвращает node по ID.
func (c *Client) GetNode(id string) (*NodeResponse, error) {
	var node NodeResponse
	err := c.get("/api/v1/nodes/"+id, &node)
	return &node, err
}

// UnregisterNode удаляет node из реестра.
func (c *Client) UnregisterNode(id string) error {
	return c.delete("/api/v1/nodes/" + id)
}

// NodesHealth возвращает отчёт о живости всех nodes.
func (c *Client) NodesHealth() (map[string]HealthReportResponse, error) {
	var reports map[string]HealthReportResponse
	err := c.list("/api/v1/nodes/health", &reports)
	return reports, err
}

// --- Tasks ---

// SubmitTask ставит task в очередь.
func (c *Client) SubmitTask(req SubmitTaskRequest) (*TaskResultResponse, error) {
	var result TaskResultResponse
	err := c.post("/api/v1/tasks", req, &result)
	return &result, err
}

// ExecuteTask выполняет task синхронно.
func (c *Client) ExecuteTask(req SubmitTaskRequest) (*TaskResultResponse, error) {
	var result TaskResultResponse
	err := c.post("/api/v1/tasks/execute", req, &result)
	return &result, err
}

// GetTask возвращает результат или состояние task.
func (c *Client) GetTask(id string) (*TaskResultResponse, error) {
	var result TaskResultResponse
	err := c.get("/api/v1/tasks/"+id, &result)
	return &result, err
}

// --- Pathways ---

// ExecutePathway запускает pathway.
func (c *Client) ExecutePathway(req ExecutePathwayRequest) (*ExecutePathwayResponse, error) {
	var resp ExecutePathwayResponse
	err := c.post("/api/v1/pathways/execute", req, &resp)
	return &resp, err
}

// PathwayStatus возвращает контекст выполнения pathway.
func (c *Client) PathwayStatus(id string) (*PathwayRunResponse, error) {
	var run PathwayRunResponse
	err := c.get("/api/v1/pathways/"+id+"/status", &run)
	return &run, err
}

// --- Schedules ---

// ListSchedules возвращает schedules.
func (c *Client) ListSchedules() ([]ScheduleResponse, error) {
	var schedules []ScheduleResponse
	err := c.list("/api/v1/schedules", &schedules)
	return schedules, err
}

// CreateSchedule создаёт schedule из JSON-определения.
func (c *Client) CreateSchedule(definition json.RawMessage) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	err := c.postRaw("/api/v1/schedules", definition, &schedule)
	return &schedule, err
}

// GetSchedule возвращает schedule по ID.
func (c *Client) GetSchedule(id string) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	err := c.get("/api/v1/schedules/"+id, &schedule)
	return &schedule, err
}

// DeleteSchedule удаляет schedule.
func (c *Client) DeleteSchedule(id string) error {
	return c.delete("/api/v1/schedules/" + id)
}

// SetScheduleEnabled включает или выключает schedule.
func (c *Client) SetScheduleEnabled(id string, enabled bool) error {
	body := map[string]bool{"enabled": enabled}
	return c.put("/api/v1/schedules/"+id+"/enabled", body, nil)
}

// --- Metrics ---

// MetricsSummary возвращает сводку метрик ядра.
func (c *Client) MetricsSummary() (*MetricsSummaryResponse, error) {
	var summary MetricsSummaryResponse
	err := c.get("/api/v1/metrics/summary", &summary)
	return &summary, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) postRaw(path string, body json.RawMessage, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, result any) error {
	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
