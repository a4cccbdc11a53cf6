package invoker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shaiso/Dirigent/internal/domain"
)

func TestHTTPInvokeSuccess(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(Response{
			Status: "success",
			Result: map[string]any{"plan": "ready"},
		})
	}))
	defer srv.Close()

	node := &domain.Node{ID: "biz-1", InvocationTarget: srv.URL}
	task := domain.NewTask(domain.CapabilityBusiness, "create-business-plan", map[string]any{"idea": "cafe"})

	resp, err := NewHTTP().Invoke(context.Background(), node, task)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("status = %q, want success", resp.Status)
	}
	if resp.Result["plan"] != "ready" {
		t.Errorf("result = %v", resp.Result)
	}
	if got.TaskID != task.ID || got.Action != "create-business-plan" {
		t.Errorf("request = %+v", got)
	}
	if got.Payload["idea"] != "cafe" {
		t.Errorf("payload = %v", got.Payload)
	}
}

func TestHTTPInvokeFailureResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{Status: "failure", Error: "unknown action"})
	}))
	defer srv.Close()

	node := &domain.Node{ID: "biz-1", InvocationTarget: srv.URL}
	task := domain.NewTask(domain.CapabilityBusiness, "no-such-action", nil)

	resp, err := NewHTTP().Invoke(context.Background(), node, task)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if resp.IsSuccess() {
		t.Error("failure response reported as success")
	}
	if resp.Error != "unknown action" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestHTTPInvokeNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	node := &domain.Node{ID: "biz-1", InvocationTarget: srv.URL}
	task := domain.NewTask(domain.CapabilityBusiness, "validate-idea", nil)

	_, err := NewHTTP().Invoke(context.Background(), node, task)
	if !errors.Is(err, ErrInvocation) {
		t.Fatalf("err = %v, want ErrInvocation", err)
	}
}

func TestHTTPInvokeMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	node := &domain.Node{ID: "biz-1", InvocationTarget: srv.URL}
	task := domain.NewTask(domain.CapabilityBusiness, "validate-idea", nil)

	_, err := NewHTTP().Invoke(context.Background(), node, task)
	if !errors.Is(err, ErrInvocation) {
		t.Fatalf("err = %v, want ErrInvocation", err)
	}
}

func TestHTTPInvokeDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(Response{Status: "success"})
	}))
	defer srv.Close()

	node := &domain.Node{ID: "biz-1", InvocationTarget: srv.URL}
	task := domain.NewTask(domain.CapabilityBusiness, "validate-idea", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewHTTP().Invoke(ctx, node, task)
	if !errors.Is(err, ErrDeadlineExceeded) {
		t.Fatalf("err = %v, want ErrDeadlineExceeded", err)
	}
}
