package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"tryon/internal/logging"
	"tryon/internal/notifications"
	"tryon/internal/orchestrator"
	"tryon/internal/testsupport"
)

func startTestAPI(t *testing.T) (string, *orchestrator.Orchestrator) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = "127.0.0.1:0"
	st := testsupport.MustOpenStore(t, cfg)
	orc := orchestrator.New(cfg, st, logging.NewNop(), notifications.NewService(cfg), idleGenerator{})
	t.Cleanup(orc.Stop)

	srv, err := newAPIServer(cfg, orc, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("newAPIServer: %v", err)
	}
	if srv == nil {
		t.Fatal("api server should be configured when a bind address is set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := srv.start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(srv.stop)

	return "http://" + srv.Addr(), orc
}

func TestAPIServerDisabledWithoutBind(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = ""
	st := testsupport.MustOpenStore(t, cfg)
	orc := orchestrator.New(cfg, st, logging.NewNop(), notifications.NewService(cfg), idleGenerator{})
	t.Cleanup(orc.Stop)

	srv, err := newAPIServer(cfg, orc, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("newAPIServer: %v", err)
	}
	if srv != nil {
		t.Fatal("api server must stay disabled without api_bind")
	}
}

func TestAPIStatusAndHealth(t *testing.T) {
	base, _ := startTestAPI(t)

	resp, err := http.Get(base + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health returned %d", resp.StatusCode)
	}
	if origin := resp.Header.Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Fatalf("cors header missing, got %q", origin)
	}

	resp, err = http.Get(base + "/api/status")
	if err != nil {
		t.Fatalf("GET /api/status: %v", err)
	}
	defer resp.Body.Close()
	var payload struct {
		Job struct {
			Status string `json:"status"`
		} `json:"job"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if payload.Job.Status != "idle" {
		t.Fatalf("expected idle job, got %q", payload.Job.Status)
	}
}

func TestAPIStartClearRoundTrip(t *testing.T) {
	base, orc := startTestAPI(t)

	body, _ := json.Marshal(map[string]string{
		"garment_data": "data:image/jpeg;base64,AAAA",
		"model_photo":  "data:image/png;base64,BBBB",
		"description":  "Linen midi dress",
	})
	resp, err := http.Post(base+"/api/tryon/start", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST start: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("start returned %d", resp.StatusCode)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		record, _ := orc.Query(context.Background())
		if record.Status.IsTerminal() {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("job never finished")
		}
		time.Sleep(10 * time.Millisecond)
	}

	result, err := http.Get(base + "/api/tryon/result")
	if err != nil {
		t.Fatalf("GET result: %v", err)
	}
	defer result.Body.Close()
	var resultPayload struct {
		Status string `json:"status"`
		Result string `json:"result"`
	}
	if err := json.NewDecoder(result.Body).Decode(&resultPayload); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if resultPayload.Status != "complete" || resultPayload.Result == "" {
		t.Fatalf("unexpected result payload: %+v", resultPayload)
	}

	clear, err := http.Post(base+"/api/tryon/clear", "application/json", nil)
	if err != nil {
		t.Fatalf("POST clear: %v", err)
	}
	defer clear.Body.Close()
	if clear.StatusCode != http.StatusOK {
		t.Fatalf("clear returned %d", clear.StatusCode)
	}
	record, _ := orc.Query(context.Background())
	if record.Status != "idle" {
		t.Fatalf("slot not reset: %s", record.Status)
	}
}

func TestAPIStartRejectsMissingGarment(t *testing.T) {
	base, _ := startTestAPI(t)

	resp, err := http.Post(base+"/api/tryon/start", "application/json", bytes.NewReader([]byte(`{}`)))
	if err != nil {
		t.Fatalf("POST start: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if payload.Error == "" {
		t.Fatal("expected error message in payload")
	}
}
