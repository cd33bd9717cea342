package httpx

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(rec, 404, "run_not_found", "run not found")

	if rec.Code != 404 {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != "run_not_found" || resp.Message != "run not found" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"latte"}`))
	var out payload
	if err := DecodeJSON(req, 0, &out); err != nil {
		t.Fatalf("DecodeJSON returned error: %v", err)
	}
	if out.Name != "latte" {
		t.Fatalf("out = %+v", out)
	}

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"latte"}{"name":"again"}`))
	if err := DecodeJSON(req, 0, &out); err == nil {
		t.Fatal("DecodeJSON accepted trailing data")
	}

	req = httptest.NewRequest("POST", "/", strings.NewReader(`not json`))
	if err := DecodeJSON(req, 0, &out); err == nil {
		t.Fatal("DecodeJSON accepted malformed input")
	}
}
