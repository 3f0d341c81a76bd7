package firefly

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/basel-ax/fireflyweb/internal/domain"
)

type captured struct {
	method string
	path   string
	header http.Header
	body   []byte
}

// newTestAPI starts a server that hands out a token on /token and records the
// last API call
func newTestAPI(t *testing.T, reply string) (*httptest.Server, *captured, *atomic.Int32) {
	t.Helper()
	last := &captured{}
	calls := &atomic.Int32{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"tok-123"}`))
			return
		}
		calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		last.method = r.Method
		last.path = r.URL.Path
		last.header = r.Header.Clone()
		last.body = body
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)
	return server, last, calls
}

func newTestClient(server *httptest.Server, tokens TokenSource) *Client {
	return NewClient(Config{
		BaseURL: server.URL + "/",
		APIKey:  "key-abc",
		Timeout: 5 * time.Second,
	}, tokens, zap.NewNop())
}

func TestDispatch_ReferenceMode(t *testing.T) {
	server, last, _ := newTestAPI(t, `{"images":[{"seed":7,"image":{"id":"asset-1","presignedUrl":"https://cdn/x.png"}}]}`)
	client := newTestClient(server, NewTokenService(server.Client(), server.URL+"/token"))

	payload := domain.GenerativeExpandRequest{Prompt: "sea", N: 1, Image: domain.AssetRef{ID: "asset-0"}}
	resp, err := client.Dispatch(context.Background(), domain.Request{
		Endpoint: domain.EndpointGenerativeExpand,
		Mode:     domain.ModeReference,
		Payload:  payload,
	})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if last.method != http.MethodPost {
		t.Errorf("method = %s, want POST", last.method)
	}
	if last.path != domain.EndpointGenerativeExpand {
		t.Errorf("path = %s", last.path)
	}
	if got := last.header.Get("Authorization"); got != "Bearer tok-123" {
		t.Errorf("Authorization = %q", got)
	}
	if got := last.header.Get("x-api-key"); got != "key-abc" {
		t.Errorf("x-api-key = %q", got)
	}
	if got := last.header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := last.header.Get("x-accept-mimetype"); got != "" {
		t.Errorf("x-accept-mimetype should not be set, got %q", got)
	}

	var sent domain.GenerativeExpandRequest
	if err := json.Unmarshal(last.body, &sent); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if sent.Image.ID != "asset-0" || sent.Prompt != "sea" {
		t.Errorf("unexpected body: %s", last.body)
	}

	if resp.Kind != domain.ResponseImages {
		t.Fatalf("Kind = %v, want images", resp.Kind)
	}
	if len(resp.Items) != 1 || resp.Items[0].Image.ID != "asset-1" {
		t.Errorf("unexpected items: %+v", resp.Items)
	}
}

func TestDispatch_Base64Mode(t *testing.T) {
	server, last, _ := newTestAPI(t, `{"images":[{"seed":1,"base64":"iVBORw0K"}]}`)
	client := newTestClient(server, NewStaticTokenSource("static"))

	_, err := client.Dispatch(context.Background(), domain.Request{
		Endpoint: domain.EndpointTextToImage,
		Mode:     domain.ModeBase64,
		Payload:  domain.TextToImageRequest{Prompt: "cat"},
	})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if got := last.header.Get("Accept"); got != "application/json+base64" {
		t.Errorf("Accept = %q", got)
	}
	if got := last.header.Get("x-accept-mimetype"); got != "image/png" {
		t.Errorf("x-accept-mimetype = %q", got)
	}
	if got := last.header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := last.header.Get("Authorization"); got != "Bearer static" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestDispatch_FileMode(t *testing.T) {
	server, last, _ := newTestAPI(t, `{"images":[{"id":"uploaded-1"}]}`)
	client := newTestClient(server, NewStaticTokenSource("static"))

	file := &domain.File{Name: "cat.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}}
	resp, err := client.Dispatch(context.Background(), domain.Request{
		Endpoint: domain.EndpointUploadImage,
		Mode:     domain.ModeFile,
		File:     file,
	})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if got := last.header.Get("Content-Type"); got != "image/jpeg" {
		t.Errorf("Content-Type = %q, want image/jpeg", got)
	}
	if string(last.body) != string(file.Data) {
		t.Errorf("body = %v, want raw file bytes", last.body)
	}
	if resp.Kind != domain.ResponseReference {
		t.Fatalf("Kind = %v, want reference", resp.Kind)
	}
	if resp.Items[0].ID != "uploaded-1" {
		t.Errorf("ID = %q", resp.Items[0].ID)
	}
}

func TestDispatch_FileModeWithoutFile(t *testing.T) {
	server, _, calls := newTestAPI(t, `{}`)
	client := newTestClient(server, NewStaticTokenSource("static"))

	_, err := client.Dispatch(context.Background(), domain.Request{
		Endpoint: domain.EndpointUploadImage,
		Mode:     domain.ModeFile,
	})
	if !errors.Is(err, domain.ErrRequest) {
		t.Fatalf("err = %v, want domain.ErrRequest", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no API call, got %d", calls.Load())
	}
}

func TestDispatch_TokenFailureSkipsCall(t *testing.T) {
	var apiCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		apiCalls.Add(1)
	}))
	defer server.Close()

	client := newTestClient(server, NewTokenService(server.Client(), server.URL+"/token"))
	_, err := client.Dispatch(context.Background(), domain.Request{
		Endpoint: domain.EndpointGenerativeFill,
		Mode:     domain.ModeReference,
		Payload:  domain.GenerativeFillRequest{},
	})
	if !errors.Is(err, domain.ErrToken) {
		t.Fatalf("err = %v, want domain.ErrToken", err)
	}
	if apiCalls.Load() != 0 {
		t.Errorf("expected no API call after token failure, got %d", apiCalls.Load())
	}
}

func TestDispatch_TransportFailure(t *testing.T) {
	server, _, _ := newTestAPI(t, `{}`)
	client := newTestClient(server, NewStaticTokenSource("static"))
	server.Close()

	_, err := client.Dispatch(context.Background(), domain.Request{
		Endpoint: domain.EndpointGenerativeMatch,
		Mode:     domain.ModeReference,
		Payload:  domain.GenerativeMatchRequest{},
	})
	if !errors.Is(err, domain.ErrRequest) {
		t.Fatalf("err = %v, want domain.ErrRequest", err)
	}
	if errors.Is(err, domain.ErrToken) {
		t.Error("transport failure should not be reported as a token failure")
	}
}

func TestDispatch_UnknownMode(t *testing.T) {
	server, _, calls := newTestAPI(t, `{}`)
	client := newTestClient(server, NewStaticTokenSource("static"))

	_, err := client.Dispatch(context.Background(), domain.Request{Endpoint: "/x", Mode: "xml"})
	if !errors.Is(err, domain.ErrRequest) {
		t.Fatalf("err = %v, want domain.ErrRequest", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no API call, got %d", calls.Load())
	}
}

func TestDispatch_ErrorBodyIsClassifiedRegardlessOfStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error_code":"403003","message":"Api Key is invalid"}`))
	}))
	defer server.Close()

	client := newTestClient(server, NewStaticTokenSource("static"))
	resp, err := client.Dispatch(context.Background(), domain.Request{
		Endpoint: domain.EndpointTextToImage,
		Mode:     domain.ModeBase64,
		Payload:  domain.TextToImageRequest{},
	})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if resp.Kind != domain.ResponseAPIError {
		t.Fatalf("Kind = %v, want api-error", resp.Kind)
	}
	if resp.ErrorCode != "403003" || resp.Message != "Api Key is invalid" {
		t.Errorf("unexpected error pair: %q %q", resp.ErrorCode, resp.Message)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d", resp.StatusCode)
	}
}
