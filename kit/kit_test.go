package kit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestChain_Order(t *testing.T) {
	var order []string

	mw := func(name string) Middleware {
		return func(next Endpoint) Endpoint {
			return func(ctx context.Context, req any) (any, error) {
				order = append(order, name+"_before")
				resp, err := next(ctx, req)
				order = append(order, name+"_after")
				return resp, err
			}
		}
	}

	base := func(_ context.Context, _ any) (any, error) {
		order = append(order, "endpoint")
		return "ok", nil
	}

	chained := Chain(mw("a"), mw("b"))(base)
	resp, err := chained(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp != "ok" {
		t.Fatalf("response: got %v", resp)
	}

	expected := []string{"a_before", "b_before", "endpoint", "b_after", "a_after"}
	if strings.Join(order, ",") != strings.Join(expected, ",") {
		t.Fatalf("order: got %v, want %v", order, expected)
	}
}

func TestChain_ErrorPropagation(t *testing.T) {
	errFail := errors.New("fail")
	base := func(_ context.Context, _ any) (any, error) {
		return nil, errFail
	}

	noop := func(next Endpoint) Endpoint { return next }
	_, err := Chain(noop)(base)(context.Background(), nil)
	if !errors.Is(err, errFail) {
		t.Fatalf("error: got %v, want %v", err, errFail)
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fail := func(_ context.Context, _ any) (any, error) { return nil, errors.New("boom") }
	ctx := WithRequestID(context.Background(), "req_1")
	if _, err := Logging(logger, "import")(fail)(ctx, nil); err == nil {
		t.Fatal("expected error")
	}
	out := buf.String()
	for _, want := range []string{`"level":"WARN"`, `"endpoint":"import"`, `"request_id":"req_1"`, `"error":"boom"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %s: %s", want, out)
		}
	}
}

func TestContext_Values(t *testing.T) {
	ctx := context.Background()
	if GetUserID(ctx) != "" || GetRequestID(ctx) != "" || GetRemoteAddr(ctx) != "" {
		t.Fatal("empty context should yield empty values")
	}
	if GetTransport(ctx) != "http" {
		t.Fatalf("default transport: got %q, want 'http'", GetTransport(ctx))
	}

	ctx = WithUserID(ctx, "editor")
	ctx = WithRequestID(ctx, "req_abc")
	ctx = WithRemoteAddr(ctx, "127.0.0.1:1234")
	ctx = WithTransport(ctx, "mcp")
	if GetUserID(ctx) != "editor" || GetRequestID(ctx) != "req_abc" ||
		GetRemoteAddr(ctx) != "127.0.0.1:1234" || GetTransport(ctx) != "mcp" {
		t.Fatal("values not round-tripped")
	}
}

func TestLogAttrs(t *testing.T) {
	// WHAT: LogAttrs reports only the values that are set, plus the transport.
	// WHY: Log lines for anonymous calls should not carry empty user fields.
	attrs := LogAttrs(WithRequestID(context.Background(), "req_1"))
	if len(attrs) != 4 || attrs[1] != "http" || attrs[2] != "request_id" || attrs[3] != "req_1" {
		t.Errorf("attrs: %v", attrs)
	}

	ctx := WithUserID(WithTransport(context.Background(), "mcp"), "editor")
	attrs = LogAttrs(ctx)
	if len(attrs) != 4 || attrs[1] != "mcp" || attrs[2] != "user" || attrs[3] != "editor" {
		t.Errorf("attrs: %v", attrs)
	}
}

type echoReq struct {
	Text string `json:"text"`
}

func TestRegisterMCPTool(t *testing.T) {
	impl := &mcp.Implementation{Name: "kit-test", Version: "0.1.0"}
	srv := mcp.NewServer(impl, nil)

	tool := &mcp.Tool{
		Name:        "echo",
		Description: "Echo text.",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{"text": map[string]any{"type": "string"}}},
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*echoReq)
		if r.Text == "fail" {
			return nil, errors.New("asked to fail")
		}
		return map[string]string{"text": r.Text, "transport": GetTransport(ctx), "rid": GetRequestID(ctx)}, nil
	}
	RegisterMCPTool(srv, tool, endpoint, DecodeArgs[echoReq]())

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()
	session, err := mcp.NewClient(impl, nil).Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })

	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "echo", Arguments: map[string]any{"text": "hi"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %+v", res.Content)
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(res.Content[0].(*mcp.TextContent).Text), &got); err != nil {
		t.Fatal(err)
	}
	if got["text"] != "hi" || got["transport"] != "mcp" || got["rid"] == "" {
		t.Errorf("response: %v", got)
	}

	res, err = session.CallTool(ctx, &mcp.CallToolParams{Name: "echo", Arguments: map[string]any{"text": "fail"}})
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected tool error")
	}
}
