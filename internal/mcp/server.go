// Package mcp serves the memoria tools over the Model Context Protocol:
// newline-delimited JSON-RPC 2.0 on stdin/stdout.
package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	charmlog "github.com/charmbracelet/log"

	"github.com/memoria-dev/memoria/internal/tools"
)

const protocolVersion = "2024-11-05"

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeInvalidParams  = -32602
	codeMethodNotFound = -32601
)

// jsonRPCRequest is a JSON-RPC 2.0 request from the MCP client.
type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// jsonRPCResponse is a JSON-RPC 2.0 response written back to the client.
type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *jsonRPCError   `json:"error,omitempty"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// toolCallParams holds the params for a tools/call request.
type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type toolListResult struct {
	Tools []tools.Definition `json:"tools"`
}

// contentBlock is a single content block in a tools/call result.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type toolCallResult struct {
	Content []contentBlock `json:"content"`
	IsError bool           `json:"isError"`
}

// Caller runs a named tool. *tools.Handler satisfies it.
type Caller interface {
	Call(name string, args json.RawMessage) (tools.Response, error)
}

// Server answers MCP requests using a Caller.
type Server struct {
	caller  Caller
	version string
	logger  *charmlog.Logger

	mu sync.Mutex
}

// NewServer returns a Server reporting version in its serverInfo.
// A nil logger discards diagnostics.
func NewServer(caller Caller, version string, logger *charmlog.Logger) *Server {
	if logger == nil {
		logger = charmlog.New(io.Discard)
	}
	return &Server{caller: caller, version: version, logger: logger}
}

// Serve reads one JSON-RPC message per line from in and writes responses
// to out until in is exhausted. Notifications get no response.
func (s *Server) Serve(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		resp, reply := s.handle(line)
		if !reply {
			continue
		}
		if err := s.write(out, resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// handle processes one raw message. reply is false for notifications.
func (s *Server) handle(line []byte) (resp jsonRPCResponse, reply bool) {
	var req jsonRPCRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return errorResponse(nil, codeParseError, fmt.Sprintf("parse error: %v", err)), true
	}
	if strings.HasPrefix(req.Method, "notifications/") {
		s.logger.Debug("notification", "method", req.Method)
		return jsonRPCResponse{}, false
	}

	switch req.Method {
	case "initialize":
		return result(req.ID, map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    "memoria",
				"version": s.version,
			},
		}), true

	case "ping":
		return result(req.ID, map[string]any{}), true

	case "tools/list":
		return result(req.ID, toolListResult{Tools: tools.Definitions()}), true

	case "tools/call":
		var params toolCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("invalid params: %v", err)), true
		}
		return result(req.ID, s.callTool(params)), true

	default:
		return errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method)), true
	}
}

func (s *Server) callTool(params toolCallParams) toolCallResult {
	resp, err := s.caller.Call(params.Name, params.Arguments)
	if err != nil {
		s.logger.Error("tool call failed", "tool", params.Name, "err", err)
		resp = tools.Internal(err)
	}
	text, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		text = []byte(fmt.Sprintf(`{"success": false, "message": %q, "error": %q}`, err.Error(), tools.ErrInternal))
	}
	s.logger.Debug("tool call", "tool", params.Name, "success", resp.Success, "error", resp.Error)
	return toolCallResult{
		Content: []contentBlock{{Type: "text", Text: string(text)}},
		IsError: !resp.Success,
	}
}

func (s *Server) write(out io.Writer, resp jsonRPCResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

func result(id json.RawMessage, v any) jsonRPCResponse {
	return jsonRPCResponse{JSONRPC: "2.0", ID: orNull(id), Result: v}
}

func errorResponse(id json.RawMessage, code int, message string) jsonRPCResponse {
	return jsonRPCResponse{JSONRPC: "2.0", ID: orNull(id), Error: &jsonRPCError{Code: code, Message: message}}
}

func orNull(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}
