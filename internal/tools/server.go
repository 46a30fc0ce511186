package tools

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"github.com/cleared-dev/copilot/internal/logging"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeToolError      = -32000
)

// Reserved methods.
const (
	MethodList     = "tools.list"
	MethodShutdown = "shutdown"
)

// Request is a JSON-RPC 2.0 request. Params holds {args, kwargs}.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// Response is a JSON-RPC 2.0 response.
// Result must NOT have omitempty: clients wait for the key.
type Response struct {
	JSONRPC string    `json:"jsonrpc"`
	Result  any       `json:"result"`
	Error   *RPCError `json:"error,omitempty"`
	ID      any       `json:"id"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Server answers newline-delimited JSON-RPC requests one at a time, in the
// order they are read.
type Server struct {
	rt  *Runtime
	in  *bufio.Reader
	out io.Writer
	mu  sync.Mutex
}

// NewServer creates a Server reading requests from r and writing responses to w.
func NewServer(rt *Runtime, r io.Reader, w io.Writer) *Server {
	return &Server{rt: rt, in: bufio.NewReader(r), out: w}
}

// Serve processes requests until EOF, a shutdown request or ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	log := logging.FromContext(ctx)
	log.Info().Strs("tools", s.rt.Names()).Msg("serving tools on stdio")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := s.in.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			resp, stop := s.handle(ctx, line)
			if resp != nil {
				if werr := s.send(resp); werr != nil {
					return fmt.Errorf("writing response: %w", werr)
				}
			}
			if stop {
				log.Info().Msg("shutdown requested")
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading request: %w", err)
		}
	}
}

// handle returns the response for one line, or nil for a notification, and
// whether the server should stop.
func (s *Server) handle(ctx context.Context, line []byte) (*Response, bool) {
	log := logging.FromContext(ctx)

	req, err := decodeRequest(line)
	if err != nil {
		log.Warn().Err(err).Msg("unparseable request")
		return errorResponse(nil, CodeParseError, "parse error: "+err.Error()), false
	}
	if req.Method == "" {
		return errorResponse(req.ID, CodeInvalidRequest, "missing method"), false
	}

	switch req.Method {
	case MethodShutdown:
		if req.ID == nil {
			return nil, true
		}
		return &Response{JSONRPC: "2.0", Result: true, ID: req.ID}, true
	case MethodList:
		return &Response{JSONRPC: "2.0", Result: s.rt.Names(), ID: req.ID}, false
	}

	var params Params
	if len(req.Params) > 0 && !bytes.Equal(req.Params, []byte("null")) {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, CodeInvalidRequest, "params must be {args, kwargs}: "+err.Error()), false
		}
	}

	result, err := s.rt.Call(ctx, "jsonrpc", req.Method, params)
	if req.ID == nil {
		return nil, false
	}
	switch {
	case errors.Is(err, ErrUnknownTool):
		return errorResponse(req.ID, CodeMethodNotFound, err.Error()), false
	case err != nil:
		return errorResponse(req.ID, CodeToolError, err.Error()), false
	}
	return &Response{JSONRPC: "2.0", Result: result, ID: req.ID}, false
}

// decodeRequest parses line, falling back to a repaired copy of it. A repair
// that does not yield a method is treated as a failure.
func decodeRequest(line []byte) (Request, error) {
	var req Request
	err := json.Unmarshal(line, &req)
	if err == nil {
		return req, nil
	}

	repaired, rerr := jsonrepair.RepairJSON(string(line))
	if rerr != nil {
		return Request{}, err
	}
	req = Request{}
	if json.Unmarshal([]byte(repaired), &req) != nil || req.Method == "" {
		return Request{}, err
	}
	return req, nil
}

func errorResponse(id any, code int, msg string) *Response {
	return &Response{
		JSONRPC: "2.0",
		Error:   &RPCError{Code: code, Message: msg},
		ID:      id,
	}
}

func (s *Server) send(resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	s.mu.Lock()
	_, err = fmt.Fprintf(s.out, "%s\n", data)
	s.mu.Unlock()
	return err
}
