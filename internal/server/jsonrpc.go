package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/copyleftdev/tundr-problems/internal/optimization"
	"github.com/copyleftdev/tundr-problems/internal/registry"
	"github.com/copyleftdev/tundr-problems/internal/wire"
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeNotFound       = -32004
	codeServerError    = -32000
)

// rpcError is a JSON-RPC error carrying its code.
type rpcError struct {
	code    int
	message string
	data    interface{}
}

func (e *rpcError) Error() string { return e.message }

func invalidParams(format string, args ...interface{}) *rpcError {
	return &rpcError{code: codeInvalidParams, message: fmt.Sprintf(format, args...)}
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type idParams struct {
	ProblemID string `json:"problem_id"`
}

// handleJSONRPC handles JSON-RPC 2.0 requests
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request rpcRequest

	body, err := s.readBody(w, r)
	if err != nil {
		s.respondWithError(w, codeParseError, "Parse error", nil, nil)
		return
	}
	if err := json.Unmarshal(body, &request); err != nil {
		s.respondWithError(w, codeParseError, "Parse error", nil, nil)
		return
	}

	// Validate JSON-RPC 2.0 request
	if request.JSONRPC != "2.0" || request.Method == "" {
		s.respondWithError(w, codeInvalidRequest, "Invalid Request", request.ID, nil)
		return
	}

	// Route to appropriate handler
	var result interface{}

	switch request.Method {
	case "problem.register":
		result, err = s.rpcRegister(r.Context(), request.Params)
	case "problem.get":
		result, err = s.rpcGet(r.Context(), request.Params)
	case "problem.list":
		result, err = s.rpcList(r.Context())
	case "problem.delete":
		result, err = s.rpcDelete(r.Context(), request.Params)
	default:
		s.respondWithError(w, codeMethodNotFound, "Method not found", request.ID, nil)
		return
	}

	if err != nil {
		code, message, data := rpcErrorOf(err)
		if code == codeServerError {
			fields := errorFields(err)
			fields["method"] = request.Method
			s.logger.Error("JSON-RPC method failed", fields)
		}
		s.respondWithError(w, code, message, request.ID, data)
		return
	}

	// Send successful response
	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      request.ID,
		"result":  result,
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	_ = json.NewEncoder(w).Encode(response)
}

// decodeParams accepts either a params object or an array whose first
// element is the params object.
func decodeParams(raw json.RawMessage, v interface{}) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return invalidParams("missing required parameters")
	}
	if raw[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
			return invalidParams("missing required parameters")
		}
		raw = list[0]
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return invalidParams("invalid parameter format, expected object: %v", err)
	}
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	var params idParams
	if err := decodeParams(raw, &params); err != nil {
		return "", err
	}
	if params.ProblemID == "" {
		return "", invalidParams("problem_id is required")
	}
	return params.ProblemID, nil
}

// rpcRegister handles problem.register.
// Expected parameters: a wire OptimizationProblem object.
// Returns: {"problem_id": "...", "feature_dimensions": [...]}
func (s *Server) rpcRegister(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var msg wire.OptimizationProblem
	if err := decodeParams(raw, &msg); err != nil {
		return nil, err
	}
	id, p, err := s.registry.Register(ctx, &msg)
	if err != nil {
		return nil, err
	}
	return newRegisterResponse(id, p), nil
}

// rpcGet handles problem.get.
// Expected parameters: {"problem_id": "..."}
// Returns: {"problem_id": "...", "problem": <document>}
func (s *Server) rpcGet(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	id, err := decodeID(raw)
	if err != nil {
		return nil, err
	}
	p, err := s.registry.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"problem_id": id,
		"problem":    p.ToDocument(),
	}, nil
}

// rpcList handles problem.list.
func (s *Server) rpcList(ctx context.Context) (interface{}, error) {
	ids, err := s.registry.List(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"problem_ids": ids}, nil
}

// rpcDelete handles problem.delete.
// Expected parameters: {"problem_id": "..."}
func (s *Server) rpcDelete(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	id, err := decodeID(raw)
	if err != nil {
		return nil, err
	}
	if err := s.registry.Delete(ctx, id); err != nil {
		return nil, err
	}
	return map[string]interface{}{"problem_id": id, "deleted": true}, nil
}

func rpcErrorOf(err error) (int, string, interface{}) {
	var re *rpcError
	switch {
	case errors.As(err, &re):
		return re.code, re.message, re.data
	case registry.IsInvalid(err):
		return codeInvalidParams, err.Error(), map[string]string{"reason": optimization.ReasonOf(err)}
	case errors.Is(err, registry.ErrNotFound):
		return codeNotFound, "problem not found", nil
	case errors.Is(err, registry.ErrInvalidID):
		return codeInvalidParams, err.Error(), nil
	default:
		return codeServerError, "Server error", nil
	}
}

// respondWithError sends a JSON-RPC 2.0 error response
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, id interface{}, data interface{}) {
	s.logger.Debug("JSON-RPC error", map[string]interface{}{
		"code":    code,
		"message": message,
	})

	rpcErr := map[string]interface{}{
		"code":    code,
		"message": message,
	}
	if data != nil {
		rpcErr["data"] = data
	}
	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"error":   rpcErr,
		"id":      id,
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}
