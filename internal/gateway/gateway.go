// Package gateway is the transport to the game server's action endpoint.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/piously-console/internal/logger"
	"github.com/jwebster45206/piously-console/pkg/game"
)

// ActionPath is the single endpoint every intent is posted to.
const ActionPath = "/api/do_action"

// ErrTransport wraps failures to reach the server at all.
var ErrTransport = errors.New("could not reach the game server")

// ServerError is a failure reported by the server, either through a non-2xx
// status or a backend_error key in the body.
type ServerError struct {
	Status  int
	Message string // display message from the "error" key, if any
	Backend string // backend_error detail, if any

	// Body is the decoded reply when there was one. The server still sends
	// state with its errors, such as game_over for a game that is gone.
	Body game.Response
}

func (e *ServerError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if msg == "" {
		msg = "server error"
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, msg)
}

// Request is the body of POST /api/do_action.
type Request struct {
	CurrentAction   string `json:"current_action"`
	GameID          string `json:"game_id"`
	ClickX          *int   `json:"click_x,omitempty"`
	ClickY          *int   `json:"click_y,omitempty"`
	ClickSpell      string `json:"click_spell,omitempty"`
	ClickSpellIdx   *int   `json:"click_spell_idx,omitempty"`
	ChoiceIdx       string `json:"choice_idx,omitempty"`
	CurrentKeypress string `json:"current_keypress,omitempty"`

	Seq uint64 `json:"-"` // sent as X-Request-Seq
}

// Gateway sends one intent and returns the server's reply.
type Gateway interface {
	DoAction(ctx context.Context, req Request) (game.Response, error)
}

// HTTPGateway posts intents as JSON over HTTP.
type HTTPGateway struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// Ensure HTTPGateway implements Gateway
var _ Gateway = (*HTTPGateway)(nil)

func NewHTTPGateway(client *http.Client, baseURL string, log *slog.Logger) *HTTPGateway {
	return &HTTPGateway{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log,
	}
}

func (g *HTTPGateway) DoAction(ctx context.Context, req Request) (game.Response, error) {
	requestID := uuid.New().String()
	log := logger.WithRequestID(g.logger, requestID)

	jsonData, err := json.Marshal(req)
	if err != nil {
		return game.Response{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+ActionPath, bytes.NewBuffer(jsonData))
	if err != nil {
		return game.Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	httpReq.Header.Set("X-Request-Seq", strconv.FormatUint(req.Seq, 10))

	log.Debug("Sending action", "action", req.CurrentAction, "game_id", req.GameID, "seq", req.Seq)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		logger.WithError(log, err).Warn("Action request failed")
		return game.Response{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return game.Response{}, fmt.Errorf("%w: failed to read response: %w", ErrTransport, err)
	}

	parsed, parseErr := game.ParseResponse(body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &ServerError{Status: resp.StatusCode}
		if parseErr == nil {
			serr.Message = parsed.ErrorMessage()
			serr.Backend, _ = parsed.BackendError()
			serr.Body = parsed
		}
		log.Warn("Server rejected action", "status", resp.StatusCode, "error", serr.Message, "backend_error", serr.Backend)
		return game.Response{}, serr
	}

	if parseErr != nil {
		return game.Response{}, fmt.Errorf("%w: %w", &ServerError{Status: resp.StatusCode, Message: "malformed response"}, parseErr)
	}

	if backend, ok := parsed.BackendError(); ok {
		log.Warn("Server reported backend error", "backend_error", backend)
		return game.Response{}, &ServerError{Status: resp.StatusCode, Message: parsed.ErrorMessage(), Backend: backend, Body: parsed}
	}

	log.Debug("Action completed", "keys", parsed.Keys())
	return parsed, nil
}
