package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Sjf12/AACL/internal/adapter/middleware"
	"github.com/Sjf12/AACL/internal/core/domain"
	"github.com/Sjf12/AACL/internal/core/grammar"
)

type GrammarHandler struct {
	Issuer    *grammar.Issuer
	Validator *grammar.Validator
}

// ExecuteRequest is what the client SDK sends
type ExecuteRequest struct {
	GrammarID string         `json:"grammar_id"`
	Payload   map[string]any `json:"payload"`
}

// Issue API
func (h *GrammarHandler) Issue(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	intent := c.Params("intent")

	view, err := h.Issuer.Issue(intent, userID)
	switch {
	case errors.Is(err, domain.ErrUnknownUser):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user"})
	case errors.Is(err, domain.ErrUnsupportedIntent):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Unsupported intent"})
	case err != nil:
		slog.Error("Failed to issue grammar", "error", err, "intent", intent, "user_id", userID)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not issue grammar"})
	}

	return c.JSON(view)
}

// Execute API. Rejections are 200 too, so callers can't tell which check failed.
func (h *GrammarHandler) Execute(c *fiber.Ctx) error {
	// 1. Parse JSON
	req, payload, err := parseExecuteRequest(c.Body())
	if err != nil {
		slog.Warn("Invalid execute body", "error", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": "ERROR", "message": "Invalid JSON"})
	}

	// 2. A missing grammar_id or payload is just another rejection
	if req.GrammarID == "" || req.Payload == nil {
		return c.JSON(domain.ResultRejected)
	}

	// 3. Validate and run
	return c.JSON(h.Validator.Execute(req.GrammarID, payload))
}

var (
	errEmptyBody    = errors.New("request body is empty, null or {}")
	errTrailingData = errors.New("unexpected data after JSON object")
)

// parseExecuteRequest wants exactly one non-empty JSON object. Payload
// values may be strings or numbers; numbers keep their literal text
// ("1000.50" stays "1000.50").
func parseExecuteRequest(body []byte) (ExecuteRequest, map[string]string, error) {
	var req ExecuteRequest

	// 1. One object, nothing after it
	var fields map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&fields); err != nil {
		return req, nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return req, nil, errTrailingData
	}
	if len(fields) == 0 {
		return req, nil, errEmptyBody
	}

	// 2. Typed decode
	dec = json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return req, nil, err
	}

	payload := make(map[string]string, len(req.Payload))
	for key, value := range req.Payload {
		switch v := value.(type) {
		case string:
			payload[key] = v
		case json.Number:
			payload[key] = v.String()
		default:
			return req, nil, fmt.Errorf("payload key %q: unsupported value type %T", key, value)
		}
	}
	return req, payload, nil
}
