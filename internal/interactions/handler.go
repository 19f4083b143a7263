// Package interactions serves signed webhook interaction deliveries and
// registers the commands they answer.
package interactions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"interactbox/internal/history"
	"interactbox/internal/httpwire"
	"interactbox/internal/server"
)

// Path is the route the remote service delivers interactions to.
const Path = "/api/v2/interactions"

const recordTimeout = 5 * time.Second

// Recorder persists verified deliveries.
type Recorder interface {
	RecordInteraction(ctx context.Context, record *history.InteractionRecord) (int64, error)
}

// Handler answers interaction deliveries. It verifies the signature on the
// raw body before decoding anything.
type Handler struct {
	verifier *server.Verifier
	commands map[string]Command
	recorder Recorder
	logger   *slog.Logger
}

// NewHandler creates a handler answering the given commands. recorder may be nil.
func NewHandler(verifier *server.Verifier, commands []Command, recorder Recorder, logger *slog.Logger) *Handler {
	byName := make(map[string]Command, len(commands))
	for _, cmd := range commands {
		byName[cmd.Name] = cmd
	}

	return &Handler{
		verifier: verifier,
		commands: byName,
		recorder: recorder,
		logger:   logger,
	}
}

// Route returns the server route for this handler.
func (h *Handler) Route() server.Route {
	return server.Route{Path: Path, Handler: h}
}

// Handle implements server.Handler.
func (h *Handler) Handle(ctx context.Context, req *httpwire.Request, body io.Reader, w io.Writer) error {
	start := time.Now()

	if req.Verb != httpwire.VerbPost {
		return httpwire.Malformed("method %s not allowed on %s", req.Verb, req.Path)
	}

	content, err := httpwire.ReadContent(req, body)
	if err != nil {
		return err
	}

	if err := h.verifier.Verify(req.Headers, content); err != nil {
		h.logger.Warn("Rejected unverified interaction", "conn_id", req.ConnID, "error", err)
		return err
	}

	// Only verified bytes reach the decoder.
	var interaction Interaction
	if err := json.Unmarshal(content, &interaction); err != nil {
		return httpwire.NewError(httpwire.KindMalformedPayload, fmt.Errorf("invalid JSON payload: %w", err))
	}
	if interaction.Type == nil {
		return httpwire.MalformedPayload("missing interaction type")
	}

	response, command, err := h.dispatch(&interaction)

	outcome := history.OutcomeRejected
	switch {
	case err != nil:
	case response.Type == ResponsePong:
		outcome = history.OutcomePong
	default:
		outcome = history.OutcomeReplied
	}
	h.record(ctx, req, *interaction.Type, command, outcome, start)

	if err != nil {
		return err
	}
	return httpwire.WriteJSON(w, response)
}

func (h *Handler) dispatch(interaction *Interaction) (*Response, string, error) {
	switch *interaction.Type {
	case TypePing:
		return &Response{Type: ResponsePong}, "", nil

	case TypeApplicationCommand:
		if interaction.Data == nil {
			return nil, "", httpwire.MalformedPayload("application command without data")
		}
		name := interaction.Data.Name
		cmd, ok := h.commands[name]
		if !ok {
			return nil, name, httpwire.MalformedPayload("unknown command %q", name)
		}
		return &Response{
			Type: ResponseChannelMessageWithSource,
			Data: &MessageResponse{Content: cmd.Reply},
		}, name, nil

	default:
		return nil, "", httpwire.MalformedPayload("unsupported interaction type %d", *interaction.Type)
	}
}

func (h *Handler) record(ctx context.Context, req *httpwire.Request, interactionType int64, command, outcome string, start time.Time) {
	h.logger.Info("Interaction handled",
		"conn_id", req.ConnID,
		"type", interactionType,
		"command", command,
		"outcome", outcome)

	if h.recorder == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()

	duration := time.Since(start).Milliseconds()
	record := &history.InteractionRecord{
		ConnID:          req.ConnID,
		RemoteAddr:      req.RemoteAddr,
		InteractionType: interactionType,
		Outcome:         outcome,
		ReceivedAt:      start,
		DurationMillis:  &duration,
	}
	if command != "" {
		record.Command = &command
	}

	if _, err := h.recorder.RecordInteraction(ctx, record); err != nil {
		h.logger.Error("Failed to record interaction", "error", err, "conn_id", req.ConnID)
	}
}
