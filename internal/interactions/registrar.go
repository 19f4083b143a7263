package interactions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"interactbox/internal/httpwire"

	"golang.org/x/oauth2"
)

const (
	// DefaultAPIHost is the remote API commands are registered with.
	DefaultAPIHost = "discord.com"

	// UserAgent identifies interactbox to the remote API.
	UserAgent = "DiscordBot (https://github.com/interactbox/interactbox, 1.0)"

	botTokenType = "Bot"
)

// Requester performs one raw HTTPS exchange. *client.Client implements it.
type Requester interface {
	Do(ctx context.Context, verb httpwire.Verb, path string, headers []httpwire.Header, body []byte) ([]byte, error)
}

// BotTokenSource wraps a static bot credential. Its Type is "Bot" so it
// renders as "Authorization: Bot <token>".
func BotTokenSource(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   botTokenType,
	})
}

// Registrar registers commands for one application.
type Registrar struct {
	requester Requester
	appID     string
	tokens    oauth2.TokenSource
	logger    *slog.Logger
}

// NewRegistrar creates a registrar.
func NewRegistrar(requester Requester, appID string, tokens oauth2.TokenSource, logger *slog.Logger) *Registrar {
	return &Registrar{
		requester: requester,
		appID:     appID,
		tokens:    tokens,
		logger:    logger,
	}
}

// CommandsPath returns the registration path for appID.
func CommandsPath(appID string) string {
	return fmt.Sprintf("/api/v10/applications/%s/commands", appID)
}

// RegisterCommand creates or overwrites cmd. Any response other than
// "HTTP/1.1 200 OK" is an error.
func (r *Registrar) RegisterCommand(ctx context.Context, cmd Command) error {
	token, err := r.tokens.Token()
	if err != nil {
		return fmt.Errorf("failed to obtain credential: %w", err)
	}

	body, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to encode command: %w", err)
	}

	headers := []httpwire.Header{
		{Name: "Authorization", Value: token.Type() + " " + token.AccessToken},
		{Name: "User-Agent", Value: UserAgent},
		{Name: "Content-Type", Value: "application/json"},
		{Name: httpwire.ContentLengthHeader, Value: strconv.Itoa(len(body))},
	}

	response, err := r.requester.Do(ctx, httpwire.VerbPost, CommandsPath(r.appID), headers, body)
	if err != nil {
		return fmt.Errorf("failed to register command %q: %w", cmd.Name, err)
	}

	if !httpwire.IsOK(response) {
		return fmt.Errorf("command %q registration rejected: %s", cmd.Name, httpwire.StatusLine(response))
	}

	r.logger.Info("Registered command", "command", cmd.Name, "app_id", r.appID)
	return nil
}

// RegisterAll registers each command in order, stopping at the first failure.
func (r *Registrar) RegisterAll(ctx context.Context, cmds []Command) error {
	for _, cmd := range cmds {
		if err := r.RegisterCommand(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}
