package interactions

// Interaction types
const (
	TypePing               = 1
	TypeApplicationCommand = 2
)

// Interaction response types
const (
	ResponsePong                     = 1
	ResponseChannelMessageWithSource = 4
)

// Interaction is the inbound delivery body. Type is a pointer so a missing
// discriminator can be told apart from zero.
type Interaction struct {
	Type *int64       `json:"type"`
	Data *CommandData `json:"data,omitempty"`
}

// CommandData carries the invoked command for application command deliveries.
type CommandData struct {
	Name string `json:"name"`
}

// Response is the reply body for an interaction.
type Response struct {
	Type int              `json:"type"`
	Data *MessageResponse `json:"data,omitempty"`
}

// MessageResponse is the message content of a command reply.
type MessageResponse struct {
	Content string `json:"content"`
}

// Command is a named command both registered with the remote API and
// answered by the handler.
type Command struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Reply       string `json:"-"`
}

// HelloCommand is registered on start unless disabled.
var HelloCommand = Command{
	Name:        "hello",
	Description: "Hello, World!",
	Reply:       "Hello, World!",
}
