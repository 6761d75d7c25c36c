package engine

import "context"

// User is the sender of an update.
type User struct {
	ID        int64
	Username  string
	FirstName string
}

// Reply is the message an update answers.
type Reply struct {
	MessageID int
	FromBot   bool
	Text      string
}

// Callback is a press on an inline button.
type Callback struct {
	ID        string
	Data      string
	MessageID int
}

// Update is one inbound event from the chat platform.
type Update struct {
	ChatID    int64
	MessageID int
	From      User
	Text      string
	ReplyTo   *Reply
	Callback  *Callback
}

// InlineButton is one choice of an inline prompt.
type InlineButton struct {
	Text string
	Data string
}

// OutMessage is a message to send. A non-empty Photo is sent with Text as
// its caption.
type OutMessage struct {
	Text           string
	HTML           bool
	Photo          string
	Keyboard       [][]string
	RemoveKeyboard bool
	Inline         [][]InlineButton
	ReplyTo        int
}

// Transport is the chat platform boundary.
type Transport interface {
	Send(ctx context.Context, chatID int64, m OutMessage) (int, error)
	Edit(ctx context.Context, chatID int64, msgID int, text string) error
	Delete(ctx context.Context, chatID int64, msgID int) error
	React(ctx context.Context, chatID int64, msgID int, emoji string) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
