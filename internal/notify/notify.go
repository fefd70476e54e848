// Package notify defines the transient notifications shown after a user action.
package notify

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a one-shot message displayed to the user and then discarded.
type Notification struct {
	Level Level  `json:"level"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Success builds a success notification.
func Success(title, text string) *Notification {
	return &Notification{Level: LevelSuccess, Title: title, Text: text}
}

// Failure builds an error notification.
func Failure(title, text string) *Notification {
	return &Notification{Level: LevelError, Title: title, Text: text}
}

// IsError reports whether n reports a failure.
func (n *Notification) IsError() bool {
	return n != nil && n.Level == LevelError
}
