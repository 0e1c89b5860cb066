package tasks

import (
	"errors"

	"github.com/desertthunder/crate/internal/shared"
)

// Level is the severity of a user-visible status message.
type Level int

const (
	LevelSuccess Level = iota
	LevelInfo
	LevelWarning
	LevelDanger
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	default:
		return "danger"
	}
}

// Status is a message shown to the user after an operation. No status is fatal.
type Status struct {
	Level   Level
	Message string
}

// StatusFor maps the outcome of an operation to a [Status]. A nil err yields okMessage at [LevelSuccess].
func StatusFor(err error, okMessage string) Status {
	if err == nil {
		return Status{Level: LevelSuccess, Message: okMessage}
	}

	switch {
	case errors.Is(err, shared.ErrDuplicate):
		return Status{Level: LevelInfo, Message: err.Error()}
	case errors.Is(err, shared.ErrInvalidInput):
		return Status{Level: LevelWarning, Message: err.Error()}
	case errors.Is(err, shared.ErrTokenExpired):
		return Status{Level: LevelDanger, Message: "Catalog rejected the credential: " + err.Error()}
	default:
		return Status{Level: LevelDanger, Message: err.Error()}
	}
}
