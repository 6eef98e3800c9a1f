package domain

import "errors"

// Domain errors
var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrGameAlreadyStarted   = errors.New("game already started")
	ErrGameFinished         = errors.New("game already finished")
	ErrUnauthorized         = errors.New("only the host can perform this action")
	ErrNoQuestionsAvailable = errors.New("no questions available for this category")
	ErrInvalidPayload       = errors.New("missing required field")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrInvalidTransition    = errors.New("invalid room state transition")
)
