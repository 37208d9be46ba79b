package gameerr

import (
	"errors"
	"fmt"
)

// Business outcomes the engine can report. Everything matched with errors.Is
// against one of these is an expected result and gets a friendly chat line;
// any other error is a store failure.
var (
	ErrPlayerNotFound       = errors.New("player not found")
	ErrItemNotFound         = errors.New("item not found")
	ErrEnemyNotFound        = errors.New("enemy not found")
	ErrLocationNotFound     = errors.New("location not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrCapacityExceeded     = errors.New("carry limit reached")
	ErrInsufficientQuantity = errors.New("not enough in inventory")
	ErrInsufficientFunds    = errors.New("not enough lumins")
	ErrPrerequisiteNotMet   = errors.New("prerequisite not met")
)

// rejection carries a user-presentable message while still matching its
// taxonomy sentinel through errors.Is.
type rejection struct {
	kind error
	msg  string
}

func (r *rejection) Error() string { return r.msg }
func (r *rejection) Unwrap() error { return r.kind }

// Reject builds a business error of the given kind whose text is the chat line
// shown to the player.
func Reject(kind error, format string, args ...interface{}) error {
	return &rejection{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// IsBusiness reports whether err is one of the expected gameplay outcomes
// rather than a persistence failure.
func IsBusiness(err error) bool {
	for _, e := range []error{
		ErrPlayerNotFound, ErrItemNotFound, ErrEnemyNotFound, ErrLocationNotFound,
		ErrInvalidInput, ErrCapacityExceeded, ErrInsufficientQuantity,
		ErrInsufficientFunds, ErrPrerequisiteNotMet,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
