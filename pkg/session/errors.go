package session

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/go-go-golems/marionette/pkg/transcript"
)

// ErrBusy is returned when a turn is started while another turn on the
// same session is still active.
var ErrBusy = errors.New("session already has an active turn")

// UnexpectedEntryError reports that the model returned an entry kind
// that is illegal mid-turn (anything other than a response or a tool
// call batch).
type UnexpectedEntryError struct {
	Kind transcript.EntryKind
}

func (e *UnexpectedEntryError) Error() string {
	return fmt.Sprintf("model returned unexpected entry kind: %s", e.Kind)
}

// TurnLimitError reports that a turn exceeded its configured round
// budget without reaching a terminal response.
type TurnLimitError struct {
	MaxRounds int
}

func (e *TurnLimitError) Error() string {
	return fmt.Sprintf("turn exceeded maximum of %d model rounds", e.MaxRounds)
}
