package quests

import (
	"errors"
	"fmt"
)

// ErrGoalNotReached is returned by Complete when the quest's progress is
// still short of its goal.
var ErrGoalNotReached = errors.New("quest goal not reached")

// InvalidTransitionError reports an illegal state-machine move. It is
// returned to the caller, never retried or swallowed.
type InvalidTransitionError struct {
	QuestID string
	From    string
	To      string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid quest transition for %s: %s -> %s", e.QuestID, e.From, e.To)
}

// NotFoundError reports that no current quest has the given id.
type NotFoundError struct {
	QuestID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("quest %s not found", e.QuestID)
}

// IsNotFound checks if an error is a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}
