package session

import "errors"

var (
	// ErrUnknownQuestion means the question id is not part of this attempt.
	// Reaching it through the normal UI is a programming error.
	ErrUnknownQuestion = errors.New("question does not belong to this attempt")

	// ErrEmptySubmission is the local validation failure for a programming
	// assignment submitted with no non-empty code answers. The attempt stays
	// editable.
	ErrEmptySubmission = errors.New("no programming answers to submit")

	// ErrAttemptFinished means the attempt reached its terminal submitted
	// state; no further mutation is permitted.
	ErrAttemptFinished = errors.New("attempt already submitted")

	// ErrSubmitInProgress means a submission is currently in flight.
	ErrSubmitInProgress = errors.New("submission in progress")
)
