package models

import "errors"

var (
	// ErrNotFound is returned when an id does not resolve in the content store.
	ErrNotFound = errors.New("content not found")
	// ErrInconsistentPreferredAnswer marks a preferred-answer pointer that is
	// dangling or belongs to a different question.
	ErrInconsistentPreferredAnswer = errors.New("preferred answer does not belong to question")
	// ErrCycleDetected marks a reply chain that loops back onto itself.
	ErrCycleDetected = errors.New("reply cycle detected")
	// ErrTraversalLimit is reported when a thread exceeds the configured depth or size.
	ErrTraversalLimit = errors.New("thread traversal limit reached")
	// ErrInvalidVote rejects vote deltas other than +1 and -1.
	ErrInvalidVote = errors.New("vote delta must be +1 or -1")
)

// ErrInvalidParent rejects answers that do not reply to exactly one question or answer.
var ErrInvalidParent = errors.New("answer must reply to exactly one question or answer")
