package queue

import "errors"

// ErrProcessingAborted is an error that occurs when a processing function
// decided with [DecisionAbort] to stop processing a queue.
var ErrProcessingAborted = errors.New("queue processing aborted")
