package bridge

import "errors"

var (
	ErrShutdown   = errors.New("messenger is shut down")
	ErrEmptyTopic = errors.New("topic must not be empty")
)

// RemoteError is an error raised by the handler on the other side of the
// channel.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}
