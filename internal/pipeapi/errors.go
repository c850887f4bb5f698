package pipeapi

import (
	"errors"
	"fmt"

	"modelpipe/internal/images"
	"modelpipe/internal/manager"
	"modelpipe/internal/protocol"
)

// FatalError is a protocol violation by the peer: an unknown command or a
// wrong argument count. The loop stops on it without answering the
// request, so the peer can tell a broken exchange from an ERROR response.
type FatalError struct {
	Ref uint32
	Cmd protocol.Command
	Msg string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("protocol error: ref %d, command %s: %s", e.Ref, e.Cmd, e.Msg)
}

// IsFatal reports whether err must terminate the service loop. Malformed
// frames count as fatal as well.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe) || protocol.IsMalformedFrame(err)
}

func protocolError(req protocol.Request, format string, a ...any) error {
	return &FatalError{Ref: req.Ref, Cmd: req.Cmd, Msg: fmt.Sprintf(format, a...)}
}

// errorKind labels a recoverable error for metrics and logs. Failures
// raised by the model runtime are "runtime"; everything the peer can fix
// by sending different input is "business".
func errorKind(err error) string {
	switch {
	case manager.IsRuntimeError(err):
		return "runtime"
	case manager.IsPathNotFound(err), manager.IsBadRequest(err),
		images.IsNotFound(err), images.IsIndexOutOfRange(err):
		return "business"
	default:
		return "runtime"
	}
}
