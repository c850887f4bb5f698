package protocol

import "strconv"

// Command identifies the operation a request asks for. The set is closed:
// a code outside it is a protocol violation by the peer.
type Command uint16

const (
	CmdTestProtocol      Command = 0
	CmdReadImage         Command = 1
	CmdLoadModel         Command = 2
	CmdRunModel          Command = 3
	CmdModelInfo         Command = 4
	CmdModelStats        Command = 5
	CmdRunModelWithStats Command = 6
)

// Valid reports whether c is one of the known command codes.
func (c Command) Valid() bool {
	return c <= CmdRunModelWithStats
}

func (c Command) String() string {
	switch c {
	case CmdTestProtocol:
		return "test_protocol"
	case CmdReadImage:
		return "read_image"
	case CmdLoadModel:
		return "load_model"
	case CmdRunModel:
		return "run_model"
	case CmdModelInfo:
		return "model_info"
	case CmdModelStats:
		return "model_stats"
	case CmdRunModelWithStats:
		return "run_model_with_stats"
	default:
		return "unknown(" + strconv.Itoa(int(c)) + ")"
	}
}

// Status is the outcome code carried by a response.
type Status uint16

const (
	StatusOK    Status = 0
	StatusError Status = 1
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	default:
		return "status(" + strconv.Itoa(int(s)) + ")"
	}
}
