package vm

type MessageType int

const (
	_ MessageType = iota
	MsgDebug
	MsgError
	MsgPort
	MsgHalt
	MsgInterrupt
	MsgClear
	MsgPause
)

func (mt MessageType) String() string {
	switch mt {
	case MsgDebug:
		return "Debug"
	case MsgError:
		return "Error"
	case MsgPort:
		return "Port"
	case MsgHalt:
		return "Halt"
	case MsgInterrupt:
		return "Interrupt"
	case MsgClear:
		return "Clear"
	case MsgPause:
		return "Pause"
	default:
		return "Unknown"
	}
}

type Message struct {
	Type    MessageType
	PC      uint16
	Message string
}

func NewMessage(mt MessageType, pc uint16, msg string) Message {
	return Message{
		Type:    mt,
		PC:      pc,
		Message: msg,
	}
}
