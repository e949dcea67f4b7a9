package common

type EventMeta struct {
	EventType string // e.g. "ui.instruction.v1"
	Exchange  string // e.g. "platform.events"
	Topic     string // e.g. "/event/UIInstruction__e"; used as the routing key
}
