package uiinstruction

import "github.com/roboricindustries/raycon-display/pkg/schemas/common"

const (
	EventType = "ui.instruction.v1"
	Exchange  = "platform.events"
	Channel   = "/event/UIInstruction__e"
)

var UIInstructionMeta = common.EventMeta{
	EventType: EventType,
	Exchange:  Exchange,
	Topic:     Channel,
}
