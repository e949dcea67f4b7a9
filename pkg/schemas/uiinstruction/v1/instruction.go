package uiinstruction

import (
	"encoding/json"

	"github.com/roboricindustries/raycon-display/pkg/schemas/common"
)

// Instruction is the platform event payload. Field names follow the
// platform's custom field naming so payloads can be forwarded verbatim.
type Instruction struct {
	Command    string  `json:"Command__c"`
	Parameters *string `json:"Parameters__c"`
	RecordID   *string `json:"RecordId__c"`
}

type EventData struct {
	Payload Instruction `json:"payload"`
}

// Message is the wire shape: {"meta":{...},"data":{"payload":{...}}}.
type Message = common.GenericEnvelope[EventData]

func UnmarshalMessage(data []byte) (Message, error) {
	var m Message
	err := json.Unmarshal(data, &m)
	return m, err
}

// NewMessage builds a message for publishing. Empty params/recordID are sent
// as null.
func NewMessage(command, params, recordID string) Message {
	in := Instruction{Command: command}
	if params != "" {
		in.Parameters = &params
	}
	if recordID != "" {
		in.RecordID = &recordID
	}
	return common.NewEnvelope(UIInstructionMeta.EventType, EventData{Payload: in})
}

// ParamsString returns the raw parameters or "" when null.
func (i Instruction) ParamsString() string {
	if i.Parameters == nil {
		return ""
	}
	return *i.Parameters
}

// Record returns the record id or "" when null.
func (i Instruction) Record() string {
	if i.RecordID == nil {
		return ""
	}
	return *i.RecordID
}
