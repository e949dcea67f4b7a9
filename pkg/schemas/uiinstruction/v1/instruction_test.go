package uiinstruction

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMessageWireShape(t *testing.T) {
	m := NewMessage("showAccountInfo", "", "001A")
	require.NotEmpty(t, m.Meta.ID)
	require.Equal(t, EventType, m.Meta.Type)

	b, err := json.Marshal(m)
	require.NoError(t, err)

	var wire struct {
		Data struct {
			Payload map[string]any `json:"payload"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(b, &wire))
	require.Equal(t, "showAccountInfo", wire.Data.Payload["Command__c"])
	require.Equal(t, "001A", wire.Data.Payload["RecordId__c"])
	require.Contains(t, wire.Data.Payload, "Parameters__c")
	require.Nil(t, wire.Data.Payload["Parameters__c"])
}

func TestUnmarshalMessage(t *testing.T) {
	m, err := UnmarshalMessage([]byte(`{"data":{"payload":{"Command__c":"setMaxDisplayCount","Parameters__c":"{\"count\":2}","RecordId__c":null}}}`))
	require.NoError(t, err)
	require.Equal(t, "setMaxDisplayCount", m.Data.Payload.Command)
	require.Equal(t, `{"count":2}`, m.Data.Payload.ParamsString())
	require.Equal(t, "", m.Data.Payload.Record())
	require.NoError(t, Validate(m))
}

func TestValidate(t *testing.T) {
	m := NewMessage("", "", "")
	m.Meta.Type = "deals.dispatched.v1"
	err := Validate(m)
	require.ErrorIs(t, err, ErrInvalidInstruction)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Issues, 2)
}
