package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRaw(t *testing.T, raw string) (Inbound, error) {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	return Decode(&env)
}

func TestIDAcceptsStringAndNumber(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"42","b":7}`), &v))
	assert.Equal(t, ID(42), v.A)
	assert.Equal(t, ID(7), v.B)

	assert.Error(t, json.Unmarshal([]byte(`{"a":"abc"}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"a":-1}`), &v))
}

func TestDecodeJoinRoomForms(t *testing.T) {
	for _, raw := range []string{
		`{"event":"joinRoom","data":"5"}`,
		`{"event":"joinRoom","data":5}`,
		`{"event":"joinRoom","data":{"projectId":"5"}}`,
	} {
		ev, err := decodeRaw(t, raw)
		require.NoError(t, err, raw)
		join, ok := ev.(*JoinRoom)
		require.True(t, ok)
		assert.Equal(t, ID(5), join.ProjectID)
	}

	_, err := decodeRaw(t, `{"event":"joinRoom"}`)
	assert.Error(t, err)
	_, err = decodeRaw(t, `{"event":"leaveRoom","data":null}`)
	assert.Error(t, err)
}

func TestDecodeValidatesPayload(t *testing.T) {
	_, err := decodeRaw(t, `{"event":"sendMessage","data":{"projectId":"1"}}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message")

	_, err = decodeRaw(t, `{"event":"createTask","data":{"projectId":"1","title":"t","description":"d"}}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assignedTo")

	_, err = decodeRaw(t, `{"event":"updateTask","data":{"taskId":"3","newStatus":"archived"}}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newStatus")

	_, err = decodeRaw(t, `{"event":"deleteTask","data":{}}`)
	assert.Error(t, err)
}

func TestDecodeUpdateTaskKeepsUnsetFields(t *testing.T) {
	ev, err := decodeRaw(t, `{"event":"updateTask","data":{"taskId":3,"newStatus":"done","newAssignedTo":"9"}}`)
	require.NoError(t, err)

	upd := ev.(*UpdateTask)
	assert.Equal(t, ID(3), upd.TaskID)
	require.NotNil(t, upd.NewStatus)
	assert.Equal(t, "done", *upd.NewStatus)
	require.NotNil(t, upd.NewAssignedTo)
	assert.Equal(t, ID(9), *upd.NewAssignedTo)
	assert.Nil(t, upd.NewTitle)
	assert.Nil(t, upd.NewDescription)
}

func TestDecodeUnknownEvent(t *testing.T) {
	_, err := decodeRaw(t, `{"event":"dropTable","data":{}}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event")

	_, err = decodeRaw(t, `{"data":{}}`)
	assert.Error(t, err)
}

func TestEncodeEnvelope(t *testing.T) {
	frame, err := Encode(EventError, &ErrorPayload{Message: "nope", Code: 403})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"error","data":{"message":"nope","code":403}}`, string(frame))
}
