package gateway

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rizkyyjun/sportmate/internal/apperr"
)

func TestParseEnvelope_KnownTypes(t *testing.T) {
	roomID := uuid.New()
	raw := []byte(`{"type":"join_room","data":{"room_id":"` + roomID.String() + `"}}`)

	env, err := ParseEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, ClientEventJoinRoom, env.Type)

	var payload RoomPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, roomID, payload.RoomID)
}

func TestParseEnvelope_Rejects(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"malformed json", `{"type":`},
		{"unknown type", `{"type":"shout","data":{}}`},
		{"missing type", `{"data":{}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseEnvelope([]byte(tc.raw))
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}
