package convert

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/palemoky/wudi/internal/protocol"
)

func TestEventStructRoundTrip(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 12, 30, 0, 123000000, time.UTC)
	e := protocol.ChangeEvent{
		Op:         protocol.OpUpdate,
		Collection: protocol.CollectionMatchPlayers,
		ID:         "gp-1",
		Record:     json.RawMessage(`{"game_id":"g1","cards_count":12,"is_invincible":false,"hand_cards":[{"suit":"spades","rank":"3"}]}`),
		At:         at,
	}

	s, err := EventToStruct(e)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01T12:30:00.123Z", s.Fields["at"].GetStringValue())

	got, err := StructToEvent(s)
	require.NoError(t, err)
	assert.Equal(t, e.Op, got.Op)
	assert.Equal(t, e.Collection, got.Collection)
	assert.Equal(t, e.ID, got.ID)
	assert.True(t, at.Equal(got.At))
	assert.JSONEq(t, string(e.Record), string(got.Record))
}

func TestEventToStruct_Delete(t *testing.T) {
	t.Parallel()

	s, err := EventToStruct(protocol.ChangeEvent{Op: protocol.OpDelete, Collection: "rooms", ID: "r1"})
	require.NoError(t, err)
	_, hasRecord := s.Fields["record"]
	assert.False(t, hasRecord)

	got, err := StructToEvent(s)
	require.NoError(t, err)
	assert.Empty(t, got.Record)
}

func TestEventConversion_Invalid(t *testing.T) {
	t.Parallel()

	_, err := EventToStruct(protocol.ChangeEvent{Op: protocol.OpInsert, Record: json.RawMessage(`{not json`)})
	assert.Error(t, err)

	_, err = StructToEvent(&structpb.Struct{Fields: map[string]*structpb.Value{
		"op": structpb.NewStringValue("UPSERT"),
	}})
	assert.Error(t, err)
}
