package storage

import (
	"go.uber.org/zap"

	"github.com/palemoky/wudi/internal/protocol"
)

// Store 所有集合
type Store struct {
	Backend      Backend
	Users        *Table[User]
	Rooms        *Table[Room]
	RoomPlayers  *Table[RoomPlayer]
	Matches      *Table[MatchRecord]
	MatchPlayers *Table[MatchPlayer]
	Moves        *Table[MoveRecord]
}

// NewStore 在 backend 上创建所有集合
func NewStore(backend Backend, log *zap.Logger) *Store {
	return &Store{
		Backend:      backend,
		Users:        NewTable[User](backend, protocol.CollectionUsers, log),
		Rooms:        NewTable[Room](backend, protocol.CollectionRooms, log),
		RoomPlayers:  NewTable[RoomPlayer](backend, protocol.CollectionRoomPlayers, log),
		Matches:      NewTable[MatchRecord](backend, protocol.CollectionMatches, log),
		MatchPlayers: NewTable[MatchPlayer](backend, protocol.CollectionMatchPlayers, log),
		Moves:        NewTable[MoveRecord](backend, protocol.CollectionMoves, log),
	}
}

// Close 关闭底层存储
func (s *Store) Close() error {
	return s.Backend.Close()
}
