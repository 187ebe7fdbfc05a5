package protocol

import (
	"encoding/json"
	"time"
)

// Op 记录变更的类型
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// Valid 是否是已知的变更类型
func (o Op) Valid() bool {
	switch o {
	case OpInsert, OpUpdate, OpDelete:
		return true
	}
	return false
}

// 集合名称
const (
	CollectionUsers        = "users"
	CollectionRooms        = "rooms"
	CollectionRoomPlayers  = "room_players"
	CollectionMatches      = "games"
	CollectionMatchPlayers = "game_players"
	CollectionMoves        = "game_moves"
)

// ChangeEvent 一条记录变更通知。投递至少一次，订阅者需要能处理重复
type ChangeEvent struct {
	Op         Op              `json:"op"`
	Collection string          `json:"collection"`
	ID         string          `json:"id"`
	Record     json.RawMessage `json:"record,omitempty"` // 变更后的记录，删除时为删除前的记录
	At         time.Time       `json:"at"`
}

// Field 读取记录中的某个顶层字段，用于按字段过滤订阅
func (e ChangeEvent) Field(name string) (any, bool) {
	if len(e.Record) == 0 {
		return nil, false
	}
	var fields map[string]any
	if err := json.Unmarshal(e.Record, &fields); err != nil {
		return nil, false
	}
	v, ok := fields[name]
	return v, ok
}
