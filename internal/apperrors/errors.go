package apperrors

import (
	"errors"

	"github.com/palemoky/wudi/internal/protocol"
)

// GameError 游戏错误（规则引擎、房间和会话共享）
type GameError struct {
	Code    int
	Reason  string // 稳定的机器可读原因，如 "illegal_beat"
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// Kind 返回错误原因
func (e *GameError) Kind() string {
	return e.Reason
}

func newError(code int, reason string) *GameError {
	return &GameError{Code: code, Reason: reason, Message: protocol.ErrorMessages[code]}
}

// 出牌相关
var (
	ErrInvalidShape                   = newError(protocol.ErrCodeInvalidShape, "invalid_shape")
	ErrIllegalBeat                    = newError(protocol.ErrCodeIllegalBeat, "illegal_beat")
	ErrWrongTurn                      = newError(protocol.ErrCodeWrongTurn, "wrong_turn")
	ErrMustLead                       = newError(protocol.ErrCodeMustLead, "must_lead")
	ErrOpeningLeadMissingRequiredCard = newError(protocol.ErrCodeOpeningLead, "opening_lead_missing_required_card")
	ErrWingSizeMismatch               = newError(protocol.ErrCodeWingSizeMismatch, "wing_size_mismatch")
	ErrMatchAlreadyTerminal           = newError(protocol.ErrCodeMatchTerminal, "match_already_terminal")
	ErrCardsNotInHand                 = newError(protocol.ErrCodeCardsNotInHand, "cards_not_in_hand")
	ErrSeatOutOfRange                 = newError(protocol.ErrCodeSeatOutOfRange, "seat_out_of_range")
	ErrMatchNotTerminal               = newError(protocol.ErrCodeMatchNotTerminal, "match_not_terminal")
	ErrInvalidDeal                    = newError(protocol.ErrCodeInvalidDeal, "invalid_deal")
	ErrMatchNotFound                  = newError(protocol.ErrCodeMatchNotFound, "match_not_found")
	ErrAutoPlayExhausted              = newError(protocol.ErrCodeAutoPlayExhausted, "auto_play_exhausted")
)

// 房间相关
var (
	ErrRoomNotFound  = newError(protocol.ErrCodeRoomNotFound, "room_not_found")
	ErrRoomFull      = newError(protocol.ErrCodeRoomFull, "room_full")
	ErrNotInRoom     = newError(protocol.ErrCodeNotInRoom, "not_in_room")
	ErrGameStarted   = newError(protocol.ErrCodeGameStarted, "game_started")
	ErrNotAllReady   = newError(protocol.ErrCodeNotAllReady, "not_all_ready")
	ErrUserNotFound  = newError(protocol.ErrCodeUserNotFound, "user_not_found")
	ErrWrongPassword = newError(protocol.ErrCodeWrongPassword, "wrong_password")
	ErrAlreadyInRoom = newError(protocol.ErrCodeAlreadyInRoom, "already_in_room")
)

// CodeOf 提取错误码，非 GameError 返回 ErrCodeUnknown
func CodeOf(err error) int {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return protocol.ErrCodeUnknown
}

// KindOf 提取错误原因，非 GameError 返回 "unknown"
func KindOf(err error) string {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Reason
	}
	return "unknown"
}
