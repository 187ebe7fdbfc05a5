package protocol

// 错误码
const (
	ErrCodeUnknown    = 1000
	ErrCodeInvalidMsg = 1001

	// 房间
	ErrCodeRoomNotFound  = 2001
	ErrCodeRoomFull      = 2002
	ErrCodeNotInRoom     = 2003
	ErrCodeGameStarted   = 2004 // 游戏已开始
	ErrCodeNotAllReady   = 2005
	ErrCodeUserNotFound  = 2006
	ErrCodeWrongPassword = 2007
	ErrCodeAlreadyInRoom = 2008

	// 出牌
	ErrCodeInvalidShape      = 3001
	ErrCodeIllegalBeat       = 3002
	ErrCodeWrongTurn         = 3003
	ErrCodeMustLead          = 3004
	ErrCodeOpeningLead       = 3005 // 首出必须带黑桃3
	ErrCodeWingSizeMismatch  = 3006 // 三带一只能最后四张
	ErrCodeMatchTerminal     = 3007
	ErrCodeCardsNotInHand    = 3008
	ErrCodeSeatOutOfRange    = 3009
	ErrCodeMatchNotTerminal  = 3010
	ErrCodeInvalidDeal       = 3011
	ErrCodeMatchNotFound     = 3012
	ErrCodeStorageFailure    = 5001
	ErrCodeAutoPlayExhausted = 5002
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "未知错误",
	ErrCodeInvalidMsg:        "无效的消息格式",
	ErrCodeRoomNotFound:      "房间不存在",
	ErrCodeRoomFull:          "房间已满",
	ErrCodeNotInRoom:         "您不在房间中",
	ErrCodeGameStarted:       "游戏已开始",
	ErrCodeNotAllReady:       "需要4名玩家全部准备",
	ErrCodeUserNotFound:      "用户不存在",
	ErrCodeWrongPassword:     "房间密码错误",
	ErrCodeAlreadyInRoom:     "您已经在房间中",
	ErrCodeInvalidShape:      "无效的牌型",
	ErrCodeIllegalBeat:       "您的牌大不过上家",
	ErrCodeWrongTurn:         "还没轮到您",
	ErrCodeMustLead:          "您必须出牌",
	ErrCodeOpeningLead:       "第一手牌必须包含黑桃3",
	ErrCodeWingSizeMismatch:  "三带一只能在最后四张时出",
	ErrCodeMatchTerminal:     "本局已结束",
	ErrCodeCardsNotInHand:    "您没有这些牌",
	ErrCodeSeatOutOfRange:    "座位号无效",
	ErrCodeMatchNotTerminal:  "本局尚未结束",
	ErrCodeInvalidDeal:       "发牌数据无效",
	ErrCodeMatchNotFound:     "对局不存在",
	ErrCodeStorageFailure:    "存储失败",
	ErrCodeAutoPlayExhausted: "托管步数超过上限",
}
