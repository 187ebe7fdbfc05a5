package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/wudi/internal/apperrors"
	"github.com/palemoky/wudi/internal/game/card"
	"github.com/palemoky/wudi/internal/game/settle"
	"github.com/palemoky/wudi/internal/testutil"
)

func newMatch(t *testing.T, pinned map[int]string) *Match {
	t.Helper()
	m, err := New("m1", testutil.Seats(), testutil.RiggedHands(pinned), DefaultOptions())
	require.NoError(t, err)
	return m
}

func cards(s string) []card.Card {
	return card.MustParseCards(s)
}

func TestNew(t *testing.T) {
	t.Parallel()

	m := newMatch(t, map[int]string{2: "3S"})
	assert.Equal(t, AwaitingLead, m.State())
	assert.Equal(t, 2, m.Turn(), "黑桃3的持有者先出")
	assert.Equal(t, 1, m.Multiplier())
	assert.Equal(t, [card.Seats]int{13, 13, 13, 13}, m.HandSizes())
	assert.Empty(t, m.Moves())

	_, ok := m.Lead()
	assert.False(t, ok)
	_, err := m.Settlement()
	assert.ErrorIs(t, err, apperrors.ErrMatchNotTerminal)
}

func TestNew_FirstSeatOverride(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.FirstSeat = 3
	m, err := New("m1", testutil.Seats(), testutil.RiggedHands(map[int]string{0: "3S"}), opts)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Turn())

	opts.FirstSeat = 4
	_, err = New("m1", testutil.Seats(), testutil.RiggedHands(nil), opts)
	assert.ErrorIs(t, err, apperrors.ErrSeatOutOfRange)
}

func TestNew_InvalidDeal(t *testing.T) {
	t.Parallel()

	hands := testutil.RiggedHands(nil)

	short := hands
	short[1] = short[1][:12]
	_, err := New("m1", testutil.Seats(), short, DefaultOptions())
	assert.ErrorIs(t, err, apperrors.ErrInvalidDeal)

	dup := hands
	dup[1] = append([]card.Card{hands[0][0]}, hands[1][1:]...)
	_, err = New("m1", testutil.Seats(), dup, DefaultOptions())
	assert.ErrorIs(t, err, apperrors.ErrInvalidDeal)
}

// 例3：P0 出牌轮到 P1；P1 过牌轮到 P2；最大的牌仍属于 P0
func TestPlayThenPass(t *testing.T) {
	t.Parallel()

	m := newMatch(t, map[int]string{0: "3S"})

	mv, err := m.Play(0, cards("3S"))
	require.NoError(t, err)
	assert.Equal(t, 0, mv.Seq)
	assert.Equal(t, 1, m.Turn())
	assert.Equal(t, AwaitingResponse, m.State())

	_, err = m.Pass(1)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Turn())

	lead, ok := m.Lead()
	require.True(t, ok)
	assert.Equal(t, 0, lead.Seat)
	assert.Equal(t, 12, len(m.Hand(0)))
	assert.Equal(t, [card.Seats]int{1, 0, 0, 0}, m.Plays())
}

func TestPass_LeadReturnsToOwner(t *testing.T) {
	t.Parallel()

	m := newMatch(t, map[int]string{0: "3S"})
	_, err := m.Play(0, cards("3S"))
	require.NoError(t, err)

	for seat := 1; seat <= 3; seat++ {
		_, err = m.Pass(seat)
		require.NoError(t, err)
	}

	assert.Equal(t, 0, m.Turn())
	assert.Equal(t, AwaitingLead, m.State())
	_, ok := m.Lead()
	assert.False(t, ok, "三家都过后重新自由出牌")

	_, err = m.Pass(0)
	assert.ErrorIs(t, err, apperrors.ErrMustLead)
}

func TestTurnRotation(t *testing.T) {
	t.Parallel()

	m := newMatch(t, map[int]string{3: "3S", 0: "4S", 1: "5S", 2: "6S"})

	steps := []struct {
		seat  int
		cards string // 空表示过
	}{
		{3, "3S"}, {0, "4S"}, {1, "5S"}, {2, ""}, {3, ""}, {0, ""},
	}
	for i, step := range steps {
		require.Equal(t, step.seat, m.Turn(), "第 %d 步", i)
		var err error
		if step.cards == "" {
			_, err = m.Pass(step.seat)
		} else {
			_, err = m.Play(step.seat, cards(step.cards))
		}
		require.NoError(t, err, "第 %d 步", i)
		assert.Equal(t, (step.seat+1)%card.Seats, m.Turn())
	}
	assert.Equal(t, AwaitingLead, m.State())
	assert.Equal(t, 1, m.Turn(), "最后出牌的人重新获得牌权")
}

func TestRejectedActionsDoNotMutate(t *testing.T) {
	t.Parallel()

	m := newMatch(t, map[int]string{0: "3S 4S 9S", 1: "5S 3C"})
	_, err := m.Play(0, cards("4S"))
	require.ErrorIs(t, err, apperrors.ErrOpeningLeadMissingRequiredCard)

	_, err = m.Play(0, cards("9S"))
	require.ErrorIs(t, err, apperrors.ErrOpeningLeadMissingRequiredCard)

	_, err = m.Play(0, cards("3S"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		act     func() error
		wantErr error
	}{
		{"不是自己的回合", func() error { _, err := m.Play(2, cards("5S")); return err }, apperrors.ErrWrongTurn},
		{"不是自己的回合不能过", func() error { _, err := m.Pass(3); return err }, apperrors.ErrWrongTurn},
		{"座位越界", func() error { _, err := m.Pass(7); return err }, apperrors.ErrSeatOutOfRange},
		{"手里没有这张牌", func() error { _, err := m.Play(1, cards("3S")); return err }, apperrors.ErrCardsNotInHand},
		{"重复的牌", func() error { _, err := m.Play(1, cards("5S 5S")); return err }, apperrors.ErrCardsNotInHand},
		{"空牌", func() error { _, err := m.Play(1, nil); return err }, apperrors.ErrInvalidShape},
	}

	for _, tt := range tests {
		before := m.Clone()
		err := tt.act()
		require.ErrorIs(t, err, tt.wantErr, tt.name)
		assert.Equal(t, before, m, tt.name)
	}

	// 压不过也不修改状态
	before := m.Clone()
	_, err = m.Play(1, cards("3C"))
	require.ErrorIs(t, err, apperrors.ErrIllegalBeat)
	assert.Equal(t, before, m)
}

func TestBombMultiplier(t *testing.T) {
	t.Parallel()

	m := newMatch(t, map[int]string{0: "3S", 1: "9S 9H 9D 9C", 2: "2H 2D"})

	_, err := m.Play(0, cards("3S"))
	require.NoError(t, err)
	_, err = m.Play(1, cards("9S 9H 9D 9C"))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Multiplier())

	_, err = m.Play(2, cards("2H 2D"))
	require.NoError(t, err)
	assert.Equal(t, 8, m.Multiplier())

	lead, ok := m.Lead()
	require.True(t, ok)
	assert.Equal(t, 2, lead.Seat)
	assert.Equal(t, "invincible_bomb", lead.TypeKey())
}

// 例4：无敌一打三，农民一张没出，春天再翻一倍
func TestInvincibleSpring(t *testing.T) {
	t.Parallel()

	m := newMatch(t, map[int]string{0: "3S 4S 5S 6S 7S 8S 9S TS JS QS KS 2H 2D"})
	require.Equal(t, settle.InvincibleMode, m.Teams().Mode)

	_, err := m.Play(0, cards("3S 4S 5S 6S 7S 8S 9S TS JS QS KS"))
	require.NoError(t, err)
	for seat := 1; seat <= 3; seat++ {
		_, err = m.Pass(seat)
		require.NoError(t, err)
	}
	_, err = m.Play(0, cards("2H 2D"))
	require.NoError(t, err)

	assert.True(t, m.IsTerminal())
	winner, ok := m.Winner()
	require.True(t, ok)
	assert.Equal(t, 0, winner)

	s, err := m.Settlement()
	require.NoError(t, err)
	assert.True(t, s.Spring)
	assert.Equal(t, 4, s.BombMultiplier)
	assert.Equal(t, 8, s.Multiplier)
	assert.Equal(t, [card.Seats]int{24, -8, -8, -8}, s.Deltas)

	// 结束后不接受任何操作
	_, err = m.Pass(1)
	assert.ErrorIs(t, err, apperrors.ErrMatchAlreadyTerminal)
	_, err = m.Play(0, nil)
	assert.ErrorIs(t, err, apperrors.ErrMatchAlreadyTerminal)
}

func TestTeamSpring(t *testing.T) {
	t.Parallel()

	m := newMatch(t, map[int]string{0: "3S 4S 5S 6S 7S 8S 9S TS JS QS KS AS 2H", 3: "2D"})
	require.Equal(t, settle.TeamMode, m.Teams().Mode)

	_, err := m.Play(0, cards("3S 4S 5S 6S 7S 8S 9S TS JS QS KS AS"))
	require.NoError(t, err)
	for seat := 1; seat <= 3; seat++ {
		_, err = m.Pass(seat)
		require.NoError(t, err)
	}
	_, err = m.Play(0, cards("2H"))
	require.NoError(t, err)

	s, err := m.Settlement()
	require.NoError(t, err)
	assert.True(t, s.Spring)
	assert.Equal(t, []int{0, 3}, s.Winners)
	assert.Equal(t, [card.Seats]int{2, -2, -2, 2}, s.Deltas)
}

func TestReplay(t *testing.T) {
	t.Parallel()

	hands := testutil.RiggedHands(map[int]string{0: "3S 4S 5S 6S 7S 8S 9S TS JS QS KS AS 2H", 3: "2D"})
	m, err := New("m1", testutil.Seats(), hands, DefaultOptions())
	require.NoError(t, err)

	_, err = m.Play(0, cards("3S 4S 5S 6S 7S 8S 9S TS JS QS KS AS"))
	require.NoError(t, err)
	_, err = m.Pass(1)
	require.NoError(t, err)

	replayed, err := Replay("m1", testutil.Seats(), hands, DefaultOptions(), m.Moves())
	require.NoError(t, err)
	assert.Equal(t, m, replayed)

	// 非法的记录无法重放
	bad := append(m.Moves(), Move{Seat: 3, Kind: MovePass})
	_, err = Replay("m1", testutil.Seats(), hands, DefaultOptions(), bad)
	assert.ErrorIs(t, err, apperrors.ErrWrongTurn)
}

func TestClone_Independent(t *testing.T) {
	t.Parallel()

	m := newMatch(t, map[int]string{0: "3S"})
	c := m.Clone()

	_, err := c.Play(0, cards("3S"))
	require.NoError(t, err)

	assert.Equal(t, 13, len(m.Hand(0)))
	assert.Empty(t, m.Moves())
	assert.Equal(t, AwaitingLead, m.State())
	assert.Equal(t, 12, len(c.Hand(0)))
}

func TestView(t *testing.T) {
	t.Parallel()

	m := newMatch(t, map[int]string{0: "3S"})
	v := m.View(0)
	assert.True(t, v.MyTurn())
	assert.False(t, v.CanPass())
	assert.True(t, v.OpeningLead)
	assert.Equal(t, -1, v.LeadSeat)
	assert.Equal(t, m.Hand(0), v.Hand)

	_, err := m.Play(0, cards("3S"))
	require.NoError(t, err)

	v = m.View(1)
	assert.True(t, v.CanPass())
	assert.False(t, v.OpeningLead)
	assert.Equal(t, 0, v.LeadSeat)
	assert.Equal(t, m.Hand(1), v.Hand)
	assert.Equal(t, [card.Seats]int{12, 13, 13, 13}, v.HandSizes)
	require.Len(t, v.Moves, 1)

	// 修改视图不影响牌局
	v.Hand[0] = card.Spade3
	v.Moves[0].Cards[0] = card.Heart2
	assert.NotEqual(t, v.Hand, m.Hand(1))
	assert.Equal(t, cards("3S"), m.Moves()[0].Cards)
}

func TestSeatOf(t *testing.T) {
	t.Parallel()

	m := newMatch(t, nil)
	seat, ok := m.SeatOf("p2")
	assert.True(t, ok)
	assert.Equal(t, 2, seat)
	_, ok = m.SeatOf("nobody")
	assert.False(t, ok)
}
