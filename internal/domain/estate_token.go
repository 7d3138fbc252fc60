package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// TokenState is the lifecycle position of a token id at a point in time.
type TokenState string

const (
	TokenStateUnminted          TokenState = "UNMINTED"
	TokenStateMinted            TokenState = "MINTED"
	TokenStateDelisted          TokenState = "DELISTED"
	TokenStateBurnWindowExpired TokenState = "BURN_WINDOW_EXPIRED"
)

// EstateToken is the ledger record of one property's fractional units.
type EstateToken struct {
	ID                    uint64
	URI                   string
	IsListed              bool
	IsActivelyListed      bool
	BurnDeadline          time.Time
	DelistedAt            time.Time
	PenaltyPercentPerWeek uint64
	TotalSupply           uint64
}

// TokenInfoFieldCount is the length of the positional token projection.
const TokenInfoFieldCount = 5

// Clone returns a copy that can be mutated without touching the receiver.
func (t *EstateToken) Clone() *EstateToken {
	c := *t
	return &c
}

// State reports where the token is in its lifecycle at now.
func (t *EstateToken) State(now time.Time) TokenState {
	switch {
	case t == nil || !t.IsListed:
		return TokenStateUnminted
	case t.IsActivelyListed:
		return TokenStateMinted
	case now.After(t.BurnDeadline):
		return TokenStateBurnWindowExpired
	default:
		return TokenStateDelisted
	}
}

// CanBurnAt checks the burn window for the token, ignoring balances and callers.
func (t *EstateToken) CanBurnAt(now time.Time) error {
	if t.IsActivelyListed {
		return ErrBurnNotAllowed
	}
	if now.After(t.BurnDeadline) {
		return ErrBurnWindowClosed
	}
	return nil
}

// Info returns the positional token projection:
// isListed, isActivelyListed, burnDeadline (unix seconds), reserved (always 0),
// penaltyPercentPerWeek.
func (t *EstateToken) Info() []any {
	return []any{
		t.IsListed,
		t.IsActivelyListed,
		unixSeconds(t.BurnDeadline),
		uint64(0),
		t.PenaltyPercentPerWeek,
	}
}

func unixSeconds(ts time.Time) uint64 {
	if ts.IsZero() || ts.Unix() < 0 {
		return 0
	}
	return uint64(ts.Unix())
}

// Balance is one holder's quantity of a token id.
type Balance struct {
	Holder  common.Address
	TokenID uint64
	Amount  uint64
}

// TokenChange is a set of writes that a TokenRepository applies atomically.
// Balances carry absolute values, not deltas.
type TokenChange struct {
	Tokens   []*EstateToken
	Balances []Balance
}
