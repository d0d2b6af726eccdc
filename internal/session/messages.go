package session

import (
	"time"

	"github.com/brsiege/r6-roulette-backend/internal/engine"
	"github.com/brsiege/r6-roulette-backend/internal/types"
)

// Msg is anything the session actor will process from its inbox. Every
// mutation of shared state travels through one of these, so the loop in
// session.go is the only writer.
type Msg interface{ isSessionMsg() }

// Join registers a connection (pre-login) so it can receive events.
type Join struct {
	ClientID string
	Addr     string
	Outbox   chan types.ServerMessage
}

// Leave is the transport-level disconnect.
type Leave struct{ ClientID string }

// Login is a player's attempt to claim a nickname with the shared secret.
type Login struct {
	ClientID string
	Nickname string
	Password string
}

// Draw asks for a fresh random operator in one category.
type Draw struct {
	ClientID string
	Category engine.Category
}

// SetBan stores the player's personal ban for a category. A nil operator
// clears it. The name is stored as-is; it is matched case-insensitively
// during eligibility filtering and never validated against the catalog.
type SetBan struct {
	ClientID string
	Category engine.Category
	Operator *string
}

// SetShields toggles whether shield operators are in the player's pool.
type SetShields struct {
	ClientID string
	Wants    bool
}

// OfferSwap proposes exchanging current assignments with another player.
type OfferSwap struct {
	ClientID string
	TargetID string
}

// AcceptSwap accepts a pending offer from OffererID.
type AcceptSwap struct {
	ClientID  string
	OffererID string
}

// DeclineSwap declines a pending offer from OffererID.
type DeclineSwap struct {
	ClientID  string
	OffererID string
}

// AdminLogin grants admin-group membership on the right password.
type AdminLogin struct {
	ClientID string
	Password string
}

type AdminSetIPLock struct {
	ClientID string
	Enabled  bool
}

type AdminSetCooldown struct {
	ClientID string
	Enabled  bool
}

type AdminResetAllCooldowns struct{ ClientID string }

type AdminResetCooldown struct {
	ClientID string
	PlayerID string
}

type Kick struct {
	ClientID string
	PlayerID string
}

type Shutdown struct{}

// GetState is a test-only probe that reflects internal state without races.
type GetState struct{ Reply chan View }

// countdownTick is fed back into the inbox by a countdown goroutine. Timer
// identifies the countdown generation so ticks from a superseded countdown
// are discarded.
type countdownTick struct {
	ClientID    string
	Category    engine.Category
	Timer       uint64
	SecondsLeft int
}

func (Join) isSessionMsg()                   {}
func (Leave) isSessionMsg()                  {}
func (Login) isSessionMsg()                  {}
func (Draw) isSessionMsg()                   {}
func (SetBan) isSessionMsg()                 {}
func (SetShields) isSessionMsg()             {}
func (OfferSwap) isSessionMsg()              {}
func (AcceptSwap) isSessionMsg()             {}
func (DeclineSwap) isSessionMsg()            {}
func (AdminLogin) isSessionMsg()             {}
func (AdminSetIPLock) isSessionMsg()         {}
func (AdminSetCooldown) isSessionMsg()       {}
func (AdminResetAllCooldowns) isSessionMsg() {}
func (AdminResetCooldown) isSessionMsg()     {}
func (Kick) isSessionMsg()                   {}
func (Shutdown) isSessionMsg()               {}
func (GetState) isSessionMsg()               {}
func (countdownTick) isSessionMsg()          {}

// View is a copy of the session's state for assertions in tests.
type View struct {
	NumClients      int
	Players         map[string]PlayerView
	Selections      map[string]engine.Selection
	UsedAttackers   map[string]bool
	UsedDefenders   map[string]bool
	Offers          map[string]string // target -> offerer
	Admins          map[string]bool
	IPLockEnabled   bool
	CooldownEnabled bool
}

type PlayerView struct {
	Nickname      string
	Addr          string
	WantsShields  bool
	Bans          map[engine.Category]string
	CooldownUntil map[engine.Category]time.Time
	RunningTimers map[engine.Category]bool
}
