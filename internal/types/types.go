package types

import "github.com/brsiege/r6-roulette-backend/internal/engine"

// Client -> server message types. The vocabulary is the one the existing
// web client already speaks.
const (
	MsgLoginAttempt           = "loginAttempt"
	MsgGetOperator            = "getOperator"
	MsgUpdateBans             = "updateBans"
	MsgToggleShieldOperators  = "toggleShieldOperators"
	MsgOfferSwap              = "offerSwap"
	MsgAcceptSwap             = "acceptSwap"
	MsgDeclineSwap            = "declineSwap"
	MsgAdminLogin             = "adminLogin"
	MsgAdminToggleIpLock      = "adminToggleIpLock"
	MsgAdminToggleCooldown    = "adminToggleCooldown"
	MsgAdminResetAllCooldowns = "adminResetAllCooldowns"
	MsgAdminResetUserCooldown = "adminResetUserCooldown"
	MsgKickUser               = "kickUser"
)

// Server -> client event types.
const (
	EvtLoginSuccess         = "loginSuccess"
	EvtLoginFail            = "loginFail"
	EvtUpdateAllSelections  = "updateAllSelections"
	EvtCooldownTick         = "cooldownTick"
	EvtCooldownEnded        = "cooldownEnded"
	EvtCooldownReset        = "cooldownReset"
	EvtSwapOfferReceived    = "swapOfferReceived"
	EvtActionFailed         = "actionFailed"
	EvtAdminLoginSuccess    = "adminLoginSuccess"
	EvtAdminLoginFail       = "adminLoginFail"
	EvtIPLockStateChanged   = "ipLockStateChanged"
	EvtCooldownStateChanged = "cooldownStateChanged"
	EvtUpdateUserList       = "updateUserList"
	EvtKicked               = "kicked"
)

// ClientMessage is the single envelope for every inbound payload; which
// fields matter depends on Type.
type ClientMessage struct {
	Type         string  `json:"type"`
	Nickname     string  `json:"nickname,omitempty"`
	Password     string  `json:"password,omitempty"`
	Category     string  `json:"category,omitempty"`
	OperatorName *string `json:"operatorName,omitempty"` // nil clears the ban
	WantsShields bool    `json:"wantsShields,omitempty"`
	TargetID     string  `json:"targetId,omitempty"`
	OffererID    string  `json:"offererId,omitempty"`
	Enabled      bool    `json:"enabled,omitempty"`
	PlayerID     string  `json:"playerId,omitempty"`
}

// ServerMessage is the outbound envelope.
type ServerMessage struct {
	Type        string                      `json:"type"`
	Reason      string                      `json:"reason,omitempty"`
	Message     string                      `json:"message,omitempty"`
	Selections  map[string]engine.Selection `json:"selections,omitempty"`
	Attackers   []string                    `json:"allAttackers,omitempty"`
	Defenders   []string                    `json:"allDefenders,omitempty"`
	Category    engine.Category             `json:"category,omitempty"`
	SecondsLeft int                         `json:"seconds,omitempty"`
	Offer       *SwapOffer                  `json:"offer,omitempty"`
	IPLock      *bool                       `json:"ipLockEnabled,omitempty"`
	Cooldown    *bool                       `json:"cooldownEnabled,omitempty"`
	Players     []PlayerInfo                `json:"players,omitempty"`
}

// SwapOffer is what the target of a swap proposal sees: who is asking and
// what both sides currently hold.
type SwapOffer struct {
	OffererID        string           `json:"offererId"`
	OffererNickname  string           `json:"offererNickname"`
	OffererSelection engine.Selection `json:"offererOperator"`
	TargetSelection  engine.Selection `json:"targetOperator"`
}

// PlayerInfo is the admin roster row.
type PlayerInfo struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	IP       string `json:"ip"`
}
