package ws

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brsiege/r6-roulette-backend/internal/engine"
	"github.com/brsiege/r6-roulette-backend/internal/session"
	"github.com/brsiege/r6-roulette-backend/internal/types"
)

// Handler upgrades the connection and bridges it to the session actor: a
// writer goroutine drains the per-client outbox, the reader loop turns wire
// payloads into session messages.
func Handler(s *session.Session, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		out := make(chan types.ServerMessage, 16)

		s.Inbox() <- session.Join{ClientID: clientID, Addr: clientAddr(r), Outbox: out}
		defer func() { s.Inbox() <- session.Leave{ClientID: clientID} }()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range out {
				payload, err := json.Marshal(msg)
				if err != nil {
					log.Warn("marshal failed", zap.Error(err))
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
			// Outbox closed: the session dropped us (kick or shutdown).
			// Closing the conn unblocks the reader loop below.
			conn.Close(websocket.StatusNormalClosure, "session closed")
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				// Leave is sent by the deferred call above.
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"actionFailed","message":"bad json"}`))
				continue
			}

			msg, ok := toSessionMsg(clientID, cm)
			if !ok {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"actionFailed","message":"unknown type"}`))
				continue
			}

			s.Inbox() <- msg
		}
	}
}

func toSessionMsg(clientID string, m types.ClientMessage) (session.Msg, bool) {
	switch m.Type {
	case types.MsgLoginAttempt:
		return session.Login{ClientID: clientID, Nickname: m.Nickname, Password: m.Password}, true
	case types.MsgGetOperator:
		cat, ok := engine.ParseCategory(m.Category)
		if !ok {
			return nil, false
		}
		return session.Draw{ClientID: clientID, Category: cat}, true
	case types.MsgUpdateBans:
		cat, ok := engine.ParseCategory(m.Category)
		if !ok {
			return nil, false
		}
		return session.SetBan{ClientID: clientID, Category: cat, Operator: m.OperatorName}, true
	case types.MsgToggleShieldOperators:
		return session.SetShields{ClientID: clientID, Wants: m.WantsShields}, true
	case types.MsgOfferSwap:
		return session.OfferSwap{ClientID: clientID, TargetID: m.TargetID}, true
	case types.MsgAcceptSwap:
		return session.AcceptSwap{ClientID: clientID, OffererID: m.OffererID}, true
	case types.MsgDeclineSwap:
		return session.DeclineSwap{ClientID: clientID, OffererID: m.OffererID}, true
	case types.MsgAdminLogin:
		return session.AdminLogin{ClientID: clientID, Password: m.Password}, true
	case types.MsgAdminToggleIpLock:
		return session.AdminSetIPLock{ClientID: clientID, Enabled: m.Enabled}, true
	case types.MsgAdminToggleCooldown:
		return session.AdminSetCooldown{ClientID: clientID, Enabled: m.Enabled}, true
	case types.MsgAdminResetAllCooldowns:
		return session.AdminResetAllCooldowns{ClientID: clientID}, true
	case types.MsgAdminResetUserCooldown:
		return session.AdminResetCooldown{ClientID: clientID, PlayerID: m.PlayerID}, true
	case types.MsgKickUser:
		return session.Kick{ClientID: clientID, PlayerID: m.PlayerID}, true
	default:
		return nil, false
	}
}

// clientAddr prefers the first X-Forwarded-For hop so the IP lock still
// works behind a reverse proxy.
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
