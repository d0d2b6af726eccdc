package session

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/brsiege/r6-roulette-backend/internal/catalog"
	"github.com/brsiege/r6-roulette-backend/internal/clock"
	"github.com/brsiege/r6-roulette-backend/internal/engine"
	"github.com/brsiege/r6-roulette-backend/internal/random"
	"github.com/brsiege/r6-roulette-backend/internal/types"
)

// Config tunes the session. Zero values fall back to the defaults the web
// client was written against (30s cooldown, 1s ticks).
type Config struct {
	AppPassword     string
	AdminPassword   string
	CooldownSeconds int
	TickInterval    time.Duration
}

type countdown struct {
	id   uint64
	stop chan struct{}
}

type player struct {
	id            string
	nickname      string
	addr          string
	wantsShields  bool
	bans          map[engine.Category]string // "" means no ban
	cooldownUntil map[engine.Category]time.Time
	timers        map[engine.Category]*countdown
}

// Session owns every piece of shared state: connected players, the
// selection board, the per-category used sets, pending swap offers, the
// admin group and the two policy flags. A single goroutine (loop) is the
// only writer, so each inbound message is a run-to-completion reaction and
// no cross-structure invariant can be observed half-applied.
type Session struct {
	cfg     Config
	catalog *catalog.Catalog
	clock   clock.Clock
	rng     random.Random
	log     *zap.Logger

	inbox   chan Msg
	clients map[string]chan types.ServerMessage
	addrs   map[string]string // connection id -> origin address, set at Join

	players    map[string]*player
	selections map[string]*engine.Selection
	used       map[engine.Category]map[string]bool
	offers     map[string]string // target id -> offerer id
	admins     map[string]bool

	ipLockEnabled   bool
	cooldownEnabled bool

	nextTimer uint64

	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, cfg Config, cat *catalog.Catalog, clk clock.Clock, rng random.Random, log *zap.Logger) *Session {
	if cfg.CooldownSeconds == 0 {
		cfg.CooldownSeconds = 30
	}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = time.Second
	}

	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		cfg:        cfg,
		catalog:    cat,
		clock:      clk,
		rng:        rng,
		log:        log,
		inbox:      make(chan Msg, 64),
		clients:    make(map[string]chan types.ServerMessage),
		addrs:      make(map[string]string),
		players:    make(map[string]*player),
		selections: make(map[string]*engine.Selection),
		used: map[engine.Category]map[string]bool{
			engine.CategoryAttack:  {},
			engine.CategoryDefense: {},
		},
		offers:          make(map[string]string),
		admins:          make(map[string]bool),
		ipLockEnabled:   true,
		cooldownEnabled: true,
		ctx:             ctx,
		cancel:          cancel,
	}

	go s.loop()
	return s
}

// Inbox is where the transport layer (and tests) push messages.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				s.clients[msg.ClientID] = msg.Outbox
				s.addrs[msg.ClientID] = msg.Addr

			case Leave:
				s.teardown(msg.ClientID)

			case Login:
				s.handleLogin(msg)

			case Draw:
				s.handleDraw(msg)

			case SetBan:
				if p := s.players[msg.ClientID]; p != nil {
					ban := ""
					if msg.Operator != nil {
						ban = *msg.Operator
					}
					p.bans[msg.Category] = ban
					s.log.Info("ban updated",
						zap.String("nickname", p.nickname),
						zap.String("category", string(msg.Category)),
						zap.String("operator", ban))
				}

			case SetShields:
				if p := s.players[msg.ClientID]; p != nil {
					p.wantsShields = msg.Wants
				}

			case OfferSwap:
				s.handleOfferSwap(msg)

			case AcceptSwap:
				s.handleAcceptSwap(msg)

			case DeclineSwap:
				s.handleDeclineSwap(msg)

			case AdminLogin:
				s.handleAdminLogin(msg)

			case AdminSetIPLock:
				if !s.admins[msg.ClientID] {
					break
				}
				s.ipLockEnabled = msg.Enabled
				s.log.Info("ip lock toggled", zap.Bool("enabled", msg.Enabled))
				enabled := msg.Enabled
				s.adminBroadcast(types.ServerMessage{Type: types.EvtIPLockStateChanged, IPLock: &enabled})

			case AdminSetCooldown:
				if !s.admins[msg.ClientID] {
					break
				}
				s.cooldownEnabled = msg.Enabled
				s.log.Info("cooldown enforcement toggled", zap.Bool("enabled", msg.Enabled))
				enabled := msg.Enabled
				s.adminBroadcast(types.ServerMessage{Type: types.EvtCooldownStateChanged, Cooldown: &enabled})
				if !msg.Enabled {
					s.resetAllCooldowns()
				}

			case AdminResetAllCooldowns:
				if !s.admins[msg.ClientID] {
					break
				}
				s.log.Info("all cooldowns reset by admin")
				s.resetAllCooldowns()

			case AdminResetCooldown:
				if !s.admins[msg.ClientID] {
					break
				}
				if p := s.players[msg.PlayerID]; p != nil {
					s.resetCooldowns(p)
					s.log.Info("cooldown reset by admin", zap.String("nickname", p.nickname))
				}

			case Kick:
				if !s.admins[msg.ClientID] {
					break
				}
				if _, ok := s.clients[msg.PlayerID]; ok {
					s.sendTo(msg.PlayerID, types.ServerMessage{Type: types.EvtKicked})
					s.log.Info("player kicked", zap.String("id", msg.PlayerID))
					s.teardown(msg.PlayerID)
				}

			case countdownTick:
				s.handleCountdownTick(msg)

			case GetState:
				msg.Reply <- s.view()

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) handleLogin(m Login) {
	addr := s.addrs[m.ClientID]

	if s.ipLockEnabled {
		for _, p := range s.players {
			if p.addr == addr {
				s.sendTo(m.ClientID, types.ServerMessage{Type: types.EvtLoginFail, Reason: "This IP address is already connected!"})
				return
			}
		}
	}
	if subtle.ConstantTimeCompare([]byte(m.Password), []byte(s.cfg.AppPassword)) != 1 {
		s.sendTo(m.ClientID, types.ServerMessage{Type: types.EvtLoginFail, Reason: "Incorrect password!"})
		return
	}
	for _, p := range s.players {
		if p.nickname == m.Nickname {
			s.sendTo(m.ClientID, types.ServerMessage{Type: types.EvtLoginFail, Reason: "This nickname is already in use!"})
			return
		}
	}

	s.players[m.ClientID] = &player{
		id:            m.ClientID,
		nickname:      m.Nickname,
		addr:          addr,
		wantsShields:  true,
		bans:          make(map[engine.Category]string),
		cooldownUntil: make(map[engine.Category]time.Time),
		timers:        make(map[engine.Category]*countdown),
	}

	s.sendTo(m.ClientID, types.ServerMessage{
		Type:       types.EvtLoginSuccess,
		Selections: s.boardSnapshot(),
		Attackers:  s.catalog.Attackers,
		Defenders:  s.catalog.Defenders,
	})
	s.log.Info("player logged in", zap.String("nickname", m.Nickname), zap.String("addr", addr))
	s.pushRoster()
}

func (s *Session) handleDraw(m Draw) {
	p := s.players[m.ClientID]
	if p == nil {
		return
	}
	if m.Category != engine.CategoryAttack && m.Category != engine.CategoryDefense {
		return
	}

	cooldown := time.Duration(s.cfg.CooldownSeconds) * time.Second
	if s.cooldownEnabled && s.clock.Now().Before(p.cooldownUntil[m.Category].Add(cooldown)) {
		return
	}

	list := s.catalog.Attackers
	if m.Category == engine.CategoryDefense {
		list = s.catalog.Defenders
	}
	eligible := engine.Eligible(list, engine.Filter{
		Used:         s.used[m.Category],
		Ban:          p.bans[m.Category],
		WantsShields: p.wantsShields,
		Shielded:     s.catalog.ShieldedSet(),
	})
	op, ok := engine.Pick(eligible, s.rng)
	if !ok {
		return
	}

	s.clearSwapOffersInvolving(m.ClientID)
	if old := s.selections[m.ClientID]; old != nil {
		delete(s.used[old.Category], old.Operator)
	}
	s.used[m.Category][op] = true
	p.cooldownUntil[m.Category] = s.clock.Now()
	s.selections[m.ClientID] = &engine.Selection{Operator: op, Category: m.Category, Nickname: p.nickname}

	s.log.Info("operator drawn",
		zap.String("nickname", p.nickname),
		zap.String("category", string(m.Category)),
		zap.String("operator", op))

	s.broadcastBoard()
	if s.cooldownEnabled {
		s.startCountdown(p, m.Category)
	}
	s.pushRoster()
}

func (s *Session) handleOfferSwap(m OfferSwap) {
	offerer := s.players[m.ClientID]
	target := s.players[m.TargetID]
	offererSel := s.selections[m.ClientID]
	targetSel := s.selections[m.TargetID]
	if offerer == nil || target == nil || offererSel == nil || targetSel == nil {
		s.sendTo(m.ClientID, types.ServerMessage{
			Type:    types.EvtActionFailed,
			Message: "Invalid swap. Both players need a drawn operator.",
		})
		return
	}

	s.clearSwapOffersInvolving(m.ClientID)
	s.clearSwapOffersInvolving(m.TargetID)
	s.offers[m.TargetID] = m.ClientID

	s.sendTo(m.TargetID, types.ServerMessage{
		Type: types.EvtSwapOfferReceived,
		Offer: &types.SwapOffer{
			OffererID:        m.ClientID,
			OffererNickname:  offerer.nickname,
			OffererSelection: *offererSel,
			TargetSelection:  *targetSel,
		},
	})
}

func (s *Session) handleAcceptSwap(m AcceptSwap) {
	if s.offers[m.ClientID] != m.OffererID {
		return
	}
	sel1 := s.selections[m.OffererID]
	sel2 := s.selections[m.ClientID]
	if sel1 == nil || sel2 == nil {
		return
	}

	// Exchange the payloads in place; the owning seat keeps its nickname.
	// Deliberately no ban/shield/used-set re-check: an accepted swap can
	// hand a player an operator their own filters would have excluded.
	sel1.Operator, sel2.Operator = sel2.Operator, sel1.Operator
	sel1.Category, sel2.Category = sel2.Category, sel1.Category

	delete(s.offers, m.ClientID)
	s.broadcastBoard()
}

func (s *Session) handleDeclineSwap(m DeclineSwap) {
	p := s.players[m.ClientID]
	if p == nil {
		return
	}
	if s.offers[m.ClientID] == m.OffererID {
		delete(s.offers, m.ClientID)
	}
	// The offerer is told even when no matching offer was pending.
	s.sendTo(m.OffererID, types.ServerMessage{
		Type:    types.EvtActionFailed,
		Message: fmt.Sprintf("Your swap offer was declined by %s.", p.nickname),
	})
}

func (s *Session) handleAdminLogin(m AdminLogin) {
	if subtle.ConstantTimeCompare([]byte(m.Password), []byte(s.cfg.AdminPassword)) != 1 {
		s.sendTo(m.ClientID, types.ServerMessage{Type: types.EvtAdminLoginFail, Reason: "Incorrect admin password!"})
		return
	}
	s.admins[m.ClientID] = true
	ipLock, cd := s.ipLockEnabled, s.cooldownEnabled
	s.sendTo(m.ClientID, types.ServerMessage{
		Type:     types.EvtAdminLoginSuccess,
		IPLock:   &ipLock,
		Cooldown: &cd,
	})
	s.log.Info("admin logged in", zap.String("id", m.ClientID))
	s.pushRoster()
}

// clearSwapOffersInvolving removes every pending offer the given player is
// part of. When the player was the target, the waiting offerer is told the
// offer is gone; offers the player made are dropped silently.
func (s *Session) clearSwapOffersInvolving(id string) {
	if offererID, ok := s.offers[id]; ok {
		s.sendTo(offererID, types.ServerMessage{
			Type:    types.EvtActionFailed,
			Message: "The swap offer was cancelled.",
		})
		delete(s.offers, id)
	}
	for targetID, offererID := range s.offers {
		if offererID == id {
			delete(s.offers, targetID)
		}
	}
}

func (s *Session) startCountdown(p *player, cat engine.Category) {
	s.stopCountdown(p, cat)

	s.nextTimer++
	cd := &countdown{id: s.nextTimer, stop: make(chan struct{})}
	p.timers[cat] = cd

	secs := s.cfg.CooldownSeconds
	s.sendTo(p.id, types.ServerMessage{Type: types.EvtCooldownTick, Category: cat, SecondsLeft: secs})

	go s.runCountdown(p.id, cat, cd, secs)
}

// runCountdown is the only session code outside the actor goroutine. It
// never touches state: it just feeds tick messages back through the inbox.
func (s *Session) runCountdown(clientID string, cat engine.Category, cd *countdown, secs int) {
	t := time.NewTicker(s.cfg.TickInterval)
	defer t.Stop()

	for left := secs - 1; left >= 0; left-- {
		select {
		case <-cd.stop:
			return
		case <-s.ctx.Done():
			return
		case <-t.C:
		}
		select {
		case s.inbox <- countdownTick{ClientID: clientID, Category: cat, Timer: cd.id, SecondsLeft: left}:
		case <-cd.stop:
			return
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Session) handleCountdownTick(m countdownTick) {
	p := s.players[m.ClientID]
	if p == nil {
		return
	}
	cd := p.timers[m.Category]
	if cd == nil || cd.id != m.Timer {
		// A tick from a countdown that was superseded while in flight.
		return
	}
	if m.SecondsLeft > 0 {
		s.sendTo(m.ClientID, types.ServerMessage{Type: types.EvtCooldownTick, Category: m.Category, SecondsLeft: m.SecondsLeft})
		return
	}
	delete(p.timers, m.Category)
	s.sendTo(m.ClientID, types.ServerMessage{Type: types.EvtCooldownEnded, Category: m.Category})
}

func (s *Session) stopCountdown(p *player, cat engine.Category) {
	if cd := p.timers[cat]; cd != nil {
		close(cd.stop)
		delete(p.timers, cat)
	}
}

func (s *Session) resetCooldowns(p *player) {
	s.stopCountdown(p, engine.CategoryAttack)
	s.stopCountdown(p, engine.CategoryDefense)
	p.cooldownUntil = make(map[engine.Category]time.Time)
	s.sendTo(p.id, types.ServerMessage{Type: types.EvtCooldownReset})
}

func (s *Session) resetAllCooldowns() {
	for _, p := range s.players {
		s.resetCooldowns(p)
	}
}

// teardown releases everything a connection held. It runs for transport
// disconnects, kicks and slow-client drops, and is idempotent: a connection
// already removed is a no-op.
func (s *Session) teardown(id string) {
	if ch, ok := s.clients[id]; ok {
		close(ch)
		delete(s.clients, id)
	}
	delete(s.addrs, id)
	delete(s.admins, id)

	p, ok := s.players[id]
	if !ok {
		return
	}

	s.stopCountdown(p, engine.CategoryAttack)
	s.stopCountdown(p, engine.CategoryDefense)
	s.clearSwapOffersInvolving(id)
	if sel := s.selections[id]; sel != nil {
		delete(s.used[sel.Category], sel.Operator)
	}
	delete(s.players, id)
	delete(s.selections, id)

	s.log.Info("player disconnected", zap.String("nickname", p.nickname))
	s.broadcastBoard()
	s.pushRoster()
}

func (s *Session) shutdown() {
	for id, ch := range s.clients {
		close(ch)
		delete(s.clients, id)
	}
	s.cancel()
}

func (s *Session) boardSnapshot() map[string]engine.Selection {
	snap := make(map[string]engine.Selection, len(s.selections))
	for id, sel := range s.selections {
		snap[id] = *sel
	}
	return snap
}

func (s *Session) broadcastBoard() {
	s.broadcast(types.ServerMessage{Type: types.EvtUpdateAllSelections, Selections: s.boardSnapshot()})
}

func (s *Session) pushRoster() {
	roster := make([]types.PlayerInfo, 0, len(s.players))
	for _, p := range s.players {
		roster = append(roster, types.PlayerInfo{ID: p.id, Nickname: p.nickname, IP: p.addr})
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].Nickname < roster[j].Nickname })
	s.adminBroadcast(types.ServerMessage{Type: types.EvtUpdateUserList, Players: roster})
}

func (s *Session) adminBroadcast(msg types.ServerMessage) {
	for id := range s.admins {
		s.sendTo(id, msg)
	}
}

func (s *Session) broadcast(msg types.ServerMessage) {
	var doomed []string
	for id, ch := range s.clients {
		select {
		case ch <- msg:
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(s.clients, id)
			doomed = append(doomed, id)
		}
	}
	for _, id := range doomed {
		s.teardown(id)
	}
}

func (s *Session) sendTo(id string, msg types.ServerMessage) {
	ch, ok := s.clients[id]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		close(ch)
		delete(s.clients, id)
		s.teardown(id)
	}
}

func (s *Session) view() View {
	v := View{
		NumClients:      len(s.clients),
		Players:         make(map[string]PlayerView, len(s.players)),
		Selections:      s.boardSnapshot(),
		UsedAttackers:   make(map[string]bool, len(s.used[engine.CategoryAttack])),
		UsedDefenders:   make(map[string]bool, len(s.used[engine.CategoryDefense])),
		Offers:          make(map[string]string, len(s.offers)),
		Admins:          make(map[string]bool, len(s.admins)),
		IPLockEnabled:   s.ipLockEnabled,
		CooldownEnabled: s.cooldownEnabled,
	}
	for op := range s.used[engine.CategoryAttack] {
		v.UsedAttackers[op] = true
	}
	for op := range s.used[engine.CategoryDefense] {
		v.UsedDefenders[op] = true
	}
	for t, o := range s.offers {
		v.Offers[t] = o
	}
	for id := range s.admins {
		v.Admins[id] = true
	}
	for id, p := range s.players {
		pv := PlayerView{
			Nickname:      p.nickname,
			Addr:          p.addr,
			WantsShields:  p.wantsShields,
			Bans:          make(map[engine.Category]string, len(p.bans)),
			CooldownUntil: make(map[engine.Category]time.Time, len(p.cooldownUntil)),
			RunningTimers: make(map[engine.Category]bool, len(p.timers)),
		}
		for c, b := range p.bans {
			pv.Bans[c] = b
		}
		for c, u := range p.cooldownUntil {
			pv.CooldownUntil[c] = u
		}
		for c := range p.timers {
			pv.RunningTimers[c] = true
		}
		v.Players[id] = pv
	}
	return v
}
