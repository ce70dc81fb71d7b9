package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/YekSoft-Technology/pikselliyo/internal/canvas"
	"github.com/YekSoft-Technology/pikselliyo/pkg/metrics"
)

// Reserved sender names for system and moderation notices.
const (
	systemUser = "SİSTEM"
	adminUser  = "ADMIN"
)

// unknownAddr labels a ban target whose origin address was never recorded.
const unknownAddr = "bilinmiyor"

func (h *Hub) handleConnect(s *Session) {
	h.sessions[s.ID] = s
	metrics.Sessions.Inc()
	h.log.Debug("session.connected", "id", s.ID, "addr", s.Addr)
}

func (h *Hub) handleDisconnect(s *Session) {
	if _, ok := h.sessions[s.ID]; !ok {
		return
	}
	if s.banTimer != nil {
		s.banTimer.Stop()
	}
	h.leave(s)
	delete(h.sessions, s.ID)
	metrics.Sessions.Dec()
	h.log.Debug("session.disconnected", "id", s.ID)
}

// handleJoin binds a session to a room after name, ban, and uniqueness
// checks. On success the joiner gets the full room snapshot and the rest of
// the room a user-joined notice.
func (h *Hub) handleJoin(s *Session, data json.RawMessage) {
	var p joinPayload
	_ = json.Unmarshal(data, &p)

	username := strings.TrimSpace(p.Username)
	if err := canvas.ValidateUsername(username); err != nil {
		h.reject(s, err)
		return
	}

	if err := h.mod.CheckJoin(username, s.Addr); err != nil {
		s.send(encode(EvBanned, bannedPayload{
			Message:  "Banlandınız!",
			Reason:   "banned",
			BannedAt: time.Now().UnixMilli(),
		}))
		s.ForceClose()
		return
	}

	roomCode := p.RoomCode
	if roomCode == "" {
		roomCode = h.reg.DefaultRoom()
	}

	room := h.reg.GetOrCreate(roomCode)
	if room.HasUser(username) {
		h.reject(s, canvas.ErrNameTaken)
		return
	}

	// A re-join moves the session; only a fully validated join releases the
	// previous binding, so a refused join leaves the session where it was.
	// Leaving can destroy the target room when the session was its sole
	// occupant, so re-fetch it afterwards.
	if s.Joined() {
		h.leave(s)
		room = h.reg.GetOrCreate(roomCode)
	}

	h.mod.RecordAddress(username, s.Addr)
	room.Users[username] = struct{}{}
	s.Username = username
	s.RoomCode = roomCode
	if h.byRoom[roomCode] == nil {
		h.byRoom[roomCode] = make(map[string]*Session)
	}
	h.byRoom[roomCode][username] = s

	s.send(encode(EvRoomJoined, roomJoinedPayload{RoomCode: roomCode}))
	h.broadcastOthers(roomCode, username, EvUserJoined, userPayload{Username: username})
	s.send(encode(EvRoomState, h.roomState(room, username)))

	h.log.Info("room.joined", "room", roomCode, "user", username)
}

func (h *Hub) roomState(room *canvas.Room, username string) roomStatePayload {
	pixels, _ := json.Marshal(room.Pixels)
	msgs := room.Messages
	if msgs == nil {
		msgs = []canvas.Message{}
	}
	messages, _ := json.Marshal(msgs)
	return roomStatePayload{
		Users:    room.UserList(),
		Pixels:   pixels,
		Messages: messages,
		IsAdmin:  h.mod.IsAdmin(username),
	}
}

// leave releases the session's room binding. Idempotent: a session that
// never joined, or already left, is a no-op.
func (h *Hub) leave(s *Session) {
	if !s.Joined() {
		return
	}
	username, roomCode := s.Username, s.RoomCode
	s.Username, s.RoomCode = "", ""

	if m := h.byRoom[roomCode]; m != nil {
		delete(m, username)
		if len(m) == 0 {
			delete(h.byRoom, roomCode)
		}
	}

	if room := h.reg.Get(roomCode); room != nil {
		delete(room.Users, username)
		h.broadcastOthers(roomCode, username, EvUserLeft, userPayload{Username: username})
	}

	// Admin privilege is per username and dies with the session.
	h.mod.Logout(username)
	h.reg.DeleteIfEmpty(roomCode)

	h.log.Info("room.left", "room", roomCode, "user", username)
}

// handlePixel applies a placement using the session's bound identity. The
// payload's username field is not trusted.
func (h *Hub) handlePixel(s *Session, data json.RawMessage) {
	var p pixelPayload
	_ = json.Unmarshal(data, &p)

	room, err := h.occupiedRoom(s, p.RoomCode)
	if err != nil {
		h.reject(s, err)
		return
	}
	if err := room.PlacePixel(s.Username, canvas.Coord{X: p.X, Y: p.Y}, p.Color); err != nil {
		h.reject(s, err)
		return
	}
	h.reg.MarkDirty()

	h.broadcast(s.RoomCode, EvPixelPlaced, pixelPlacedPayload{
		X: p.X, Y: p.Y, Color: p.Color, Username: s.Username,
	})
}

// handleMessage appends chat, or intercepts slash commands. Command text
// never reaches the chat history.
func (h *Hub) handleMessage(s *Session, data json.RawMessage) {
	var p messagePayload
	_ = json.Unmarshal(data, &p)

	room, err := h.occupiedRoom(s, p.RoomCode)
	if err != nil {
		h.reject(s, err)
		return
	}
	text := strings.TrimSpace(p.Message)
	if strings.HasPrefix(text, "/") {
		h.handleCommand(s, room, text)
		return
	}

	m, err := room.AppendMessage(s.Username, text, time.Now())
	if err != nil {
		h.reject(s, err)
		return
	}
	h.reg.MarkDirty()
	h.broadcast(s.RoomCode, EvChatMessage, chatMessagePayload{Username: m.Username, Message: m.Text})
}

// handleCommand dispatches sanitized admin commands. Login is verified
// against the stored bcrypt credential; every other keyword requires a
// currently authenticated admin username.
func (h *Hub) handleCommand(s *Session, room *canvas.Room, text string) {
	fields := strings.Fields(canvas.Sanitize(text))
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "/login":
		secret := ""
		if len(fields) > 1 {
			secret = fields[1]
		}
		if err := h.mod.Login(s.Username, secret); err != nil {
			h.sendSystem(s, "Hatalı şifre!")
			return
		}
		h.sendSystem(s, "Admin girişi başarılı!")
		s.send(encode(EvAdminStatus, adminStatusPayload{IsAdmin: true}))
		h.log.Info("admin.login", "user", s.Username)

	case "/ban":
		if !h.requireAdmin(s) {
			return
		}
		if len(fields) < 2 {
			h.sendSystem(s, "Kullanım: /ban <kullanıcı>")
			return
		}
		h.banUser(s, room, fields[1])

	case "/clear":
		if !h.requireAdmin(s) {
			return
		}
		room.ClearPixels()
		h.reg.MarkDirty()
		h.broadcast(room.Code, EvClearCanvas, nil)
		h.broadcast(room.Code, EvChatMessage, chatMessagePayload{Username: adminUser, Message: "Tuval temizlendi!"})
		h.snapshotIfDirty()
		h.log.Info("admin.clear", "room", room.Code, "user", s.Username)

	case "/logout":
		if !h.requireAdmin(s) {
			return
		}
		h.mod.Logout(s.Username)
		h.sendSystem(s, "Admin çıkışı yapıldı.")
		s.send(encode(EvAdminStatus, adminStatusPayload{IsAdmin: false}))
		h.log.Info("admin.logout", "user", s.Username)

	case "/help":
		if !h.requireAdmin(s) {
			return
		}
		h.sendSystem(s, "Komutlar: /login <şifre>, /ban <kullanıcı>, /clear, /logout, /help")

	default:
		h.sendSystem(s, "Bilinmeyen komut: "+fields[0])
	}
}

func (h *Hub) requireAdmin(s *Session) bool {
	if err := h.mod.RequireAdmin(s.Username); err != nil {
		h.reject(s, err)
		return false
	}
	return true
}

// occupiedRoom resolves the room a mutation targets. The session must be
// bound to exactly that room; the payload's room code alone proves nothing.
func (h *Hub) occupiedRoom(s *Session, roomCode string) (*canvas.Room, error) {
	if !s.Joined() || s.RoomCode != roomCode {
		return nil, canvas.ErrNotInRoom
	}
	room := h.reg.Get(s.RoomCode)
	if room == nil {
		return nil, canvas.ErrNotInRoom
	}
	return room, nil
}

// reject reports a refused event privately to its sender, translating the
// domain error into the user-facing notice. No state changes, no broadcast.
func (h *Hub) reject(s *Session, err error) {
	switch {
	case errors.Is(err, canvas.ErrUsernameTooShort):
		h.sendError(s, "Geçersiz kullanıcı adı!")
	case errors.Is(err, canvas.ErrNameTaken):
		h.sendError(s, "Bu kullanıcı adı zaten kullanılıyor!")
	case errors.Is(err, canvas.ErrBadCoordinates):
		h.sendError(s, "Geçersiz piksel koordinatı!")
	case errors.Is(err, canvas.ErrEmptyMessage):
		h.sendError(s, "Boş mesaj gönderilemez!")
	case errors.Is(err, canvas.ErrNotInRoom):
		h.sendError(s, "Bu odada değilsiniz!")
	case errors.Is(err, canvas.ErrNotAdmin):
		h.sendSystem(s, "Bu komutu kullanma yetkiniz yok!")
	default:
		h.sendError(s, "Geçersiz istek!")
	}
}

// banUser bans target by username and last-known address, notifies and
// disconnects every live session bound to that name, and announces the ban
// to the invoking room.
func (h *Hub) banUser(s *Session, room *canvas.Room, target string) {
	addr := h.mod.Ban(target)
	label := addr
	if label == "" {
		label = unknownAddr
	}
	bannedAt := time.Now().UnixMilli()

	for _, victim := range h.sessions {
		if victim.Username != target {
			continue
		}
		victim.send(encode(EvBanned, bannedPayload{
			Message:  "Banlandınız!",
			Reason:   "ban",
			Admin:    s.Username,
			BannedAt: bannedAt,
		}))
		h.leave(victim)
		// Grace delay so the notice delivers; a natural disconnect first
		// stops the timer and makes this a no-op.
		v := victim
		v.banTimer = time.AfterFunc(banGrace, func() {
			h.events <- event{sess: v, name: evBanClose}
		})
	}

	h.broadcast(room.Code, EvChatMessage, chatMessagePayload{
		Username: adminUser,
		Message:  fmt.Sprintf("%s banlandı! (IP: %s)", target, label),
	})
	h.log.Info("admin.ban", "target", target, "addr", label, "by", s.Username)
}

// handleVoice relays opaque peer negotiation payloads. Best-effort: an
// unbound sender or a missing target drops the frame silently.
func (h *Hub) handleVoice(s *Session, name string, data json.RawMessage) {
	var p voicePayload
	_ = json.Unmarshal(data, &p)

	if !s.Joined() || s.RoomCode != p.RoomCode {
		return
	}
	target := h.byRoom[p.RoomCode][p.TargetUser]
	if target == nil {
		return
	}
	target.send(encode(name, voiceRelayPayload{FromUser: s.Username, Payload: p.Payload}))
}

// broadcast delivers an event to every occupant of a room, sender included.
func (h *Hub) broadcast(roomCode, name string, v any) {
	frame := encode(name, v)
	for _, sess := range h.byRoom[roomCode] {
		sess.send(frame)
	}
	metrics.BroadcastsTotal.WithLabelValues(name).Inc()
}

// broadcastOthers delivers an event to every occupant except one username.
func (h *Hub) broadcastOthers(roomCode, except, name string, v any) {
	frame := encode(name, v)
	for username, sess := range h.byRoom[roomCode] {
		if username == except {
			continue
		}
		sess.send(frame)
	}
	metrics.BroadcastsTotal.WithLabelValues(name).Inc()
}

func (h *Hub) sendError(s *Session, msg string) {
	s.send(encode(EvError, errorPayload{Message: msg}))
}

func (h *Hub) sendSystem(s *Session, msg string) {
	s.send(encode(EvChatMessage, chatMessagePayload{Username: systemUser, Message: msg}))
}
