package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"log/slog"

	"github.com/YekSoft-Technology/pikselliyo/internal/app"
	"github.com/YekSoft-Technology/pikselliyo/internal/canvas"
	"github.com/YekSoft-Technology/pikselliyo/internal/store"
	"github.com/YekSoft-Technology/pikselliyo/pkg/metrics"
)

// banGrace is the delay between the ban notice and the forced disconnect.
const banGrace = 500 * time.Millisecond

// flushDelay debounces on-mutation snapshots.
const flushDelay = 2 * time.Second

// Internal event names; never valid on the wire.
const (
	evConnect    = "_connect"
	evDisconnect = "_disconnect"
	evBanClose   = "_ban-close"
	evInspect    = "_inspect"
)

type event struct {
	sess  *Session
	name  string
	data  json.RawMessage
	reply chan []RoomInfo
}

// RoomInfo is the read-only room summary served to the admin HTTP API.
type RoomInfo struct {
	Code     string `json:"code"`
	Users    int    `json:"users"`
	Pixels   int    `json:"pixels"`
	Messages int    `json:"messages"`
}

// Hub is the reactor: one goroutine (Run) owns the room registry, the
// moderation state, and every session binding. Connection pumps only post
// events in and drain per-session outbound channels, so no state mutation
// ever interleaves with another.
type Hub struct {
	log *slog.Logger
	cfg app.Config
	reg *canvas.Registry
	mod *canvas.Moderation
	db  store.SnapshotStore

	events chan event
	saveQ  chan canvas.Snapshot

	sessions map[uuid.UUID]*Session
	byRoom   map[string]map[string]*Session // room code -> username -> session

	flushArmed bool
	flush      *time.Timer

	done chan struct{} // closed once Run has finished its final snapshot
}

// NewHub sets up the hub with its snapshot store + logger.
func NewHub(logger *slog.Logger, cfg app.Config, db store.SnapshotStore) *Hub {
	admins := make(map[string]string, len(cfg.Admins))
	for _, a := range cfg.Admins {
		admins[a.Username] = a.Secret
	}
	h := &Hub{
		log:      logger,
		cfg:      cfg,
		reg:      canvas.NewRegistry(cfg.DefaultRoom),
		mod:      canvas.NewModeration(admins),
		db:       db,
		events:   make(chan event, 1024),
		saveQ:    make(chan canvas.Snapshot, 1),
		sessions: make(map[uuid.UUID]*Session),
		byRoom:   make(map[string]map[string]*Session),
		done:     make(chan struct{}),
	}
	h.flush = time.NewTimer(flushDelay)
	if !h.flush.Stop() {
		<-h.flush.C
	}
	return h
}

// Restore loads the persisted snapshot into the registry. Must be called
// before Run starts.
func (h *Hub) Restore(ctx context.Context) error {
	snap, err := h.db.Load(ctx)
	if err != nil {
		return err
	}
	h.reg.Import(snap)
	h.log.Info("snapshot.loaded", "rooms", len(snap))
	return nil
}

// Moderation exposes the credential verifier for the HTTP admin login. Only
// the immutable credential table may be read this way.
func (h *Hub) Moderation() *canvas.Moderation { return h.mod }

// Done is closed once Run has returned, final snapshot included. Callers
// shutting the process down wait on it so the write is not cut short.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Run processes events until ctx is cancelled, then writes a final
// snapshot and closes every session.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	go h.saver(ctx)

	ticker := time.NewTicker(h.cfg.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-h.events:
			h.handle(ev)
			h.armFlush()
		case <-ticker.C:
			h.snapshotIfDirty()
		case <-h.flush.C:
			h.flushArmed = false
			h.snapshotIfDirty()
		case <-ctx.Done():
			h.shutdown()
			return
		}
	}
}

// handle runs exactly one event to completion.
func (h *Hub) handle(ev event) {
	switch ev.name {
	case evConnect:
		h.handleConnect(ev.sess)
	case evDisconnect:
		h.handleDisconnect(ev.sess)
	case evBanClose:
		ev.sess.ForceClose()
	case evInspect:
		ev.reply <- h.roomInfos()
	case EvJoinRoom:
		metrics.EventsTotal.WithLabelValues(ev.name).Inc()
		h.handleJoin(ev.sess, ev.data)
	case EvPlacePixel:
		metrics.EventsTotal.WithLabelValues(ev.name).Inc()
		h.handlePixel(ev.sess, ev.data)
	case EvSendMessage:
		metrics.EventsTotal.WithLabelValues(ev.name).Inc()
		h.handleMessage(ev.sess, ev.data)
	case EvVoiceOffer, EvVoiceAnswer, EvVoiceICE:
		metrics.EventsTotal.WithLabelValues(ev.name).Inc()
		h.handleVoice(ev.sess, ev.name, ev.data)
	case EvLeaveRoom:
		metrics.EventsTotal.WithLabelValues(ev.name).Inc()
		h.leave(ev.sess)
	default:
		// Unknown events are dropped, not answered.
		h.log.Debug("event.unknown", "name", ev.name)
	}
	metrics.Rooms.Set(float64(h.reg.Count()))
}

// armFlush schedules a debounced snapshot after a mutation.
func (h *Hub) armFlush() {
	if h.flushArmed || !h.reg.Dirty() {
		return
	}
	h.flush.Reset(flushDelay)
	h.flushArmed = true
}

// snapshotIfDirty exports a deep copy and hands it to the saver. The export
// happens inside the loop; the write happens outside it.
func (h *Hub) snapshotIfDirty() {
	if !h.reg.ConsumeDirty() {
		return
	}
	snap := h.reg.Export()
	select {
	case h.saveQ <- snap:
	default:
		// Saver is busy; keep the state dirty and retry on the next tick.
		h.reg.MarkDirty()
	}
}

// saver performs fire-and-forget snapshot writes off the reactor loop.
func (h *Hub) saver(ctx context.Context) {
	for {
		select {
		case snap := <-h.saveQ:
			if err := h.db.Save(ctx, snap); err != nil {
				metrics.SnapshotsTotal.WithLabelValues("error").Inc()
				h.log.Error("snapshot.save", "err", err)
				continue
			}
			metrics.SnapshotsTotal.WithLabelValues("ok").Inc()
		case <-ctx.Done():
			return
		}
	}
}

// shutdown writes a final snapshot and force-closes all sessions.
func (h *Hub) shutdown() {
	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.db.Save(saveCtx, h.reg.Export()); err != nil {
		h.log.Error("snapshot.final", "err", err)
	}
	for _, s := range h.sessions {
		s.ForceClose()
	}
	h.log.Info("hub.stopped", "sessions", len(h.sessions))
}

// Connect registers a new session for a connection from addr.
func (h *Hub) Connect(addr string) *Session {
	s := newSession(addr)
	h.events <- event{sess: s, name: evConnect}
	return s
}

// Dispatch decodes one inbound frame and posts it to the loop. Malformed
// frames are dropped.
func (h *Hub) Dispatch(s *Session, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
		h.log.Debug("event.malformed", "addr", s.Addr)
		return
	}
	h.events <- event{sess: s, name: env.Event, data: env.Data}
}

// Disconnect tears the session down; its room membership and any admin
// privilege of its username go with it.
func (h *Hub) Disconnect(s *Session) {
	h.events <- event{sess: s, name: evDisconnect}
}

// InspectRooms answers a synchronous room summary request through the loop.
func (h *Hub) InspectRooms(ctx context.Context) ([]RoomInfo, error) {
	reply := make(chan []RoomInfo, 1)
	select {
	case h.events <- event{name: evInspect, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case out := <-reply:
		return out, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Hub) roomInfos() []RoomInfo {
	rooms := h.reg.Rooms()
	out := make([]RoomInfo, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, RoomInfo{
			Code:     rm.Code,
			Users:    len(rm.Users),
			Pixels:   len(rm.Pixels),
			Messages: len(rm.Messages),
		})
	}
	return out
}

// ServeWS handles a new /ws connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	wsc, err := Accept(w, r)
	if err != nil {
		h.log.Error("ws.accept", "err", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sess := h.Connect(clientAddr(r))
	c := NewConn(wsc, sess)
	go c.WriteLoop(ctx)

	for {
		raw, ok := c.Read(ctx)
		if !ok {
			break
		}
		h.Dispatch(sess, raw)
	}

	h.Disconnect(sess)
	_ = c.Close()
}
