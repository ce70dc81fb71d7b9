package canvas

// RoomSnapshot is the persisted shape of one room: code, sparse pixels keyed
// "x,y", and the last MaxMessages chat entries. Occupants are never included.
type RoomSnapshot struct {
	Code     string           `json:"code"`
	Pixels   map[Coord]string `json:"pixels"`
	Messages []Message        `json:"messages"`
}

// Snapshot maps room code to its persisted state.
type Snapshot map[string]RoomSnapshot

// Registry is the single owner of all room state. It is not safe for
// concurrent use; the reactor loop is its only caller.
type Registry struct {
	rooms       map[string]*Room
	defaultRoom string
	dirty       bool
}

// NewRegistry creates a registry seeded with the permanent default room.
func NewRegistry(defaultRoom string) *Registry {
	reg := &Registry{
		rooms:       make(map[string]*Room),
		defaultRoom: defaultRoom,
	}
	reg.rooms[defaultRoom] = NewRoom(defaultRoom)
	return reg
}

// Get returns the room or nil.
func (reg *Registry) Get(code string) *Room {
	return reg.rooms[code]
}

// GetOrCreate returns the existing room or creates an empty one. Creation
// needs no prior registration.
func (reg *Registry) GetOrCreate(code string) *Room {
	rm := reg.rooms[code]
	if rm == nil {
		rm = NewRoom(code)
		reg.rooms[code] = rm
		reg.dirty = true
	}
	return rm
}

// DeleteIfEmpty removes a non-default room with no occupants. It is a no-op
// for the default room and for occupied or unknown rooms.
func (reg *Registry) DeleteIfEmpty(code string) {
	if code == reg.defaultRoom {
		return
	}
	rm := reg.rooms[code]
	if rm == nil || len(rm.Users) > 0 {
		return
	}
	delete(reg.rooms, code)
	reg.dirty = true
}

// DefaultRoom returns the code of the permanent room.
func (reg *Registry) DefaultRoom() string {
	return reg.defaultRoom
}

// MarkDirty flags unsaved mutations for the persistence gateway.
func (reg *Registry) MarkDirty() {
	reg.dirty = true
}

// Dirty reports unsaved mutations without resetting the flag.
func (reg *Registry) Dirty() bool {
	return reg.dirty
}

// ConsumeDirty reports and resets the dirty flag.
func (reg *Registry) ConsumeDirty() bool {
	d := reg.dirty
	reg.dirty = false
	return d
}

// Count returns the number of live rooms.
func (reg *Registry) Count() int {
	return len(reg.rooms)
}

// Rooms returns every live room (unordered).
func (reg *Registry) Rooms() []*Room {
	out := make([]*Room, 0, len(reg.rooms))
	for _, rm := range reg.rooms {
		out = append(out, rm)
	}
	return out
}

// Export deep-copies all rooms into a snapshot safe to hand to a background
// writer. Message history is capped at MaxMessages per room.
func (reg *Registry) Export() Snapshot {
	snap := make(Snapshot, len(reg.rooms))
	for code, rm := range reg.rooms {
		pixels := make(map[Coord]string, len(rm.Pixels))
		for c, color := range rm.Pixels {
			pixels[c] = color
		}
		msgs := rm.Messages
		if len(msgs) > MaxMessages {
			msgs = msgs[len(msgs)-MaxMessages:]
		}
		snap[code] = RoomSnapshot{
			Code:     code,
			Pixels:   pixels,
			Messages: append([]Message(nil), msgs...),
		}
	}
	return snap
}

// Import merges a loaded snapshot into the registry. Occupant sets start
// empty; occupancy is a live property, never restored from disk.
func (reg *Registry) Import(snap Snapshot) {
	for code, rs := range snap {
		rm := NewRoom(code)
		if rs.Pixels != nil {
			rm.Pixels = rs.Pixels
		}
		rm.Messages = rs.Messages
		reg.rooms[code] = rm
	}
	// Loading must not clobber the default room guarantee.
	if reg.rooms[reg.defaultRoom] == nil {
		reg.rooms[reg.defaultRoom] = NewRoom(reg.defaultRoom)
	}
}
