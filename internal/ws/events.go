package ws

import "encoding/json"

// Inbound event names.
const (
	EvJoinRoom    = "join-room"
	EvPlacePixel  = "place-pixel"
	EvSendMessage = "send-message"
	EvVoiceOffer  = "voice-offer"
	EvVoiceAnswer = "voice-answer"
	EvVoiceICE    = "voice-ice-candidate"
	EvLeaveRoom   = "leave-room"
)

// Outbound event names.
const (
	EvRoomJoined  = "roomJoined"
	EvRoomState   = "roomState"
	EvUserJoined  = "user-joined"
	EvUserLeft    = "user-left"
	EvPixelPlaced = "pixel-placed"
	EvChatMessage = "chat-message"
	EvAdminStatus = "admin-status"
	EvBanned      = "banned"
	EvError       = "error"
	EvClearCanvas = "clear-canvas"
)

// Envelope is the wire frame: {"event": "...", "data": {...}}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound payloads.

type joinPayload struct {
	RoomCode string `json:"roomCode"`
	Username string `json:"username"`
}

type pixelPayload struct {
	RoomCode string `json:"roomCode"`
	Username string `json:"username"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Color    string `json:"color"`
}

type messagePayload struct {
	RoomCode string `json:"roomCode"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

type voicePayload struct {
	RoomCode   string          `json:"roomCode"`
	FromUser   string          `json:"fromUser"`
	TargetUser string          `json:"targetUser"`
	Payload    json.RawMessage `json:"payload"`
}

// Outbound payloads.

type roomJoinedPayload struct {
	RoomCode string `json:"roomCode"`
}

type roomStatePayload struct {
	Users    []string        `json:"users"`
	Pixels   json.RawMessage `json:"pixels"`
	Messages json.RawMessage `json:"messages"`
	IsAdmin  bool            `json:"isAdmin"`
}

type userPayload struct {
	Username string `json:"username"`
}

type pixelPlacedPayload struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Color    string `json:"color"`
	Username string `json:"username"`
}

type chatMessagePayload struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

type adminStatusPayload struct {
	IsAdmin bool `json:"isAdmin"`
}

type bannedPayload struct {
	Message  string `json:"message"`
	Reason   string `json:"reason"`
	Admin    string `json:"admin,omitempty"`
	BannedAt int64  `json:"bannedAt"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type voiceRelayPayload struct {
	FromUser string          `json:"fromUser"`
	Payload  json.RawMessage `json:"payload"`
}

// encode builds a wire frame. Payload marshaling of our own types cannot
// fail; a nil v yields an event with no data field.
func encode(event string, v any) []byte {
	env := Envelope{Event: event}
	if v != nil {
		env.Data, _ = json.Marshal(v)
	}
	raw, _ := json.Marshal(env)
	return raw
}
