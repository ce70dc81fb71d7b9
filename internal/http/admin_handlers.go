package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/YekSoft-Technology/pikselliyo/internal/ws"
	"github.com/YekSoft-Technology/pikselliyo/pkg/auth"
)

// AdminAPI serves the out-of-band admin surface: credential login for a
// token, and read-only room summaries answered by the hub loop.
type AdminAPI struct {
	Hub *ws.Hub
	JWT *auth.JWT
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type tokenResp struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Login verifies an admin credential and returns a JWT
func (a *AdminAPI) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	// Check credentials against the same bcrypt table the in-room /login uses
	if err := a.Hub.Moderation().VerifySecret(req.Username, req.Password); err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	// Issue token for 24hrs
	tok, _ := a.JWT.Sign(req.Username, 24*time.Hour)
	writeJSON(w, tokenResp{Token: tok, Username: req.Username})
}

// Rooms returns occupancy and canvas summaries for every live room
func (a *AdminAPI) Rooms(w http.ResponseWriter, r *http.Request) {
	infos, err := a.Hub.InspectRooms(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, infos)
}

// Me returns the authenticated admin's name
func (a *AdminAPI) Me(w http.ResponseWriter, r *http.Request) {
	name := auth.AdminName(r.Context())
	if name == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, map[string]string{"username": name})
}

// send JSON with proper headers
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
