// Package helpers provides fixtures for the usersync integration tests.
package helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// UpstreamServer stubs the user directory and the credit card generator
type UpstreamServer struct {
	*httptest.Server

	mu                sync.Mutex
	users             int
	cards             int
	requestedQuantity []int
}

// NewUpstreamServer serves users with ids 1..users and at most cards cards per request
func NewUpstreamServer(users, cards int) *UpstreamServer {
	u := &UpstreamServer{users: users, cards: cards}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", u.serveUsers)
	mux.HandleFunc("GET /creditCards", u.serveCards)
	u.Server = httptest.NewServer(mux)
	return u
}

// SetUsers changes the size of the directory
func (u *UpstreamServer) SetUsers(n int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.users = n
}

// CardRequests returns the _quantity of every credit card request so far
func (u *UpstreamServer) CardRequests() []int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]int(nil), u.requestedQuantity...)
}

func (u *UpstreamServer) serveUsers(w http.ResponseWriter, _ *http.Request) {
	u.mu.Lock()
	n := u.users
	u.mu.Unlock()

	records := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, map[string]any{
			"id":       i,
			"name":     fmt.Sprintf("User %d", i),
			"username": fmt.Sprintf("user%d", i),
			"email":    fmt.Sprintf("user%d@example.com", i),
			"phone":    "1-770-736-8031",
			"website":  "example.org",
			"address": map[string]any{
				"street":  "Kulas Light",
				"suite":   fmt.Sprintf("Apt. %d", i),
				"city":    "Gwenborough",
				"zipcode": "92998-3874",
				"geo":     map[string]any{"lat": "-37.3159", "lng": "81.1496"},
			},
			"company": map[string]any{
				"name":        "Romaguera-Crona",
				"catchPhrase": "Multi-layered client-server neural-net",
				"bs":          "harness real-time e-markets",
			},
		})
	}
	writeJSON(w, records)
}

func (u *UpstreamServer) serveCards(w http.ResponseWriter, r *http.Request) {
	quantity, err := strconv.Atoi(r.URL.Query().Get("_quantity"))
	if err != nil {
		http.Error(w, "invalid _quantity", http.StatusBadRequest)
		return
	}

	u.mu.Lock()
	u.requestedQuantity = append(u.requestedQuantity, quantity)
	n := min(quantity, u.cards)
	u.mu.Unlock()

	cards := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		cards = append(cards, map[string]any{
			"type":       "Visa",
			"number":     fmt.Sprintf("4716%09d", i),
			"expiration": "03/27",
			"owner":      fmt.Sprintf("Owner %d", i),
		})
	}
	writeJSON(w, map[string]any{"status": "OK", "code": http.StatusOK, "total": n, "data": cards})
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
