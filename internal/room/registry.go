// Package room holds the single room's live state: the participant registry
// and the router that forwards signaling frames between participants.
package room

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/relaycall/signaling/internal/models"
)

// Participant is one registered connection. Records are owned by the
// Registry: created on authenticated upgrade, destroyed on disconnect.
type Participant struct {
	ID       string
	Client   *Client
	JoinedAt time.Time
}

// Registry tracks the room's live participants. All mutation runs under one
// mutex; that single serialization point is what keeps welcome snapshots and
// join/leave announcements consistent with each other. Instances carry no
// package-level state, so servers and tests can run registries side by side.
type Registry struct {
	mu           sync.Mutex
	participants map[string]*Participant
}

func NewRegistry() *Registry {
	return &Registry{participants: make(map[string]*Participant)}
}

// Add registers a connection under a fresh id and performs the whole join in
// one critical section: the welcome frame carrying the membership snapshot is
// queued to the joiner before any other frame can reach it, and the
// user-joined announcement is queued to everyone already present. A joiner
// can therefore never see a join or leave for a peer its welcome omitted.
func (r *Registry) Add(c *Client) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New().String()
	users := make([]string, 0, len(r.participants))
	for pid := range r.participants {
		users = append(users, pid)
	}

	if frame := marshal(models.Welcome(id, users)); frame != nil {
		c.Enqueue(frame)
	}
	r.broadcastLocked(marshal(models.UserJoined(id)), "")

	r.participants[id] = &Participant{ID: id, Client: c, JoinedAt: time.Now()}
	return id
}

// Remove unregisters id and announces the departure to the remaining
// participants. Idempotent: removing an unknown or already-removed id is a
// no-op reporting false, so racing cleanup paths produce exactly one
// user-left announcement.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.participants[id]; !ok {
		return false
	}
	delete(r.participants, id)
	r.broadcastLocked(marshal(models.UserLeft(id)), "")
	return true
}

// Lookup resolves a participant id to its connection.
func (r *Registry) Lookup(id string) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[id]
	if !ok {
		return nil, false
	}
	return p.Client, true
}

// Count reports the current number of participants.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants)
}

// BroadcastExcept queues frame to every participant other than excludedID.
// Best effort: a peer with a full queue misses the frame, the rest still
// receive it.
func (r *Registry) BroadcastExcept(frame []byte, excludedID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastLocked(frame, excludedID)
}

func (r *Registry) broadcastLocked(frame []byte, excludedID string) {
	if frame == nil {
		return
	}
	for id, p := range r.participants {
		if id == excludedID {
			continue
		}
		if !p.Client.Enqueue(frame) {
			log.Printf("Dropping frame for %s, send queue full", shortID(id))
		}
	}
}

func marshal(v any) []byte {
	frame, err := json.Marshal(v)
	if err != nil {
		log.Printf("Failed to marshal frame: %v", err)
		return nil
	}
	return frame
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
