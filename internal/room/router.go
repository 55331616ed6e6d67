package room

import (
	"encoding/json"
	"log"

	"github.com/relaycall/signaling/internal/models"
)

// Router forwards point-to-point frames between registered participants. It
// reads only the type and target fields; session descriptions, candidates
// and chat payloads pass through untouched.
type Router struct {
	registry *Registry
}

func NewRouter(registry *Registry) *Router {
	return &Router{registry: registry}
}

// Route stamps the authenticated sender onto the frame and queues it to the
// target. Whatever "from" value the sender supplied is overwritten. A
// missing or already-departed target drops the frame silently: peers
// legitimately disconnect mid-handshake and the sender has no use for an
// error.
func (rt *Router) Route(senderID string, raw []byte) {
	var frame map[string]json.RawMessage
	if err := json.Unmarshal(raw, &frame); err != nil {
		log.Printf("Dropping malformed frame from %s: %v", shortID(senderID), err)
		return
	}

	var kind models.SignalType
	if rawType, ok := frame["type"]; !ok || json.Unmarshal(rawType, &kind) != nil {
		log.Printf("Dropping untyped frame from %s", shortID(senderID))
		return
	}
	if !models.Routable(kind) {
		log.Printf("Dropping frame with unroutable type %q from %s", kind, shortID(senderID))
		return
	}

	var target string
	if rawTarget, ok := frame["target"]; ok {
		if err := json.Unmarshal(rawTarget, &target); err != nil {
			log.Printf("Dropping %s frame with bad target from %s: %v", kind, shortID(senderID), err)
			return
		}
	}
	if target == "" {
		log.Printf("Dropping %s frame without target from %s", kind, shortID(senderID))
		return
	}

	client, ok := rt.registry.Lookup(target)
	if !ok {
		// Target already left; expected churn, not an error.
		return
	}

	from, _ := json.Marshal(senderID)
	frame["from"] = from
	forwarded, err := json.Marshal(frame)
	if err != nil {
		log.Printf("Failed to marshal frame: %v", err)
		return
	}
	if !client.Enqueue(forwarded) {
		log.Printf("Dropping %s frame for %s, send queue full", kind, shortID(target))
	}
}
