package models

// SignalType represents the type of a signaling frame.
type SignalType string

const (
	// Server-originated room membership events.
	SignalTypeWelcome    SignalType = "welcome"
	SignalTypeUserJoined SignalType = "user-joined"
	SignalTypeUserLeft   SignalType = "user-left"

	// Point-to-point kinds relayed between peers.
	SignalTypeOffer        SignalType = "offer"
	SignalTypeAnswer       SignalType = "answer"
	SignalTypeICECandidate SignalType = "ice-candidate"
	SignalTypeChat         SignalType = "chat"
)

// Routable reports whether a type tag names a point-to-point kind the router
// may forward. Everything a client sends that is not on this list is dropped.
func Routable(t SignalType) bool {
	switch t {
	case SignalTypeOffer, SignalTypeAnswer, SignalTypeICECandidate, SignalTypeChat:
		return true
	}
	return false
}

// WelcomeEvent goes to a joining client only: its assigned id plus the ids
// already in the room at the instant it registered. Users is always a
// non-nil slice so it encodes as [] rather than null for the first joiner.
type WelcomeEvent struct {
	Type  SignalType `json:"type"`
	ID    string     `json:"id"`
	Users []string   `json:"users"`
}

// MembershipEvent announces a join or leave to the rest of the room.
type MembershipEvent struct {
	Type SignalType `json:"type"`
	ID   string     `json:"id"`
}

func Welcome(id string, users []string) WelcomeEvent {
	if users == nil {
		users = []string{}
	}
	return WelcomeEvent{Type: SignalTypeWelcome, ID: id, Users: users}
}

func UserJoined(id string) MembershipEvent {
	return MembershipEvent{Type: SignalTypeUserJoined, ID: id}
}

func UserLeft(id string) MembershipEvent {
	return MembershipEvent{Type: SignalTypeUserLeft, ID: id}
}

// Envelope is the decode-side view of any signaling frame: just the fields
// the server ever needs to read. Payloads (sdp, candidate, chat text) stay
// opaque and are relayed as raw JSON.
type Envelope struct {
	Type   SignalType `json:"type"`
	ID     string     `json:"id"`
	Users  []string   `json:"users"`
	From   string     `json:"from"`
	Target string     `json:"target"`
}
