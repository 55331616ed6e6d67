// Package turncred mints time-limited TURN credentials compatible with
// coturn's use-auth-secret mode:
//
//	username   = <unix_expiry_timestamp>:<label>
//	credential = base64(hmac_sha1(shared_secret, username))
//
// The relay server re-derives the credential from the same shared secret, so
// nothing is stored on either side and the embedded timestamp is the only
// expiry mechanism.
package turncred

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pion/webrtc/v4"
)

// Public STUN servers, free to use; enables direct peer-to-peer when the
// network allows it. TURN is only the fallback.
var stunURLs = []string{
	"stun:stun.l.google.com:19302",
	"stun:stun1.l.google.com:19302",
}

type Config struct {
	SharedSecret string
	TTLSeconds   int64
	Label        string
	Now          func() time.Time
}

type Minter struct {
	secret []byte
	ttl    int64
	label  string
	now    func() time.Time
}

func New(cfg Config) (*Minter, error) {
	if cfg.SharedSecret == "" {
		return nil, errors.New("shared secret is required")
	}
	if cfg.TTLSeconds <= 0 {
		return nil, errors.New("TTLSeconds must be > 0")
	}
	if cfg.Label == "" {
		return nil, errors.New("label is required")
	}
	if strings.Contains(cfg.Label, ":") {
		return nil, errors.New("label must not contain ':'")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Minter{
		secret: []byte(cfg.SharedSecret),
		ttl:    cfg.TTLSeconds,
		label:  cfg.Label,
		now:    cfg.Now,
	}, nil
}

type Credential struct {
	Username   string
	Credential string
	ExpiresAt  int64
}

// Mint produces a fresh credential expiring TTL seconds from now. Pure apart
// from the clock: two calls within the same second yield identical output.
func (m *Minter) Mint() Credential {
	expiry := m.now().UTC().Unix() + m.ttl
	username := fmt.Sprintf("%d:%s", expiry, m.label)
	mac := hmac.New(sha1.New, m.secret)
	mac.Write([]byte(username))
	return Credential{
		Username:   username,
		Credential: base64.StdEncoding.EncodeToString(mac.Sum(nil)),
		ExpiresAt:  expiry,
	}
}

// ICEServers builds the server list handed to browser RTCPeerConnection
// constructors: the public STUN pair plus a TURN entry for the given relay,
// carrying a freshly minted username/credential. TCP transport on both the
// turns: and turn: URLs so the relay traffic passes networks that only let
// HTTPS-shaped flows through.
func (m *Minter) ICEServers(domain, port string) []webrtc.ICEServer {
	cred := m.Mint()
	return []webrtc.ICEServer{
		{URLs: stunURLs},
		{
			URLs: []string{
				fmt.Sprintf("turns:%s:%s?transport=tcp", domain, port),
				fmt.Sprintf("turn:%s:%s?transport=tcp", domain, port),
			},
			Username:   cred.Username,
			Credential: cred.Credential,
		},
	}
}
