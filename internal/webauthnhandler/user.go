package webauthnhandler

import (
	"crypto/rand"
	"fmt"

	"github.com/go-webauthn/webauthn/webauthn"
)

type sessionKey string

const (
	// webAuthnSessionKey stores the webauthn.SessionData of an ongoing registration or login ceremony.
	webAuthnSessionKey sessionKey = "webauthn_session"
	// userIDSessionKey stores the WebAuthn user handle of the signed-in user.
	userIDSessionKey sessionKey = "webauthn_user_id"
)

// webAuthnIDLength is the maximum user handle length allowed by WebAuthn Level 2.
const webAuthnIDLength = 64

const anonymousDisplayName = "Anonymous"

// user implements webauthn.User. Users are anonymous and identified only by their passkeys.
type user struct {
	id          int
	webAuthnID  []byte
	displayName string
	credentials []webauthn.Credential
}

func newRandomUser() (*user, error) {
	webAuthnID := make([]byte, webAuthnIDLength)
	if _, err := rand.Read(webAuthnID); err != nil {
		return nil, fmt.Errorf("generate user handle: %w", err)
	}
	return &user{
		id:          0,
		webAuthnID:  webAuthnID,
		displayName: anonymousDisplayName,
		credentials: nil,
	}, nil
}

func (u *user) WebAuthnID() []byte {
	return u.webAuthnID
}

func (u *user) WebAuthnName() string {
	return u.displayName
}

func (u *user) WebAuthnDisplayName() string {
	return u.displayName
}

func (u *user) WebAuthnCredentials() []webauthn.Credential {
	return u.credentials
}
