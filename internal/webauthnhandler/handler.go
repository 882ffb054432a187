package webauthnhandler

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/myrjola/gymplan/internal/sqlite"
)

//nolint:gochecknoglobals // gob registrations are process wide.
var registerSessionData sync.Once

// WebAuthnHandler implements passkey registration and login and keeps the signed-in user in the session.
type WebAuthnHandler struct {
	logger         *slog.Logger
	webAuthn       *webauthn.WebAuthn
	sessionManager *scs.SessionManager
	database       *sqlite.Database
}

func New(
	addr string,
	fqdn string,
	logger *slog.Logger,
	sessionManager *scs.SessionManager,
	dbs *sqlite.Database,
) (*WebAuthnHandler, error) {
	var (
		err     error
		timeout = time.Minute * 5
	)
	// Register the session data struct for encoding to the session.
	// See https://github.com/alexedwards/scs?tab=readme-ov-file#working-with-session-data.
	registerSessionData.Do(func() {
		gob.Register(webauthn.SessionData{}) //nolint:exhaustruct // only need to register the struct.
	})

	rpOrigins := []string{fmt.Sprintf("https://%s", fqdn)}
	if fqdn == "localhost" {
		//goland:noinspection HttpUrlsUsage // This is a local server.
		rpOrigins = []string{fmt.Sprintf("http://%s", addr)}
	}

	var webauthnConfig = &webauthn.Config{
		RPID:          fqdn,
		RPDisplayName: "Gymplan",
		RPOrigins:     rpOrigins,

		// Top origins are to my understanding used for cross-origin Passkeys. We don't need it here.
		RPTopOrigins:                nil,
		RPTopOriginVerificationMode: protocol.TopOriginIgnoreVerificationMode,

		AttestationPreference: protocol.PreferNoAttestation,
		AuthenticatorSelection: protocol.AuthenticatorSelection{
			AuthenticatorAttachment: "platform",
			RequireResidentKey:      new(true),
			ResidentKey:             protocol.ResidentKeyRequirementRequired,
			UserVerification:        protocol.VerificationDiscouraged,
		},
		Debug:                false,
		EncodeUserIDAsString: false,
		Timeouts: webauthn.TimeoutsConfig{
			Login: webauthn.TimeoutConfig{
				Enforce:    true,
				Timeout:    timeout,
				TimeoutUVD: timeout,
			},
			Registration: webauthn.TimeoutConfig{
				Enforce:    true,
				Timeout:    timeout,
				TimeoutUVD: timeout,
			},
		},
		MDS: nil,
	}

	var webAuthn *webauthn.WebAuthn
	if webAuthn, err = webauthn.New(webauthnConfig); err != nil {
		return nil, fmt.Errorf("new webauthn: %w", err)
	}

	return &WebAuthnHandler{
		logger:         logger,
		webAuthn:       webAuthn,
		sessionManager: sessionManager,
		database:       dbs,
	}, nil
}

// BeginRegistration starts a passkey registration for a new anonymous user. The user is stored only once the
// registration finishes.
func (h *WebAuthnHandler) BeginRegistration(ctx context.Context) ([]byte, error) {
	var (
		u   *user
		err error
	)
	if u, err = newRandomUser(); err != nil {
		return nil, fmt.Errorf("new user: %w", err)
	}

	authSelect := protocol.AuthenticatorSelection{
		AuthenticatorAttachment: protocol.Platform,
		RequireResidentKey:      protocol.ResidentKeyNotRequired(),
		ResidentKey:             protocol.ResidentKeyRequirementRequired,
		UserVerification:        protocol.VerificationDiscouraged,
	}

	opts, session, err := h.webAuthn.BeginRegistration(
		u,
		webauthn.WithAuthenticatorSelection(authSelect),
		webauthn.WithResidentKeyRequirement(protocol.ResidentKeyRequirementRequired))
	if err != nil {
		return nil, fmt.Errorf("begin registration: %w", err)
	}

	h.sessionManager.Put(ctx, string(webAuthnSessionKey), *session)

	var out []byte
	if out, err = json.Marshal(opts); err != nil {
		return nil, fmt.Errorf("JSON encode: %w", err)
	}
	return out, nil
}

func (h *WebAuthnHandler) parseWebAuthnSession(ctx context.Context) (webauthn.SessionData, error) {
	var (
		session webauthn.SessionData
		ok      bool
		err     error
	)
	ses := h.sessionManager.Get(ctx, string(webAuthnSessionKey))
	if session, ok = ses.(webauthn.SessionData); !ok {
		err = fmt.Errorf("could not parse webauthn.SessionData (data: %v)", ses)
	}
	return session, err
}

// FinishRegistration verifies the attestation, stores the new user with its passkey, and signs the user in.
func (h *WebAuthnHandler) FinishRegistration(r *http.Request) error {
	var (
		err     error
		session webauthn.SessionData
		ctx     = r.Context()
	)

	if session, err = h.parseWebAuthnSession(ctx); err != nil {
		return fmt.Errorf("parse webauthn session: %w", err)
	}

	u := &user{
		id:          0,
		webAuthnID:  session.UserID,
		displayName: anonymousDisplayName,
		credentials: nil,
	}

	var credential *webauthn.Credential
	if credential, err = h.webAuthn.FinishRegistration(u, session, r); err != nil {
		return fmt.Errorf("finish webauthn registration: %w", err)
	}

	var userID int
	if userID, err = h.createUser(ctx, u, credential); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	if err = h.signIn(ctx, u.WebAuthnID()); err != nil {
		return err
	}
	h.logger.LogAttrs(ctx, slog.LevelInfo, "registered user", slog.Int("user_id", userID))
	return nil
}

func (h *WebAuthnHandler) BeginLogin(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	options, session, err := h.webAuthn.BeginDiscoverableLogin()
	if err != nil {
		return nil, fmt.Errorf("begin discoverable webauthn login: %w", err)
	}

	h.sessionManager.Put(r.Context(), string(webAuthnSessionKey), *session)

	w.Header().Set("Content-Type", "application/json")
	var out []byte
	if out, err = json.Marshal(options); err != nil {
		return nil, fmt.Errorf("json marshal webauthn options: %w", err)
	}
	return out, nil
}

func (h *WebAuthnHandler) findUserHandler(ctx context.Context) webauthn.DiscoverableUserHandler {
	return func(_, userHandle []byte) (webauthn.User, error) {
		u, err := h.getUser(ctx, userHandle)
		if err != nil {
			return nil, err
		}
		return u, nil
	}
}

// FinishLogin validates the passkey assertion and signs the user in.
func (h *WebAuthnHandler) FinishLogin(r *http.Request) error {
	var (
		session webauthn.SessionData
		err     error
		ctx     = r.Context()
	)
	if session, err = h.parseWebAuthnSession(ctx); err != nil {
		return fmt.Errorf("parse webauthn session: %w", err)
	}

	parsedResponse, err := protocol.ParseCredentialRequestResponse(r)
	if err != nil {
		return fmt.Errorf("parse credential request response: %w", err)
	}
	validatedUser, credential, err := h.webAuthn.ValidatePasskeyLogin(h.findUserHandler(ctx), session, parsedResponse)
	if err != nil {
		return fmt.Errorf("validate Passkey login: %w", err)
	}
	u, ok := validatedUser.(*user)
	if !ok {
		return fmt.Errorf("unexpected user type %T", validatedUser)
	}

	if err = upsertCredential(ctx, h.database.ReadWrite, u.id, credential); err != nil {
		return fmt.Errorf("upsert webauthn credential: %w", err)
	}

	return h.signIn(ctx, u.WebAuthnID())
}

func (h *WebAuthnHandler) signIn(ctx context.Context, webAuthnID []byte) error {
	if err := h.sessionManager.RenewToken(ctx); err != nil {
		return fmt.Errorf("renew session token: %w", err)
	}
	h.sessionManager.Remove(ctx, string(webAuthnSessionKey))
	h.sessionManager.Put(ctx, string(userIDSessionKey), webAuthnID)
	return nil
}

// Logout signs the user out by forgetting the user in a fresh session.
func (h *WebAuthnHandler) Logout(ctx context.Context) error {
	if err := h.sessionManager.RenewToken(ctx); err != nil {
		return fmt.Errorf("renew session token: %w", err)
	}
	h.sessionManager.Remove(ctx, string(userIDSessionKey))
	return nil
}
