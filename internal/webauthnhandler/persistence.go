package webauthnhandler

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-webauthn/webauthn/webauthn"
)

// createUser stores a newly registered user together with its first passkey and returns the user's id.
func (h *WebAuthnHandler) createUser(ctx context.Context, u *user, credential *webauthn.Credential) (_ int, err error) {
	tx, err := h.database.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rollbackErr))
		}
	}()

	var userID int
	stmt := `INSERT INTO users (webauthn_user_id, display_name) VALUES (?, ?) RETURNING id`
	if err = tx.QueryRowContext(ctx, stmt, u.WebAuthnID(), u.WebAuthnDisplayName()).Scan(&userID); err != nil {
		return 0, fmt.Errorf("db insert user (webauthn_user_id: %s): %w", hex.EncodeToString(u.WebAuthnID()), err)
	}
	if err = upsertCredential(ctx, tx, userID, credential); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return userID, nil
}

// getUser returns the user with the WebAuthn user handle and its passkeys or sql.ErrNoRows.
func (h *WebAuthnHandler) getUser(ctx context.Context, webAuthnID []byte) (_ *user, err error) {
	var u user
	stmt := `SELECT id, webauthn_user_id, display_name FROM users WHERE webauthn_user_id = ?`
	if err = h.database.ReadOnly.QueryRowContext(ctx, stmt, webAuthnID).Scan(
		&u.id, &u.webAuthnID, &u.displayName); err != nil {
		return nil, fmt.Errorf("read user: %w", err)
	}

	stmt = `SELECT id,
       public_key,
       attestation_type,
       transport,
       flag_user_present,
       flag_user_verified,
       flag_backup_eligible,
       flag_backup_state,
       authenticator_aaguid,
       authenticator_sign_count,
       authenticator_clone_warning,
       authenticator_attachment
FROM credentials
WHERE user_id = ?`
	var rows *sql.Rows
	if rows, err = h.database.ReadOnly.QueryContext(ctx, stmt, u.id); err != nil {
		return nil, fmt.Errorf("query credentials: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	for rows.Next() {
		var (
			credential webauthn.Credential
			transport  []byte
		)
		if err = rows.Scan(
			&credential.ID,
			&credential.PublicKey,
			&credential.AttestationType,
			&transport,
			&credential.Flags.UserPresent,
			&credential.Flags.UserVerified,
			&credential.Flags.BackupEligible,
			&credential.Flags.BackupState,
			&credential.Authenticator.AAGUID,
			&credential.Authenticator.SignCount,
			&credential.Authenticator.CloneWarning,
			&credential.Authenticator.Attachment,
		); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		if err = json.Unmarshal(transport, &credential.Transport); err != nil {
			return nil, fmt.Errorf("JSON decode transport: %w", err)
		}
		u.credentials = append(u.credentials, credential)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("check rows error: %w", err)
	}

	return &u, nil
}

// getUserID returns the id of the user with the WebAuthn user handle or sql.ErrNoRows.
func (h *WebAuthnHandler) getUserID(ctx context.Context, webAuthnID []byte) (int, error) {
	var userID int
	stmt := `SELECT id FROM users WHERE webauthn_user_id = ?`
	if err := h.database.ReadOnly.QueryRowContext(ctx, stmt, webAuthnID).Scan(&userID); err != nil {
		return 0, fmt.Errorf("query user id: %w", err)
	}
	return userID, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// upsertCredential stores the passkey or updates its counters and flags after a login.
func upsertCredential(ctx context.Context, db execer, userID int, credential *webauthn.Credential) error {
	stmt := `INSERT INTO credentials (id,
                         user_id,
                         public_key,
                         attestation_type,
                         transport,
                         flag_user_present,
                         flag_user_verified,
                         flag_backup_eligible,
                         flag_backup_state,
                         authenticator_aaguid,
                         authenticator_sign_count,
                         authenticator_clone_warning,
                         authenticator_attachment)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET attestation_type            = excluded.attestation_type,
                               transport                   = excluded.transport,
                               flag_user_present           = excluded.flag_user_present,
                               flag_user_verified          = excluded.flag_user_verified,
                               flag_backup_eligible        = excluded.flag_backup_eligible,
                               flag_backup_state           = excluded.flag_backup_state,
                               authenticator_aaguid        = excluded.authenticator_aaguid,
                               authenticator_sign_count    = excluded.authenticator_sign_count,
                               authenticator_clone_warning = excluded.authenticator_clone_warning,
                               authenticator_attachment    = excluded.authenticator_attachment`
	encodedTransport, err := json.Marshal(credential.Transport)
	if err != nil {
		return fmt.Errorf("JSON encode transport: %w", err)
	}
	_, err = db.ExecContext(
		ctx,
		stmt,
		credential.ID,
		userID,
		credential.PublicKey,
		credential.AttestationType,
		string(encodedTransport),
		credential.Flags.UserPresent,
		credential.Flags.UserVerified,
		credential.Flags.BackupEligible,
		credential.Flags.BackupState,
		credential.Authenticator.AAGUID,
		credential.Authenticator.SignCount,
		credential.Authenticator.CloneWarning,
		string(credential.Authenticator.Attachment),
	)
	if err != nil {
		return fmt.Errorf("db upsert credential (user_id: %d, credential_id: %s): %w",
			userID,
			hex.EncodeToString(credential.ID),
			err)
	}
	return nil
}
