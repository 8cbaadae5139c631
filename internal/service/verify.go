package service

import (
	"context"
	"errors"

	"github.com/nhollis/inkwell/internal/apperror"
	"github.com/nhollis/inkwell/internal/auth"
	"github.com/nhollis/inkwell/internal/model"
	"github.com/nhollis/inkwell/internal/store"
)

// verifyCaller resolves the request's identity inside the operation's
// transaction, so the authenticated account is consistent with the data the
// operation goes on to read and write.
//
// Returns (nil, nil) when the request is anonymous. Unknown email, wrong
// password, deactivated account, and stale session tokens all come back as
// the same Authentication failure; password comparison is bcrypt's
// constant-time check against the stored salted hash.
func verifyCaller(ctx context.Context, tx *store.Tx, req *Request, passwords *auth.PasswordService) (*model.Account, error) {
	if req.Auth != nil {
		account, err := tx.Accounts().GetByEmail(ctx, req.Auth.Email)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, apperror.Authentication("invalid credentials")
			}
			return nil, err
		}
		if !account.Active {
			return nil, apperror.Authentication("invalid credentials")
		}
		if err := passwords.Verify(account.PasswordHash, req.Auth.Password); err != nil {
			return nil, err
		}
		return account, nil
	}

	if req.Session != 0 {
		account, err := tx.Accounts().GetByID(ctx, req.Session)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, apperror.Authentication("session is no longer valid")
			}
			return nil, err
		}
		if !account.Active {
			return nil, apperror.Authentication("session is no longer valid")
		}
		return account, nil
	}

	return nil, nil
}
