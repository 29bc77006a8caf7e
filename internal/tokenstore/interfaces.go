package tokenstore

import "context"

// TokenStore loads and saves the refresh token.
type TokenStore interface {
	// Load returns the stored refresh token, or "" when none has been stored.
	Load(ctx context.Context) (string, error)

	// Save replaces the stored refresh token.
	Save(ctx context.Context, refreshToken string) error

	// Delete removes the stored token. Deleting a missing token is not an error.
	Delete(ctx context.Context) error
}
