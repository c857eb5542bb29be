package auth

import (
	"context"

	"github.com/samantr/randp-backend/internal/models"
)

// Authenticator abstracts the credential scheme so the service layer does
// not care whether accounts use passwords, OAuth or something else.
type Authenticator interface {
	// Register creates a new account with the given email and credential.
	Register(ctx context.Context, email, name, credential string) (*models.User, error)

	// Authenticate verifies the credentials and returns the user on
	// success.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential against the scheme's
	// requirements.
	ValidateCredential(credential string) error
}
