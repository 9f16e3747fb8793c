package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/guestpostlinks/pr-admin-api/pkg/config"
)

// Verifier validates identity-provider ID tokens and extracts the email claim.
type Verifier struct {
	client *auth.Client
}

// NewVerifier initialises the Firebase Admin auth client from a
// service-account credentials file.
func NewVerifier(ctx context.Context, cfg config.FirebaseConfig) (*Verifier, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth client: %w", err)
	}

	return &Verifier{client: client}, nil
}

// VerifyEmail checks the ID token signature and returns the email claim.
func (v *Verifier) VerifyEmail(ctx context.Context, idToken string) (string, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("verify id token: %w", err)
	}

	email, _ := token.Claims["email"].(string)
	if email == "" {
		return "", fmt.Errorf("id token carries no email claim")
	}
	return email, nil
}
