package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cognition-berries/pkg/config"
	"cognition-berries/pkg/identity"
	"cognition-berries/pkg/logger"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

const defaultServiceAccountFile = "serviceAccountKey.json"

var ErrNoCredentials = errors.New("no Firebase service account configured")

type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// Verifier checks Firebase ID tokens with the Admin SDK.
type Verifier struct {
	client tokenVerifier
}

// NewVerifier picks credentials from FIREBASE_SERVICE_ACCOUNT (JSON),
// FIREBASE_SERVICE_ACCOUNT_PATH, or serviceAccountKey.json in the working directory.
func NewVerifier(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Verifier, error) {
	opt, source, err := credentialsOption(cfg)
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase auth client: %w", err)
	}

	log.Info("Firebase Admin initialized from %s", source)
	return &Verifier{client: client}, nil
}

func credentialsOption(cfg *config.Config) (option.ClientOption, string, error) {
	if cfg.FirebaseServiceAccount != "" {
		return option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccount)), "FIREBASE_SERVICE_ACCOUNT", nil
	}
	if cfg.FirebaseServiceAccountPath != "" {
		return option.WithCredentialsFile(cfg.FirebaseServiceAccountPath), cfg.FirebaseServiceAccountPath, nil
	}
	if _, err := os.Stat(defaultServiceAccountFile); err == nil {
		return option.WithCredentialsFile(defaultServiceAccountFile), defaultServiceAccountFile, nil
	}
	return nil, "", ErrNoCredentials
}

func (v *Verifier) Verify(ctx context.Context, token string) (*identity.Identity, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", identity.ErrInvalidToken, err)
	}

	id := &identity.Identity{UID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := decoded.Claims["name"].(string); ok {
		id.Name = name
	}
	return id, nil
}
