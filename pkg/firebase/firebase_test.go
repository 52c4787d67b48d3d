package firebase

import (
	"context"
	"errors"
	"testing"

	"cognition-berries/pkg/config"
	"cognition-berries/pkg/identity"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTokenVerifier struct {
	token *auth.Token
	err   error
}

func (s stubTokenVerifier) VerifyIDToken(_ context.Context, _ string) (*auth.Token, error) {
	return s.token, s.err
}

func TestVerify_MapsClaims(t *testing.T) {
	v := &Verifier{client: stubTokenVerifier{token: &auth.Token{
		UID:    "firebase-uid",
		Claims: map[string]interface{}{"email": "ada@example.com", "name": "Ada"},
	}}}

	id, err := v.Verify(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "firebase-uid", id.UID)
	assert.Equal(t, "ada@example.com", id.Email)
	assert.Equal(t, "Ada", id.Name)
}

func TestVerify_MissingOptionalClaims(t *testing.T) {
	v := &Verifier{client: stubTokenVerifier{token: &auth.Token{UID: "uid", Claims: map[string]interface{}{}}}}

	id, err := v.Verify(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "uid", id.UID)
	assert.Empty(t, id.Email)
}

func TestVerify_Rejected(t *testing.T) {
	v := &Verifier{client: stubTokenVerifier{err: errors.New("token expired")}}

	_, err := v.Verify(context.Background(), "token")
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestCredentialsOption(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := credentialsOption(&config.Config{})
	assert.ErrorIs(t, err, ErrNoCredentials)

	opt, source, err := credentialsOption(&config.Config{FirebaseServiceAccount: `{"type":"service_account"}`})
	require.NoError(t, err)
	assert.NotNil(t, opt)
	assert.Equal(t, "FIREBASE_SERVICE_ACCOUNT", source)

	_, source, err = credentialsOption(&config.Config{FirebaseServiceAccountPath: "/etc/sa.json"})
	require.NoError(t, err)
	assert.Equal(t, "/etc/sa.json", source)
}
