package paystack

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var body InitializeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.com", body.Email)
		assert.Equal(t, int64(250000), body.Amount)
		assert.Equal(t, "cb_ref", body.Reference)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"cb_ref"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test")
	data, err := client.Initialize(context.Background(), InitializeRequest{
		Email: "ada@example.com", Amount: 250000, Reference: "cb_ref",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/abc", data.AuthorizationURL)
	assert.Equal(t, "abc", data.AccessCode)
}

func TestInitialize_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "sk_bad").Initialize(context.Background(), InitializeRequest{Reference: "r"})
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorContains(t, err, "Invalid key")
}

func TestVerify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/cb_ref", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"id":1,"status":"success","reference":"cb_ref","amount":250000,"currency":"NGN","customer":{"email":"ada@example.com"}}}`))
	}))
	defer server.Close()

	tx, err := NewClient(server.URL, "sk_test").Verify(context.Background(), "cb_ref")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, tx.Status)
	assert.Equal(t, int64(250000), tx.Amount)
	assert.Equal(t, "ada@example.com", tx.Customer.Email)
}

func TestNotConfigured(t *testing.T) {
	client := NewClient("", "")

	_, err := client.Initialize(context.Background(), InitializeRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = client.Verify(context.Background(), "ref")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"cb_ref"}}`)
	signature := hex.EncodeToString(Sign("sk_test", body))

	assert.True(t, VerifySignature("sk_test", body, signature))
	assert.False(t, VerifySignature("sk_other", body, signature))
	assert.False(t, VerifySignature("sk_test", []byte(`{}`), signature))
	assert.False(t, VerifySignature("sk_test", body, "not-hex"))
	assert.False(t, VerifySignature("sk_test", body, ""))
	assert.False(t, VerifySignature("", body, signature))
}

func TestToKobo(t *testing.T) {
	assert.Equal(t, int64(250000), ToKobo(2500))
	assert.Equal(t, int64(1999), ToKobo(19.99))
	assert.Equal(t, int64(0), ToKobo(0))
	assert.Equal(t, int64(0), ToKobo(-5))
}
