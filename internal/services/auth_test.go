package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/siteproof-backend/internal/data/repos/testutil"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/ctxutil"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims JWTClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func validClaims(sub string) JWTClaims {
	now := time.Now()
	return JWTClaims{
		Email:     "eng@example.com",
		SessionID: "s-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "siteproof",
			Audience:  jwt.ClaimStrings{"siteproof-api"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestSetContextFromToken(t *testing.T) {
	svc := NewAuthService(testutil.Logger(t), AuthConfig{Secret: testSecret, Issuer: "siteproof", Audience: "siteproof-api"})

	ctx, err := svc.SetContextFromToken(context.Background(), signToken(t, testSecret, jwt.SigningMethodHS256, validClaims("u1")))
	require.NoError(t, err)
	rd := ctxutil.GetRequestData(ctx)
	require.NotNil(t, rd)
	assert.Equal(t, "u1", rd.UserID)
	assert.Equal(t, "s-1", rd.SessionID)
	assert.Equal(t, "eng@example.com", rd.Email)
}

func TestSetContextFromTokenRejects(t *testing.T) {
	svc := NewAuthService(testutil.Logger(t), AuthConfig{Secret: testSecret, Issuer: "siteproof", Audience: "siteproof-api"})

	expired := validClaims("u1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	wrongIssuer := validClaims("u1")
	wrongIssuer.Issuer = "someone-else"
	noSubject := validClaims("")
	noExpiry := validClaims("u1")
	noExpiry.ExpiresAt = nil

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not-a-jwt",
		"wrong secret": signToken(t, "other", jwt.SigningMethodHS256, validClaims("u1")),
		"wrong alg":    signToken(t, testSecret, jwt.SigningMethodHS512, validClaims("u1")),
		"expired":      signToken(t, testSecret, jwt.SigningMethodHS256, expired),
		"issuer":       signToken(t, testSecret, jwt.SigningMethodHS256, wrongIssuer),
		"no subject":   signToken(t, testSecret, jwt.SigningMethodHS256, noSubject),
		"no expiry":    signToken(t, testSecret, jwt.SigningMethodHS256, noExpiry),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			ctx, err := svc.SetContextFromToken(context.Background(), tok)
			require.Error(t, err)
			assert.Equal(t, http.StatusUnauthorized, apierr.StatusOf(err))
			assert.Nil(t, ctxutil.GetRequestData(ctx))
		})
	}
}

func TestSetContextFromTokenWithoutSecret(t *testing.T) {
	svc := NewAuthService(testutil.Logger(t), AuthConfig{})
	_, err := svc.SetContextFromToken(context.Background(), "a.b.c")
	assert.Equal(t, http.StatusInternalServerError, apierr.StatusOf(err))
}
