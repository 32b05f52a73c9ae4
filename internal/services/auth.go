package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/ctxutil"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

// AuthService verifies bearer tokens minted by the identity provider.
type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type AuthConfig struct {
	Secret   string
	Issuer   string
	Audience string
	Leeway   time.Duration
}

type JWTClaims struct {
	Email     string `json:"email,omitempty"`
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

type authService struct {
	log    *logger.Logger
	secret []byte
	opts   []jwt.ParserOption
}

func NewAuthService(log *logger.Logger, cfg AuthConfig) AuthService {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(cfg.Leeway))
	}
	return &authService{
		log:    log.With("service", "AuthService"),
		secret: []byte(cfg.Secret),
		opts:   opts,
	}
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, apierr.Unauthorized("missing bearer token")
	}
	if len(as.secret) == 0 {
		return ctx, apierr.Internal("auth_unconfigured", errors.New("JWT_SECRET_KEY is not set"))
	}
	claims := &JWTClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return as.secret, nil
	}, as.opts...)
	if err != nil || !parsed.Valid {
		as.log.Debug("token rejected", "error", err)
		return ctx, apierr.Unauthorized("invalid or expired token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return ctx, apierr.Unauthorized("token has no subject")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		UserID:    claims.Subject,
		SessionID: claims.SessionID,
		Email:     claims.Email,
	}), nil
}

// requireUser returns the authenticated caller or a 401.
func requireUser(ctx context.Context) (string, error) {
	uid := ctxutil.UserID(ctx)
	if uid == "" {
		return "", apierr.Unauthorized("authentication required")
	}
	return uid, nil
}
