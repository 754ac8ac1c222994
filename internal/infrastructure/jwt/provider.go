package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/event-planner-api/internal/config"
	"github.com/event-planner-api/internal/domain"
	"github.com/event-planner-api/internal/pkg/id"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the JWT payload fields shared by access and refresh tokens.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Pair is a freshly minted access/refresh token pair.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

// Provider signs and verifies HS256 JWTs. Access and refresh tokens use
// separate secrets so one can never be presented as the other.
type Provider struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	now           func() time.Time
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return nil, errors.New("jwt secrets must be set")
	}
	return &Provider{
		accessSecret:  []byte(cfg.JWTSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessExpiry:  cfg.JWTExpiry,
		refreshExpiry: cfg.JWTRefreshExpiry,
		now:           time.Now,
	}, nil
}

func (p *Provider) AccessExpiry() time.Duration  { return p.accessExpiry }
func (p *Provider) RefreshExpiry() time.Duration { return p.refreshExpiry }

// IssuePair signs a new access token and a new refresh token for the user.
// The refresh token carries a random jti so consecutive pairs always differ.
func (p *Provider) IssuePair(userID, email string) (*Pair, error) {
	now := p.now()
	access, err := p.sign(p.accessSecret, Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(p.accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := p.sign(p.refreshSecret, Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.New(),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.refreshExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresIn:  p.accessExpiry,
		RefreshExpiresIn: p.refreshExpiry,
	}, nil
}

// VerifyAccess validates an access token. Expired tokens yield
// domain.ErrTokenExpired, every other failure domain.ErrUnauthorized.
func (p *Provider) VerifyAccess(tokenStr string) (*Claims, error) {
	return p.verify(p.accessSecret, tokenStr)
}

// VerifyRefresh validates a refresh token with the same error contract as VerifyAccess.
func (p *Provider) VerifyRefresh(tokenStr string) (*Claims, error) {
	return p.verify(p.refreshSecret, tokenStr)
}

func (p *Provider) sign(secret []byte, claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (p *Provider) verify(secret []byte, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", domain.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%w: invalid token claims", domain.ErrUnauthorized)
	}
	return claims, nil
}
