package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"helpdesk/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenConfig holds the signing material and lifetimes for both token kinds.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// UserInfo is the identity block embedded in every token. Refresh tokens only carry ID.
type UserInfo struct {
	ID   domain.ID   `json:"id"`
	Role domain.Role `json:"role,omitempty"`
}

// Claims is the JWT payload.
type Claims struct {
	jwt.RegisteredClaims
	UserInfo UserInfo `json:"UserInfo"`
}

// TokenPair is returned on login and registration.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"-"`
}

// TokenService mints and verifies HS256 tokens. Now is swappable for tests.
type TokenService struct {
	cfg TokenConfig
	Now func() time.Time
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("auth: access and refresh secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("auth: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("auth: token lifetimes must be positive")
	}
	return &TokenService{cfg: cfg, Now: time.Now}, nil
}

// RefreshTTL is exposed for cookie lifetimes.
func (s *TokenService) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

func (s *TokenService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Issue mints an access/refresh pair for p.
func (s *TokenService) Issue(p domain.Principal) (TokenPair, error) {
	access, err := s.IssueAccess(p)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(UserInfo{ID: p.ID}, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueAccess mints only an access token, used by the refresh flow.
func (s *TokenService) IssueAccess(p domain.Principal) (string, error) {
	if p.ID == 0 || p.Role == "" {
		return "", errors.New("auth: cannot issue token for empty principal")
	}
	tok, err := s.sign(UserInfo{ID: p.ID, Role: p.Role}, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return tok, nil
}

func (s *TokenService) sign(info UserInfo, secret string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.cfg.Issuer,
			Subject:   strconv.FormatInt(info.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserInfo: info,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (s *TokenService) parse(token, secret string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.UserInfo.ID == 0 {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// VerifyAccess returns the principal embedded in an access token. A missing token
// is Unauthorized; a token that cannot be trusted, expired included, is Forbidden.
func (s *TokenService) VerifyAccess(token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, domain.UnauthorizedError{Msg: "missing access token", Module: domain.ModuleAuth}
	}
	claims, err := s.parse(token, s.cfg.AccessSecret)
	if err != nil {
		return domain.Principal{}, domain.ForbiddenError{Msg: "invalid or expired access token", Module: domain.ModuleAuth}
	}
	role, ok := domain.ParseRole(string(claims.UserInfo.Role))
	if !ok {
		return domain.Principal{}, domain.ForbiddenError{Msg: "invalid or expired access token", Module: domain.ModuleAuth}
	}
	return domain.Principal{ID: claims.UserInfo.ID, Role: role}, nil
}

// VerifyRefresh returns the user id of a refresh token. Expiry asks the client to
// log in again (Unauthorized); any other defect is Forbidden.
func (s *TokenService) VerifyRefresh(token string) (domain.ID, error) {
	if token == "" {
		return 0, domain.UnauthorizedError{Msg: "no refresh token provided", Module: domain.ModuleAuth}
	}
	claims, err := s.parse(token, s.cfg.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, domain.UnauthorizedError{Msg: "refresh token expired", Module: domain.ModuleAuth}
		}
		return 0, domain.ForbiddenError{Msg: "invalid refresh token", Module: domain.ModuleAuth}
	}
	return claims.UserInfo.ID, nil
}
