// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/food-orders/internal/config"
	"github.com/carterperez-dev/food-orders/internal/core"
	"github.com/carterperez-dev/food-orders/internal/middleware"
)

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

type Claims struct {
	UserID    int64
	TokenID   string
	Type      TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// JWTManager signs and verifies HMAC tokens. Nothing is persisted, so a
// token stays valid until it expires.
type JWTManager struct {
	key    jwk.Key
	alg    jwa.SignatureAlgorithm
	config config.JWTConfig
	now    func() time.Time
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("jwt secret key is empty")
	}

	alg, err := signatureAlgorithm(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	key, err := jwk.Import([]byte(cfg.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("import secret key: %w", err)
	}

	if setErr := key.Set(jwk.AlgorithmKey, alg); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	return &JWTManager{
		key:    key,
		alg:    alg,
		config: cfg,
		now:    time.Now,
	}, nil
}

func signatureAlgorithm(name string) (jwa.SignatureAlgorithm, error) {
	switch strings.ToUpper(name) {
	case "HS256":
		return jwa.HS256(), nil
	case "HS384":
		return jwa.HS384(), nil
	case "HS512":
		return jwa.HS512(), nil
	default:
		var none jwa.SignatureAlgorithm
		return none, fmt.Errorf("unsupported jwt algorithm %q", name)
	}
}

func (m *JWTManager) IssueAccessToken(userID int64) (string, time.Time, error) {
	return m.issue(userID, TokenAccess, m.config.AccessTokenExpire)
}

func (m *JWTManager) IssueRefreshToken(userID int64) (string, time.Time, error) {
	return m.issue(userID, TokenRefresh, m.config.RefreshTokenExpire)
}

func (m *JWTManager) issue(
	userID int64,
	tokenType TokenType,
	ttl time.Duration,
) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(ttl)

	token, err := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(m.config.Issuer).
		Subject(strconv.FormatInt(userID, 10)).
		IssuedAt(now).
		Expiration(expiresAt).
		Claim("type", string(tokenType)).
		Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(m.alg, m.key))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return string(signed), expiresAt, nil
}

// Verify checks signature, issuer and expiry and accepts either token type.
func (m *JWTManager) Verify(
	_ context.Context,
	tokenString string,
) (*Claims, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(m.alg, m.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithClock(jwt.ClockFunc(m.now)),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, fmt.Errorf(
			"verify token: malformed subject: %w",
			core.ErrTokenInvalid,
		)
	}

	var tokenType string
	if err := token.Get("type", &tokenType); err != nil {
		return nil, fmt.Errorf(
			"verify token: missing type claim: %w",
			core.ErrTokenInvalid,
		)
	}

	claims := &Claims{
		UserID: userID,
		Type:   TokenType(tokenType),
	}
	claims.TokenID, _ = token.JwtID()
	claims.IssuedAt, _ = token.IssuedAt()
	claims.ExpiresAt, _ = token.Expiration()

	return claims, nil
}

// VerifyAccessToken is Verify restricted to access tokens, for request
// authentication.
func (m *JWTManager) VerifyAccessToken(
	ctx context.Context,
	tokenString string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := m.Verify(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	if claims.Type != TokenAccess {
		return nil, fmt.Errorf(
			"verify token: invalid token type: %w",
			core.ErrTokenInvalid,
		)
	}

	return &middleware.AccessTokenClaims{
		UserID:  claims.UserID,
		TokenID: claims.TokenID,
	}, nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}
