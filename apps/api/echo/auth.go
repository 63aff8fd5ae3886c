package echoapi

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/timeac/core"
)

const (
	roleAdmin        = "admin"
	adminSubject     = "admin"
	contextClaimsKey = "adminClaims"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

type tokenManager struct {
	issuer     string
	signingKey []byte
	expiration time.Duration
}

func newTokenManager(conf *core.Config) *tokenManager {
	return &tokenManager{
		issuer:     conf.AppName,
		signingKey: []byte(conf.SecretKey),
		expiration: conf.Server.JWTExpirationDelta,
	}
}

// AdminClaims returns the claims of a freshly unlocked admin session.
func (tm *tokenManager) AdminClaims() *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			Subject:   adminSubject,
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: roleAdmin,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func (tm *tokenManager) GenerateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(tm.signingKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (tm *tokenManager) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString, new(Claims),
		func(*jwt.Token) (interface{}, error) { return tm.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tm.issuer),
	)
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Role != roleAdmin {
		return nil, errInvalidToken
	}
	return claims, nil
}

func extractBearer(ctx echo.Context) (string, error) {
	h := ctx.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}

// requireAuth checks the Bearer token and stores its claims in the context.
func requireAuth(tm *tokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			tokenString, err := extractBearer(ctx)
			if err != nil {
				return err
			}
			claims, err := tm.parse(tokenString)
			if err != nil {
				return err
			}
			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*Claims); ok {
		return *claims, nil
	}
	return Claims{}, errUnauthorized
}
