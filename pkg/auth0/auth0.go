package auth0

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	claimsKey = "claims"

	AuthorizationHeader = "Authorization"
	bearer              = "Bearer "
)

type Config struct {
	Issuer   string `yaml:"issuer" envconfig:"AUTH0_DOMAIN"`
	Audience string `yaml:"audience" envconfig:"AUTH0_AUDIENCE"`
	Enable   bool   `yaml:"enable" envconfig:"AUTH0_ENABLE" default:"false"`
	// Scope is required on guarded routes. Empty accepts any valid token.
	Scope string `yaml:"scope" envconfig:"AUTH0_SCOPE" default:"catalog:write"`
}

type Validator interface {
	ValidateToken(ctx context.Context, tokenString string) (interface{}, error)
}

func NewValidator(cfg Config) (Validator, error) {
	issuerURL, err := url.Parse("https://" + cfg.Issuer + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to parse the issuer url: %v", err)
	}
	provider := jwks.NewCachingProvider(issuerURL, time.Minute*5)
	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Audience},
		validator.WithCustomClaims(func() validator.CustomClaims { return &CustomClaims{} }),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt validator: %v", err)
	}
	return jwtValidator, nil
}

// NewMiddleware guards catalog writes. With auth disabled every request passes.
func NewMiddleware(cfg Config) (echo.MiddlewareFunc, error) {
	if !cfg.Enable {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }, nil
	}
	v, err := NewValidator(cfg)
	if err != nil {
		return nil, err
	}
	authn, authz := Middleware(v), RequireScope(cfg.Scope)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return authn(authz(next))
	}, nil
}

func Middleware(jwtValidator Validator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authorization := c.Request().Header.Get(AuthorizationHeader)
			if authorization == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "no Authorization header")
			}
			if !strings.HasPrefix(authorization, bearer) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid Authorization header")
			}

			token := strings.TrimPrefix(authorization, bearer)
			claims, err := jwtValidator.ValidateToken(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// RequireScope rejects requests whose validated token lacks scope. Use after Middleware.
func RequireScope(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if scope == "" {
				return next(c)
			}
			claims, err := GetClaims(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			custom, ok := claims.CustomClaims.(*CustomClaims)
			if !ok || !custom.HasScope(scope) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient scope")
			}
			return next(c)
		}
	}
}

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Scope string `json:"scope"`
}

func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// HasScope checks whether our claims have a specific scope.
func (c CustomClaims) HasScope(expectedScope string) bool {
	for _, s := range strings.Fields(c.Scope) {
		if s == expectedScope {
			return true
		}
	}
	return false
}

func GetClaims(c echo.Context) (*validator.ValidatedClaims, error) {
	claims, ok := c.Get(claimsKey).(*validator.ValidatedClaims)
	if !ok {
		return nil, errors.New("no claims")
	}
	return claims, nil
}
