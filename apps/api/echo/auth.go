package echoapi

import (
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/user"
)

const (
	tokenCookie       = "gms_token"
	headerTokenLookup = "header:" + echo.HeaderAuthorization
	cookieTokenLookup = "cookie:" + tokenCookie

	contextTokenKey = "userToken"
	contextUserKey  = "user"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64    `json:"oriat,omitempty"`
	Name         string   `json:"name,omitempty"`
	Email        string   `json:"email,omitempty"`
	IsAdmin      bool     `json:"is_admin,omitempty"`
	IsStaff      bool     `json:"is_staff,omitempty"`
	IsTrainer    bool     `json:"is_trainer,omitempty"`
	IsMember     bool     `json:"is_member,omitempty"`
	Roles        []string `json:"roles,omitempty"`
}

type authenticator struct {
	conf   *core.Config
	usrSvc *user.Service
}

func newAuthenticator(conf *core.Config, usrSvc *user.Service) *authenticator {
	return &authenticator{conf: conf, usrSvc: usrSvc}
}

// middleware returns the JWT auth middleware reading the token from `lookup`.
func (a *authenticator) middleware(lookup string) echo.MiddlewareFunc {
	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:    []byte(a.conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
		TokenLookup:   lookup,
	})
}

func GetUserClaims(usr user.User, conf *core.Config, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			Audience:  "Fitness Club",
			ExpiresAt: now.Add(conf.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Name:         usr.Name,
		Email:        usr.Email,
		IsAdmin:      usr.IsAdmin(),
		IsStaff:      usr.IsStaff(),
		IsTrainer:    usr.IsTrainer(),
		IsMember:     usr.IsMember(),
		Roles:        usr.Roles,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// login checks the credentials and returns a signed token.
func (a *authenticator) login(ctx echo.Context, creds user.LoginCredentials) (string, error) {
	usr, err := a.usrSvc.Authenticate(ctx.Request().Context(), creds.Email, creds.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials {
			return "", errAuthenticationFailed
		}
		return "", errors.Wrap(err, "authenticating")
	}
	ctx.Set(contextUserKey, usr)
	return GenerateToken(GetUserClaims(usr, a.conf), a.conf)
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func (a *authenticator) contextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting context claims")
	}
	usr, err := a.usrSvc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errUnauthorized
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

// contextHasAnyRole tells whether a role of the token starts with one of `prefixes` ("admin:" matches "admin:owner").
func contextHasAnyRole(ctx echo.Context, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return false
	}
	for _, role := range claims.Roles {
		for _, prefix := range prefixes {
			if strings.HasPrefix(role, prefix) {
				return true
			}
		}
	}
	return false
}

// roleMiddleware only lets through the tokens holding a role under one of `roles`.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := getContextClaims(ctx); err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if !contextHasAnyRole(ctx, roles) {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

func (a *authenticator) refreshToken(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	usr, err := a.contextUser(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context user")
	}
	if !usr.IsActive {
		return "", errAccountDeactivated
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(a.conf.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	token, err := GenerateToken(GetUserClaims(usr, a.conf, claims.OrigIssuedAt), a.conf)
	return token, errors.Wrap(err, "generating token")
}
