package echoapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradeportal/core"
	"github.com/trezcool/gradeportal/core/user"
)

const (
	contextClaimsKey = "userClaims"
	contextUserKey   = "user"
	authScheme       = "Bearer"
	tokenAudience    = "gradeportal"
)

var signingMethod = jwt.SigningMethodHS256

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	OrigIssuedAt int64     `json:"oriat,omitempty"`
	Username     string    `json:"username,omitempty"`
	Role         user.Role `json:"role,omitempty"`
	IsStudent    bool      `json:"is_student,omitempty"` // -> STUDENT PORTAL
	IsTeacher    bool      `json:"is_teacher,omitempty"` // -> TEACHER PORTAL
	IsAdmin      bool      `json:"is_admin,omitempty"`   // -> ADMIN PORTAL
}

// UserID returns the ID of the user the token was issued to.
func (c Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

func GetUserClaims(conf *core.Config, usr user.User, origIat ...int64) *Claims {
	now := time.Now()

	oriat := now.Unix()
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    conf.AppName,
			Subject:   strconv.FormatInt(usr.ID, 10),
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(conf.Server.JWTExpirationDelta)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OrigIssuedAt: oriat,
		Username:     usr.Username,
		Role:         usr.Role,
		IsStudent:    usr.IsStudent(),
		IsTeacher:    usr.IsTeacher(),
		IsAdmin:      usr.IsAdmin(),
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(signingMethod, claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func parseToken(conf *core.Config, tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{signingMethod.Alg()}))
	token, err := parser.ParseWithClaims(tokenStr, new(Claims), func(*jwt.Token) (interface{}, error) {
		return []byte(conf.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !claims.VerifyAudience(tokenAudience, true) {
		return nil, errInvalidToken
	}
	return claims, nil
}

// jwtMiddleware authenticates requests carrying a valid "Authorization: Bearer <token>" header
// and stores the token claims in the echo.Context.
func jwtMiddleware(conf *core.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
			l := len(authScheme)
			if len(auth) <= l+1 || !strings.EqualFold(auth[:l], authScheme) || auth[l] != ' ' {
				return errMissingToken
			}
			claims, err := parseToken(conf, auth[l+1:])
			if err != nil {
				return errors.Wrap(errInvalidToken, err.Error())
			}
			ctx.Set(contextClaimsKey, *claims)
			return next(ctx)
		}
	}
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(Claims); ok {
		return claims, nil
	}
	return Claims{}, core.ErrUnauthenticated
}

// getContextUser returns the (cached) user the request token was issued to.
// Users that no longer exist or are not approved are not authenticated.
func getContextUser(ctx echo.Context, svc *user.Service) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.User{}, err
	}
	id, err := claims.UserID()
	if err != nil {
		return user.User{}, core.ErrUnauthenticated
	}

	usr, err := svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, core.ErrUnauthenticated
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	if !usr.IsApproved() {
		return user.User{}, user.ErrNotApproved
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

func refreshToken(ctx echo.Context, conf *core.Config, svc *user.Service) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", err
	}
	usr, err := getContextUser(ctx, svc)
	if err != nil {
		return "", err
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	token, err := GenerateToken(conf, GetUserClaims(conf, usr, claims.OrigIssuedAt))
	if err != nil {
		return "", errors.Wrap(err, "generating token")
	}
	return token, nil
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string     `json:"token"`
		User  *user.User `json:"user,omitempty"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username)
	return validate.Struct(lr)
}

var (
	errMissingToken   = echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed jwt")
	errInvalidToken   = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired jwt")
	errRefreshExpired = echo.NewHTTPError(http.StatusUnauthorized, "refresh has expired")
)
