package middleware

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"shopcart/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"   // string（JWTのsub）
	CtxUserRoleKey = "user_role" // string
)

// bearerAuth用のJWT検証ミドルウェア。
// JWT_PUBLIC_KEYがあればES256、なければJWT_SECRETでHS256を検証する。
func AuthJWT(cfg config.Config) (echo.MiddlewareFunc, error) {
	keyFunc, err := newKeyFunc(cfg)
	if err != nil {
		return nil, err
	}
	audience := strings.TrimSpace(cfg.JWTAudience)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//JWTをパースして検証する（exp/nbfはParseが見る）
			token, err := jwt.Parse(rawToken, keyFunc)
			if err != nil || token == nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, errorJSON("invalid token"))
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			if audience != "" && !claims.VerifyAudience(audience, true) {
				return c.JSON(http.StatusUnauthorized, errorJSON("invalid audience"))
			}

			//subがそのままuserId
			userID, err := parseString(claims["sub"])
			if err != nil || strings.TrimSpace(userID) == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("invalid token: missing sub"))
			}

			//roleは任意
			role, _ := parseString(claims["role"])

			c.Set(CtxUserIDKey, userID)
			c.Set(CtxUserRoleKey, role)

			return next(c)
		}
	}, nil
}

// 認証済みのuserIdを取り出す
func UserID(c echo.Context) (string, bool) {
	v, ok := c.Get(CtxUserIDKey).(string)
	return v, ok && v != ""
}

func newKeyFunc(cfg config.Config) (jwt.Keyfunc, error) {
	if pem := strings.TrimSpace(cfg.JWTPublicKey); pem != "" {
		pub, err := parsePublicKey(pem)
		if err != nil {
			return nil, err
		}
		return func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodES256 {
				return nil, errors.New("unexpected signing method")
			}
			return pub, nil
		}, nil
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt: no verification key configured")
	}
	secret := []byte(cfg.JWTSecret)
	return func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, nil
}

// envに1行で入れられるよう \n のエスケープも受け付ける
func parsePublicKey(raw string) (*ecdsa.PublicKey, error) {
	raw = strings.ReplaceAll(raw, `\n`, "\n")
	pub, err := jwt.ParseECPublicKeyFromPEM([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("jwt: parse public key: %w", err)
	}
	return pub, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

func parseString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.New("invalid string")
	}
	return s, nil
}
