package upload

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"artfolio/internal/common"
)

var grantSecret = []byte(os.Getenv("JWT_SECRET"))

// GrantClaims is the signed write grant handed back from presign. It
// authorizes exactly one object key for one session, and both the direct PUT
// and the relay validate the same token, which is what keeps the two
// transports interchangeable.
type GrantClaims struct {
	SessionID   string `json:"session_id"`
	ObjectKey   string `json:"object_key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	jwt.RegisteredClaims
}

func GenerateGrantToken(sessionID, objectKey, contentType string, size int64, ttl time.Duration) (string, error) {
	claims := &GrantClaims{
		SessionID:   sessionID,
		ObjectKey:   objectKey,
		ContentType: contentType,
		Size:        size,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "artfolio",
			Subject:   "upload-grant",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(grantSecret)
}

func ParseGrantToken(tokenstring string) (*GrantClaims, error) {
	token, err := jwt.ParseWithClaims(tokenstring, &GrantClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return grantSecret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.NewExpired("upload grant has expired")
		}
		return nil, common.NewForbidden("invalid upload grant")
	}

	if claims, ok := token.Claims.(*GrantClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, common.NewForbidden("invalid upload grant")
}
