// Package tokens reads the claims the REST API puts into its JWT pair.
//
// The bridge never verifies token signatures: the API is the only party that
// can, and it does so on every call. Claims are read only to learn who the
// user is and when the access token needs refreshing.
package tokens

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/authbridge/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// UserID accepts both numeric and string identifiers, since the API
// emits whichever its user model uses.
type UserID string

func (id *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = UserID(n.String())
	return nil
}

// Claims are the registered claims plus the API's custom ones.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type,omitempty"`
	UserID    UserID `json:"user_id,omitempty"`
}

var parser = jwt.NewParser()

// Decode parses token without verifying its signature.
// A token that is not a well-formed JWT or lacks an exp claim yields
// common.ErrInvalidToken.
func Decode(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp", common.ErrInvalidToken)
	}
	return claims, nil
}

// ExpiresWithin reports whether the token is expired at now+leeway.
func (c *Claims) ExpiresWithin(now time.Time, leeway time.Duration) bool {
	return !now.Add(leeway).Before(c.ExpiresAt.Time)
}

// Generate issues an HS256 token of the given type. The bridge itself never
// signs anything; the fake API used in tests and local development does.
func Generate(userID int64, tokenType string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        strconv.FormatInt(now.UnixNano(), 36),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		TokenType: tokenType,
		UserID:    UserID(strconv.FormatInt(userID, 10)),
	})

	return token.SignedString(secretKey)
}

// Pair is the access/refresh couple issued by the API's token endpoints.
// Refresh may be empty when the API does not rotate refresh tokens.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Verify parses token and checks its HS256 signature, expiry and type.
// Only the fake API uses it.
func Verify(token string, secretKey []byte, tokenType string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("%w: token type %q", common.ErrInvalidToken, claims.TokenType)
	}
	return claims, nil
}
