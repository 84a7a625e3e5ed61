// Package credential implements opaque mailbox credentials and the
// per-user credential registry. A credential is a signed token minted by
// the mail backend when an address is created; holding one proves the
// right to operate that address.
package credential

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredential marks a credential that fails structural decoding
// or whose claimed address no longer exists.
var ErrInvalidCredential = errors.New("invalid credential")

// AddressRecord is what a valid credential resolves to.
type AddressRecord struct {
	Address string
	ID      int64
}

// Claims are the credential's encoded claims. Address credentials do not
// expire; validity is decided against the backing store instead.
type Claims struct {
	Address   string `json:"address"`
	AddressID int64  `json:"address_id"`
	jwt.RegisteredClaims
}

// Codec signs and verifies mailbox credentials with the secret shared with
// the mail backend.
type Codec struct {
	secret []byte
}

// NewCodec creates a credential codec
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Encode mints a credential for an address. Used by tests and by operators
// re-issuing credentials; the backend normally mints them.
func (c *Codec) Encode(address string, id int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Address:   address,
		AddressID: id,
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign credential: %w", err)
	}
	return signed, nil
}

// Decode verifies a credential and returns the address record it claims.
func (c *Codec) Decode(tokenString string) (AddressRecord, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return AddressRecord{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if claims.Address == "" || claims.AddressID == 0 {
		return AddressRecord{}, fmt.Errorf("%w: missing address claims", ErrInvalidCredential)
	}
	return AddressRecord{Address: claims.Address, ID: claims.AddressID}, nil
}
