package sessionstore

import (
	"crypto/sha256"
	"encoding/base64"
	"io"
	"strings"

	"github.com/go-playground/errors/v5"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/hkdf"
)

const base64Prefix = "base64-"

// Codec converts a stored item to and from its cookie representation.
type Codec interface {
	Encode(name, value string) (string, error)
	Decode(name, stored string) (string, error)
}

var (
	_ Codec = Base64Codec{}
	_ Codec = &SealedCodec{}
)

// Base64Codec writes values as "base64-" followed by unpadded base64url, the
// format browser clients of the identity backend read and write. Values
// without the prefix are returned unchanged.
type Base64Codec struct{}

// Encode implements Codec.
func (Base64Codec) Encode(_, value string) (string, error) {
	return base64Prefix + base64.RawURLEncoding.EncodeToString([]byte(value)), nil
}

// Decode implements Codec.
func (Base64Codec) Decode(_, stored string) (string, error) {
	encoded, ok := strings.CutPrefix(stored, base64Prefix)
	if !ok {
		return stored, nil
	}

	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return "", errors.Wrap(err, "base64.RawURLEncoding.DecodeString()")
	}

	return string(b), nil
}

// SealedCodec authenticates and encrypts values with securecookie. It is for
// deployments where only server code reads the session cookie.
type SealedCodec struct {
	sc *securecookie.SecureCookie
}

// NewSealedCodec derives hash and block keys from the base64 master key.
func NewSealedCodec(masterKeyBase64 string) (*SealedCodec, error) {
	master, err := base64.StdEncoding.DecodeString(masterKeyBase64)
	if err != nil {
		return nil, errors.Wrap(err, "base64.StdEncoding.DecodeString()")
	}
	if len(master) < 32 {
		return nil, errors.New("session key too short: expect a minimum of 32 bytes")
	}

	r := hkdf.New(sha256.New, master, []byte("ganger-session-store"), nil)
	hashKey := make([]byte, 64)
	blockKey := make([]byte, 32)
	if _, err := io.ReadFull(r, hashKey); err != nil {
		return nil, errors.Wrap(err, "hkdf hash key")
	}
	if _, err := io.ReadFull(r, blockKey); err != nil {
		return nil, errors.Wrap(err, "hkdf block key")
	}

	sc := securecookie.New(hashKey, blockKey)
	// Values are chunked by the adapter, so the codec does not cap length.
	sc.MaxLength(0)

	return &SealedCodec{sc: sc}, nil
}

// Encode implements Codec.
func (c *SealedCodec) Encode(name, value string) (string, error) {
	encoded, err := c.sc.Encode(name, value)
	if err != nil {
		return "", errors.Wrap(err, "securecookie.Encode()")
	}

	return encoded, nil
}

// Decode implements Codec.
func (c *SealedCodec) Decode(name, stored string) (string, error) {
	var value string
	if err := c.sc.Decode(name, stored, &value); err != nil {
		return "", errors.Wrap(err, "securecookie.Decode()")
	}

	return value, nil
}
