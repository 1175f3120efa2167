package cookie

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"aidanwoods.dev/go-paseto"
	"github.com/go-playground/errors/v5"
	"golang.org/x/crypto/hkdf"
)

// createPasetoKey derives a v4 local symmetric key from the base64 master key.
// An empty master key yields a random key, so cookies do not survive a restart.
func createPasetoKey(masterKeyBase64 string) (paseto.V4SymmetricKey, error) {
	var master []byte
	if masterKeyBase64 == "" {
		master = make([]byte, 32)
		if _, err := rand.Read(master); err != nil {
			return paseto.V4SymmetricKey{}, errors.Wrap(err, "rand.Read()")
		}
	} else {
		var err error
		master, err = base64.StdEncoding.DecodeString(masterKeyBase64)
		if err != nil {
			return paseto.V4SymmetricKey{}, errors.Wrap(err, "base64.StdEncoding.DecodeString()")
		}
		if len(master) < 32 {
			return paseto.V4SymmetricKey{}, errors.New("cookie key too short: expect a minimum of 32 bytes")
		}
	}

	r := hkdf.New(sha256.New, master, []byte("ganger-auth-flow-cookie"), nil)
	derived := make([]byte, 32)
	if _, err := io.ReadFull(r, derived); err != nil {
		return paseto.V4SymmetricKey{}, errors.Wrap(err, "hkdf")
	}

	key, err := paseto.V4SymmetricKeyFromBytes(derived)
	if err != nil {
		return paseto.V4SymmetricKey{}, errors.Wrap(err, "paseto.V4SymmetricKeyFromBytes()")
	}

	return key, nil
}
