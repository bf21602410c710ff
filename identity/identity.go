// Package identity validates OEF agent public keys.
//
// The OEF network identifies an agent by an opaque string; the only
// property the protocol itself checks is the alphabet, grounded on
// oef-sdk's agents.py validate_pubkey (Base58 without the visually
// ambiguous characters 0, O, I, l).
package identity

import (
	"errors"
	"regexp"
)

// ErrInvalidIdentity is returned when a public key fails the Base58 check.
var ErrInvalidIdentity = errors.New("identity: public key is not valid base58")

var base58 = regexp.MustCompile(`^[a-km-zA-HJ-NP-Z1-9]+$`)

// Validate reports whether pubKey is a well-formed agent identity.
func Validate(pubKey string) error {
	if pubKey == "" || !base58.MatchString(pubKey) {
		return ErrInvalidIdentity
	}
	return nil
}
