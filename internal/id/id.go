// Package id generates the identifiers used for game and event records.
//
// An identifier is a random UUID encoded as unpadded lowercase base32
// (RFC 4648): 26 characters, filesystem- and URL-safe, with 122 bits of
// randomness behind it.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a fresh 26-character record identifier.
func NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(value[:])), nil
}
