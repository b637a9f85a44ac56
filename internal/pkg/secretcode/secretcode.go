// Package secretcode issues the per-upload ownership codes and decides
// whether a presented code may modify an upload.
package secretcode

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Alphabet omits 0/O and 1/I.
const (
	Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	Length   = 6
)

// Generate returns a fresh code of Length symbols drawn uniformly from Alphabet.
func Generate() (string, error) {
	max := big.NewInt(int64(len(Alphabet)))
	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < Length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate secret code: %w", err)
		}
		b.WriteByte(Alphabet[n.Int64()])
	}
	return b.String(), nil
}

// Hash returns the bcrypt hash that gets persisted instead of the code.
func Hash(code string, cost int) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(code), cost)
	if err != nil {
		return "", fmt.Errorf("hash secret code: %w", err)
	}
	return string(h), nil
}

// Grant tells which branch authorized a request.
type Grant int

const (
	Denied Grant = iota
	Owner
	Override
)

func (g Grant) Allowed() bool { return g != Denied }

func (g Grant) String() string {
	switch g {
	case Owner:
		return "owner"
	case Override:
		return "override"
	default:
		return "denied"
	}
}

// Authorizer evaluates "owner code OR operator override". The override is an
// administrative recovery credential and is disabled when empty.
type Authorizer struct {
	override string
	log      *zap.Logger
}

func NewAuthorizer(override string, log *zap.Logger) *Authorizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Authorizer{override: strings.TrimSpace(override), log: log}
}

// OverrideEnabled reports whether an operator override code is configured.
func (a *Authorizer) OverrideEnabled() bool { return a.override != "" }

// OwnerMatches checks code against the stored bcrypt hash of the upload's code.
func (a *Authorizer) OwnerMatches(hash, code string) bool {
	if hash == "" || code == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}

// OverrideMatches compares code with the operator override in constant time.
func (a *Authorizer) OverrideMatches(code string) bool {
	if !a.OverrideEnabled() || code == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a.override), []byte(code)) == 1
}

// Authorize tries the owner branch first; every override grant is logged.
func (a *Authorizer) Authorize(uploadID uint64, hash, code string) Grant {
	code = strings.TrimSpace(code)
	if a.OwnerMatches(hash, code) {
		return Owner
	}
	if a.OverrideMatches(code) {
		a.log.Warn("operator override code used", zap.Uint64("upload_id", uploadID))
		return Override
	}
	return Denied
}
