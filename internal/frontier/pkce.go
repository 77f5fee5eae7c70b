package frontier

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
)

// PKCEExchange holds the per-attempt secrets for one authorization round
// trip. It is created fresh for every login attempt and discarded once the
// token exchange completes or fails; it is never persisted.
type PKCEExchange struct {
	// State links the authorization callback back to this attempt.
	State string

	// CodeVerifier is the secret proved to the token endpoint. RFC 7636
	// requires at least 43 characters of URL-safe text.
	CodeVerifier string

	// CodeChallenge is the S256 derivation of the verifier, sent in the
	// authorization request.
	CodeChallenge string
}

// NewPKCEExchange generates a state token and a verifier/challenge pair.
//
// The verifier is seeded from two independent UUIDs with hyphens stripped
// and lowercased, giving 64 characters of URL-safe hex — comfortably above
// the 43-character minimum the authorization server enforces.
func NewPKCEExchange() PKCEExchange {
	verifier := strings.ToLower(strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", ""))
	return PKCEExchange{
		State:         uuid.NewString(),
		CodeVerifier:  verifier,
		CodeChallenge: ChallengeS256(verifier),
	}
}

// ChallengeS256 returns the base64url encoding (no padding) of the SHA-256
// digest of the verifier's ASCII bytes.
func ChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
