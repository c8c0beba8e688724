package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher hashes secrets and compares hashes with plaintext
// candidates. It covers both user passwords and OTP codes.
type PasswordHasher interface {
	// Hash returns the hash of the given plaintext.
	Hash(plain string) (string, error)

	// Compare compares a hash with its possible plaintext equivalent.
	// Returns nil on match, an error otherwise.
	Compare(hashed, plain string) error
}

// BcryptHasher implements PasswordHasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher with the given cost.
// A cost outside bcrypt's range falls back to the default cost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash implements PasswordHasher using bcrypt.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare implements PasswordHasher using bcrypt.
func (h *BcryptHasher) Compare(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
