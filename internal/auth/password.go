package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher hashes guest passwords for storage and verifies login
// attempts against the stored hash.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

type bcryptHasher struct {
	cost int
}

// NewBcryptPasswordHasher returns a bcrypt-backed hasher at the default cost.
func NewBcryptPasswordHasher() PasswordHasher {
	return NewBcryptPasswordHasherWithCost(bcrypt.DefaultCost)
}

// NewBcryptPasswordHasherWithCost returns a bcrypt-backed hasher with the
// given cost. Costs below the bcrypt minimum fall back to the default, so
// a zero value from config cannot silently weaken hashing.
func NewBcryptPasswordHasherWithCost(cost int) PasswordHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *bcryptHasher) Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
