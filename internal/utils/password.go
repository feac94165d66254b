package utils

import "golang.org/x/crypto/bcrypt"

// bcrypt only keys off the first 72 bytes of input. The Go
// implementation rejects longer passwords outright, while most other
// bcrypt implementations truncate; truncating here keeps any password
// hashable and keeps hashes interchangeable with hashes produced by
// those implementations.
const bcryptMaxLen = 72

func truncateForBcrypt(plain string) []byte {
	b := []byte(plain)
	if len(b) > bcryptMaxLen {
		b = b[:bcryptMaxLen]
	}
	return b
}

// HashPassword returns a bcrypt digest of plain using the given cost.
// Any input hashes, including the empty string; policy checks such as
// minimum length belong to the validation layer, not here.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword(truncateForBcrypt(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// A mismatch is an ordinary false, never an error.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncateForBcrypt(plain)) == nil
}
