package crypto

import "golang.org/x/crypto/bcrypt"

// bcryptCost is fixed at hash-creation time and never lowered; existing
// hashes keep the cost they were created with.
const bcryptCost = 10

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares in constant time and returns an error on mismatch.
func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
