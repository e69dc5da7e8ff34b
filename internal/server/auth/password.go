package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the fixed bcrypt cost factor used for every stored hash.
const PasswordCost = bcrypt.DefaultCost

// HashPassword returns a salted one-way bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash is compared against when a login names an unknown email, so the
// response time does not reveal whether the account exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("recipebox-dummy-password"), PasswordCost)

// CheckDummyPassword burns the same work as CheckPassword and always fails.
func CheckDummyPassword(password string) bool {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
	return false
}
