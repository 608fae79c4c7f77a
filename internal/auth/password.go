// internal/auth/password.go
package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// AdminPassword сверяет пароль консоли с bcrypt-хешем либо с открытым значением,
// если хеш не задан (только в разработке, это проверяет config).
type AdminPassword struct {
	Hash  string
	Plain string
}

func (p AdminPassword) Check(password string) bool {
	if password == "" {
		return false
	}
	if hash := strings.TrimSpace(p.Hash); hash != "" {
		return CheckPasswordHash(password, hash)
	}
	if p.Plain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(p.Plain)) == 1
}
