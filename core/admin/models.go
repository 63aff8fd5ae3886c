package admin

import "golang.org/x/crypto/bcrypt"

// Login is the payload sent to unlock the admin panel.
type Login struct {
	Password string `json:"password" validate:"required"`
}

// ChangePassword defines the information needed to replace the admin password.
type ChangePassword struct {
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

// HashPassword returns the bcrypt hash of pwd.
func HashPassword(pwd string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
}

// CheckPassword compares pwd against a bcrypt hash.
func CheckPassword(hash []byte, pwd string) error {
	return bcrypt.CompareHashAndPassword(hash, []byte(pwd))
}
