package admin

import (
	"fmt"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/timeac/core"
)

var (
	// password policy
	pwdMinLen     = 4
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must be at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdMatchTag  = "pwdmatch"
	pwdMatchText = "passwords do not match"
)

// InitValidators registers the admin password policy.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(changePasswordValidation, ChangePassword{})
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(validate, translator, pwdMatchTag, pwdMatchText)
}

// changePasswordValidation applies the password policy:
// - minLen: 4
// - no whitespace
// - confirmation matches
func changePasswordValidation(sl validator.StructLevel) {
	cp, ok := sl.Current().Interface().(ChangePassword)
	if !ok || cp.Password == "" {
		return
	}

	if len([]rune(cp.Password)) < pwdMinLen {
		sl.ReportError(cp.Password, "password", "Password", pwdMinLenTag, "")
		return
	}
	for _, char := range cp.Password {
		if unicode.IsSpace(char) {
			sl.ReportError(cp.Password, "password", "Password", pwdNoSpaceTag, "")
			return
		}
	}
	if cp.PasswordConfirm != "" && cp.Password != cp.PasswordConfirm {
		sl.ReportError(cp.PasswordConfirm, "passwordConfirm", "PasswordConfirm", pwdMatchTag, "")
	}
}
