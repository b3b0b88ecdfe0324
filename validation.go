package authflow

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

const (
	contactRegexString = `^[6-9]\d{9}$`
	otpRegexString     = `^\d{4}$`
)

var (
	contactRegex = regexp.MustCompile(contactRegexString)
	otpRegex     = regexp.MustCompile(otpRegexString)
)

// IsValidContact describes the isvalidcontact operation and its observable behavior.
//
// IsValidContact may return an error when input validation, dependency calls, or security checks fail.
// IsValidContact does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func IsValidContact(s string) bool {
	return contactRegex.MatchString(s)
}

// IsValidOTP describes the isvalidotp operation and its observable behavior.
//
// IsValidOTP may return an error when input validation, dependency calls, or security checks fail.
// IsValidOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func IsValidOTP(s string) bool {
	return otpRegex.MatchString(s)
}

func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("contact", validateContact, false)
	_ = v.RegisterValidation("otp4", validateOTP4, false)

	return v
}

func validateContact(fl validator.FieldLevel) bool {
	return contactRegex.MatchString(fl.Field().String())
}

func validateOTP4(fl validator.FieldLevel) bool {
	return otpRegex.MatchString(fl.Field().String())
}
