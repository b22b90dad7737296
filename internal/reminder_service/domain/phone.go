package domain

import "regexp"

// International format: "+" then a non-zero digit then 1 to 14 more digits.
var phoneNumberRegex = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// ValidatePhoneNumber checks that a phone number is in international
// format, e.g. "+15551234567". Returns ErrInvalidPhoneNumber otherwise.
func ValidatePhoneNumber(phoneNumber string) error {
	if !phoneNumberRegex.MatchString(phoneNumber) {
		return ErrInvalidPhoneNumber
	}
	return nil
}
