// Package validation holds the pure format checks applied before any
// mutation touches the store: email and Brazilian phone/CPF formats plus
// grade and progress ranges.
package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nonDigitPattern = regexp.MustCompile(`[^0-9]`)
)

// Email reports whether s looks like local@domain.tld.
func Email(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// Phone validates Brazilian phone numbers: 10 or 11 digits after
// stripping formatting characters.
func Phone(s string) bool {
	digits := nonDigitPattern.ReplaceAllString(s, "")
	return len(digits) == 10 || len(digits) == 11
}

// CPF validates a Brazilian CPF number including both checksum digits.
func CPF(s string) bool {
	cpf := nonDigitPattern.ReplaceAllString(s, "")
	if len(cpf) != 11 {
		return false
	}
	if strings.Count(cpf, string(cpf[0])) == 11 {
		return false
	}

	if digit(cpf[9]) != checksumDigit(cpf, 9, 10) {
		return false
	}
	return digit(cpf[10]) == checksumDigit(cpf, 10, 11)
}

// checksumDigit computes a CPF verification digit over the first n
// digits using descending weights starting at weight.
func checksumDigit(cpf string, n, weight int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += digit(cpf[i]) * (weight - i)
	}
	return (sum * 10 % 11) % 10
}

func digit(b byte) int {
	return int(b - '0')
}

// Grade reports whether a grade is within [0, 100].
func Grade(grade float64) bool {
	return grade >= 0.0 && grade <= 100.0
}

// Progress reports whether a progress percentage is within [0, 100].
func Progress(progress float64) bool {
	return progress >= 0.0 && progress <= 100.0
}

// Register wires the domain checks into a validator instance so request
// payloads can declare `cpf` and `brphone` tags.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return CPF(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("brphone", func(fl validator.FieldLevel) bool {
		return Phone(fl.Field().String())
	})
}
