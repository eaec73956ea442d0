package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bunnystock/leaddesk/internal/entity"
)

const minPhoneDigits = 9

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonDigit     = regexp.MustCompile(`\D`)
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NormalizePhone(phone string) string {
	return nonDigit.ReplaceAllString(phone, "")
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateIntakeInput(input IntakeLeadInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	}

	if len(NormalizePhone(input.Phone)) < minPhoneDigits {
		errors = append(errors, ValidationError{"phone", fmt.Sprintf("must have at least %d digits", minPhoneDigits)})
	}

	if !emailPattern.MatchString(strings.TrimSpace(input.Email)) {
		errors = append(errors, ValidationError{"email", "is invalid"})
	}

	if strings.TrimSpace(input.Message) == "" {
		errors = append(errors, ValidationError{"message", "is required"})
	}

	if input.Agree == nil || !*input.Agree {
		errors = append(errors, ValidationError{"agree", "must be accepted"})
	}

	return errors
}

// NormalizeIntake validates input and returns the lead to persist.
func NormalizeIntake(input IntakeLeadInput) (*entity.Lead, []ValidationError) {
	if errs := ValidateIntakeInput(input); len(errs) > 0 {
		return nil, errs
	}

	return &entity.Lead{
		Name:    strings.TrimSpace(input.Name),
		Phone:   NormalizePhone(input.Phone),
		Email:   NormalizeEmail(input.Email),
		Message: strings.TrimSpace(input.Message),
		Agree:   true,
		Channel: strings.TrimSpace(input.Channel),
		Status:  entity.StatusNew,
	}, nil
}
