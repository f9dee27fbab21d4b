package auth

import (
	"strings"

	apperrors "lovedu_client/internal/errors"
)

const minPasswordLength = 6

// DefaultAllowedDomains are the Kuwait University mail domains.
var DefaultAllowedDomains = []string{"@ku.edu.kw", "@grad.edu.kw", "@grade.edu.kw"}

// ValidateEmail enforces the university domain restriction when it is switched on.
func (c *Controller) ValidateEmail(email string) error {
	if !c.opts.RestrictDomain {
		return nil
	}
	domains := c.opts.AllowedDomains
	if len(domains) == 0 {
		domains = DefaultAllowedDomains
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, domain := range domains {
		if strings.HasSuffix(email, strings.ToLower(domain)) {
			return nil
		}
	}
	return apperrors.NewValidationError("Access restricted to Kuwait University members only.")
}

func ValidatePasswordChange(current, next, confirm string) error {
	switch {
	case current == "" || next == "" || confirm == "":
		return apperrors.NewValidationError("All fields are required")
	case len(next) < minPasswordLength:
		return apperrors.NewValidationError("New password must be at least 6 characters long")
	case next != confirm:
		return apperrors.NewValidationError("New password and confirm password do not match")
	case current == next:
		return apperrors.NewValidationError("New password must be different from current password")
	}
	return nil
}
