package validator

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

const maxCaptionLength = 280

func ValidateRegister(email, username, fullname, password string) ValidationErrors {
	errs := make(ValidationErrors)

	validateEmail(email, errs)
	validateUsername(username, errs)
	validateFullname(fullname, errs)

	// Password
	if len(password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
	} else if len(password) > 72 {
		errs.Add("password", "Password is too long")
	}

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(email) == "" {
		errs.Add("email", "Email is required")
	}
	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

func ValidateProfileUpdate(fullname, username, bio string) ValidationErrors {
	errs := make(ValidationErrors)

	validateUsername(username, errs)
	validateFullname(fullname, errs)

	if utf8.RuneCountInString(bio) > 160 {
		errs.Add("bio", "Bio is too long")
	}

	return errs
}

func ValidateCaption(caption string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(caption) == "" {
		errs.Add("caption", "Caption is required")
	} else if utf8.RuneCountInString(caption) > maxCaptionLength {
		errs.Add("caption", "Caption must be at most 280 characters")
	}

	return errs
}

func validateEmail(email string, errs ValidationErrors) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}
}

func validateUsername(username string, errs ValidationErrors) {
	username = strings.TrimSpace(username)
	if username == "" {
		errs.Add("username", "Username is required")
	} else if len(username) < 3 {
		errs.Add("username", "Username must be at least 3 characters")
	} else if len(username) > 30 {
		errs.Add("username", "Username is too long")
	} else if !usernameRegex.MatchString(username) {
		errs.Add("username", "Username can only contain letters, numbers and _")
	}
}

func validateFullname(fullname string, errs ValidationErrors) {
	fullname = strings.TrimSpace(fullname)
	if fullname == "" {
		errs.Add("fullname", "Full name is required")
	} else if len(fullname) > 100 {
		errs.Add("fullname", "Full name is too long")
	}
}
