package errors

import "strings"

// Reason is the best-effort classification of a backend message. The backend does not send
// structured error codes, so business-rule rejections are recognised by their wording.
type Reason string

const (
	ReasonUnknown            Reason = ""
	ReasonConnection         Reason = "connection"
	ReasonInvalidCredentials Reason = "invalid_credentials"
	ReasonEmailNotConfirmed  Reason = "email_not_confirmed"
	ReasonAlreadyRegistered  Reason = "already_registered"
	ReasonPasswordTooShort   Reason = "password_too_short"
	ReasonPasswordMismatch   Reason = "password_mismatch"
	ReasonPasswordIncorrect  Reason = "password_incorrect"
	ReasonDomainRestricted   Reason = "domain_restricted"
	ReasonMissingFields      Reason = "missing_fields"
	ReasonInvalidEmail       Reason = "invalid_email"
	ReasonServerError        Reason = "server_error"
	ReasonServiceUnavailable Reason = "service_unavailable"
	ReasonTooManyRequests    Reason = "too_many_requests"
	ReasonSignupRateLimited  Reason = "signup_rate_limited"
	ReasonGenericHTTP        Reason = "generic_http"
	ReasonDatabase           Reason = "database"
)

const (
	defaultFriendlyMessage   = "An error occurred. Please try again."
	friendlyPassthroughLimit = 100
)

var friendlyMessages = map[Reason]string{
	ReasonConnection:         "Connection error. Please check your internet connection and try again.",
	ReasonInvalidCredentials: "Invalid email or password. Please try again.",
	ReasonEmailNotConfirmed:  "Please verify your email address before signing in.",
	ReasonAlreadyRegistered:  "An account with this email already exists.",
	ReasonPasswordTooShort:   "Password must be at least 6 characters long.",
	ReasonPasswordMismatch:   "Passwords do not match.",
	ReasonPasswordIncorrect:  "Incorrect password. Please try again.",
	ReasonDomainRestricted:   "Access restricted to Kuwait University members only.",
	ReasonMissingFields:      "Please fill in all required fields.",
	ReasonInvalidEmail:       "Please enter a valid email address.",
	ReasonServerError:        "Server error. Please try again later.",
	ReasonServiceUnavailable: "Service temporarily unavailable. Please try again later.",
	ReasonTooManyRequests:    "Too many requests. Please wait a moment and try again.",
	ReasonSignupRateLimited:  "Too many signup attempts. Please wait 5-10 minutes before trying again.",
	ReasonGenericHTTP:        "Something went wrong. Please try again.",
	ReasonDatabase:           "Database error. Please try again later.",
}

// Classify maps raw backend text onto a Reason. Rules are checked in order; the first match wins.
func Classify(message string) Reason {
	has := func(sub string) bool { return strings.Contains(message, sub) }

	switch {
	case has("fetch") || has("network") || has("connection refused") || has("no such host"):
		return ReasonConnection
	case has("Invalid login credentials") || has("Invalid email or password"):
		return ReasonInvalidCredentials
	case has("Email not confirmed") || has("email_confirmed_at"):
		return ReasonEmailNotConfirmed
	case has("User already registered") || has("already exists"):
		return ReasonAlreadyRegistered
	}

	if has("Password") {
		switch {
		case has("too short") || has("at least"):
			return ReasonPasswordTooShort
		case has("match"):
			return ReasonPasswordMismatch
		case has("incorrect") || has("wrong"):
			return ReasonPasswordIncorrect
		}
	}

	switch {
	case has("domain") || has("restricted") || has("Kuwait University"):
		return ReasonDomainRestricted
	case has("required") || has("missing"):
		return ReasonMissingFields
	case has("email") && has("invalid"):
		return ReasonInvalidEmail
	case has("500") || has("Internal Server Error"):
		return ReasonServerError
	case has("503") || has("Service Unavailable"):
		return ReasonServiceUnavailable
	case has("429") || has("Too Many Requests"):
		return ReasonTooManyRequests
	case has("rate limit") || has("too many signup"):
		return ReasonSignupRateLimited
	case has("HTTP") || has("status"):
		return ReasonGenericHTTP
	case has("supabase") || has("Supabase"):
		return ReasonDatabase
	}
	return ReasonUnknown
}

// FriendlyMessage renders err for an end user. Raw technical text is only passed through when it is
// already short and readable.
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}
	if customErr, ok := AsCustomError(err); ok {
		switch customErr.Type {
		case ErrorTypeNetwork:
			return friendlyMessages[ReasonConnection]
		case ErrorTypeValidation:
			return customErr.Message
		}
	}
	return FriendlyText(err.Error())
}

// FriendlyText is FriendlyMessage for a bare message string.
func FriendlyText(message string) string {
	if message == "" || message == "[object Object]" {
		return defaultFriendlyMessage
	}
	if reason := Classify(message); reason != ReasonUnknown {
		return friendlyMessages[reason]
	}
	if len(message) < friendlyPassthroughLimit && !strings.Contains(message, "Error:") && !strings.Contains(message, "Exception:") {
		return message
	}
	return defaultFriendlyMessage
}
