package handler

import (
	"errors"
	"net/url"
	"regexp"
)

var (
	errInvalidProvider = errors.New("provider must be upto 20 characters and must include only a-z, 0-9, - and _")
	errInvalidCCU      = errors.New("redirect_url must be present, must be upto 200 characters and a valid url")
	errInvalidCode     = errors.New("code must be present, must be upto 1000 characters and url-safe")
	errInvalidState    = errors.New("state must be present, must be upto 2000 characters and url-safe")
)

var (
	providerRegex = regexp.MustCompile(`^[a-z0-9_-]+$`)
	// Authorization codes and state tokens are url-safe strings. Apple's codes
	// include dots.
	urlSafeRegex = regexp.MustCompile(`^[a-zA-Z0-9._~+/=-]+$`)
)

// validateProvider validates the provider name parameter when received from an external user.
func validateProvider(p string) error {
	if len(p) == 0 || len(p) > 20 {
		return errInvalidProvider
	}

	if !providerRegex.MatchString(p) {
		return errInvalidProvider
	}

	return nil
}

// validateClientCallbackURL validates the client callback URL param (accepted as a query parameter named redirect_url).
func validateClientCallbackURL(u string) error {
	if len(u) == 0 || len(u) > 200 {
		return errInvalidCCU
	}

	if _, err := url.ParseRequestURI(u); err != nil {
		return errInvalidCCU
	}

	return nil
}

// validateAuthCode validates the authorization code received on the callback.
func validateAuthCode(code string) error {
	if len(code) == 0 || len(code) > 1000 {
		return errInvalidCode
	}

	if !urlSafeRegex.MatchString(code) {
		return errInvalidCode
	}

	return nil
}

// validateStateParam syntactically validates the state parameter received on the callback.
// The cryptographic validation happens later, in the auth service.
func validateStateParam(state string) error {
	if len(state) == 0 || len(state) > 2000 {
		return errInvalidState
	}

	if !urlSafeRegex.MatchString(state) {
		return errInvalidState
	}

	return nil
}
