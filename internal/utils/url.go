package utils

import (
	"errors"
	"net/url"
)

var (
	ErrURLEmpty   = errors.New("`url` is empty")
	ErrURLInvalid = errors.New("`url` is not a valid http(s) url")
)

// ValidateURL checks that raw parses as an absolute http or https URL.
func ValidateURL(raw string) error {
	if raw == "" {
		return ErrURLEmpty
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ErrURLInvalid
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrURLInvalid
	}

	return nil
}
