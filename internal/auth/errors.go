package auth

import "errors"

var (
	ErrMissingToken   = errors.New("missing token")
	ErrMissingLicense = errors.New("missing license")
	ErrEmptySecret    = errors.New("signing secret is empty")

	errNotObject = errors.New("segment is not a JSON object")
)
