package config

import "errors"

var ErrMissingCredential = errors.New("missing or placeholder credential")
