package sync

import "errors"

var ErrUnknownMode = errors.New("unknown sync mode")
