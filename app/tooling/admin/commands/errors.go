package commands

import "errors"

// ErrHelp provides context that help was given.
var ErrHelp = errors.New("provided help")
