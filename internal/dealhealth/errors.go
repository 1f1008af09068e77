package dealhealth

import "errors"

var ErrNotFound = errors.New("deal health not found")
