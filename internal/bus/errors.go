package bus

import "errors"

// ErrStepLimit is returned by Run when the step budget is used up before BRK
var ErrStepLimit = errors.New("bus: step limit reached before BRK")
