package jobs

import "errors"

// ErrDrainInProgress is returned when a manual drain is requested while a
// scheduled pass is still running
var ErrDrainInProgress = errors.New("audit queue drain already in progress")
