package scoring

import "errors"

// ErrNoScores is returned when neither source produced a usable dimension.
var ErrNoScores = errors.New("no usable scores from prediction services")
