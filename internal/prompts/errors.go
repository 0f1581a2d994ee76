// Package prompts holds the instructions and output contracts sent to the
// vision model for each kind of call.
package prompts

import "errors"

// ErrInvalidStage indicates an unknown prompt stage.
var ErrInvalidStage = errors.New("stage must be caption, candidates, details, or generation")
