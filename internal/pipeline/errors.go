package pipeline

import (
	"errors"

	"github.com/luminalights/lumina/internal/anthropic"
	"github.com/luminalights/lumina/internal/ratelimit"
	"github.com/luminalights/lumina/internal/request"
)

// Code is the transport-level error code surfaced to callers. Internal
// classification detail (status codes, kinds) is logged but never returned.
type Code string

const (
	CodeInvalidArgument    Code = "invalid-argument"
	CodeResourceExhausted  Code = "resource-exhausted"
	CodeFailedPrecondition Code = "failed-precondition"
	CodeUnavailable        Code = "unavailable"
	CodeInternal           Code = "internal"
)

// CodeFor maps an internal pipeline error to its external code.
func CodeFor(err error) Code {
	var ve *request.ValidationError
	if errors.As(err, &ve) {
		return CodeInvalidArgument
	}
	var rle *ratelimit.RateLimitError
	if errors.As(err, &rle) {
		return CodeResourceExhausted
	}
	var ce *anthropic.ClientError
	if errors.As(err, &ce) {
		switch ce.Kind {
		case anthropic.KindAuthentication:
			return CodeFailedPrecondition
		case anthropic.KindRateLimit, anthropic.KindOverloaded:
			return CodeUnavailable
		default:
			return CodeInternal
		}
	}
	return CodeInternal
}

// UserMessage is the short, non-technical text shown to the end user for a
// given code.
func UserMessage(code Code) string {
	switch code {
	case CodeInvalidArgument:
		return "That request couldn't be understood. Please try rephrasing it."
	case CodeResourceExhausted:
		return "You're sending requests a little too fast. Give it a minute and try again."
	case CodeFailedPrecondition:
		return "The lighting assistant isn't set up yet. Please check the configuration."
	case CodeUnavailable:
		return "The lighting assistant is busy right now. Please try again shortly."
	default:
		return "Something went wrong. Please try again."
	}
}
