package compose

import "errors"

// The only error classes surfaced to callers. Probe degradation and audio
// graph-build failures are internal fallbacks, logged but never returned.
var (
	// ErrValidation marks a malformed request field, raised before any
	// process spawns. Always caller-recoverable.
	ErrValidation = errors.New("validation error")

	// ErrInvocation marks an ffmpeg process that failed to spawn or exited
	// non-zero, including cancellation. Carries captured stderr diagnostics.
	ErrInvocation = errors.New("ffmpeg invocation error")

	// ErrIO marks a filesystem failure around an otherwise successful
	// invocation (writing intermediates, reading back the output). Kept
	// distinct from ErrInvocation: disk or permissions, not encoding.
	ErrIO = errors.New("io error")
)
