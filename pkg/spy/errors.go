package spy

import "errors"

var (
	// ErrInvalidConfig is returned for out-of-range configuration values.
	ErrInvalidConfig = errors.New("invalid spy configuration")

	// ErrNoPlan is returned when an operation needs a plan and none is installed.
	ErrNoPlan = errors.New("test plan is not set")

	// ErrPlanAlreadySet is returned when a plan is installed twice without Reset.
	ErrPlanAlreadySet = errors.New("test plan is already set")

	// ErrAlreadyStarted is returned by Start, and by settings fixed at start,
	// while the spy is running.
	ErrAlreadyStarted = errors.New("spy is already started")

	// ErrThreadsPlanConflict is returned when more than one service thread is
	// combined with a plan that is not multithreaded.
	ErrThreadsPlanConflict = errors.New("plan does not support multiple service threads")

	// ErrDelayInterrupted is returned by Wait when the delay is cut short.
	ErrDelayInterrupted = errors.New("response delay interrupted")
)
