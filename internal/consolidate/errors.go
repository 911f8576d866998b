package consolidate

import "errors"

var (
	ErrUnknownField       = errors.New("unknown itinerary field")
	ErrUnknownParticipant = errors.New("participant not on roster")
	ErrCityNotOnRoute     = errors.New("city is not on the event route")
)
