package resource

import "time"

// Call outcomes reported to an Observer.
const (
	OutcomeOK         = "ok"
	OutcomeNetwork    = "network_error"
	OutcomeServer     = "server_error"
	OutcomeValidation = "validation_error"
)

// Observer receives one event per client call.
type Observer interface {
	ObserveCall(endpoint, op, outcome string, elapsed time.Duration)
}

func outcomeOf(err error) string {
	switch err.(type) {
	case nil:
		return OutcomeOK
	case *NetworkError:
		return OutcomeNetwork
	case *ValidationError:
		return OutcomeValidation
	default:
		return OutcomeServer
	}
}
