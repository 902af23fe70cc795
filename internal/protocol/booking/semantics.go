package booking

import "fmt"

// Semantics selects how the server treats retransmitted requests.
type Semantics string

const (
	// AtLeastOnce re-executes every received request. Non-idempotent
	// operations observably repeat when a reply is lost and the client
	// retransmits.
	AtLeastOnce Semantics = "at-least-once"

	// AtMostOnce executes each (client, request id) once and replays the
	// stored reply on retransmission.
	AtMostOnce Semantics = "at-most-once"
)

// ParseSemantics validates a semantics argument from the command line.
func ParseSemantics(s string) (Semantics, error) {
	switch Semantics(s) {
	case AtLeastOnce, AtMostOnce:
		return Semantics(s), nil
	default:
		return "", fmt.Errorf("unknown invocation semantics %q (want %q or %q)", s, AtLeastOnce, AtMostOnce)
	}
}
