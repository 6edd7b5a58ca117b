package govtalk

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedResponse is returned when a gateway response cannot be
	// parsed as a GovTalk message or matches no classification rule.
	ErrMalformedResponse = errors.New("malformed gateway response")
	// ErrMissingCorrelationID is returned when a poll or delete message is
	// built without the correlation identifier it must carry.
	ErrMissingCorrelationID = errors.New("correlation ID is required")
	// ErrMissingBody is returned when a request message is built without a
	// body payload.
	ErrMissingBody = errors.New("request body is required")
)

// RejectedError reports a business rejection by the gateway. The texts are
// the gateway's own, carried verbatim; they are the only diagnostic the
// operator gets and are never retried automatically.
type RejectedError struct {
	CorrelationID string
	Messages      []string
}

func (e *RejectedError) Error() string {
	if len(e.Messages) == 0 {
		return "submission rejected by gateway"
	}
	return fmt.Sprintf("submission rejected by gateway: %s",
		strings.Join(e.Messages, "; "))
}
