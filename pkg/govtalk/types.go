package govtalk

import (
	"time"
)

// Namespace constants for the GovTalk envelope and its payloads
const (
	NsEnvelope        = "http://www.govtalk.gov.uk/CM/envelope"
	NsCT              = "http://www.govtalk.gov.uk/taxation/CT/5"
	NsSuccessResponse = "http://www.inlandrevenue.gov.uk/SuccessResponse"
)

// EnvelopeVersion is the GovTalk envelope version this package speaks.
const EnvelopeVersion = "2.0"

// ClassCT600 is the message class for CT600 Company Tax Return filing.
const ClassCT600 = "HMRC-CT-CT600"

// Qualifier identifies the role of a message in the protocol.
type Qualifier string

const (
	QualifierRequest         Qualifier = "request"
	QualifierPoll            Qualifier = "poll"
	QualifierAcknowledgement Qualifier = "acknowledgement"
	QualifierResponse        Qualifier = "response"
	QualifierError           Qualifier = "error"
)

// Function identifies the gateway operation a message belongs to.
type Function string

const (
	FunctionSubmit Function = "submit"
	FunctionDelete Function = "delete"
)

// Credentials carries the sender identity presented in SenderDetails.
// Authentication is the GovTalk "clear" method: the password travels in the
// envelope, so the transport must be TLS against a production gateway.
type Credentials struct {
	SenderID string
	Password string
	Email    string
}

// Channel identifies the filing software to the gateway, carried in
// GovTalkDetails/ChannelRouting.
type Channel struct {
	VendorID string
	Product  string
	Version  string
}

// Key is a routing key carried in GovTalkDetails/Keys, e.g. the UTR for a
// CT600 submission.
type Key struct {
	Type  string
	Value string
}

// Outcome is the classification assigned to a gateway response. Every
// parseable response maps to exactly one outcome.
type Outcome int

const (
	// Pending: the gateway acknowledged the submission and is still
	// processing it; the caller should poll again.
	Pending Outcome = iota
	// Accepted: the submission was processed successfully.
	Accepted
	// Rejected: the gateway returned one or more errors.
	Rejected
	// Deleted: the gateway acknowledged a delete request.
	Deleted
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case Deleted:
		return "deleted"
	}
	return "unknown"
}

// Response is a classified gateway response.
type Response struct {
	Outcome       Outcome
	CorrelationID string

	// ResponseEndpoint and PollInterval are the gateway's instructions for
	// the next poll, present on acknowledgements and responses.
	ResponseEndpoint string
	PollInterval     time.Duration

	// Messages holds gateway-supplied texts verbatim: error texts for
	// Rejected, success messages for Accepted.
	Messages []string

	// Raw is the undecoded response body, retained for audit.
	Raw []byte
}
