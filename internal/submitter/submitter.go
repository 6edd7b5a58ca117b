// Package submitter drives a CT600 return through the gateway submission
// protocol: build, send, poll until a final response, then delete the
// stored response to confirm receipt.
//
// One Controller handles one submission lifecycle at a time. Nothing is
// persisted between lifecycles; the raw response trail is returned to the
// caller for audit.
package submitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/beevik/etree"
	"github.com/cenkalti/backoff/v4"

	"github.com/openfiling/go-govtalk/internal/config"
	"github.com/openfiling/go-govtalk/internal/transport"
	"github.com/openfiling/go-govtalk/pkg/ct600"
	"github.com/openfiling/go-govtalk/pkg/govtalk"
	"github.com/openfiling/go-govtalk/pkg/irmark"
	"github.com/openfiling/go-govtalk/pkg/schema"
)

// State is the submission lifecycle position.
type State int

const (
	// StateBuilt: envelope assembled and validated, nothing sent.
	StateBuilt State = iota
	// StateSent: the submit request has been transmitted.
	StateSent
	// StatePolling: the gateway acknowledged and processing is in progress.
	StatePolling
	// StateAccepted: the gateway returned a success response.
	StateAccepted
	// StateRejected: the gateway returned a business rejection. Terminal.
	StateRejected
	// StateDeleting: the delete request for the stored response is in flight.
	StateDeleting
	// StateCompleted: the lifecycle finished cleanly, delete confirmed.
	StateCompleted
	// StateFailed: transport retries or the poll budget were exhausted.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateSent:
		return "sent"
	case StatePolling:
		return "polling"
	case StateAccepted:
		return "accepted"
	case StateRejected:
		return "rejected"
	case StateDeleting:
		return "deleting"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// ErrPollTimeout is returned when the poll budget is exhausted before the
// gateway produces a final response. The submission may still succeed on
// the gateway side; the correlation ID in the result allows a later manual
// follow-up.
var ErrPollTimeout = errors.New("poll budget exhausted before final response")

// Transport posts one envelope and returns the raw response bytes.
type Transport interface {
	Exchange(ctx context.Context, endpoint string, message []byte) ([]byte, error)
}

// Result is the outcome of a submission lifecycle.
type Result struct {
	State         State
	CorrelationID string
	// Messages are the gateway's success texts, verbatim.
	Messages []string
	// Polls counts poll requests actually sent.
	Polls int
	// Responses is the raw byte trail of every gateway response received,
	// in order, retained for audit.
	Responses [][]byte
}

// Controller runs submission lifecycles against one configured gateway.
type Controller struct {
	transport Transport
	cfg       *config.Config
	digest    irmark.Generator
	validator *schema.Validator
	logger    *slog.Logger
}

// New creates a Controller. A nil transport gets the default HTTP client;
// a nil logger falls back to slog's default.
func New(t Transport, cfg *config.Config, logger *slog.Logger) *Controller {
	if t == nil {
		t = transport.NewClient(&transport.Config{Timeout: cfg.Gateway.Timeout})
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		transport: t,
		cfg:       cfg,
		digest:    irmark.New(),
		validator: schema.New(),
		logger:    logger.With("component", "submitter"),
	}
}

// BuildSubmission assembles the complete submit envelope for a return,
// computes the integrity mark and validates the result. No network
// activity. The returned document serializes to exactly the bytes Submit
// would transmit.
func (c *Controller) BuildSubmission(ret *ct600.Return) (*etree.Document, error) {
	body, err := ret.IRenvelope()
	if err != nil {
		return nil, fmt.Errorf("building return body: %w", err)
	}

	doc, err := govtalk.NewMessage(
		govtalk.WithQualifier(govtalk.QualifierRequest),
		govtalk.WithFunction(govtalk.FunctionSubmit),
		govtalk.WithGatewayTest(c.cfg.Gateway.Test),
		govtalk.WithCredentials(govtalk.Credentials{
			SenderID: c.cfg.Credentials.SenderID,
			Password: c.cfg.Credentials.Password,
			Email:    c.cfg.Credentials.Email,
		}),
		govtalk.WithKey("UTR", ret.UTR()),
		govtalk.WithChannel(govtalk.Channel{
			VendorID: c.cfg.Channel.VendorID,
			Product:  c.cfg.Channel.Product,
			Version:  c.cfg.Channel.Version,
		}),
		govtalk.WithBody(body),
	).Build()
	if err != nil {
		return nil, fmt.Errorf("building envelope: %w", err)
	}

	mark, err := govtalk.InsertIRmark(doc, c.digest)
	if err != nil {
		return nil, fmt.Errorf("computing integrity mark: %w", err)
	}
	c.logger.Debug("integrity mark computed", "irmark", mark)

	if err := c.validator.ValidateOutbound(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Submit runs the full lifecycle: send the return, poll until the gateway
// produces a final response, then delete the stored response. The returned
// Result is non-nil whenever a correlation ID was assigned, even on error,
// so the caller can follow up manually.
func (c *Controller) Submit(ctx context.Context, ret *ct600.Return) (*Result, error) {
	doc, err := c.BuildSubmission(ret)
	if err != nil {
		return nil, err
	}
	raw, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serializing envelope: %w", err)
	}

	result := &Result{State: StateBuilt}

	c.logger.Info("submitting return", "utr", ret.UTR(), "test", c.cfg.Gateway.Test)
	resp, err := c.exchange(ctx, raw, result)
	if err != nil {
		result.State = StateFailed
		return result, err
	}
	result.State = StateSent
	result.CorrelationID = resp.CorrelationID

	resp, err = c.pollUntilFinal(ctx, resp, result)
	if err != nil {
		result.State = StateFailed
		return result, err
	}

	switch resp.Outcome {
	case govtalk.Rejected:
		result.State = StateRejected
		c.logger.Error("submission rejected",
			"correlationId", resp.CorrelationID, "errors", len(resp.Messages))
		return result, &govtalk.RejectedError{
			CorrelationID: resp.CorrelationID,
			Messages:      resp.Messages,
		}

	case govtalk.Accepted:
		result.State = StateAccepted
		result.Messages = resp.Messages
		c.logger.Info("submission accepted", "correlationId", resp.CorrelationID)
	}

	// Delete confirms receipt of the stored response. A failure here is not
	// a failure of the accepted submission.
	if result.CorrelationID != "" {
		result.State = StateDeleting
		if err := c.deleteResponse(ctx, result); err != nil {
			c.logger.Warn("delete of stored response failed; submission remains accepted",
				"correlationId", result.CorrelationID, "error", err)
			result.State = StateAccepted
			return result, nil
		}
	}

	result.State = StateCompleted
	return result, nil
}

// pollUntilFinal repeats poll requests until the gateway returns something
// other than Pending, or the budget runs out.
func (c *Controller) pollUntilFinal(ctx context.Context, resp *govtalk.Response, result *Result) (*govtalk.Response, error) {
	endpoint := c.cfg.Gateway.URL

	for resp.Outcome == govtalk.Pending {
		if resp.CorrelationID == "" {
			return nil, govtalk.ErrMissingCorrelationID
		}
		if result.Polls >= c.cfg.Polling.MaxPolls {
			c.logger.Error("poll budget exhausted",
				"correlationId", resp.CorrelationID, "polls", result.Polls)
			return nil, ErrPollTimeout
		}
		result.State = StatePolling

		if resp.ResponseEndpoint != "" {
			endpoint = resp.ResponseEndpoint
		}
		interval := resp.PollInterval
		if interval <= 0 {
			interval = c.cfg.Polling.Interval
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}

		doc, err := govtalk.NewMessage(
			govtalk.WithQualifier(govtalk.QualifierPoll),
			govtalk.WithFunction(govtalk.FunctionSubmit),
			govtalk.WithCorrelationID(resp.CorrelationID),
		).Build()
		if err != nil {
			return nil, err
		}
		raw, err := doc.WriteToBytes()
		if err != nil {
			return nil, fmt.Errorf("serializing poll: %w", err)
		}

		result.Polls++
		c.logger.Debug("polling",
			"correlationId", resp.CorrelationID, "poll", result.Polls, "endpoint", endpoint)

		next, err := c.exchangeAt(ctx, endpoint, raw, result)
		if err != nil {
			return nil, err
		}
		resp = next
	}

	return resp, nil
}

func (c *Controller) deleteResponse(ctx context.Context, result *Result) error {
	doc, err := govtalk.NewMessage(
		govtalk.WithQualifier(govtalk.QualifierRequest),
		govtalk.WithFunction(govtalk.FunctionDelete),
		govtalk.WithCorrelationID(result.CorrelationID),
	).Build()
	if err != nil {
		return err
	}
	raw, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("serializing delete: %w", err)
	}

	resp, err := c.exchange(ctx, raw, result)
	if err != nil {
		return err
	}
	if resp.Outcome != govtalk.Deleted {
		return fmt.Errorf("unexpected outcome %s for delete request", resp.Outcome)
	}
	c.logger.Info("stored response deleted", "correlationId", result.CorrelationID)
	return nil
}

func (c *Controller) exchange(ctx context.Context, message []byte, result *Result) (*govtalk.Response, error) {
	return c.exchangeAt(ctx, c.cfg.Gateway.URL, message, result)
}

// exchangeAt posts one envelope with the transient retry budget applied,
// then classifies the response. Transport failures and malformed responses
// are retried with the same message; a response the gateway actually
// classified is final.
func (c *Controller) exchangeAt(ctx context.Context, endpoint string, message []byte, result *Result) (*govtalk.Response, error) {
	var resp *govtalk.Response
	op := func() error {
		raw, err := c.transport.Exchange(ctx, endpoint, message)
		if err != nil {
			var te *transport.TransportError
			if errors.As(err, &te) {
				c.logger.Warn("transport failure, retrying", "endpoint", endpoint, "error", err)
				return err
			}
			return backoff.Permanent(err)
		}

		// Every response received goes on the audit trail, malformed ones
		// included.
		result.Responses = append(result.Responses, raw)

		if verr := c.validator.ValidateInbound(raw); verr != nil {
			// Best-effort: structural oddities in a response are logged but
			// classification still decides the outcome.
			c.logger.Warn("response failed structural validation", "error", verr)
		}

		parsed, err := govtalk.Parse(raw)
		if err != nil {
			if errors.Is(err, govtalk.ErrMalformedResponse) {
				c.logger.Warn("malformed response, retrying", "endpoint", endpoint, "error", err)
				return err
			}
			return backoff.Permanent(err)
		}
		resp = parsed
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewExponentialBackOff(), uint64(c.cfg.Polling.TransientRetries)),
		ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, fmt.Errorf("exchange failed after retries: %w", err)
	}

	return resp, nil
}
