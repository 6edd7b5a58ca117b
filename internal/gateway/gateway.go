// Package gateway implements an in-memory gateway emulator for exercising
// the submission client end to end without the real transaction engine.
//
// The emulator accepts submit requests, verifies their structure and
// integrity mark, holds them pending for a configurable window, then serves
// a success response to polls. Delete requests remove the stored response.
// Unknown correlation IDs get the gateway's error 1000. It is a test
// double: no persistence, no authentication checking beyond presence.
package gateway

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/beevik/etree"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/openfiling/go-govtalk/pkg/govtalk"
	"github.com/openfiling/go-govtalk/pkg/irmark"
	"github.com/openfiling/go-govtalk/pkg/schema"
)

// Config controls emulator behavior.
type Config struct {
	// Endpoint is the URL advertised in ResponseEndPoint, normally the
	// emulator's own address.
	Endpoint string
	// PendingWindow is how long a submission stays pending before a poll
	// sees the final response.
	PendingWindow time.Duration
	// PollInterval is advertised to the client on acknowledgements.
	PollInterval time.Duration
}

// DefaultConfig returns emulator defaults.
func DefaultConfig() *Config {
	return &Config{
		PendingWindow: 4 * time.Second,
		PollInterval:  1 * time.Second,
	}
}

type submission struct {
	class   string
	utr     string
	irmark  string
	readyAt time.Time
}

// Gateway is the emulator. Create with New and mount Handler on a server.
type Gateway struct {
	cfg       *Config
	digest    irmark.Generator
	validator *schema.Validator
	logger    *slog.Logger

	mu          sync.Mutex
	nextID      int
	submissions map[string]*submission
}

// New creates an emulator.
func New(cfg *Config, logger *slog.Logger) *Gateway {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		cfg:         cfg,
		digest:      irmark.New(),
		validator:   schema.New(),
		logger:      logger.With("component", "gateway"),
		submissions: make(map[string]*submission),
	}
}

// Handler returns the HTTP handler serving the GovTalk endpoint.
func (g *Gateway) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/", g.handleMessage)
	return r
}

func (g *Gateway) handleMessage(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		g.writeError(w, "", "1001", "not well-formed XML")
		return
	}

	qualifier := textAt(doc, "/GovTalkMessage/Header/MessageDetails/Qualifier")
	function := textAt(doc, "/GovTalkMessage/Header/MessageDetails/Function")
	correlationID := textAt(doc, "/GovTalkMessage/Header/MessageDetails/CorrelationID")

	g.logger.Debug("message received",
		"qualifier", qualifier, "function", function, "correlationId", correlationID)

	switch {
	case qualifier == "request" && function == "submit":
		g.handleSubmit(w, doc)
	case qualifier == "poll":
		g.handlePoll(w, correlationID)
	case qualifier == "request" && function == "delete":
		g.handleDelete(w, correlationID)
	default:
		g.writeError(w, correlationID, "1002",
			fmt.Sprintf("unsupported qualifier %q function %q", qualifier, function))
	}
}

func (g *Gateway) handleSubmit(w http.ResponseWriter, doc *etree.Document) {
	if err := g.validator.ValidateOutbound(doc); err != nil {
		g.writeError(w, "", "3001", err.Error())
		return
	}

	claimed := textAt(doc, "//IRheader/IRmark")
	body := doc.FindElement("/GovTalkMessage/Body")
	mark := body.FindElement("//IRmark")
	mark.SetText("")
	computed, err := g.digest.Compute(body)
	if err != nil {
		g.writeError(w, "", "3002", "integrity mark could not be recomputed")
		return
	}
	if computed != claimed {
		g.logger.Warn("integrity mark mismatch", "claimed", claimed, "computed", computed)
		g.writeError(w, "", "3003", "IRmark does not match message body")
		return
	}

	sub := &submission{
		class:   textAt(doc, "/GovTalkMessage/Header/MessageDetails/Class"),
		utr:     textAt(doc, "//IRheader/Keys/Key"),
		irmark:  claimed,
		readyAt: time.Now().Add(g.cfg.PendingWindow),
	}

	g.mu.Lock()
	g.nextID++
	// Hex correlation IDs in the transaction engine's style.
	correlationID := fmt.Sprintf("123456%010X", g.nextID)
	g.submissions[correlationID] = sub
	g.mu.Unlock()

	g.logger.Info("submission accepted for processing",
		"correlationId", correlationID, "utr", sub.utr)
	g.writeAcknowledgement(w, correlationID)
}

func (g *Gateway) handlePoll(w http.ResponseWriter, correlationID string) {
	g.mu.Lock()
	sub, ok := g.submissions[correlationID]
	g.mu.Unlock()

	if !ok {
		g.writeError(w, correlationID, "1000", "Correlation ID not recognised")
		return
	}
	if time.Now().Before(sub.readyAt) {
		g.writeAcknowledgement(w, correlationID)
		return
	}
	g.writeSuccess(w, correlationID, sub)
}

func (g *Gateway) handleDelete(w http.ResponseWriter, correlationID string) {
	g.mu.Lock()
	_, ok := g.submissions[correlationID]
	if ok {
		delete(g.submissions, correlationID)
	}
	g.mu.Unlock()

	if !ok {
		g.writeError(w, correlationID, "1000", "Correlation ID not recognised")
		return
	}

	doc, err := govtalk.NewMessage(
		govtalk.WithQualifier(govtalk.QualifierResponse),
		govtalk.WithFunction(govtalk.FunctionDelete),
		govtalk.WithCorrelationID(correlationID),
	).Build()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	g.logger.Info("stored response deleted", "correlationId", correlationID)
	g.write(w, doc)
}

func (g *Gateway) writeAcknowledgement(w http.ResponseWriter, correlationID string) {
	doc, err := govtalk.NewMessage(
		govtalk.WithQualifier(govtalk.QualifierAcknowledgement),
		govtalk.WithFunction(govtalk.FunctionSubmit),
		govtalk.WithCorrelationID(correlationID),
		govtalk.WithResponseEndpoint(g.cfg.Endpoint, g.cfg.PollInterval),
	).Build()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	g.write(w, doc)
}

func (g *Gateway) writeSuccess(w http.ResponseWriter, correlationID string, sub *submission) {
	success := etree.NewElement("SuccessResponse")
	success.CreateAttr("xmlns", govtalk.NsSuccessResponse)
	success.CreateElement("IRmarkReceipt").CreateElement("Message").
		SetText(sub.irmark)
	msg := success.CreateElement("Message")
	msg.CreateAttr("code", "0000")
	msg.SetText(fmt.Sprintf("HMRC has received the %s document ref: %s at %s",
		sub.class, sub.utr, time.Now().UTC().Format(time.RFC3339)))

	doc, err := govtalk.NewMessage(
		govtalk.WithQualifier(govtalk.QualifierResponse),
		govtalk.WithFunction(govtalk.FunctionSubmit),
		govtalk.WithCorrelationID(correlationID),
		govtalk.WithResponseEndpoint(g.cfg.Endpoint, g.cfg.PollInterval),
		govtalk.WithBody(success),
	).Build()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	g.write(w, doc)
}

func (g *Gateway) writeError(w http.ResponseWriter, correlationID, number, text string) {
	opts := []govtalk.Option{
		govtalk.WithQualifier(govtalk.QualifierError),
		govtalk.WithError(number, "fatal", text),
	}
	if correlationID != "" {
		opts = append(opts, govtalk.WithCorrelationID(correlationID))
	}
	doc, err := govtalk.NewMessage(opts...).Build()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	g.logger.Warn("returning gateway error", "number", number, "text", text)
	g.write(w, doc)
}

func (g *Gateway) write(w http.ResponseWriter, doc *etree.Document) {
	out, err := doc.WriteToBytes()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

func textAt(doc *etree.Document, path string) string {
	if e := doc.FindElement(path); e != nil {
		return e.Text()
	}
	return ""
}
