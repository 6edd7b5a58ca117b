package govtalk

import (
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
)

// Builder helps construct GovTalk messages
type Builder struct {
	class         string
	qualifier     Qualifier
	function      Function
	transactionID string
	correlationID string
	gatewayTest   bool
	credentials   *Credentials
	keys          []Key
	channel       *Channel
	body          *etree.Element

	// response-side fields, used by the gateway emulator
	responseEndpoint string
	pollInterval     time.Duration
	gatewayError     *gatewayError
}

type gatewayError struct {
	number   string
	severity string
	text     string
}

// Option represents a functional option for Builder
type Option func(*Builder)

// NewMessage creates a new message builder with the given options
func NewMessage(opts ...Option) *Builder {
	b := &Builder{
		class:    ClassCT600,
		function: FunctionSubmit,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// WithClass sets the message class
func WithClass(class string) Option {
	return func(b *Builder) { b.class = class }
}

// WithQualifier sets the message qualifier
func WithQualifier(q Qualifier) Option {
	return func(b *Builder) { b.qualifier = q }
}

// WithFunction sets the gateway function
func WithFunction(f Function) Option {
	return func(b *Builder) { b.function = f }
}

// WithTransactionID sets an explicit transaction ID; one is generated
// otherwise for request qualifiers
func WithTransactionID(id string) Option {
	return func(b *Builder) { b.transactionID = id }
}

// WithCorrelationID sets the correlation identifier assigned by the gateway
func WithCorrelationID(id string) Option {
	return func(b *Builder) { b.correlationID = id }
}

// WithGatewayTest marks the message for the test-in-live gateway
func WithGatewayTest(test bool) Option {
	return func(b *Builder) { b.gatewayTest = test }
}

// WithCredentials sets the sender identity and authentication
func WithCredentials(c Credentials) Option {
	return func(b *Builder) { b.credentials = &c }
}

// WithKey adds a routing key, e.g. the UTR
func WithKey(keyType, value string) Option {
	return func(b *Builder) {
		b.keys = append(b.keys, Key{Type: keyType, Value: value})
	}
}

// WithChannel sets the channel routing identification
func WithChannel(c Channel) Option {
	return func(b *Builder) { b.channel = &c }
}

// WithBody sets the body payload. The element is adopted into the message
// document; the caller must not mutate it afterwards.
func WithBody(body *etree.Element) Option {
	return func(b *Builder) { b.body = body }
}

// WithResponseEndpoint sets the endpoint and poll interval the recipient
// should use for subsequent polls. Used on acknowledgements and responses.
func WithResponseEndpoint(url string, interval time.Duration) Option {
	return func(b *Builder) {
		b.responseEndpoint = url
		b.pollInterval = interval
	}
}

// WithError attaches a fatal GovTalk error block. Used on error qualifiers.
func WithError(number, severity, text string) Option {
	return func(b *Builder) {
		b.gatewayError = &gatewayError{number: number, severity: severity, text: text}
	}
}

// validate checks the qualifier-dependent required fields
func (b *Builder) validate() error {
	if b.class == "" {
		return fmt.Errorf("message class is required")
	}
	switch b.qualifier {
	case QualifierRequest:
		if b.function == FunctionSubmit && b.body == nil {
			return ErrMissingBody
		}
		if b.function == FunctionDelete && b.correlationID == "" {
			return ErrMissingCorrelationID
		}
	case QualifierPoll:
		if b.correlationID == "" {
			return ErrMissingCorrelationID
		}
	case QualifierAcknowledgement, QualifierResponse, QualifierError:
		// Gateway-side qualifiers; no client-side requirements.
	default:
		return fmt.Errorf("unsupported qualifier %q", b.qualifier)
	}
	return nil
}

// Build assembles the complete GovTalk message document. The returned
// document is ready for IRmark insertion and serialization; it is not
// serialized here so the bytes that are eventually written are the only
// serialization that ever happens.
func (b *Builder) Build() (*etree.Document, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("GovTalkMessage")
	root.CreateAttr("xmlns", NsEnvelope)

	root.CreateElement("EnvelopeVersion").SetText(EnvelopeVersion)

	header := root.CreateElement("Header")
	b.buildMessageDetails(header)
	b.buildSenderDetails(header)

	b.buildGovTalkDetails(root)

	body := root.CreateElement("Body")
	if b.body != nil {
		body.AddChild(b.body)
	}

	return doc, nil
}

func (b *Builder) buildMessageDetails(header *etree.Element) {
	md := header.CreateElement("MessageDetails")
	md.CreateElement("Class").SetText(b.class)
	md.CreateElement("Qualifier").SetText(string(b.qualifier))
	md.CreateElement("Function").SetText(string(b.function))

	if b.transactionID == "" && b.qualifier == QualifierRequest && b.function == FunctionSubmit {
		b.transactionID = uuid.New().String()
	}
	if b.transactionID != "" {
		md.CreateElement("TransactionID").SetText(b.transactionID)
	}
	if b.correlationID != "" {
		md.CreateElement("CorrelationID").SetText(b.correlationID)
	}
	if b.responseEndpoint != "" {
		rep := md.CreateElement("ResponseEndPoint")
		rep.CreateAttr("PollInterval", strconv.FormatFloat(b.pollInterval.Seconds(), 'f', -1, 64))
		rep.SetText(b.responseEndpoint)
	}
	if b.gatewayTest {
		md.CreateElement("GatewayTest").SetText("1")
	}
}

func (b *Builder) buildSenderDetails(header *etree.Element) {
	if b.credentials == nil {
		return
	}
	sd := header.CreateElement("SenderDetails")
	ida := sd.CreateElement("IDAuthentication")
	ida.CreateElement("SenderID").SetText(b.credentials.SenderID)
	auth := ida.CreateElement("Authentication")
	auth.CreateElement("Method").SetText("clear")
	auth.CreateElement("Role").SetText("principal")
	auth.CreateElement("Value").SetText(b.credentials.Password)
	if b.credentials.Email != "" {
		ida.CreateElement("EmailAddress").SetText(b.credentials.Email)
	}
}

func (b *Builder) buildGovTalkDetails(root *etree.Element) {
	gtd := root.CreateElement("GovTalkDetails")

	keys := gtd.CreateElement("Keys")
	for _, k := range b.keys {
		key := keys.CreateElement("Key")
		key.CreateAttr("Type", k.Type)
		key.SetText(k.Value)
	}

	if b.qualifier == QualifierRequest {
		td := gtd.CreateElement("TargetDetails")
		td.CreateElement("Organisation").SetText("HMRC")
	}

	if b.channel != nil {
		cr := gtd.CreateElement("ChannelRouting")
		ch := cr.CreateElement("Channel")
		ch.CreateElement("URI").SetText(b.channel.VendorID)
		ch.CreateElement("Product").SetText(b.channel.Product)
		ch.CreateElement("Version").SetText(b.channel.Version)
	}

	if b.gatewayError != nil {
		errs := gtd.CreateElement("GovTalkErrors")
		e := errs.CreateElement("Error")
		e.CreateElement("RaisedBy").SetText("Gateway")
		e.CreateElement("Number").SetText(b.gatewayError.number)
		e.CreateElement("Type").SetText(b.gatewayError.severity)
		e.CreateElement("Text").SetText(b.gatewayError.text)
	}
}

// DigestGenerator computes an integrity digest over a message body element.
type DigestGenerator interface {
	Compute(body *etree.Element) (string, error)
}

// InsertIRmark computes the integrity digest over the message Body and
// writes it into the IRmark placeholder inside the IRheader. The digest is
// computed with the placeholder empty, matching what the gateway recomputes
// on receipt. Returns the digest value.
func InsertIRmark(doc *etree.Document, gen DigestGenerator) (string, error) {
	body := doc.FindElement("//Body")
	if body == nil {
		return "", fmt.Errorf("message has no Body element")
	}
	mark := body.FindElement("//IRmark")
	if mark == nil {
		return "", fmt.Errorf("body has no IRmark placeholder")
	}
	mark.SetText("")

	digest, err := gen.Compute(body)
	if err != nil {
		return "", err
	}
	mark.SetText(digest)
	return digest, nil
}
