// Package schema validates GovTalk envelopes against the structural rules
// of the published envelope and CT600 schemas.
//
// The full XSD set is distributed by HMRC and checked by the gateway itself;
// this validator enforces the structural subset a submission must satisfy
// (required elements, attributes and qualifier/function combinations) so
// non-conformant data is stopped before it is sent. Outbound validation
// failure is fatal; inbound validation is best-effort and never overrides
// the classification already assigned to a response.
package schema

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Violation is one broken structural rule, with the offending path.
type Violation struct {
	Path string
	Rule string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Rule)
}

// ValidationError reports every violation found in one envelope.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "schema violation: " + strings.Join(parts, "; ")
}

// Validator checks envelope structure. The zero value is usable.
type Validator struct{}

// New returns a Validator.
func New() *Validator {
	return &Validator{}
}

// ValidateOutbound checks a client-built message document before
// transmission. Any violation is fatal: non-conformant data must not be
// sent.
func (v *Validator) ValidateOutbound(doc *etree.Document) error {
	var violations []Violation
	add := func(path, rule string) {
		violations = append(violations, Violation{Path: path, Rule: rule})
	}

	root := doc.Root()
	if root == nil || root.Tag != "GovTalkMessage" {
		add("/", "root element must be GovTalkMessage")
		return &ValidationError{Violations: violations}
	}

	if ev := root.SelectElement("EnvelopeVersion"); ev == nil || ev.Text() != "2.0" {
		add("/GovTalkMessage/EnvelopeVersion", "must be present with value 2.0")
	}

	md := doc.FindElement("/GovTalkMessage/Header/MessageDetails")
	if md == nil {
		add("/GovTalkMessage/Header/MessageDetails", "required")
		return &ValidationError{Violations: violations}
	}

	class := textOf(md, "Class")
	if class == "" {
		add("/GovTalkMessage/Header/MessageDetails/Class", "required")
	}

	qualifier := textOf(md, "Qualifier")
	function := textOf(md, "Function")
	switch qualifier {
	case "request", "poll":
	default:
		add("/GovTalkMessage/Header/MessageDetails/Qualifier",
			fmt.Sprintf("outbound qualifier must be request or poll, got %q", qualifier))
	}
	switch function {
	case "submit", "delete":
	default:
		add("/GovTalkMessage/Header/MessageDetails/Function",
			fmt.Sprintf("function must be submit or delete, got %q", function))
	}

	sender := doc.FindElement("/GovTalkMessage/Header/SenderDetails/IDAuthentication")
	if sender == nil {
		add("/GovTalkMessage/Header/SenderDetails/IDAuthentication", "required")
	} else {
		if textOf(sender, "SenderID") == "" {
			add("/GovTalkMessage/Header/SenderDetails/IDAuthentication/SenderID", "required")
		}
		if doc.FindElement("//IDAuthentication/Authentication/Value") == nil {
			add("/GovTalkMessage/Header/SenderDetails/IDAuthentication/Authentication/Value", "required")
		}
	}

	if qualifier == "request" && function == "submit" {
		v.validateSubmitBody(doc, add)
	} else {
		if textOf(md, "CorrelationID") == "" {
			add("/GovTalkMessage/Header/MessageDetails/CorrelationID",
				"poll and delete messages must carry the correlation ID")
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func (v *Validator) validateSubmitBody(doc *etree.Document, add func(path, rule string)) {
	env := doc.FindElement("/GovTalkMessage/Body/IRenvelope")
	if env == nil {
		add("/GovTalkMessage/Body/IRenvelope", "submission body required")
		return
	}

	header := env.SelectElement("IRheader")
	if header == nil {
		add("/GovTalkMessage/Body/IRenvelope/IRheader", "required")
		return
	}
	key := header.FindElement("Keys/Key")
	if key == nil || key.SelectAttrValue("Type", "") == "" || key.Text() == "" {
		add("/GovTalkMessage/Body/IRenvelope/IRheader/Keys/Key",
			"typed key with value required")
	}
	if mark := header.SelectElement("IRmark"); mark == nil || mark.Text() == "" {
		add("/GovTalkMessage/Body/IRenvelope/IRheader/IRmark",
			"integrity mark must be computed before send")
	}

	ctr := env.SelectElement("CompanyTaxReturn")
	if ctr == nil {
		add("/GovTalkMessage/Body/IRenvelope/CompanyTaxReturn", "required")
		return
	}
	if ctr.SelectAttrValue("ReturnType", "") == "" {
		add("/GovTalkMessage/Body/IRenvelope/CompanyTaxReturn", "ReturnType attribute required")
	}
}

// ValidateInbound checks a received envelope's structure. Failures here are
// reported but do not change the classification outcome.
func (v *Validator) ValidateInbound(raw []byte) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return &ValidationError{Violations: []Violation{
			{Path: "/", Rule: fmt.Sprintf("not well-formed XML: %v", err)},
		}}
	}

	var violations []Violation
	root := doc.Root()
	if root == nil || root.Tag != "GovTalkMessage" {
		violations = append(violations, Violation{
			Path: "/", Rule: "root element must be GovTalkMessage",
		})
		return &ValidationError{Violations: violations}
	}

	md := doc.FindElement("/GovTalkMessage/Header/MessageDetails")
	if md == nil {
		violations = append(violations, Violation{
			Path: "/GovTalkMessage/Header/MessageDetails", Rule: "required",
		})
	} else {
		switch textOf(md, "Qualifier") {
		case "acknowledgement", "response", "error":
		default:
			violations = append(violations, Violation{
				Path: "/GovTalkMessage/Header/MessageDetails/Qualifier",
				Rule: "inbound qualifier must be acknowledgement, response or error",
			})
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func textOf(e *etree.Element, tag string) string {
	if c := e.SelectElement(tag); c != nil {
		return c.Text()
	}
	return ""
}
