package ct600

import (
	"encoding/base64"
	"fmt"

	"github.com/beevik/etree"
)

// NsCT is the CT600 taxation namespace the IRenvelope lives in.
const NsCT = "http://www.govtalk.gov.uk/taxation/CT/5"

// Role classifies an attached document.
type Role int

const (
	// RoleAccounts is the statutory accounts iXBRL instance.
	RoleAccounts Role = iota
	// RoleComputations is the tax computations iXBRL instance.
	RoleComputations
	// RoleOther is any supporting document, embedded as a named attachment.
	RoleOther
)

// Attachment is a document bundled into the return body. The bytes are
// base64-embedded at build time and never mutated afterwards.
type Attachment struct {
	Role      Role
	Filename  string
	MediaType string
	Data      []byte
}

// Principal identifies the person responsible for the return, carried in
// the IRheader contact block.
type Principal struct {
	Title     string
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Return is a validated CT600 return ready to be enveloped. Construct with
// NewReturn; a Return that exists has already passed box validation.
type Return struct {
	values      Values
	mapping     Mapping
	principal   Principal
	attachments []Attachment
}

// ReturnOption customizes return construction.
type ReturnOption func(*Return)

// WithMapping substitutes the box-to-element table, e.g. to file
// supplementary pages beyond the default subset.
func WithMapping(m Mapping) ReturnOption {
	return func(r *Return) { r.mapping = m }
}

// NewReturn validates the value set against the mapping and builds a
// Return. Every mandatory box must be present and every present value must
// render in its declared kind; failures abort here, before any envelope is
// built or network call attempted. The accounts and computations iXBRL
// attachments are required.
func NewReturn(values Values, principal Principal, attachments []Attachment, opts ...ReturnOption) (*Return, error) {
	r := &Return{
		values:      values,
		mapping:     DefaultMapping(),
		principal:   principal,
		attachments: attachments,
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, def := range r.mapping {
		if def.Fixed != "" {
			continue
		}
		if def.Mandatory && !present(def, values) {
			return nil, &MissingRequiredFieldError{Box: def.Box}
		}
		if present(def, values) {
			if _, err := render(def, values); err != nil {
				return nil, err
			}
		}
	}

	var hasAccounts, hasComputations bool
	for _, a := range attachments {
		switch a.Role {
		case RoleAccounts:
			hasAccounts = true
		case RoleComputations:
			hasComputations = true
		}
	}
	if !hasAccounts {
		return nil, ErrMissingAccounts
	}
	if !hasComputations {
		return nil, ErrMissingComputations
	}

	return r, nil
}

// UTR returns the unique taxpayer reference from box 3.
func (r *Return) UTR() string {
	s, _ := render(BoxDef{Box: BoxTaxReference, Kind: KindText}, r.values)
	return s
}

// PeriodEnd returns the end of the period covered, from box 35.
func (r *Return) PeriodEnd() string {
	s, _ := render(BoxDef{Box: BoxPeriodTo, Kind: KindDate}, r.values)
	return s
}

// IRenvelope builds the return body: IRheader followed by CompanyTaxReturn
// with the attached documents embedded. Each call builds a fresh element so
// the caller may adopt it into a message document.
func (r *Return) IRenvelope() (*etree.Element, error) {
	env := etree.NewElement("IRenvelope")
	env.CreateAttr("xmlns", NsCT)

	env.AddChild(r.irheader())

	ctr, err := r.companyTaxReturn()
	if err != nil {
		return nil, err
	}
	env.AddChild(ctr)

	return env, nil
}

func (r *Return) irheader() *etree.Element {
	h := etree.NewElement("IRheader")

	keys := h.CreateElement("Keys")
	key := keys.CreateElement("Key")
	key.CreateAttr("Type", "UTR")
	key.SetText(r.UTR())

	h.CreateElement("PeriodEnd").SetText(r.PeriodEnd())

	principal := h.CreateElement("Principal")
	contact := principal.CreateElement("Contact")
	name := contact.CreateElement("Name")
	name.CreateElement("Ttl").SetText(r.principal.Title)
	name.CreateElement("Fore").SetText(r.principal.FirstName)
	name.CreateElement("Sur").SetText(r.principal.LastName)
	contact.CreateElement("Email").SetText(r.principal.Email)
	tel := contact.CreateElement("Telephone")
	tel.CreateElement("Number").SetText(r.principal.Phone)

	// Placeholder; filled in by the digest generator before transmission.
	h.CreateElement("IRmark").SetText("")
	h.CreateElement("Sender").SetText("Company")

	return h
}

func (r *Return) companyTaxReturn() (*etree.Element, error) {
	ctr := etree.NewElement("CompanyTaxReturn")
	ctr.CreateAttr("ReturnType", "new")

	for _, def := range r.mapping {
		if !present(def, r.values) {
			continue
		}
		text, err := render(def, r.values)
		if err != nil {
			return nil, err
		}
		parent := ensurePath(ctr, def.Path[:len(def.Path)-1])
		parent.CreateElement(def.Path[len(def.Path)-1]).SetText(text)
	}

	if err := r.attachFiles(ctr); err != nil {
		return nil, err
	}

	return ctr, nil
}

// ensurePath walks the element path, creating missing segments. Mapping
// order keeps siblings grouped, so lazily created groups stay in schema
// sequence.
func ensurePath(root *etree.Element, path []string) *etree.Element {
	e := root
	for _, tag := range path {
		next := e.SelectElement(tag)
		if next == nil {
			next = e.CreateElement(tag)
		}
		e = next
	}
	return e
}

func (r *Return) attachFiles(ctr *etree.Element) error {
	af := ctr.CreateElement("AttachedFiles")
	xbrl := af.CreateElement("XBRLsubmission")

	// The schema sequence is Computation, Accounts, then named attachments.
	for _, a := range r.attachments {
		if a.Role != RoleComputations {
			continue
		}
		inst := xbrl.CreateElement("Computation").CreateElement("Instance")
		inst.CreateElement("EncodedInlineXBRLDocument").
			SetText(base64.StdEncoding.EncodeToString(a.Data))
	}
	for _, a := range r.attachments {
		if a.Role != RoleAccounts {
			continue
		}
		inst := xbrl.CreateElement("Accounts").CreateElement("Instance")
		inst.CreateElement("EncodedInlineXBRLDocument").
			SetText(base64.StdEncoding.EncodeToString(a.Data))
	}
	for _, a := range r.attachments {
		if a.Role != RoleOther {
			continue
		}
		att := af.CreateElement("Attachment")
		att.CreateAttr("Filename", a.Filename)
		att.CreateAttr("Description", "supporting document")
		att.CreateAttr("Format", formatFor(a.MediaType))
		att.CreateAttr("Size", fmt.Sprintf("%d", len(a.Data)))
		att.CreateAttr("Type", "other")
		att.SetText(base64.StdEncoding.EncodeToString(a.Data))
	}
	return nil
}

func formatFor(mediaType string) string {
	switch mediaType {
	case "application/pdf", "":
		return "pdf"
	case "text/plain":
		return "txt"
	default:
		return "pdf"
	}
}
