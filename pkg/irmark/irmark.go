// Package irmark computes the IRmark integrity digest carried in the
// IRheader of an HMRC submission body.
//
// The mark is a SHA-1 hash over the canonical form of the message Body,
// rendered as base64. Canonicalization re-roots the body under the GovTalk
// envelope namespace, drops whitespace-only text, sorts attributes, and
// serializes with canonical text and end-tag rules, so two logically
// identical bodies always produce the same mark and any change to a form-box
// value produces a different one. The recipient recomputes the mark to
// detect alteration in transit; the sender retains it to prove what was
// sent.
//
// The exact algorithm is published by HMRC; Generator is an interface so an
// alternative published algorithm can be substituted without touching the
// rest of the client.
package irmark

import (
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// envelopeNamespace is the default namespace the body is re-rooted under
// before hashing, per the IRmark specification.
const envelopeNamespace = "http://www.govtalk.gov.uk/CM/envelope"

// Generator computes an integrity digest over a message body element.
type Generator interface {
	Compute(body *etree.Element) (string, error)
}

// SHA1Generator is the standard IRmark algorithm: inclusive C14N then SHA-1,
// base64 encoded.
type SHA1Generator struct{}

// New returns the standard IRmark generator.
func New() *SHA1Generator {
	return &SHA1Generator{}
}

// Compute canonicalizes the body and returns the base64 SHA-1 digest.
// The input element is not modified.
func (g *SHA1Generator) Compute(body *etree.Element) (string, error) {
	canon, err := Canonicalize(body)
	if err != nil {
		return "", fmt.Errorf("canonicalizing body: %w", err)
	}
	sum := sha1.Sum(canon)
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

// Canonicalize produces the deterministic byte form of a body element:
// re-rooted under the envelope namespace, whitespace-only text removed,
// attributes sorted, canonical serialization rules applied.
func Canonicalize(body *etree.Element) ([]byte, error) {
	dup := body.Copy()

	// The body is serialized standalone, so the envelope default namespace
	// it inherited from the message root must be declared on it directly.
	dup.RemoveAttr("xmlns")
	dup.CreateAttr("xmlns", envelopeNamespace)

	normalize(dup)

	doc := etree.NewDocument()
	doc.SetRoot(dup)
	doc.WriteSettings = etree.WriteSettings{
		CanonicalEndTags: true,
		CanonicalText:    true,
		CanonicalAttrVal: true,
	}

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, err
	}
	return out, nil
}

// normalize strips whitespace-only text and sorts attributes, recursively.
// The CT600 body has no mixed content, so whitespace between elements is
// incidental formatting and must not affect the digest.
func normalize(e *etree.Element) {
	for i := len(e.Child) - 1; i >= 0; i-- {
		if cd, ok := e.Child[i].(*etree.CharData); ok {
			if strings.TrimSpace(cd.Data) == "" {
				e.RemoveChildAt(i)
			}
		}
	}
	e.SortAttrs()
	for _, child := range e.ChildElements() {
		normalize(child)
	}
}
