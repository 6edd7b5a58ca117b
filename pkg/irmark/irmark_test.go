package irmark

import (
	"encoding/base64"
	"testing"

	"github.com/beevik/etree"
)

func bodyFrom(t *testing.T, src string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(src); err != nil {
		t.Fatalf("parsing body fixture: %v", err)
	}
	return doc.Root()
}

const sampleBody = `<Body><IRenvelope xmlns="http://www.govtalk.gov.uk/taxation/CT/5"><IRheader><Keys><Key Type="UTR">1234567890</Key></Keys><IRmark></IRmark></IRheader><CompanyTaxReturn ReturnType="new"><CompanyInformation><CompanyName>Example Ltd</CompanyName></CompanyInformation></CompanyTaxReturn></IRenvelope></Body>`

func TestCompute_Deterministic(t *testing.T) {
	gen := New()

	first, err := gen.Compute(bodyFrom(t, sampleBody))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	second, err := gen.Compute(bodyFrom(t, sampleBody))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if first != second {
		t.Errorf("same body produced different marks: %q vs %q", first, second)
	}
}

func TestCompute_MarkFormat(t *testing.T) {
	gen := New()

	mark, err := gen.Compute(bodyFrom(t, sampleBody))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	sum, err := base64.StdEncoding.DecodeString(mark)
	if err != nil {
		t.Fatalf("mark is not valid base64: %v", err)
	}
	if len(sum) != 20 {
		t.Errorf("expected 20-byte SHA-1 digest, got %d bytes", len(sum))
	}
}

func TestCompute_WhitespaceInsensitive(t *testing.T) {
	indented := `<Body>
  <IRenvelope xmlns="http://www.govtalk.gov.uk/taxation/CT/5">
    <IRheader>
      <Keys>
        <Key Type="UTR">1234567890</Key>
      </Keys>
      <IRmark></IRmark>
    </IRheader>
    <CompanyTaxReturn ReturnType="new">
      <CompanyInformation>
        <CompanyName>Example Ltd</CompanyName>
      </CompanyInformation>
    </CompanyTaxReturn>
  </IRenvelope>
</Body>`

	gen := New()
	compact, err := gen.Compute(bodyFrom(t, sampleBody))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	pretty, err := gen.Compute(bodyFrom(t, indented))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if compact != pretty {
		t.Errorf("formatting changed the mark: %q vs %q", compact, pretty)
	}
}

func TestCompute_AttributeOrderInsensitive(t *testing.T) {
	a := `<Body><Doc x="1" y="2">v</Doc></Body>`
	b := `<Body><Doc y="2" x="1">v</Doc></Body>`

	gen := New()
	markA, err := gen.Compute(bodyFrom(t, a))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	markB, err := gen.Compute(bodyFrom(t, b))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if markA != markB {
		t.Errorf("attribute order changed the mark: %q vs %q", markA, markB)
	}
}

func TestCompute_SensitiveToValueChange(t *testing.T) {
	changed := `<Body><IRenvelope xmlns="http://www.govtalk.gov.uk/taxation/CT/5"><IRheader><Keys><Key Type="UTR">1234567890</Key></Keys><IRmark></IRmark></IRheader><CompanyTaxReturn ReturnType="new"><CompanyInformation><CompanyName>Other Ltd</CompanyName></CompanyInformation></CompanyTaxReturn></IRenvelope></Body>`

	gen := New()
	original, err := gen.Compute(bodyFrom(t, sampleBody))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	altered, err := gen.Compute(bodyFrom(t, changed))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if original == altered {
		t.Error("changing a form value did not change the mark")
	}
}

func TestCompute_DoesNotModifyInput(t *testing.T) {
	body := bodyFrom(t, sampleBody)
	before := len(body.Child)

	if _, err := New().Compute(body); err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if len(body.Child) != before {
		t.Error("compute mutated the input element")
	}
	if body.SelectAttrValue("xmlns", "") != "" {
		t.Error("compute added a namespace declaration to the input")
	}
}

func TestCanonicalize_RerootsUnderEnvelopeNamespace(t *testing.T) {
	canon, err := Canonicalize(bodyFrom(t, `<Body><X>1</X></Body>`))
	if err != nil {
		t.Fatalf("canonicalize failed: %v", err)
	}
	want := `<Body xmlns="http://www.govtalk.gov.uk/CM/envelope"><X>1</X></Body>`
	if string(canon) != want {
		t.Errorf("canonical form mismatch:\n got %s\nwant %s", canon, want)
	}
}
