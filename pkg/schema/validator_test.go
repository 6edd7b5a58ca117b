package schema

import (
	"strings"
	"testing"

	"github.com/beevik/etree"
)

const validSubmit = `<?xml version="1.0" encoding="UTF-8"?>
<GovTalkMessage xmlns="http://www.govtalk.gov.uk/CM/envelope">
  <EnvelopeVersion>2.0</EnvelopeVersion>
  <Header>
    <MessageDetails>
      <Class>HMRC-CT-CT600</Class>
      <Qualifier>request</Qualifier>
      <Function>submit</Function>
      <TransactionID>t-1</TransactionID>
    </MessageDetails>
    <SenderDetails>
      <IDAuthentication>
        <SenderID>SENDER001</SenderID>
        <Authentication>
          <Method>clear</Method>
          <Role>principal</Role>
          <Value>secret</Value>
        </Authentication>
      </IDAuthentication>
    </SenderDetails>
  </Header>
  <GovTalkDetails><Keys><Key Type="UTR">1234567890</Key></Keys></GovTalkDetails>
  <Body>
    <IRenvelope xmlns="http://www.govtalk.gov.uk/taxation/CT/5">
      <IRheader>
        <Keys><Key Type="UTR">1234567890</Key></Keys>
        <IRmark>2Z0oUJJSGZIBF0O5lNE1KiH9Mfs=</IRmark>
      </IRheader>
      <CompanyTaxReturn ReturnType="new"/>
    </IRenvelope>
  </Body>
</GovTalkMessage>`

func docFrom(t *testing.T, src string) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(src); err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return doc
}

func TestValidateOutbound_ValidSubmit(t *testing.T) {
	if err := New().ValidateOutbound(docFrom(t, validSubmit)); err != nil {
		t.Fatalf("valid submission rejected: %v", err)
	}
}

func TestValidateOutbound_Violations(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(doc *etree.Document)
		want   string
	}{
		{
			"missing envelope version",
			func(doc *etree.Document) {
				root := doc.Root()
				root.RemoveChild(root.SelectElement("EnvelopeVersion"))
			},
			"EnvelopeVersion",
		},
		{
			"wrong envelope version",
			func(doc *etree.Document) {
				doc.FindElement("//EnvelopeVersion").SetText("1.0")
			},
			"EnvelopeVersion",
		},
		{
			"missing class",
			func(doc *etree.Document) {
				md := doc.FindElement("//MessageDetails")
				md.RemoveChild(md.SelectElement("Class"))
			},
			"Class",
		},
		{
			"bad qualifier",
			func(doc *etree.Document) {
				doc.FindElement("//MessageDetails/Qualifier").SetText("response")
			},
			"Qualifier",
		},
		{
			"missing sender id",
			func(doc *etree.Document) {
				ida := doc.FindElement("//IDAuthentication")
				ida.RemoveChild(ida.SelectElement("SenderID"))
			},
			"SenderID",
		},
		{
			"empty integrity mark",
			func(doc *etree.Document) {
				doc.FindElement("//IRheader/IRmark").SetText("")
			},
			"IRmark",
		},
		{
			"missing return type",
			func(doc *etree.Document) {
				doc.FindElement("//CompanyTaxReturn").RemoveAttr("ReturnType")
			},
			"ReturnType",
		},
		{
			"missing body",
			func(doc *etree.Document) {
				body := doc.FindElement("//Body")
				body.RemoveChild(body.SelectElement("IRenvelope"))
			},
			"IRenvelope",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := docFrom(t, validSubmit)
			tc.mutate(doc)

			err := New().ValidateOutbound(doc)
			if err == nil {
				t.Fatal("expected a violation")
			}
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if !strings.Contains(verr.Error(), tc.want) {
				t.Errorf("violation %q does not mention %q", verr.Error(), tc.want)
			}
		})
	}
}

func TestValidateOutbound_PollNeedsCorrelationID(t *testing.T) {
	poll := `<GovTalkMessage xmlns="http://www.govtalk.gov.uk/CM/envelope">
  <EnvelopeVersion>2.0</EnvelopeVersion>
  <Header>
    <MessageDetails>
      <Class>HMRC-CT-CT600</Class>
      <Qualifier>poll</Qualifier>
      <Function>submit</Function>
    </MessageDetails>
    <SenderDetails><IDAuthentication>
      <SenderID>S</SenderID>
      <Authentication><Value>p</Value></Authentication>
    </IDAuthentication></SenderDetails>
  </Header>
  <GovTalkDetails/>
  <Body/>
</GovTalkMessage>`

	err := New().ValidateOutbound(docFrom(t, poll))
	if err == nil {
		t.Fatal("expected a violation for missing correlation ID")
	}
	if !strings.Contains(err.Error(), "CorrelationID") {
		t.Errorf("violation %q does not mention CorrelationID", err.Error())
	}
}

func TestValidateInbound(t *testing.T) {
	ok := `<GovTalkMessage><Header><MessageDetails>
	  <Qualifier>acknowledgement</Qualifier>
	</MessageDetails></Header></GovTalkMessage>`
	if err := New().ValidateInbound([]byte(ok)); err != nil {
		t.Errorf("valid acknowledgement rejected: %v", err)
	}

	if err := New().ValidateInbound([]byte("not xml at all <")); err == nil {
		t.Error("expected a violation for malformed XML")
	}

	badQualifier := `<GovTalkMessage><Header><MessageDetails>
	  <Qualifier>request</Qualifier>
	</MessageDetails></Header></GovTalkMessage>`
	if err := New().ValidateInbound([]byte(badQualifier)); err == nil {
		t.Error("expected a violation for an outbound qualifier on a response")
	}
}
