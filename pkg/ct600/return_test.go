package ct600

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalValues() Values {
	return Values{
		BoxCompanyName:        "Example Widgets Ltd",
		BoxRegistrationNumber: "12345678",
		BoxTaxReference:       "1234567890",
		BoxCompanyType:        6,
		BoxPeriodFrom:         "2024-01-01",
		BoxPeriodTo:           "2024-12-31",
		BoxDeclarationName:    "A Director",
		BoxDeclarationStatus:  "Director",
	}
}

func minimalAttachments() []Attachment {
	return []Attachment{
		{Role: RoleAccounts, Filename: "accounts.html", Data: []byte("<html>accounts</html>")},
		{Role: RoleComputations, Filename: "comps.html", Data: []byte("<html>comps</html>")},
	}
}

func TestNewReturn_Minimal(t *testing.T) {
	ret, err := NewReturn(minimalValues(), Principal{LastName: "Director"}, minimalAttachments())
	require.NoError(t, err)

	assert.Equal(t, "1234567890", ret.UTR())
	assert.Equal(t, "2024-12-31", ret.PeriodEnd())
}

func TestNewReturn_MissingMandatoryBox(t *testing.T) {
	values := minimalValues()
	delete(values, BoxCompanyName)

	_, err := NewReturn(values, Principal{}, minimalAttachments())

	var missing *MissingRequiredFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, BoxCompanyName, missing.Box)
}

func TestNewReturn_InvalidValueType(t *testing.T) {
	values := minimalValues()
	values[145] = "not a number"

	_, err := NewReturn(values, Principal{}, minimalAttachments())

	var invalid *InvalidValueTypeError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 145, invalid.Box)
	assert.Equal(t, KindPounds, invalid.Kind)
}

func TestNewReturn_RequiresAttachments(t *testing.T) {
	_, err := NewReturn(minimalValues(), Principal{}, []Attachment{
		{Role: RoleComputations, Data: []byte("c")},
	})
	assert.ErrorIs(t, err, ErrMissingAccounts)

	_, err = NewReturn(minimalValues(), Principal{}, []Attachment{
		{Role: RoleAccounts, Data: []byte("a")},
	})
	assert.ErrorIs(t, err, ErrMissingComputations)
}

func TestIRenvelope_Structure(t *testing.T) {
	values := minimalValues()
	values[145] = 250000.0
	values[40] = true

	ret, err := NewReturn(values, Principal{
		Title: "Ms", FirstName: "Alex", LastName: "Director",
		Email: "alex@example.com", Phone: "01234 567890",
	}, minimalAttachments())
	require.NoError(t, err)

	env, err := ret.IRenvelope()
	require.NoError(t, err)

	doc := etree.NewDocument()
	doc.SetRoot(env)

	assert.Equal(t, NsCT, env.SelectAttrValue("xmlns", ""))

	key := doc.FindElement("/IRenvelope/IRheader/Keys/Key")
	require.NotNil(t, key)
	assert.Equal(t, "UTR", key.SelectAttrValue("Type", ""))
	assert.Equal(t, "1234567890", key.Text())
	assert.Equal(t, "2024-12-31", doc.FindElement("//IRheader/PeriodEnd").Text())
	assert.Equal(t, "Alex", doc.FindElement("//Principal/Contact/Name/Fore").Text())
	assert.Equal(t, "Company", doc.FindElement("//IRheader/Sender").Text())

	mark := doc.FindElement("//IRheader/IRmark")
	require.NotNil(t, mark, "header must carry the digest placeholder")
	assert.Empty(t, mark.Text())

	ctr := doc.FindElement("/IRenvelope/CompanyTaxReturn")
	require.NotNil(t, ctr)
	assert.Equal(t, "new", ctr.SelectAttrValue("ReturnType", ""))
	assert.Equal(t, "Example Widgets Ltd",
		doc.FindElement("//CompanyInformation/CompanyName").Text())
	assert.Equal(t, "06", doc.FindElement("//CompanyInformation/CompanyType").Text())
	assert.Equal(t, "2024-01-01", doc.FindElement("//PeriodCovered/From").Text())
	assert.Equal(t, "250000.00", doc.FindElement("//Turnover/Total").Text())
	assert.Equal(t, "yes", doc.FindElement("//ReturnInfoSummary/ThisPeriod").Text())
	assert.Equal(t, "yes", doc.FindElement("//Declaration/AcceptDeclaration").Text())
	assert.Equal(t, "A Director", doc.FindElement("//Declaration/Name").Text())
}

func TestIRenvelope_OmitsAbsentAndFalseYesBoxes(t *testing.T) {
	values := minimalValues()
	values[40] = false

	ret, err := NewReturn(values, Principal{}, minimalAttachments())
	require.NoError(t, err)
	env, err := ret.IRenvelope()
	require.NoError(t, err)

	doc := etree.NewDocument()
	doc.SetRoot(env)
	assert.Nil(t, doc.FindElement("//ReturnInfoSummary/ThisPeriod"),
		"a false yes-only box is omitted entirely")
	assert.Nil(t, doc.FindElement("//Turnover"),
		"groups with no present boxes are not created")
}

func TestIRenvelope_AttachmentOrder(t *testing.T) {
	attachments := []Attachment{
		// Accounts listed first; output order must still be Computation
		// then Accounts.
		{Role: RoleAccounts, Filename: "accounts.html", Data: []byte("AAA")},
		{Role: RoleComputations, Filename: "comps.html", Data: []byte("CCC")},
		{Role: RoleOther, Filename: "note.pdf", MediaType: "application/pdf", Data: []byte("PPP")},
	}

	ret, err := NewReturn(minimalValues(), Principal{}, attachments)
	require.NoError(t, err)
	env, err := ret.IRenvelope()
	require.NoError(t, err)

	doc := etree.NewDocument()
	doc.SetRoot(env)

	xbrl := doc.FindElement("//AttachedFiles/XBRLsubmission")
	require.NotNil(t, xbrl)
	children := xbrl.ChildElements()
	require.Len(t, children, 2)
	assert.Equal(t, "Computation", children[0].Tag)
	assert.Equal(t, "Accounts", children[1].Tag)

	comp := doc.FindElement("//Computation/Instance/EncodedInlineXBRLDocument")
	require.NotNil(t, comp)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("CCC")), comp.Text())

	other := doc.FindElement("//AttachedFiles/Attachment")
	require.NotNil(t, other)
	assert.Equal(t, "note.pdf", other.SelectAttrValue("Filename", ""))
	assert.Equal(t, "pdf", other.SelectAttrValue("Format", ""))
	assert.Equal(t, "3", other.SelectAttrValue("Size", ""))
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("PPP")), other.Text())
}

func TestRender_Kinds(t *testing.T) {
	cases := []struct {
		name string
		def  BoxDef
		val  any
		want string
	}{
		{"money", BoxDef{Box: 1, Kind: KindMoney}, 13300.5, "13300.50"},
		{"pounds truncates", BoxDef{Box: 1, Kind: KindPounds}, 250000.75, "250000.00"},
		{"rate", BoxDef{Box: 1, Kind: KindRate}, 19.0, "19.00"},
		{"yesno true", BoxDef{Box: 1, Kind: KindYesNo}, true, "yes"},
		{"yesno false", BoxDef{Box: 1, Kind: KindYesNo}, false, "no"},
		{"date from time", BoxDef{Box: 1, Kind: KindDate}, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), "2024-12-31"},
		{"date from string", BoxDef{Box: 1, Kind: KindDate}, "2024-12-31", "2024-12-31"},
		{"year", BoxDef{Box: 1, Kind: KindYear}, 2024, "2024"},
		{"company type pads", BoxDef{Box: 1, Kind: KindCompanyType}, 6, "06"},
		{"text from int", BoxDef{Box: 1, Kind: KindText}, 12345678, "12345678"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := render(tc.def, Values{tc.def.Box: tc.val})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRender_InvalidValues(t *testing.T) {
	cases := []struct {
		name string
		kind Kind
		val  any
	}{
		{"money from bool", KindMoney, true},
		{"yesno from string", KindYesNo, "yes"},
		{"date malformed", KindDate, "31/12/2024"},
		{"year from float string", KindYear, "20.24"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := render(BoxDef{Box: 9, Kind: tc.kind}, Values{9: tc.val})
			var invalid *InvalidValueTypeError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}
