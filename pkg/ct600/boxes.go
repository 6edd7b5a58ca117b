package ct600

// Kind declares how a box value is rendered into its form element.
type Kind int

const (
	// KindText renders the value as-is.
	KindText Kind = iota
	// KindMoney renders a decimal amount with two places.
	KindMoney
	// KindPounds renders a whole-pound amount, still with two places.
	KindPounds
	// KindRate renders a percentage rate with two places.
	KindRate
	// KindYesNo renders a boolean as "yes" or "no".
	KindYesNo
	// KindYes renders true as "yes"; a false value is omitted entirely.
	KindYes
	// KindDate renders an ISO-8601 calendar date.
	KindDate
	// KindYear renders a four-digit year.
	KindYear
	// KindCompanyType renders the two-digit company type code.
	KindCompanyType
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMoney:
		return "money"
	case KindPounds:
		return "pounds"
	case KindRate:
		return "rate"
	case KindYesNo:
		return "yesno"
	case KindYes:
		return "yes"
	case KindDate:
		return "date"
	case KindYear:
		return "year"
	case KindCompanyType:
		return "companytype"
	}
	return "unknown"
}

// BoxDef binds one CT600 box number to its place in the CompanyTaxReturn
// element tree. A def with Fixed set emits that literal value and reads no
// box.
type BoxDef struct {
	Box       int
	Kind      Kind
	Path      []string
	Mandatory bool
	Fixed     string
}

// Mapping is the ordered box-to-element table for one form revision. Order
// matters: the gateway schema requires elements in sequence, and the IRmark
// is computed over the serialized result.
type Mapping []BoxDef

// Well-known box numbers referenced outside the mapping table.
const (
	BoxCompanyName        = 1
	BoxRegistrationNumber = 2
	BoxTaxReference       = 3
	BoxCompanyType        = 4
	BoxPeriodFrom         = 30
	BoxPeriodTo           = 35
	BoxDeclarationName    = 975
	BoxDeclarationStatus  = 985
)

// DefaultMapping returns the box table for the commonly filed subset of the
// CT600 (2023) form.
func DefaultMapping() Mapping {
	return Mapping{
		{Box: BoxCompanyName, Kind: KindText, Path: []string{"CompanyInformation", "CompanyName"}, Mandatory: true},
		{Box: BoxRegistrationNumber, Kind: KindText, Path: []string{"CompanyInformation", "RegistrationNumber"}, Mandatory: true},
		{Box: BoxTaxReference, Kind: KindText, Path: []string{"CompanyInformation", "Reference"}, Mandatory: true},
		{Box: BoxCompanyType, Kind: KindCompanyType, Path: []string{"CompanyInformation", "CompanyType"}, Mandatory: true},
		{Box: BoxPeriodFrom, Kind: KindDate, Path: []string{"CompanyInformation", "PeriodCovered", "From"}, Mandatory: true},
		{Box: BoxPeriodTo, Kind: KindDate, Path: []string{"CompanyInformation", "PeriodCovered", "To"}, Mandatory: true},

		{Box: 40, Kind: KindYes, Path: []string{"ReturnInfoSummary", "ThisPeriod"}},
		{Box: 50, Kind: KindYesNo, Path: []string{"ReturnInfoSummary", "MultipleReturns"}},
		{Box: 55, Kind: KindYesNo, Path: []string{"ReturnInfoSummary", "ProvisionalFigures"}},
		{Box: 80, Kind: KindYesNo, Path: []string{"ReturnInfoSummary", "Accounts", "ThisPeriodAccounts"}},
		{Box: 80, Kind: KindYesNo, Path: []string{"ReturnInfoSummary", "Computations", "ThisPeriodComputations"}},

		{Box: 145, Kind: KindPounds, Path: []string{"Turnover", "Total"}},
		{Box: 150, Kind: KindPounds, Path: []string{"Turnover", "OtherFinancialConcerns"}},

		{Box: 155, Kind: KindPounds, Path: []string{"CompanyTaxCalculation", "Income", "Trading", "Profits"}},
		{Box: 160, Kind: KindPounds, Path: []string{"CompanyTaxCalculation", "Income", "Trading", "LossesBroughtForward"}},
		{Box: 165, Kind: KindPounds, Path: []string{"CompanyTaxCalculation", "Income", "Trading", "NetProfits"}},
		{Box: 170, Kind: KindPounds, Path: []string{"CompanyTaxCalculation", "Income", "NonTradingLoanProfitsAndGains"}},
		{Box: 190, Kind: KindPounds, Path: []string{"CompanyTaxCalculation", "Income", "PropertyBusinessIncome"}},
		{Box: 205, Kind: KindPounds, Path: []string{"CompanyTaxCalculation", "Income", "OtherIncome"}},
		{Box: 210, Kind: KindPounds, Path: []string{"CompanyTaxCalculation", "ChargeableGains", "GrossGains"}},
		{Box: 215, Kind: KindPounds, Path: []string{"CompanyTaxCalculation", "ChargeableGains", "AllowableLosses"}},
		{Box: 220, Kind: KindPounds, Path: []string{"CompanyTaxCalculation", "ChargeableGains", "NetChargeableGains"}},
		{Box: 235, Kind: KindPounds, Path: []string{"CompanyTaxCalculation", "ProfitsBeforeOtherDeductions"}},
		{Box: 300, Kind: KindPounds, Path: []string{"CompanyTaxCalculation", "ChargesAndReliefs", "ProfitsBeforeDonationsAndGroupRelief"}},
		{Box: 305, Kind: KindPounds, Path: []string{"CompanyTaxCalculation", "ChargesAndReliefs", "QualifyingDonations"}},
		{Box: 315, Kind: KindPounds, Path: []string{"CompanyTaxCalculation", "ChargeableProfits"}},
		{Box: 330, Kind: KindYear, Path: []string{"CompanyTaxCalculation", "CorporationTaxChargeable", "FinancialYearOne", "Year"}},
		{Box: 335, Kind: KindPounds, Path: []string{"CompanyTaxCalculation", "CorporationTaxChargeable", "FinancialYearOne", "Details", "Profit"}},
		{Box: 340, Kind: KindRate, Path: []string{"CompanyTaxCalculation", "CorporationTaxChargeable", "FinancialYearOne", "Details", "TaxRate"}},
		{Box: 345, Kind: KindMoney, Path: []string{"CompanyTaxCalculation", "CorporationTaxChargeable", "FinancialYearOne", "Details", "Tax"}},
		{Box: 380, Kind: KindYear, Path: []string{"CompanyTaxCalculation", "CorporationTaxChargeable", "FinancialYearTwo", "Year"}},
		{Box: 385, Kind: KindPounds, Path: []string{"CompanyTaxCalculation", "CorporationTaxChargeable", "FinancialYearTwo", "Details", "Profit"}},
		{Box: 390, Kind: KindRate, Path: []string{"CompanyTaxCalculation", "CorporationTaxChargeable", "FinancialYearTwo", "Details", "TaxRate"}},
		{Box: 395, Kind: KindMoney, Path: []string{"CompanyTaxCalculation", "CorporationTaxChargeable", "FinancialYearTwo", "Details", "Tax"}},
		{Box: 430, Kind: KindMoney, Path: []string{"CompanyTaxCalculation", "CorporationTax"}},
		{Box: 440, Kind: KindMoney, Path: []string{"CompanyTaxCalculation", "NetCorporationTaxChargeable"}},

		{Box: 475, Kind: KindMoney, Path: []string{"CalculationOfTaxOutstandingOrOverpaid", "NetCorporationTaxLiability"}},
		{Box: 510, Kind: KindMoney, Path: []string{"CalculationOfTaxOutstandingOrOverpaid", "TaxChargeable"}},
		{Box: 525, Kind: KindMoney, Path: []string{"CalculationOfTaxOutstandingOrOverpaid", "TaxPayable"}},

		{Box: 650, Kind: KindYes, Path: []string{"EnhancedExpenditure", "SMEclaim"}},
		{Box: 660, Kind: KindPounds, Path: []string{"EnhancedExpenditure", "RandDEnhancedExpenditure"}},
		{Box: 670, Kind: KindPounds, Path: []string{"EnhancedExpenditure", "RandDAndCreativeEnhancedExpenditure"}},

		{Box: 690, Kind: KindPounds, Path: []string{"AllowancesAndCharges", "AIACapitalAllowancesInc"}},

		{Fixed: "yes", Path: []string{"Declaration", "AcceptDeclaration"}},
		{Box: BoxDeclarationName, Kind: KindText, Path: []string{"Declaration", "Name"}, Mandatory: true},
		{Box: BoxDeclarationStatus, Kind: KindText, Path: []string{"Declaration", "Status"}, Mandatory: true},
	}
}
