package models

// BankKind tags which variant a Bank record is.
type BankKind string

const (
	Headquarters BankKind = "HEADQUARTERS"
	Branch       BankKind = "BRANCH"
)

// HeadquarterSuffix is the branch part every headquarters code ends with.
const HeadquarterSuffix = "XXX"

// Coded is implemented by anything addressable by a full 11-character SWIFT code.
type Coded interface {
	FullCode() string
	IsHeadquarter() bool
}

// Country is keyed by its ISO2 code; one key maps to exactly one name.
type Country struct {
	ISO2 string
	Name string
}

// Bank is either a headquarters or a branch of an institution. Both variants
// share the prefix, address, name and country; only branches carry a suffix.
type Bank struct {
	Kind        BankKind
	Prefix      string
	Suffix      string
	Address     string
	BankName    string
	CountryISO2 string
}

// NewHeadquarters builds a headquarters record for prefix.
func NewHeadquarters(prefix, address, bankName, countryISO2 string) Bank {
	return Bank{
		Kind:        Headquarters,
		Prefix:      prefix,
		Address:     address,
		BankName:    bankName,
		CountryISO2: countryISO2,
	}
}

// NewBranch builds a branch record for prefix+suffix.
func NewBranch(prefix, suffix, address, bankName, countryISO2 string) Bank {
	return Bank{
		Kind:        Branch,
		Prefix:      prefix,
		Suffix:      suffix,
		Address:     address,
		BankName:    bankName,
		CountryISO2: countryISO2,
	}
}

// FullCode returns prefix+"XXX" for headquarters and prefix+suffix for branches.
func (b Bank) FullCode() string {
	if b.Kind == Headquarters {
		return b.Prefix + HeadquarterSuffix
	}
	return b.Prefix + b.Suffix
}

func (b Bank) IsHeadquarter() bool {
	return b.Kind == Headquarters
}

// BankDetail is a bank resolved together with its country name. Branches is
// only populated for headquarters.
type BankDetail struct {
	Bank        Bank
	CountryName string
	Branches    []Bank
}

// CountryBanks holds every headquarters and branch registered in a country,
// headquarters first, each group in insertion order.
type CountryBanks struct {
	Country Country
	Banks   []Bank
}
