package bankledger

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// BaseCurrency denominates Checking and Savings balances.
const BaseCurrency = "EUR"

var defaultSavingsRate = decimal.RequireFromString("0.15")

type AccountKind int

const (
	KindChecking AccountKind = iota
	KindSavings
	KindFX
)

func (k AccountKind) String() string {
	switch k {
	case KindSavings:
		return "Savings"
	case KindFX:
		return "FX"
	default:
		return "Checking"
	}
}

// ParseAccountKind maps a stored type label to a kind. Unknown labels are
// read as Checking.
func ParseAccountKind(s string) AccountKind {
	switch s {
	case "Savings":
		return KindSavings
	case "FX":
		return KindFX
	default:
		return KindChecking
	}
}

// Account is a balance owned by exactly one customer. Kind specific fields
// are set only by the constructors.
type Account struct {
	ID      int
	Balance decimal.Decimal

	kind        AccountKind
	rate        decimal.Decimal
	lastAccrual string
	currency    string
}

func NewChecking(id int, balance decimal.Decimal) *Account {
	return &Account{ID: id, Balance: balance, kind: KindChecking}
}

// NewSavings builds a Savings account. lastAccrual is a YYYY-MM-DD date or
// empty when interest was never accrued.
func NewSavings(id int, balance, rate decimal.Decimal, lastAccrual string) *Account {
	return &Account{
		ID:          id,
		Balance:     balance,
		kind:        KindSavings,
		rate:        rate,
		lastAccrual: lastAccrual,
	}
}

func NewFX(id int, currency string, balance decimal.Decimal) *Account {
	return &Account{ID: id, Balance: balance, kind: KindFX, currency: currency}
}

func (a *Account) Kind() AccountKind {
	return a.kind
}

func (a *Account) Rate() decimal.Decimal {
	return a.rate
}

// EffectiveRate is the stored rate, or the default rate when the stored one
// is not positive.
func (a *Account) EffectiveRate() decimal.Decimal {
	if a.rate.IsPositive() {
		return a.rate
	}
	return defaultSavingsRate
}

func (a *Account) LastAccrual() string {
	return a.lastAccrual
}

// Currency returns the currency the balance is held in.
func (a *Account) Currency() string {
	if a.kind == KindFX {
		return a.currency
	}
	return BaseCurrency
}

// Deposit credits a positive amount. Non-positive amounts leave the balance
// untouched and report false.
func (a *Account) Deposit(amount decimal.Decimal) bool {
	if !amount.IsPositive() {
		return false
	}
	a.Balance = a.Balance.Add(amount)
	return true
}

func (a *Account) Withdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return badRequest("amount", "must be positive")
	}
	if amount.GreaterThan(a.Balance) {
		return badRequest("amount", "insufficient funds")
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

func (a *Account) MarshalJSON() ([]byte, error) {
	return json.Marshal(newAccountRecord(a))
}
