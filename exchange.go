package bankledger

import (
	"github.com/shopspring/decimal"
)

type ExchangeDirection string

const (
	ExchangeBuy  ExchangeDirection = "buy"
	ExchangeSell ExchangeDirection = "sell"
)

type ExchangeResult struct {
	Direction       ExchangeDirection `json:"direction"`
	Currency        string            `json:"currency"`
	Rate            decimal.Decimal   `json:"rate"`
	Debited         decimal.Decimal   `json:"debited"`
	Credited        decimal.Decimal   `json:"credited"`
	CheckingBalance decimal.Decimal   `json:"checkingBalance"`
	FXBalance       decimal.Decimal   `json:"fxBalance"`
}

// Exchange converts between the customer's Checking account and its FX
// account in currency. rate is the number of currency units per EUR. Buying
// debits Checking by amount and credits amount*rate; selling debits the FX
// account by amount and credits amount/rate. Nothing changes on error.
func Exchange(c *Customer, dir ExchangeDirection, currency string, amount, rate decimal.Decimal) (*ExchangeResult, error) {
	checking := c.Checking()
	if checking == nil {
		return nil, ErrNotFound{Kind: "account", ID: KindChecking.String()}
	}
	fx := c.FXAccount(currency)
	if fx == nil {
		return nil, ErrNotFound{Kind: "account", ID: "FX " + currency}
	}
	if !rate.IsPositive() {
		return nil, ErrRateUnavailable
	}
	if !amount.IsPositive() {
		return nil, badRequest("amount", "must be positive")
	}

	var from, to *Account
	var credited decimal.Decimal
	switch dir {
	case ExchangeBuy:
		if checking.Balance.LessThan(amount) {
			return nil, badRequest("amount", "insufficient EUR in Checking")
		}
		from, to, credited = checking, fx, amount.Mul(rate)
	case ExchangeSell:
		if fx.Balance.LessThan(amount) {
			return nil, badRequest("amount", "insufficient FX balance")
		}
		from, to, credited = fx, checking, amount.Div(rate)
	default:
		return nil, badRequest("direction", "must be buy or sell")
	}

	if err := from.Withdraw(amount); err != nil {
		return nil, err
	}
	to.Deposit(credited)

	return &ExchangeResult{
		Direction:       dir,
		Currency:        fx.Currency(),
		Rate:            rate,
		Debited:         amount,
		Credited:        credited,
		CheckingBalance: checking.Balance,
		FXBalance:       fx.Balance,
	}, nil
}
