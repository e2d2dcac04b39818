package bankledger

import (
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var daysPerYear = decimal.NewFromInt(365)

// AccrueSavingsInterest credits simple interest on every Savings account for
// the whole days elapsed since its last accrual date and stamps today's date.
// An account seen for the first time only gets stamped. An account whose date
// does not parse is left untouched and its id is returned in skipped. It
// returns the total interest credited.
func AccrueSavingsInterest(c *Customer, today time.Time) (total decimal.Decimal, skipped []int) {
	stamp := today.Format(dateLayout)
	day, _ := time.Parse(dateLayout, stamp)

	total = decimal.Zero
	for _, a := range c.Accounts {
		if a.Kind() != KindSavings {
			continue
		}
		if a.lastAccrual == "" {
			a.lastAccrual = stamp
			continue
		}
		last, err := time.Parse(dateLayout, a.lastAccrual)
		if err != nil {
			skipped = append(skipped, a.ID)
			continue
		}
		days := int64(day.Sub(last).Hours() / 24)
		if days <= 0 {
			continue
		}
		interest := a.Balance.
			Mul(a.EffectiveRate()).
			Mul(decimal.NewFromInt(days)).
			Div(daysPerYear)
		a.Balance = a.Balance.Add(interest)
		a.lastAccrual = stamp
		total = total.Add(interest)
	}
	return total, skipped
}
