package bankledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arhyth/bankledger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAccountWithdraw(t *testing.T) {
	cases := []struct {
		name    string
		amount  string
		wantErr bool
		want    string
	}{
		{"zero amount", "0", true, "100"},
		{"negative amount", "-5", true, "100"},
		{"more than balance", "100.01", true, "100"},
		{"exact balance", "100", false, "0"},
		{"part of balance", "40.50", false, "59.50"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(tt *testing.T) {
			as := assert.New(tt)
			acct := bankledger.NewChecking(123456, dec("100"))
			err := acct.Withdraw(dec(tc.amount))
			if tc.wantErr {
				as.ErrorAs(err, &bankledger.ErrBadRequest{})
			} else {
				as.Nil(err)
			}
			as.True(dec(tc.want).Equal(acct.Balance), "balance %s", acct.Balance)
		})
	}
}

func TestAccountDeposit(t *testing.T) {
	t.Run("non-positive amount is a reported no-op", func(tt *testing.T) {
		as := assert.New(tt)
		acct := bankledger.NewChecking(123456, dec("10"))
		as.False(acct.Deposit(dec("0")))
		as.False(acct.Deposit(dec("-3")))
		as.True(dec("10").Equal(acct.Balance))
	})

	t.Run("credits a positive amount", func(tt *testing.T) {
		as := assert.New(tt)
		acct := bankledger.NewChecking(123456, dec("10"))
		as.True(acct.Deposit(dec("2.25")))
		as.True(dec("12.25").Equal(acct.Balance))
	})
}

func TestAccountKinds(t *testing.T) {
	as := assert.New(t)
	checking := bankledger.NewChecking(1, decimal.Zero)
	savings := bankledger.NewSavings(2, decimal.Zero, decimal.Zero, "")
	fx := bankledger.NewFX(3, "JPY", decimal.Zero)

	as.Equal("EUR", checking.Currency())
	as.Equal("EUR", savings.Currency())
	as.Equal("JPY", fx.Currency())
	as.True(dec("0.15").Equal(savings.EffectiveRate()))
	as.Equal(bankledger.KindSavings, bankledger.ParseAccountKind("Savings"))
	as.Equal(bankledger.KindChecking, bankledger.ParseAccountKind("Mystery"))
	as.Equal("FX", fx.Kind().String())
}

func TestAccrueSavingsInterest(t *testing.T) {
	today := time.Date(2024, 6, 30, 9, 30, 0, 0, time.Local)

	t.Run("ten days at 15 percent on 200", func(tt *testing.T) {
		as := assert.New(tt)
		c := &bankledger.Customer{
			ID: "10000001",
			Accounts: []*bankledger.Account{
				bankledger.NewSavings(222222, dec("200.00"), dec("0.15"), "2024-06-20"),
			},
		}
		interest, skipped := bankledger.AccrueSavingsInterest(c, today)
		as.Empty(skipped)
		acct := c.Accounts[0]
		as.InDelta(200.8219, acct.Balance.InexactFloat64(), 0.0001)
		as.InDelta(0.8219, interest.InexactFloat64(), 0.0001)
		as.Equal("2024-06-30", acct.LastAccrual())
	})

	t.Run("first observation only stamps the date", func(tt *testing.T) {
		as := assert.New(tt)
		acct := bankledger.NewSavings(222222, dec("200"), dec("0.15"), "")
		c := &bankledger.Customer{Accounts: []*bankledger.Account{acct}}
		interest, skipped := bankledger.AccrueSavingsInterest(c, today)
		as.Empty(skipped)
		as.True(interest.IsZero())
		as.True(dec("200").Equal(acct.Balance))
		as.Equal("2024-06-30", acct.LastAccrual())
	})

	t.Run("same day or future date changes nothing", func(tt *testing.T) {
		as := assert.New(tt)
		same := bankledger.NewSavings(1, dec("200"), dec("0.15"), "2024-06-30")
		future := bankledger.NewSavings(2, dec("200"), dec("0.15"), "2024-07-04")
		c := &bankledger.Customer{Accounts: []*bankledger.Account{same, future}}
		_, skipped := bankledger.AccrueSavingsInterest(c, today)
		as.Empty(skipped)
		as.True(dec("200").Equal(same.Balance))
		as.True(dec("200").Equal(future.Balance))
		as.Equal("2024-07-04", future.LastAccrual())
	})

	t.Run("non-positive rate falls back to 15 percent", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		acct := bankledger.NewSavings(1, dec("365"), dec("-1"), "2024-06-29")
		c := &bankledger.Customer{Accounts: []*bankledger.Account{acct}}
		interest, skipped := bankledger.AccrueSavingsInterest(c, today)
		as.Empty(skipped)
		reqrd.True(dec("0.15").Equal(interest), "interest %s", interest)
		as.True(dec("365.15").Equal(acct.Balance))
	})

	t.Run("leaves other kinds alone", func(tt *testing.T) {
		as := assert.New(tt)
		checking := bankledger.NewChecking(1, dec("100"))
		c := &bankledger.Customer{Accounts: []*bankledger.Account{checking}}
		interest, skipped := bankledger.AccrueSavingsInterest(c, today)
		as.True(interest.IsZero())
		as.Empty(skipped)
		as.True(dec("100").Equal(checking.Balance))
	})

	t.Run("unreadable date is skipped and kept", func(tt *testing.T) {
		as := assert.New(tt)
		odd := bankledger.NewSavings(1, dec("200"), dec("0.15"), "2026/10/08")
		fresh := bankledger.NewSavings(2, dec("365"), dec("0.15"), "2024-06-29")
		c := &bankledger.Customer{Accounts: []*bankledger.Account{odd, fresh}}
		interest, skipped := bankledger.AccrueSavingsInterest(c, today)
		as.Equal([]int{1}, skipped)
		as.True(dec("0.15").Equal(interest), "interest %s", interest)
		as.True(dec("200").Equal(odd.Balance))
		as.Equal("2026/10/08", odd.LastAccrual())
		as.Equal("2024-06-30", fresh.LastAccrual())
	})
}

func TestExchange(t *testing.T) {
	newCustomer := func() *bankledger.Customer {
		return &bankledger.Customer{
			ID: "10000001",
			Accounts: []*bankledger.Account{
				bankledger.NewChecking(111111, dec("100")),
				bankledger.NewFX(333333, "USD", dec("50")),
			},
		}
	}

	t.Run("buy debits Checking and credits amount times rate", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		c := newCustomer()
		res, err := bankledger.Exchange(c, bankledger.ExchangeBuy, "USD", dec("10"), dec("1.1"))
		reqrd.Nil(err)
		as.True(dec("11").Equal(res.Credited))
		as.True(dec("90").Equal(c.Checking().Balance))
		as.True(dec("61").Equal(c.FXAccount("USD").Balance))
	})

	t.Run("sell debits FX and credits amount over rate", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		c := newCustomer()
		res, err := bankledger.Exchange(c, bankledger.ExchangeSell, "USD", dec("22"), dec("1.1"))
		reqrd.Nil(err)
		as.True(dec("20").Equal(res.Credited))
		as.True(dec("120").Equal(c.Checking().Balance))
		as.True(dec("28").Equal(c.FXAccount("USD").Balance))
	})

	t.Run("rejects without mutation", func(tt *testing.T) {
		cases := []struct {
			name     string
			dir      bankledger.ExchangeDirection
			currency string
			amount   string
			rate     string
			check    func(*assert.Assertions, error)
		}{
			{"zero rate", bankledger.ExchangeBuy, "USD", "10", "0", func(as *assert.Assertions, err error) {
				as.ErrorIs(err, bankledger.ErrRateUnavailable)
			}},
			{"no FX account", bankledger.ExchangeBuy, "GBP", "10", "0.9", func(as *assert.Assertions, err error) {
				as.ErrorAs(err, &bankledger.ErrNotFound{})
			}},
			{"insufficient EUR", bankledger.ExchangeBuy, "USD", "100.01", "1.1", func(as *assert.Assertions, err error) {
				as.ErrorAs(err, &bankledger.ErrBadRequest{})
			}},
			{"insufficient FX", bankledger.ExchangeSell, "USD", "51", "1.1", func(as *assert.Assertions, err error) {
				as.ErrorAs(err, &bankledger.ErrBadRequest{})
			}},
			{"negative amount", bankledger.ExchangeSell, "USD", "-1", "1.1", func(as *assert.Assertions, err error) {
				as.ErrorAs(err, &bankledger.ErrBadRequest{})
			}},
		}
		for _, tc := range cases {
			tt.Run(tc.name, func(ttt *testing.T) {
				as := assert.New(ttt)
				c := newCustomer()
				res, err := bankledger.Exchange(c, tc.dir, tc.currency, dec(tc.amount), dec(tc.rate))
				as.Nil(res)
				tc.check(as, err)
				as.True(dec("100").Equal(c.Checking().Balance))
				as.True(dec("50").Equal(c.FXAccount("USD").Balance))
			})
		}
	})

	t.Run("requires a Checking account", func(tt *testing.T) {
		as := assert.New(tt)
		c := &bankledger.Customer{Accounts: []*bankledger.Account{bankledger.NewFX(1, "USD", dec("5"))}}
		_, err := bankledger.Exchange(c, bankledger.ExchangeSell, "USD", dec("1"), dec("1.1"))
		as.ErrorAs(err, &bankledger.ErrNotFound{})
	})
}
