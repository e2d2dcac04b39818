package bankledger_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arhyth/bankledger"
)

func TestFormatAmount(t *testing.T) {
	as := assert.New(t)
	as.Equal("$1,234.50", bankledger.FormatAmount(dec("1234.5"), "USD"))
	as.Equal("$0.01", bankledger.FormatAmount(dec("0.005"), "USD"))
	as.Equal("12.30 XYZ", bankledger.FormatAmount(dec("12.3"), "XYZ"))
}

func TestRenderStatement(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	c := &bankledger.Customer{
		ID:        "10000001",
		FirstName: "Zoë",
		LastName:  "Ångström",
		Accounts: []*bankledger.Account{
			bankledger.NewChecking(111111, dec("110")),
			bankledger.NewSavings(111112, dec("200.82"), dec("0.15"), "2024-06-30"),
			bankledger.NewFX(111113, "USD", dec("10.83")),
		},
	}

	t.Run("renders accounts and entries", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		entries := []bankledger.TransferEntry{
			{TS: now.UnixMilli(), FromCustomerID: "10000001", FromAccID: 111111, Amount: dec("40"), Status: bankledger.StatusOK, Target: "222222", ToCustomerID: "10000002", ToAccID: 222222},
			{TS: now.UnixMilli() - 1000, FromCustomerID: "10000001", FromAccID: 111111, Amount: dec("500"), Status: bankledger.StatusFailed, Error: bankledger.ReasonInsufficientFunds},
		}
		buf := new(bytes.Buffer)
		reqrd.Nil(bankledger.RenderStatement(buf, c, entries, now))
		as.True(bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
		as.Contains(buf.String(), "%%EOF")
	})

	t.Run("renders an empty period", func(tt *testing.T) {
		as := assert.New(tt)
		buf := new(bytes.Buffer)
		as.Nil(bankledger.RenderStatement(buf, c, nil, now))
		as.True(bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	})
}
