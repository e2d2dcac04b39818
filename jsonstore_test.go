package bankledger_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arhyth/bankledger"
)

func newTestEndpoint(t *testing.T) *bankledger.JSONEndpoint {
	t.Helper()
	nooplog := zerolog.Nop()
	store, err := bankledger.NewRecordStore(filepath.Join(t.TempDir(), "bank.json"), &nooplog)
	require.Nil(t, err)
	node, err := snowflake.NewNode(7)
	require.Nil(t, err)
	return bankledger.NewJSONEndpoint(store, node, bankledger.NewAllocator(nil), &nooplog)
}

func newTestCustomer(id, first, last string) *bankledger.Customer {
	return &bankledger.Customer{
		ID:        id,
		FirstName: first,
		LastName:  last,
		Age:       30,
		Email:     first + "@example.com",
		Phone:     "+1 (555) 123-4567",
		Secret:    "s3cret",
		Accounts:  []*bankledger.Account{bankledger.NewChecking(0, decimal.Zero)},
	}
}

func TestJSONEndpointCustomers(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips every account kind", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		repo := newTestEndpoint(tt)
		c := newTestCustomer("10000001", "Ada", "Lovelace")
		c.Accounts = []*bankledger.Account{
			bankledger.NewChecking(111111, decimal.RequireFromString("150.25")),
			bankledger.NewSavings(222222, decimal.RequireFromString("200"), decimal.RequireFromString("0.2"), "2024-03-01"),
			bankledger.NewFX(333333, "USD", decimal.RequireFromString("12.5")),
		}
		reqrd.Nil(repo.UpsertCustomer(ctx, c))

		got, err := repo.GetCustomer(ctx, c.ID)
		reqrd.Nil(err)
		as.Equal(c.FirstName, got.FirstName)
		as.Equal(c.LastName, got.LastName)
		as.Equal(c.Age, got.Age)
		as.Equal(c.Email, got.Email)
		as.Equal(c.Phone, got.Phone)
		as.Equal(c.Secret, got.Secret)
		reqrd.Len(got.Accounts, 3)
		for i, want := range c.Accounts {
			acct := got.Accounts[i]
			as.Equal(want.ID, acct.ID)
			as.Equal(want.Kind(), acct.Kind())
			as.True(want.Balance.Equal(acct.Balance), "balance of %d", want.ID)
			as.True(want.Rate().Equal(acct.Rate()))
			as.Equal(want.LastAccrual(), acct.LastAccrual())
			as.Equal(want.Currency(), acct.Currency())
		}
	})

	t.Run("returns ErrNotFound for an unknown customer", func(tt *testing.T) {
		as := assert.New(tt)
		repo := newTestEndpoint(tt)
		c, err := repo.GetCustomer(ctx, "99999999")
		as.Nil(c)
		as.ErrorAs(err, &bankledger.ErrNotFound{})
		as.ErrorAs(repo.RemoveCustomer(ctx, "99999999"), &bankledger.ErrNotFound{})
	})

	t.Run("CreateCustomer assigns account ids and rejects duplicates", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		repo := newTestEndpoint(tt)
		c := newTestCustomer("10000001", "Ada", "Lovelace")
		c.Accounts = append(c.Accounts, bankledger.NewSavings(0, decimal.Zero, decimal.RequireFromString("0.15"), ""))
		reqrd.Nil(repo.CreateCustomer(ctx, c))
		as.GreaterOrEqual(c.Accounts[0].ID, 100000)
		as.Less(c.Accounts[0].ID, 999999)
		as.NotEqual(c.Accounts[0].ID, c.Accounts[1].ID)

		exists, err := repo.CustomerExists(ctx, c.ID)
		reqrd.Nil(err)
		as.True(exists)

		err = repo.CreateCustomer(ctx, newTestCustomer("10000001", "Other", "Person"))
		as.ErrorAs(err, &bankledger.ErrBadRequest{})
	})

	t.Run("UpsertCustomer refuses an account id owned by someone else", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		repo := newTestEndpoint(tt)
		a := newTestCustomer("10000001", "Ada", "Lovelace")
		a.Accounts[0].ID = 123456
		reqrd.Nil(repo.UpsertCustomer(ctx, a))
		b := newTestCustomer("10000002", "Alan", "Turing")
		b.Accounts[0].ID = 123456
		as.ErrorAs(repo.UpsertCustomer(ctx, b), &bankledger.ErrBadRequest{})
	})

	t.Run("RemoveCustomer deletes the record", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		repo := newTestEndpoint(tt)
		reqrd.Nil(repo.CreateCustomer(ctx, newTestCustomer("10000001", "Ada", "Lovelace")))
		reqrd.Nil(repo.RemoveCustomer(ctx, "10000001"))
		exists, err := repo.CustomerExists(ctx, "10000001")
		reqrd.Nil(err)
		as.False(exists)
	})
}

func TestJSONEndpointCredentials(t *testing.T) {
	ctx := context.Background()

	t.Run("verifies secret and phone by exact match", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		repo := newTestEndpoint(tt)
		c := newTestCustomer("10000001", "Ada", "Lovelace")
		reqrd.Nil(repo.CreateCustomer(ctx, c))

		as.True(repo.VerifySecret(ctx, c.ID, "s3cret"))
		as.False(repo.VerifySecret(ctx, c.ID, "S3CRET"))
		as.False(repo.VerifySecret(ctx, "10000002", "s3cret"))
		as.True(repo.VerifyPhone(ctx, c.ID, c.Phone))
		as.False(repo.VerifyPhone(ctx, c.ID, "5551234567"))
	})

	t.Run("ChangeSecret requires the old secret", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		repo := newTestEndpoint(tt)
		reqrd.Nil(repo.CreateCustomer(ctx, newTestCustomer("10000001", "Ada", "Lovelace")))

		as.ErrorIs(repo.ChangeSecret(ctx, "10000001", "wrong", "next"), bankledger.ErrUnauthorized)
		as.True(repo.VerifySecret(ctx, "10000001", "s3cret"))
		as.Nil(repo.ChangeSecret(ctx, "10000001", "s3cret", "next"))
		as.True(repo.VerifySecret(ctx, "10000001", "next"))
	})

	t.Run("ResetSecretWithEmail requires the stored email", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		repo := newTestEndpoint(tt)
		reqrd.Nil(repo.CreateCustomer(ctx, newTestCustomer("10000001", "Ada", "Lovelace")))

		as.ErrorIs(repo.ResetSecretWithEmail(ctx, "10000001", "eve@example.com", "x"), bankledger.ErrUnauthorized)
		as.Nil(repo.ResetSecretWithEmail(ctx, "10000001", "Ada@example.com", "fresh"))
		as.True(repo.VerifySecret(ctx, "10000001", "fresh"))
	})
}

func TestJSONEndpointFindCustomerByName(t *testing.T) {
	ctx := context.Background()
	as := assert.New(t)
	reqrd := require.New(t)
	repo := newTestEndpoint(t)
	reqrd.Nil(repo.CreateCustomer(ctx, newTestCustomer("10000001", "Ada", "Lovelace")))

	id, err := repo.FindCustomerByName(ctx, "  ada ", "LOVELACE")
	reqrd.Nil(err)
	as.Equal("10000001", id)

	_, err = repo.FindCustomerByName(ctx, "Ada", "")
	as.ErrorAs(err, &bankledger.ErrNotFound{})
	_, err = repo.FindCustomerByName(ctx, "Grace", "Hopper")
	as.ErrorAs(err, &bankledger.ErrNotFound{})
}

func TestJSONEndpointOpenFXAccount(t *testing.T) {
	ctx := context.Background()
	as := assert.New(t)
	reqrd := require.New(t)
	repo := newTestEndpoint(t)
	reqrd.Nil(repo.CreateCustomer(ctx, newTestCustomer("10000001", "Ada", "Lovelace")))

	first, err := repo.OpenFXAccount(ctx, "10000001", "usd")
	reqrd.Nil(err)
	as.Equal("USD", first.Currency())
	as.NotZero(first.ID)
	as.True(first.Balance.IsZero())

	again, err := repo.OpenFXAccount(ctx, "10000001", "USD")
	reqrd.Nil(err)
	as.Equal(first.ID, again.ID)

	c, err := repo.GetCustomer(ctx, "10000001")
	reqrd.Nil(err)
	as.Len(c.Accounts, 2)

	_, err = repo.OpenFXAccount(ctx, "10000002", "USD")
	as.ErrorAs(err, &bankledger.ErrNotFound{})
}

func TestJSONEndpointTransfers(t *testing.T) {
	ctx := context.Background()
	day := int64(24 * time.Hour / time.Millisecond)

	t.Run("AppendTransfer stamps id and timestamp", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		repo := newTestEndpoint(tt)
		before := time.Now().UnixMilli()
		e, err := repo.AppendTransfer(ctx, bankledger.TransferEntry{
			FromCustomerID: "10000001",
			Amount:         decimal.NewFromInt(1),
			Mode:           bankledger.ModeByAccountID,
			Status:         bankledger.StatusFailed,
			Error:          bankledger.ReasonMissingDestination,
		})
		reqrd.Nil(err)
		as.NotZero(e.ID)
		as.GreaterOrEqual(e.TS, before)
		as.Equal(e.ID.Time(), e.TS)
	})

	t.Run("filters by customer and window, newest first", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		repo := newTestEndpoint(tt)
		now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
		bankledger.SetEndpointClock(repo, func() time.Time { return now })
		nowMS := now.UnixMilli()

		entries := []bankledger.TransferEntry{
			{TS: nowMS - 40*day, FromCustomerID: "10000001", ToCustomerID: "10000002"},
			{TS: nowMS - 2*day, FromCustomerID: "10000002", ToCustomerID: "10000001"},
			{TS: nowMS - 1*day, FromCustomerID: "10000003", ToCustomerID: "10000002"},
			{TS: nowMS - 7*day - day/2, FromCustomerID: "10000001"},
		}
		for _, e := range entries {
			_, err := repo.AppendTransfer(ctx, e)
			reqrd.Nil(err)
		}

		all, err := repo.Transfers(ctx, "10000001", 0)
		reqrd.Nil(err)
		reqrd.Len(all, 3)
		as.Equal(nowMS-2*day, all[0].TS)
		as.Equal(nowMS-7*day-day/2, all[1].TS)
		as.Equal(nowMS-40*day, all[2].TS)

		// 7.5 days old is 7 whole days, still inside a 7 day window
		recent, err := repo.Transfers(ctx, "10000001", 7)
		reqrd.Nil(err)
		reqrd.Len(recent, 2)
		as.Equal(nowMS-2*day, recent[0].TS)

		none, err := repo.Transfers(ctx, "10000009", 0)
		reqrd.Nil(err)
		as.Empty(none)
	})
}

func TestJSONEndpointConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	as := assert.New(t)
	reqrd := require.New(t)
	repo := newTestEndpoint(t)
	reqrd.Nil(repo.CreateCustomer(ctx, newTestCustomer("10000001", "Ada", "Lovelace")))

	const writers = 50
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.UpdateCustomer(ctx, "10000001", func(c *bankledger.Customer) error {
				c.Checking().Deposit(decimal.NewFromInt(1))
				return nil
			})
			as.Nil(err)
		}()
	}
	wg.Wait()

	got, err := repo.GetCustomer(ctx, "10000001")
	reqrd.Nil(err)
	as.True(decimal.NewFromInt(writers).Equal(got.Checking().Balance), got.Checking().Balance.String())
}
