package bankledger_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arhyth/bankledger"
)

func TestRecordStoreLoad(t *testing.T) {
	nooplog := zerolog.Nop()

	t.Run("creates an empty document when the file is missing", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		path := filepath.Join(tt.TempDir(), "nested", "bank.json")

		store, err := bankledger.NewRecordStore(path, &nooplog)
		reqrd.Nil(err)
		doc, err := store.Load(context.Background())
		reqrd.Nil(err)
		as.Empty(doc.Customers)
		as.Empty(doc.Transfers)

		raw, err := os.ReadFile(path)
		reqrd.Nil(err)
		var persisted map[string]any
		reqrd.Nil(json.Unmarshal(raw, &persisted))
		as.Equal(map[string]any{}, persisted["customers"])
		as.Equal([]any{}, persisted["transfers"])
	})

	t.Run("treats an empty file as missing", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		path := filepath.Join(tt.TempDir(), "bank.json")
		reqrd.Nil(os.WriteFile(path, []byte("  \n"), 0o644))

		store, err := bankledger.NewRecordStore(path, &nooplog)
		reqrd.Nil(err)
		doc, err := store.Load(context.Background())
		reqrd.Nil(err)
		as.Empty(doc.Customers)
		_, err = os.Stat(path + ".corrupt")
		as.True(os.IsNotExist(err))
	})

	t.Run("quarantines a file that is not valid JSON", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		path := filepath.Join(tt.TempDir(), "bank.json")
		garbage := []byte(`{"customers": {"10000001": `)
		reqrd.Nil(os.WriteFile(path, garbage, 0o644))

		store, err := bankledger.NewRecordStore(path, &nooplog)
		reqrd.Nil(err)

		quarantined, err := os.ReadFile(path + ".corrupt")
		reqrd.Nil(err)
		as.Equal(garbage, quarantined)

		doc, err := store.Load(context.Background())
		reqrd.Nil(err)
		as.Empty(doc.Customers)
		as.Empty(doc.Transfers)
		raw, err := os.ReadFile(path)
		reqrd.Nil(err)
		as.True(json.Valid(raw))
	})

	t.Run("discards a root that is not an object", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		path := filepath.Join(tt.TempDir(), "bank.json")
		reqrd.Nil(os.WriteFile(path, []byte(`[1, 2, 3]`), 0o644))

		store, err := bankledger.NewRecordStore(path, &nooplog)
		reqrd.Nil(err)
		doc, err := store.Load(context.Background())
		reqrd.Nil(err)
		as.Empty(doc.Customers)
		_, err = os.Stat(path + ".corrupt")
		as.True(os.IsNotExist(err))
	})

	t.Run("migrates the legacy layout", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		path := filepath.Join(tt.TempDir(), "bank.json")
		legacy := `{
			"10000001": {"name": "Ada King Lovelace", "age": 36, "email": "ada@example.com",
				"secretWord": "engine", "phone": "5551234567",
				"accounts": [{"accId": 123456, "type": "Checking", "balance": 12.5}]},
			"transfers": [{"ts": 1700000000000, "fromCustomerId": "10000001", "fromAccId": 123456,
				"amount": 1, "mode": "by_account_id", "status": "failed", "error": "Invalid amount.",
				"target": "", "toCustomerId": "", "toAccId": 0}]
		}`
		reqrd.Nil(os.WriteFile(path, []byte(legacy), 0o644))

		store, err := bankledger.NewRecordStore(path, &nooplog)
		reqrd.Nil(err)
		doc, err := store.Load(context.Background())
		reqrd.Nil(err)
		as.Len(doc.Customers, 1)
		as.Contains(doc.Customers, "10000001")
		as.NotContains(doc.Customers, "transfers")
		reqrd.Len(doc.Transfers, 1)
		as.Equal(int64(1700000000000), doc.Transfers[0].TS)

		// the next save writes the current layout
		reqrd.Nil(store.Save(context.Background(), doc))
		raw, err := os.ReadFile(path)
		reqrd.Nil(err)
		var top map[string]json.RawMessage
		reqrd.Nil(json.Unmarshal(raw, &top))
		as.Contains(top, "customers")
		as.Contains(top, "transfers")
		as.NotContains(top, "10000001")
	})
}

func TestRecordStoreSave(t *testing.T) {
	nooplog := zerolog.Nop()

	t.Run("keeps the previous content in a backup", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		path := filepath.Join(tt.TempDir(), "bank.json")
		store, err := bankledger.NewRecordStore(path, &nooplog)
		reqrd.Nil(err)
		before, err := os.ReadFile(path)
		reqrd.Nil(err)

		err = store.Update(context.Background(), func(doc *bankledger.Document) error {
			doc.Transfers = append(doc.Transfers, bankledger.TransferEntry{
				TS:     1,
				Amount: decimal.NewFromInt(5),
				Mode:   bankledger.ModeByAccountID,
				Status: bankledger.StatusFailed,
				Error:  bankledger.ReasonDestNotFound,
			})
			return nil
		})
		reqrd.Nil(err)

		backup, err := os.ReadFile(path + ".bak")
		reqrd.Nil(err)
		as.Equal(before, backup)
		after, err := os.ReadFile(path)
		reqrd.Nil(err)
		as.True(json.Valid(after))
		as.NotEqual(before, after)
		_, err = os.Stat(path + ".tmp")
		as.True(os.IsNotExist(err))
	})

	t.Run("Update writes nothing when the mutation fails", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		path := filepath.Join(tt.TempDir(), "bank.json")
		store, err := bankledger.NewRecordStore(path, &nooplog)
		reqrd.Nil(err)
		before, err := os.ReadFile(path)
		reqrd.Nil(err)

		err = store.Update(context.Background(), func(doc *bankledger.Document) error {
			doc.Transfers = append(doc.Transfers, bankledger.TransferEntry{TS: 1})
			return bankledger.ErrUnauthorized
		})
		as.ErrorIs(err, bankledger.ErrUnauthorized)
		after, err := os.ReadFile(path)
		reqrd.Nil(err)
		as.Equal(before, after)
	})

	t.Run("Update honours a cancelled context", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		store, err := bankledger.NewRecordStore(filepath.Join(tt.TempDir(), "bank.json"), &nooplog)
		reqrd.Nil(err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		called := false
		err = store.Update(ctx, func(*bankledger.Document) error {
			called = true
			return nil
		})
		as.ErrorIs(err, context.Canceled)
		as.False(called)
	})
}

func TestRecordStoreUnreadableRecords(t *testing.T) {
	ctx := context.Background()
	as := assert.New(t)
	reqrd := require.New(t)
	nooplog := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "bank.json")
	stored := `{
		"customers": {
			"10000001": {"firstName": "Ada", "lastName": "Lovelace", "secretWord": "s3cret",
				"accounts": [{"accId": 111111, "type": "Checking", "balance": 10}]},
			"10000002": {"firstName": "Bob", "lastName": "Stone", "age": "41",
				"accounts": [{"accId": 222222, "type": "Checking", "balance": 5000}]}
		},
		"transfers": [
			{"ts": 1, "fromCustomerId": "10000001", "fromAccId": 111111, "amount": 1, "status": "ok"},
			{"ts": 2, "fromCustomerId": "10000002", "fromAccId": "222222", "amount": 7, "status": "ok"},
			{"ts": 3, "fromCustomerId": "10000001", "fromAccId": 111111, "amount": 2, "status": "ok"}
		]
	}`
	reqrd.Nil(os.WriteFile(path, []byte(stored), 0o644))

	store, err := bankledger.NewRecordStore(path, &nooplog)
	reqrd.Nil(err)
	// the first draw collides with the unreadable customer's account
	calls := 0
	alloc := bankledger.NewAllocator(func(int) int {
		calls++
		if calls == 1 {
			return 222222 - 100000
		}
		return 5
	})
	node, err := snowflake.NewNode(1)
	reqrd.Nil(err)
	repo := bankledger.NewJSONEndpoint(store, node, alloc, &nooplog)

	doc, err := store.Load(ctx)
	reqrd.Nil(err)
	as.Len(doc.Problems(), 2)
	reqrd.Len(doc.Transfers, 2)

	// unrelated writes keep the unreadable records
	_, err = repo.UpdateCustomer(ctx, "10000001", func(c *bankledger.Customer) error {
		c.Checking().Deposit(decimal.NewFromInt(5))
		return nil
	})
	reqrd.Nil(err)
	fx, err := repo.OpenFXAccount(ctx, "10000001", "USD")
	reqrd.Nil(err)
	as.Equal(100005, fx.ID)

	entry, err := repo.CommitTransfer(ctx, bankledger.TransferReq{
		CustomerID:   "10000001",
		SourceAcctID: 111111,
		Amount:       decimal.NewFromInt(1),
		DestAcctID:   222222,
	})
	as.ErrorAs(err, &bankledger.ErrTransferFailed{})
	as.Equal(bankledger.ReasonRecipientLoad, entry.Error)

	raw, err := os.ReadFile(path)
	reqrd.Nil(err)
	var persisted struct {
		Customers map[string]map[string]any `json:"customers"`
		Transfers []map[string]any          `json:"transfers"`
	}
	reqrd.Nil(json.Unmarshal(raw, &persisted))
	reqrd.Contains(persisted.Customers, "10000002")
	as.Equal("41", persisted.Customers["10000002"]["age"])
	reqrd.Len(persisted.Transfers, 4)
	as.Equal("222222", persisted.Transfers[1]["fromAccId"])
	as.Equal(float64(3), persisted.Transfers[2]["ts"])

	// the customer still counts as registered, and only removal drops it
	exists, err := repo.CustomerExists(ctx, "10000002")
	reqrd.Nil(err)
	as.True(exists)
	as.ErrorAs(repo.CreateCustomer(ctx, newTestCustomer("10000002", "Eve", "Mallory")), &bankledger.ErrBadRequest{})
	_, err = repo.GetCustomer(ctx, "10000002")
	as.ErrorAs(err, &bankledger.ErrNotFound{})
	reqrd.Nil(repo.RemoveCustomer(ctx, "10000002"))
	exists, err = repo.CustomerExists(ctx, "10000002")
	reqrd.Nil(err)
	as.False(exists)
}
