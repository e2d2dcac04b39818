package bankledger

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// JSONEndpoint implements Repository on top of a RecordStore.
type JSONEndpoint struct {
	store *RecordStore
	node  *snowflake.Node
	alloc *Allocator
	log   *zerolog.Logger
	now   func() time.Time
}

var (
	_ Repository = (*JSONEndpoint)(nil)
)

func NewJSONEndpoint(store *RecordStore, node *snowflake.Node, alloc *Allocator, log *zerolog.Logger) *JSONEndpoint {
	return &JSONEndpoint{
		store: store,
		node:  node,
		alloc: alloc,
		log:   log,
		now:   time.Now,
	}
}

// OpenJSONEndpoint opens the store named in cfg with a snowflake node for
// ledger ids.
func OpenJSONEndpoint(cfg Config, log *zerolog.Logger) (*JSONEndpoint, error) {
	store, err := NewRecordStore(cfg.Store.Path, log)
	if err != nil {
		return nil, err
	}
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, err
	}
	return NewJSONEndpoint(store, node, NewAllocator(nil), log), nil
}

func (j *JSONEndpoint) CustomerExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := j.store.View(ctx, func(doc *Document) error {
		exists = doc.has(id)
		return nil
	})
	return exists, err
}

func (j *JSONEndpoint) CreateCustomer(ctx context.Context, c *Customer) error {
	return j.store.Update(ctx, func(doc *Document) error {
		if doc.has(c.ID) {
			return badRequest("id", "customer already registered")
		}
		return doc.putCustomer(c, j.alloc)
	})
}

func (j *JSONEndpoint) UpsertCustomer(ctx context.Context, c *Customer) error {
	return j.store.Update(ctx, func(doc *Document) error {
		return doc.putCustomer(c, j.alloc)
	})
}

func (j *JSONEndpoint) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	var c *Customer
	err := j.store.View(ctx, func(doc *Document) error {
		var ok bool
		if c, ok = doc.customer(id); !ok {
			return ErrNotFound{Kind: "customer", ID: id}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (j *JSONEndpoint) UpdateCustomer(ctx context.Context, id string, fn func(*Customer) error) (*Customer, error) {
	var c *Customer
	err := j.store.Update(ctx, func(doc *Document) error {
		var ok bool
		if c, ok = doc.customer(id); !ok {
			return ErrNotFound{Kind: "customer", ID: id}
		}
		if err := fn(c); err != nil {
			return err
		}
		return doc.putCustomer(c, j.alloc)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (j *JSONEndpoint) RemoveCustomer(ctx context.Context, id string) error {
	return j.store.Update(ctx, func(doc *Document) error {
		if !doc.has(id) {
			return ErrNotFound{Kind: "customer", ID: id}
		}
		doc.remove(id)
		return nil
	})
}

func (j *JSONEndpoint) VerifySecret(ctx context.Context, id, secret string) bool {
	return j.matchField(ctx, id, func(rec *customerRecord) bool {
		return rec.SecretWord == secret
	})
}

func (j *JSONEndpoint) VerifyPhone(ctx context.Context, id, phone string) bool {
	return j.matchField(ctx, id, func(rec *customerRecord) bool {
		return rec.Phone == phone
	})
}

func (j *JSONEndpoint) matchField(ctx context.Context, id string, match func(*customerRecord) bool) bool {
	var ok bool
	err := j.store.View(ctx, func(doc *Document) error {
		rec, found := doc.Customers[id]
		ok = found && match(rec)
		return nil
	})
	if err != nil {
		j.log.Err(err).Str("customer", id).Msg("credential check failed to read store")
		return false
	}
	return ok
}

func (j *JSONEndpoint) ChangeSecret(ctx context.Context, id, oldSecret, newSecret string) error {
	return j.store.Update(ctx, func(doc *Document) error {
		rec, ok := doc.Customers[id]
		if !ok {
			return ErrNotFound{Kind: "customer", ID: id}
		}
		if rec.SecretWord != oldSecret {
			return ErrUnauthorized
		}
		rec.SecretWord = newSecret
		return nil
	})
}

func (j *JSONEndpoint) ResetSecretWithEmail(ctx context.Context, id, email, newSecret string) error {
	return j.store.Update(ctx, func(doc *Document) error {
		rec, ok := doc.Customers[id]
		if !ok {
			return ErrNotFound{Kind: "customer", ID: id}
		}
		if rec.Email != email {
			return ErrUnauthorized
		}
		rec.SecretWord = newSecret
		return nil
	})
}

func (j *JSONEndpoint) FindCustomerByName(ctx context.Context, first, last string) (string, error) {
	var id string
	err := j.store.View(ctx, func(doc *Document) error {
		var ok bool
		if id, ok = doc.findByName(first, last); !ok {
			return ErrNotFound{Kind: "customer", ID: strings.TrimSpace(first + " " + last)}
		}
		return nil
	})
	return id, err
}

// OpenFXAccount returns the customer's account in currency, opening an empty
// one when none exists.
func (j *JSONEndpoint) OpenFXAccount(ctx context.Context, id, currency string) (*Account, error) {
	currency = strings.ToUpper(currency)
	var acct *Account
	_, err := j.UpdateCustomer(ctx, id, func(c *Customer) error {
		if acct = c.FXAccount(currency); acct != nil {
			return nil
		}
		acct = NewFX(0, currency, decimal.Zero)
		c.Accounts = append(c.Accounts, acct)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acct, nil
}

func (j *JSONEndpoint) CommitTransfer(ctx context.Context, req TransferReq) (*TransferEntry, error) {
	var (
		entry  *TransferEntry
		result error
	)
	err := j.store.Update(ctx, func(doc *Document) error {
		entry, result = ExecuteTransfer(doc, req)
		if entry == nil {
			return result
		}
		j.stamp(entry)
		doc.Transfers = append(doc.Transfers, *entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, result
}

func (j *JSONEndpoint) AppendTransfer(ctx context.Context, entry TransferEntry) (*TransferEntry, error) {
	err := j.store.Update(ctx, func(doc *Document) error {
		j.stamp(&entry)
		doc.Transfers = append(doc.Transfers, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (j *JSONEndpoint) stamp(e *TransferEntry) {
	if e.ID == 0 {
		e.ID = j.node.Generate()
	}
	if e.TS == 0 {
		e.TS = e.ID.Time()
	}
}

// Transfers lists the entries sent or received by customerID, newest first.
// With daysBack > 0, entries more than daysBack whole days old are skipped.
func (j *JSONEndpoint) Transfers(ctx context.Context, customerID string, daysBack int) ([]TransferEntry, error) {
	nowMS := j.now().UnixMilli()
	entries := []TransferEntry{}
	err := j.store.View(ctx, func(doc *Document) error {
		for _, e := range doc.Transfers {
			if !e.involves(customerID) {
				continue
			}
			if daysBack > 0 && ageInDays(nowMS, e.TS) > int64(daysBack) {
				continue
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].TS > entries[b].TS
	})
	return entries, nil
}

func ageInDays(nowMS, ts int64) int64 {
	return (nowMS - ts) / int64(24*time.Hour/time.Millisecond)
}
