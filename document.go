package bankledger

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func init() {
	// balances are stored as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

type TransferMode string

const (
	ModeByAccountID TransferMode = "by_account_id"
	ModeByName      TransferMode = "by_name"
)

type TransferStatus string

const (
	StatusOK     TransferStatus = "ok"
	StatusFailed TransferStatus = "failed"
)

// TransferEntry records one transfer attempt. Entries are never changed once
// appended.
type TransferEntry struct {
	ID             snowflake.ID    `json:"id,omitempty"`
	TS             int64           `json:"ts"`
	FromCustomerID string          `json:"fromCustomerId"`
	FromAccID      int             `json:"fromAccId"`
	Amount         decimal.Decimal `json:"amount"`
	Mode           TransferMode    `json:"mode"`
	Status         TransferStatus  `json:"status"`
	Error          string          `json:"error"`
	Target         string          `json:"target"`
	ToCustomerID   string          `json:"toCustomerId"`
	ToAccID        int             `json:"toAccId"`
}

func (e *TransferEntry) involves(customerID string) bool {
	return e.FromCustomerID == customerID || e.ToCustomerID == customerID
}

type accountRecord struct {
	AccID         int              `json:"accId"`
	Type          string           `json:"type"`
	Balance       decimal.Decimal  `json:"balance"`
	SavingsRate   *decimal.Decimal `json:"savingsRate,omitempty"`
	LastSavedDate *string          `json:"lastSavedDate,omitempty"`
	Currency      string           `json:"currency,omitempty"`
}

func newAccountRecord(a *Account) accountRecord {
	rec := accountRecord{
		AccID:   a.ID,
		Type:    a.Kind().String(),
		Balance: a.Balance,
	}
	switch a.Kind() {
	case KindSavings:
		rate := a.rate
		date := a.lastAccrual
		rec.SavingsRate = &rate
		rec.LastSavedDate = &date
	case KindFX:
		rec.Currency = a.currency
	}
	return rec
}

func (r accountRecord) toAccount() *Account {
	switch ParseAccountKind(r.Type) {
	case KindSavings:
		rate := defaultSavingsRate
		if r.SavingsRate != nil {
			rate = *r.SavingsRate
		}
		date := ""
		if r.LastSavedDate != nil {
			date = *r.LastSavedDate
		}
		return NewSavings(r.AccID, r.Balance, rate, date)
	case KindFX:
		return NewFX(r.AccID, r.Currency, r.Balance)
	default:
		return NewChecking(r.AccID, r.Balance)
	}
}

// customerRecord is the persisted form of a Customer. The id lives in the
// document key, not in the record.
type customerRecord struct {
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Name       string          `json:"name"`
	Age        int             `json:"age"`
	Email      string          `json:"email"`
	SecretWord string          `json:"secretWord"`
	Phone      string          `json:"phone"`
	Accounts   []accountRecord `json:"accounts"`
}

func newCustomerRecord(c *Customer) *customerRecord {
	rec := &customerRecord{
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Name:       c.FullName(),
		Age:        c.Age,
		Email:      c.Email,
		SecretWord: c.Secret,
		Phone:      c.Phone,
		Accounts:   make([]accountRecord, 0, len(c.Accounts)),
	}
	for _, a := range c.Accounts {
		rec.Accounts = append(rec.Accounts, newAccountRecord(a))
	}
	return rec
}

func (r *customerRecord) names() (string, string) {
	if r.FirstName != "" || r.LastName != "" {
		return r.FirstName, r.LastName
	}
	return splitLegacyName(r.Name)
}

func (r *customerRecord) toCustomer(id string) *Customer {
	first, last := r.names()
	c := &Customer{
		ID:        id,
		FirstName: first,
		LastName:  last,
		Age:       r.Age,
		Email:     r.Email,
		Phone:     r.Phone,
		Secret:    r.SecretWord,
		Accounts:  make([]*Account, 0, len(r.Accounts)),
	}
	for _, a := range r.Accounts {
		c.Accounts = append(c.Accounts, a.toAccount())
	}
	return c
}

// unreadable is a stored value that failed to decode. It is written back
// verbatim on every save until someone repairs or removes it.
type unreadable struct {
	raw json.RawMessage
	err error
}

// accountIDs digs the account ids out of an unreadable customer so they are
// never handed out again. Ids stored as strings are accepted.
func (u unreadable) accountIDs() []int {
	var shape struct {
		Accounts []struct {
			AccID json.RawMessage `json:"accId"`
		} `json:"accounts"`
	}
	if json.Unmarshal(u.raw, &shape) != nil {
		return nil
	}
	var ids []int
	for _, a := range shape.Accounts {
		id, err := strconv.Atoi(strings.Trim(string(a.AccID), `"`))
		if err == nil && id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// unreadableTransfer sits before the decoded entry at index at.
type unreadableTransfer struct {
	at int
	unreadable
}

// Document is the root aggregate persisted by the RecordStore. Customers and
// ledger entries that could not be decoded are kept aside and saved back
// unchanged.
type Document struct {
	Customers map[string]*customerRecord
	Transfers []TransferEntry

	badCustomers map[string]unreadable
	badTransfers []unreadableTransfer
}

func NewDocument() *Document {
	return &Document{
		Customers: map[string]*customerRecord{},
		Transfers: []TransferEntry{},
	}
}

func (d *Document) normalize() {
	if d.Customers == nil {
		d.Customers = map[string]*customerRecord{}
	}
	for id, rec := range d.Customers {
		if rec == nil {
			delete(d.Customers, id)
		}
	}
	if d.Transfers == nil {
		d.Transfers = []TransferEntry{}
	}
}

func (d *Document) MarshalJSON() ([]byte, error) {
	customers := make(map[string]json.RawMessage, len(d.Customers)+len(d.badCustomers))
	for id, bad := range d.badCustomers {
		customers[id] = bad.raw
	}
	for id, rec := range d.Customers {
		buf, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		customers[id] = buf
	}

	transfers := make([]json.RawMessage, 0, len(d.Transfers)+len(d.badTransfers))
	next := 0
	for i := range d.Transfers {
		for ; next < len(d.badTransfers) && d.badTransfers[next].at <= i; next++ {
			transfers = append(transfers, d.badTransfers[next].raw)
		}
		buf, err := json.Marshal(d.Transfers[i])
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, buf)
	}
	for ; next < len(d.badTransfers); next++ {
		transfers = append(transfers, d.badTransfers[next].raw)
	}

	return json.Marshal(struct {
		Customers map[string]json.RawMessage `json:"customers"`
		Transfers []json.RawMessage          `json:"transfers"`
	}{customers, transfers})
}

// has reports whether id is stored, readable or not.
func (d *Document) has(id string) bool {
	if _, ok := d.Customers[id]; ok {
		return true
	}
	_, ok := d.badCustomers[id]
	return ok
}

// remove deletes the customer id, readable or not.
func (d *Document) remove(id string) {
	delete(d.Customers, id)
	delete(d.badCustomers, id)
}

func (d *Document) customer(id string) (*Customer, bool) {
	rec, ok := d.Customers[id]
	if !ok {
		return nil, false
	}
	return rec.toCustomer(id), true
}

// accountIDs returns every account id in use, mapped to its owner.
func (d *Document) accountIDs() map[int]string {
	ids := make(map[int]string)
	for custID, rec := range d.Customers {
		for _, a := range rec.Accounts {
			ids[a.AccID] = custID
		}
	}
	for custID, bad := range d.badCustomers {
		for _, id := range bad.accountIDs() {
			ids[id] = custID
		}
	}
	return ids
}

// accountOwner finds the customer holding account id. The owner may be an
// unreadable customer, which doc.customer will not load.
func (d *Document) accountOwner(id int) (string, bool) {
	owner, ok := d.accountIDs()[id]
	return owner, ok
}

// findByName returns the lowest customer id whose name matches, so repeated
// lookups against the same document are stable.
func (d *Document) findByName(first, last string) (string, bool) {
	ids := make([]string, 0, len(d.Customers))
	for id := range d.Customers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		rec := d.Customers[id]
		if namesMatch(rec.FirstName, rec.LastName, rec.Name, first, last) {
			return id, true
		}
	}
	return "", false
}

// putCustomer writes c into the document. Accounts with id 0 receive a fresh
// id from alloc; ids held by any other customer are rejected.
func (d *Document) putCustomer(c *Customer, alloc *Allocator) error {
	used := d.accountIDs()
	seen := make(map[int]struct{}, len(c.Accounts))
	for _, a := range c.Accounts {
		if a.ID == 0 {
			continue
		}
		if owner, ok := used[a.ID]; ok && owner != c.ID {
			return badRequest("accId", fmt.Sprintf("account %d belongs to another customer", a.ID))
		}
		if _, dup := seen[a.ID]; dup {
			return badRequest("accId", fmt.Sprintf("account %d listed twice", a.ID))
		}
		seen[a.ID] = struct{}{}
	}
	for _, a := range c.Accounts {
		if a.ID != 0 {
			continue
		}
		id, err := alloc.Allocate(used)
		if err != nil {
			return err
		}
		a.ID = id
	}
	delete(d.badCustomers, c.ID)
	d.Customers[c.ID] = newCustomerRecord(c)
	return nil
}

// Problems describes every broken invariant found in d, such as an account id
// held by two customers or a record that could not be decoded.
func (d *Document) Problems() []string {
	var problems []string
	badIDs := make([]string, 0, len(d.badCustomers))
	for id := range d.badCustomers {
		badIDs = append(badIDs, id)
	}
	sort.Strings(badIDs)
	for _, id := range badIDs {
		problems = append(problems, fmt.Sprintf("customer %s is unreadable: %v", id, d.badCustomers[id].err))
	}
	for i, bad := range d.badTransfers {
		problems = append(problems, fmt.Sprintf("transfer %d is unreadable: %v", bad.at+i, bad.err))
	}

	ids := make([]string, 0, len(d.Customers))
	for id := range d.Customers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	owners := make(map[int]string)
	for _, id := range ids {
		currencies := make(map[string]bool)
		for _, a := range d.Customers[id].Accounts {
			if prev, ok := owners[a.AccID]; ok {
				problems = append(problems, fmt.Sprintf("account %d held by %s and %s", a.AccID, prev, id))
			}
			owners[a.AccID] = id
			if a.Balance.IsNegative() {
				problems = append(problems, fmt.Sprintf("account %d of %s has negative balance %s", a.AccID, id, a.Balance))
			}
			if ParseAccountKind(a.Type) == KindFX {
				cur := strings.ToUpper(a.Currency)
				if currencies[cur] {
					problems = append(problems, fmt.Sprintf("customer %s has more than one %s account", id, cur))
				}
				currencies[cur] = true
			}
		}
	}
	return problems
}

// ParseDocument decodes raw into a Document, migrating the legacy layout in
// which the root object is the customer mapping itself. Syntactically invalid
// input returns ErrCorruptDocument. A customer or transfer that does not
// decode is kept verbatim and reported by Problems; a section of the wrong
// type is reset.
func ParseDocument(raw []byte, log *zerolog.Logger) (*Document, error) {
	if !json.Valid(raw) {
		return nil, ErrCorruptDocument
	}
	doc := NewDocument()

	var root map[string]json.RawMessage
	if err := json.Unmarshal(raw, &root); err != nil || root == nil {
		log.Warn().Msg("document root is not an object, starting empty")
		return doc, nil
	}

	customers, ok := root["customers"]
	var custRaw map[string]json.RawMessage
	if ok {
		if err := json.Unmarshal(customers, &custRaw); err != nil {
			log.Warn().Err(err).Msg("customers is not an object, resetting")
		}
	} else {
		custRaw = make(map[string]json.RawMessage, len(root))
		for k, v := range root {
			if k != "transfers" {
				custRaw[k] = v
			}
		}
		if len(custRaw) > 0 {
			log.Info().Int("customers", len(custRaw)).Msg("migrating legacy document layout")
		}
	}
	for id, v := range custRaw {
		var rec customerRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			log.Warn().Err(err).Str("customer", id).Msg("customer unreadable, keeping it as stored")
			if doc.badCustomers == nil {
				doc.badCustomers = make(map[string]unreadable)
			}
			doc.badCustomers[id] = unreadable{raw: v, err: err}
			continue
		}
		if rec.Accounts == nil {
			rec.Accounts = []accountRecord{}
		}
		doc.Customers[id] = &rec
	}

	if transfers, ok := root["transfers"]; ok {
		var entries []json.RawMessage
		if err := json.Unmarshal(transfers, &entries); err != nil {
			log.Warn().Err(err).Msg("transfers is not an array, resetting")
		}
		for i, v := range entries {
			var e TransferEntry
			if err := json.Unmarshal(v, &e); err != nil {
				log.Warn().Err(err).Int("index", i).Msg("transfer unreadable, keeping it as stored")
				doc.badTransfers = append(doc.badTransfers, unreadableTransfer{
					at:         len(doc.Transfers),
					unreadable: unreadable{raw: v, err: err},
				})
				continue
			}
			doc.Transfers = append(doc.Transfers, e)
		}
	}
	return doc, nil
}
