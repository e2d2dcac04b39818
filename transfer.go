package bankledger

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Failure reasons recorded on ledger entries.
const (
	ReasonInvalidAmount      = "Invalid amount."
	ReasonInsufficientFunds  = "Insufficient funds."
	ReasonMissingDestination = "Enter destination Account ID."
	ReasonDestNotFound       = "Destination account not found."
	ReasonMissingName        = "Enter first and last name."
	ReasonRecipientNotFound  = "Recipient not found."
	ReasonRecipientNoAccount = "Recipient has no accounts."
	ReasonRecipientLoad      = "Failed to load recipient."
	ReasonDestVanished       = "Destination account vanished."
	ReasonSameAccount        = "Cannot transfer to the same account."
)

type TransferReq struct {
	CustomerID   string          `json:"-" validate:"required,number,min=8,max=10"`
	Secret       string          `json:"-" validate:"required"`
	SourceAcctID int             `json:"fromAccId"`
	Amount       decimal.Decimal `json:"amount"`
	Mode         TransferMode    `json:"mode" validate:"omitempty,oneof=by_account_id by_name"`
	DestAcctID   int             `json:"toAccId"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
}

type transferState int

const (
	stateValidating transferState = iota
	stateResolved
	stateApplying
	stateCommitted
	stateFailed
)

type transfer struct {
	doc   *Document
	req   TransferReq
	state transferState

	sender    *Customer
	source    *Account
	recipient *Customer
	dest      *Account
	target    string
	reason    string
}

// ExecuteTransfer moves req.Amount from the sender's source account to the
// destination named by req, writing both customers back into doc. It does not
// check that the source is a Checking account; callers pick the source.
//
// The returned entry is nil only when the sender or its source account do not
// exist. Otherwise exactly one entry is returned, and a failed one comes with
// an ErrTransferFailed and no balance change.
func ExecuteTransfer(doc *Document, req TransferReq) (*TransferEntry, error) {
	sender, ok := doc.customer(req.CustomerID)
	if !ok {
		return nil, ErrNotFound{Kind: "customer", ID: req.CustomerID}
	}
	source := sender.Account(req.SourceAcctID)
	if source == nil {
		return nil, ErrNotFound{Kind: "account", ID: strconv.Itoa(req.SourceAcctID)}
	}
	if req.Mode == "" {
		req.Mode = ModeByAccountID
	}

	t := &transfer{
		doc:    doc,
		req:    req,
		state:  stateValidating,
		sender: sender,
		source: source,
	}
	t.validate()
	if t.state == stateResolved {
		t.apply()
	}
	return t.entry(), t.err()
}

func (t *transfer) fail(reason string) {
	t.state = stateFailed
	t.reason = reason
}

func (t *transfer) validate() {
	if !t.req.Amount.IsPositive() {
		t.fail(ReasonInvalidAmount)
		return
	}
	if t.source.Balance.LessThan(t.req.Amount) {
		t.fail(ReasonInsufficientFunds)
		return
	}
	if t.req.Mode == ModeByName {
		t.resolveByName()
	} else {
		t.resolveByAccountID()
	}
}

func (t *transfer) resolveByAccountID() {
	id := t.req.DestAcctID
	if id == 0 {
		t.fail(ReasonMissingDestination)
		return
	}
	t.target = strconv.Itoa(id)
	owner, ok := t.doc.accountOwner(id)
	if !ok {
		t.fail(ReasonDestNotFound)
		return
	}
	t.bind(owner, func(c *Customer) *Account { return c.Account(id) }, ReasonDestVanished)
}

func (t *transfer) resolveByName() {
	first := strings.TrimSpace(t.req.FirstName)
	last := strings.TrimSpace(t.req.LastName)
	t.target = strings.TrimSpace(first + " " + last)
	if first == "" || last == "" {
		t.fail(ReasonMissingName)
		return
	}
	owner, ok := t.doc.findByName(first, last)
	if !ok {
		t.fail(ReasonRecipientNotFound)
		return
	}
	t.bind(owner, (*Customer).transferTarget, ReasonRecipientNoAccount)
}

// bind loads the recipient and picks the destination account. An own-account
// transfer shares the sender's Customer so both balance changes land in one
// record.
func (t *transfer) bind(owner string, pick func(*Customer) *Account, missing string) {
	if owner == t.sender.ID {
		t.recipient = t.sender
	} else {
		c, ok := t.doc.customer(owner)
		if !ok {
			t.fail(ReasonRecipientLoad)
			return
		}
		t.recipient = c
	}
	t.dest = pick(t.recipient)
	if t.dest == nil {
		t.fail(missing)
		return
	}
	if t.dest.ID == t.source.ID {
		t.fail(ReasonSameAccount)
		return
	}
	t.state = stateResolved
}

func (t *transfer) apply() {
	t.state = stateApplying
	if err := t.source.Withdraw(t.req.Amount); err != nil {
		t.fail(ReasonInsufficientFunds)
		return
	}
	t.dest.Deposit(t.req.Amount)
	t.doc.Customers[t.sender.ID] = newCustomerRecord(t.sender)
	if t.recipient != t.sender {
		t.doc.Customers[t.recipient.ID] = newCustomerRecord(t.recipient)
	}
	t.state = stateCommitted
}

func (t *transfer) entry() *TransferEntry {
	e := &TransferEntry{
		FromCustomerID: t.sender.ID,
		FromAccID:      t.source.ID,
		Amount:         t.req.Amount,
		Mode:           t.req.Mode,
		Target:         t.target,
	}
	if t.state == stateCommitted {
		e.Status = StatusOK
		e.ToCustomerID = t.recipient.ID
		e.ToAccID = t.dest.ID
		return e
	}
	e.Status = StatusFailed
	e.Error = t.reason
	return e
}

func (t *transfer) err() error {
	if t.state == stateCommitted {
		return nil
	}
	return ErrTransferFailed{Reason: t.reason}
}
