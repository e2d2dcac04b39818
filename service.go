package bankledger

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks . Service

type RegisterReq struct {
	ID          string `json:"id" validate:"required,number,min=8,max=10"`
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Age         int    `json:"age" validate:"gte=0,lte=130"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required,phone"`
	Secret      string `json:"secret" validate:"required"`
	OpenSavings bool   `json:"openSavings"`
}

type LoginReq struct {
	CustomerID string `json:"-" validate:"required,number,min=8,max=10"`
	Secret     string `json:"secret" validate:"required"`
	Phone      string `json:"phone" validate:"required,phone"`
}

// CustomerReq addresses a customer's own data.
type CustomerReq struct {
	CustomerID string `validate:"required,number,min=8,max=10"`
	Secret     string `validate:"required"`
}

type ChangeSecretReq struct {
	CustomerID string `json:"-" validate:"required,number,min=8,max=10"`
	Old        string `json:"old" validate:"required"`
	New        string `json:"new" validate:"required"`
}

type ResetSecretReq struct {
	CustomerID string `json:"-" validate:"required,number,min=8,max=10"`
	Email      string `json:"email" validate:"required,email"`
	New        string `json:"new" validate:"required"`
}

type ChargeReq struct {
	CustomerID string          `json:"-" validate:"required,number,min=8,max=10"`
	Secret     string          `json:"-" validate:"required"`
	AcctID     int             `json:"-" validate:"required"`
	Amount     decimal.Decimal `json:"amount"`
}

type ChargeResult struct {
	AcctID  int             `json:"accId"`
	Balance decimal.Decimal `json:"balance"`
	Applied bool            `json:"applied"`
}

type ExchangeReq struct {
	CustomerID string            `json:"-" validate:"required,number,min=8,max=10"`
	Secret     string            `json:"-" validate:"required"`
	Direction  ExchangeDirection `json:"direction" validate:"required,oneof=buy sell"`
	Currency   string            `json:"currency" validate:"required,iso4217,ne=EUR"`
	Amount     decimal.Decimal   `json:"amount"`
}

type OpenFXReq struct {
	CustomerID string `json:"-" validate:"required,number,min=8,max=10"`
	Secret     string `json:"-" validate:"required"`
	Currency   string `json:"currency" validate:"required,iso4217,ne=EUR"`
}

type HistoryReq struct {
	CustomerID string `validate:"required,number,min=8,max=10"`
	Secret     string `validate:"required"`
	DaysBack   int    `validate:"gte=0"`
}

type StatementReq struct {
	CustomerID string `validate:"required,number,min=8,max=10"`
	Secret     string `validate:"required"`
	DaysBack   int    `validate:"gte=0"`
}

type Service interface {
	Register(context.Context, RegisterReq) (*Customer, error)
	Login(context.Context, LoginReq) (*Customer, error)
	Customer(context.Context, CustomerReq) (*Customer, error)
	RemoveCustomer(context.Context, CustomerReq) error
	ChangeSecret(context.Context, ChangeSecretReq) error
	ResetSecret(context.Context, ResetSecretReq) error
	Deposit(context.Context, ChargeReq) (*ChargeResult, error)
	Withdraw(context.Context, ChargeReq) (*ChargeResult, error)
	Transfer(context.Context, TransferReq) (*TransferEntry, error)
	Exchange(context.Context, ExchangeReq) (*ExchangeResult, error)
	OpenFXAccount(context.Context, OpenFXReq) (*Account, error)
	History(context.Context, HistoryReq) ([]TransferEntry, error)
	Statement(context.Context, io.Writer, StatementReq) error
}

type serviceImpl struct {
	repo  Repository
	rates RateSource
	log   *zerolog.Logger
	now   func() time.Time
}

var (
	_ Service = (*serviceImpl)(nil)
)

// NewService wires the ledger operations to repo. rates may be nil, in which
// case every exchange is refused as rate unavailable.
func NewService(repo Repository, rates RateSource, log *zerolog.Logger) *serviceImpl {
	return &serviceImpl{
		repo:  repo,
		rates: rates,
		log:   log,
		now:   time.Now,
	}
}

func (s *serviceImpl) Register(ctx context.Context, req RegisterReq) (*Customer, error) {
	c := &Customer{
		ID:        req.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Age:       req.Age,
		Email:     req.Email,
		Phone:     req.Phone,
		Secret:    req.Secret,
		Accounts:  []*Account{NewChecking(0, decimal.Zero)},
	}
	if req.OpenSavings {
		today := s.now().Format(dateLayout)
		c.Accounts = append(c.Accounts, NewSavings(0, decimal.Zero, defaultSavingsRate, today))
	}
	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("customer", c.ID).
		Int("accounts", len(c.Accounts)).
		Msg("customer registered")
	return c, nil
}

// Login checks the customer's credentials and accrues savings interest.
func (s *serviceImpl) Login(ctx context.Context, req LoginReq) (*Customer, error) {
	exists, err := s.repo.CustomerExists(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound{Kind: "customer", ID: req.CustomerID}
	}
	if !s.repo.VerifySecret(ctx, req.CustomerID, req.Secret) {
		return nil, ErrUnauthorized
	}
	if !s.repo.VerifyPhone(ctx, req.CustomerID, req.Phone) {
		return nil, ErrUnauthorized
	}

	today := s.now()
	var (
		interest decimal.Decimal
		skipped  []int
	)
	c, err := s.repo.UpdateCustomer(ctx, req.CustomerID, func(c *Customer) error {
		interest, skipped = AccrueSavingsInterest(c, today)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(skipped) > 0 {
		s.log.Warn().
			Str("customer", c.ID).
			Ints("accounts", skipped).
			Msg("savings accrual date unreadable, interest skipped")
	}
	if interest.IsPositive() {
		s.log.Info().
			Str("customer", c.ID).
			Stringer("interest", interest).
			Msg("savings interest accrued")
	}
	return c, nil
}

func (s *serviceImpl) Customer(ctx context.Context, req CustomerReq) (*Customer, error) {
	return s.repo.GetCustomer(ctx, req.CustomerID)
}

func (s *serviceImpl) RemoveCustomer(ctx context.Context, req CustomerReq) error {
	if err := s.repo.RemoveCustomer(ctx, req.CustomerID); err != nil {
		return err
	}
	s.log.Info().Str("customer", req.CustomerID).Msg("customer removed")
	return nil
}

func (s *serviceImpl) ChangeSecret(ctx context.Context, req ChangeSecretReq) error {
	return s.repo.ChangeSecret(ctx, req.CustomerID, req.Old, req.New)
}

func (s *serviceImpl) ResetSecret(ctx context.Context, req ResetSecretReq) error {
	return s.repo.ResetSecretWithEmail(ctx, req.CustomerID, req.Email, req.New)
}

// Deposit credits one of the customer's accounts. A non-positive amount is
// not an error; the result reports it as not applied.
func (s *serviceImpl) Deposit(ctx context.Context, req ChargeReq) (*ChargeResult, error) {
	res := &ChargeResult{AcctID: req.AcctID}
	_, err := s.repo.UpdateCustomer(ctx, req.CustomerID, func(c *Customer) error {
		acct := c.Account(req.AcctID)
		if acct == nil {
			return ErrNotFound{Kind: "account", ID: strconv.Itoa(req.AcctID)}
		}
		res.Applied = acct.Deposit(req.Amount)
		res.Balance = acct.Balance
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *serviceImpl) Withdraw(ctx context.Context, req ChargeReq) (*ChargeResult, error) {
	res := &ChargeResult{AcctID: req.AcctID}
	_, err := s.repo.UpdateCustomer(ctx, req.CustomerID, func(c *Customer) error {
		acct := c.Account(req.AcctID)
		if acct == nil {
			return ErrNotFound{Kind: "account", ID: strconv.Itoa(req.AcctID)}
		}
		if err := acct.Withdraw(req.Amount); err != nil {
			return err
		}
		res.Applied = true
		res.Balance = acct.Balance
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *serviceImpl) Transfer(ctx context.Context, req TransferReq) (*TransferEntry, error) {
	entry, err := s.repo.CommitTransfer(ctx, req)
	if entry == nil {
		return nil, err
	}
	evt := s.log.Info()
	if entry.Status == StatusFailed {
		evt = s.log.Warn().Str("reason", entry.Error)
	}
	evt.Str("customer", entry.FromCustomerID).
		Int("from", entry.FromAccID).
		Str("target", entry.Target).
		Stringer("amount", entry.Amount).
		Str("status", string(entry.Status)).
		Msg("transfer")
	return entry, err
}

func (s *serviceImpl) Exchange(ctx context.Context, req ExchangeReq) (*ExchangeResult, error) {
	rate, err := s.rate(ctx, req.Currency)
	if err != nil {
		return nil, err
	}
	var res *ExchangeResult
	_, err = s.repo.UpdateCustomer(ctx, req.CustomerID, func(c *Customer) error {
		var xerr error
		res, xerr = Exchange(c, req.Direction, req.Currency, req.Amount, rate)
		return xerr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *serviceImpl) rate(ctx context.Context, currency string) (decimal.Decimal, error) {
	if s.rates == nil {
		return decimal.Zero, ErrRateUnavailable
	}
	rates, err := s.rates.Rates(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("rate source unavailable")
	}
	rate, ok := rates.Rate(currency)
	if !ok {
		return decimal.Zero, ErrRateUnavailable
	}
	return rate, nil
}

func (s *serviceImpl) OpenFXAccount(ctx context.Context, req OpenFXReq) (*Account, error) {
	return s.repo.OpenFXAccount(ctx, req.CustomerID, req.Currency)
}

func (s *serviceImpl) History(ctx context.Context, req HistoryReq) ([]TransferEntry, error) {
	return s.repo.Transfers(ctx, req.CustomerID, req.DaysBack)
}

func (s *serviceImpl) Statement(ctx context.Context, w io.Writer, req StatementReq) error {
	c, err := s.repo.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		return err
	}
	entries, err := s.repo.Transfers(ctx, req.CustomerID, req.DaysBack)
	if err != nil {
		return err
	}
	return RenderStatement(w, c, entries, s.now())
}
