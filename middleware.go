package bankledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/semaphore"
)

type Middleware func(Service) Service

// NewValidator returns the struct validator used on requests, with the
// "phone" tag registered. Errors name fields by their json key.
func NewValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return validPhone(fl.Field().String())
	})
	if err != nil {
		return nil, fmt.Errorf("register phone validation: %w", err)
	}
	return v, nil
}

func mustValidator() *validator.Validate {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// fieldName is the json key of f, or its Go name with a lowercase first
// letter for fields kept out of the body.
func fieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name != "" && name != "-" {
		return name
	}
	r, size := utf8.DecodeRuneInString(f.Name)
	return string(unicode.ToLower(r)) + f.Name[size:]
}

// validPhone accepts at least 7 digits separated only by spaces, dashes,
// parentheses and plus signs.
func validPhone(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7
}

// validationMiddleware checks request shape, authenticates customer scoped
// calls against the stored secret and selects the transfer source account.
type validationMiddleware struct {
	next     Service
	repo     Repository
	validate *validator.Validate
}

var (
	_ Service = (*validationMiddleware)(nil)
)

func NewValidationMiddleware(repo Repository) Middleware {
	return func(svc Service) Service {
		return &validationMiddleware{
			next:     svc,
			repo:     repo,
			validate: mustValidator(),
		}
	}
}

func (v *validationMiddleware) check(req any) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = "failed " + fe.Tag() + " check"
	}
	return ErrBadRequest{Fields: fields}
}

func (v *validationMiddleware) authorize(ctx context.Context, req any, id, secret string) error {
	if err := v.check(req); err != nil {
		return err
	}
	if !v.repo.VerifySecret(ctx, id, secret) {
		return ErrUnauthorized
	}
	return nil
}

func (v *validationMiddleware) Register(ctx context.Context, req RegisterReq) (*Customer, error) {
	if err := v.check(req); err != nil {
		return nil, err
	}
	return v.next.Register(ctx, req)
}

func (v *validationMiddleware) Login(ctx context.Context, req LoginReq) (*Customer, error) {
	if err := v.check(req); err != nil {
		return nil, err
	}
	return v.next.Login(ctx, req)
}

func (v *validationMiddleware) Customer(ctx context.Context, req CustomerReq) (*Customer, error) {
	if err := v.authorize(ctx, req, req.CustomerID, req.Secret); err != nil {
		return nil, err
	}
	return v.next.Customer(ctx, req)
}

func (v *validationMiddleware) RemoveCustomer(ctx context.Context, req CustomerReq) error {
	if err := v.authorize(ctx, req, req.CustomerID, req.Secret); err != nil {
		return err
	}
	return v.next.RemoveCustomer(ctx, req)
}

func (v *validationMiddleware) ChangeSecret(ctx context.Context, req ChangeSecretReq) error {
	if err := v.check(req); err != nil {
		return err
	}
	return v.next.ChangeSecret(ctx, req)
}

func (v *validationMiddleware) ResetSecret(ctx context.Context, req ResetSecretReq) error {
	if err := v.check(req); err != nil {
		return err
	}
	return v.next.ResetSecret(ctx, req)
}

func (v *validationMiddleware) Deposit(ctx context.Context, req ChargeReq) (*ChargeResult, error) {
	if err := v.authorize(ctx, req, req.CustomerID, req.Secret); err != nil {
		return nil, err
	}
	return v.next.Deposit(ctx, req)
}

func (v *validationMiddleware) Withdraw(ctx context.Context, req ChargeReq) (*ChargeResult, error) {
	if err := v.authorize(ctx, req, req.CustomerID, req.Secret); err != nil {
		return nil, err
	}
	return v.next.Withdraw(ctx, req)
}

// Transfer only lets money leave a Checking account. With no source given
// the customer's first Checking account is used.
func (v *validationMiddleware) Transfer(ctx context.Context, req TransferReq) (*TransferEntry, error) {
	if err := v.authorize(ctx, req, req.CustomerID, req.Secret); err != nil {
		return nil, err
	}
	c, err := v.repo.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if req.SourceAcctID == 0 {
		src := c.Checking()
		if src == nil {
			return nil, badRequest("fromAccId", "no Checking account")
		}
		req.SourceAcctID = src.ID
	}
	src := c.Account(req.SourceAcctID)
	if src == nil {
		return nil, ErrNotFound{Kind: "account", ID: strconv.Itoa(req.SourceAcctID)}
	}
	if src.Kind() != KindChecking {
		return nil, badRequest("fromAccId", "transfers must come from a Checking account")
	}
	return v.next.Transfer(ctx, req)
}

func (v *validationMiddleware) Exchange(ctx context.Context, req ExchangeReq) (*ExchangeResult, error) {
	if err := v.authorize(ctx, req, req.CustomerID, req.Secret); err != nil {
		return nil, err
	}
	return v.next.Exchange(ctx, req)
}

func (v *validationMiddleware) OpenFXAccount(ctx context.Context, req OpenFXReq) (*Account, error) {
	if err := v.authorize(ctx, req, req.CustomerID, req.Secret); err != nil {
		return nil, err
	}
	return v.next.OpenFXAccount(ctx, req)
}

func (v *validationMiddleware) History(ctx context.Context, req HistoryReq) ([]TransferEntry, error) {
	if err := v.authorize(ctx, req, req.CustomerID, req.Secret); err != nil {
		return nil, err
	}
	return v.next.History(ctx, req)
}

func (v *validationMiddleware) Statement(ctx context.Context, w io.Writer, req StatementReq) error {
	if err := v.authorize(ctx, req, req.CustomerID, req.Secret); err != nil {
		return err
	}
	return v.next.Statement(ctx, w, req)
}

//
// Load shedding
//

// limitMiddleware caps the number of in-flight calls with two weighted
// semaphores, one for reads and one for writes. A call that cannot get a
// token within Timeout is shed with ErrServiceBusy.
type limitMiddleware struct {
	next   Service
	limits *ServiceLimits
}

var (
	_ Service = (*limitMiddleware)(nil)
)

type ServiceLimits struct {
	Reads   *semaphore.Weighted
	Writes  *semaphore.Weighted
	Timeout time.Duration
}

func NewServiceLimits(reads, writes int64, timeout time.Duration) *ServiceLimits {
	return &ServiceLimits{
		Reads:   semaphore.NewWeighted(reads),
		Writes:  semaphore.NewWeighted(writes),
		Timeout: timeout,
	}
}

func NewLimitMiddleware(limits *ServiceLimits) Middleware {
	return func(next Service) Service {
		return &limitMiddleware{
			next:   next,
			limits: limits,
		}
	}
}

func (l *limitMiddleware) acquire(ctx context.Context, sem *semaphore.Weighted) (func(), error) {
	actx, cancel := context.WithTimeout(ctx, l.limits.Timeout)
	defer cancel()
	if err := sem.Acquire(actx, 1); err != nil {
		return nil, ErrServiceBusy
	}
	return func() { sem.Release(1) }, nil
}

func (l *limitMiddleware) read(ctx context.Context) (func(), error) {
	return l.acquire(ctx, l.limits.Reads)
}

func (l *limitMiddleware) write(ctx context.Context) (func(), error) {
	return l.acquire(ctx, l.limits.Writes)
}

func (l *limitMiddleware) Register(ctx context.Context, req RegisterReq) (*Customer, error) {
	release, err := l.write(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Register(ctx, req)
}

func (l *limitMiddleware) Login(ctx context.Context, req LoginReq) (*Customer, error) {
	release, err := l.write(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Login(ctx, req)
}

func (l *limitMiddleware) Customer(ctx context.Context, req CustomerReq) (*Customer, error) {
	release, err := l.read(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Customer(ctx, req)
}

func (l *limitMiddleware) RemoveCustomer(ctx context.Context, req CustomerReq) error {
	release, err := l.write(ctx)
	if err != nil {
		return err
	}
	defer release()
	return l.next.RemoveCustomer(ctx, req)
}

func (l *limitMiddleware) ChangeSecret(ctx context.Context, req ChangeSecretReq) error {
	release, err := l.write(ctx)
	if err != nil {
		return err
	}
	defer release()
	return l.next.ChangeSecret(ctx, req)
}

func (l *limitMiddleware) ResetSecret(ctx context.Context, req ResetSecretReq) error {
	release, err := l.write(ctx)
	if err != nil {
		return err
	}
	defer release()
	return l.next.ResetSecret(ctx, req)
}

func (l *limitMiddleware) Deposit(ctx context.Context, req ChargeReq) (*ChargeResult, error) {
	release, err := l.write(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Deposit(ctx, req)
}

func (l *limitMiddleware) Withdraw(ctx context.Context, req ChargeReq) (*ChargeResult, error) {
	release, err := l.write(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Withdraw(ctx, req)
}

func (l *limitMiddleware) Transfer(ctx context.Context, req TransferReq) (*TransferEntry, error) {
	release, err := l.write(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Transfer(ctx, req)
}

func (l *limitMiddleware) Exchange(ctx context.Context, req ExchangeReq) (*ExchangeResult, error) {
	release, err := l.write(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Exchange(ctx, req)
}

func (l *limitMiddleware) OpenFXAccount(ctx context.Context, req OpenFXReq) (*Account, error) {
	release, err := l.write(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.OpenFXAccount(ctx, req)
}

func (l *limitMiddleware) History(ctx context.Context, req HistoryReq) ([]TransferEntry, error) {
	release, err := l.read(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.History(ctx, req)
}

func (l *limitMiddleware) Statement(ctx context.Context, w io.Writer, req StatementReq) error {
	release, err := l.read(ctx)
	if err != nil {
		return err
	}
	defer release()
	return l.next.Statement(ctx, w, req)
}

// ServiceBreaker holds one breaker per write operation.
type ServiceBreaker struct {
	Register       *gobreaker.TwoStepCircuitBreaker[*Customer]
	Login          *gobreaker.TwoStepCircuitBreaker[*Customer]
	RemoveCustomer *gobreaker.TwoStepCircuitBreaker[struct{}]
	ChangeSecret   *gobreaker.TwoStepCircuitBreaker[struct{}]
	ResetSecret    *gobreaker.TwoStepCircuitBreaker[struct{}]
	Deposit        *gobreaker.TwoStepCircuitBreaker[*ChargeResult]
	Withdraw       *gobreaker.TwoStepCircuitBreaker[*ChargeResult]
	Transfer       *gobreaker.TwoStepCircuitBreaker[*TransferEntry]
	Exchange       *gobreaker.TwoStepCircuitBreaker[*ExchangeResult]
	OpenFXAccount  *gobreaker.TwoStepCircuitBreaker[*Account]
}

// NewServiceBreaker opens a breaker after failures consecutive overload
// errors and lets one request through again once timeout has passed.
func NewServiceBreaker(failures uint32, timeout time.Duration, log *zerolog.Logger) *ServiceBreaker {
	return &ServiceBreaker{
		Register:       newBreaker[*Customer]("register", failures, timeout, log),
		Login:          newBreaker[*Customer]("login", failures, timeout, log),
		RemoveCustomer: newBreaker[struct{}]("remove_customer", failures, timeout, log),
		ChangeSecret:   newBreaker[struct{}]("change_secret", failures, timeout, log),
		ResetSecret:    newBreaker[struct{}]("reset_secret", failures, timeout, log),
		Deposit:        newBreaker[*ChargeResult]("deposit", failures, timeout, log),
		Withdraw:       newBreaker[*ChargeResult]("withdraw", failures, timeout, log),
		Transfer:       newBreaker[*TransferEntry]("transfer", failures, timeout, log),
		Exchange:       newBreaker[*ExchangeResult]("exchange", failures, timeout, log),
		OpenFXAccount:  newBreaker[*Account]("open_fx_account", failures, timeout, log),
	}
}

func newBreaker[T any](name string, failures uint32, timeout time.Duration, log *zerolog.Logger) *gobreaker.TwoStepCircuitBreaker[T] {
	return gobreaker.NewTwoStepCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Stringer("from", from).
				Stringer("to", to).
				Msg("service breaker changed state")
		},
	})
}

// overloaded reports errors that count against a breaker. Rejected requests
// and failed transfers do not count.
func overloaded(err error) bool {
	var perr ErrPersistence
	return errors.Is(err, ErrServiceBusy) || errors.As(err, &perr)
}

func guard[T any](brkr *gobreaker.TwoStepCircuitBreaker[T], call func() (T, error)) (T, error) {
	done, err := brkr.Allow()
	if err != nil {
		var zero T
		return zero, ErrServiceBusy
	}
	res, err := call()
	done(!overloaded(err))
	return res, err
}

func guardErr(brkr *gobreaker.TwoStepCircuitBreaker[struct{}], call func() error) error {
	_, err := guard(brkr, func() (struct{}, error) {
		return struct{}{}, call()
	})
	return err
}

// circuitBreakMiddleware sits in front of limitMiddleware. Once writes keep
// timing out on the limit semaphores or failing in the store, it answers
// ErrServiceBusy without reaching the service until the breaker half-opens.
// Reads pass through.
type circuitBreakMiddleware struct {
	next  Service
	brkrs *ServiceBreaker
}

var (
	_ Service = (*circuitBreakMiddleware)(nil)
)

func NewCircuitBreakMiddleware(brkrs *ServiceBreaker) Middleware {
	return func(next Service) Service {
		return &circuitBreakMiddleware{
			next:  next,
			brkrs: brkrs,
		}
	}
}

func (c *circuitBreakMiddleware) Register(ctx context.Context, req RegisterReq) (*Customer, error) {
	return guard(c.brkrs.Register, func() (*Customer, error) {
		return c.next.Register(ctx, req)
	})
}

func (c *circuitBreakMiddleware) Login(ctx context.Context, req LoginReq) (*Customer, error) {
	return guard(c.brkrs.Login, func() (*Customer, error) {
		return c.next.Login(ctx, req)
	})
}

func (c *circuitBreakMiddleware) Customer(ctx context.Context, req CustomerReq) (*Customer, error) {
	return c.next.Customer(ctx, req)
}

func (c *circuitBreakMiddleware) RemoveCustomer(ctx context.Context, req CustomerReq) error {
	return guardErr(c.brkrs.RemoveCustomer, func() error {
		return c.next.RemoveCustomer(ctx, req)
	})
}

func (c *circuitBreakMiddleware) ChangeSecret(ctx context.Context, req ChangeSecretReq) error {
	return guardErr(c.brkrs.ChangeSecret, func() error {
		return c.next.ChangeSecret(ctx, req)
	})
}

func (c *circuitBreakMiddleware) ResetSecret(ctx context.Context, req ResetSecretReq) error {
	return guardErr(c.brkrs.ResetSecret, func() error {
		return c.next.ResetSecret(ctx, req)
	})
}

func (c *circuitBreakMiddleware) Deposit(ctx context.Context, req ChargeReq) (*ChargeResult, error) {
	return guard(c.brkrs.Deposit, func() (*ChargeResult, error) {
		return c.next.Deposit(ctx, req)
	})
}

func (c *circuitBreakMiddleware) Withdraw(ctx context.Context, req ChargeReq) (*ChargeResult, error) {
	return guard(c.brkrs.Withdraw, func() (*ChargeResult, error) {
		return c.next.Withdraw(ctx, req)
	})
}

func (c *circuitBreakMiddleware) Transfer(ctx context.Context, req TransferReq) (*TransferEntry, error) {
	return guard(c.brkrs.Transfer, func() (*TransferEntry, error) {
		return c.next.Transfer(ctx, req)
	})
}

func (c *circuitBreakMiddleware) Exchange(ctx context.Context, req ExchangeReq) (*ExchangeResult, error) {
	return guard(c.brkrs.Exchange, func() (*ExchangeResult, error) {
		return c.next.Exchange(ctx, req)
	})
}

func (c *circuitBreakMiddleware) OpenFXAccount(ctx context.Context, req OpenFXReq) (*Account, error) {
	return guard(c.brkrs.OpenFXAccount, func() (*Account, error) {
		return c.next.OpenFXAccount(ctx, req)
	})
}

func (c *circuitBreakMiddleware) History(ctx context.Context, req HistoryReq) ([]TransferEntry, error) {
	return c.next.History(ctx, req)
}

func (c *circuitBreakMiddleware) Statement(ctx context.Context, w io.Writer, req StatementReq) error {
	return c.next.Statement(ctx, w, req)
}
