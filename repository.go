package bankledger

import "context"

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

// Repository persists customers and the transfer ledger. Every method is a
// complete load, mutate, save cycle.
type Repository interface {
	CustomerExists(ctx context.Context, id string) (bool, error)
	// CreateCustomer stores a new customer, assigning ids to accounts with id 0.
	CreateCustomer(ctx context.Context, c *Customer) error
	UpsertCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	// UpdateCustomer loads a customer, applies fn and saves the result as one
	// atomic step.
	UpdateCustomer(ctx context.Context, id string, fn func(*Customer) error) (*Customer, error)
	RemoveCustomer(ctx context.Context, id string) error

	VerifySecret(ctx context.Context, id, secret string) bool
	VerifyPhone(ctx context.Context, id, phone string) bool
	ChangeSecret(ctx context.Context, id, oldSecret, newSecret string) error
	ResetSecretWithEmail(ctx context.Context, id, email, newSecret string) error
	FindCustomerByName(ctx context.Context, first, last string) (string, error)

	OpenFXAccount(ctx context.Context, id, currency string) (*Account, error)

	// CommitTransfer executes req and appends its ledger entry in one save. A
	// failed transfer returns the failed entry together with the error.
	CommitTransfer(ctx context.Context, req TransferReq) (*TransferEntry, error)
	AppendTransfer(ctx context.Context, entry TransferEntry) (*TransferEntry, error)
	Transfers(ctx context.Context, customerID string, daysBack int) ([]TransferEntry, error)
}
