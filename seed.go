package bankledger

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Seed is a YAML fixture of customers to register.
type Seed struct {
	Customers []SeedCustomer `yaml:"customers"`
}

type SeedCustomer struct {
	ID        string           `yaml:"id"`
	FirstName string           `yaml:"first_name"`
	LastName  string           `yaml:"last_name"`
	Age       int              `yaml:"age"`
	Email     string           `yaml:"email"`
	Phone     string           `yaml:"phone"`
	Secret    string           `yaml:"secret"`
	Checking  decimal.Decimal  `yaml:"checking"`
	Savings   *decimal.Decimal `yaml:"savings"`
	FX        []string         `yaml:"fx"`
}

func LoadSeed(path string) (*Seed, error) {
	bits, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seed Seed
	if err = yaml.Unmarshal(bits, &seed); err != nil {
		return nil, fmt.Errorf("decoding seed %s: %w", path, err)
	}
	return &seed, nil
}

// Apply registers every seeded customer through svc and funds its accounts.
// Customers that already exist are skipped.
func (s *Seed) Apply(ctx context.Context, svc Service, log *zerolog.Logger) (int, error) {
	created := 0
	for _, sc := range s.Customers {
		c, err := svc.Register(ctx, RegisterReq{
			ID:          sc.ID,
			FirstName:   sc.FirstName,
			LastName:    sc.LastName,
			Age:         sc.Age,
			Email:       sc.Email,
			Phone:       sc.Phone,
			Secret:      sc.Secret,
			OpenSavings: sc.Savings != nil,
		})
		var br ErrBadRequest
		if errors.As(err, &br) && br.Fields["id"] != "" {
			log.Info().Str("customer", sc.ID).Msg("already seeded, skipping")
			continue
		}
		if err != nil {
			return created, fmt.Errorf("registering %s: %w", sc.ID, err)
		}

		for _, a := range c.Accounts {
			amount := decimal.Zero
			switch a.Kind() {
			case KindChecking:
				amount = sc.Checking
			case KindSavings:
				amount = *sc.Savings
			}
			if !amount.IsPositive() {
				continue
			}
			req := ChargeReq{CustomerID: c.ID, Secret: sc.Secret, AcctID: a.ID, Amount: amount}
			if _, err = svc.Deposit(ctx, req); err != nil {
				return created, fmt.Errorf("funding %s/%d: %w", c.ID, a.ID, err)
			}
		}
		for _, cur := range sc.FX {
			req := OpenFXReq{CustomerID: c.ID, Secret: sc.Secret, Currency: cur}
			if _, err = svc.OpenFXAccount(ctx, req); err != nil {
				return created, fmt.Errorf("opening %s account for %s: %w", cur, c.ID, err)
			}
		}
		created++
	}
	return created, nil
}
