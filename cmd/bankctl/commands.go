package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/arhyth/bankledger"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

type storeFlags struct {
	config string
	store  string
}

func (s *storeFlags) register(f *flag.FlagSet) {
	f.StringVar(&s.config, "config", "", "path to configuration file")
	f.StringVar(&s.store, "store", "", "path to the store file, overrides the config")
}

func (s *storeFlags) load() (bankledger.Config, error) {
	cfg := bankledger.DefaultConfig()
	if s.config != "" {
		var err error
		if cfg, err = bankledger.LoadConfig(s.config); err != nil {
			return cfg, err
		}
	}
	if s.store != "" {
		cfg.Store.Path = s.store
	}
	return cfg, nil
}

// --- checkCmd ---

type checkCmd struct {
	storeFlags
	log *zerolog.Logger
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "loads the store and reports broken invariants" }
func (*checkCmd) Usage() string {
	return `check [-config <file>] [-store <file>]

Loads the store, which normalizes it and quarantines it when corrupt, then
lists every broken invariant found in it.
`
}
func (c *checkCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *checkCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	store, err := bankledger.NewRecordStore(cfg.Store.Path, c.log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	doc, err := store.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading store: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("%s: %d customers, %d transfers\n", store.Path(), len(doc.Customers), len(doc.Transfers))
	problems := doc.Problems()
	for _, p := range problems {
		fmt.Println("  " + p)
	}
	if len(problems) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// --- historyCmd ---

type historyCmd struct {
	storeFlags
	customer string
	days     int
	log      *zerolog.Logger
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "prints a customer's transfer history" }
func (*historyCmd) Usage() string {
	return `history -customer <id> [-days <n>] [-config <file>] [-store <file>]

Prints transfers sent or received by the customer, newest first.
`
}
func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	c.register(f)
	f.StringVar(&c.customer, "customer", "", "customer id")
	f.IntVar(&c.days, "days", 0, "only show the last n days, 0 for everything")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.customer == "" {
		fmt.Fprintln(os.Stderr, "Error: -customer is required.")
		return subcommands.ExitUsageError
	}
	cfg, err := c.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	repo, err := bankledger.OpenJSONEndpoint(cfg, c.log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	entries, err := repo.Transfers(ctx, c.customer, c.days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading transfers: %v\n", err)
		return subcommands.ExitFailure
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tFROM\tTO\tTARGET\tAMOUNT\tSTATUS\tERROR")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s/%d\t%s/%d\t%s\t%s\t%s\t%s\n",
			time.UnixMilli(e.TS).Format(time.DateTime),
			e.FromCustomerID, e.FromAccID,
			e.ToCustomerID, e.ToAccID,
			e.Target,
			bankledger.FormatAmount(e.Amount, bankledger.BaseCurrency),
			e.Status, e.Error)
	}
	w.Flush()
	return subcommands.ExitSuccess
}

// --- statementCmd ---

type statementCmd struct {
	storeFlags
	customer string
	days     int
	out      string
	log      *zerolog.Logger
}

func (*statementCmd) Name() string     { return "statement" }
func (*statementCmd) Synopsis() string { return "writes a customer's PDF statement" }
func (*statementCmd) Usage() string {
	return `statement -customer <id> -out <file.pdf> [-days <n>] [-config <file>] [-store <file>]
`
}
func (c *statementCmd) SetFlags(f *flag.FlagSet) {
	c.register(f)
	f.StringVar(&c.customer, "customer", "", "customer id")
	f.IntVar(&c.days, "days", 0, "only include the last n days, 0 for everything")
	f.StringVar(&c.out, "out", "", "output PDF path")
}

func (c *statementCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.customer == "" || c.out == "" {
		fmt.Fprintln(os.Stderr, "Error: -customer and -out are required.")
		return subcommands.ExitUsageError
	}
	cfg, err := c.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	repo, err := bankledger.OpenJSONEndpoint(cfg, c.log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	cust, err := repo.GetCustomer(ctx, c.customer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	entries, err := repo.Transfers(ctx, c.customer, c.days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading transfers: %v\n", err)
		return subcommands.ExitFailure
	}

	f, err := os.Create(c.out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer f.Close()
	if err = bankledger.RenderStatement(f, cust, entries, time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering statement: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Statement for %s written to %s\n", cust.FullName(), c.out)
	return subcommands.ExitSuccess
}
