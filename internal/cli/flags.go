package cli

import (
	"errors"
	"flag"
	"io"
)

// ReconcileFlags are the flags of the reconcile command
type ReconcileFlags struct {
	Config     string
	Leads      string
	Sales      string
	SalesPaste bool
	Out        string
	Preview    int
	Verbose    bool
}

// ParseReconcileFlags parses reconcile flags from args
func ParseReconcileFlags(args []string, output io.Writer) (ReconcileFlags, error) {
	var flags ReconcileFlags
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&flags.Config, "config", "config.yaml", "Configuration file path")
	fs.StringVar(&flags.Leads, "leads", "", "BATS lead export (.xlsx or .csv)")
	fs.StringVar(&flags.Sales, "sales", "", "Sales export (.xlsx or .csv)")
	fs.BoolVar(&flags.SalesPaste, "sales-paste", false, "Read pasted sales data from stdin")
	fs.StringVar(&flags.Out, "out", "", "Write results to this .xlsx (all sheets) or .csv (report only)")
	fs.IntVar(&flags.Preview, "preview", 0, "Print the first N deduplicated leads and matched sales")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return flags, err
	}
	return flags, flags.Validate()
}

// Validate checks flag combinations
func (f ReconcileFlags) Validate() error {
	if f.Leads == "" {
		return errors.New("-leads is required")
	}
	if f.Sales != "" && f.SalesPaste {
		return errors.New("-sales and -sales-paste are mutually exclusive")
	}
	if f.Preview < 0 {
		return errors.New("-preview must not be negative")
	}
	return nil
}

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	Config  string
	Port    int
	Verbose bool
}

// ParseServeFlags parses command line flags for the serve command.
// A zero port keeps the configured one.
func ParseServeFlags(args []string, output io.Writer) (ServeFlags, error) {
	var flags ServeFlags
	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&flags.Config, "config", "config.yaml", "Configuration file path")
	fs.IntVar(&flags.Port, "port", 0, "Port to listen on (overrides config)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	err := fs.Parse(args)
	return flags, err
}
