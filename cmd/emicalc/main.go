// Command emicalc prints the installment and optional repayment schedule
// for a loan without starting the server.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/boddenberg/loanhub/internal/domain"
	"github.com/boddenberg/loanhub/internal/emi"
	"github.com/boddenberg/loanhub/internal/money"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	principal float64
	rate      float64
	tenure    int
	schedule  bool
	asJSON    bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:          "emicalc",
		Short:        "Calculate the EMI of a loan",
		Example:      "  emicalc --principal 500000 --rate 10.5 --tenure 24 --schedule",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(out, opts)
		},
	}

	f := cmd.Flags()
	f.Float64VarP(&opts.principal, "principal", "p", 0, "loan amount")
	f.Float64VarP(&opts.rate, "rate", "r", 0, "annual interest rate in percent")
	f.IntVarP(&opts.tenure, "tenure", "t", 0, "tenure in months")
	f.BoolVarP(&opts.schedule, "schedule", "s", false, "print the month-by-month schedule")
	f.BoolVar(&opts.asJSON, "json", false, "print JSON instead of a table")
	for _, name := range []string{"principal", "rate", "tenure"} {
		_ = cmd.MarkFlagRequired(name)
	}

	cmd.SetOut(out)
	return cmd
}

func run(out io.Writer, opts options) error {
	req := emi.Request{
		Principal:         opts.principal,
		AnnualRatePercent: opts.rate,
		TenureMonths:      opts.tenure,
	}

	result, err := emi.CalculateRequest(req)
	if err != nil {
		return err
	}

	var schedule []domain.AmortizationEntry
	if opts.schedule {
		if schedule, err = emi.ScheduleRequest(req); err != nil {
			return err
		}
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if opts.schedule {
			return enc.Encode(domain.ScheduleResponse{Summary: result, Schedule: schedule})
		}
		return enc.Encode(result)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Principal\t%s\n", money.FormatINR(result.Principal))
	fmt.Fprintf(tw, "Interest rate\t%.2f%% p.a.\n", result.AnnualRatePercent)
	fmt.Fprintf(tw, "Tenure\t%d months\n", result.TenureMonths)
	fmt.Fprintf(tw, "Monthly EMI\t%s\n", money.FormatINR(result.MonthlyInstallment))
	fmt.Fprintf(tw, "Total interest\t%s\n", money.FormatINR(result.TotalInterest))
	fmt.Fprintf(tw, "Total payable\t%s\n", money.FormatINR(result.TotalPayable))
	if err := tw.Flush(); err != nil {
		return err
	}

	if !opts.schedule {
		return nil
	}

	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Month\tEMI\tPrincipal\tInterest\tBalance\t")
	for _, e := range schedule {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n",
			e.Month,
			money.FormatINR(e.Installment),
			money.FormatINR(e.PrincipalComponent),
			money.FormatINR(e.InterestComponent),
			money.FormatINR(e.RemainingPrincipal),
		)
	}
	return tw.Flush()
}
