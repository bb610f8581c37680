package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxtools/calculator"
	"github.com/rustyeddy/fxtools/risk"
)

var quoteCmd = &cobra.Command{
	Use:   "quote <pair>...",
	Short: "Fetch ask prices",
	Long: `Fetch the current ask price of one or more pairs through the rate
limited, cached quote client.

Example:
  fxcalc quote EURUSD USDJPY XAUUSD`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuote,
}

var pairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "List the pair catalog",
	Args:  cobra.NoArgs,
	RunE:  runPairs,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(pairsCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tASK\tVENUE\tFETCHED\tAGE\tCACHED")
	for _, s := range args {
		pair, err := a.catalog.LookupBySymbol(s)
		if err != nil {
			return err
		}
		q, err := a.client.FetchQuote(cmd.Context(), pair)
		if err != nil {
			return fmt.Errorf("%s: %s", pair.Symbol, calculator.UserMessage(err))
		}
		fmt.Fprintf(tw, "%s\t%g\t%s\t%s\t%s\t%s\n", pair.SymbolID(), q.Ask, q.Venue,
			q.FetchedAt.Format(time.RFC3339), q.Age(time.Now()).Truncate(time.Millisecond), yesNo(q.Cached))
	}
	return tw.Flush()
}

func runPairs(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tBASE\tQUOTE\tKIND\tVENUE\tPIP\tUNITS/LOT")
	for _, p := range a.catalog.Pairs() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%g\t%.0f\n",
			p.Symbol, p.Base, p.Quote, p.Kind, p.Venue, risk.PipSize(p), risk.UnitsPerStandardLot(p))
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
