package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxtools/calculator"
)

var pipCmd = &cobra.Command{
	Use:   "pip [pair]",
	Short: "Price one pip in the account currency",
	Long: `Calculate the value of a one pip move for a lot size, converted
into the account currency.

Examples:
  fxcalc pip USDJPY --lots 0.01 --account JPY
  fxcalc pip XAUUSD --lots 1`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPip,
}

var (
	pipAccount string
	pipLots    float64
	pipJSON    bool
)

func init() {
	rootCmd.AddCommand(pipCmd)

	pipCmd.Flags().StringVarP(&pipAccount, "account", "a", "", "account currency (default from config)")
	pipCmd.Flags().Float64VarP(&pipLots, "lots", "l", 0, "position size in standard lots (default from config)")
	pipCmd.Flags().BoolVar(&pipJSON, "json", false, "print the result as JSON")
}

func runPip(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	req := calculator.PipRequest{
		Pair:            pick(args, a.cfg.Account.Pair),
		LotSize:         orFloat(pipLots, a.cfg.Account.LotSize),
		AccountCurrency: orString(pipAccount, a.cfg.Account.Currency),
	}

	res, err := calculator.NewPipCalculator(a.deps(), a.log).Calculate(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("%s", calculator.UserMessage(err))
	}

	out := cmd.OutOrStdout()
	if pipJSON {
		return printJSON(out, res)
	}

	cur := res.Snapshot.AccountCurrency
	fmt.Fprintf(out, "%s @ %.5f (%s)\n", res.Quote.Symbol, res.Quote.Ask, res.Quote.Venue)
	if res.Conversion.Pair != "" {
		fmt.Fprintf(out, "  Converted via %s @ %.5f (weight %.6f)\n", res.Conversion.Pair, res.Conversion.Ask, res.Conversion.Weight)
	}
	fmt.Fprintf(out, "  Pip size:          %g\n", res.PipSize)
	fmt.Fprintf(out, "  Units per lot:     %.0f\n", res.UnitsPerStandardLot)
	fmt.Fprintf(out, "  Per standard lot:  %.4f %s\n", res.PipValuePerStandardLot, cur)
	fmt.Fprintf(out, "  For %g lots:  %.4f %s\n", res.Snapshot.LotSize, res.PipValue, cur)
	return nil
}
