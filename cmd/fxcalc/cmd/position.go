package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxtools/calculator"
)

var positionCmd = &cobra.Command{
	Use:   "position [pair]",
	Short: "Size a position from account risk",
	Long: `Calculate the position size that risks a percentage of the account
on a stop loss, plus risk/reward, drawdown projections and policy checks.

Defaults come from the account section of the config.

Examples:
  fxcalc position EURUSD --balance 1000 --risk 2 --stop 35 --tp 70
  fxcalc position EUR/JPY --account USD --stop 40 --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPosition,
}

var (
	posAccount string
	posBalance float64
	posRisk    float64
	posStop    float64
	posTP      float64
	posJSON    bool
)

func init() {
	rootCmd.AddCommand(positionCmd)

	positionCmd.Flags().StringVarP(&posAccount, "account", "a", "", "account currency (default from config)")
	positionCmd.Flags().Float64VarP(&posBalance, "balance", "b", 0, "account balance (default from config)")
	positionCmd.Flags().Float64VarP(&posRisk, "risk", "r", 0, "risk per trade in percent (default from config)")
	positionCmd.Flags().Float64VarP(&posStop, "stop", "s", 0, "stop loss in pips (default from config)")
	positionCmd.Flags().Float64Var(&posTP, "tp", -1, "take profit in pips, 0 to skip (default from config)")
	positionCmd.Flags().BoolVar(&posJSON, "json", false, "print the result as JSON")
}

func runPosition(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	acct := a.cfg.Account
	req := calculator.PositionRequest{
		Pair:            pick(args, acct.Pair),
		AccountCurrency: orString(posAccount, acct.Currency),
		AccountBalance:  orFloat(posBalance, acct.Balance),
		RiskPercent:     orFloat(posRisk, acct.RiskPercent),
		StopLossPips:    orFloat(posStop, acct.StopLossPips),
		TakeProfitPips:  acct.TakeProfitPips,
	}
	if posTP >= 0 {
		req.TakeProfitPips = posTP
	}

	res, err := calculator.NewPositionCalculator(a.deps(), a.log).Calculate(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("%s", calculator.UserMessage(err))
	}

	out := cmd.OutOrStdout()
	if posJSON {
		return printJSON(out, res)
	}
	printPosition(out, res)
	return nil
}

func printPosition(w io.Writer, res *calculator.PositionResult) {
	req := res.Snapshot
	fmt.Fprintf(w, "%s @ %.5f (%s", res.Quote.Symbol, res.Quote.Ask, res.Quote.Venue)
	if res.Quote.Cached {
		fmt.Fprint(w, ", cached")
	}
	fmt.Fprintln(w, ")")
	if res.Conversion.Pair != "" {
		fmt.Fprintf(w, "  Converted via %s @ %.5f (weight %.6f)\n", res.Conversion.Pair, res.Conversion.Ask, res.Conversion.Weight)
	}

	p := res.Position
	fmt.Fprintf(w, "\nRisking %.2f%% of %.2f %s = %.2f %s over %.1f pips\n",
		req.RiskPercent, req.AccountBalance, req.AccountCurrency, p.AmountAtRisk, req.AccountCurrency, req.StopLossPips)
	fmt.Fprintf(w, "  Pip value:      %.4f %s per standard lot\n", p.PipValuePerStandardLot, req.AccountCurrency)
	fmt.Fprintf(w, "  Standard lots:  %.4f\n", p.StandardLots)
	fmt.Fprintf(w, "  Mini lots:      %.3f\n", p.MiniLots)
	fmt.Fprintf(w, "  Micro lots:     %.2f\n", p.MicroLots)
	fmt.Fprintf(w, "  Units:          %.0f\n", p.Units)
	fmt.Fprintf(w, "  Suggested lots: %.4f (at 2%% risk)\n", res.SuggestedLots)

	if rr := res.RiskReward; rr.Ratio > 0 {
		fmt.Fprintf(w, "\nRisk/reward 1:%.2f  profit %.2f  loss %.2f\n", rr.Ratio, rr.PotentialProfit, rr.PotentialLoss)
	}

	fmt.Fprintln(w, "\nDrawdown after consecutive losses:")
	for _, s := range res.Drawdown {
		fmt.Fprintf(w, "  %2d losses: -%.2f  balance %.2f  (%.1f%%)\n", s.Losses, s.TotalLoss, s.RemainingBalance, s.DrawdownPct)
	}

	if res.Decision.Allowed {
		fmt.Fprintln(w, "\n✓ Within policy")
		return
	}
	fmt.Fprintln(w, "\nPolicy warnings:")
	for _, v := range res.Decision.Violations {
		fmt.Fprintf(w, "  ✗ %s: %s\n", v.Code, v.Msg)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func pick(args []string, def string) string {
	if len(args) > 0 {
		return args[0]
	}
	return def
}

func orString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func orFloat(v, def float64) float64 {
	if v != 0 {
		return v
	}
	return def
}
