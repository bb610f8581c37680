package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fxcalc",
	Short: "Forex position size and pip value calculators",
	Long: `fxcalc sizes forex positions from account risk and prices pips in the
account currency, using live ask prices from the quote API.

It provides tools for:
  - Position sizing from balance, risk percent and stop loss
  - Pip values for any lot size, converted to the account currency
  - Risk/reward and drawdown projections
  - An HTTP calculator API and quote relay (fxcalc serve)

Configuration comes from an optional YAML/JSON file (--config), a .env
file and FX_* environment variables. Set FX_API_ENV=mock to use the
built-in demo prices instead of the network.`,
	SilenceUsage: true,
}

var (
	cfgFile   string
	logLevel  string
	logPretty bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "pretty", false, "human readable logs")
}
