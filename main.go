package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/username/dividendtax/src/config"
	"github.com/username/dividendtax/src/logger"
	"github.com/username/dividendtax/src/parsers"
	"github.com/username/dividendtax/src/processors"
	"github.com/username/dividendtax/src/services"
	"github.com/username/dividendtax/src/utils"
)

var (
	residenceFlag string
	tickerFlag    string
	jsonOutput    bool
)

var rootCmd = &cobra.Command{
	Use:   "dividendtax [statement.pdf ...]",
	Short: "Computes the flat-rate dividend tax top-up from E-Trade brokerage statements",
	Long: `dividendtax scans E-Trade brokerage statement PDFs for dividend entries,
resolves each transaction date to the most recent NBP exchange rate published
before it, and reports the foreign gross income, the foreign tax already
withheld and the top-up still owed at the flat dividend rate, all in PLN.

A statement that cannot be parsed or whose rate lookup fails is reported and
skipped; the totals cover only the statements that succeeded. The exit status
is non-zero if any statement failed.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&residenceFlag, "residence", "", "two-letter fiscal residence code (default DEFAULT_RESIDENCE, \"pl\")")
	rootCmd.Flags().StringVar(&tickerFlag, "ticker", "", "ticker symbol whose dividends are extracted (default DIVIDEND_TICKER, \"INTC\")")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the run report as JSON instead of text")
}

func run(cmd *cobra.Command, args []string) error {
	residence := residenceFlag
	if residence == "" {
		residence = config.Cfg.DefaultResidence
	}
	if !utils.KnownResidence(residence) {
		logger.L.Warn("Unrecognized residence code, reporting it as given", "residence", residence)
	}
	ticker := tickerFlag
	if ticker == "" {
		ticker = config.Cfg.DividendTicker
	}

	parser, err := parsers.GetParser("etrade", ticker, logger.L)
	if err != nil {
		return err
	}

	rateResolver := processors.NewExchangeRateResolver(processors.ResolverConfig{
		BaseURL:         config.Cfg.RateAPIBaseURL,
		MaxLookbackDays: config.Cfg.RateMaxLookbackDays,
		RequestInterval: config.Cfg.RateRequestInterval,
		Timeout:         config.Cfg.HTTPClientTimeout,
		HTTPProxy:       config.Cfg.HTTPProxy,
		HTTPSProxy:      config.Cfg.HTTPSProxy,
	}, logger.L)

	taxProcessor := processors.NewTaxProcessor(int64(config.Cfg.DividendTaxRatePercent))

	statementService := services.NewStatementService(
		parser,
		rateResolver,
		taxProcessor,
		config.Cfg.MaxStatementSizeBytes,
		residence,
		logger.L,
	)

	report, runErr := statementService.ProcessRun(cmd.Context(), args)

	if jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
	} else {
		printReport(cmd.OutOrStdout(), report)
	}

	if runErr != nil {
		return fmt.Errorf("%d of %d statements failed", report.FailedCount, len(args))
	}
	return nil
}

func printReport(w io.Writer, report *services.RunReport) {
	fmt.Fprintf(w, "Fiscal residence: %s\n", utils.ResidenceName(report.Residence))
	for _, doc := range report.Documents {
		if doc.Failed() {
			fmt.Fprintf(w, "STATEMENT %s: FAILED (%s)\n", doc.Path, doc.Error)
			continue
		}
		for _, tx := range doc.Transactions {
			fmt.Fprintf(w, "TRANSACTION date: %s, gross: $%s (%s PLN), tax withheld: $%s (%s PLN), rate: %s (%s)\n",
				tx.TransactionDate,
				tx.GrossAmount.StringFixed(2),
				tx.GrossAmount.Mul(tx.ExchangeRate).StringFixed(2),
				tx.TaxWithheld.StringFixed(2),
				tx.TaxWithheld.Mul(tx.ExchangeRate).StringFixed(2),
				tx.ExchangeRate.String(),
				tx.ExchangeRateDate)
		}
	}
	fmt.Fprintf(w, "===> FOREIGN GROSS INCOME: %s PLN\n", report.GrossTotalPLN.StringFixed(2))
	fmt.Fprintf(w, "===> FOREIGN TAX PAID: %s PLN\n", report.TaxPaidPLN.StringFixed(2))
	fmt.Fprintf(w, "===> TAX DUE (TOP-UP): %s PLN\n", report.TaxDuePLN.StringFixed(2))
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("dividendtax starting", "rateAPI", config.Cfg.RateAPIBaseURL, "lookbackDays", config.Cfg.RateMaxLookbackDays)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
