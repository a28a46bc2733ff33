// underwrite runs the metrics or sensitivity pipeline offline from a
// property fixture file, for spreadsheet parity checks without a database
// or server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"landscape_underwriting/pkg/core/assumption"
	"landscape_underwriting/pkg/core/engine"
	"landscape_underwriting/pkg/core/sensitivity"
	"landscape_underwriting/pkg/core/validate"
	"landscape_underwriting/pkg/models"
)

var (
	fixturePath   string
	debtPath      string
	overridesPath string
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	var rootCmd = &cobra.Command{
		Use:   "underwrite",
		Short: "Real-estate underwriting pipeline runner",
	}
	rootCmd.PersistentFlags().StringVar(&fixturePath, "property", "", "path to a PropertyData JSON fixture (required)")
	rootCmd.PersistentFlags().StringVar(&debtPath, "debt", "", "path to a DebtAssumptions JSON file")
	rootCmd.PersistentFlags().StringVar(&overridesPath, "assumptions", "", "path to an assumption overrides JSON file")

	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(sensitivityCmd)
	rootCmd.AddCommand(checkCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Project cash flows and print the investment metrics bundle",
	RunE: func(cmd *cobra.Command, args []string) error {
		property, debt, merged, err := loadInputs()
		if err != nil {
			return err
		}

		provider := engine.NewInProcess()
		result, err := provider.ComputeMetrics(context.Background(), &engine.MetricsRequest{
			Property:    property,
			Assumptions: merged,
			Debt:        debt,
			StartDate:   monthStart(),
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var sensitivityCmd = &cobra.Command{
	Use:   "sensitivity",
	Short: "Run the full sensitivity analysis and print the ranked report",
	RunE: func(cmd *cobra.Command, args []string) error {
		property, debt, merged, err := loadInputs()
		if err != nil {
			return err
		}

		logger, _ := zap.NewDevelopment()
		defer logger.Sync()

		report := sensitivity.NewEngine(logger).RunFullAnalysis(
			property, merged, property.AcquisitionPrice, debt, monthStart())
		return printJSON(report)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a property fixture and debt terms without computing",
	RunE: func(cmd *cobra.Command, args []string) error {
		property, debt, _, err := loadInputs()
		if err != nil {
			return err
		}

		propReport := validate.ValidateProperty(property)
		debtReport := validate.ValidateDebt(debt, property.AcquisitionPrice)
		if err := printJSON(map[string]interface{}{
			"property": propReport,
			"debt":     debtReport,
		}); err != nil {
			return err
		}
		if !propReport.Valid || !debtReport.Valid {
			return fmt.Errorf("validation failed")
		}
		return nil
	},
}

func loadInputs() (*models.PropertyData, *models.DebtAssumptions, assumption.BaselineAssumptions, error) {
	base := assumption.Defaults()
	if fixturePath == "" {
		return nil, nil, base, fmt.Errorf("--property is required")
	}

	var property models.PropertyData
	if err := readJSON(fixturePath, &property); err != nil {
		return nil, nil, base, fmt.Errorf("property fixture: %w", err)
	}

	var debt *models.DebtAssumptions
	if debtPath != "" {
		debt = &models.DebtAssumptions{}
		if err := readJSON(debtPath, debt); err != nil {
			return nil, nil, base, fmt.Errorf("debt assumptions: %w", err)
		}
	}

	if overridesPath != "" {
		var overrides assumption.Overrides
		if err := readJSON(overridesPath, &overrides); err != nil {
			return nil, nil, base, fmt.Errorf("assumption overrides: %w", err)
		}
		base = assumption.Merge(base, &overrides)
	}
	return &property, debt, base, nil
}

func readJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func printJSON(payload interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func monthStart() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
