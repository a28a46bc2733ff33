// calc-engine is the out-of-process computation backend. It reads an
// engine.MetricsRequest as JSON (from -data or stdin), runs the same
// in-process pipeline, and writes the metrics bundle to stdout. The API
// server invokes it when the external backend is configured.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"landscape_underwriting/pkg/core/engine"
	"landscape_underwriting/pkg/core/validate"
)

func main() {
	mode := flag.String("mode", "metrics", "Mode: metrics or check")
	dataStr := flag.String("data", "", "JSON request payload (defaults to stdin)")
	flag.Parse()

	payload := []byte(*dataStr)
	if len(payload) == 0 {
		stdin, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
		payload = stdin
	}
	if len(payload) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no data provided")
		os.Exit(1)
	}

	var req engine.MetricsRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling request: %v\n", err)
		os.Exit(1)
	}

	switch *mode {
	case "metrics":
		runMetrics(&req)
	case "check":
		runChecks(&req)
	default:
		fmt.Fprintf(os.Stderr, "Unknown mode: %s\n", *mode)
		os.Exit(1)
	}
}

func runMetrics(req *engine.MetricsRequest) {
	provider := engine.NewInProcess()
	result, err := provider.ComputeMetrics(context.Background(), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	json.NewEncoder(os.Stdout).Encode(result)
}

// runChecks validates the request without computing: useful for
// smoke-testing a deployed binary.
func runChecks(req *engine.MetricsRequest) {
	propReport := validate.ValidateProperty(req.Property)
	var price float64
	if req.Property != nil {
		price = req.Property.AcquisitionPrice
	}
	debtReport := validate.ValidateDebt(req.Debt, price)

	if !propReport.Valid || !debtReport.Valid {
		for _, issue := range propReport.Issues {
			fmt.Fprintf(os.Stderr, "Error: %s: %s\n", issue.Field, issue.Message)
		}
		for _, issue := range debtReport.Issues {
			fmt.Fprintf(os.Stderr, "Error: %s: %s\n", issue.Field, issue.Message)
		}
		os.Exit(1)
	}
	fmt.Printf("Success: property %q with %d lease(s)\n", req.Property.Name, len(req.Property.Leases))
}
