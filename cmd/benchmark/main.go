// Benchmark tool for testing Heron against labeled loan outcome data.
//
// Usage:
//   go run cmd/benchmark/main.go -csv /path/to/applicants.csv -url http://localhost:8080
//
// This tool:
//   1. Reads applicant data with default labels (defaulted column = 0/1)
//   2. Sends each applicant to Heron for scoring
//   3. Compares Heron's verdict (score below cutoff) with actual outcomes
//   4. Calculates precision, recall, F1-score, and the confusion matrix
//
// The CSV must carry the reserved columns applicant_id, business_segment,
// msme_category, annual_turnover, monthly_surplus, current_assets,
// current_liabilities, existing_debt, external_probability and defaulted.
// Every other numeric column is passed through as a scoring feature.
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Applicant represents a row from the benchmark dataset.
type Applicant struct {
	ApplicantID         string
	BusinessSegment     string
	MSMECategory        string
	AnnualTurnover      float64
	MonthlySurplus      float64
	CurrentAssets       float64
	CurrentLiabilities  float64
	ExistingDebt        float64
	ExternalProbability float64
	Features            map[string]float64
	Defaulted           bool
}

// ScoreRequest is the Heron API request format.
type ScoreRequest struct {
	ApplicantID         string     `json:"applicantId"`
	BusinessSegment     string     `json:"businessSegment"`
	MSMECategory        string     `json:"msmeCategory"`
	Features            FeatureSet `json:"features"`
	Financials          Financials `json:"financials"`
	ExternalProbability float64    `json:"externalProbability"`
}

type FeatureSet struct {
	Numeric map[string]float64 `json:"numeric,omitempty"`
}

type Financials struct {
	AnnualTurnover     float64 `json:"annualTurnover"`
	MonthlySurplus     float64 `json:"monthlySurplus"`
	CurrentAssets      float64 `json:"currentAssets"`
	CurrentLiabilities float64 `json:"currentLiabilities"`
	ExistingDebt       float64 `json:"existingDebt"`
}

// ScoreResponse is the subset of the Heron decision the benchmark reads.
type ScoreResponse struct {
	ID    string `json:"id"`
	Score struct {
		FinalScore         int     `json:"finalScore"`
		BlendedProbability float64 `json:"blendedProbability"`
		RiskTier           string  `json:"riskTier"`
	} `json:"score"`
	Limit struct {
		Eligible         bool    `json:"eligible"`
		RecommendedLimit float64 `json:"recommendedLimit"`
	} `json:"limit"`
}

// Metrics tracks benchmark results.
type Metrics struct {
	TruePositives  int64 // Defaulter scored below cutoff
	FalsePositives int64 // Non-defaulter scored below cutoff
	TrueNegatives  int64 // Non-defaulter scored at or above cutoff
	FalseNegatives int64 // Defaulter scored at or above cutoff (missed risk!)

	TotalProcessed int64
	TotalDefaults  int64
	TotalHealthy   int64
	TotalErrors    int64

	ScoreSum         int64
	ProcessingTimeMs int64
}

// Reserved CSV columns mapped to structured request fields.
var reservedColumns = map[string]bool{
	"applicant_id":         true,
	"business_segment":     true,
	"msme_category":        true,
	"annual_turnover":      true,
	"monthly_surplus":      true,
	"current_assets":       true,
	"current_liabilities":  true,
	"existing_debt":        true,
	"external_probability": true,
	"defaulted":            true,
}

func main() {
	// Parse flags
	csvPath := flag.String("csv", "", "Path to labeled applicant CSV file")
	baseURL := flag.String("url", "http://localhost:8080", "Heron base URL")
	tenantID := flag.String("tenant", "benchmark-test", "Tenant ID for requests")
	limit := flag.Int("limit", 10000, "Maximum applicants to process (0 = all)")
	workers := flag.Int("workers", 10, "Number of concurrent workers")
	cutoff := flag.Int("cutoff", 560, "Score below this counts as a predicted default")
	verbose := flag.Bool("verbose", false, "Print each applicant result")
	flag.Parse()

	if *csvPath == "" {
		fmt.Println("Usage: benchmark -csv /path/to/applicants.csv [-url http://localhost:8080]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║          HERON BENCHMARK - MSME Default Prediction            ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")
	fmt.Printf("\nCSV File:    %s\n", *csvPath)
	fmt.Printf("Heron URL:   %s\n", *baseURL)
	fmt.Printf("Tenant ID:   %s\n", *tenantID)
	fmt.Printf("Workers:     %d\n", *workers)
	fmt.Printf("Limit:       %d\n", *limit)
	fmt.Printf("Cutoff:      %d\n", *cutoff)
	fmt.Println()

	// Check Heron is running
	if err := checkHealth(*baseURL); err != nil {
		fmt.Printf("ERROR: Heron not reachable at %s: %v\n", *baseURL, err)
		fmt.Println("\nMake sure Heron is running:")
		fmt.Println("  cd heron && go run cmd/heron/main.go")
		os.Exit(1)
	}
	fmt.Println("✓ Heron is healthy")

	// Read applicant data
	fmt.Printf("\nReading applicant data from %s...\n", *csvPath)
	applicants, err := readApplicantCSV(*csvPath, *limit)
	if err != nil {
		fmt.Printf("ERROR: Failed to read CSV: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Loaded %d applicants\n", len(applicants))

	// Count defaults vs healthy
	defaultCount := 0
	for _, a := range applicants {
		if a.Defaulted {
			defaultCount++
		}
	}
	fmt.Printf("  - Defaulted: %d (%.2f%%)\n", defaultCount, 100*float64(defaultCount)/float64(len(applicants)))
	fmt.Printf("  - Healthy:   %d (%.2f%%)\n", len(applicants)-defaultCount, 100*float64(len(applicants)-defaultCount)/float64(len(applicants)))

	// Run benchmark
	fmt.Printf("\nRunning benchmark with %d workers...\n", *workers)
	startTime := time.Now()
	metrics := runBenchmark(applicants, *baseURL, *tenantID, *workers, *cutoff, *verbose)
	duration := time.Since(startTime)

	// Print results
	printResults(metrics, duration)
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func readApplicantCSV(path string, limit int) ([]Applicant, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Read header
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Map column indices
	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(col)] = i
	}
	for _, required := range []string{"applicant_id", "business_segment", "msme_category", "defaulted"} {
		if _, ok := colIndex[required]; !ok {
			return nil, fmt.Errorf("missing required column %s", required)
		}
	}

	var applicants []Applicant

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // Skip malformed rows
		}

		a := Applicant{
			ApplicantID:     record[colIndex["applicant_id"]],
			BusinessSegment: record[colIndex["business_segment"]],
			MSMECategory:    record[colIndex["msme_category"]],
			Defaulted:       record[colIndex["defaulted"]] == "1",
			Features:        make(map[string]float64),
		}

		a.AnnualTurnover = floatColumn(record, colIndex, "annual_turnover")
		a.MonthlySurplus = floatColumn(record, colIndex, "monthly_surplus")
		a.CurrentAssets = floatColumn(record, colIndex, "current_assets")
		a.CurrentLiabilities = floatColumn(record, colIndex, "current_liabilities")
		a.ExistingDebt = floatColumn(record, colIndex, "existing_debt")
		a.ExternalProbability = floatColumn(record, colIndex, "external_probability")

		// Every other numeric column becomes a scoring feature
		for name, idx := range colIndex {
			if reservedColumns[name] || idx >= len(record) {
				continue
			}
			if v, err := strconv.ParseFloat(record[idx], 64); err == nil {
				a.Features[name] = v
			}
		}

		applicants = append(applicants, a)

		if limit > 0 && len(applicants) >= limit {
			break
		}
	}

	return applicants, nil
}

func floatColumn(record []string, colIndex map[string]int, name string) float64 {
	idx, ok := colIndex[name]
	if !ok || idx >= len(record) {
		return 0
	}
	v, _ := strconv.ParseFloat(record[idx], 64)
	return v
}

func runBenchmark(applicants []Applicant, baseURL, tenantID string, numWorkers, cutoff int, verbose bool) *Metrics {
	metrics := &Metrics{}

	// Create work channel
	work := make(chan Applicant, 100)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 10 * time.Second}

			for a := range work {
				start := time.Now()
				result, err := scoreApplicant(client, baseURL, tenantID, a)
				elapsed := time.Since(start).Milliseconds()

				atomic.AddInt64(&metrics.ProcessingTimeMs, elapsed)
				atomic.AddInt64(&metrics.TotalProcessed, 1)

				if err != nil {
					atomic.AddInt64(&metrics.TotalErrors, 1)
					if verbose {
						fmt.Printf("ERROR: %s -> %v\n", a.ApplicantID, err)
					}
					continue
				}

				// Track actual labels
				if a.Defaulted {
					atomic.AddInt64(&metrics.TotalDefaults, 1)
				} else {
					atomic.AddInt64(&metrics.TotalHealthy, 1)
				}
				atomic.AddInt64(&metrics.ScoreSum, int64(result.Score.FinalScore))

				// Calculate confusion matrix
				predicted := result.Score.FinalScore < cutoff
				actual := a.Defaulted

				if predicted && actual {
					atomic.AddInt64(&metrics.TruePositives, 1)
				} else if predicted && !actual {
					atomic.AddInt64(&metrics.FalsePositives, 1)
				} else if !predicted && !actual {
					atomic.AddInt64(&metrics.TrueNegatives, 1)
				} else { // !predicted && actual
					atomic.AddInt64(&metrics.FalseNegatives, 1)
				}

				if verbose {
					status := "✓"
					if (predicted && !actual) || (!predicted && actual) {
						status = "✗"
					}
					name := a.ApplicantID
					if len(name) > 10 {
						name = name[:10]
					}
					fmt.Printf("%s %-10s | Segment: %-20s | Defaulted: %-5v | Heron: %4d (%s) | Limit: ₹%.0f\n",
						status,
						name,
						a.BusinessSegment,
						a.Defaulted,
						result.Score.FinalScore,
						result.Score.RiskTier,
						result.Limit.RecommendedLimit,
					)
				}
			}
		}()
	}

	// Send work
	for _, a := range applicants {
		work <- a
	}
	close(work)

	// Wait for completion
	wg.Wait()

	return metrics
}

func scoreApplicant(client *http.Client, baseURL, tenantID string, a Applicant) (*ScoreResponse, error) {
	req := ScoreRequest{
		ApplicantID:     a.ApplicantID,
		BusinessSegment: a.BusinessSegment,
		MSMECategory:    a.MSMECategory,
		Features:        FeatureSet{Numeric: a.Features},
		Financials: Financials{
			AnnualTurnover:     a.AnnualTurnover,
			MonthlySurplus:     a.MonthlySurplus,
			CurrentAssets:      a.CurrentAssets,
			CurrentLiabilities: a.CurrentLiabilities,
			ExistingDebt:       a.ExistingDebt,
		},
		ExternalProbability: a.ExternalProbability,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, baseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Tenant-ID", tenantID)

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var result ScoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func printResults(m *Metrics, duration time.Duration) {
	fmt.Println("\n╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                      BENCHMARK RESULTS                        ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")

	fmt.Printf("\n📊 DATASET STATISTICS\n")
	fmt.Printf("   Total Processed:  %d\n", m.TotalProcessed)
	fmt.Printf("   Total Defaulted:  %d\n", m.TotalDefaults)
	fmt.Printf("   Total Healthy:    %d\n", m.TotalHealthy)
	fmt.Printf("   Errors:           %d\n", m.TotalErrors)
	if m.TotalProcessed > 0 {
		fmt.Printf("   Mean Score:       %.0f\n", float64(m.ScoreSum)/float64(m.TotalProcessed))
	}

	fmt.Printf("\n📈 CONFUSION MATRIX\n")
	fmt.Println("                        Predicted")
	fmt.Println("                  DEFAULT     HEALTHY")
	fmt.Println("              ┌──────────┬──────────┐")
	fmt.Printf("   Actual  D  │ %8d │ %8d │  (TP, FN)\n", m.TruePositives, m.FalseNegatives)
	fmt.Println("              ├──────────┼──────────┤")
	fmt.Printf("           H  │ %8d │ %8d │  (FP, TN)\n", m.FalsePositives, m.TrueNegatives)
	fmt.Println("              └──────────┴──────────┘")

	// Calculate metrics
	precision := float64(0)
	if m.TruePositives+m.FalsePositives > 0 {
		precision = float64(m.TruePositives) / float64(m.TruePositives+m.FalsePositives)
	}

	recall := float64(0)
	if m.TruePositives+m.FalseNegatives > 0 {
		recall = float64(m.TruePositives) / float64(m.TruePositives+m.FalseNegatives)
	}

	f1 := float64(0)
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	accuracy := float64(0)
	correct := m.TruePositives + m.TrueNegatives
	if m.TotalProcessed > 0 {
		accuracy = float64(correct) / float64(m.TotalProcessed-m.TotalErrors)
	}

	fmt.Printf("\n🎯 CLASSIFICATION METRICS\n")
	fmt.Printf("   Precision:  %.4f  (of predicted defaults, how many actually defaulted)\n", precision)
	fmt.Printf("   Recall:     %.4f  (of actual defaults, how many were caught)\n", recall)
	fmt.Printf("   F1-Score:   %.4f\n", f1)
	fmt.Printf("   Accuracy:   %.4f\n", accuracy)

	fmt.Printf("\n⚡ PERFORMANCE\n")
	fmt.Printf("   Total Time:       %s\n", duration.Round(time.Millisecond))
	if m.TotalProcessed > 0 {
		fmt.Printf("   Throughput:       %.1f applicants/sec\n", float64(m.TotalProcessed)/duration.Seconds())
		fmt.Printf("   Avg Latency:      %.1f ms\n", float64(m.ProcessingTimeMs)/float64(m.TotalProcessed))
	}
	fmt.Println()
}
