package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mwieler/bili-calculator/internal/model"
	"github.com/mwieler/bili-calculator/internal/validate"
)

var (
	batchCSV         string
	batchOutput      string
	batchConcurrency int
)

// batchRow pairs an input row with its assessment outcome for the output
// report. Failed rows carry the error text instead of a result.
type batchRow struct {
	Row    int                     `json:"row"`
	Input  model.AssessmentInput   `json:"input"`
	Result *model.AssessmentResult `json:"result,omitempty"`
	Error  string                  `json:"error,omitempty"`
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Assess a CSV of patients",
	Long: `Reads a CSV with header
  gestational_age_weeks,age_hours,bilirubin_mg_dl,risk_factors
(risk_factors is optional, semicolon-separated) and assesses every row.
Rows are processed concurrently; the engine is pure and the table store is
read-only, so concurrent assessment is safe. Per-row failures are reported
in the output, not fatal to the batch.

Example:
  bili-calculator batch --csv cohort.csv --output results.json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		runID := uuid.NewString()

		inputs, err := parseBatchCSV(batchCSV)
		if err != nil {
			return eris.Wrap(err, "batch: parse csv")
		}
		zap.L().Info("batch: parsed csv",
			zap.String("run_id", runID),
			zap.Int("rows", len(inputs)),
		)

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.Concurrency
		}

		g, _ := errgroup.WithContext(cmd.Context())
		g.SetLimit(concurrency)

		var mu sync.Mutex
		rows := make([]batchRow, len(inputs))
		var succeeded, failed atomic.Int64

		for i, in := range inputs {
			i, in := i, in
			g.Go(func() error {
				row := batchRow{Row: i + 1, Input: in}

				if err := validate.Input(in); err != nil {
					row.Error = err.Error()
					failed.Add(1)
				} else if result, err := eng.Assess(in); err != nil {
					row.Error = err.Error()
					failed.Add(1)
					zap.L().Error("batch: row failed",
						zap.String("run_id", runID),
						zap.Int("row", i+1),
						zap.Error(err),
					)
				} else {
					row.Result = result
					succeeded.Add(1)
				}

				mu.Lock()
				rows[i] = row
				mu.Unlock()
				return nil // individual failures never abort the batch
			})
		}
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "batch: wait")
		}

		zap.L().Info("batch: complete",
			zap.String("run_id", runID),
			zap.Int64("succeeded", succeeded.Load()),
			zap.Int64("failed", failed.Load()),
			zap.Int64("guidance_fallbacks", eng.Matcher().FallbackCount()),
		)

		return writeBatchOutput(rows)
	},
}

// parseBatchCSV reads patient rows from the batch input file.
func parseBatchCSV(path string) ([]model.AssessmentInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "read records")
	}
	if len(records) < 2 {
		return nil, eris.New("csv has no data rows")
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"gestational_age_weeks", "age_hours", "bilirubin_mg_dl"} {
		if _, ok := col[required]; !ok {
			return nil, eris.Errorf("csv missing column %q", required)
		}
	}

	var inputs []model.AssessmentInput
	for n, rec := range records[1:] {
		in, err := parseBatchRecord(rec, col)
		if err != nil {
			return nil, eris.Wrapf(err, "row %d", n+2)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func parseBatchRecord(rec []string, col map[string]int) (model.AssessmentInput, error) {
	field := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	ga, err := strconv.Atoi(field("gestational_age_weeks"))
	if err != nil {
		return model.AssessmentInput{}, eris.Wrap(err, "parse gestational_age_weeks")
	}
	age, err := strconv.Atoi(field("age_hours"))
	if err != nil {
		return model.AssessmentInput{}, eris.Wrap(err, "parse age_hours")
	}
	tsb, err := strconv.ParseFloat(field("bilirubin_mg_dl"), 64)
	if err != nil {
		return model.AssessmentInput{}, eris.Wrap(err, "parse bilirubin_mg_dl")
	}

	var factors []string
	if raw := field("risk_factors"); raw != "" {
		for _, rf := range strings.Split(raw, ";") {
			if rf = strings.TrimSpace(rf); rf != "" {
				factors = append(factors, rf)
			}
		}
	}

	return model.AssessmentInput{
		GestationalAgeWeeks: ga,
		AgeHours:            age,
		BilirubinMgDL:       tsb,
		RiskFactors:         factors,
	}, nil
}

func writeBatchOutput(rows []batchRow) error {
	out, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return eris.Wrap(err, "batch: marshal output")
	}

	if batchOutput == "" {
		fmt.Println(string(out))
		return nil
	}
	if err := os.WriteFile(batchOutput, append(out, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "batch: write %s", batchOutput)
	}
	zap.L().Info("batch: wrote output", zap.String("path", batchOutput))
	return nil
}

func init() {
	batchCmd.Flags().StringVar(&batchCSV, "csv", "", "path to the patient CSV")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "write JSON results to this file instead of stdout")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "concurrent assessments (default from config)")

	_ = batchCmd.MarkFlagRequired("csv")

	rootCmd.AddCommand(batchCmd)
}
