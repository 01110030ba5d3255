package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pcbfuse/internal/compact"
	"pcbfuse/internal/config"
	"pcbfuse/internal/diag"
	"pcbfuse/internal/errors"
	"pcbfuse/internal/graph"
	"pcbfuse/internal/logging"
	"pcbfuse/internal/normalize"
	"pcbfuse/internal/output"
	"pcbfuse/internal/source"
	"pcbfuse/internal/tokens"
)

var (
	fuseTokenLimit int
	fuseOutput     string
	fuseLevel      int
	fuseCompress   bool
	fuseCheckOnly  bool
)

var fuseCmd = &cobra.Command{
	Use:   "fuse BOM PLACEMENT NETLIST",
	Short: "Fuse BOM, pick and place, and netlist into one YAML document",
	Long: `Fuse the three design exports into a single component/net graph and
write it as YAML, reduced to fit the token budget.

The BOM and placement files may be CSV or XLSX; the netlist may be an
EasyEDA .enet JSON export or a plain text net block format.

Examples:
  pcbfuse fuse bom.csv placement.csv board.enet
  pcbfuse fuse bom.xlsx pnp.xlsx netlist.txt --token-limit 50000
  pcbfuse fuse bom.csv pnp.csv board.enet --level 2 -o board.yaml
  pcbfuse fuse bom.csv pnp.csv board.enet --compress`,
	Args: cobra.ExactArgs(3),
	RunE: runFuse,
}

func init() {
	fuseCmd.Flags().IntVar(&fuseTokenLimit, "token-limit", 0,
		"Maximum token count for the output document (default from config)")
	fuseCmd.Flags().StringVarP(&fuseOutput, "output", "o", "",
		"Output file path (default from config)")
	fuseCmd.Flags().IntVar(&fuseLevel, "level", 0,
		"Force a fixed reduction level 1-4 instead of budget-driven reduction")
	fuseCmd.Flags().BoolVar(&fuseCompress, "compress", false,
		"Gzip the output document")
	fuseCmd.Flags().BoolVar(&fuseCheckOnly, "check-only", false,
		"Build and verify the graph without writing output")
	rootCmd.AddCommand(fuseCmd)
}

func runFuse(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.New(errors.ConfigInvalid, "invalid configuration", err)
	}
	logger := newLogger(cfg)

	bomPath, placementPath, netlistPath := args[0], args[1], args[2]
	diags := diag.NewList()

	design, err := buildDesign(bomPath, placementPath, netlistPath, diags)
	if err != nil {
		return err
	}
	logger.Info("Graph built", map[string]interface{}{
		"components": len(design.Components),
		"nets":       len(design.Nets),
	})

	if fuseCheckOnly {
		if dangling := design.Verify(); len(dangling) > 0 {
			for _, p := range dangling {
				diags.Errorf("verify", "net pin %s does not resolve to a component", p)
			}
		}
		surfaceDiagnostics(logger, diags)
		if diags.HasErrors() {
			return fmt.Errorf("graph verification failed")
		}
		logger.Info("Graph verified", nil)
		return nil
	}

	counter := newCounter(cfg, logger)
	limit := fuseTokenLimit
	if limit == 0 {
		limit = cfg.Budget.TokenLimit
	}

	opts := compact.Options{
		BusNetThreshold: cfg.Compaction.BusNetThreshold,
		PinSampleCap:    cfg.Compaction.PinSampleCap,
		MinElisionClass: cfg.Compaction.MinElisionClass,
	}
	measure := func(d *graph.Design) (string, error) {
		data, err := output.Encode(d, nil)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	var report *output.Report
	var reduced *graph.Design

	if fuseLevel > 0 {
		reduced = compact.ForceLevel(design, fuseLevel, opts)
		text, err := measure(reduced)
		if err != nil {
			return err
		}
		tokens := counter.Count(text)
		report = &output.Report{
			TokenLimit: limit,
			Tokens:     tokens,
			Level:      fuseLevel,
			BudgetMet:  tokens <= limit,
		}
	} else {
		res, err := compact.Run(design, limit, counter, measure, opts, diags)
		if err != nil {
			return err
		}
		reduced = res.Design
		report = &output.Report{
			TokenLimit: limit,
			Tokens:     res.Tokens,
			Level:      res.Level,
			BudgetMet:  res.BudgetMet,
		}
		for _, step := range res.Applied {
			report.Passes = append(report.Passes, fmt.Sprintf("%s (%s)", step.Pass, step.Detail))
		}
	}

	data, err := encodeFinal(reduced, report, counter, diags)
	if err != nil {
		return err
	}

	path := fuseOutput
	if path == "" {
		path = cfg.Output.Path
	}
	written, err := output.Write(path, data, fuseCompress || cfg.Output.Compress)
	if err != nil {
		return err
	}

	surfaceDiagnostics(logger, diags)
	logger.Info("Output written", map[string]interface{}{
		"path":      written,
		"tokens":    report.Tokens,
		"level":     report.Level,
		"budgetMet": report.BudgetMet,
		"counter":   counter.Name(),
	})
	return nil
}

// encodeFinal serializes the design with its reduction report and
// reconciles the report against the emitted document: the compactor
// measured candidates without the report section, so the final
// document can be a few tokens larger than the count it reports.
// Tokens and BudgetMet are updated from the real document and the
// budget warning re-raised when the addition pushes it over. Updating
// the report changes the document, so re-encode until the count is
// stable; the token digits converge within a couple of rounds.
func encodeFinal(d *graph.Design, report *output.Report, counter tokens.Counter, diags *diag.List) ([]byte, error) {
	wasMet := report.BudgetMet
	var data []byte
	for i := 0; i < 4; i++ {
		var err error
		data, err = output.Encode(d, report)
		if err != nil {
			return nil, err
		}
		count := counter.Count(string(data))
		met := report.TokenLimit <= 0 || count <= report.TokenLimit
		if count == report.Tokens && met == report.BudgetMet {
			break
		}
		report.Tokens = count
		report.BudgetMet = met
	}
	if wasMet && !report.BudgetMet {
		diags.Warnf("compact", "final document is %d tokens, over the %d budget",
			report.Tokens, report.TokenLimit)
	}
	return data, nil
}

// buildDesign runs the read, normalize and merge stages
func buildDesign(bomPath, placementPath, netlistPath string, diags *diag.List) (*graph.Design, error) {
	bomTable, err := source.ReadTable(bomPath)
	if err != nil {
		return nil, err
	}
	placementTable, err := source.ReadTable(placementPath)
	if err != nil {
		return nil, err
	}
	netlist, err := source.ReadNetlist(netlistPath)
	if err != nil {
		return nil, err
	}

	bom, err := normalize.BOM(bomTable, diags)
	if err != nil {
		return nil, err
	}
	placements, err := normalize.Placement(placementTable, diags)
	if err != nil {
		return nil, err
	}
	pins, err := normalize.Pins(netlist, diags)
	if err != nil {
		return nil, err
	}

	return graph.Build(bom, placements, pins, diags), nil
}

// newCounter returns the configured tokenizer, falling back to the
// character heuristic when the encoding cannot be initialized (first
// use downloads the encoding tables).
func newCounter(cfg *config.Config, logger *logging.Logger) tokens.Counter {
	counter, err := tokens.NewTiktoken(cfg.Budget.Encoding)
	if err != nil {
		logger.Warn("Tokenizer unavailable, using character heuristic", map[string]interface{}{
			"encoding": cfg.Budget.Encoding,
			"error":    err.Error(),
		})
		return tokens.NewHeuristic()
	}
	return counter
}

// surfaceDiagnostics writes accumulated warnings to the diagnostic
// stream, never into the output document
func surfaceDiagnostics(logger *logging.Logger, diags *diag.List) {
	for _, d := range diags.Items() {
		fields := map[string]interface{}{"stage": d.Stage}
		switch d.Severity {
		case diag.SeverityError:
			logger.Error(d.Message, fields)
		case diag.SeverityWarning:
			logger.Warn(d.Message, fields)
		default:
			logger.Info(d.Message, fields)
		}
	}
}
