package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"fhtsuite/adapters/export"
	"fhtsuite/domain/fht"
	"fhtsuite/internal/config"
	"fhtsuite/internal/container"
	"fhtsuite/internal/testkit"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "fhtsuite",
		Short: "Fractal-harmonic transform scoring and statistical validation",
	}
	rootCmd.PersistentFlags().String("config", "", "YAML config file (overrides FHT_CONFIG)")

	rootCmd.AddCommand(
		newTransformCmd(),
		newScoreCmd(),
		newValidateCmd(),
		newSuiteCmd(),
		newGenerateCmd(),
		newRunsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// paramFlags are the transform overrides shared by transform, score and validate
type paramFlags struct {
	alpha, beta, epsilon float64
}

func (p *paramFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&p.alpha, "alpha", fht.Phi, "Transform scale and exponent")
	cmd.Flags().Float64Var(&p.beta, "beta", fht.DefaultBeta, "Transform offset")
	cmd.Flags().Float64Var(&p.epsilon, "epsilon", fht.DefaultEpsilon, "Floor and log stabilizer")
}

// resolve returns nil when no flag was set so the configured engine is used
func (p *paramFlags) resolve(cmd *cobra.Command, cfg *config.Config) *fht.Parameters {
	flags := cmd.Flags()
	if !flags.Changed("alpha") && !flags.Changed("beta") && !flags.Changed("epsilon") {
		return nil
	}
	params := cfg.Transform
	if flags.Changed("alpha") {
		params.Alpha = p.alpha
	}
	if flags.Changed("beta") {
		params.Beta = p.beta
	}
	if flags.Changed("epsilon") {
		params.Epsilon = p.epsilon
	}
	return &params
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func newContainer(cmd *cobra.Command, withDB bool) (*container.Container, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if withDB {
		if err := c.InitWithDatabase(cmd.Context()); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// readValues takes the dataset from --file when given, else from the arguments
func readValues(args []string, file, jsonPath string) ([]float64, error) {
	if file != "" {
		return export.LoadDataset(file, jsonPath)
	}
	data := make([]float64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", arg, err)
		}
		data[i] = v
	}
	return data, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTransformCmd() *cobra.Command {
	var params paramFlags
	var amplification float64
	var file, jsonPath string

	cmd := &cobra.Command{
		Use:   "transform [values...]",
		Short: "Apply the fractal-harmonic transform to a series",
		Long: `Apply the transform element-wise and print the result as JSON.

Example: fhtsuite transform 1 2 3 4 5 --amplification 2
         fhtsuite transform --file data.json --path series.values`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(cmd, false)
			if err != nil {
				return err
			}
			data, err := readValues(args, file, jsonPath)
			if err != nil {
				return err
			}
			transformed, err := c.SuiteService.Transform(params.resolve(cmd, c.Config), data, amplification)
			if err != nil {
				return err
			}
			return printJSON(transformed)
		},
	}

	params.register(cmd)
	cmd.Flags().Float64Var(&amplification, "amplification", 1.0, "Amplification factor")
	cmd.Flags().StringVar(&file, "file", "", "Read the series from a .csv or .json file")
	cmd.Flags().StringVar(&jsonPath, "path", "", "gjson path of the series inside a JSON file")
	return cmd
}

func newScoreCmd() *cobra.Command {
	var params paramFlags
	var file, jsonPath string

	cmd := &cobra.Command{
		Use:   "score [values...]",
		Short: "Transform a series and print its stability, breakthrough and composite scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(cmd, false)
			if err != nil {
				return err
			}
			data, err := readValues(args, file, jsonPath)
			if err != nil {
				return err
			}
			_, scores, err := c.SuiteService.Score(params.resolve(cmd, c.Config), data)
			if err != nil {
				return err
			}
			return printJSON(scores)
		},
	}

	params.register(cmd)
	cmd.Flags().StringVar(&file, "file", "", "Read the series from a .csv or .json file")
	cmd.Flags().StringVar(&jsonPath, "path", "", "gjson path of the series inside a JSON file")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var params paramFlags
	var file, jsonPath string

	cmd := &cobra.Command{
		Use:   "validate [values...]",
		Short: "Run the statistical validator over one dataset",
		Long: `Transform a dataset, score it and run Pearson, Spearman and
Kolmogorov-Smirnov tests between the original and transformed series.

Example: fhtsuite validate --file results/fibonacci_size_1000.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(cmd, false)
			if err != nil {
				return err
			}
			data, err := readValues(args, file, jsonPath)
			if err != nil {
				return err
			}
			record, err := c.SuiteService.ValidateDataset(cmd.Context(), params.resolve(cmd, c.Config), data)
			if err != nil {
				return err
			}
			return export.WriteRecordJSON(os.Stdout, *record)
		},
	}

	params.register(cmd)
	cmd.Flags().StringVar(&file, "file", "", "Read the dataset from a .csv or .json file")
	cmd.Flags().StringVar(&jsonPath, "path", "", "gjson path of the dataset inside a JSON file")
	return cmd
}

func newSuiteCmd() *cobra.Command {
	var patterns []string
	var sizes []int
	var seed int64
	var workers int
	var maxWeight int64
	var persist, exportFiles bool

	cmd := &cobra.Command{
		Use:   "suite",
		Short: "Validate the transform across generated patterns and sizes",
		Long: `Generate every (pattern, size) dataset, validate each one and print
the text report. Failed pairs are reported without stopping the run.

Example: fhtsuite suite --patterns fibonacci,random --sizes 1000,10000 --workers 4 --export`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(cmd, persist)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			req := c.SuiteRequest()
			if cmd.Flags().Changed("patterns") {
				req.Patterns = patterns
			}
			if cmd.Flags().Changed("sizes") {
				req.Sizes = sizes
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = seed
			}
			if cmd.Flags().Changed("workers") {
				req.Workers = workers
			}
			if cmd.Flags().Changed("max-weight") {
				req.MaxWeight = maxWeight
			}
			req.Persist = persist
			req.Export = exportFiles

			outcome, err := c.SuiteService.RunSuite(cmd.Context(), req)
			if outcome == nil {
				return err
			}
			fmt.Print(outcome.Report)
			for _, f := range outcome.Files {
				fmt.Printf("wrote %s\n", f)
			}
			return err
		},
	}

	cmd.Flags().StringSliceVar(&patterns, "patterns", nil, "Patterns to validate (default from config)")
	cmd.Flags().IntSliceVar(&sizes, "sizes", nil, "Dataset sizes (default from config)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic operations")
	cmd.Flags().IntVar(&workers, "workers", 1, "Concurrent validation workers")
	cmd.Flags().Int64Var(&maxWeight, "max-weight", 0, "Maximum total dataset size in flight (0 = default)")
	cmd.Flags().BoolVar(&persist, "persist", false, "Save the run to the configured database")
	cmd.Flags().BoolVar(&exportFiles, "export", false, "Write JSON, CSV, XLSX and report files to the output directory")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var patterns []string
	var sizes []int
	var seed int64
	var outDir string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the synthetic dataset bundle",
		Long: `Generate datasets for each pattern and size and write one CSV per
dataset plus a JSON bundle with metadata and summary statistics.

Example: fhtsuite generate --sizes 1000,10000 --out datasets --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(cmd, false)
			if err != nil {
				return err
			}
			suite, files, err := c.SuiteService.GenerateDatasets(cmd.Context(), patterns, sizes, seed, outDir)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATTERN\tSIZE\tMEAN\tSTD\tMIN\tMAX")
			_ = suite.Each(func(pattern string, d testkit.Dataset) error {
				fmt.Fprintf(w, "%s\t%d\t%.4f\t%.4f\t%.4f\t%.4f\n", pattern, d.Size, d.Mean, d.Std, d.Min, d.Max)
				return nil
			})
			w.Flush()

			for _, f := range suite.Failures {
				fmt.Printf("failed %s/%d: %s\n", f.Pattern, f.Size, f.Error)
			}
			fmt.Printf("wrote %d files to %s\n", len(files), outDir)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&patterns, "patterns", nil, "Patterns to generate (default: all suite patterns)")
	cmd.Flags().IntSliceVar(&sizes, "sizes", nil, "Dataset sizes (default 1000,10000,50000)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic operations")
	cmd.Flags().StringVar(&outDir, "out", "datasets", "Output directory")
	return cmd
}

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect persisted validation runs",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(cmd, true)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			runs, err := c.SuiteService.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN ID\tSEED\tRECORDS\tFAILURES\tCREATED")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", r.RunID, r.Seed, r.RecordCount, r.FailureCount, r.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list (0 = all)")

	showCmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Print a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(cmd, true)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			result, err := c.SuiteService.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return export.WriteResultJSON(os.Stdout, result)
		},
	}

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}
