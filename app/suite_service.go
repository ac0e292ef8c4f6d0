package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"fhtsuite/adapters/export"
	"fhtsuite/domain/core"
	"fhtsuite/domain/fht"
	"fhtsuite/internal"
	"fhtsuite/internal/errors"
	"fhtsuite/internal/report"
	"fhtsuite/internal/testkit"
	"fhtsuite/internal/validation"
	"fhtsuite/ports"
)

// RunRepository persists orchestrated validation runs
type RunRepository interface {
	SaveRun(ctx context.Context, result *validation.SuiteResult) error
	GetRun(ctx context.Context, runID core.RunID) (*validation.SuiteResult, error)
	ListRuns(ctx context.Context, limit int) ([]validation.RunSummary, error)
}

// SuiteGenerator is a dataset generator that can also build whole bundles
type SuiteGenerator interface {
	ports.DatasetGenerator
	GenerateSuite(ctx context.Context, patterns []string, sizes []int, seed int64) (*testkit.Suite, error)
}

// SuiteService wires the engine, orchestrator, store and exporters together
type SuiteService struct {
	engine    *fht.Engine
	generator SuiteGenerator
	repo      RunRepository // nil disables persistence
	outputDir string
	logger    *internal.Logger
}

// SuiteRequest defines one orchestrated run
type SuiteRequest struct {
	Patterns   []string        `json:"patterns"`
	Sizes      []int           `json:"sizes"`
	Seed       int64           `json:"seed"`
	Workers    int             `json:"workers"`
	MaxWeight  int64           `json:"max_weight"`
	Parameters *fht.Parameters `json:"parameters,omitempty"` // overrides the service engine
	Persist    bool            `json:"persist"`
	Export     bool            `json:"export"`
}

// SuiteOutcome is a finished run with its report and any written files
type SuiteOutcome struct {
	Result *validation.SuiteResult `json:"result"`
	Report string                  `json:"report"`
	Files  []string                `json:"files,omitempty"`
}

// NewSuiteService creates a suite service
func NewSuiteService(engine *fht.Engine, generator SuiteGenerator, repo RunRepository, outputDir string) *SuiteService {
	return &SuiteService{
		engine:    engine,
		generator: generator,
		repo:      repo,
		outputDir: outputDir,
		logger:    internal.DefaultLogger.WithComponent("SuiteService"),
	}
}

// Engine returns the engine for params, or the service engine when params is nil
func (s *SuiteService) Engine(params *fht.Parameters) (*fht.Engine, error) {
	if params == nil {
		return s.engine, nil
	}
	engine, err := fht.NewEngine(*params)
	if err != nil {
		return nil, errors.Wrap(err, "invalid transform parameters")
	}
	return engine, nil
}

// Transform applies the transform with the given amplification (1.0 when zero)
func (s *SuiteService) Transform(params *fht.Parameters, data []float64, amplification float64) ([]float64, error) {
	engine, err := s.Engine(params)
	if err != nil {
		return nil, err
	}
	if amplification == 0 {
		amplification = 1.0
	}
	return engine.TransformAmplified(data, amplification), nil
}

// Score transforms data and scores the pair
func (s *SuiteService) Score(params *fht.Parameters, data []float64) ([]float64, fht.ScoreSet, error) {
	engine, err := s.Engine(params)
	if err != nil {
		return nil, fht.ScoreSet{}, err
	}
	transformed := engine.Transform(data)
	scores, err := engine.Score(data, transformed)
	if err != nil {
		return nil, fht.ScoreSet{}, errors.Wrap(err, "scoring failed")
	}
	return transformed, scores, nil
}

// ValidateDataset runs the statistical validator over one caller-supplied dataset
func (s *SuiteService) ValidateDataset(ctx context.Context, params *fht.Parameters, data []float64) (*validation.Record, error) {
	engine, err := s.Engine(params)
	if err != nil {
		return nil, err
	}
	record, err := validation.NewValidator(engine, nil).Validate(ctx, data)
	if err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}
	record.Sequence = 1
	return record, nil
}

// RunSuite orchestrates a sweep, then persists and exports it as requested.
// Persistence or export failures are returned alongside the finished outcome.
func (s *SuiteService) RunSuite(ctx context.Context, req SuiteRequest) (*SuiteOutcome, error) {
	engine, err := s.Engine(req.Parameters)
	if err != nil {
		return nil, err
	}

	orchestrator := validation.NewOrchestrator(engine, s.generator, validation.Options{
		Seed:      req.Seed,
		Workers:   req.Workers,
		MaxWeight: req.MaxWeight,
	})
	result, err := orchestrator.Run(ctx, req.Patterns, req.Sizes)
	if err != nil {
		return nil, errors.Wrap(err, "validation run failed")
	}

	outcome := &SuiteOutcome{Result: result, Report: report.Render(result)}

	if req.Persist {
		if s.repo == nil {
			return outcome, errors.DatabaseError("persistence requested but no database is configured", nil)
		}
		if err := s.repo.SaveRun(ctx, result); err != nil {
			return outcome, errors.Wrapf(err, "failed to save run %s", result.RunID)
		}
		s.logger.Info("saved run %s", result.RunID)
	}

	if req.Export {
		files, err := s.ExportResult(result)
		outcome.Files = files
		if err != nil {
			return outcome, err
		}
	}

	return outcome, nil
}

// ExportResult writes JSON, CSV, XLSX and report files for result into the output directory
func (s *SuiteService) ExportResult(result *validation.SuiteResult) ([]string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return nil, errors.ExportError("failed to create output directory", err)
	}
	base := filepath.Join(s.outputDir, "fht_validation_"+result.RunID.String())

	var files []string
	writeFile := func(path string, write func(*os.File) error) error {
		f, err := os.Create(path)
		if err != nil {
			return errors.ExportError("failed to create "+path, err)
		}
		if err := write(f); err != nil {
			f.Close()
			return errors.ExportError("failed to write "+path, err)
		}
		if err := f.Close(); err != nil {
			return errors.ExportError("failed to close "+path, err)
		}
		files = append(files, path)
		return nil
	}

	if err := writeFile(base+".json", func(f *os.File) error { return export.WriteResultJSON(f, result) }); err != nil {
		return files, err
	}
	if err := writeFile(base+".csv", func(f *os.File) error { return export.WriteRecordsCSV(f, result.Records()) }); err != nil {
		return files, err
	}
	if err := writeFile(base+"_report.txt", func(f *os.File) error {
		_, err := f.WriteString(report.Render(result))
		return err
	}); err != nil {
		return files, err
	}

	if err := export.WriteWorkbook(base+".xlsx", result); err != nil {
		return files, err
	}
	files = append(files, base+".xlsx")

	s.logger.Info("exported run %s to %d files", result.RunID, len(files))
	return files, nil
}

// GetRun loads a stored run by ID
func (s *SuiteService) GetRun(ctx context.Context, id string) (*validation.SuiteResult, error) {
	if s.repo == nil {
		return nil, errors.DatabaseError("no database is configured", nil)
	}
	runID, err := core.ParseRunID(id)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	return s.repo.GetRun(ctx, runID)
}

// ListRuns lists stored runs, most recent first
func (s *SuiteService) ListRuns(ctx context.Context, limit int) ([]validation.RunSummary, error) {
	if s.repo == nil {
		return nil, errors.DatabaseError("no database is configured", nil)
	}
	return s.repo.ListRuns(ctx, limit)
}

// GenerateDatasets builds a dataset bundle and, when dir is set, writes it as
// bundle JSON plus one CSV per dataset.
func (s *SuiteService) GenerateDatasets(ctx context.Context, patterns []string, sizes []int, seed int64, dir string) (*testkit.Suite, []string, error) {
	suite, err := s.generator.GenerateSuite(ctx, patterns, sizes, seed)
	if err != nil {
		return nil, nil, errors.Wrap(err, "dataset generation failed")
	}
	if dir == "" {
		return suite, nil, nil
	}

	paths, err := export.WriteDatasetsCSV(dir, suite)
	if err != nil {
		return suite, paths, err
	}

	bundle := filepath.Join(dir, fmt.Sprintf("synthetic_validation_suite_%d.json", seed))
	f, err := os.Create(bundle)
	if err != nil {
		return suite, paths, errors.ExportError("failed to create bundle", err)
	}
	defer f.Close()
	if err := export.WriteDatasetBundleJSON(f, suite); err != nil {
		return suite, paths, errors.ExportError("failed to write bundle", err)
	}
	return suite, append(paths, bundle), nil
}
