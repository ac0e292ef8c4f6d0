package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"fhtsuite/adapters/export"
	"fhtsuite/domain/core"
	"fhtsuite/domain/fht"
	"fhtsuite/internal/errors"
	"fhtsuite/internal/validation"
)

type runRow struct {
	RunID        string    `db:"run_id"`
	Seed         int64     `db:"seed"`
	Alpha        float64   `db:"alpha"`
	Beta         float64   `db:"beta"`
	Epsilon      float64   `db:"epsilon"`
	Patterns     string    `db:"patterns"`
	Sizes        string    `db:"sizes"`
	RecordCount  int       `db:"record_count"`
	FailureCount int       `db:"failure_count"`
	Duration     float64   `db:"duration"`
	CreatedAt    time.Time `db:"created_at"`
}

type recordRow struct {
	RunID               string  `db:"run_id"`
	Sequence            int     `db:"sequence"`
	Pattern             string  `db:"pattern"`
	Size                int     `db:"size"`
	DatasetSize         int     `db:"dataset_size"`
	ProcessingTime      float64 `db:"processing_time"`
	Fingerprint         string  `db:"fingerprint"`
	ConsciousnessScore  float64 `db:"consciousness_score"`
	StabilityScore      float64 `db:"stability_score"`
	BreakthroughScore   float64 `db:"breakthrough_score"`
	Correlation         float64 `db:"correlation"`
	PearsonCorrelation  float64 `db:"pearson_correlation"`
	PearsonPValue       float64 `db:"pearson_p_value"`
	SpearmanCorrelation float64 `db:"spearman_correlation"`
	SpearmanPValue      float64 `db:"spearman_p_value"`
	KSStatistic         float64 `db:"ks_statistic"`
	KSPValue            float64 `db:"ks_p_value"`
	Characteristics     string  `db:"characteristics"`
}

type failureRow struct {
	RunID    string `db:"run_id"`
	Position int    `db:"position"`
	Pattern  string `db:"pattern"`
	Size     int    `db:"size"`
	Stage    string `db:"stage"`
	Error    string `db:"error"`
}

// RunRepository implements run persistence over sqlx
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a repository over an opened, migrated database
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// SaveRun stores a run, its records and its failures in one transaction
func (r *RunRepository) SaveRun(ctx context.Context, result *validation.SuiteResult) error {
	patterns, err := json.Marshal(result.Patterns)
	if err != nil {
		return errors.DatabaseError("failed to encode patterns", err)
	}
	sizes, err := json.Marshal(result.Sizes)
	if err != nil {
		return errors.DatabaseError("failed to encode sizes", err)
	}

	records := result.Records()
	run := runRow{
		RunID:        result.RunID.String(),
		Seed:         result.Seed,
		Alpha:        result.Parameters.Alpha,
		Beta:         result.Parameters.Beta,
		Epsilon:      result.Parameters.Epsilon,
		Patterns:     string(patterns),
		Sizes:        string(sizes),
		RecordCount:  len(records),
		FailureCount: len(result.Failures),
		Duration:     result.Duration,
		CreatedAt:    result.StartedAt,
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO validation_runs (run_id, seed, alpha, beta, epsilon, patterns, sizes, record_count, failure_count, duration, created_at)
		VALUES (:run_id, :seed, :alpha, :beta, :epsilon, :patterns, :sizes, :record_count, :failure_count, :duration, :created_at)
	`, run); err != nil {
		return errors.DatabaseError(fmt.Sprintf("failed to insert run %s", run.RunID), err)
	}

	for _, record := range records {
		row, err := toRecordRow(run.RunID, record)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO validation_records (
				run_id, sequence, pattern, size, dataset_size, processing_time, fingerprint,
				consciousness_score, stability_score, breakthrough_score, correlation,
				pearson_correlation, pearson_p_value, spearman_correlation, spearman_p_value,
				ks_statistic, ks_p_value, characteristics
			) VALUES (
				:run_id, :sequence, :pattern, :size, :dataset_size, :processing_time, :fingerprint,
				:consciousness_score, :stability_score, :breakthrough_score, :correlation,
				:pearson_correlation, :pearson_p_value, :spearman_correlation, :spearman_p_value,
				:ks_statistic, :ks_p_value, :characteristics
			)
		`, row); err != nil {
			return errors.DatabaseError(fmt.Sprintf("failed to insert record %d", record.Sequence), err)
		}
	}

	for i, f := range result.Failures {
		row := failureRow{RunID: run.RunID, Position: i, Pattern: f.Pattern, Size: f.Size, Stage: f.Stage, Error: f.Error}
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO validation_failures (run_id, position, pattern, size, stage, error)
			VALUES (:run_id, :position, :pattern, :size, :stage, :error)
		`, row); err != nil {
			return errors.DatabaseError("failed to insert failure", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit run", err)
	}
	return nil
}

// GetRun loads a stored run; the summary is recomputed from its records.
// Unknown IDs return core.ErrRunNotFound.
func (r *RunRepository) GetRun(ctx context.Context, runID core.RunID) (*validation.SuiteResult, error) {
	var run runRow
	err := r.db.GetContext(ctx, &run, r.db.Rebind(`
		SELECT run_id, seed, alpha, beta, epsilon, patterns, sizes, record_count, failure_count, duration, created_at
		FROM validation_runs
		WHERE run_id = ?
	`), runID.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to load run", err)
	}

	result := &validation.SuiteResult{
		RunID:      core.RunID(run.RunID),
		Seed:       run.Seed,
		Parameters: fht.Parameters{Alpha: run.Alpha, Beta: run.Beta, Epsilon: run.Epsilon},
		Results:    make(map[string][]validation.Record),
		Failures:   []validation.Failure{},
		StartedAt:  run.CreatedAt.UTC(),
		Duration:   run.Duration,
	}
	if err := json.Unmarshal([]byte(run.Patterns), &result.Patterns); err != nil {
		return nil, errors.DatabaseError("failed to decode patterns", err)
	}
	if err := json.Unmarshal([]byte(run.Sizes), &result.Sizes); err != nil {
		return nil, errors.DatabaseError("failed to decode sizes", err)
	}
	for _, pattern := range result.Patterns {
		result.Results[pattern] = []validation.Record{}
	}

	var rows []recordRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT * FROM validation_records WHERE run_id = ? ORDER BY sequence
	`), run.RunID); err != nil {
		return nil, errors.DatabaseError("failed to load records", err)
	}
	for _, row := range rows {
		record, err := fromRecordRow(row)
		if err != nil {
			return nil, err
		}
		result.Results[record.Pattern] = append(result.Results[record.Pattern], record)
	}

	var failures []failureRow
	if err := r.db.SelectContext(ctx, &failures, r.db.Rebind(`
		SELECT * FROM validation_failures WHERE run_id = ? ORDER BY position
	`), run.RunID); err != nil {
		return nil, errors.DatabaseError("failed to load failures", err)
	}
	for _, f := range failures {
		result.Failures = append(result.Failures, validation.Failure{Pattern: f.Pattern, Size: f.Size, Stage: f.Stage, Error: f.Error})
	}

	result.Summary = validation.Summarize(result)
	return result, nil
}

// ListRuns returns the most recent runs first; limit <= 0 means all
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]validation.RunSummary, error) {
	query := `
		SELECT run_id, seed, record_count, failure_count, created_at
		FROM validation_runs
		ORDER BY created_at DESC, run_id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	summaries := []validation.RunSummary{}
	if err := r.db.SelectContext(ctx, &summaries, r.db.Rebind(query), args...); err != nil {
		return nil, errors.DatabaseError("failed to list runs", err)
	}
	for i := range summaries {
		summaries[i].CreatedAt = summaries[i].CreatedAt.UTC()
	}
	return summaries, nil
}

func toRecordRow(runID string, r validation.Record) (recordRow, error) {
	characteristics, err := export.MarshalCharacteristics(r.Characteristics)
	if err != nil {
		return recordRow{}, errors.DatabaseError("failed to encode data characteristics", err)
	}
	return recordRow{
		RunID:               runID,
		Sequence:            r.Sequence,
		Pattern:             r.Pattern,
		Size:                r.Size,
		DatasetSize:         r.DatasetSize,
		ProcessingTime:      r.ProcessingTime,
		Fingerprint:         r.Fingerprint.String(),
		ConsciousnessScore:  r.Metrics.ConsciousnessScore,
		StabilityScore:      r.Metrics.StabilityScore,
		BreakthroughScore:   r.Metrics.BreakthroughScore,
		Correlation:         r.Metrics.Correlation,
		PearsonCorrelation:  r.Tests.PearsonCorrelation,
		PearsonPValue:       r.Tests.PearsonPValue,
		SpearmanCorrelation: r.Tests.SpearmanCorrelation,
		SpearmanPValue:      r.Tests.SpearmanPValue,
		KSStatistic:         r.Tests.KSStatistic,
		KSPValue:            r.Tests.KSPValue,
		Characteristics:     string(characteristics),
	}, nil
}

func fromRecordRow(row recordRow) (validation.Record, error) {
	characteristics, err := export.UnmarshalCharacteristics([]byte(row.Characteristics))
	if err != nil {
		return validation.Record{}, errors.DatabaseError("failed to decode data characteristics", err)
	}
	return validation.Record{
		Pattern:        row.Pattern,
		Size:           row.Size,
		Sequence:       row.Sequence,
		DatasetSize:    row.DatasetSize,
		ProcessingTime: row.ProcessingTime,
		Fingerprint:    core.Hash(row.Fingerprint),
		Metrics: fht.ScoreSet{
			ConsciousnessScore: row.ConsciousnessScore,
			StabilityScore:     row.StabilityScore,
			BreakthroughScore:  row.BreakthroughScore,
			Correlation:        row.Correlation,
		},
		Tests: validation.StatisticalTests{
			PearsonCorrelation:  row.PearsonCorrelation,
			PearsonPValue:       row.PearsonPValue,
			SpearmanCorrelation: row.SpearmanCorrelation,
			SpearmanPValue:      row.SpearmanPValue,
			KSStatistic:         row.KSStatistic,
			KSPValue:            row.KSPValue,
		},
		Characteristics: characteristics,
	}, nil
}
