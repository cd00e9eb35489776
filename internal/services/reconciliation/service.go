package reconciliation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"batch-reconciliation-backend/internal/models"
	"batch-reconciliation-backend/internal/repository"
	"batch-reconciliation-backend/internal/services/matching"
	"batch-reconciliation-backend/internal/telemetry"
	"batch-reconciliation-backend/internal/templates"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var ErrRunNotFound = repository.ErrRunNotFound

// DefaultCacheSize is how many recent reports are kept in process.
const DefaultCacheSize = 256

// RunCursor positions a page of runs; see repository.RunCursor.
type RunCursor = repository.RunCursor

var ParseRunCursor = repository.ParseRunCursor

// RunStore persists run reports. *repository.RunRepository satisfies it.
type RunStore interface {
	Create(ctx context.Context, run *models.ReconciliationRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ReconciliationRun, error)
	List(ctx context.Context, account string, cursor RunCursor, limit int) ([]models.ReconciliationRun, bool, error)
}

type Options struct {
	Tolerance   decimal.Decimal
	Mode        matching.ParseMode
	TemplateKey string
	// CacheSize bounds the in-process report cache. Without a run store it
	// is also the number of runs that stay retrievable.
	CacheSize int
	Logger    *logrus.Logger
}

type ReconciliationService struct {
	templateStore templates.Store
	runs          RunStore
	telemetry     telemetry.Recorder
	log           *logrus.Logger

	tolerance   decimal.Decimal
	mode        matching.ParseMode
	templateKey string

	runCache *lru.Cache[uuid.UUID, *RunReport]
}

// NewReconciliationService wires the service. runs may be nil, in which case
// reports are only kept in memory; recorder may be nil to disable telemetry.
func NewReconciliationService(
	templateStore templates.Store,
	runs RunStore,
	recorder telemetry.Recorder,
	opts Options,
) *ReconciliationService {
	if templateStore == nil {
		templateStore = templates.NewMemoryStore()
	}
	if recorder == nil {
		recorder = telemetry.Nop
	}
	if opts.Tolerance.LessThanOrEqual(decimal.Zero) {
		opts.Tolerance = matching.DefaultTolerance
	}
	if opts.TemplateKey == "" {
		opts.TemplateKey = templates.DefaultKey
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[uuid.UUID, *RunReport](opts.CacheSize)
	return &ReconciliationService{
		templateStore: templateStore,
		runs:          runs,
		telemetry:     recorder,
		log:           opts.Logger,
		tolerance:     opts.Tolerance,
		mode:          opts.Mode,
		templateKey:   opts.TemplateKey,
		runCache:      cache,
	}
}

// RunRequest carries parsed rows and the user's mapping choices.
type RunRequest struct {
	LedgerRows []matching.Row         `json:"ledgerRows"`
	BankRows   []matching.Row         `json:"bankRows"`
	Mapping    matching.ColumnMapping `json:"mapping"`
	AccountMap map[string]string      `json:"accountMap"`
	Account    string                 `json:"account"`
	Template   string                 `json:"template,omitempty"`
	Mode       string                 `json:"mode,omitempty"`
}

type RunReport struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Template  string    `json:"template,omitempty"`
	Mode      string    `json:"mode"`
	Result    *Result   `json:"result"`
}

type RunSummary struct {
	ID                  uuid.UUID       `json:"id"`
	Account             string          `json:"account"`
	BankIdentifier      string          `json:"bankIdentifier"`
	Template            string          `json:"template,omitempty"`
	Status              string          `json:"status"`
	PCCTotal            decimal.Decimal `json:"pccTotal"`
	BankTotal           decimal.Decimal `json:"bankTotal"`
	Difference          decimal.Decimal `json:"difference"`
	MatchedCount        int             `json:"matchedCount"`
	UnmatchedBatchCount int             `json:"unmatchedBatchCount"`
	UnmatchedBankCount  int             `json:"unmatchedBankCount"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// Run resolves the mapping (from the request or a named template), runs the
// reconciliation and records the outcome.
func (s *ReconciliationService) Run(ctx context.Context, req RunRequest) (*RunReport, error) {
	entry := s.log.WithFields(logrus.Fields{
		"account":  req.Account,
		"template": req.Template,
	})

	result, mode, err := s.reconcile(ctx, req)
	s.emit(ctx, req, result, err)
	if err != nil {
		entry.WithError(err).Warn("reconciliation failed")
		return nil, err
	}

	report := &RunReport{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		Template:  req.Template,
		Mode:      mode.String(),
		Result:    result,
	}
	s.runCache.Add(report.ID, report)

	if s.runs != nil {
		if err := s.persist(ctx, report); err != nil {
			entry.WithError(err).WithField("run_id", report.ID).Error("failed to persist run")
		}
	}

	entry.WithFields(logrus.Fields{
		"run_id":            report.ID,
		"status":            result.Status,
		"matches":           result.TotalMatches,
		"unmatched_batches": len(result.UnmatchedBatches),
		"unmatched_bank":    len(result.UnmatchedBankRecords),
		"difference":        result.Difference.StringFixed(2),
	}).Info("reconciliation completed")

	return report, nil
}

func (s *ReconciliationService) reconcile(ctx context.Context, req RunRequest) (*Result, matching.ParseMode, error) {
	mode := s.mode
	if req.Mode != "" {
		mode = matching.ParseModeFromString(req.Mode)
	}

	mapping, accountMap := req.Mapping, req.AccountMap
	if req.Template != "" && (mapping.IsZero() || len(accountMap) == 0) {
		tpl, err := s.GetTemplate(ctx, req.Template)
		if err != nil {
			return nil, mode, err
		}
		if mapping.IsZero() {
			mapping = tpl.Mapping
		}
		if len(accountMap) == 0 {
			accountMap = tpl.AccountMap
		}
	}

	// Configuration problems are reported before any row is read.
	if _, err := ValidateConfig(mapping, accountMap, req.Account); err != nil {
		return nil, mode, err
	}

	records, err := matching.NewAccountLedgerRecords(req.LedgerRows, matching.DefaultLedgerColumns, req.Account, mode)
	if err != nil {
		return nil, mode, err
	}

	result, err := Reconcile(Input{
		LedgerRecords: records,
		BankRows:      req.BankRows,
		Mapping:       mapping,
		AccountMap:    accountMap,
		Account:       req.Account,
		Mode:          mode,
		Tolerance:     s.tolerance,
	})
	return result, mode, err
}

func (s *ReconciliationService) emit(ctx context.Context, req RunRequest, result *Result, runErr error) {
	e := telemetry.Event{
		Account:  req.Account,
		Template: req.Template,
		Status:   telemetry.StatusSuccess,
		At:       time.Now().UTC(),
	}
	if runErr != nil {
		e.Status = telemetry.StatusFailure
		e.Error = runErr.Error()
	} else {
		e.BankRecords = result.TotalBankRecords
	}
	_ = s.telemetry.Record(ctx, e)
}

func (s *ReconciliationService) persist(ctx context.Context, report *RunReport) error {
	data, err := json.Marshal(report.Result)
	if err != nil {
		return err
	}
	res := report.Result
	return s.runs.Create(ctx, &models.ReconciliationRun{
		ID:                  report.ID,
		Account:             res.SelectedAccount,
		BankIdentifier:      res.MappedBankID,
		Template:            report.Template,
		Mode:                report.Mode,
		Status:              res.Status,
		PCCTotal:            res.PCCTotal,
		BankTotal:           res.BankTotal,
		Difference:          res.Difference,
		MatchedCount:        res.TotalMatches,
		UnmatchedBatchCount: len(res.UnmatchedBatches),
		UnmatchedBankCount:  len(res.UnmatchedBankRecords),
		Result:              data,
		CreatedAt:           report.CreatedAt,
	})
}

// GetRun returns a report from the in-process cache or the run store.
func (s *ReconciliationService) GetRun(ctx context.Context, id uuid.UUID) (*RunReport, error) {
	if report, ok := s.runCache.Get(id); ok {
		return report, nil
	}
	if s.runs == nil {
		return nil, ErrRunNotFound
	}

	run, err := s.runs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var result Result
	if err := json.Unmarshal(run.Result, &result); err != nil {
		return nil, fmt.Errorf("corrupt run %s: %w", id, err)
	}
	report := &RunReport{
		ID:        run.ID,
		CreatedAt: run.CreatedAt,
		Template:  run.Template,
		Mode:      run.Mode,
		Result:    &result,
	}
	s.runCache.Add(report.ID, report)
	return report, nil
}

// ListRuns pages through run summaries, newest first.
func (s *ReconciliationService) ListRuns(ctx context.Context, account string, cursor RunCursor, limit int) ([]RunSummary, bool, error) {
	if limit <= 0 {
		limit = 50
	}
	if s.runs == nil {
		out, hasMore := s.listCachedRuns(account, cursor, limit)
		return out, hasMore, nil
	}

	runs, hasMore, err := s.runs.List(ctx, account, cursor, limit)
	if err != nil {
		return nil, false, err
	}
	out := make([]RunSummary, 0, len(runs))
	for _, r := range runs {
		out = append(out, RunSummary{
			ID:                  r.ID,
			Account:             r.Account,
			BankIdentifier:      r.BankIdentifier,
			Template:            r.Template,
			Status:              r.Status,
			PCCTotal:            r.PCCTotal,
			BankTotal:           r.BankTotal,
			Difference:          r.Difference,
			MatchedCount:        r.MatchedCount,
			UnmatchedBatchCount: r.UnmatchedBatchCount,
			UnmatchedBankCount:  r.UnmatchedBankCount,
			CreatedAt:           r.CreatedAt,
		})
	}
	return out, hasMore, nil
}

func (s *ReconciliationService) listCachedRuns(account string, cursor RunCursor, limit int) ([]RunSummary, bool) {
	out := []RunSummary{}
	for _, id := range s.runCache.Keys() {
		r, ok := s.runCache.Peek(id)
		if !ok {
			continue
		}
		if account != "" && r.Result.SelectedAccount != account {
			continue
		}
		if !cursor.IsZero() && !cursor.Precedes(r.CreatedAt, r.ID) {
			continue
		}
		out = append(out, summarize(r))
	}
	sort.Slice(out, func(i, j int) bool {
		return RunCursor{CreatedAt: out[i].CreatedAt, ID: out[i].ID}.Precedes(out[j].CreatedAt, out[j].ID)
	})
	if len(out) > limit {
		return out[:limit], true
	}
	return out, false
}

func summarize(r *RunReport) RunSummary {
	res := r.Result
	return RunSummary{
		ID:                  r.ID,
		Account:             res.SelectedAccount,
		BankIdentifier:      res.MappedBankID,
		Template:            r.Template,
		Status:              res.Status,
		PCCTotal:            res.PCCTotal,
		BankTotal:           res.BankTotal,
		Difference:          res.Difference,
		MatchedCount:        res.TotalMatches,
		UnmatchedBatchCount: len(res.UnmatchedBatches),
		UnmatchedBankCount:  len(res.UnmatchedBankRecords),
		CreatedAt:           r.CreatedAt,
	}
}

// IsNotFound reports missing runs and templates.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound) || errors.Is(err, templates.ErrNotFound)
}
