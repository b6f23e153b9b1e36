package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"electrolyser_tea/pkg/core/model"
	"electrolyser_tea/pkg/core/params"
	"electrolyser_tea/pkg/core/sensitivity"
	"electrolyser_tea/pkg/core/valuation"
)

// StageState is the outcome of one stage in a run.
type StageState string

const (
	StateOK      StageState = "ok"
	StateFailed  StageState = "failed"
	StateSkipped StageState = "skipped"
)

// Stages lists the pipeline stages in execution order.
var Stages = []string{
	model.StageElectrolyser,
	model.StageCapex,
	model.StageOpex,
	model.StageCashFlow,
	model.StageDCF,
}

// StageStatus reports what happened to one stage.
type StageStatus struct {
	Stage string     `json:"stage"`
	State StageState `json:"state"`
	Error string     `json:"error,omitempty"`
	Field string     `json:"field,omitempty"` // set for non-finite failures
}

// Overrides replace the cash-flow defaults for a single run. Nil fields keep the
// value from the parameter store.
type Overrides struct {
	DiscountRate *float64 `json:"discount_rate,omitempty"`
	TaxRate      *float64 `json:"tax_rate,omitempty"`
	SellingPrice *float64 `json:"selling_price,omitempty"`
}

// Result is the output of one pipeline run. Stage outputs after a failure are nil and
// Complete is false; callers must not present a partial result as current.
type Result struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`

	DiscountRate float64 `json:"discount_rate"`
	TaxRate      float64 `json:"tax_rate"`
	SellingPrice float64 `json:"selling_price"`

	Electrolyser *model.ElectrolyserResult `json:"electrolyser,omitempty"`
	Capex        *model.CapexResult        `json:"capex,omitempty"`
	Opex         *model.OpexResult         `json:"opex,omitempty"`
	CashFlow     *model.CashFlowResult     `json:"cash_flow,omitempty"`
	DCF          *valuation.Table          `json:"dcf,omitempty"`
	Summary      *valuation.Summary        `json:"summary,omitempty"`

	Warnings []params.Warning `json:"warnings"`
	Stages   []StageStatus    `json:"stages"`
	Complete bool             `json:"complete"`

	// Err is the first stage failure, if any.
	Err error `json:"-"`

	cashFlowInputs model.CashFlowInputs
}

// FailedStage returns the status of the stage that failed, or nil.
func (r *Result) FailedStage() *StageStatus {
	for i := range r.Stages {
		if r.Stages[i].State == StateFailed {
			return &r.Stages[i]
		}
	}
	return nil
}

// SweepReport pairs a sweep with the baseline run it perturbed.
type SweepReport struct {
	Base   *Result              `json:"base"`
	Sweep  *sensitivity.Result  `json:"sweep"`
	Series map[string][]float64 `json:"series"`
}

// RunRepository persists completed runs.
type RunRepository interface {
	Save(ctx context.Context, r *Result) error
}

// MetricsRecorder observes stage and run outcomes.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Options tune the orchestrator. Zero values select the defaults.
type Options struct {
	AllowTaxLossCredit bool
	SweepSteps         int
	SweepStepFraction  float64
	SweepWorkers       int
}

// Orchestrator chains the model stages: Electrolyser -> CAPEX -> OPEX -> CashFlow -> DCF.
type Orchestrator struct {
	logger  *zap.Logger
	repo    RunRepository
	metrics MetricsRecorder
	opts    Options
	now     func() time.Time
}

// NewOrchestrator creates an orchestrator. A nil logger discards output.
func NewOrchestrator(logger *zap.Logger, opts Options) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{logger: logger, opts: opts, now: time.Now}
}

// SetRepository stores every complete run in repo.
func (o *Orchestrator) SetRepository(repo RunRepository) {
	o.repo = repo
}

// SetMetrics reports stage timings and outcomes to m.
func (o *Orchestrator) SetMetrics(m MetricsRecorder) {
	o.metrics = m
}

// Run executes every stage against a single parameter snapshot. Stage failures are
// recorded in the result rather than returned; downstream stages are skipped.
func (o *Orchestrator) Run(ctx context.Context, store *params.Store, ov Overrides) *Result {
	start := o.now()
	diag := params.NewDiagnostics()
	for _, name := range store.Ignored() {
		diag.IgnoredCategory(name)
	}

	res := &Result{
		RunID:     uuid.NewString(),
		CreatedAt: start.UTC(),
	}
	log := o.logger.With(zap.String("run_id", res.RunID))

	// 1. Bind every stage's inputs up front so missing keys are reported even when an
	// early stage fails.
	elecIn := model.BindElectrolyserInputs(store, diag)
	capexIn := model.BindCapexInputs(store, diag)
	opexIn := model.BindOpexInputs(store, diag)
	cfIn := model.BindCashFlowInputs(store, diag)
	res.cashFlowInputs = cfIn

	res.DiscountRate = pick(ov.DiscountRate, cfIn.DiscountRate)
	res.TaxRate = pick(ov.TaxRate, cfIn.TaxRate)
	res.SellingPrice = pick(ov.SellingPrice, cfIn.ProductSellingPrice)

	steps := []struct {
		name string
		run  func() error
	}{
		{model.StageElectrolyser, func() (err error) {
			res.Electrolyser, err = model.Electrolyser(elecIn)
			return err
		}},
		{model.StageCapex, func() (err error) {
			res.Capex, err = model.Capex(capexIn, res.Electrolyser)
			return err
		}},
		{model.StageOpex, func() (err error) {
			res.Opex, err = model.Opex(opexIn, res.Capex, res.Electrolyser)
			return err
		}},
		{model.StageCashFlow, func() (err error) {
			res.CashFlow, err = model.CashFlow(cfIn, res.Capex, res.Electrolyser, res.SellingPrice)
			return err
		}},
		{model.StageDCF, func() (err error) {
			res.DCF, err = valuation.CalculateDCF(valuation.DCFInput{
				CashFlow:           res.CashFlow,
				Opex:               res.Opex,
				DiscountRate:       res.DiscountRate,
				TaxRate:            res.TaxRate,
				AllowTaxLossCredit: o.opts.AllowTaxLossCredit,
			})
			return err
		}},
	}

	// 2. Stages, in dependency order
	for _, step := range steps {
		if res.Err != nil {
			res.Stages = append(res.Stages, StageStatus{Stage: step.name, State: StateSkipped})
			continue
		}
		if err := ctx.Err(); err != nil {
			res.Err = err
			res.Stages = append(res.Stages, StageStatus{Stage: step.name, State: StateSkipped, Error: err.Error()})
			continue
		}

		stageStart := o.now()
		err := step.run()
		o.observe(ctx, "stage."+step.name, err == nil, o.now().Sub(stageStart))
		if err != nil {
			res.Err = fmt.Errorf("%s stage: %w", step.name, err)
			st := StageStatus{Stage: step.name, State: StateFailed, Error: err.Error()}
			var nf *model.NonFiniteError
			if errors.As(err, &nf) {
				st.Field = nf.Field
			}
			res.Stages = append(res.Stages, st)
			log.Warn("stage failed", zap.String("stage", step.name), zap.Error(err))
			continue
		}
		res.Stages = append(res.Stages, StageStatus{Stage: step.name, State: StateOK})
	}

	// 3. Summary
	if res.Err == nil {
		sum := valuation.Summarize(res.DCF)
		res.Summary = &sum
		res.Complete = true
	}
	res.Warnings = diag.Warnings()
	for _, w := range res.Warnings {
		log.Debug("parameter defaulted", zap.String("warning", w.String()))
	}

	o.observe(ctx, "run", res.Complete, o.now().Sub(start))

	// 4. Storage
	if res.Complete && o.repo != nil {
		if err := o.repo.Save(ctx, res); err != nil {
			log.Warn("failed to store run", zap.Error(err))
		}
	}

	log.Info("pipeline run finished",
		zap.Bool("complete", res.Complete),
		zap.Duration("duration", o.now().Sub(start)),
		zap.Int("warnings", len(res.Warnings)),
	)
	return res
}

// Sweep runs the pipeline once for the baseline, then re-runs the DCF stage across the
// sensitivity grid of param. The baseline must complete for a sweep to start.
func (o *Orchestrator) Sweep(ctx context.Context, store *params.Store, ov Overrides, param sensitivity.Parameter) (*SweepReport, error) {
	base := o.Run(ctx, store, ov)
	if !base.Complete {
		return &SweepReport{Base: base}, fmt.Errorf("baseline run incomplete: %w", base.Err)
	}

	start := o.now()
	sweep, err := sensitivity.Run(ctx, sensitivity.Baseline{
		Elec:               base.Electrolyser,
		Capex:              base.Capex,
		Opex:               base.Opex,
		CashFlow:           base.CashFlow,
		CashFlowInputs:     base.cashFlowInputs,
		DiscountRate:       base.DiscountRate,
		TaxRate:            base.TaxRate,
		SellingPrice:       base.SellingPrice,
		AllowTaxLossCredit: o.opts.AllowTaxLossCredit,
	}, sensitivity.Spec{
		Parameter:    param,
		Steps:        o.opts.SweepSteps,
		StepFraction: o.opts.SweepStepFraction,
		Workers:      o.opts.SweepWorkers,
	})
	o.observe(ctx, "sweep", err == nil, o.now().Sub(start))

	report := &SweepReport{Base: base, Sweep: sweep}
	if sweep != nil {
		report.Series = sweep.Series()
		for _, p := range sweep.Failed() {
			o.logger.Warn("sweep point failed",
				zap.String("run_id", base.RunID),
				zap.String("point", p.Label),
				zap.Error(p.Err),
			)
		}
	}
	if err != nil {
		return report, fmt.Errorf("sensitivity sweep: %w", err)
	}
	return report, nil
}

func (o *Orchestrator) observe(ctx context.Context, op string, ok bool, d time.Duration) {
	if o.metrics != nil {
		o.metrics.Observe(ctx, op, ok, d)
	}
}

func pick(override *float64, def float64) float64 {
	if override != nil {
		return *override
	}
	return def
}
