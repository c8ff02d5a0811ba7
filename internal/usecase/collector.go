package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"EvidenceCollector/internal/domain"
	"EvidenceCollector/internal/gate"
	"EvidenceCollector/internal/planner"
	"EvidenceCollector/internal/ports"
	"EvidenceCollector/internal/scoring"
	"EvidenceCollector/internal/search"
)

const stageWebCollection = "web_collection"

// ErrAttemptPanicked wraps a panic recovered inside a collection attempt.
var ErrAttemptPanicked = errors.New("collection attempt panicked")

// Phase is a state of the collection state machine.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseAttempting         Phase = "attempting"
	PhaseGatedPass          Phase = "gated_pass"
	PhaseGatedFailRetry     Phase = "gated_fail_retry"
	PhaseGatedFailExhausted Phase = "gated_fail_exhausted"
	PhaseDegraded           Phase = "degraded"
)

// HitSource executes a query plan and returns merged, capped hits.
// *search.Dispatcher is the production implementation.
type HitSource interface {
	Dispatch(ctx context.Context, queries []string) []domain.Hit
}

// CollectorDeps wires the driven adapters into the collection loop.
type CollectorDeps struct {
	Source          HitSource
	Classifier      ports.Classifier
	Summarizer      ports.Summarizer
	Gate            *gate.Evaluator
	Profile         domain.ThresholdProfile
	ClassifyWorkers int
	ClassifyTimeout time.Duration
	Now             func() time.Time
	NewRunID        func() string
	NewDocumentID   func() string
	Logger          *slog.Logger
	OnTransition    func(from, to Phase)
}

// Collector runs the self-gating collection loop. It holds no per-run state
// and can serve concurrent Collect calls.
type Collector struct {
	source       HitSource
	adapter      *classifierAdapter
	gate         *gate.Evaluator
	profile      domain.ThresholdProfile
	now          func() time.Time
	newRunID     func() string
	logger       *slog.Logger
	onTransition func(from, to Phase)
}

// NewCollector constructs the loop; nil collaborators fall back to defaults
// where one exists.
func NewCollector(deps CollectorDeps) *Collector {
	if deps.Gate == nil {
		deps.Gate = gate.New()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewRunID == nil {
		deps.NewRunID = uuid.NewString
	}
	if deps.NewDocumentID == nil {
		deps.NewDocumentID = NewDocumentID
	}

	return &Collector{
		source: deps.Source,
		adapter: &classifierAdapter{
			classifier: deps.Classifier,
			summarizer: deps.Summarizer,
			workers:    deps.ClassifyWorkers,
			timeout:    deps.ClassifyTimeout,
			newID:      deps.NewDocumentID,
			now:        deps.Now,
			logger:     deps.Logger,
		},
		gate:         deps.Gate,
		profile:      deps.Profile,
		now:          deps.Now,
		newRunID:     deps.NewRunID,
		logger:       deps.Logger,
		onTransition: deps.OnTransition,
	}
}

// collectionState is owned by a single Collect call.
type collectionState struct {
	target  domain.Target
	profile domain.ThresholdProfile
	phase   Phase
	attempt int
	docs    []domain.Document
	dedup   *search.Deduplicator
	scorer  *scoring.Scorer
	stats   domain.Stats
	verdict domain.GateVerdict
	log     []domain.DecisionLogEntry
	errors  []domain.ErrorEntry
	failure error
	started time.Time
}

// Collect runs attempts until the gate passes, the attempt budget is spent,
// an attempt fails unexpectedly, or ctx is cancelled at an attempt boundary.
// It always returns a well-formed result; callers must branch on Status.
func (c *Collector) Collect(ctx context.Context, target domain.Target) domain.CollectionResult {
	st := &collectionState{
		target:  target,
		phase:   PhaseIdle,
		dedup:   search.NewDeduplicator(),
		stats:   scoring.Aggregate(nil),
		verdict: domain.GateVerdict{MissingSlots: []domain.Slot{}, Reasons: []string{}},
		started: c.now(),
		scorer:  scoring.NewScorer(c.profile.RecentWindowDays, c.now),
		profile: c.profile,
	}

	c.info("collection started", "company", target.Company, "domain", target.Domain, "max_attempts", st.profile.MaxAttempts)

	for st.phase != PhaseGatedPass && st.phase != PhaseGatedFailExhausted && st.phase != PhaseDegraded {
		if err := ctx.Err(); err != nil {
			c.cancel(st, err)
			break
		}

		c.transition(st, PhaseAttempting)
		st.attempt++

		// Attempts are not interruptible; only the boundary above observes ctx.
		if err := c.runAttempt(context.WithoutCancel(ctx), st); err != nil {
			c.degrade(st, err)
			continue
		}

		switch {
		case st.verdict.Passed:
			c.transition(st, PhaseGatedPass)
			c.info("gate passed", "attempt", st.attempt, "documents", len(st.docs))
		case st.attempt >= st.profile.MaxAttempts:
			c.transition(st, PhaseGatedFailExhausted)
			c.info("attempt budget exhausted", "attempt", st.attempt, "missing_slots", st.verdict.MissingSlots)
		default:
			c.transition(st, PhaseGatedFailRetry)
			c.info("gate failed, retrying", "attempt", st.attempt, "missing_slots", st.verdict.MissingSlots)
		}
	}

	result := c.result(st)
	c.info("collection finished", "status", result.Status, "documents", result.Count, "attempts", st.attempt)
	return result
}

func (c *Collector) runAttempt(ctx context.Context, st *collectionState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrAttemptPanicked, r)
		}
	}()

	if err := st.profile.Validate(); err != nil {
		return fmt.Errorf("%w: %w", gate.ErrInvalidProfile, err)
	}
	if c.source == nil {
		return errors.New("no search source configured")
	}

	queries := planner.Plan(planner.Request{
		Company:          st.target.Company,
		Domain:           st.target.Domain,
		CompanyDomain:    st.target.CompanyDomain,
		Attempt:          st.attempt,
		Missing:          st.verdict.MissingSlots,
		RecentWindowDays: st.profile.RecentWindowDays,
		Now:              c.now(),
	})
	c.info("attempt planned", "attempt", st.attempt, "queries", len(queries))

	hits := c.source.Dispatch(ctx, queries)
	fresh := st.dedup.Filter(hits)
	newDocs, err := c.adapter.admit(ctx, st.target.Company, fresh)
	if err != nil {
		return err
	}
	st.docs = append(st.docs, newDocs...)

	st.scorer.Score(st.docs)
	st.stats = scoring.Aggregate(st.docs)

	verdict, err := c.gate.Evaluate(st.docs, st.stats, st.profile)
	if err != nil {
		return fmt.Errorf("evaluate gate: %w", err)
	}
	st.verdict = verdict

	st.log = append(st.log, domain.DecisionLogEntry{
		Attempt:      st.attempt,
		Queries:      queries,
		NewDocs:      len(newDocs),
		TotalDocs:    len(st.docs),
		GatePassed:   verdict.Passed,
		MissingSlots: verdict.MissingSlots,
		Reasons:      verdict.Reasons,
		Timestamp:    c.now(),
	})
	c.info("attempt evaluated",
		"attempt", st.attempt,
		"hits", len(hits),
		"new_docs", len(newDocs),
		"total_docs", len(st.docs),
		"seen_urls", st.dedup.Seen(),
		"passed", verdict.Passed,
	)
	return nil
}

func (c *Collector) degrade(st *collectionState, err error) {
	c.transition(st, PhaseDegraded)
	st.failure = err
	st.errors = append(st.errors, domain.ErrorEntry{
		Stage:               stageWebCollection,
		Error:               err.Error(),
		Timestamp:           c.now(),
		Recovered:           false,
		ImpactOnReliability: domain.ImpactHigh,
	})
	if c.logger != nil {
		c.logger.Error("collection degraded", "attempt", st.attempt, "error", err)
	}
}

// cancel ends the run at an attempt boundary. Work from finished attempts is
// kept and reported as partial; a run cancelled before its first attempt has
// nothing to report and degrades.
func (c *Collector) cancel(st *collectionState, cause error) {
	err := fmt.Errorf("collection cancelled: %w", cause)
	if st.attempt == 0 {
		c.degrade(st, err)
		return
	}

	c.transition(st, PhaseGatedFailExhausted)
	st.errors = append(st.errors, domain.ErrorEntry{
		Stage:               stageWebCollection,
		Error:               err.Error(),
		Timestamp:           c.now(),
		Recovered:           true,
		ImpactOnReliability: domain.ImpactMedium,
	})
	if c.logger != nil {
		c.logger.Warn("collection cancelled", "attempt", st.attempt, "error", cause)
	}
}

func (c *Collector) transition(st *collectionState, to Phase) {
	from := st.phase
	st.phase = to
	if c.onTransition != nil {
		c.onTransition(from, to)
	}
}

func (c *Collector) result(st *collectionState) domain.CollectionResult {
	docs := make([]domain.Document, len(st.docs))
	copy(docs, st.docs)

	res := domain.CollectionResult{
		RunID:       c.newRunID(),
		Company:     st.target.Company,
		Domain:      st.target.Domain,
		Documents:   docs,
		Count:       len(docs),
		Sources:     scoring.DistinctCategories(st.stats),
		Stats:       st.stats,
		Gate:        st.verdict,
		Attempts:    domain.Attempts{Current: st.attempt, Max: st.profile.MaxAttempts},
		DecisionLog: st.log,
		Profile:     st.profile,
		Errors:      st.errors,
		StartedAt:   st.started,
		FinishedAt:  c.now(),
	}
	if res.DecisionLog == nil {
		res.DecisionLog = []domain.DecisionLogEntry{}
	}
	if res.Errors == nil {
		res.Errors = []domain.ErrorEntry{}
	}

	switch st.phase {
	case PhaseGatedPass:
		res.Status = domain.StatusCompleted
	case PhaseGatedFailExhausted:
		res.Status = domain.StatusPartial
	default:
		res.Status = domain.StatusDegraded
	}
	if st.failure != nil {
		msg := st.failure.Error()
		res.Error = &msg
	}

	return res
}

func (c *Collector) info(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}
