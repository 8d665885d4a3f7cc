/*
Package advisor runs one form submission end to end: it validates the
measurement, classifies the BMI, asks the planner for a diet plan and keeps
the resulting page state for the submitting session.
*/
package advisor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"DietAdvisor/internal/bmi"
	"DietAdvisor/internal/markdown"
	"DietAdvisor/internal/metrics"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// ServiceErrorMessage is the only text shown when the planner fails.
const ServiceErrorMessage = "Failed to generate diet plan. Please try again."

// ErrInFlight is returned when the session already has a request outstanding.
var ErrInFlight = errors.New("a diet plan request is already in progress")

// Planner produces a free-text diet plan for a BMI category.
type Planner interface {
	GenerateDietPlan(ctx context.Context, category string, deficiencies []string) (string, error)
}

// Form is the raw user input for one submission.
type Form struct {
	Height           string
	Weight           string
	Deficiencies     []string
	CustomDeficiency string
}

// Result is the outcome of a successful submission.
type Result struct {
	BMI          float64          `json:"bmi"`
	Category     bmi.Category     `json:"category"`
	DietPlan     string           `json:"diet_plan"`
	Deficiencies []string         `json:"deficiencies,omitempty"`
	Blocks       []markdown.Block `json:"blocks"`
}

// State is what the page shows for a session.
type State struct {
	Result  *Result
	Error   string
	Loading bool
}

// Session is the state of one browser session. At most one submission runs
// per session at a time.
type Session struct {
	id       string
	owner    *Advisor
	inFlight atomic.Bool

	mu    sync.Mutex
	state State

	planner Planner
	metrics *metrics.Metrics
}

// State returns a copy of the current page state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) update(fn func(*State)) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	return s.state
}

// Submit processes a form. The previous result is cleared before validation,
// so a failed submission never shows a stale result next to its error.
// It returns ErrInFlight, leaving the state untouched, when another
// submission for this session has not finished.
func (s *Session) Submit(ctx context.Context, form Form) (State, error) {
	if !s.acquire() {
		s.observe(metrics.OutcomeBusy)
		return s.State(), ErrInFlight
	}
	defer s.release()

	logger := zerolog.Ctx(ctx)

	s.update(func(st *State) {
		st.Error = ""
		st.Result = nil
	})

	m, err := bmi.ParseMeasurement(form.Height, form.Weight)
	if err != nil {
		logger.Info().Err(err).Str("height", form.Height).Str("weight", form.Weight).Msg("Rejected measurement")
		s.observe(metrics.OutcomeInvalidInput)
		return s.update(func(st *State) { st.Error = err.Error() }), nil
	}

	s.update(func(st *State) { st.Loading = true })
	defer s.update(func(st *State) { st.Loading = false })

	computed := bmi.Compute(m)
	deficiencies := bmi.SelectDeficiencies(form.Deficiencies, form.CustomDeficiency)

	logger.Info().
		Float64("bmi", computed.BMI).
		Str("category", computed.Category.String()).
		Strs("deficiencies", deficiencies).
		Msg("Requesting diet plan")

	// The request is never aborted once sent.
	plan, err := s.requestPlan(context.WithoutCancel(ctx), computed.Category, deficiencies)
	if err != nil {
		logger.Error().Err(err).Msg("Diet plan generation failed")
		s.observe(metrics.OutcomeServiceError)
		return s.update(func(st *State) {
			st.Error = ServiceErrorMessage
			st.Loading = false
		}), nil
	}

	result := &Result{
		BMI:          computed.BMI,
		Category:     computed.Category,
		DietPlan:     plan,
		Deficiencies: deficiencies,
		Blocks:       markdown.Render(plan),
	}
	s.observe(metrics.OutcomeSuccess)
	if s.metrics != nil {
		s.metrics.Categories.WithLabelValues(computed.Category.String()).Inc()
	}

	return s.update(func(st *State) {
		st.Result = result
		st.Loading = false
	}), nil
}

// acquire claims the in-flight slot. A session owned by an Advisor is pinned
// while it holds the slot so that eviction cannot hand out a second,
// idle Session for the same ID.
func (s *Session) acquire() bool {
	if s.owner == nil {
		return s.inFlight.CompareAndSwap(false, true)
	}
	a := s.owner
	a.mu.Lock()
	defer a.mu.Unlock()
	// s may have been evicted and replaced after it was handed out.
	if other, ok := a.active[s.id]; ok && other != s {
		return false
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return false
	}
	a.active[s.id] = s
	return true
}

func (s *Session) release() {
	if s.owner == nil {
		s.inFlight.Store(false)
		return
	}
	a := s.owner
	a.mu.Lock()
	defer a.mu.Unlock()
	s.inFlight.Store(false)
	delete(a.active, s.id)
	// Put it back in case it was evicted while pinned, so the result survives.
	a.sessions.Add(s.id, s)
}

func (s *Session) requestPlan(ctx context.Context, category bmi.Category, deficiencies []string) (string, error) {
	if s.metrics != nil {
		s.metrics.InFlightRequests.Inc()
		defer s.metrics.InFlightRequests.Dec()
		start := time.Now()
		defer func() { s.metrics.PlanDuration.Observe(time.Since(start).Seconds()) }()
	}

	plan, err := s.planner.GenerateDietPlan(ctx, category.String(), deficiencies)
	if err != nil {
		return "", fmt.Errorf("generate diet plan: %w", err)
	}
	return plan, nil
}

func (s *Session) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.Submissions.WithLabelValues(outcome).Inc()
	}
}

// Advisor keeps a bounded set of sessions. Least recently used idle sessions
// are evicted once the limit is reached; sessions with a request in flight are
// held in active until it finishes.
type Advisor struct {
	planner  Planner
	metrics  *metrics.Metrics
	mu       sync.Mutex
	sessions *lru.Cache[string, *Session]
	active   map[string]*Session
}

// New creates an Advisor. m may be nil.
func New(planner Planner, m *metrics.Metrics, maxSessions int) (*Advisor, error) {
	cache, err := lru.New[string, *Session](maxSessions)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	return &Advisor{
		planner:  planner,
		metrics:  m,
		sessions: cache,
		active:   make(map[string]*Session),
	}, nil
}

// Session returns the session for id, creating it on first use.
func (a *Advisor) Session(id string) *Session {
	a.mu.Lock()
	defer a.mu.Unlock()

	if s, ok := a.lookup(id); ok {
		return s
	}
	s := &Session{id: id, owner: a, planner: a.planner, metrics: a.metrics}
	a.sessions.Add(id, s)
	return s
}

// Lookup returns the session for id without creating one.
func (a *Advisor) Lookup(id string) (*Session, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lookup(id)
}

func (a *Advisor) lookup(id string) (*Session, bool) {
	if s, ok := a.active[id]; ok {
		return s, true
	}
	return a.sessions.Get(id)
}
