// Package form holds the query form's state and mediates submits.
//
// A Form owns exactly two text values, the query being edited and the last
// answer shown. Submits are independent round trips; any number may be in
// flight at once. Each is stamped with a sequence number when it begins and
// only the most recently begun submit may replace the answer, so a slow early
// reply can never overwrite a newer one.
package form

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RichardoC/envask/internal/ask"
	"github.com/RichardoC/envask/internal/models"
)

// State is the pair of values a view renders.
type State struct {
	Query  string
	Answer string
}

func (s State) WithQuery(q string) State {
	s.Query = q
	return s
}

func (s State) WithAnswer(a string) State {
	s.Answer = a
	return s
}

// Asker performs one exchange with the answering server.
type Asker interface {
	Ask(ctx context.Context, query string) (ask.Result, error)
}

// Journal records finished exchanges. Implemented by *db.Database.
type Journal interface {
	SaveExchange(ctx context.Context, ex *models.Exchange) error
}

type Form struct {
	asker   Asker
	journal Journal
	logger  *zap.Logger
	now     func() time.Time

	// cancelSuperseded aborts the in-flight request when a newer submit begins.
	cancelSuperseded bool

	mu      sync.Mutex
	state   State
	latest  uint64
	cancels map[uint64]context.CancelFunc

	// lastWrite is closed once the most recent journal write has finished.
	lastWrite chan struct{}
}

type Option func(*Form)

func WithJournal(j Journal) Option {
	return func(f *Form) {
		f.journal = j
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(f *Form) {
		f.logger = l
	}
}

func WithCancelSuperseded(v bool) Option {
	return func(f *Form) {
		f.cancelSuperseded = v
	}
}

func withClock(now func() time.Time) Option {
	return func(f *Form) {
		f.now = now
	}
}

func New(asker Asker, opts ...Option) *Form {
	f := &Form{
		asker:   asker,
		logger:  zap.NewNop(),
		now:     time.Now,
		cancels: make(map[uint64]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Edit replaces the query with the editor's full current text.
func (f *Form) Edit(text string) State {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = f.state.WithQuery(text)
	return f.state
}

// InFlight reports how many submits have begun but not been applied.
func (f *Form) InFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cancels)
}

// Submission is a begun submit. Run performs the exchange; it is safe to call
// from any goroutine.
type Submission struct {
	Seq       uint64
	ID        string
	Query     string
	StartedAt time.Time

	ctx   context.Context
	asker Asker
	now   func() time.Time
}

// Outcome is what a Submission produced.
type Outcome struct {
	Seq        uint64
	ID         string
	Query      string
	Result     ask.Result
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Begin snapshots the current query and stamps a new submission.
func (f *Form) Begin(ctx context.Context) *Submission {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancelSuperseded {
		for seq, cancel := range f.cancels {
			cancel()
			delete(f.cancels, seq)
		}
	}

	f.latest++
	subCtx, cancel := context.WithCancel(ctx)
	f.cancels[f.latest] = cancel

	return &Submission{
		Seq:       f.latest,
		ID:        uuid.NewString(),
		Query:     f.state.Query,
		StartedAt: f.now(),
		ctx:       subCtx,
		asker:     f.asker,
		now:       f.now,
	}
}

func (s *Submission) Run() Outcome {
	res, err := s.asker.Ask(s.ctx, s.Query)
	return Outcome{
		Seq:        s.Seq,
		ID:         s.ID,
		Query:      s.Query,
		Result:     res,
		Err:        err,
		StartedAt:  s.StartedAt,
		FinishedAt: s.now(),
	}
}

// Apply folds an outcome into the state. Only the latest submission may change
// the answer; a failed latest submission leaves the answer as it was. It
// reports whether the answer was replaced.
func (f *Form) Apply(o Outcome) (State, bool) {
	f.mu.Lock()
	if cancel, ok := f.cancels[o.Seq]; ok {
		cancel()
		delete(f.cancels, o.Seq)
	}

	ex := models.Exchange{
		ID:         o.ID,
		Seq:        o.Seq,
		Query:      o.Query,
		Answer:     o.Result.Answer,
		StatusCode: o.Result.StatusCode,
		StartedAt:  o.StartedAt,
		FinishedAt: o.FinishedAt,
	}

	applied := false
	switch {
	case o.Seq != f.latest:
		ex.Status = models.StatusSuperseded
	case o.Err != nil:
		ex.Status = models.StatusFailed
		ex.Error = o.Err.Error()
	default:
		ex.Status = models.StatusApplied
		f.state = f.state.WithAnswer(o.Result.Answer)
		applied = true
	}
	state := f.state
	f.mu.Unlock()

	f.record(ex, o.Err)
	return state, applied
}

// Submit begins, runs and applies one submission on the calling goroutine.
// It returns once the exchange has been journaled.
func (f *Form) Submit(ctx context.Context) (State, Outcome) {
	o := f.Begin(ctx).Run()
	state, _ := f.Apply(o)
	f.Flush()
	return state, o
}

// Flush blocks until every journal write started so far has finished.
func (f *Form) Flush() {
	f.mu.Lock()
	done := f.lastWrite
	f.mu.Unlock()
	if done != nil {
		<-done
	}
}

// record logs the exchange and queues it for the journal. Writes run in the
// background, one at a time and in Apply order, so a slow journal never
// blocks the caller.
func (f *Form) record(ex models.Exchange, err error) {
	fields := []zap.Field{
		zap.String("id", ex.ID),
		zap.Uint64("seq", ex.Seq),
		zap.String("status", string(ex.Status)),
		zap.Int("statusCode", ex.StatusCode),
		zap.Duration("duration", ex.Duration()),
	}
	switch ex.Status {
	case models.StatusFailed:
		f.logger.Error("Ask failed", append(fields, zap.Error(err))...)
	case models.StatusSuperseded:
		f.logger.Debug("Dropped superseded answer", fields...)
	default:
		f.logger.Info("Answer received", fields...)
	}

	if f.journal == nil {
		return
	}

	f.mu.Lock()
	prev := f.lastWrite
	done := make(chan struct{})
	f.lastWrite = done
	f.mu.Unlock()

	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := f.journal.SaveExchange(ctx, &ex); err != nil {
			f.logger.Warn("Failed to journal exchange", zap.String("id", ex.ID), zap.Error(err))
		}
	}()
}
