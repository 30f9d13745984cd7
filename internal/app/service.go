// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"time"

	recomputequeue "github.com/campuslink/matchengine/internal/adapters/mq/queue"
	workerpool "github.com/campuslink/matchengine/internal/adapters/mq/worker"
	"github.com/campuslink/matchengine/internal/adapters/repository"
	"github.com/campuslink/matchengine/internal/domain/availability"
	"github.com/campuslink/matchengine/internal/domain/model"
	"github.com/campuslink/matchengine/internal/domain/scoring"
	"github.com/campuslink/matchengine/internal/domain/signals"
	"github.com/campuslink/matchengine/pkg/logger"
	"github.com/campuslink/matchengine/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueCapacity = 100000
	defaultScoreTTL      = 24 * time.Hour
	defaultTTLSweep      = time.Minute
	defaultHorizonWeeks  = 8
	maxCustomBlockHour   = 24.0
)

// RankedMatch joins a cached score with the student profile fields the
// query API returns.
type RankedMatch struct {
	StudentID      string                       `json:"studentId"`
	FirstName      string                       `json:"firstName"`
	LastName       string                       `json:"lastName"`
	Email          string                       `json:"email"`
	University     string                       `json:"university"`
	CompositeScore int                          `json:"compositeScore"`
	MatchedSkills  []string                     `json:"matchedSkills"`
	MissingSkills  []string                     `json:"missingSkills"`
	Signals        map[string]model.SignalScore `json:"signals"`
	IsStale        bool                         `json:"isStale"`
	ComputedAt     time.Time                    `json:"computedAt"`
}

// Stats aggregates the score cache and recompute backlog.
type Stats struct {
	Scores repository.ScoreStats `json:"scores"`
	Queue  recomputequeue.Counts `json:"queue"`
}

// Service implements the match engine: it owns the score cache, the
// recompute backlog and the workers that drain it.
type Service struct {
	scores  repository.ScoreStore
	sources repository.SourceStore
	queue   *recomputequeue.RecomputeQueue
	pool    *workerpool.Pool
	builder *availability.Builder
	weights signals.Weights

	workerCount   int
	queueCapacity int
	scoreTTL      time.Duration
	ttlSweep      time.Duration
	now           func() time.Time

	started bool
	stopCh  chan struct{}
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		weights:       signals.DefaultWeights(),
		workerCount:   runtime.NumCPU() * 2,
		queueCapacity: defaultQueueCapacity,
		scoreTTL:      defaultScoreTTL,
		ttlSweep:      defaultTTLSweep,
		now:           time.Now,
		stopCh:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start validates the weight profile and launches the workers, the lease
// sweeper and the TTL sweep loop.
func (s *Service) Start(ctx context.Context) error {
	if s.started {
		return nil
	}

	if err := s.weights.Validate(); err != nil {
		return fmt.Errorf("weight profile: %w", err)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("engine")
	}
	if s.scores == nil {
		s.scores = repository.NewMemoryScoreStore()
	}
	if s.sources == nil {
		s.sources = repository.NewMemorySourceStore()
	}
	if s.builder == nil {
		s.builder = availability.NewBuilder()
	}
	// Stop closes the queue through the pool, so a restart needs a
	// fresh one.
	if s.queue == nil || s.queue.Closed() {
		s.queue = recomputequeue.New(recomputequeue.WithCapacity(s.queueCapacity))
	}
	s.stopCh = make(chan struct{})

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s)
	s.pool.Start(runCtx)

	go s.queue.RunSweeper(runCtx)
	go s.ttlSweepLoop(runCtx)

	s.started = true
	s.logger.Info(ctx, "match engine started",
		logger.Int("workers", s.workerCount),
		logger.String("score_ttl", s.scoreTTL.String()),
		logger.String("weights_version", s.weights.Version),
	)

	return nil
}

// Stop gracefully shuts down the workers and background loops.
func (s *Service) Stop() {
	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping match engine...")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}
	if s.cancel != nil {
		s.cancel()
	}
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "match engine stopped")
}

// Weights returns the active weight profile.
func (s *Service) Weights() signals.Weights {
	return s.weights
}

// Recompute rescores one pair and persists the fresh row. Workers call
// this for every claimed item; rescoring the same pair twice writes the
// same row, so a lease reclaim mid-flight is harmless.
func (s *Service) Recompute(ctx context.Context, studentID, listingID string) (model.MatchScore, error) {
	start := s.now()

	student, err := s.sources.Student(ctx, studentID)
	if err != nil {
		return model.MatchScore{}, fmt.Errorf("load student %s: %w", studentID, err)
	}
	listing, err := s.sources.Listing(ctx, listingID)
	if err != nil {
		return model.MatchScore{}, fmt.Errorf("load listing %s: %w", listingID, err)
	}

	windows, err := s.windowsForListing(ctx, studentID, listing)
	if err != nil {
		return model.MatchScore{}, err
	}

	breakdown := signals.Evaluate(s.weights, student, listing, windows)
	for _, name := range signals.Order {
		if breakdown.Signals[name].Neutral {
			metrics.RecordNeutralFallback(name)
		}
	}

	score := scoring.Assemble(studentID, listingID, breakdown)
	score.ComputedAt = s.now()
	score.ComputationMs = s.now().Sub(start).Milliseconds()

	if err := s.scores.Upsert(ctx, score); err != nil {
		return model.MatchScore{}, fmt.Errorf("persist score: %w", err)
	}
	return score, nil
}

// windowsForListing builds the student's availability windows over the
// listing's duration, or a default horizon when the listing is undated.
func (s *Service) windowsForListing(ctx context.Context, studentID string, listing model.Listing) ([]model.AvailabilityWindow, error) {
	from, to := listing.StartDate, listing.EndDate
	if from.IsZero() || to.IsZero() || !from.Before(to) {
		from = s.now()
		to = from.AddDate(0, 0, 7*defaultHorizonWeeks)
	}
	return s.buildWindows(ctx, studentID, from, to)
}

func (s *Service) buildWindows(ctx context.Context, studentID string, from, to time.Time) ([]model.AvailabilityWindow, error) {
	entries, err := s.sources.SchedulesByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load schedules for %s: %w", studentID, err)
	}
	seasons, err := s.sources.SportSeasonMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("load season catalog: %w", err)
	}
	return s.builder.Build(entries, seasons, from, to), nil
}

// OnProfileChanged marks the student's cached scores stale and enqueues
// a recompute against every open listing. Returns the stale count.
func (s *Service) OnProfileChanged(ctx context.Context, studentID string) (int, error) {
	return s.invalidateStudent(ctx, studentID, recomputequeue.ReasonProfileChange)
}

// OnScheduleChanged reacts to a schedule entry being created or removed:
// the student's availability shifted, so every score of theirs is stale.
func (s *Service) OnScheduleChanged(ctx context.Context, studentID string) (int, error) {
	return s.invalidateStudent(ctx, studentID, recomputequeue.ReasonScheduleChange)
}

func (s *Service) invalidateStudent(ctx context.Context, studentID string, reason recomputequeue.Reason) (int, error) {
	if _, err := s.sources.Student(ctx, studentID); err != nil {
		return 0, err
	}

	stale := s.scores.MarkStaleByStudent(ctx, studentID)

	// Enqueue against every open listing, not just previously scored
	// pairs, so brand-new students get coverage too.
	listings, err := s.sources.OpenListings(ctx)
	if err != nil {
		return len(stale), fmt.Errorf("load open listings: %w", err)
	}
	for _, l := range listings {
		s.queue.Enqueue(ctx, model.Pair{StudentID: studentID, ListingID: l.ID}, reason)
	}
	for _, pair := range stale {
		s.queue.Enqueue(ctx, pair, reason)
	}

	s.logger.Debug(ctx, "student invalidated",
		logger.String("student_id", studentID),
		logger.String("reason", string(reason)),
		logger.Int("stale", len(stale)),
	)
	return len(stale), nil
}

// OnListingChanged marks the listing's cached scores stale and enqueues
// recomputes for every student while the listing stays open. A closed or
// deleted listing instead has its pending recomputes dropped.
func (s *Service) OnListingChanged(ctx context.Context, listingID string) (int, error) {
	listing, err := s.sources.Listing(ctx, listingID)
	if err != nil || !listing.IsOpen() {
		dropped := s.queue.DropPending(ctx, func(p model.Pair) bool {
			return p.ListingID == listingID
		})
		stale := s.scores.MarkStaleByListing(ctx, listingID)
		s.logger.Debug(ctx, "listing retired",
			logger.String("listing_id", listingID),
			logger.Int("dropped", dropped),
		)
		return len(stale), err
	}

	stale := s.scores.MarkStaleByListing(ctx, listingID)

	students, err := s.sources.Students(ctx)
	if err != nil {
		return len(stale), fmt.Errorf("load students: %w", err)
	}
	for _, st := range students {
		s.queue.Enqueue(ctx, model.Pair{StudentID: st.ID, ListingID: listingID}, recomputequeue.ReasonListingChange)
	}

	s.logger.Debug(ctx, "listing invalidated",
		logger.String("listing_id", listingID),
		logger.Int("stale", len(stale)),
	)
	return len(stale), nil
}

// RecomputeAll marks TTL-expired scores stale and enqueues every stale
// pair, pre-existing and newly expired alike, at the lowest priority.
// Fresh rows inside the TTL are left alone. Returns the number of stale
// pairs queued.
func (s *Service) RecomputeAll(ctx context.Context) (int, error) {
	s.scores.MarkExpired(ctx, s.scoreTTL)

	stale := s.scores.StalePairs(ctx)
	for _, pair := range stale {
		s.queue.Enqueue(ctx, pair, recomputequeue.ReasonManual)
	}

	s.logger.Info(ctx, "full recompute requested", logger.Int("stale", len(stale)))
	return len(stale), nil
}

// ttlSweepLoop expires fresh scores past their TTL and enqueues them for
// recompute at the expiry tier.
func (s *Service) ttlSweepLoop(ctx context.Context) {
	ticker := time.NewTicker(s.ttlSweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			expired := s.scores.MarkExpired(ctx, s.scoreTTL)
			for _, pair := range expired {
				s.queue.Enqueue(ctx, pair, recomputequeue.ReasonTTLExpiry)
			}
			if len(expired) > 0 {
				s.logger.Debug(ctx, "scores expired", logger.Int("count", len(expired)))
			}
		}
	}
}

// RankedMatches returns the listing's cached scores ordered best-first,
// joined with student profile fields. Pairs never computed are omitted;
// a listing with no scores at all triggers a background backfill so the
// next read has data.
func (s *Service) RankedMatches(ctx context.Context, listingID string, limit int) ([]RankedMatch, error) {
	listing, err := s.sources.Listing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	ranked := s.scores.RankedByListing(ctx, listingID, limit)
	if len(ranked) == 0 && listing.IsOpen() {
		students, err := s.sources.Students(ctx)
		if err == nil {
			for _, st := range students {
				s.queue.Enqueue(ctx, model.Pair{StudentID: st.ID, ListingID: listingID}, recomputequeue.ReasonManual)
			}
		}
		return []RankedMatch{}, nil
	}

	matches := make([]RankedMatch, 0, len(ranked))
	for _, score := range ranked {
		student, err := s.sources.Student(ctx, score.StudentID)
		if err != nil {
			// Student deleted after scoring; the row is dead weight and
			// the ranking just skips it.
			continue
		}
		matches = append(matches, RankedMatch{
			StudentID:      student.ID,
			FirstName:      student.FirstName,
			LastName:       student.LastName,
			Email:          student.Email,
			University:     student.University,
			CompositeScore: score.CompositeScore,
			MatchedSkills:  score.MatchedSkills,
			MissingSkills:  score.MissingSkills,
			Signals:        score.Signals,
			IsStale:        score.IsStale,
			ComputedAt:     score.ComputedAt,
		})
	}
	return matches, nil
}

// MatchScore returns the cached row for one pair.
func (s *Service) MatchScore(ctx context.Context, studentID, listingID string) (model.MatchScore, error) {
	return s.scores.Get(ctx, studentID, listingID)
}

// SchedulesByStudent returns the student's schedule entries.
func (s *Service) SchedulesByStudent(ctx context.Context, studentID string) ([]model.ScheduleEntry, error) {
	if _, err := s.sources.Student(ctx, studentID); err != nil {
		return nil, err
	}
	return s.sources.SchedulesByStudent(ctx, studentID)
}

// CreateSchedule validates and stores a schedule entry, then invalidates
// the student's scores. Validation happens here, at the write boundary;
// the availability builder trusts stored entries.
func (s *Service) CreateSchedule(ctx context.Context, entry model.ScheduleEntry) (model.ScheduleEntry, error) {
	if _, err := s.sources.Student(ctx, entry.StudentID); err != nil {
		return model.ScheduleEntry{}, err
	}
	if err := s.validateSchedule(ctx, entry); err != nil {
		return model.ScheduleEntry{}, err
	}

	created, err := s.sources.CreateSchedule(ctx, entry)
	if err != nil {
		return model.ScheduleEntry{}, err
	}
	if _, err := s.OnScheduleChanged(ctx, entry.StudentID); err != nil {
		s.logger.Warn(ctx, "schedule invalidation failed", logger.Error(err))
	}
	return created, nil
}

// DeleteSchedule removes a schedule entry and invalidates the student's
// scores.
func (s *Service) DeleteSchedule(ctx context.Context, studentID, entryID string) error {
	if err := s.sources.DeleteSchedule(ctx, studentID, entryID); err != nil {
		return err
	}
	if _, err := s.OnScheduleChanged(ctx, studentID); err != nil {
		s.logger.Warn(ctx, "schedule invalidation failed", logger.Error(err))
	}
	return nil
}

// validateSchedule rejects malformed entries before they reach storage.
func (s *Service) validateSchedule(ctx context.Context, entry model.ScheduleEntry) error {
	if !entry.ScheduleType.IsValid() {
		return fmt.Errorf("%w: unknown schedule type %q", ErrInvalidSchedule, entry.ScheduleType)
	}
	if !entry.EffectiveStart.IsZero() && !entry.EffectiveEnd.IsZero() && entry.EffectiveEnd.Before(entry.EffectiveStart) {
		return fmt.Errorf("%w: effective end before start", ErrInvalidSchedule)
	}
	if entry.AvailableHoursPerWeek != nil && *entry.AvailableHoursPerWeek < 0 {
		return fmt.Errorf("%w: negative available hours", ErrInvalidSchedule)
	}

	if entry.ScheduleType == model.ScheduleTypeSport {
		seasons, err := s.sources.SportSeasonMap(ctx)
		if err != nil {
			return fmt.Errorf("load season catalog: %w", err)
		}
		if _, ok := seasons[entry.SportSeasonID]; !ok {
			return fmt.Errorf("%w: %s", repository.ErrSeasonNotFound, entry.SportSeasonID)
		}
	}

	for i, block := range entry.CustomBlocks {
		if block.StartHour < 0 || block.EndHour > maxCustomBlockHour || block.StartHour >= block.EndHour {
			return fmt.Errorf("%w: block %d has invalid hours", ErrInvalidSchedule, i)
		}
		for _, other := range entry.CustomBlocks[:i] {
			if block.Day == other.Day && block.StartHour < other.EndHour && other.StartHour < block.EndHour {
				return fmt.Errorf("%w: block %d overlaps another block on %s", ErrInvalidSchedule, i, block.Day)
			}
		}
	}

	for i, r := range entry.TravelConflicts {
		if r.End.Before(r.Start) {
			return fmt.Errorf("%w: travel range %d ends before it starts", ErrInvalidSchedule, i)
		}
	}
	return nil
}

// AvailabilityWindows builds the student's weekly windows over [from, to].
func (s *Service) AvailabilityWindows(ctx context.Context, studentID string, from, to time.Time) ([]model.AvailabilityWindow, error) {
	if _, err := s.sources.Student(ctx, studentID); err != nil {
		return nil, err
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: start not before end", ErrInvalidRange)
	}
	return s.buildWindows(ctx, studentID, from, to)
}

// SportSeasons returns the season catalog.
func (s *Service) SportSeasons(ctx context.Context) ([]model.SportSeason, error) {
	return s.sources.SportSeasons(ctx)
}

// Stats aggregates the score cache and the recompute backlog.
func (s *Service) Stats(ctx context.Context) Stats {
	return Stats{
		Scores: s.scores.Stats(ctx),
		Queue:  s.queue.Counts(ctx),
	}
}
