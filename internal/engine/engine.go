// Package engine composes the ledger, banner registry, pity tracking,
// rolling, selection, and guarantees into atomic summon transactions with
// a bounded, auditable history.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xtding233/recruit-engine/internal/banner"
	"github.com/xtding233/recruit-engine/internal/catalog"
	"github.com/xtding233/recruit-engine/internal/currency"
	"github.com/xtding233/recruit-engine/internal/gacha"
	"github.com/xtding233/recruit-engine/internal/rarity"
	"github.com/xtding233/recruit-engine/internal/storage"
)

const (
	DefaultHistoryCap    = 200
	DefaultFeaturedBias  = 0.5
	DefaultCommitRetries = 2
)

// Options tune one engine instance. Zero values pick the defaults.
type Options struct {
	HistoryCap int
	// FeaturedBias applies when a banner does not set its own bias.
	FeaturedBias float64
	// HighTier is the streak threshold for statistics.
	HighTier rarity.Tier
	// CommitRetries is how often a failed durable save is retried before
	// the transaction error is escalated.
	CommitRetries int
	RNG           gacha.RandomSource
	Logger        *zap.Logger
	Clock         func() time.Time
}

func (o Options) withDefaults() Options {
	if o.HistoryCap <= 0 {
		o.HistoryCap = DefaultHistoryCap
	}
	if o.FeaturedBias <= 0 {
		o.FeaturedBias = DefaultFeaturedBias
	}
	if !o.HighTier.Valid() || o.HighTier == rarity.Common {
		o.HighTier = rarity.Epic
	}
	if o.CommitRetries <= 0 {
		o.CommitRetries = DefaultCommitRetries
	}
	if o.RNG == nil {
		o.RNG = gacha.DefaultRNG()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// Engine owns one player's mutable summon state. Players are independent;
// within a player, the engine mutex serializes transactions so two summons
// can never interleave a debit with a stale pity read.
type Engine struct {
	mu sync.Mutex

	playerID string
	registry *banner.Registry
	catalog  catalog.Catalog
	store    storage.Store
	opts     Options
	log      *zap.Logger

	ledger     *currency.Ledger
	roster     *catalog.MemoryRoster
	pity       map[string]gacha.PityTracker
	guarantees map[string]map[string]int
	history    *History

	listeners []Listener
	// failed latches a commit-phase error; once set the engine refuses
	// further play until state is repaired.
	failed error
}

// New creates an engine for one player with empty state. Call Hydrate to
// load a previously committed snapshot.
func New(playerID string, reg *banner.Registry, cat catalog.Catalog, store storage.Store, opts Options) (*Engine, error) {
	if playerID == "" {
		return nil, fmt.Errorf("player id must not be empty")
	}
	opts = opts.withDefaults()
	ledger, err := currency.NewLedger(nil)
	if err != nil {
		return nil, err
	}
	return &Engine{
		playerID:   playerID,
		registry:   reg,
		catalog:    cat,
		store:      store,
		opts:       opts,
		log:        opts.Logger.With(zap.String("player_id", playerID)),
		ledger:     ledger,
		roster:     catalog.NewMemoryRoster(),
		pity:       make(map[string]gacha.PityTracker),
		guarantees: make(map[string]map[string]int),
		history:    NewHistory(opts.HistoryCap),
	}, nil
}

// Hydrate loads the player's committed snapshot from the store, if any.
func (e *Engine) Hydrate(ctx context.Context) error {
	b, ok, err := e.store.LoadState(ctx, e.playerID)
	if err != nil {
		return transactionError("failed to load player state", err)
	}
	if !ok {
		return nil
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return transactionError("stored player state is corrupt", err)
	}
	return e.Restore(st)
}

// Restore replaces the engine's mutable state with a snapshot.
func (e *Engine) Restore(st State) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	ledger, err := currency.NewLedger(st.Currencies)
	if err != nil {
		return configurationError("snapshot currencies invalid", err)
	}
	e.ledger = ledger
	e.roster = catalog.NewMemoryRoster(st.Roster...)
	e.pity = make(map[string]gacha.PityTracker, len(st.Pity))
	for k, v := range st.Pity {
		e.pity[k] = v
	}
	e.guarantees = make(map[string]map[string]int, len(st.Guarantees))
	for bid, rules := range st.Guarantees {
		m := make(map[string]int, len(rules))
		for rid, n := range rules {
			m[rid] = n
		}
		e.guarantees[bid] = m
	}
	e.history = NewHistory(e.opts.HistoryCap)
	e.history.restore(st.History)
	e.failed = nil
	return nil
}

// Subscribe registers a post-commit event listener.
func (e *Engine) Subscribe(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// Balances returns the player's current currency balances.
func (e *Engine) Balances() map[currency.Kind]int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Snapshot()
}

// Credit adds currency to the player's wallet and commits the new state.
func (e *Engine) Credit(ctx context.Context, kind currency.Kind, amount int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failed != nil {
		return e.failed
	}
	if err := e.ledger.Credit(kind, amount); err != nil {
		return validationError("invalid credit", err)
	}
	if err := e.commitLocked(ctx, uuid.NewString()); err != nil {
		e.failed = err
		return err
	}
	return nil
}

// History returns committed records, newest last. An empty bannerID
// returns everything retained.
func (e *Engine) History(bannerID string) []Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	if bannerID == "" {
		return e.history.All()
	}
	return e.history.ByBanner(bannerID)
}

// Statistics derives aggregates from the retained history.
func (e *Engine) Statistics() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Statistics(e.opts.HighTier)
}

// PityCount returns the current pity counter for a banner.
func (e *Engine) PityCount(bannerID string) (int, error) {
	b, err := e.registry.Get(bannerID)
	if err != nil {
		return 0, validationError("banner not found", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pity[b.PityKey()].Count, nil
}

// Snapshot returns a copy of the engine's mutable state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// PerformSummon runs one atomic multi-pull transaction:
// validate → debit → roll each pull in index order → batch guarantees →
// commit counters, roster, and history together → emit events.
func (e *Engine) PerformSummon(ctx context.Context, bannerID string, pulls int) (Record, error) {
	rec, events, err := e.performSummon(ctx, bannerID, pulls)
	for _, ev := range events {
		e.emit(ev)
	}
	return rec, err
}

func (e *Engine) performSummon(ctx context.Context, bannerID string, pulls int) (Record, []Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.failed != nil {
		return Record{}, nil, e.failed
	}
	// Validating: a cancelled request is free to abort here, before any
	// mutation.
	if err := ctx.Err(); err != nil {
		return Record{}, nil, validationError("summon cancelled", err)
	}
	b, err := e.registry.Get(bannerID)
	if err != nil {
		return Record{}, nil, validationError("banner not found", err)
	}
	now := e.opts.Clock()
	if !b.IsActive(now) {
		return Record{}, nil, validationError(fmt.Sprintf("banner %q is not active", b.ID), nil)
	}
	cost, ok := b.Costs[pulls]
	if !ok {
		return Record{}, nil, validationError(
			fmt.Sprintf("unsupported pull count %d (banner %q sells %v)", pulls, b.ID, b.SupportedPulls()), nil)
	}
	if !e.ledger.CanAfford(cost) {
		return Record{}, nil, validationError(
			fmt.Sprintf("not enough %s", cost.Kind.DisplayName()), currency.ErrInsufficient)
	}

	// Debiting: the single point of no return.
	if err := e.ledger.Debit(cost); err != nil {
		return Record{}, nil, validationError(fmt.Sprintf("not enough %s", cost.Kind.DisplayName()), err)
	}

	// Rolling: strict index order; the working pity copy advances between
	// pulls so soft/hard escalation is consistent within the batch.
	key := b.PityKey()
	tracker := e.pity[key]
	pityBefore := tracker.Count
	overlay := catalog.NewOverlay(e.roster)
	batch := make([]gacha.Result, 0, pulls)
	for i := 0; i < pulls; i++ {
		hard := tracker.HardPityNext(b.Pity)
		tier, err := gacha.RollRarity(b, tracker, e.opts.RNG)
		if err != nil {
			return Record{}, nil, e.abort(configurationError("rarity roll failed after debit", err))
		}
		res, err := gacha.SelectCharacter(b, tier, e.opts.FeaturedBias, e.catalog, overlay, e.opts.RNG)
		if err != nil {
			return Record{}, nil, e.abort(configurationError("character selection failed after debit", err))
		}
		res.Position = i
		res.PityTriggered = hard
		res.WasGuaranteed = hard
		if res.IsNew {
			overlay.Add(res.CharacterID)
		}
		tracker = tracker.Observe(b.Pity, tier, now)
		batch = append(batch, res)
	}

	// PostProcessing: guarantees see the whole batch.
	counters := make(map[string]int, len(e.guarantees[b.ID]))
	for rid, n := range e.guarantees[b.ID] {
		counters[rid] = n
	}
	fired, err := gacha.ApplyGuarantees(batch, b, counters, e.opts.FeaturedBias, e.catalog, overlay, e.opts.RNG)
	if err != nil {
		return Record{}, nil, e.abort(configurationError("guarantee upgrade failed after debit", err))
	}
	// an upgrade may have replaced a result; only characters the final
	// batch actually delivered may reach the roster
	overlay = catalog.NewOverlay(e.roster)
	for _, r := range batch {
		if r.IsNew {
			overlay.Add(r.CharacterID)
		}
	}

	anyGuaranteed := false
	for _, r := range batch {
		if r.WasGuaranteed {
			anyGuaranteed = true
			break
		}
	}
	rec := Record{
		ID:            uuid.NewString(),
		BannerID:      b.ID,
		Timestamp:     now,
		Results:       batch,
		Cost:          cost,
		PityBefore:    pityBefore,
		AnyGuaranteed: anyGuaranteed,
	}

	// Committing: counters, roster, and history move together, then the
	// snapshot is saved durably under the transaction id.
	e.pity[key] = tracker
	e.guarantees[b.ID] = counters
	overlay.Flush()
	e.history.Append(rec)
	e.registry.MarkPulled(b.ID)
	if err := e.commitLocked(ctx, rec.ID); err != nil {
		e.failed = err
		e.log.Error("summon commit failed; engine halted",
			zap.String("tx_id", rec.ID), zap.Error(err))
		return Record{}, nil, err
	}

	e.log.Info("summon committed",
		zap.String("tx_id", rec.ID),
		zap.String("banner_id", b.ID),
		zap.Int("pulls", pulls),
		zap.Int("pity_before", pityBefore),
		zap.Bool("guaranteed", anyGuaranteed))

	events := []Event{{Type: EventSummonCompleted, PlayerID: e.playerID, BannerID: b.ID, Record: rec}}
	for _, r := range batch {
		if r.PityTriggered {
			events = append(events, Event{Type: EventPityTriggered, PlayerID: e.playerID, BannerID: b.ID, Record: rec})
			break
		}
	}
	for _, rid := range fired {
		events = append(events, Event{Type: EventGuaranteeTriggered, PlayerID: e.playerID, BannerID: b.ID, Record: rec, RuleID: rid})
	}
	return rec, events, nil
}

// abort latches a post-debit failure. Rolling and selection are total for
// validated banners, so reaching this means configuration changed under a
// committed deployment; the engine stops rather than risk partial state.
func (e *Engine) abort(err *Error) error {
	e.failed = err
	e.log.Error("summon aborted after debit", zap.Error(err))
	return err
}

func (e *Engine) snapshotLocked() State {
	pity := make(map[string]gacha.PityTracker, len(e.pity))
	for k, v := range e.pity {
		pity[k] = v
	}
	guarantees := make(map[string]map[string]int, len(e.guarantees))
	for bid, rules := range e.guarantees {
		m := make(map[string]int, len(rules))
		for rid, n := range rules {
			m[rid] = n
		}
		guarantees[bid] = m
	}
	return State{
		Currencies: e.ledger.Snapshot(),
		Roster:     e.roster.IDs(),
		Pity:       pity,
		Guarantees: guarantees,
		History:    e.history.All(),
	}
}

// commitLocked saves the current snapshot durably, retrying transient
// failures. The txID keys the save so a retry after a half-applied write
// is idempotent.
func (e *Engine) commitLocked(ctx context.Context, txID string) error {
	b, err := json.Marshal(e.snapshotLocked())
	if err != nil {
		return transactionError("failed to encode state", err)
	}
	// past the point of no return: a caller hanging up must not abort
	// the durable save
	saveCtx := context.WithoutCancel(ctx)
	var saveErr error
	for attempt := 0; attempt <= e.opts.CommitRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 50 * time.Millisecond)
		}
		if saveErr = e.store.SaveState(saveCtx, e.playerID, txID, b); saveErr == nil {
			return nil
		}
		e.log.Warn("state save failed",
			zap.String("tx_id", txID), zap.Int("attempt", attempt), zap.Error(saveErr))
	}
	return transactionError("failed to persist player state", saveErr)
}

func (e *Engine) emit(ev Event) {
	e.mu.Lock()
	listeners := append([]Listener(nil), e.listeners...)
	e.mu.Unlock()
	for _, l := range listeners {
		l(ev)
	}
}
