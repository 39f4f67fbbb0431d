package repository

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: peak potential DESC, then player id ASC (deterministic).
// "less" means ranks earlier, so in-order traversal yields the leaderboard
// from best to worst. Only the latest season of each player is indexed.

// peakScale converts ratings to fixed point so equal peaks compare equal.
const peakScale = 1_000_000

type peakFP int64

func toFixedPoint(x float64) peakFP {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return peakFP(math.Round(x * peakScale))
}

// Snapshot is an immutable view of the indexed players in rank order.
type Snapshot struct {
	Players  []model.Player
	RankByID map[int64]int
}

type node struct {
	id    int64
	peak  peakFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aPeak, aID) should appear before (bPeak, bID).
func less(aPeak peakFP, aID int64, bPeak peakFP, bID int64) bool {
	if aPeak != bPeak {
		return aPeak > bPeak
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

// priority is a hash of the id. Deriving it from the ordering key would
// turn the treap into a list.
func priority(id int64) uint64 {
	return xxhash.Sum64String(strconv.FormatInt(id, 10))
}

func insert(n *node, id int64, peak peakFP) *node {
	if n == nil {
		return &node{id: id, peak: peak, prio: priority(id), size: 1}
	}
	if less(peak, id, n.peak, n.id) {
		n.left = insert(n.left, id, peak)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, peak)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id int64, peak peakFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case peak == n.peak && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, peak)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, peak)
		}
	case less(peak, id, n.peak, n.id):
		n.left = deleteNode(n.left, id, peak)
	default:
		n.right = deleteNode(n.right, id, peak)
	}
	fix(n)
	return n
}

// countAbove returns the number of indexed players with a strictly higher peak.
func countAbove(n *node, peak peakFP) int {
	count := 0
	for n != nil {
		if n.peak > peak {
			count += 1 + nsize(n.left)
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collectTopN appends up to limit players in rank order, skipping those
// rejected by keep.
func collectTopN(n *node, limit int, latest map[int64]model.Player, keep func(model.Player) bool, out *[]model.Player) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, latest, keep, out)
	if len(*out) < limit {
		if p, ok := latest[n.id]; ok && keep(p) {
			*out = append(*out, p)
		}
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, latest, keep, out)
	}
}

// RosterStore is the default Store.
type RosterStore struct {
	mu      sync.RWMutex
	root    *node
	latest  map[int64]model.Player
	seasons map[int64]map[string]model.Player
	records int

	metricsUpdateInterval time.Duration

	// snapshot is rebuilt lazily on the first read after a write
	snapMu   sync.Mutex
	snapshot atomic.Pointer[Snapshot]
	dirty    atomic.Bool

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewRosterStore constructs a roster store with configuration options.
func NewRosterStore(ctx context.Context, opts ...Option) *RosterStore {
	s := &RosterStore{
		latest:                make(map[int64]model.Player),
		seasons:               make(map[int64]map[string]model.Player),
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(&Snapshot{RankByID: map[int64]int{}})

	metrics.UpdateTotalPlayers(0)
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background metrics updater.
func (s *RosterStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Upsert implements Store.Upsert with O(log n) expected time.
func (s *RosterStore) Upsert(_ context.Context, p model.Player) (bool, error) {
	if p.ID <= 0 {
		metrics.RecordErrorByComponent("repository", "invalid_player")
		return false, ErrInvalidPlayer
	}

	s.mu.Lock()
	bySeason, ok := s.seasons[p.ID]
	if !ok {
		bySeason = make(map[string]model.Player)
		s.seasons[p.ID] = bySeason
	}
	_, existed := bySeason[p.Season]
	bySeason[p.Season] = p
	if !existed {
		s.records++
	}

	newest := p
	for _, other := range bySeason {
		if model.SeasonNewer(other.Season, newest.Season) {
			newest = other
		}
	}
	if old, ok := s.latest[p.ID]; ok {
		s.root = deleteNode(s.root, old.ID, toFixedPoint(old.PeakPotential))
	}
	s.latest[p.ID] = newest
	s.root = insert(s.root, newest.ID, toFixedPoint(newest.PeakPotential))
	players := len(s.latest)
	s.mu.Unlock()

	s.dirty.Store(true)
	metrics.RecordRosterUpdate()
	if !existed {
		metrics.UpdateTotalPlayers(players)
	}
	return !existed, nil
}

// Get implements Store.Get.
func (s *RosterStore) Get(_ context.Context, id int64) (model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.latest[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Player{}, ErrNotFound
	}
	return p, nil
}

// GetSeason implements Store.GetSeason.
func (s *RosterStore) GetSeason(_ context.Context, id int64, season string) (model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.seasons[id][season]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Player{}, ErrNotFound
	}
	return p, nil
}

// Seasons implements Store.Seasons.
func (s *RosterStore) Seasons(_ context.Context, id int64) ([]model.Player, error) {
	s.mu.RLock()
	bySeason, ok := s.seasons[id]
	out := make([]model.Player, 0, len(bySeason))
	for _, p := range bySeason {
		out = append(out, p)
	}
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	sort.Slice(out, func(i, j int) bool { return model.SeasonNewer(out[i].Season, out[j].Season) })
	return out, nil
}

// List implements Store.List. page starts at 1.
func (s *RosterStore) List(_ context.Context, f Filter, page, perPage int) ([]model.Player, int, error) {
	if perPage < 1 {
		return nil, 0, ErrInvalidLimit
	}
	if page < 1 {
		page = 1
	}

	var pool []model.Player
	if f.Season == "" {
		pool = s.current().Players
	} else {
		s.mu.RLock()
		for _, bySeason := range s.seasons {
			if p, ok := bySeason[f.Season]; ok {
				pool = append(pool, p)
			}
		}
		s.mu.RUnlock()
		sortByPeak(pool)
	}

	matched := make([]model.Player, 0, min(perPage, len(pool)))
	total := 0
	start := math.MaxInt
	if page-1 <= math.MaxInt/perPage {
		start = (page - 1) * perPage
	}
	for _, p := range pool {
		if !f.matches(p) {
			continue
		}
		if total >= start && len(matched) < perPage {
			matched = append(matched, p)
		}
		total++
	}
	return matched, total, nil
}

// TopN implements Store.TopN in O(log n + n) for the unfiltered case.
func (s *RosterStore) TopN(_ context.Context, n int, position model.Position) ([]Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	keep := func(model.Player) bool { return true }
	if position != "" {
		keep = func(p model.Player) bool { return p.Position == position }
	}

	s.mu.RLock()
	players := make([]model.Player, 0, n)
	collectTopN(s.root, n, s.latest, keep, &players)
	s.mu.RUnlock()

	return assignRanksWithTies(players), nil
}

// Rank implements Store.Rank in O(log n). Equal peaks share a rank.
func (s *RosterStore) Rank(_ context.Context, id int64) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.latest[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	return Entry{Rank: countAbove(s.root, toFixedPoint(p.PeakPotential)) + 1, Player: p}, nil
}

// All implements Store.All.
func (s *RosterStore) All(_ context.Context) []model.Player {
	players := s.current().Players
	return append(make([]model.Player, 0, len(players)), players...)
}

// Count implements Store.Count.
func (s *RosterStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.latest)
}

// Records implements Store.Records.
func (s *RosterStore) Records(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// current returns the snapshot, rebuilding it if a write happened since.
func (s *RosterStore) current() *Snapshot {
	if !s.dirty.Load() {
		return s.snapshot.Load()
	}
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	if s.dirty.CompareAndSwap(true, false) {
		s.publishSnapshot()
	}
	return s.snapshot.Load()
}

func (s *RosterStore) publishSnapshot() {
	start := time.Now()

	s.mu.RLock()
	players := make([]model.Player, 0, len(s.latest))
	collectTopN(s.root, len(s.latest), s.latest, func(model.Player) bool { return true }, &players)
	s.mu.RUnlock()

	rankByID := make(map[int64]int, len(players))
	for _, e := range assignRanksWithTies(players) {
		rankByID[e.Player.ID] = e.Rank
	}
	s.snapshot.Store(&Snapshot{Players: players, RankByID: rankByID})
	metrics.RecordRepositorySnapshot(time.Since(start))
}

func (s *RosterStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateTotalPlayers(s.Count(ctx))
			}
		}
	}()
}

func (f Filter) matches(p model.Player) bool {
	if f.Position != "" && p.Position != f.Position {
		return false
	}
	if f.Club != "" && !strings.EqualFold(p.Club, f.Club) {
		return false
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Query)) {
		return false
	}
	return true
}

func sortByPeak(players []model.Player) {
	sort.Slice(players, func(i, j int) bool {
		return less(toFixedPoint(players[i].PeakPotential), players[i].ID,
			toFixedPoint(players[j].PeakPotential), players[j].ID)
	})
}

// assignRanksWithTies ranks players already in leaderboard order. Equal
// peaks share a rank and the next rank skips the tied positions.
func assignRanksWithTies(players []model.Player) []Entry {
	out := make([]Entry, len(players))
	for i, p := range players {
		rank := i + 1
		if i > 0 && toFixedPoint(p.PeakPotential) == toFixedPoint(players[i-1].PeakPotential) {
			rank = out[i-1].Rank
		}
		out[i] = Entry{Rank: rank, Player: p}
	}
	return out
}
