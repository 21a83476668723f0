package internal

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultAlertWindow is how long a newly-finalized alert stays visible
// before it clears itself, regardless of subsequent polls.
const DefaultAlertWindow = 8 * time.Second

// RankedResult is a wholesaler result with its derived total cost.
type RankedResult struct {
	WholesalerResult
	TotalCost float64
}

// Ranking is the derived view of one result snapshot: results ordered for
// display and the best finalized price per product.
type Ranking struct {
	Results    []RankedResult
	BestPrices map[string]float64
}

// BestTotal returns the lowest total cost among finalized results.
func (r Ranking) BestTotal() (float64, bool) {
	best := 0.0
	found := false
	for _, res := range r.Results {
		if !res.Status.Finalized() {
			continue
		}
		if !found || res.TotalCost < best {
			best = res.TotalCost
			found = true
		}
	}
	return best, found
}

// TotalCost sums an offer set's prices. A missing price contributes 0.
func TotalCost(offers []Offer) float64 {
	total := 0.0
	for _, o := range offers {
		if o.Price != nil {
			total += *o.Price
		}
	}
	return total
}

// ComputeRanking derives the display ranking from a result snapshot.
// Finalized results come before non-finalized ones; among finalized results
// the order is ascending total cost. Non-finalized results keep their
// incoming order. Best prices consider finalized offers only.
func ComputeRanking(results []WholesalerResult) Ranking {
	ranked := make([]RankedResult, 0, len(results))
	for _, r := range results {
		ranked = append(ranked, RankedResult{WholesalerResult: r, TotalCost: TotalCost(r.Offers)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Status.Finalized() != b.Status.Finalized() {
			return a.Status.Finalized()
		}
		if a.Status.Finalized() {
			return a.TotalCost < b.TotalCost
		}
		return false
	})

	best := make(map[string]float64)
	for _, r := range ranked {
		if !r.Status.Finalized() {
			continue
		}
		for _, o := range r.Offers {
			if o.Price == nil {
				continue
			}
			if cur, ok := best[o.ProductName]; !ok || *o.Price < cur {
				best[o.ProductName] = *o.Price
			}
		}
	}

	return Ranking{Results: ranked, BestPrices: best}
}

// NewlyFinalized returns the wholesalers whose status transitioned to
// finalized between two snapshots, keyed by wholesaler identity. A
// wholesaler absent from the previous snapshot counts as a transition.
func NewlyFinalized(prev, cur []WholesalerResult) []string {
	prevStatus := make(map[string]Status, len(prev))
	for _, r := range prev {
		prevStatus[r.Wholesaler] = r.Status
	}
	var out []string
	for _, r := range cur {
		if r.Status.Finalized() && !prevStatus[r.Wholesaler].Finalized() {
			out = append(out, r.Wholesaler)
		}
	}
	return out
}

// ResultsFetcher is the slice of the backend client the aggregator needs.
type ResultsFetcher interface {
	NegotiationResults(ctx context.Context) ([]WholesalerResult, error)
}

// Aggregator holds the retailer-facing negotiation state: the latest result
// snapshot, its derived ranking, change detection against the previous
// snapshot, and transient finalized alerts.
type Aggregator struct {
	fetcher ResultsFetcher

	mu          sync.Mutex
	loaded      bool
	prev        []WholesalerResult
	ranking     Ranking
	newOffers   bool
	lastUpdated time.Time
	lastErr     error
	applied     uint64

	dispatchMu sync.Mutex
	dispatched uint64

	alertWindow time.Duration
	alerts      *gocache.Cache
}

// NewAggregator creates an aggregator over the given fetcher with the
// default 8-second alert window.
func NewAggregator(fetcher ResultsFetcher) *Aggregator {
	return newAggregator(fetcher, DefaultAlertWindow)
}

func newAggregator(fetcher ResultsFetcher, window time.Duration) *Aggregator {
	return &Aggregator{
		fetcher:     fetcher,
		alertWindow: window,
		alerts:      gocache.New(window, time.Minute),
	}
}

// Refresh fetches the current result set and replaces the local snapshot.
// Requests carry a monotonically increasing sequence number; a response that
// resolves after a newer one has already been applied is discarded, so
// overlapping in-flight refreshes settle on last-dispatched-wins. Errors
// leave existing data untouched.
func (a *Aggregator) Refresh(ctx context.Context) error {
	a.dispatchMu.Lock()
	a.dispatched++
	seq := a.dispatched
	a.dispatchMu.Unlock()

	results, err := a.fetcher.NegotiationResults(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		a.lastErr = err
		return err
	}
	if seq <= a.applied {
		LogDebug("discarding stale results (seq %d, applied %d)", seq, a.applied)
		return nil
	}
	a.applied = seq
	a.lastErr = nil

	a.newOffers = a.loaded && !reflect.DeepEqual(results, a.prev)

	for _, w := range NewlyFinalized(a.prev, results) {
		a.alerts.Set(w, time.Now(), gocache.DefaultExpiration)
	}

	a.prev = results
	a.ranking = ComputeRanking(results)
	a.loaded = true
	a.lastUpdated = time.Now()
	return nil
}

// Ranking returns the latest derived ranking.
func (a *Aggregator) Ranking() Ranking {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ranking
}

// NewOffers reports whether the last successful refresh observed any change
// against the previous snapshot. Always false right after the first load.
func (a *Aggregator) NewOffers() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.newOffers
}

// LastUpdated returns the time of the last successful refresh.
func (a *Aggregator) LastUpdated() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastUpdated
}

// Err returns the error of the most recent refresh, or nil after a success.
func (a *Aggregator) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Loaded reports whether at least one refresh has succeeded.
func (a *Aggregator) Loaded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loaded
}

// Alerts returns the wholesalers whose finalized alert is still inside its
// expiry window, sorted by name.
func (a *Aggregator) Alerts() []string {
	items := a.alerts.Items()
	out := make([]string, 0, len(items))
	for w := range items {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
