// Package merge combines several single-day dataset directories into one
// multi-day dataset. Hand IDs gain a date prefix so per-day breakdowns stay
// reproducible after the merge.
package merge

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/BrightLiao/PokerAnalysis/internal/identity"
	"github.com/BrightLiao/PokerAnalysis/internal/model"
	"github.com/BrightLiao/PokerAnalysis/internal/storage"
)

var (
	fullDatePattern  = regexp.MustCompile(`\d{8}`)
	shortDatePattern = regexp.MustCompile(`\d{4}`)
)

// Merger loads and combines day directories. Directory loads run in
// parallel; the combination itself is sequential.
type Merger struct {
	logger   zerolog.Logger
	store    *storage.Store
	resolver *identity.Resolver
	clock    quartz.Clock
}

// New creates a merger. A nil clock uses the real one; the clock only
// matters for expanding short MMDD directory names to a full date.
func New(logger zerolog.Logger, store *storage.Store, resolver *identity.Resolver, clock quartz.Clock) *Merger {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Merger{logger: logger, store: store, resolver: resolver, clock: clock}
}

// DateFromPath derives the day tag from a dataset directory name: an 8-digit
// run is taken as YYYYMMDD, a 4-digit run as MMDD in the current year, and
// anything else is used verbatim.
func (m *Merger) DateFromPath(path string) string {
	name := filepath.Base(path)
	if d := fullDatePattern.FindString(name); d != "" {
		return d
	}
	if d := shortDatePattern.FindString(name); d != "" {
		return fmt.Sprintf("%04d%s", m.clock.Now().Year(), d)
	}
	return name
}

// PrefixHandID tags a single-day hand ID with its date. Already-prefixed IDs
// pass through so merging a merged dataset does not double-tag.
func PrefixHandID(date, id string) string {
	for i := 0; i < len(id); i++ {
		if id[i] == '_' {
			return id
		}
	}
	return date + "_#" + id
}

// MergeDirs loads every directory, prefixes hand IDs, unions the players and
// resolves identities across days. Two directories contributing the same
// prefixed hand ID cannot both be kept; that is a MergeConflictError.
func (m *Merger) MergeDirs(ctx context.Context, dirs []string) (*model.Dataset, []model.MergeCandidate, error) {
	days := make([]*model.Dataset, len(dirs))

	g, _ := errgroup.WithContext(ctx)
	for i, dir := range dirs {
		g.Go(func() error {
			ds, err := m.store.Load(dir)
			if err != nil {
				return fmt.Errorf("merge: load %s: %w", dir, err)
			}
			days[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	merged := model.NewDataset()
	seen := make(map[string]string)
	stackDays := make(map[string]string)

	for i, day := range days {
		date := m.DateFromPath(dirs[i])
		m.logger.Info().Str("dir", dirs[i]).Str("date", date).
			Int("hands", len(day.Hands)).Msg("merging day")

		for _, h := range day.Hands {
			h.ID = PrefixHandID(date, h.ID)
			for j := range h.Anomalies {
				h.Anomalies[j].HandID = h.ID
			}
			if owner, dup := seen[h.ID]; dup {
				return nil, nil, &model.MergeConflictError{HandID: h.ID, A: owner, B: dirs[i]}
			}
			seen[h.ID] = dirs[i]
			merged.Hands = append(merged.Hands, h)
		}

		for key, p := range day.Players {
			mergePlayer(merged, stackDays, key, p, date)
		}
	}

	sortHands(merged.Hands)

	candidates, err := m.resolver.Resolve(merged)
	if err != nil {
		return nil, nil, err
	}
	return merged, candidates, nil
}

// mergePlayer folds one day's record for a player into the multi-day record,
// re-keying the per-hand maps with the date prefix. The final stack is the
// most recent day's, not a sum; recency is judged by the day carried in the
// record's hand IDs, not by argument order, so merging the same directories
// in any order or grouping yields the same stack. stackDays remembers which
// day supplied each player's current stack.
func mergePlayer(merged *model.Dataset, stackDays map[string]string, key string, p *model.Player, date string) {
	dst, ok := merged.Players[key]
	if !ok {
		dst = model.NewPlayer(p.Name, p.ID)
		merged.Players[key] = dst
	}

	dst.TotalBuyIn += p.TotalBuyIn
	dst.TotalBuyOut += p.TotalBuyOut
	if day := latestDay(p, date); stackDays[key] == "" || day > stackDays[key] {
		dst.FinalStack = p.FinalStack
		stackDays[key] = day
	}
	dst.Sessions += p.Sessions
	dst.TotalProfit += p.TotalProfit
	dst.HandsPlayed += p.HandsPlayed

	for _, id := range p.HandIDs {
		dst.HandIDs = append(dst.HandIDs, PrefixHandID(date, id))
	}
	for id, v := range p.StartingStacks {
		dst.StartingStacks[PrefixHandID(date, id)] = v
	}
	for id, v := range p.HandProfits {
		dst.HandProfits[PrefixHandID(date, id)] = v
	}
	for id, v := range p.HandBuyIns {
		dst.HandBuyIns[PrefixHandID(date, id)] = v
	}
}

// sortHands orders by day, then by intra-day hand number.
func sortHands(hands []*model.Hand) {
	sort.SliceStable(hands, func(i, j int) bool {
		di, dj := dayOf(hands[i].ID), dayOf(hands[j].ID)
		if di != dj {
			return di < dj
		}
		if hands[i].Number != hands[j].Number {
			return hands[i].Number < hands[j].Number
		}
		return hands[i].Timestamp.Before(hands[j].Timestamp)
	})
}

// latestDay is the most recent day appearing in the record's hand IDs, after
// prefixing with the directory date. A record re-merged from an already
// merged dataset carries multiple days; the greatest one wins. Records with
// no hands fall back to the directory date.
func latestDay(p *model.Player, date string) string {
	latest := ""
	for _, id := range p.HandIDs {
		if d := dayOf(PrefixHandID(date, id)); d > latest {
			latest = d
		}
	}
	if latest == "" {
		return date
	}
	return latest
}

func dayOf(id string) string {
	for i := 0; i < len(id); i++ {
		if id[i] == '_' {
			return id[:i]
		}
	}
	return id
}

