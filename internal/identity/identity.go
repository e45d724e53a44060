// Package identity folds multiple display names belonging to the same person
// into one canonical player. A reconnect under "Tom2" and the original "Tom"
// are one identity; "Tom" and "Tim" are not, however close the names look.
package identity

import (
	"regexp"
	"sort"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/rs/zerolog"

	"github.com/BrightLiao/PokerAnalysis/internal/model"
)

// Recognized reconnect suffixes: trailing digits, or a dash/underscore tag.
var suffixPattern = regexp.MustCompile(`(?:\d+|[-_][A-Za-z0-9]+)$`)

// Normalize strips a recognized reconnect suffix from a display name. A name
// that is nothing but a suffix is returned unchanged.
func Normalize(name string) string {
	base := strings.TrimSpace(suffixPattern.ReplaceAllString(name, ""))
	if base == "" {
		return name
	}
	return base
}

// SameIdentity is the merge predicate: equal stable IDs, or an identical base
// name after suffix stripping. It is deterministic and symmetric. Two records
// that both lack a stable ID only match through their names.
func SameIdentity(a, b *model.Player) bool {
	if a.ID != "" && a.ID == b.ID {
		return true
	}
	return Normalize(a.Name) == Normalize(b.Name)
}

// Resolver merges identities inside a dataset and reports near-miss pairs.
type Resolver struct {
	logger      zerolog.Logger
	maxDistance int
}

// NewResolver creates a resolver. maxDistance bounds the Levenshtein distance
// for merge-candidate reporting.
func NewResolver(logger zerolog.Logger, maxDistance int) *Resolver {
	return &Resolver{logger: logger, maxDistance: maxDistance}
}

// Resolve merges all players satisfying SameIdentity, rewriting every hand
// reference to the canonical key. Similar-but-unproven pairs come back as
// candidates for the report; they are never merged automatically.
//
// A merge that would combine two records of the same hand means the two
// identities were dealt in simultaneously and cannot be one person; that is a
// MergeConflictError and the dataset is left partially merged only within
// groups processed before the conflict.
func (r *Resolver) Resolve(ds *model.Dataset) ([]model.MergeCandidate, error) {
	keys := sortedPlayerKeys(ds.Players)

	// Union-find over player keys under the SameIdentity predicate.
	parent := make(map[string]string, len(keys))
	for _, k := range keys {
		parent[k] = k
	}
	var find func(string) string
	find = func(k string) string {
		if parent[k] != k {
			parent[k] = find(parent[k])
		}
		return parent[k]
	}
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			if SameIdentity(ds.Players[keys[i]], ds.Players[keys[j]]) {
				parent[find(keys[j])] = find(keys[i])
			}
		}
	}

	groups := make(map[string][]string)
	for _, k := range keys {
		root := find(k)
		groups[root] = append(groups[root], k)
	}
	roots := make([]string, 0, len(groups))
	for root := range groups {
		roots = append(roots, root)
	}
	sort.Strings(roots)

	for _, root := range roots {
		if len(groups[root]) < 2 {
			continue
		}
		if err := r.mergeGroup(ds, groups[root]); err != nil {
			return nil, err
		}
	}

	return r.candidates(ds), nil
}

// mergeGroup folds every player in keys into the one with the smallest stable
// ID, which makes the canonical choice independent of input order.
func (r *Resolver) mergeGroup(ds *model.Dataset, keys []string) error {
	sort.Slice(keys, func(i, j int) bool {
		a, b := ds.Players[keys[i]], ds.Players[keys[j]]
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.Name < b.Name
	})

	main := ds.Players[keys[0]]
	baseName := Normalize(main.Name)
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, ds.Players[k].Name)
	}
	r.logger.Info().Strs("players", names).Str("canonical", baseName).Msg("merging identities")

	oldMainKey := main.Key()
	main.Name = baseName
	mainKey := main.Key()
	if oldMainKey != mainKey {
		rewriteHandKeys(ds, oldMainKey, mainKey, baseName, main.ID)
		delete(ds.Players, oldMainKey)
		ds.Players[mainKey] = main
		main.Aliases = appendAlias(main.Aliases, names[0])
	}

	for _, key := range keys[1:] {
		p := ds.Players[key]
		for _, handID := range p.HandIDs {
			for _, existing := range main.HandIDs {
				if existing == handID {
					return &model.MergeConflictError{HandID: handID, A: mainKey, B: key}
				}
			}
		}

		main.Aliases = appendAlias(main.Aliases, p.Name)
		for _, alias := range p.Aliases {
			main.Aliases = appendAlias(main.Aliases, alias)
		}
		main.TotalBuyIn += p.TotalBuyIn
		main.TotalBuyOut += p.TotalBuyOut
		main.FinalStack += p.FinalStack
		main.Sessions += p.Sessions
		main.TotalProfit += p.TotalProfit
		main.HandsPlayed += p.HandsPlayed
		main.HandIDs = append(main.HandIDs, p.HandIDs...)
		for id, v := range p.StartingStacks {
			main.StartingStacks[id] = v
		}
		for id, v := range p.HandProfits {
			main.HandProfits[id] = v
		}
		for id, v := range p.HandBuyIns {
			main.HandBuyIns[id] += v
		}

		rewriteHandKeys(ds, key, mainKey, baseName, main.ID)
		delete(ds.Players, key)
	}
	return nil
}

// rewriteHandKeys repoints every per-hand reference from one identity key to
// another.
func rewriteHandKeys(ds *model.Dataset, from, to, name, id string) {
	for _, h := range ds.Hands {
		if seat, ok := h.Players[from]; ok {
			seat.Name = name
			seat.ID = id
			delete(h.Players, from)
			h.Players[to] = seat
		}
		if amount, ok := h.Winners[from]; ok {
			delete(h.Winners, from)
			h.Winners[to] += amount
		}
		if cards, ok := h.Showdowns[from]; ok {
			delete(h.Showdowns, from)
			h.Showdowns[to] = cards
		}
		for _, street := range model.Streets {
			actions := h.Actions[street]
			for i := range actions {
				if actions[i].PlayerKey() == from {
					actions[i].PlayerName = name
					actions[i].PlayerID = id
				}
			}
		}
		for i := range h.Anomalies {
			if h.Anomalies[i].Player == from {
				h.Anomalies[i].Player = to
			}
		}
	}
}

// candidates reports remaining identity pairs whose normalized names are
// close but not identical.
func (r *Resolver) candidates(ds *model.Dataset) []model.MergeCandidate {
	keys := sortedPlayerKeys(ds.Players)

	var out []model.MergeCandidate
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			a, b := ds.Players[keys[i]], ds.Players[keys[j]]
			na, nb := Normalize(a.Name), Normalize(b.Name)
			if na == nb {
				continue
			}
			d := levenshtein.Distance(na, nb, nil)
			if d <= r.maxDistance {
				out = append(out, model.MergeCandidate{A: keys[i], B: keys[j], Distance: d})
			}
		}
	}
	return out
}

func appendAlias(aliases []string, name string) []string {
	for _, a := range aliases {
		if a == name {
			return aliases
		}
	}
	return append(aliases, name)
}

func sortedPlayerKeys(players map[string]*model.Player) []string {
	keys := make([]string, 0, len(players))
	for k := range players {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
