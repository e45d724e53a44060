// Package parser tokenizes raw hand-history logs and companion ledger files
// into typed events and entries. Parsing is purely syntactic: semantic
// legality (a bet exceeding a stack, an action out of turn) is passed through
// unchanged for downstream stages to judge.
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BrightLiao/PokerAnalysis/internal/model"
)

// ParseError is terminal: a record that cannot be tokenized into
// {timestamp, message body} aborts the whole run for that input.
type ParseError struct {
	Line  int
	Entry string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parser: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	playerPattern = regexp.MustCompile(`"([^"]+) @ ([^"]+)"`)
	amountPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
	handNumber    = regexp.MustCompile(`#(\d+)`)
	handToken     = regexp.MustCompile(`\(id: ([a-z0-9]+)\)`)
	cardPattern   = regexp.MustCompile(`(10|[2-9JQKA])([♠♥♦♣♤♡♢♧])`)
	stacksPattern = regexp.MustCompile(`#(\d+) "([^@]+) @ ([^"]+)" \((\d+(?:\.\d+)?)\)`)
)

// Scanner reads a raw log and yields typed events lazily, in source order.
// It is finite and non-restartable, in the manner of bufio.Scanner.
type Scanner struct {
	r      *csv.Reader
	cols   map[string]int
	line   int
	event  model.Event
	err    error
	header bool
}

// NewScanner wraps a raw log stream. The first record must be the column
// header (entry, at, order).
func NewScanner(r io.Reader) *Scanner {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return &Scanner{r: cr}
}

// Scan advances to the next event. It returns false at end of input or on a
// terminal parse error, which is then available via Err.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	if !s.header {
		if !s.readHeader() {
			return false
		}
	}
	record, err := s.r.Read()
	if err == io.EOF {
		return false
	}
	s.line++
	if err != nil {
		s.err = &ParseError{Line: s.line, Err: err}
		return false
	}

	entry := strings.TrimSpace(s.field(record, "entry"))
	at := strings.TrimSpace(s.field(record, "at"))
	if at == "" {
		s.err = &ParseError{Line: s.line, Entry: entry, Err: fmt.Errorf("record has no timestamp")}
		return false
	}
	ts, err := time.Parse(time.RFC3339, at)
	if err != nil {
		s.err = &ParseError{Line: s.line, Entry: entry, Err: fmt.Errorf("bad timestamp %q: %w", at, err)}
		return false
	}

	order, _ := strconv.ParseInt(strings.TrimSpace(s.field(record, "order")), 10, 64)

	s.event = classify(entry)
	s.event.Timestamp = ts
	s.event.Order = order
	return true
}

// Event returns the event produced by the last successful Scan.
func (s *Scanner) Event() model.Event { return s.event }

// Err returns the terminal error that stopped the scanner, if any.
func (s *Scanner) Err() error { return s.err }

func (s *Scanner) readHeader() bool {
	record, err := s.r.Read()
	if err == io.EOF {
		return false
	}
	s.line++
	if err != nil {
		s.err = &ParseError{Line: s.line, Err: err}
		return false
	}
	s.cols = make(map[string]int, len(record))
	for i, name := range record {
		s.cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := s.cols["entry"]; !ok {
		s.err = &ParseError{Line: s.line, Err: fmt.Errorf("missing entry column in header")}
		return false
	}
	if _, ok := s.cols["at"]; !ok {
		s.err = &ParseError{Line: s.line, Err: fmt.Errorf("missing at column in header")}
		return false
	}
	s.header = true
	return true
}

func (s *Scanner) field(record []string, name string) string {
	idx, ok := s.cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// ReadAll drains the scanner and restores chronological order. The source
// export lists newest entries first; when the order counters (or, failing
// that, the timestamps) descend, the slice is reversed.
func ReadAll(r io.Reader) ([]model.Event, error) {
	s := NewScanner(r)
	var events []model.Event
	for s.Scan() {
		events = append(events, s.Event())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if len(events) >= 2 && descending(events) {
		for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
			events[i], events[j] = events[j], events[i]
		}
	}
	return events, nil
}

// ParseFile reads a log file into chronologically ordered events.
func ParseFile(path string) ([]model.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parser: open log: %w", err)
	}
	defer f.Close()
	return ReadAll(f)
}

func descending(events []model.Event) bool {
	first, last := events[0], events[len(events)-1]
	if first.Order != 0 && last.Order != 0 {
		return first.Order > last.Order
	}
	return first.Timestamp.After(last.Timestamp)
}

// classify decides the event kind from the entry text. Unrecognized shapes
// become EventUnknown rather than being discarded, so downstream components
// can choose to ignore or fail on them.
func classify(entry string) model.Event {
	ev := model.Event{Kind: model.EventUnknown, Entry: entry}
	if entry == "" {
		return ev
	}
	lower := strings.ToLower(entry)

	switch {
	case strings.Contains(lower, "-- starting hand #"):
		ev.Kind = model.EventHandStart
		ev.HandID = extractHandID(entry)
		ev.Dealer = extractPlayerAfter(entry, "dealer:")

	case strings.Contains(lower, "-- ending hand #"):
		ev.Kind = model.EventHandEnd
		ev.HandID = extractHandID(entry)

	case strings.Contains(lower, "player stacks:"):
		ev.Kind = model.EventPlayerSeated
		ev.Stacks = extractStacks(entry)

	case strings.Contains(lower, "posts a small blind of"):
		ev.Kind = model.EventBlindPosted
		ev.ActionKind = model.ActionSmallBlind
		ev.Player = extractPlayer(entry)
		ev.Amount = extractAmount(entry)

	case strings.Contains(lower, "posts a big blind of"):
		ev.Kind = model.EventBlindPosted
		ev.ActionKind = model.ActionBigBlind
		ev.Player = extractPlayer(entry)
		ev.Amount = extractAmount(entry)

	case strings.Contains(entry, `" folds`):
		ev.Kind = model.EventActionTaken
		ev.ActionKind = model.ActionFold
		ev.Player = extractPlayer(entry)

	case strings.Contains(entry, `" checks`):
		ev.Kind = model.EventActionTaken
		ev.ActionKind = model.ActionCheck
		ev.Player = extractPlayer(entry)

	case strings.Contains(entry, `" calls`):
		ev.Kind = model.EventActionTaken
		ev.ActionKind = model.ActionCall
		ev.Player = extractPlayer(entry)
		ev.Amount = extractAmount(entry)

	case strings.Contains(entry, `" bets`):
		ev.Kind = model.EventActionTaken
		ev.ActionKind = model.ActionBet
		ev.Player = extractPlayer(entry)
		ev.Amount = extractAmount(entry)

	case strings.Contains(entry, `" raises to`):
		ev.Kind = model.EventActionTaken
		ev.ActionKind = model.ActionRaise
		ev.Player = extractPlayer(entry)
		ev.Amount = extractAmount(entry)

	case strings.Contains(lower, "all-in") || strings.Contains(lower, "all in"):
		ev.Kind = model.EventActionTaken
		ev.ActionKind = model.ActionAllIn
		ev.Player = extractPlayer(entry)
		ev.Amount = extractAmount(entry)

	case strings.Contains(lower, "flop:"):
		ev.Kind = model.EventBoardDealt
		ev.Street = model.StreetFlop
		ev.Cards = extractCards(entry)

	case strings.Contains(lower, "turn:"):
		ev.Kind = model.EventBoardDealt
		ev.Street = model.StreetTurn
		ev.Cards = extractCards(entry)

	case strings.Contains(lower, "river:"):
		ev.Kind = model.EventBoardDealt
		ev.Street = model.StreetRiver
		ev.Cards = extractCards(entry)

	case strings.Contains(entry, `" shows`):
		ev.Kind = model.EventShowdown
		ev.Player = extractPlayer(entry)
		ev.Cards = extractCards(entry)

	case strings.Contains(entry, `" collected`) && strings.Contains(lower, "from pot"):
		ev.Kind = model.EventPotCollected
		ev.Player = extractPlayer(entry)
		ev.Amount = extractAmount(entry)

	case strings.Contains(lower, "uncalled bet of"):
		ev.Kind = model.EventUncalledBet
		ev.Player = extractPlayerAfter(entry, "returned to")
		ev.Amount = extractAmount(entry)

	case strings.Contains(lower, "stand up with the stack of"):
		ev.Kind = model.EventPlayerLeft
		ev.Player = extractPlayer(entry)
		ev.Amount = extractAmount(entry)

	case strings.Contains(lower, "quits the game with a stack of"):
		ev.Kind = model.EventPlayerLeft
		ev.TookChips = true
		ev.Player = extractPlayer(entry)
		ev.Amount = extractAmount(entry)

	case strings.Contains(lower, "approved the player") && strings.Contains(lower, "with a stack of"):
		ev.Kind = model.EventPlayerJoined
		ev.Approved = true
		ev.Player = extractPlayer(entry)
		ev.Amount = extractAmount(entry)

	case strings.Contains(lower, "joined the game with a stack of"):
		ev.Kind = model.EventPlayerJoined
		ev.Player = extractPlayer(entry)
		ev.Amount = extractAmount(entry)

	case strings.Contains(lower, "adding") && strings.Contains(lower, "chips"):
		ev.Kind = model.EventPlayerRebuy
		ev.Player = extractPlayer(entry)
		ev.Amount = extractAmount(entry)
	}

	return ev
}

func extractPlayer(entry string) *model.PlayerRef {
	m := playerPattern.FindStringSubmatch(entry)
	if m == nil {
		return nil
	}
	return &model.PlayerRef{Name: m[1], ID: m[2]}
}

// extractPlayerAfter locates the player reference following a keyword, so
// lines naming two players attribute the right one.
func extractPlayerAfter(entry, keyword string) *model.PlayerRef {
	pos := strings.Index(strings.ToLower(entry), strings.ToLower(keyword))
	if pos >= 0 {
		if p := extractPlayer(entry[pos:]); p != nil {
			return p
		}
	}
	return extractPlayer(entry)
}

// extractAmount finds the first number outside any player reference, since
// names and IDs may themselves contain digits.
func extractAmount(entry string) float64 {
	stripped := playerPattern.ReplaceAllString(entry, "")
	m := amountPattern.FindString(stripped)
	if m == "" {
		return 0
	}
	v, _ := strconv.ParseFloat(m, 64)
	return v
}

func extractHandID(entry string) string {
	if m := handNumber.FindStringSubmatch(entry); m != nil {
		return m[1]
	}
	if m := handToken.FindStringSubmatch(entry); m != nil {
		return m[1]
	}
	return ""
}

func extractCards(entry string) []string {
	var cards []string
	for _, m := range cardPattern.FindAllStringSubmatch(entry, -1) {
		cards = append(cards, m[0])
	}
	return cards
}

func extractStacks(entry string) []model.SeatStack {
	var stacks []model.SeatStack
	for _, m := range stacksPattern.FindAllStringSubmatch(entry, -1) {
		pos, _ := strconv.Atoi(m[1])
		stack, _ := strconv.ParseFloat(m[4], 64)
		stacks = append(stacks, model.SeatStack{
			Position: pos,
			Name:     strings.TrimSpace(m[2]),
			ID:       m[3],
			Stack:    stack,
		})
	}
	return stacks
}
