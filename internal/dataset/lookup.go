package dataset

import (
	"strings"
	"time"
	"unicode"

	"github.com/schollz/closestmatch"

	"painel/internal/core"
)

// state is one immutable loaded snapshot with its sheet indexes.
type state struct {
	snap       core.Snapshot
	names      []string
	byCategory map[core.Category]int
	records    int
	loadedAt   time.Time
}

func newState(snap core.Snapshot, at time.Time) *state {
	st := &state{
		snap:       snap,
		names:      make([]string, len(snap.Sheets)),
		byCategory: make(map[core.Category]int, len(core.Categories())),
		loadedAt:   at,
	}
	for i, sh := range snap.Sheets {
		st.names[i] = sh.Name
		st.records += len(sh.Records)
	}

	claimed := make(map[int]bool)
	var pending []core.Category
	for _, c := range core.Categories() {
		if i, ok := st.direct(c.SheetName()); ok {
			st.byCategory[c] = i
			claimed[i] = true
			continue
		}
		pending = append(pending, c)
	}
	for _, c := range pending {
		if i, ok := st.fuzzy(c.SheetName(), claimed); ok {
			st.byCategory[c] = i
			claimed[i] = true
		}
	}
	return st
}

func (st *state) lookup(name string) (int, bool) {
	if i, ok := st.direct(name); ok {
		return i, true
	}
	return st.fuzzy(name, nil)
}

// direct matches the exact name first, then ignoring surrounding spaces.
func (st *state) direct(name string) (int, bool) {
	for i, n := range st.names {
		if n == name {
			return i, true
		}
	}
	trimmed := strings.TrimSpace(name)
	for i, n := range st.names {
		if strings.TrimSpace(n) == trimmed {
			return i, true
		}
	}
	return -1, false
}

// fuzzy picks the closest unclaimed sheet among those that carry every
// significant word of name. A word matches when a sheet word starts with it.
func (st *state) fuzzy(name string, claimed map[int]bool) (int, bool) {
	want := significantWords(name)
	if len(want) == 0 {
		return -1, false
	}

	candidates := make(map[string]int)
	var keys []string
	for i, n := range st.names {
		if claimed[i] || !coversWords(significantWords(n), want) {
			continue
		}
		key := strings.Join(significantWords(n), " ")
		if _, dup := candidates[key]; dup {
			continue
		}
		candidates[key] = i
		keys = append(keys, key)
	}

	switch len(keys) {
	case 0:
		return -1, false
	case 1:
		return candidates[keys[0]], true
	}

	cm := closestmatch.New(keys, []int{2, 3})
	match := cm.Closest(strings.Join(want, " "))
	if i, ok := candidates[match]; ok {
		return i, true
	}
	return candidates[keys[0]], true
}

func significantWords(s string) []string {
	fields := strings.FieldsFunc(core.Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 3 {
			out = append(out, f)
		}
	}
	return out
}

func coversWords(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if strings.HasPrefix(h, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
