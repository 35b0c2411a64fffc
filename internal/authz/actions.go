package authz

import (
	"sort"
	"strings"
)

// Canonical action names. Every action hint arriving from the core API or
// embedded in a record normalizes to one of these before any decision is
// made on it.
const (
	ActionView        = "view"
	ActionEdit        = "edit"
	ActionManageStaff = "manage-staff"
	ActionResched     = "resched"
	ActionAccept      = "accept"
	ActionReject      = "reject"
	ActionCancel      = "cancel"
	ActionDelete      = "delete"
	ActionConfirm     = "confirm"
	ActionDecline     = "decline"
	ActionRevise      = "revise"
)

var canonicalActions = []string{
	ActionView, ActionEdit, ActionManageStaff, ActionResched,
	ActionAccept, ActionReject, ActionCancel, ActionDelete,
	ActionConfirm, ActionDecline, ActionRevise,
}

// synonyms maps each canonical action to the alternate spellings seen in
// the wild. The table is stored directionally; note that "reject" is both
// a canonical key and a member of decline's list, which is why matching
// goes through the precomputed equivalence classes below rather than a
// directional lookup.
var synonyms = map[string][]string{
	ActionView:        {"read"},
	ActionEdit:        {"update", "modify"},
	ActionManageStaff: {"managestaff", "manage_staff", "staff"},
	ActionResched:     {"reschedule", "rescheduled"},
	ActionAccept:      {"approve", "approved"},
	ActionReject:      {"rejected", "deny"},
	ActionCancel:      {"cancelled", "canceled"},
	ActionDelete:      {"remove"},
	ActionConfirm:     {"confirmed"},
	ActionDecline:     {"reject", "declined"},
	ActionRevise:      {"revised"},
}

// capabilityFlags maps boolean capability fields found on records to the
// canonical action they assert.
var capabilityFlags = map[string]string{
	"canView":        ActionView,
	"canEdit":        ActionEdit,
	"canManageStaff": ActionManageStaff,
	"canReschedule":  ActionResched,
	"canCancel":      ActionCancel,
	"canDelete":      ActionDelete,
	"canAccept":      ActionAccept,
	"canReject":      ActionReject,
	"canConfirm":     ActionConfirm,
	"canDecline":     ActionDecline,
	"canRevise":      ActionRevise,
}

// canonicalOf maps every known action spelling to its canonical name,
// built at init as the symmetric closure of the synonym table. Names that
// end up in a class containing a canonical action map to that action;
// matching is therefore symmetric regardless of which direction the table
// happened to encode.
var canonicalOf map[string]string

func init() {
	parent := make(map[string]string)
	var find func(string) string
	find = func(x string) string {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	add := func(x string) {
		if _, ok := parent[x]; !ok {
			parent[x] = x
		}
	}
	union := func(a, b string) {
		add(a)
		add(b)
		parent[find(a)] = find(b)
	}

	for _, a := range canonicalActions {
		add(a)
	}
	for key, alts := range synonyms {
		for _, alt := range alts {
			union(key, alt)
		}
	}

	// Pick the canonical member of each class as the representative.
	canonicalOf = make(map[string]string, len(parent))
	repr := make(map[string]string)
	for _, a := range canonicalActions {
		repr[find(a)] = a
	}
	for name := range parent {
		root := find(name)
		if c, ok := repr[root]; ok {
			canonicalOf[name] = c
		} else {
			canonicalOf[name] = root
		}
	}
}

// NormalizeAction trims and lowercases a raw action name.
func NormalizeAction(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CanonicalAction resolves a raw action name to its canonical spelling.
// Unknown names pass through normalized, so unrecognized hints are kept
// rather than dropped.
func CanonicalAction(name string) string {
	n := NormalizeAction(name)
	if c, ok := canonicalOf[n]; ok {
		return c
	}
	return n
}

// ActionSet is a deduplicated set of canonical action names.
type ActionSet map[string]struct{}

func NewActionSet(names ...string) ActionSet {
	s := make(ActionSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts a raw action name, canonicalizing it first. Empty names are
// ignored.
func (s ActionSet) Add(name string) {
	c := CanonicalAction(name)
	if c == "" {
		return
	}
	s[c] = struct{}{}
}

func (s ActionSet) Has(name string) bool {
	_, ok := s[CanonicalAction(name)]
	return ok
}

// List returns the set's members sorted for stable output.
func (s ActionSet) List() []string {
	out := make([]string, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// IsActionAllowed reports whether any of the query names matches the
// allowed set. A query matches on direct membership or when it shares a
// synonym equivalence class with a member, so the historical spelling and
// the canonical one are interchangeable in both directions.
func IsActionAllowed(allowed ActionSet, queries ...string) bool {
	if len(allowed) == 0 {
		return false
	}
	for _, q := range queries {
		if allowed.Has(q) {
			return true
		}
	}
	return false
}
