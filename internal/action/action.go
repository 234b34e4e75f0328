// Package action encodes and decodes the compact tokens carried by
// pressed buttons. A token is a verb followed by zero or more arguments
// joined with "_". Several verbs share textual stems and category keys
// may themselves contain the delimiter, so decoding always matches the
// longest candidate first.
package action

import (
	"errors"
	"sort"
	"strings"
)

// Delim joins the verb and arguments inside a token.
const Delim = "_"

// ErrUnknown is returned when no registered verb matches a token.
var ErrUnknown = errors.New("unknown action")

// Verbs is the full token vocabulary. It lives here rather than in the
// router so that key validation can reject category keys whose encodings
// a longer verb would claim. Several verbs share textual stems
// ("pick"/"pick_note", "sug"/"sug_cat"), which is why decoding is
// longest-first.
var Verbs = []string{
	"menu",
	"lists", "list", "list_new", "list_ren", "list_del",
	"list_freeze", "list_unfreeze", "list_reset",
	"cats", "cat", "cat_new", "cat_del_item", "cat_res_item",
	"pick", "pick_note", "type",
	"item_del", "item_note", "item_status",
	"sug", "sug_cat", "sug_app", "sug_rej",
	"sugc_app", "sugc_rej", "sug_pending",
	"tpls", "tpl",
	"sched", "bc", "admin", "dash", "lang", "cancel",
}

var defaultRegistry *Registry

func init() {
	defaultRegistry = NewRegistry(Verbs...)
}

// KeyCollides reports whether a token built as verb+Delim+key would be
// decoded as a different verb. A category key like "cat" collides this
// way: Encode("sug", "cat") yields "sug_cat", which the longest-first
// registry claims for the sug_cat verb.
func KeyCollides(verb, key string) bool {
	got, _, err := defaultRegistry.Decode(Encode(verb, key))
	return err == nil && got != verb
}

// Encode builds a token from a verb and its arguments.
func Encode(verb string, args ...string) string {
	if len(args) == 0 {
		return verb
	}
	return verb + Delim + strings.Join(args, Delim)
}

// Registry holds the known verbs for decoding. Verbs are matched
// longest-first, so a verb that extends another ("sug_cat" over "sug")
// always wins for tokens it can explain. This ordering is a correctness
// requirement, not a preference.
type Registry struct {
	verbs []string
}

// NewRegistry registers the given verbs.
func NewRegistry(verbs ...string) *Registry {
	r := &Registry{verbs: append([]string(nil), verbs...)}
	sort.Slice(r.verbs, func(i, j int) bool {
		if len(r.verbs[i]) != len(r.verbs[j]) {
			return len(r.verbs[i]) > len(r.verbs[j])
		}
		return r.verbs[i] < r.verbs[j]
	})
	return r
}

// Decode splits a token into its verb and the raw argument remainder.
// The remainder may itself contain the delimiter; callers split it with
// Args or SplitKeyed as appropriate.
func (r *Registry) Decode(token string) (verb, rest string, err error) {
	for _, v := range r.verbs {
		if token == v {
			return v, "", nil
		}
		if strings.HasPrefix(token, v+Delim) {
			return v, token[len(v)+len(Delim):], nil
		}
	}
	return "", "", ErrUnknown
}

// Args splits a decoded remainder into individual arguments.
func Args(rest string) []string {
	if rest == "" {
		return nil
	}
	return strings.Split(rest, Delim)
}

// SplitKeyed resolves a remainder of the form <key><Delim><tail> where
// the key is drawn from a known set whose members may contain the
// delimiter ("meat_fish", "personal_care"). Longest key wins. The tail
// may be empty when the remainder is exactly a key.
func SplitKeyed(rest string, keys []string) (key, tail string, ok bool) {
	sorted := append([]string(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})

	for _, k := range sorted {
		if rest == k {
			return k, "", true
		}
		if strings.HasPrefix(rest, k+Delim) {
			return k, rest[len(k)+len(Delim):], true
		}
	}
	return "", "", false
}
