// internal/source/namespace.go
//
// Flat, case-insensitive key/value namespace produced by Merge.
//
// Context
// -------
// Every provider yields a partial map[string]string.  Merge folds those maps,
// in listed order, into one Namespace.  Keys are normalised so that the
// three spellings operators actually use all collide on the same entry:
//
//	AppSettings:SmtpIp      (colon separated, JSON appsettings style)
//	APPSETTINGS__SMTPIP     (double underscore, environment style)
//	appsettings.smtpip      (dotted, koanf style)
//
// Notes
// -----
//   - Insertion order is kept so dumps and debug endpoints are stable.
//   - A Namespace is written only by Merge; afterwards it is read-only and
//     safe to share between goroutines.
package source

import "strings"

// Delim separates path segments inside a normalised key.
const Delim = "."

// Entry is one resolved key with the name of the provider that wrote it last.
type Entry struct {
	Key    string
	Value  string
	Source string
}

// Namespace is an ordered, case-insensitive mapping of dotted keys.
type Namespace struct {
	keys    []string
	entries map[string]Entry
}

// NewNamespace returns an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{entries: make(map[string]Entry)}
}

// NormalizeKey lowercases k and maps ":" and "__" onto the dotted delimiter.
func NormalizeKey(k string) string {
	k = strings.TrimSpace(k)
	k = strings.ReplaceAll(k, "__", Delim)
	k = strings.ReplaceAll(k, ":", Delim)
	return strings.ToLower(k)
}

// set writes one value.  An empty value is an explicit overwrite, never a
// deletion.
func (n *Namespace) set(key, value, src string) {
	key = NormalizeKey(key)
	if key == "" {
		return
	}
	if _, ok := n.entries[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.entries[key] = Entry{Key: key, Value: value, Source: src}
}

// Get returns the value stored under key.
func (n *Namespace) Get(key string) (string, bool) {
	e, ok := n.entries[NormalizeKey(key)]
	return e.Value, ok
}

// Lookup returns the full entry, provenance included.
func (n *Namespace) Lookup(key string) (Entry, bool) {
	e, ok := n.entries[NormalizeKey(key)]
	return e, ok
}

// HasPrefix reports whether at least one key lives under prefix.
func (n *Namespace) HasPrefix(prefix string) bool {
	p := NormalizeKey(prefix)
	if p == "" {
		return len(n.keys) > 0
	}
	p += Delim
	for _, k := range n.keys {
		if strings.HasPrefix(k, p) {
			return true
		}
	}
	return false
}

// Keys returns a copy of the keys in first-insertion order.
func (n *Namespace) Keys() []string {
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// Len reports the number of distinct keys.
func (n *Namespace) Len() int { return len(n.keys) }

// Map returns a detached copy of the namespace as a plain map.
func (n *Namespace) Map() map[string]string {
	out := make(map[string]string, len(n.entries))
	for k, e := range n.entries {
		out[k] = e.Value
	}
	return out
}
