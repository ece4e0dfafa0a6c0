// Package route maps inbound path prefixes to backend services.
package route

import "strings"

// Rule binds a path prefix to a backend. Class selects the per-route
// rate-limit ceiling; Local rules are served by the gateway itself.
type Rule struct {
	Prefix  string
	Name    string
	BaseURL string
	Class   string
	Local   bool
}

// Table is a static, immutable set of rules resolved by longest prefix.
type Table struct {
	rules []Rule
}

func NewTable(rules ...Rule) *Table {
	t := &Table{rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		r.Prefix = normalizePrefix(r.Prefix)
		if r.Prefix == "" {
			continue
		}
		r.BaseURL = strings.TrimRight(strings.TrimSpace(r.BaseURL), "/")
		t.rules = append(t.rules, r)
	}
	return t
}

// Resolve returns the longest-prefix rule matching path, or false when no
// rule matches. A miss never consults any backend.
func (t *Table) Resolve(path string) (Rule, bool) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	var best Rule
	found := false
	for _, r := range t.rules {
		if !matches(path, r.Prefix) {
			continue
		}
		if !found || len(r.Prefix) > len(best.Prefix) {
			best = r
			found = true
		}
	}
	return best, found
}

// Rest strips the rule prefix from path, keeping a leading slash, so the
// remainder can be appended to the backend base URL.
func (r Rule) Rest(path string) string {
	rest := strings.TrimPrefix(path, strings.TrimSuffix(r.Prefix, "/"))
	if rest == "" || rest[0] != '/' {
		rest = "/" + rest
	}
	return rest
}

func matches(path, prefix string) bool {
	if strings.HasSuffix(prefix, "/") {
		return strings.HasPrefix(path, prefix)
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return ""
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}
