package cfgctx

import "strings"

// Site owns a case-insensitive name, zero-or-more IPs, zero-or-more
// hostnames, and an ordered list of locations (spec.md §3 Site /
// Site-Location). An empty IP or host list means "any" (wildcard).
type Site struct {
	Name      string
	IPs       []string
	Hosts     []string
	Locations []*Location
	Default   *Location
}

// Location owns a path prefix and a backlink to its site. A NULL (empty)
// path means "any".
type Location struct {
	Path    string
	Site    *Site // weak back-reference
	Context *Context
}

func (s *Site) matchesName(name string) bool {
	return strings.EqualFold(s.Name, name)
}

func (s *Site) matchesIP(ip string) bool {
	if len(s.IPs) == 0 {
		return true // empty list means "any" (spec.md §3)
	}
	for _, candidate := range s.IPs {
		if candidate == ip {
			return true
		}
	}
	return false
}

// matchesHost implements spec.md §4.E.3/5: the site's host list being
// empty means "any" for a concrete, non-empty transaction host; but when
// the transaction's host itself is empty, it matches only a literal "*"
// wildcard entry in the site's host list, never an implicit empty list and
// never a specific hostname (spec.md §4.E.5).
func (s *Site) matchesHost(host string) bool {
	if host == "" {
		for _, h := range s.Hosts {
			if h == "*" {
				return true
			}
		}
		return false
	}
	if len(s.Hosts) == 0 {
		return true
	}
	for _, h := range s.Hosts {
		if h == "*" || strings.HasSuffix(strings.ToLower(host), strings.ToLower(h)) {
			return true
		}
	}
	return false
}

// matchesPath implements the location's path-prefix rule: empty/NULL
// path matches any path.
func (l *Location) matchesPath(path string) bool {
	if l.Path == "" {
		return true
	}
	return strings.HasPrefix(path, l.Path)
}
