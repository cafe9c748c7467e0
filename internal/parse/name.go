package parse

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the longest name accepted for sites, racks, devices and
// providers.
const MaxNameLength = 255

var (
	spaceRe = regexp.MustCompile(`\s+`)
	colorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// Name trims a user supplied name and collapses inner whitespace. Empty and
// overlong names are rejected.
func Name(raw string) (string, error) {
	s := strings.TrimSpace(spaceRe.ReplaceAllString(raw, " "))
	if s == "" {
		return "", fmt.Errorf("name must not be empty")
	}
	if utf8.RuneCountInString(s) > MaxNameLength {
		return "", fmt.Errorf("name must be at most %d characters", MaxNameLength)
	}
	return s, nil
}

// Color validates a hex colour in #RGB or #RRGGBB form and lower-cases it.
// An empty value yields def.
func Color(raw, def string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	if !colorRe.MatchString(s) {
		return "", fmt.Errorf("color must be a hex value like #RGB or #RRGGBB, got %q", raw)
	}
	return strings.ToLower(s), nil
}

// RackRef names a rack inside a site.
type RackRef struct {
	Site string
	Rack string
}

func (r RackRef) String() string { return r.Site + "/" + r.Rack }

// ParseRackRef splits a "site/rack" reference. The rack part is taken after
// the last slash so site names may contain slashes.
func ParseRackRef(raw string) (RackRef, error) {
	s := strings.TrimSpace(raw)
	i := strings.LastIndex(s, "/")
	if i <= 0 || i == len(s)-1 {
		return RackRef{}, fmt.Errorf("rack reference must look like site/rack, got %q", raw)
	}
	site, err := Name(s[:i])
	if err != nil {
		return RackRef{}, fmt.Errorf("invalid site in %q: %w", raw, err)
	}
	rack, err := Name(s[i+1:])
	if err != nil {
		return RackRef{}, fmt.Errorf("invalid rack in %q: %w", raw, err)
	}
	return RackRef{Site: site, Rack: rack}, nil
}
