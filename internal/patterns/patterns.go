// Package patterns holds the format grammars used by the url, email and hex
// rule types.
package patterns

import (
	"regexp"
	"strings"
	"sync"
)

const (
	// MaxURLLength bounds accepted URLs.
	MaxURLLength = 2048
	// MaxEmailLength bounds accepted e-mail addresses.
	MaxEmailLength = 320
)

var (
	email = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9\x{00A0}-\x{D7FF}\x{F900}-\x{FDCF}\x{FDF0}-\x{FFEF}]+\.)+[a-zA-Z\x{00A0}-\x{D7FF}\x{F900}-\x{FDCF}\x{FDF0}-\x{FFEF}]{2,}))$`)
	hex   = regexp.MustCompile(`(?i)^#?([a-f0-9]{6}|[a-f0-9]{3})$`)

	urlOnce sync.Once
	urlRe   *regexp.Regexp
)

// Email reports whether s is an e-mail address.
func Email(s string) bool {
	return len(s) <= MaxEmailLength && email.MatchString(s)
}

// Hex reports whether s is a 3 or 6 digit hex color, with optional '#'.
func Hex(s string) bool { return hex.MatchString(s) }

// URL reports whether s is an absolute, protocol-relative or www. URL.
// Whitespace anywhere in s is rejected.
func URL(s string) bool {
	return len(s) <= MaxURLLength && urlRegexp().MatchString(s)
}

func urlRegexp() *regexp.Regexp {
	urlOnce.Do(func() {
		urlRe = regexp.MustCompile(`(?i)^` + urlSource() + `$`)
	})
	return urlRe
}

const (
	v4    = `(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]\d|\d)(?:\.(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]\d|\d)){3}`
	v6seg = `[a-fA-F\d]{1,4}`
)

func v6() string {
	lines := []string{
		`(?:` + v6seg + `:){7}(?:` + v6seg + `|:)`,
		`(?:` + v6seg + `:){6}(?:` + v4 + `|:` + v6seg + `|:)`,
		`(?:` + v6seg + `:){5}(?::` + v4 + `|(?::` + v6seg + `){1,2}|:)`,
		`(?:` + v6seg + `:){4}(?:(?::` + v6seg + `){0,1}:` + v4 + `|(?::` + v6seg + `){1,3}|:)`,
		`(?:` + v6seg + `:){3}(?:(?::` + v6seg + `){0,2}:` + v4 + `|(?::` + v6seg + `){1,4}|:)`,
		`(?:` + v6seg + `:){2}(?:(?::` + v6seg + `){0,3}:` + v4 + `|(?::` + v6seg + `){1,5}|:)`,
		`(?:` + v6seg + `:){1}(?:(?::` + v6seg + `){0,4}:` + v4 + `|(?::` + v6seg + `){1,6}|:)`,
		`(?::(?:(?::` + v6seg + `){0,5}:` + v4 + `|(?::` + v6seg + `){1,7}|:))`,
	}
	return `(?:` + strings.Join(lines, "|") + `)(?:%[0-9a-zA-Z]{1,})?`
}

func urlSource() string {
	const (
		protocol = `(?:(?:[a-z]+:)?//)`
		auth     = `(?:\S+(?::\S*)?@)?`
		host     = `(?:(?:[a-z\x{00a1}-\x{ffff}0-9][-_]*)*[a-z\x{00a1}-\x{ffff}0-9]+)`
		domain   = `(?:\.(?:[a-z\x{00a1}-\x{ffff}0-9]-*)*[a-z\x{00a1}-\x{ffff}0-9]+)*`
		tld      = `(?:\.(?:[a-z\x{00a1}-\x{ffff}]{2,}))`
		port     = `(?::\d{2,5})?`
		path     = `(?:[/?#][^\s"]*)?`
	)
	return `(?:` + protocol + `|www\.)` + auth + `(?:localhost|` + v4 + `|` + v6() + `|` + host + domain + tld + `)` + port + path
}
