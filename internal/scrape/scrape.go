// Package scrape extracts login-form fields, CSRF tokens, and checkout
// details from upstream HTML pages. Parsing is tolerant: malformed markup
// yields empty results, never errors, because the caller classifies an
// unusable page as an upstream failure anyway.
package scrape

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Input is a discovered form input.
type Input struct {
	Name  string
	Value string
}

var registrationIDPattern = regexp.MustCompile(`'rgid':\s*'([^']+)'`)

// CSRFToken locates the page's CSRF token: first a meta tag named
// "csrf-token", then any input whose name mentions csrf or token.
func CSRFToken(body string) string {
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return ""
	}

	var fromInput string
	var token string
	walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		switch n.Data {
		case "meta":
			if attr(n, "name") == "csrf-token" {
				if content := attr(n, "content"); content != "" {
					token = content
					return false
				}
			}
		case "input":
			name := strings.ToLower(attr(n, "name"))
			if fromInput == "" && (strings.Contains(name, "csrf") || strings.Contains(name, "token")) {
				fromInput = attr(n, "value")
			}
		}
		return true
	})

	if token != "" {
		return token
	}
	return fromInput
}

// InputNameByID returns the name attribute of the element carrying the given
// DOM id, or "" when absent.
func InputNameByID(body, id string) string {
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return ""
	}

	var name string
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			name = attr(n, "name")
			return false
		}
		return true
	})
	return name
}

// HiddenInputs returns up to max hidden form inputs in document order.
// Inputs without a name are skipped.
func HiddenInputs(body string, max int) []Input {
	if max <= 0 {
		return nil
	}
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var out []Input
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "input" && attr(n, "type") == "hidden" {
			if name := attr(n, "name"); name != "" {
				out = append(out, Input{Name: name, Value: attr(n, "value")})
				if len(out) >= max {
					return false
				}
			}
		}
		return true
	})
	return out
}

// CheckoutUsername scrapes the checkout details table for the row labeled
// "Username" and returns its value, or "" when the row is absent.
func CheckoutUsername(body string) string {
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return ""
	}

	var username string
	walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "div" || !hasClass(n, "details-row") {
			return true
		}

		var label, value string
		walk(n, func(c *html.Node) bool {
			if c.Type != html.ElementNode || c.Data != "div" {
				return true
			}
			if hasClass(c, "details-label") && label == "" {
				label = collapse(text(c))
			}
			if hasClass(c, "details-value") && value == "" {
				value = collapse(text(c))
			}
			return true
		})

		if strings.Contains(label, "Username") && value != "" {
			username = value
			return false
		}
		return true
	})
	return username
}

// RegistrationID extracts the registration id embedded in the protected
// page's inline script, or "" when absent.
func RegistrationID(body string) string {
	m := registrationIDPattern.FindStringSubmatch(body)
	if len(m) != 2 {
		return ""
	}
	return m[1]
}

// walk visits n and its descendants depth-first; fn returning false prunes
// the entire traversal.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func text(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
