// Package sanitizer cleans user-supplied text before it reaches an email body.
package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	emailPolicy  *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		// Mail clients ignore most CSS and scripts anyway; keep the
		// formatting markdown can produce and nothing else.
		emailPolicy = bluemonday.NewPolicy()
		emailPolicy.AllowStandardURLs()
		emailPolicy.AllowURLSchemes("http", "https", "mailto")
		emailPolicy.AllowElements(
			"p", "br", "hr",
			"strong", "b", "em", "i", "del",
			"ul", "ol", "li",
			"code", "pre", "blockquote",
			"h1", "h2", "h3", "h4",
		)
		emailPolicy.AllowAttrs("href").OnElements("a")
		emailPolicy.RequireNoFollowOnLinks(true)
		emailPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	})
}

// StripHTML removes every tag and returns plain text.
func StripHTML(s string) string {
	initPolicies()
	return strictPolicy.Sanitize(s)
}

// SanitizeHTML keeps basic formatting tags (paragraphs, emphasis, lists, code, links)
// and strips scripts, event handlers, styles, and javascript: URLs.
func SanitizeHTML(s string) string {
	initPolicies()
	return emailPolicy.Sanitize(s)
}

// SanitizeHTMLCustom applies a custom bluemonday policy.
// Returns input unchanged if policy is nil.
func SanitizeHTMLCustom(s string, policy *bluemonday.Policy) string {
	if policy == nil {
		return s
	}
	return policy.Sanitize(s)
}
