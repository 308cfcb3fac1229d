package helpers

import "github.com/microcosm-cc/bluemonday"

// descriptionPolicy allows basic formatting markup and nothing else;
// in particular no attributes, so no event handlers or links survive.
var descriptionPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "i", "em", "strong", "p", "ul", "ol", "li", "br")
	return p
}()

// SanitizeDescription strips everything but harmless formatting tags
// from organizer-supplied HTML before it is stored.
func SanitizeDescription(s string) string {
	return descriptionPolicy.Sanitize(s)
}
