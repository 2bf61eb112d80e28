// Package i18n provides localized user-facing error messages.
//
// Cap and insufficiency rejections are surfaced directly to players as
// gameplay feedback, so every code in the catalog names the specific
// resource or limit involved rather than a generic failure.
package i18n

import (
	"strings"
	"text/template"

	"golang.org/x/text/language"
)

// Code mirrors the machine-readable error code as a plain string.
// The codes are duplicated from the errors package to avoid an import cycle.
type Code = string

// Catalog holds localized message templates for one locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

// Locale returns the BCP 47 locale tag for this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template for code with the given metadata.
// Unknown codes fall back to a generic message; template failures fall
// back to the raw template text.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	raw, ok := c.messages[code]
	if !ok {
		return "Something went wrong"
	}
	if !strings.Contains(raw, "{{") {
		return raw
	}

	tmpl, err := template.New(code).Parse(raw)
	if err != nil {
		return raw
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, metadata); err != nil {
		return raw
	}
	return sb.String()
}

var catalogs = []*Catalog{enUSCatalog}

var matcher = language.NewMatcher(func() []language.Tag {
	tags := make([]language.Tag, 0, len(catalogs))
	for _, c := range catalogs {
		tags = append(tags, language.Make(c.locale))
	}
	return tags
}())

// GetCatalog returns the best catalog for the requested locale,
// falling back to en-US when nothing closer matches.
func GetCatalog(locale string) *Catalog {
	_, index, _ := matcher.Match(language.Make(locale))
	if index < 0 || index >= len(catalogs) {
		return enUSCatalog
	}
	return catalogs[index]
}
