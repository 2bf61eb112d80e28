package i18n

import "testing"

func TestFormatRendersMetadata(t *testing.T) {
	catalog := GetCatalog("en-US")
	got := catalog.Format(CodeArcSlotsExhausted, map[string]string{
		"Used": "2",
		"Cap":  "2",
	})
	want := "You have used 2 of 2 storyline moves today, try again tomorrow"
	if got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}
}

func TestFormatPlainMessage(t *testing.T) {
	catalog := GetCatalog("en-US")
	if got := catalog.Format(CodeBoostAlreadySent, nil); got != "You already sent a boost today" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestFormatUnknownCode(t *testing.T) {
	catalog := GetCatalog("en-US")
	if got := catalog.Format("NO_SUCH_CODE", nil); got != "Something went wrong" {
		t.Fatalf("unexpected fallback %q", got)
	}
}

func TestFormatMissingMetadataFallsBackToTemplate(t *testing.T) {
	catalog := GetCatalog("en-US")
	got := catalog.Format(CodeOfferExpired, nil)
	if got != "This opportunity expired on day <no value>" && got != "This opportunity expired on day {{.ExpiresOnDay}}" {
		t.Fatalf("unexpected rendering %q", got)
	}
}

func TestGetCatalogFallsBackToEnglish(t *testing.T) {
	tests := []string{"", "fr-FR", "pt-BR", "nonsense"}
	for _, locale := range tests {
		if got := GetCatalog(locale); got.Locale() != "en-US" {
			t.Fatalf("GetCatalog(%q) = %s, want en-US", locale, got.Locale())
		}
	}
}
