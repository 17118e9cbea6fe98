package recovery

import (
	"testing"

	"golang.org/x/text/language"
)

func TestMessagesLanguageSelection(t *testing.T) {
	tests := []struct {
		in   string
		want language.Tag
	}{
		{in: "", want: language.Spanish},
		{in: "es-MX", want: language.Spanish},
		{in: "en", want: language.English},
		{in: "en-US,en;q=0.9,es;q=0.5", want: language.English},
		{in: "fr", want: language.Spanish},
	}
	for _, tt := range tests {
		if got := NewMessages(tt.in).Language(); got != tt.want {
			t.Errorf("NewMessages(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMessagesCatalogComplete(t *testing.T) {
	for _, lang := range []string{"es", "en"} {
		m := NewMessages(lang)
		for key := range translations[language.Spanish] {
			text := m.Text(key)
			if text == "" || text == string(key) {
				t.Errorf("%s: missing translation for %s", lang, key)
			}
		}
	}
	if len(translations[language.Spanish]) != len(translations[language.English]) {
		t.Fatal("languages must define the same keys")
	}
}

func TestMessagesText(t *testing.T) {
	if got := NewMessages("es").Text(MsgLicenseMissing); got != "Introduce tu clave de licencia." {
		t.Fatalf("es text = %q", got)
	}
	if got := NewMessages("en").Text(MsgLicenseMissing); got != "Enter your license key." {
		t.Fatalf("en text = %q", got)
	}
}
