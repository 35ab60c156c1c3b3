package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases and trims", "  Acme Corp  ", "acme corp"},
		{"strips bv suffix", "Jansen Bouw B.V.", "jansen bouw"},
		{"strips bv without dots", "Jansen Bouw BV", "jansen bouw"},
		{"strips nv suffix", "Philips N.V.", "philips"},
		{"strips gmbh", "Siemens GmbH", "siemens"},
		{"strips ltd", "Acme Ltd.", "acme"},
		{"strips inc", "Widgets Inc", "widgets"},
		{"strips llc", "Widgets LLC", "widgets"},
		{"noise chars become spaces", "Ruiter & Zonen", "ruiter zonen"},
		{"hyphens collapse", "Van der Berg-Groep", "van der berg groep"},
		{"punctuation collapses", "A.B. Transport, Rotterdam", "a b transport rotterdam"},
		{"quotes removed", `"De Boer" Logistiek`, "de boer logistiek"},
		{"diacritics folded", "Müller Één B.V.", "muller een"},
		{"suffix only mid-name kept", "BV Holding Amsterdam", "bv holding amsterdam"},
		{"empty input", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeStableAcrossSpellings(t *testing.T) {
	spellings := []string{
		"Jansen & Zonen B.V.",
		"jansen zonen",
		"Jansen-Zonen BV",
		"JANSEN & ZONEN",
	}
	want := Normalize(spellings[0])
	for _, s := range spellings[1:] {
		assert.Equal(t, want, Normalize(s), "spelling %q", s)
	}
}
