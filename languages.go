package tranzlate

import (
	"strings"

	"golang.org/x/text/language"
)

// RTLLanguages contains base language codes written right to left.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
}

// baseLanguage returns the lower-case base subtag of code ("zh" for "zh-Hans").
func baseLanguage(code string) string {
	if tag, err := language.Parse(code); err == nil {
		base, _ := tag.Base()
		return base.String()
	}
	base := strings.FieldsFunc(code, func(r rune) bool { return r == '-' || r == '_' })
	if len(base) == 0 {
		return ""
	}
	return strings.ToLower(base[0])
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(code string) string {
	if RTLLanguages[baseLanguage(code)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(code string) bool {
	return GetDirection(code) == "rtl"
}

// ToHTMLLang converts a code to HTML lang attribute form (e.g., "pt_BR" → "pt-BR").
func ToHTMLLang(code string) string {
	return strings.ReplaceAll(code, "_", "-")
}

// IsAuto reports whether code asks for source language detection.
func IsAuto(code string) bool {
	return strings.EqualFold(strings.TrimSpace(code), AutoDetect)
}
