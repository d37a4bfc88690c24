package engine

import "strings"

// LanguageNames maps language codes to human-readable names for LLM prompts.
var LanguageNames = map[string]string{
	"af":    "Afrikaans",
	"am":    "Amharic",
	"ar":    "Arabic",
	"az":    "Azerbaijani",
	"be":    "Belarusian",
	"bg":    "Bulgarian",
	"bn":    "Bengali",
	"bs":    "Bosnian",
	"ca":    "Catalan",
	"cs":    "Czech",
	"cy":    "Welsh",
	"da":    "Danish",
	"de":    "German",
	"el":    "Greek",
	"en":    "English",
	"eo":    "Esperanto",
	"es":    "Spanish",
	"et":    "Estonian",
	"eu":    "Basque",
	"fa":    "Persian",
	"fi":    "Finnish",
	"fr":    "French",
	"ga":    "Irish",
	"gl":    "Galician",
	"gu":    "Gujarati",
	"ha":    "Hausa",
	"he":    "Hebrew",
	"hi":    "Hindi",
	"hr":    "Croatian",
	"hu":    "Hungarian",
	"hy":    "Armenian",
	"id":    "Indonesian",
	"ig":    "Igbo",
	"is":    "Icelandic",
	"it":    "Italian",
	"ja":    "Japanese",
	"ka":    "Georgian",
	"kk":    "Kazakh",
	"km":    "Khmer",
	"kn":    "Kannada",
	"ko":    "Korean",
	"lt":    "Lithuanian",
	"lv":    "Latvian",
	"mk":    "Macedonian",
	"ml":    "Malayalam",
	"mn":    "Mongolian",
	"mr":    "Marathi",
	"ms":    "Malay",
	"mt":    "Maltese",
	"my":    "Burmese",
	"ne":    "Nepali",
	"nl":    "Dutch",
	"no":    "Norwegian",
	"pa":    "Punjabi",
	"pl":    "Polish",
	"ps":    "Pashto",
	"pt":    "Portuguese",
	"ro":    "Romanian",
	"ru":    "Russian",
	"sd":    "Sindhi",
	"si":    "Sinhala",
	"sk":    "Slovak",
	"sl":    "Slovenian",
	"so":    "Somali",
	"sq":    "Albanian",
	"sr":    "Serbian",
	"sv":    "Swedish",
	"sw":    "Swahili",
	"ta":    "Tamil",
	"te":    "Telugu",
	"th":    "Thai",
	"tl":    "Tagalog",
	"tr":    "Turkish",
	"ug":    "Uyghur",
	"uk":    "Ukrainian",
	"ur":    "Urdu",
	"uz":    "Uzbek",
	"vi":    "Vietnamese",
	"xh":    "Xhosa",
	"yo":    "Yoruba",
	"zh-CN": "Chinese (Simplified)",
	"zh-TW": "Chinese (Traditional)",
	"zu":    "Zulu",
}

// GetLanguageName returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(code string) string {
	if name, ok := LanguageNames[code]; ok {
		return name
	}
	base := strings.SplitN(strings.ReplaceAll(code, "_", "-"), "-", 2)[0]
	if name, ok := LanguageNames[strings.ToLower(base)]; ok {
		return name
	}
	return code
}

// googleLanguages is the code list served by the public Google endpoint.
var googleLanguages = []string{
	"af", "am", "ar", "az", "be", "bg", "bn", "bs", "ca", "ceb", "co", "cs", "cy", "da",
	"de", "el", "en", "eo", "es", "et", "eu", "fa", "fi", "fr", "fy", "ga", "gd", "gl",
	"gu", "ha", "haw", "he", "hi", "hmn", "hr", "ht", "hu", "hy", "id", "ig", "is", "it",
	"ja", "jw", "ka", "kk", "km", "kn", "ko", "ku", "ky", "la", "lb", "lo", "lt", "lv",
	"mg", "mi", "mk", "ml", "mn", "mr", "ms", "mt", "my", "ne", "nl", "no", "ny", "or",
	"pa", "pl", "ps", "pt", "ro", "ru", "rw", "sd", "si", "sk", "sl", "sm", "sn", "so",
	"sq", "sr", "st", "su", "sv", "sw", "ta", "te", "tg", "th", "tk", "tl", "tr", "tt",
	"ug", "uk", "ur", "uz", "vi", "xh", "yi", "yo", "zh-CN", "zh-TW", "zu",
}

// myMemoryLanguages is the subset MyMemory serves reliably.
var myMemoryLanguages = []string{
	"en", "es", "fr", "de", "it", "pt", "ru", "ja", "ko", "zh-CN",
	"ar", "nl", "pl", "tr", "sv", "da", "no", "fi", "el", "he",
	"th", "vi", "id", "ms", "cs", "hu", "ro", "uk", "bg", "ca", "yo",
}

// llmLanguages returns the codes an LLM engine is prompted with.
func llmLanguages() []string {
	codes := make([]string, 0, len(LanguageNames))
	for code := range LanguageNames {
		codes = append(codes, code)
	}
	return codes
}
