package voxscribe

import (
	"sort"
	"strings"
)

// languages is the whisper.cpp language set, code -> full name. Keep in sync
// with the model's tokenizer; the engine rejects codes outside this set.
var languages = map[string]string{
	"en": "english", "zh": "chinese", "de": "german", "es": "spanish",
	"ru": "russian", "ko": "korean", "fr": "french", "ja": "japanese",
	"pt": "portuguese", "tr": "turkish", "pl": "polish", "ca": "catalan",
	"nl": "dutch", "ar": "arabic", "sv": "swedish", "it": "italian",
	"id": "indonesian", "hi": "hindi", "fi": "finnish", "vi": "vietnamese",
	"he": "hebrew", "uk": "ukrainian", "el": "greek", "ms": "malay",
	"cs": "czech", "ro": "romanian", "da": "danish", "hu": "hungarian",
	"ta": "tamil", "no": "norwegian", "th": "thai", "ur": "urdu",
	"hr": "croatian", "bg": "bulgarian", "lt": "lithuanian", "la": "latin",
	"mi": "maori", "ml": "malayalam", "cy": "welsh", "sk": "slovak",
	"te": "telugu", "fa": "persian", "lv": "latvian", "bn": "bengali",
	"sr": "serbian", "az": "azerbaijani", "sl": "slovenian", "kn": "kannada",
	"et": "estonian", "mk": "macedonian", "br": "breton", "eu": "basque",
	"is": "icelandic", "hy": "armenian", "ne": "nepali", "mn": "mongolian",
	"bs": "bosnian", "kk": "kazakh", "sq": "albanian", "sw": "swahili",
	"gl": "galician", "mr": "marathi", "pa": "punjabi", "si": "sinhala",
	"km": "khmer", "sn": "shona", "yo": "yoruba", "so": "somali",
	"af": "afrikaans", "oc": "occitan", "ka": "georgian", "be": "belarusian",
	"tg": "tajik", "sd": "sindhi", "gu": "gujarati", "am": "amharic",
	"yi": "yiddish", "lo": "lao", "uz": "uzbek", "fo": "faroese",
	"ht": "haitian creole", "ps": "pashto", "tk": "turkmen", "nn": "nynorsk",
	"mt": "maltese", "sa": "sanskrit", "lb": "luxembourgish", "my": "myanmar",
	"bo": "tibetan", "tl": "tagalog", "mg": "malagasy", "as": "assamese",
	"tt": "tatar", "haw": "hawaiian", "ln": "lingala", "ha": "hausa",
	"ba": "bashkir", "jw": "javanese", "su": "sundanese", "yue": "cantonese",
}

// languageNames maps full names back to codes, built once at init.
var languageNames = func() map[string]string {
	m := make(map[string]string, len(languages))
	for code, name := range languages {
		m[name] = code
	}
	return m
}()

// normalizeLanguage resolves a user-supplied language to a short code.
// Accepts short codes ("en", "de"), full names ("english", "german"), or
// "auto"/"" for detection (returned as ""). Unknown languages return ok=false.
func normalizeLanguage(lang string) (code string, ok bool) {
	l := strings.ToLower(strings.TrimSpace(lang))
	if l == "" || l == "auto" {
		return "", true
	}
	if _, exists := languages[l]; exists {
		return l, true
	}
	if code, exists := languageNames[l]; exists {
		return code, true
	}
	return "", false
}

// LanguageInfo is one supported language.
type LanguageInfo struct {
	Code string
	Name string
}

// SupportedLanguages lists every language the engine accepts, sorted by code.
func SupportedLanguages() []LanguageInfo {
	out := make([]LanguageInfo, 0, len(languages))
	for code, name := range languages {
		out = append(out, LanguageInfo{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
