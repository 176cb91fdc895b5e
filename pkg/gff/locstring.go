package gff

import (
	"slices"

	"golang.org/x/text/language"
)

// NoStrRef marks a localized string that does not reference the talk table.
const NoStrRef uint32 = 0xFFFFFFFF

// Language is the engine's numeric language identifier.
type Language uint32

// Languages known to the engine.
const (
	LangEnglish            Language = 0
	LangFrench             Language = 1
	LangGerman             Language = 2
	LangItalian            Language = 3
	LangSpanish            Language = 4
	LangPolish             Language = 5
	LangKorean             Language = 128
	LangChineseTraditional Language = 129
	LangChineseSimplified  Language = 130
	LangJapanese           Language = 131
)

var languageTags = map[Language]language.Tag{
	LangEnglish:            language.English,
	LangFrench:             language.French,
	LangGerman:             language.German,
	LangItalian:            language.Italian,
	LangSpanish:            language.Spanish,
	LangPolish:             language.Polish,
	LangKorean:             language.Korean,
	LangChineseTraditional: language.TraditionalChinese,
	LangChineseSimplified:  language.SimplifiedChinese,
	LangJapanese:           language.Japanese,
}

// Tag returns the BCP 47 tag for l, or language.Und for unknown identifiers.
func (l Language) Tag() language.Tag {
	if t, ok := languageTags[l]; ok {
		return t
	}
	return language.Und
}

// String returns the BCP 47 form of the language.
func (l Language) String() string { return l.Tag().String() }

var languageMatcher = func() language.Matcher {
	tags := make([]language.Tag, 0, len(languageTags))
	for _, l := range sortedLanguages() {
		tags = append(tags, languageTags[l])
	}
	return language.NewMatcher(tags)
}()

func sortedLanguages() []Language {
	ls := make([]Language, 0, len(languageTags))
	for l := range languageTags {
		ls = append(ls, l)
	}
	slices.Sort(ls)
	return ls
}

// LanguageFromTag returns the engine language that best matches tag.
// The second result is false, and English is returned, unless the match is
// of high confidence and keeps the base language of tag. The matcher falls
// back to English for unrelated languages such as Swahili.
func LanguageFromTag(tag language.Tag) (Language, bool) {
	_, idx, conf := languageMatcher.Match(tag)
	if conf < language.High {
		return LangEnglish, false
	}
	l := sortedLanguages()[idx]
	want, _ := tag.Base()
	if got, _ := l.Tag().Base(); got != want {
		return LangEnglish, false
	}
	return l, true
}

// Gender selects the grammatical variant of a localized string.
type Gender uint32

const (
	Male   Gender = 0
	Female Gender = 1
)

// SubstringID combines a language and gender into the on-disk key.
func SubstringID(l Language, g Gender) uint32 { return uint32(l)*2 + uint32(g) }

// SplitSubstringID is the inverse of SubstringID.
func SplitSubstringID(id uint32) (Language, Gender) {
	return Language(id / 2), Gender(id % 2)
}

// LocSubstring is one language/gender variant of a localized string.
type LocSubstring struct {
	ID   uint32 // language*2 + gender
	Text string
}

// LocString is a localized string: an optional talk-table reference plus
// inline variants keyed by language and gender. Variants keep their order so
// that an unmodified string is written back byte-for-byte.
type LocString struct {
	StrRef  uint32
	Strings []LocSubstring
}

// NewLocString returns a localized string with a single English (male) variant
// and no talk-table reference.
func NewLocString(text string) LocString {
	ls := LocString{StrRef: NoStrRef}
	if text != "" {
		ls.Set(LangEnglish, Male, text)
	}
	return ls
}

// Get returns the variant for the given language and gender.
func (ls LocString) Get(l Language, g Gender) (string, bool) {
	id := SubstringID(l, g)
	for _, s := range ls.Strings {
		if s.ID == id {
			return s.Text, true
		}
	}
	return "", false
}

// Set stores text for the given language and gender. An existing variant is
// updated in place; a new one is inserted in ascending ID order.
func (ls *LocString) Set(l Language, g Gender, text string) {
	id := SubstringID(l, g)
	for i := range ls.Strings {
		if ls.Strings[i].ID == id {
			ls.Strings[i].Text = text
			return
		}
	}
	at, _ := slices.BinarySearchFunc(ls.Strings, id, func(s LocSubstring, id uint32) int {
		return int(int64(s.ID) - int64(id))
	})
	ls.Strings = slices.Insert(ls.Strings, at, LocSubstring{ID: id, Text: text})
}

// Delete removes the variant for the given language and gender, if any.
func (ls *LocString) Delete(l Language, g Gender) {
	id := SubstringID(l, g)
	ls.Strings = slices.DeleteFunc(ls.Strings, func(s LocSubstring) bool { return s.ID == id })
}

// Default returns the English male variant if present, otherwise the first
// variant, otherwise the empty string.
func (ls LocString) Default() string {
	if s, ok := ls.Get(LangEnglish, Male); ok {
		return s
	}
	if len(ls.Strings) > 0 {
		return ls.Strings[0].Text
	}
	return ""
}

// IsEmpty reports whether the string has neither a talk-table reference nor
// any inline variants.
func (ls LocString) IsEmpty() bool {
	return ls.StrRef == NoStrRef && len(ls.Strings) == 0
}

// Clone returns a deep copy of ls.
func (ls LocString) Clone() LocString {
	return LocString{StrRef: ls.StrRef, Strings: slices.Clone(ls.Strings)}
}

// Equal reports whether two localized strings are identical, including
// variant order.
func (ls LocString) Equal(other LocString) bool {
	return ls.StrRef == other.StrRef && slices.Equal(ls.Strings, other.Strings)
}
