// Package i18n provides the UI label sets for each supported language.
package i18n

import (
	"embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

const (
	Hebrew  = "he"
	English = "en"

	DefaultLang = Hebrew
)

// Choice is one entry of the language selector. Code is the short name the
// selector shows, Lang the label set it maps to.
type Choice struct {
	Code string
	Lang string
}

// Choices lists the selector entries in display order.
var Choices = []Choice{{Code: "IL", Lang: Hebrew}, {Code: "EN", Lang: English}}

// Set is one language's labels plus its text direction.
type Set struct {
	Lang      string            `yaml:"-"`
	Direction string            `yaml:"direction"`
	Labels    map[string]string `yaml:"labels"`
}

// T returns the label for key, or the key itself when the set lacks it.
func (s *Set) T(key string) string {
	if v, ok := s.Labels[key]; ok {
		return v
	}
	return key
}

// RTL reports whether the language is written right to left.
func (s *Set) RTL() bool { return s.Direction == "rtl" }

var (
	loadOnce sync.Once
	sets     map[string]*Set
	loadErr  error
)

func load() {
	sets = make(map[string]*Set)
	for _, lang := range []string{Hebrew, English} {
		data, err := localeFS.ReadFile("locales/" + lang + ".yaml")
		if err != nil {
			loadErr = fmt.Errorf("read %s labels: %w", lang, err)
			return
		}
		set := &Set{}
		if err := yaml.Unmarshal(data, set); err != nil {
			loadErr = fmt.Errorf("parse %s labels: %w", lang, err)
			return
		}
		set.Lang = lang
		sets[lang] = set
	}
}

// Labels returns the set for lang. Unknown languages fall back to the default.
func Labels(lang string) (*Set, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	if s, ok := sets[lang]; ok {
		return s, nil
	}
	return sets[DefaultLang], nil
}

// Supported reports whether lang has a label set.
func Supported(lang string) bool {
	return lang == Hebrew || lang == English
}

// Normalize maps selector codes (IL, EN) and language names to a supported
// language, falling back to the default.
func Normalize(s string) string {
	for _, c := range Choices {
		if s == c.Code || s == c.Lang {
			return c.Lang
		}
	}
	return DefaultLang
}

// Keys returns the sorted label keys of lang.
func Keys(lang string) ([]string, error) {
	set, err := Labels(lang)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(set.Labels))
	for k := range set.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
