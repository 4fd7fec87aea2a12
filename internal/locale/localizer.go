package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/vedasos/support-bot/internal/domain"
)

//go:embed locales/*.json
var localedata embed.FS

const (
	Ru = "RU"
	Uz = "UZ"
)

// Supported lists the languages with a bundled catalog.
var Supported = []string{Ru, Uz}

var tags = map[string]language.Tag{
	Ru: language.Russian,
	Uz: language.Uzbek,
}

// IsSupported reports whether lang has a bundled catalog.
func IsSupported(lang string) bool {
	_, ok := tags[strings.ToUpper(lang)]
	return ok
}

// Resolver renders localized messages. Bundles are loaded once at startup and
// never mutated afterwards, so Resolve is safe for concurrent use.
type Resolver struct {
	defaultLang string
	localizers  map[string]*i18n.Localizer
	logger      domain.Logger
}

// NewResolver loads the embedded catalogs and builds one localizer per
// supported language. A catalog that fails to load yields an empty bundle for
// that language, not a startup failure.
func NewResolver(defaultLang string, log domain.Logger) (*Resolver, error) {
	defaultLang = strings.ToUpper(defaultLang)
	defaultTag, ok := tags[defaultLang]
	if !ok {
		return nil, fmt.Errorf("unsupported default language %q", defaultLang)
	}

	bundle := i18n.NewBundle(defaultTag)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, lang := range Supported {
		name := fmt.Sprintf("locales/%s.json", strings.ToLower(lang))
		data, err := localedata.ReadFile(name)
		if err != nil {
			log.Error("locale catalog missing", "language", lang, "file", name, "error", err)
			continue
		}
		if _, err := bundle.ParseMessageFileBytes(data, strings.ToLower(lang)+".json"); err != nil {
			log.Error("locale catalog unreadable", "language", lang, "file", name, "error", err)
			continue
		}
		log.Info("locale catalog loaded", "language", lang)
	}

	localizers := make(map[string]*i18n.Localizer, len(Supported))
	for _, lang := range Supported {
		localizers[lang] = i18n.NewLocalizer(bundle, tags[lang].String(), defaultTag.String())
	}

	return &Resolver{
		defaultLang: defaultLang,
		localizers:  localizers,
		logger:      log,
	}, nil
}

// Resolve renders the message for key in the given language. An unknown
// language falls back to the default language, and a key absent from both
// catalogs degrades to a visible placeholder instead of failing the caller.
// {name} placeholders are substituted from params; placeholders without a
// matching param stay verbatim.
func (r *Resolver) Resolve(lang, key string, params map[string]string) string {
	loc, ok := r.localizers[strings.ToUpper(lang)]
	if !ok {
		loc = r.localizers[r.defaultLang]
	}

	msg, err := loc.Localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil && msg == "" {
		r.logger.Error("localization key missing", "language", lang, "key", key)
		return fmt.Sprintf("[Missing translation: %s]", key)
	}

	for name, value := range params {
		msg = strings.ReplaceAll(msg, "{"+name+"}", value)
	}

	return msg
}
