package i18n

import (
	"os"
	"strings"
	"sync"

	"lovedu_client/internal/store"
	"lovedu_client/internal/utils/broker"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

// StorageKey is where the chosen language is persisted.
const StorageKey = "language"

var matcher = language.NewMatcher([]language.Tag{language.English, language.Arabic})

// Preference owns the current UI language. Changes are persisted and announced on
// broker.TopicLanguage so every view can re-render.
type Preference struct {
	kv     store.KV
	broker *broker.Broker
	logger zerolog.Logger
	getenv func(string) string

	mu      sync.RWMutex
	current Lang
}

func NewPreference(kv store.KV, b *broker.Broker, logger zerolog.Logger) *Preference {
	return &Preference{
		kv:      kv,
		broker:  b,
		logger:  logger,
		getenv:  os.Getenv,
		current: Default,
	}
}

// Detect picks the saved language, then the system locale, then the default. Whatever it settles on
// is persisted when nothing was saved.
func (p *Preference) Detect() Lang {
	saved, ok, err := p.kv.Get(StorageKey)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Failed to read saved language")
	}
	if ok && Lang(saved).Valid() {
		p.apply(Lang(saved))
		return Lang(saved)
	}

	lang := p.systemLang()
	if err := p.kv.Set(StorageKey, string(lang)); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to persist detected language")
	}
	p.apply(lang)
	return lang
}

func (p *Preference) Current() Lang {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

func (p *Preference) IsRTL() bool {
	return p.Current().IsRTL()
}

// Set persists lang and notifies subscribers.
func (p *Preference) Set(lang Lang) error {
	if !lang.Valid() {
		_, err := ParseLang(string(lang))
		return err
	}
	if err := p.kv.Set(StorageKey, string(lang)); err != nil {
		return err
	}
	p.apply(lang)
	p.broker.Publish(broker.Event{Topic: broker.TopicLanguage, Key: StorageKey, Value: string(lang)})
	return nil
}

func (p *Preference) Subscribe() <-chan broker.Event {
	return p.broker.Subscribe(broker.TopicLanguage)
}

func (p *Preference) Unsubscribe(ch <-chan broker.Event) {
	p.broker.Unsubscribe(broker.TopicLanguage, ch)
}

func (p *Preference) apply(lang Lang) {
	p.mu.Lock()
	p.current = lang
	p.mu.Unlock()
}

// systemLang reads the POSIX locale variables in precedence order.
func (p *Preference) systemLang() Lang {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		value := p.getenv(name)
		if value == "" {
			continue
		}
		if i := strings.IndexAny(value, ".@"); i >= 0 {
			value = value[:i]
		}
		tag, err := language.Parse(strings.ReplaceAll(value, "_", "-"))
		if err != nil {
			continue
		}
		_, idx, confidence := matcher.Match(tag)
		if confidence == language.No {
			return Default
		}
		return Supported[idx]
	}
	return Default
}
