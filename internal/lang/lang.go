// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

// Package lang holds per-plugin message catalogs and formats player-facing
// text in the player's locale.
//
// Messages use positional placeholders ({0}, {1}, ...). Each plugin registers
// its base-locale messages on load; operators may override or translate them
// with YAML files laid out as <locale>/<Plugin>.yaml.
package lang

import (
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/oops"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the locale plugins register their default messages in.
const BaseLocale = "en"

var placeholder = regexp.MustCompile(`\{(\d+)\}`)

// Catalog stores messages per locale, namespaced by plugin.
// It is safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	builder  *catalog.Builder
	messages map[language.Tag]map[string]string // tag → plugin.key → raw text
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		builder:  catalog.NewBuilder(catalog.Fallback(language.English)),
		messages: make(map[language.Tag]map[string]string),
	}
}

// catalogFile is the on-disk override format.
type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

func messageKey(plugin, key string) string {
	return plugin + "." + key
}

// convert turns {n} placeholders into explicit fmt argument indexes.
func convert(text string) string {
	escaped := strings.ReplaceAll(text, "%", "%%")
	return placeholder.ReplaceAllStringFunc(escaped, func(m string) string {
		n, err := strconv.Atoi(m[1 : len(m)-1])
		if err != nil {
			return m
		}
		return "%[" + strconv.Itoa(n+1) + "]v"
	})
}

// RegisterMessages adds or replaces messages for plugin in locale.
func (c *Catalog) RegisterMessages(plugin, locale string, messages map[string]string) error {
	tag, err := language.Parse(locale)
	if err != nil {
		return oops.Code("INVALID_LOCALE").With("locale", locale).With("plugin", plugin).Wrap(err)
	}

	keys := make([]string, 0, len(messages))
	for key := range messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	c.mu.Lock()
	defer c.mu.Unlock()

	byKey, ok := c.messages[tag]
	if !ok {
		byKey = make(map[string]string)
		c.messages[tag] = byKey
	}
	for _, key := range keys {
		full := messageKey(plugin, key)
		if err := c.builder.SetString(tag, full, convert(messages[key])); err != nil {
			return oops.Code("INVALID_MESSAGE").With("key", full).With("locale", locale).Wrap(err)
		}
		byKey[full] = messages[key]
	}
	return nil
}

// RegisterDefaults registers the messages of plugin in locale that are not
// already defined, so operator overrides loaded earlier win.
func (c *Catalog) RegisterDefaults(plugin, locale string, messages map[string]string) error {
	tag, err := language.Parse(locale)
	if err != nil {
		return oops.Code("INVALID_LOCALE").With("locale", locale).With("plugin", plugin).Wrap(err)
	}

	missing := make(map[string]string, len(messages))
	c.mu.RLock()
	for key, text := range messages {
		if _, ok := c.messages[tag][messageKey(plugin, key)]; !ok {
			missing[key] = text
		}
	}
	c.mu.RUnlock()

	return c.RegisterMessages(plugin, locale, missing)
}

// LoadFS registers every <locale>/<Plugin>.yaml file in fsys.
// A missing directory is not an error.
func (c *Catalog) LoadFS(fsys fs.FS) error {
	paths, err := fs.Glob(fsys, "*/*.yaml")
	if err != nil {
		return oops.Code("LANG_LOAD_FAILED").Wrap(err)
	}
	sort.Strings(paths)

	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return oops.Code("LANG_LOAD_FAILED").With("path", p).Wrap(err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return oops.Code("LANG_LOAD_FAILED").With("path", p).Wrap(err)
		}

		locale := path.Base(path.Dir(p))
		namespace := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if file.Locale != "" && file.Locale != locale {
			return oops.Code("LANG_LOAD_FAILED").
				With("path", p).
				Errorf("catalog locale %q must match directory %q", file.Locale, locale)
		}
		if file.Namespace != "" && file.Namespace != namespace {
			return oops.Code("LANG_LOAD_FAILED").
				With("path", p).
				Errorf("catalog namespace %q must match file name %q", file.Namespace, namespace)
		}

		if err := c.RegisterMessages(namespace, locale, file.Messages); err != nil {
			return oops.With("path", p).Wrap(err)
		}
		slog.Debug("loaded message overrides", "path", p, "messages", len(file.Messages))
	}
	return nil
}

// resolve picks the tag to print key in: the requested locale when it
// defines key, otherwise the base locale.
func (c *Catalog) resolve(locale, key string) (language.Tag, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if tag, err := language.Parse(locale); err == nil {
		for t := tag; ; t = t.Parent() {
			if _, ok := c.messages[t][key]; ok {
				return t, true
			}
			if t == language.Und {
				break
			}
		}
	}
	base := language.MustParse(BaseLocale)
	_, ok := c.messages[base][key]
	return base, ok
}

// Message formats plugin's key in locale. Unknown keys return the key itself.
func (c *Catalog) Message(locale, plugin, key string, args ...any) string {
	full := messageKey(plugin, key)
	tag, ok := c.resolve(locale, full)
	if !ok {
		return key
	}
	return message.NewPrinter(tag, message.Catalog(c.builder)).Sprintf(full, args...)
}

// Raw returns the unformatted text for key in locale, if registered.
func (c *Catalog) Raw(locale, plugin, key string) (string, bool) {
	full := messageKey(plugin, key)
	tag, ok := c.resolve(locale, full)
	if !ok {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.messages[tag][full], true
}

// Locales returns the registered locales, sorted.
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.messages))
	for tag := range c.messages {
		out = append(out, tag.String())
	}
	sort.Strings(out)
	return out
}

