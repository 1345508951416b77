package keyboard

import (
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/panels/pkg/errors"
)

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
	ModMeta
)

var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{ModCtrl, "ctrl"},
	{ModAlt, "alt"},
	{ModShift, "shift"},
	{ModMeta, "meta"},
}

var modifierAliases = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"opt":     ModAlt,
	"shift":   ModShift,
	"meta":    ModMeta,
	"cmd":     ModMeta,
	"command": ModMeta,
	"super":   ModMeta,
	"win":     ModMeta,
}

var keyAliases = map[string]string{
	"esc":        "escape",
	"return":     "enter",
	"del":        "delete",
	"bs":         "backspace",
	"arrowup":    "up",
	"arrowdown":  "down",
	"arrowleft":  "left",
	"arrowright": "right",
	"pgup":       "pageup",
	"pgdown":     "pagedown",
	"ins":        "insert",
	" ":          "space",
	"plus":       "+",
}

var namedKeys = map[string]bool{
	"tab": true, "enter": true, "escape": true, "delete": true, "backspace": true,
	"up": true, "down": true, "left": true, "right": true,
	"home": true, "end": true, "pageup": true, "pagedown": true,
	"insert": true, "space": true,
	"f1": true, "f2": true, "f3": true, "f4": true, "f5": true, "f6": true,
	"f7": true, "f8": true, "f9": true, "f10": true, "f11": true, "f12": true,
}

// Chord is a normalized key plus modifiers.
type Chord struct {
	Key  string
	Mods Modifier
}

// Has reports whether all of m are held.
func (c Chord) Has(m Modifier) bool { return c.Mods&m == m }

// String returns the canonical form, modifiers in ctrl, alt, shift, meta
// order followed by the key, joined by "+".
func (c Chord) String() string {
	var b strings.Builder
	for _, m := range modifierNames {
		if c.Mods&m.mod != 0 {
			b.WriteString(m.name)
			b.WriteByte('+')
		}
	}
	b.WriteString(c.Key)
	return b.String()
}

// ParseChord parses chords such as "Ctrl+Shift+Z", "shift+tab" or "A".
// Modifier and key names are case-insensitive and common aliases are
// accepted. A bare upper-case letter implies shift; with a modifier
// prefix the letter is only lower-cased, so "Ctrl+Z" is ctrl+z.
//
// Malformed chords fail with INVALID_CHORD and unknown keys with
// INVALID_KEY.
func ParseChord(s string) (Chord, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Chord{}, errors.New(errors.ErrCodeInvalidChord, "empty key chord")
	}

	var parts []string
	if strings.HasSuffix(raw, "++") {
		parts = append(strings.Split(strings.TrimSuffix(raw, "++"), "+"), "+")
	} else if raw == "+" {
		parts = []string{"+"}
	} else {
		parts = strings.Split(raw, "+")
	}

	var c Chord
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i < len(parts)-1 {
			m, ok := modifierAliases[strings.ToLower(p)]
			if !ok {
				return Chord{}, errors.New(errors.ErrCodeInvalidChord, "unknown modifier %q in %q", p, s)
			}
			c.Mods |= m
			continue
		}
		key, implied, err := normalizeKey(p)
		if err != nil {
			return Chord{}, err
		}
		c.Key = key
		if len(parts) == 1 {
			c.Mods |= implied
		}
	}
	return c, nil
}

// MustParseChord is ParseChord that panics on error.
func MustParseChord(s string) Chord {
	c, err := ParseChord(s)
	if err != nil {
		panic(err)
	}
	return c
}

// NormalizeChord returns the canonical string for s.
func NormalizeChord(s string) (string, error) {
	c, err := ParseChord(s)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

func normalizeKey(k string) (string, Modifier, error) {
	if k == "" {
		return "", 0, errors.New(errors.ErrCodeInvalidChord, "missing key")
	}
	if utf8.RuneCountInString(k) == 1 {
		lower := strings.ToLower(k)
		if lower != k {
			return lower, ModShift, nil
		}
		if alias, ok := keyAliases[k]; ok {
			return alias, 0, nil
		}
		return k, 0, nil
	}
	lower := strings.ToLower(k)
	if alias, ok := keyAliases[lower]; ok {
		lower = alias
	}
	if !namedKeys[lower] && utf8.RuneCountInString(lower) != 1 {
		return "", 0, errors.New(errors.ErrCodeInvalidKey, "unknown key %q", k)
	}
	return lower, 0, nil
}

// Event is a key press delivered by the input source.
type Event struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Alt   bool   `json:"alt,omitempty"`
	Shift bool   `json:"shift,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
	// InTextInput is set when focus is inside a text field.
	InTextInput bool `json:"inTextInput,omitempty"`
}

// Event returns a key event that normalizes back to c.
func (c Chord) Event() Event {
	return Event{
		Key:   c.Key,
		Ctrl:  c.Has(ModCtrl),
		Alt:   c.Has(ModAlt),
		Shift: c.Has(ModShift),
		Meta:  c.Has(ModMeta),
	}
}

// Chord normalizes the event. An upper-case key implies shift, since
// hosts only report one while shift is held.
func (e Event) Chord() (Chord, error) {
	key, implied, err := normalizeKey(e.Key)
	if err != nil {
		return Chord{}, err
	}
	c := Chord{Key: key, Mods: implied}
	if e.Ctrl {
		c.Mods |= ModCtrl
	}
	if e.Alt {
		c.Mods |= ModAlt
	}
	if e.Shift {
		c.Mods |= ModShift
	}
	if e.Meta {
		c.Mods |= ModMeta
	}
	return c, nil
}
