package token

import (
	"fmt"
	"sort"

	"github.com/thisisjab/myn/fault"
)

// KeywordID is the meaning of a keyword, independent of the spelling currently reserved for it.
type KeywordID uint8

const (
	NoKeyword KeywordID = iota

	Myn
	Fun
	While
	For
	Class
	Switch
	Break
	Case
	True
	False
	Public
	Private
	Protected
	Enum
	Void
	This
	Throw
	Try
	Catch
	Import
	Continue
	Pass
	Null
	If
	Elif
	Else
	Static
	Return
	Input
	Output

	// Primitive types
	IntType
	FloatType
	BoolType
	StringType

	keywordCount
)

// canonical spellings. These are the reserved words of a table that was never rebuilt and
// the keys accepted by Rebuild.
var canonical = [keywordCount]string{
	NoKeyword:  "",
	Myn:        "myn",
	Fun:        "fun",
	While:      "while",
	For:        "for",
	Class:      "class",
	Switch:     "switch",
	Break:      "break",
	Case:       "case",
	True:       "true",
	False:      "false",
	Public:     "public",
	Private:    "private",
	Protected:  "protected",
	Enum:       "enum",
	Void:       "void",
	This:       "this",
	Throw:      "throw",
	Try:        "try",
	Catch:      "catch",
	Import:     "import",
	Continue:   "continue",
	Pass:       "pass",
	Null:       "null",
	If:         "if",
	Elif:       "elif",
	Else:       "else",
	Static:     "static",
	Return:     "return",
	Input:      "input",
	Output:     "output",
	IntType:    "int",
	FloatType:  "float",
	BoolType:   "bool",
	StringType: "string",
}

var byCanonical = func() map[string]KeywordID {
	m := make(map[string]KeywordID, keywordCount)
	for kw := Myn; kw < keywordCount; kw++ {
		m[canonical[kw]] = kw
	}
	return m
}()

// String returns the canonical spelling of the keyword.
func (k KeywordID) String() string {
	if k < keywordCount {
		return canonical[k]
	}
	return fmt.Sprintf("keyword(%d)", uint8(k))
}

func (k KeywordID) IsPrimitiveType() bool {
	switch k {
	case IntType, FloatType, BoolType, StringType:
		return true
	default:
		return false
	}
}

// LookupKeyword finds a keyword identity by its canonical spelling.
func LookupKeyword(name string) (KeywordID, bool) {
	kw, ok := byCanonical[name]
	return kw, ok
}

// Keywords returns every keyword identity in declaration order.
func Keywords() []KeywordID {
	kws := make([]KeywordID, 0, keywordCount-1)
	for kw := Myn; kw < keywordCount; kw++ {
		kws = append(kws, kw)
	}
	return kws
}

// IsIdentifier reports whether s has the shape of an identifier: a letter or underscore
// followed by letters, digits or underscores.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Table maps reserved spellings to keyword identities. A Table must not be rebuilt while a
// lexer is reading it; use Clone to give each concurrent pipeline its own copy.
type Table struct {
	spellings map[string]KeywordID
}

// NewTable returns a table with every keyword reserved under its canonical spelling.
func NewTable() *Table {
	t := &Table{}
	t.reset(nil)
	return t
}

func (t *Table) Lookup(spelling string) (KeywordID, bool) {
	kw, ok := t.spellings[spelling]
	return kw, ok
}

// SpellingOf returns the spelling currently reserved for kw. A keyword whose canonical spelling
// was claimed by another keyword's override has no spelling.
func (t *Table) SpellingOf(kw KeywordID) (string, bool) {
	for s, k := range t.spellings {
		if k == kw {
			return s, true
		}
	}
	return "", false
}

// Spellings returns the reserved spellings in sorted order.
func (t *Table) Spellings() []string {
	res := make([]string, 0, len(t.spellings))
	for s := range t.spellings {
		res = append(res, s)
	}
	sort.Strings(res)
	return res
}

// Overrides returns the mapping that rebuilds this table from the defaults: every reserved
// spelling that differs from its keyword's canonical spelling, keyed by that canonical spelling.
func (t *Table) Overrides() map[string]string {
	res := make(map[string]string)
	for s, kw := range t.spellings {
		if s != canonical[kw] {
			res[canonical[kw]] = s
		}
	}
	return res
}

func (t *Table) Clone() *Table {
	c := &Table{spellings: make(map[string]KeywordID, len(t.spellings))}
	for s, kw := range t.spellings {
		c.spellings[s] = kw
	}
	return c
}

// Rebuild replaces the whole table. Keys of overrides are canonical keyword spellings and values
// are the spellings that replace them. Keywords not named in overrides keep their canonical
// spelling unless an override claimed it. On error the table is left untouched.
func (t *Table) Rebuild(overrides map[string]string) error {
	if err := ValidateOverrides(overrides); err != nil {
		return err
	}

	t.reset(overrides)

	return nil
}

func (t *Table) reset(overrides map[string]string) {
	spellings := make(map[string]KeywordID, keywordCount)

	for key, value := range overrides {
		kw, _ := LookupKeyword(key)
		spellings[value] = kw
	}

	for kw := Myn; kw < keywordCount; kw++ {
		if _, overridden := overrides[canonical[kw]]; overridden {
			continue
		}
		if _, claimed := spellings[canonical[kw]]; claimed {
			continue
		}
		spellings[canonical[kw]] = kw
	}

	t.spellings = spellings
}

// ValidateOverrides checks a keyword mapping before it is handed to Rebuild.
func ValidateOverrides(overrides map[string]string) error {
	fields := fault.FieldErrorsMetadata{}
	seen := make(map[string]string, len(overrides))

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := overrides[key]
		if _, ok := LookupKeyword(key); !ok {
			fields[key] = append(fields[key], "Unknown keyword.")
			continue
		}
		if !IsIdentifier(value) {
			fields[key] = append(fields[key], fmt.Sprintf("Spelling %q is not a valid identifier.", value))
			continue
		}
		if IsLogicalWord(value) {
			fields[key] = append(fields[key], fmt.Sprintf("Spelling %q is a logical operator.", value))
			continue
		}
		if other, dup := seen[value]; dup {
			fields[key] = append(fields[key], fmt.Sprintf("Spelling %q is already used by %q.", value, other))
			continue
		}
		seen[value] = key
	}

	if len(fields) > 0 {
		return fault.New(fault.ConfigurationCode, "invalid keyword configuration").WithMetadata(fields)
	}

	return nil
}
