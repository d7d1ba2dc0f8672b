// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package acctportalcatalog provides the localization catalog: static tables
// mapping provider codes to English and French text, and for some tables a
// sort rank.
//
// A Catalog is loaded once at startup and is immutable afterwards. It is safe
// for concurrent use without locking.
//
// Each table is stored as a YAML file named <table>.yaml with the structure:
//
//	entries:
//	  - code: EQ
//	    en: Equities
//	    fr: Actions
//	    sort: 1
//
// The account type table additionally carries a sub_code on each entry and is
// looked up by the composite key <code>.<sub_code>.
package acctportalcatalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/bufdev/acctportal/internal/acctportal/acctportalerror"
	"gopkg.in/yaml.v3"
)

// Table identifies a localization table.
type Table string

const (
	// TableAccountStatus maps account status codes.
	TableAccountStatus Table = "account_status"
	// TableAccountType maps account type and sub-type code pairs.
	TableAccountType Table = "account_type"
	// TableAssetClass maps asset class codes, with a sort rank.
	TableAssetClass Table = "asset_class"
	// TableDealerType maps dealer type codes, with a sort rank.
	TableDealerType Table = "dealer_type"
	// TableFundCode maps fund (currency) codes.
	TableFundCode Table = "fund_code"
	// TablePortFlag maps port type flags.
	TablePortFlag Table = "port_flag"
	// TableRecipientType maps recipient type codes.
	TableRecipientType Table = "recipient_type"
	// TableTransactionCode maps transaction activity codes.
	TableTransactionCode Table = "transaction_code"
)

// Language is a supported catalog language.
type Language string

const (
	// LanguageEnglish is English.
	LanguageEnglish Language = "en"
	// LanguageFrench is French.
	LanguageFrench Language = "fr"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Entry is a single catalog entry.
type Entry struct {
	// Code is the provider code.
	Code string `yaml:"code"`
	// SubCode is the second part of a two-part code. Only used by TableAccountType.
	SubCode string `yaml:"sub_code,omitempty"`
	// EN is the English text.
	EN string `yaml:"en"`
	// FR is the French text.
	FR string `yaml:"fr"`
	// Sort is the sort rank. Required for ranked tables, forbidden otherwise.
	Sort *int `yaml:"sort,omitempty"`
}

// Key returns the lookup key of the Entry.
func (e Entry) Key() string {
	if e.SubCode == "" {
		return e.Code
	}
	return accountTypeKey(e.Code, e.SubCode)
}

// Text returns the text for the language, or "" for an unsupported language.
func (e Entry) Text(language Language) string {
	switch language {
	case LanguageEnglish:
		return e.EN
	case LanguageFrench:
		return e.FR
	default:
		return ""
	}
}

// AllTables returns all tables in a stable order.
func AllTables() []Table {
	return []Table{
		TableAccountStatus,
		TableAccountType,
		TableAssetClass,
		TableDealerType,
		TableFundCode,
		TablePortFlag,
		TableRecipientType,
		TableTransactionCode,
	}
}

// ParseTable parses a table name.
func ParseTable(s string) (Table, error) {
	table := Table(strings.ToLower(s))
	if !slices.Contains(AllTables(), table) {
		return "", fmt.Errorf("unknown table %q", s)
	}
	return table, nil
}

// IsRanked returns true if the table carries sort ranks.
func (t Table) IsRanked() bool {
	return t == TableAssetClass || t == TableDealerType
}

// ParseLanguage parses a language tag.
//
// Only the first two characters are considered, case-insensitively, so that
// tags such as "en-CA" and "fr-CA" are accepted.
func ParseLanguage(s string) (Language, error) {
	prefix := s
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	switch language := Language(strings.ToLower(prefix)); language {
	case LanguageEnglish, LanguageFrench:
		return language, nil
	default:
		return "", fmt.Errorf("unsupported language %q, must be one of: en, fr", s)
	}
}

// Catalog is an immutable set of localization tables.
type Catalog struct {
	tableToEntries map[Table][]Entry
	tableToKeyMap  map[Table]map[string]Entry
}

// NewCatalog returns a new Catalog for the given tables.
//
// Every table must be present. Entries must have a code and non-empty
// English and French text, keys must be unique within a table, and sort
// ranks must be present exactly on ranked tables.
//
// Any failure is an acctportalerror.Error of KindCatalogLoadFailure.
func NewCatalog(tableToEntries map[Table][]Entry) (*Catalog, error) {
	catalog := &Catalog{
		tableToEntries: make(map[Table][]Entry, len(tableToEntries)),
		tableToKeyMap:  make(map[Table]map[string]Entry, len(tableToEntries)),
	}
	for _, table := range AllTables() {
		entries, ok := tableToEntries[table]
		if !ok {
			return nil, acctportalerror.NewCatalogLoadFailure(fmt.Sprintf("table %s is missing", table), nil)
		}
		keyMap, err := newKeyMap(table, entries)
		if err != nil {
			return nil, acctportalerror.NewCatalogLoadFailure(fmt.Sprintf("table %s is invalid", table), err)
		}
		catalog.tableToEntries[table] = slices.Clone(entries)
		catalog.tableToKeyMap[table] = keyMap
	}
	for table := range tableToEntries {
		if !slices.Contains(AllTables(), table) {
			return nil, acctportalerror.NewCatalogLoadFailure(fmt.Sprintf("unknown table %q", table), nil)
		}
	}
	return catalog, nil
}

// Load loads a Catalog from <table>.yaml files in the root of fsys.
//
// Any failure is an acctportalerror.Error of KindCatalogLoadFailure.
func Load(fsys fs.FS) (*Catalog, error) {
	tableToEntries := make(map[Table][]Entry)
	for _, table := range AllTables() {
		fileName := string(table) + ".yaml"
		data, err := fs.ReadFile(fsys, fileName)
		if err != nil {
			return nil, acctportalerror.NewCatalogLoadFailure(fmt.Sprintf("reading %s", fileName), err)
		}
		var externalTable externalTable
		if err := unmarshalYAMLStrict(data, &externalTable); err != nil {
			return nil, acctportalerror.NewCatalogLoadFailure(fmt.Sprintf("parsing %s", fileName), err)
		}
		tableToEntries[table] = externalTable.Entries
	}
	return NewCatalog(tableToEntries)
}

// LoadDir loads a Catalog from <table>.yaml files in the given directory.
func LoadDir(dirPath string) (*Catalog, error) {
	return Load(os.DirFS(dirPath))
}

// LoadDefault loads the Catalog compiled into the binary.
func LoadDefault() (*Catalog, error) {
	fsys, err := fs.Sub(dataFS, "data")
	if err != nil {
		return nil, acctportalerror.NewCatalogLoadFailure("opening embedded tables", err)
	}
	return Load(fsys)
}

// Lookup returns the text for code in table, or "" if the code is absent or
// the language is unsupported.
func (c *Catalog) Lookup(table Table, code string, language Language) string {
	entry, ok := c.tableToKeyMap[table][code]
	if !ok {
		return ""
	}
	return entry.Text(language)
}

// LookupAccountType returns the text for an account type and sub-type pair.
func (c *Catalog) LookupAccountType(accountType string, accountSubType string, language Language) string {
	return c.Lookup(TableAccountType, accountTypeKey(accountType, accountSubType), language)
}

// LookupSortRank returns the sort rank for code in a ranked table.
//
// Returns false if the code is absent or the table is not ranked.
func (c *Catalog) LookupSortRank(table Table, code string) (int, bool) {
	entry, ok := c.tableToKeyMap[table][code]
	if !ok || entry.Sort == nil {
		return 0, false
	}
	return *entry.Sort, true
}

// Entries returns a copy of the entries of table in file order.
func (c *Catalog) Entries(table Table) []Entry {
	return slices.Clone(c.tableToEntries[table])
}

// *** PRIVATE ***

// externalTable is the YAML-serializable structure of a table file.
type externalTable struct {
	Entries []Entry `yaml:"entries"`
}

func newKeyMap(table Table, entries []Entry) (map[string]Entry, error) {
	keyMap := make(map[string]Entry, len(entries))
	for i, entry := range entries {
		if entry.Code == "" {
			return nil, fmt.Errorf("entry %d: code is required", i)
		}
		if entry.EN == "" || entry.FR == "" {
			return nil, fmt.Errorf("entry %q: en and fr are required", entry.Key())
		}
		if table == TableAccountType {
			if entry.SubCode == "" {
				return nil, fmt.Errorf("entry %q: sub_code is required", entry.Key())
			}
		} else if entry.SubCode != "" {
			return nil, fmt.Errorf("entry %q: sub_code is not allowed", entry.Key())
		}
		if table.IsRanked() && entry.Sort == nil {
			return nil, fmt.Errorf("entry %q: sort is required", entry.Key())
		}
		if !table.IsRanked() && entry.Sort != nil {
			return nil, fmt.Errorf("entry %q: sort is not allowed", entry.Key())
		}
		key := entry.Key()
		if _, ok := keyMap[key]; ok {
			return nil, fmt.Errorf("duplicate entry %q", key)
		}
		keyMap[key] = entry
	}
	if len(keyMap) == 0 {
		return nil, errors.New("no entries")
	}
	return keyMap, nil
}

func accountTypeKey(accountType string, accountSubType string) string {
	return accountType + "." + accountSubType
}

// unmarshalYAMLStrict unmarshals the data as YAML with strict field checking.
func unmarshalYAMLStrict(data []byte, v any) error {
	yamlDecoder := yaml.NewDecoder(bytes.NewReader(data))
	// Reject unknown fields.
	yamlDecoder.KnownFields(true)
	if err := yamlDecoder.Decode(v); err != nil {
		return fmt.Errorf("could not unmarshal as YAML: %w", err)
	}
	return nil
}
