// Copyright 2026 Peter Edge
//
// All rights reserved.

package acctportalcatalog

import (
	"testing"
	"testing/fstest"

	"github.com/bufdev/acctportal/internal/acctportal/acctportalerror"
	"github.com/stretchr/testify/require"
)

func TestLoadDefault(t *testing.T) {
	t.Parallel()
	catalog, err := LoadDefault()
	require.NoError(t, err)
	require.Equal(t, "Equities", catalog.Lookup(TableAssetClass, "EQ", LanguageEnglish))
	require.Equal(t, "Actions", catalog.Lookup(TableAssetClass, "EQ", LanguageFrench))
	require.Equal(t, "Margin", catalog.LookupAccountType("2", "0", LanguageEnglish))
	require.Equal(t, "Marge - fonds américains", catalog.LookupAccountType("2", "1", LanguageFrench))
	rank, ok := catalog.LookupSortRank(TableAssetClass, "EQ")
	require.True(t, ok)
	require.Equal(t, 1, rank)
	rank, ok = catalog.LookupSortRank(TableAssetClass, "FI")
	require.True(t, ok)
	require.Equal(t, 2, rank)
	_, ok = catalog.LookupSortRank(TableAssetClass, "ZZ")
	require.False(t, ok)
	_, ok = catalog.LookupSortRank(TableFundCode, "C")
	require.False(t, ok)
}

func TestLookupRoundTrip(t *testing.T) {
	t.Parallel()
	catalog, err := LoadDefault()
	require.NoError(t, err)
	for _, table := range AllTables() {
		entries := catalog.Entries(table)
		require.NotEmpty(t, entries, "table %s", table)
		for _, entry := range entries {
			require.NotEmpty(t, catalog.Lookup(table, entry.Key(), LanguageEnglish), "table %s code %s", table, entry.Key())
			require.NotEmpty(t, catalog.Lookup(table, entry.Key(), LanguageFrench), "table %s code %s", table, entry.Key())
			// Unsupported languages always yield empty text.
			require.Empty(t, catalog.Lookup(table, entry.Key(), Language("de")))
		}
		require.Empty(t, catalog.Lookup(table, "absent-code", LanguageEnglish))
		require.Empty(t, catalog.Lookup(table, "absent-code", LanguageFrench))
	}
}

func TestParseLanguage(t *testing.T) {
	t.Parallel()
	for _, test := range []struct {
		input   string
		want    Language
		wantErr bool
	}{
		{"en", LanguageEnglish, false},
		{"fr", LanguageFrench, false},
		{"en-CA", LanguageEnglish, false},
		{"FR-ca,en;q=0.8", LanguageFrench, false},
		{"de", "", true},
		{"e", "", true},
		{"", "", true},
	} {
		language, err := ParseLanguage(test.input)
		if test.wantErr {
			require.Error(t, err, "%q", test.input)
			continue
		}
		require.NoError(t, err, "%q", test.input)
		require.Equal(t, test.want, language)
	}
}

func TestLoadFailures(t *testing.T) {
	t.Parallel()
	validFS := func() fstest.MapFS {
		fsys := fstest.MapFS{}
		for _, table := range AllTables() {
			var data string
			switch {
			case table == TableAccountType:
				data = "entries:\n  - code: \"1\"\n    sub_code: \"0\"\n    en: Cash\n    fr: Comptant\n"
			case table.IsRanked():
				data = "entries:\n  - code: X\n    en: X\n    fr: X\n    sort: 1\n"
			default:
				data = "entries:\n  - code: X\n    en: X\n    fr: X\n"
			}
			fsys[string(table)+".yaml"] = &fstest.MapFile{Data: []byte(data)}
		}
		return fsys
	}
	_, err := Load(validFS())
	require.NoError(t, err)

	for _, test := range []struct {
		desc  string
		table Table
		data  string
	}{
		{"missing file", TableFundCode, ""},
		{"unknown field", TableFundCode, "entries:\n  - code: X\n    en: X\n    fr: X\n    extra: 1\n"},
		{"missing french", TableFundCode, "entries:\n  - code: X\n    en: X\n"},
		{"duplicate code", TableFundCode, "entries:\n  - code: X\n    en: X\n    fr: X\n  - code: X\n    en: Y\n    fr: Y\n"},
		{"missing sort", TableAssetClass, "entries:\n  - code: X\n    en: X\n    fr: X\n"},
		{"unexpected sort", TableFundCode, "entries:\n  - code: X\n    en: X\n    fr: X\n    sort: 1\n"},
		{"missing sub code", TableAccountType, "entries:\n  - code: X\n    en: X\n    fr: X\n"},
		{"empty table", TableRecipientType, "entries: []\n"},
		{"invalid yaml", TableRecipientType, "entries: [\n"},
	} {
		fsys := validFS()
		if test.data == "" {
			delete(fsys, string(test.table)+".yaml")
		} else {
			fsys[string(test.table)+".yaml"] = &fstest.MapFile{Data: []byte(test.data)}
		}
		_, err := Load(fsys)
		require.Error(t, err, test.desc)
		require.ErrorIs(t, err, acctportalerror.ErrCatalogLoadFailure, test.desc)
	}
}

func TestNewCatalogMissingTable(t *testing.T) {
	t.Parallel()
	_, err := NewCatalog(map[Table][]Entry{})
	require.ErrorIs(t, err, acctportalerror.ErrCatalogLoadFailure)
}
