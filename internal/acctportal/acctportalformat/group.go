// Copyright 2026 Peter Edge
//
// All rights reserved.

package acctportalformat

import (
	"cmp"
	"slices"

	"github.com/bufdev/acctportal/internal/acctportal/acctportalcatalog"
	"github.com/bufdev/acctportal/internal/acctportal/acctportaldecode"
	"github.com/bufdev/acctportal/internal/pkg/rawrecord"
	"github.com/shopspring/decimal"
)

// PositionGroup is a group of raw position rows sharing a localized asset class description.
type PositionGroup struct {
	// Description is the localized asset class description, or "" for unknown classes.
	Description string
	// MarketValue is the sum of the decoded market values of the positions.
	//
	// Market values that do not decode to a number contribute zero.
	MarketValue decimal.Decimal
	// Positions are the raw position rows in sorted order.
	Positions []rawrecord.Record
}

// SortPositions returns the positions ordered by ascending asset class sort rank.
//
// The sort is stable: positions with equal ranks keep their input order.
// Positions whose asset class has no rank sort after all ranked positions.
// The input is not modified.
func (f *Formatter) SortPositions(positions []rawrecord.Record) []rawrecord.Record {
	sorted := slices.Clone(positions)
	slices.SortStableFunc(sorted, func(a rawrecord.Record, b rawrecord.Record) int {
		return f.compareAssetClassRank(a.Text(FieldClass), b.Text(FieldClass))
	})
	return sorted
}

// GroupPositions partitions sorted positions by localized asset class description.
//
// Groups are returned in first-seen order. Every position appears in exactly one group.
func (f *Formatter) GroupPositions(sortedPositions []rawrecord.Record, language acctportalcatalog.Language) []*PositionGroup {
	var groups []*PositionGroup
	descriptionToGroup := make(map[string]*PositionGroup)
	for _, position := range sortedPositions {
		description := f.catalog.Lookup(acctportalcatalog.TableAssetClass, position.Text(FieldClass), language)
		group, ok := descriptionToGroup[description]
		if !ok {
			group = &PositionGroup{
				Description: description,
				MarketValue: decimal.Zero,
			}
			descriptionToGroup[description] = group
			groups = append(groups, group)
		}
		group.Positions = append(group.Positions, position)
		group.MarketValue = group.MarketValue.Add(acctportaldecode.DecodeNumber(position.Text(FieldMarketValue)).Decimal())
	}
	return groups
}

// *** PRIVATE ***

// compareAssetClassRank is a three-way comparison of two asset classes by sort rank.
func (f *Formatter) compareAssetClassRank(a string, b string) int {
	aRank, aOK := f.catalog.LookupSortRank(acctportalcatalog.TableAssetClass, a)
	bRank, bOK := f.catalog.LookupSortRank(acctportalcatalog.TableAssetClass, b)
	switch {
	case aOK && bOK:
		return cmp.Compare(aRank, bRank)
	case aOK:
		return -1
	case bOK:
		return 1
	default:
		return 0
	}
}
