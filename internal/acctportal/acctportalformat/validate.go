// Copyright 2026 Peter Edge
//
// All rights reserved.

package acctportalformat

import (
	"fmt"

	"github.com/bufdev/acctportal/internal/acctportal/acctportalerror"
	"github.com/bufdev/acctportal/internal/pkg/rawrecord"
)

// RequireSuccess returns an acctportalerror.Error of KindUpstreamRequestFailed
// if the response's request status is not StatusSuccess.
func RequireSuccess(response rawrecord.Record, operation string) error {
	if status := rawrecord.SearchText(response, FieldRequestStatus); status != StatusSuccess {
		return acctportalerror.NewUpstreamRequestFailed(
			fmt.Sprintf("%s returned request status %q", operation, status),
			response,
			nil,
		)
	}
	return nil
}

// RequireSingleSummary returns the single summary row and recipient type.
//
// Returns an acctportalerror.Error of KindMalformedUpstreamData carrying
// payload if there is not exactly one of each.
func RequireSingleSummary(summaries []rawrecord.Record, recipientTypes []string, payload any) (rawrecord.Record, string, error) {
	if len(recipientTypes) != 1 {
		return nil, "", acctportalerror.NewMalformedUpstreamData(
			fmt.Sprintf("expected 1 %s value, got %d", FieldRecipientType, len(recipientTypes)),
			payload,
		)
	}
	if len(summaries) != 1 {
		return nil, "", acctportalerror.NewMalformedUpstreamData(
			fmt.Sprintf("expected 1 %s section, got %d", SectionAccountSummaryRow, len(summaries)),
			payload,
		)
	}
	return summaries[0], recipientTypes[0], nil
}

// SearchTexts returns the text of every value stored under key in the response.
func SearchTexts(response rawrecord.Record, key string) []string {
	values := rawrecord.Search(response, key)
	texts := make([]string, 0, len(values))
	for _, value := range values {
		texts = append(texts, value.Text())
	}
	return texts
}
