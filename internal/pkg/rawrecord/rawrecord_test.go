// Copyright 2026 Peter Edge
//
// All rights reserved.

package rawrecord

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordText(t *testing.T) {
	t.Parallel()
	record := Record{
		"stat":   {Text("A")},
		"nested": {Nested(Record{"x": {Text("1")}})},
		"empty":  {},
	}
	require.Equal(t, "A", record.Text("stat"))
	// Missing, empty, and nested fields read as empty strings.
	require.Equal(t, "", record.Text("missing"))
	require.Equal(t, "", record.Text("empty"))
	require.Equal(t, "", record.Text("nested"))
	require.Len(t, record.Records("nested"), 1)
	require.Empty(t, record.Records("stat"))
}

func TestSearch(t *testing.T) {
	t.Parallel()
	root := Record{
		"Envelope": {Nested(Record{
			"Body": {Nested(Record{
				"response": {Nested(Record{
					"requestStatus": {Text("SUCCESS")},
					"accountPositionRow": {
						Nested(Record{"class": {Text("EQ")}}),
						Nested(Record{"class": {Text("FI")}}),
					},
					"accountSummaryRow": {Nested(Record{"client-id": {Text("C1")}})},
				})},
			})},
		})},
	}
	require.Equal(t, "SUCCESS", SearchText(root, "requestStatus"))
	require.Equal(t, "C1", SearchText(root, "client-id"))
	positions := SearchRecords(root, "accountPositionRow")
	require.Len(t, positions, 2)
	require.Equal(t, "EQ", positions[0].Text("class"))
	require.Equal(t, "FI", positions[1].Text("class"))
	require.Nil(t, Search(root, "missing"))
	require.Equal(t, "", SearchText(root, "missing"))
}

func TestSearchDeterministicOrder(t *testing.T) {
	t.Parallel()
	root := Record{
		"b": {Nested(Record{"key": {Text("from-b")}})},
		"a": {Nested(Record{"key": {Text("from-a")}})},
		"c": {Nested(Record{"key": {Text("from-c")}})},
	}
	for range 10 {
		values := Search(root, "key")
		require.Len(t, values, 3)
		require.Equal(t, "from-a", values[0].Text())
		require.Equal(t, "from-b", values[1].Text())
		require.Equal(t, "from-c", values[2].Text())
	}
}

func TestDecodeXML(t *testing.T) {
	t.Parallel()
	const data = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <soap:Body>
    <GetPositionsResponse xmlns="urn:dataphile">
      <requestStatus>SUCCESS</requestStatus>
      <accountSummaryRow>
        <acct-number>12345</acct-number>
        <market-value>1000.50U</market-value>
        <benef-name xsi:nil="true"/>
      </accountSummaryRow>
      <accountPositionRow><class>EQ</class></accountPositionRow>
      <accountPositionRow><class>FI</class></accountPositionRow>
      <note lang="en">hello</note>
    </GetPositionsResponse>
  </soap:Body>
</soap:Envelope>`
	record, err := DecodeXML(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, record.Records("Envelope"), 1)
	require.Equal(t, "SUCCESS", SearchText(record, "requestStatus"))
	summaries := SearchRecords(record, "accountSummaryRow")
	require.Len(t, summaries, 1)
	require.Equal(t, "12345", summaries[0].Text("acct-number"))
	require.Equal(t, "1000.50U", summaries[0].Text("market-value"))
	require.Equal(t, "", summaries[0].Text("benef-name"))
	positions := SearchRecords(record, "accountPositionRow")
	require.Len(t, positions, 2)
	require.Equal(t, "FI", positions[1].Text("class"))
	notes := SearchRecords(record, "note")
	require.Len(t, notes, 1)
	require.Equal(t, "en", notes[0].Text("lang"))
	require.Equal(t, "hello", notes[0].Text(TextField))
}

func TestDecodeXMLErrors(t *testing.T) {
	t.Parallel()
	_, err := DecodeXML(strings.NewReader(""))
	require.Error(t, err)
	_, err = DecodeXML(strings.NewReader("<a><b></a>"))
	require.Error(t, err)
}

func TestRecordString(t *testing.T) {
	t.Parallel()
	record := Record{
		"b": {Text("2")},
		"a": {Nested(Record{"x": {Text("1"), Text("3")}})},
	}
	require.Equal(t, "{a:[{x:[1,3]}],b:[2]}", record.String())
}
