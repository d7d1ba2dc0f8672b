// Copyright 2026 Peter Edge
//
// All rights reserved.

package rawrecord

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// TextField is the field that holds the character data of an element that
// also carries attributes.
const TextField = "_"

// DecodeXML decodes an XML document into a Record.
//
// Every element becomes a value appended to the field named after the
// element's local name, with namespace prefixes dropped. An element with no
// child elements and no attributes becomes a text leaf holding its trimmed
// character data. Any other element becomes a nested Record whose fields are
// its attributes and child elements; its character data, if any, is stored
// under TextField. Namespace declarations and xsi attributes are dropped.
//
// The returned Record has a single field for the document's root element.
func DecodeXML(reader io.Reader) (Record, error) {
	decoder := xml.NewDecoder(reader)
	// The root frame collects the document element.
	stack := []*xmlFrame{newXMLFrame("")}
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding xml: %w", err)
		}
		switch token := token.(type) {
		case xml.StartElement:
			frame := newXMLFrame(token.Name.Local)
			for _, attr := range token.Attr {
				if !isKeptAttr(attr) {
					continue
				}
				frame.record.Add(attr.Name.Local, Text(attr.Value))
				frame.hasAttrs = true
			}
			stack = append(stack, frame)
		case xml.CharData:
			stack[len(stack)-1].text.Write(token)
		case xml.EndElement:
			// The decoder verifies element nesting, so the stack always has a parent here.
			frame := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			parent := stack[len(stack)-1]
			parent.record.Add(frame.name, frame.value())
			parent.hasChildren = true
		}
	}
	if len(stack) != 1 {
		return nil, errors.New("decoding xml: unexpected end of document")
	}
	root := stack[0].record
	if len(root) == 0 {
		return nil, errors.New("decoding xml: no document element")
	}
	return root, nil
}

// *** PRIVATE ***

type xmlFrame struct {
	name        string
	record      Record
	text        strings.Builder
	hasChildren bool
	hasAttrs    bool
}

func newXMLFrame(name string) *xmlFrame {
	return &xmlFrame{
		name:   name,
		record: Record{},
	}
}

func (f *xmlFrame) value() Value {
	text := strings.TrimSpace(f.text.String())
	if !f.hasChildren && !f.hasAttrs {
		return Text(text)
	}
	if text != "" {
		f.record.Add(TextField, Text(text))
	}
	return Nested(f.record)
}

func isKeptAttr(attr xml.Attr) bool {
	switch {
	case attr.Name.Space == "xmlns", attr.Name.Local == "xmlns":
		return false
	case attr.Name.Space == "http://www.w3.org/2001/XMLSchema-instance", attr.Name.Space == "xsi":
		return false
	default:
		return true
	}
}
