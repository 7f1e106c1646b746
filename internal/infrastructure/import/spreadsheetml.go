package poimport

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"strings"
)

const spreadsheetMLNamespace = "urn:schemas-microsoft-com:office:spreadsheet"

var markupTag = regexp.MustCompile(`<[^>]*>`)

// Excel 2003 XML ("SpreadsheetML") workbook, as exported by Swiggy.
// Element and attribute names are matched by local name, so the ss: prefix
// does not need to be spelled out.
type xmlWorkbook struct {
	Worksheets []xmlWorksheet `xml:"Worksheet"`
}

type xmlWorksheet struct {
	Name string   `xml:"Name,attr"`
	Rows []xmlRow `xml:"Table>Row"`
}

type xmlRow struct {
	Index int       `xml:"Index,attr"`
	Cells []xmlCell `xml:"Cell"`
}

type xmlCell struct {
	Index       int     `xml:"Index,attr"`
	MergeAcross int     `xml:"MergeAcross,attr"`
	Data        xmlData `xml:"Data"`
}

type xmlData struct {
	Type  string `xml:"Type,attr"`
	Inner string `xml:",innerxml"`
}

// text flattens rich-text runs (<B>, <Font>, ...) into plain text
func (d xmlData) text() string {
	return html.UnescapeString(markupTag.ReplaceAllString(d.Inner, ""))
}

func isSpreadsheetML(data []byte) bool {
	head := bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if !bytes.HasPrefix(head, []byte("<?xml")) && !bytes.HasPrefix(head, []byte("<Workbook")) {
		return false
	}
	if len(head) > 4096 {
		head = head[:4096]
	}
	return bytes.Contains(head, []byte(spreadsheetMLNamespace))
}

// readSpreadsheetML decodes the first worksheet with content.
// ss:Index attributes (1-based) leave gaps that are filled with blank cells.
func readSpreadsheetML(data []byte) (Grid, error) {
	var wb xmlWorkbook
	if err := xml.Unmarshal(bytes.TrimPrefix(data, utf8BOM), &wb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}

	for _, ws := range wb.Worksheets {
		g := make(Grid, 0, len(ws.Rows))
		for _, r := range ws.Rows {
			for r.Index > 0 && len(g) < r.Index-1 {
				g = append(g, nil)
			}
			var row []string
			for _, c := range r.Cells {
				for c.Index > 0 && len(row) < c.Index-1 {
					row = append(row, "")
				}
				row = append(row, strings.TrimSpace(c.Data.text()))
				for i := 0; i < c.MergeAcross; i++ {
					row = append(row, "")
				}
			}
			g = append(g, row)
		}
		for _, row := range g {
			if !rowBlank(row) {
				return g, nil
			}
		}
	}
	return nil, ErrEmptyFile
}
