package ingest

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// The name-mapping reference arrives as a Word document with the mapping
// table embedded in flowing text. A .docx is a zip holding WordprocessingML;
// the subset needed here is w:tbl > w:tr > w:tc with the text runs (w:t)
// inside each cell, which is small enough to walk directly with the XML
// decoder rather than adopt a document library.

// ReadDocTables extracts every table from a .docx file as row grids of
// cell text.
func ReadDocTables(path string) ([][][]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer zr.Close()

	var doc io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc, err = f.Open()
			if err != nil {
				return nil, fmt.Errorf("open document body: %w", err)
			}
			break
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("not a Word document: missing document body")
	}
	defer doc.Close()

	return parseDocTables(doc)
}

func parseDocTables(r io.Reader) ([][][]string, error) {
	dec := xml.NewDecoder(r)

	var tables [][][]string
	var table [][]string
	var row []string
	var cellText strings.Builder
	depth := 0 // nesting depth inside w:tbl

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				depth++
				if depth == 1 {
					table = nil
				}
			case "tr":
				if depth == 1 {
					row = nil
				}
			case "tc":
				if depth == 1 {
					cellText.Reset()
				}
			case "t":
				if depth == 1 {
					var text string
					if err := dec.DecodeElement(&text, &t); err != nil {
						return nil, fmt.Errorf("parse document body: %w", err)
					}
					cellText.WriteString(text)
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				if depth == 1 && len(table) > 0 {
					tables = append(tables, table)
				}
				depth--
			case "tr":
				if depth == 1 {
					table = append(table, row)
				}
			case "tc":
				if depth == 1 {
					row = append(row, strings.TrimSpace(cellText.String()))
				}
			}
		}
	}
	return tables, nil
}
