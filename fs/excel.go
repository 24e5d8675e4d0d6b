package fs

import (
	"io"

	"github.com/beevik/etree"
)

const spreadsheetNS = "urn:schemas-microsoft-com:office:spreadsheet"

// writeExcel writes t as an Excel 2003 XML spreadsheet with a bold header row.
func writeExcel(path, sheet string, t table) (string, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateProcInst("mso-application", `progid="Excel.Sheet"`)

	workbook := doc.CreateElement("Workbook")
	workbook.CreateAttr("xmlns", spreadsheetNS)
	workbook.CreateAttr("xmlns:ss", spreadsheetNS)

	style := workbook.CreateElement("Styles").CreateElement("Style")
	style.CreateAttr("ss:ID", "header")
	style.CreateElement("Font").CreateAttr("ss:Bold", "1")

	worksheet := workbook.CreateElement("Worksheet")
	worksheet.CreateAttr("ss:Name", sheet)
	tbl := worksheet.CreateElement("Table")

	header := tbl.CreateElement("Row")
	for _, name := range t.header {
		cell := header.CreateElement("Cell")
		cell.CreateAttr("ss:StyleID", "header")
		addData(cell, "String", name)
	}

	for _, row := range t.rows {
		r := tbl.CreateElement("Row")
		for i, v := range row {
			cell := r.CreateElement("Cell")
			if v == "" {
				continue
			}
			typ := "String"
			if t.numeric[i] {
				typ = "Number"
			}
			addData(cell, typ, v)
		}
	}

	doc.Indent(2)
	return path, writeFileAtomic(path, func(w io.Writer) error {
		_, err := doc.WriteTo(w)
		return err
	})
}

func addData(cell *etree.Element, typ, value string) {
	data := cell.CreateElement("Data")
	data.CreateAttr("ss:Type", typ)
	data.SetText(value)
}
