package export

import (
	"os"

	"github.com/flosch/pongo2/v6"
	"github.com/xuri/excelize/v2"
)

// publishMarkup is the markup document a published region materializes into.
// It declares its charset up front so the sanitizer's bounded scan finds it.
const publishMarkup = `<!DOCTYPE html>
<html>
<head>
<meta http-equiv="Content-Type" content="text/html; charset=utf-8">
<title>{{ sheet }}</title>
<style type="text/css">
table { border-collapse: collapse; }
td { padding: 2px 6px; font-family: Calibri, Arial, sans-serif; font-size: 11pt; white-space: nowrap; }
</style>
</head>
<body>
<table>
{% for row in rows %}<tr>{% for cell in row.Cells %}{% if not cell.Hidden %}<td{% if cell.Colspan > 1 %} colspan="{{ cell.Colspan }}"{% endif %}{% if cell.Rowspan > 1 %} rowspan="{{ cell.Rowspan }}"{% endif %}>{{ cell.Value }}</td>{% endif %}{% endfor %}</tr>
{% endfor %}</table>
</body>
</html>
`

var publishTemplate = pongo2.Must(pongo2.FromString(publishMarkup))

// TableCell is one published cell. Hidden cells are covered by a merge and
// emit no markup of their own.
type TableCell struct {
	Value   string
	Colspan int
	Rowspan int
	Hidden  bool
}

// TableRow is one published row.
type TableRow struct {
	Cells []TableCell
}

// Publisher materializes a workbook region as a one-off markup file.
type Publisher struct {
	Logger   Logger
	Template *pongo2.Template
}

// Publish resolves the selector against the open workbook and writes the
// region as markup to htmlPath. Selector resolution faults surface as
// KindAutomation; filesystem faults during the write surface as KindExport.
func (p *Publisher) Publish(wb *Workbook, sel Selector, htmlPath string) error {
	if wb == nil || wb.File() == nil {
		return NewError(KindValidation, "publisher requires an open workbook", nil)
	}

	logger := p.logger()
	file := wb.File()

	region, err := resolveRegion(file, sel)
	if err != nil {
		return err
	}
	logger.Debugf("publishing %s!%s to %s", region.Sheet, region.Address(), htmlPath)

	rows, err := buildTable(file, region)
	if err != nil {
		return err
	}

	tpl := p.Template
	if tpl == nil {
		tpl = publishTemplate
	}
	markup, err := tpl.Execute(pongo2.Context{
		"sheet": region.Sheet,
		"rows":  rows,
	})
	if err != nil {
		return NewError(KindExport, "render region markup", err)
	}

	if err := os.WriteFile(htmlPath, []byte(markup), 0o644); err != nil {
		return NewError(KindExport, "write region markup", err)
	}
	return nil
}

func (p *Publisher) logger() Logger {
	if p == nil || p.Logger == nil {
		return NopLogger{}
	}
	return p.Logger
}

// buildTable reads the region's formatted cell values, folding merged cells
// into colspan/rowspan on their anchor cell.
func buildTable(f *excelize.File, region Region) ([]TableRow, error) {
	merges, err := mergeSpans(f, region)
	if err != nil {
		return nil, err
	}

	rows := make([]TableRow, 0, region.EndRow-region.StartRow+1)
	for r := region.StartRow; r <= region.EndRow; r++ {
		row := TableRow{Cells: make([]TableCell, 0, region.EndCol-region.StartCol+1)}
		for c := region.StartCol; c <= region.EndCol; c++ {
			axis, err := excelize.CoordinatesToCellName(c, r)
			if err != nil {
				return nil, NewError(KindInternal, "build cell name", err)
			}
			value, err := f.GetCellValue(region.Sheet, axis)
			if err != nil {
				return nil, NewError(KindAutomation, "read cell "+axis, err)
			}

			cell := TableCell{Value: value, Colspan: 1, Rowspan: 1}
			if span, ok := merges[axis]; ok {
				cell.Colspan = span.cols
				cell.Rowspan = span.rows
				cell.Hidden = span.hidden
			}
			row.Cells = append(row.Cells, cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type cellSpan struct {
	cols   int
	rows   int
	hidden bool
}

// mergeSpans maps every cell covered by a merge intersecting the region to
// its span. Anchor cells get the (clamped) span; covered cells are hidden.
func mergeSpans(f *excelize.File, region Region) (map[string]cellSpan, error) {
	merged, err := f.GetMergeCells(region.Sheet)
	if err != nil {
		return nil, NewError(KindAutomation, "read merged cells of "+region.Sheet, err)
	}

	spans := make(map[string]cellSpan)
	for _, mc := range merged {
		startCol, startRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			continue
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			continue
		}
		if endRow < region.StartRow || startRow > region.EndRow ||
			endCol < region.StartCol || startCol > region.EndCol {
			continue
		}

		clampedEndCol := min(endCol, region.EndCol)
		clampedEndRow := min(endRow, region.EndRow)
		for r := max(startRow, region.StartRow); r <= clampedEndRow; r++ {
			for c := max(startCol, region.StartCol); c <= clampedEndCol; c++ {
				axis, err := excelize.CoordinatesToCellName(c, r)
				if err != nil {
					continue
				}
				if r == startRow && c == startCol {
					spans[axis] = cellSpan{
						cols: clampedEndCol - startCol + 1,
						rows: clampedEndRow - startRow + 1,
					}
					continue
				}
				spans[axis] = cellSpan{hidden: true}
			}
		}
	}
	return spans, nil
}
