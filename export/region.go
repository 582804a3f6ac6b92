package export

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// Qualified applies the page-prefix rule: a range without a sheet qualifier
// is prefixed with the quoted page name when a page is selected. A range that
// already carries a '!' qualifier is used unmodified.
func (s Selector) Qualified() string {
	if s.Range == "" {
		return ""
	}
	if s.Page != "" && !strings.Contains(s.Range, "!") {
		return "'" + s.Page + "'!" + s.Range
	}
	return s.Range
}

// Address returns the region in A1 notation, without the sheet qualifier.
func (r Region) Address() string {
	start, err := excelize.CoordinatesToCellName(r.StartCol, r.StartRow)
	if err != nil {
		return ""
	}
	if r.StartCol == r.EndCol && r.StartRow == r.EndRow {
		return start
	}
	end, err := excelize.CoordinatesToCellName(r.EndCol, r.EndRow)
	if err != nil {
		return ""
	}
	return start + ":" + end
}

// resolveRegion maps a selector onto a concrete cell rectangle. Ranges are
// resolved workbook-wide so named ranges and cross-sheet syntax work; an
// empty range selects the used area of the selected page (or the first page
// when none is selected).
func resolveRegion(f *excelize.File, sel Selector) (Region, error) {
	qualified := sel.Qualified()
	if qualified == "" {
		sheet, err := resolveSheet(f, sel.Page)
		if err != nil {
			return Region{}, err
		}
		return usedRegion(f, sheet)
	}

	if sheet, addr, ok := splitQualified(qualified); ok {
		idx, err := f.GetSheetIndex(sheet)
		if err != nil {
			return Region{}, NewError(KindAutomation, "resolve sheet "+sheet, err)
		}
		if idx < 0 {
			return Region{}, NewError(KindAutomation, "no such sheet: "+sheet, nil)
		}
		if region, ok := parseAddress(sheet, addr); ok {
			return region, nil
		}
		if region, ok := resolveDefinedName(f, addr, sheet); ok {
			return region, nil
		}
		return Region{}, NewError(KindAutomation, "cannot resolve range "+qualified, nil)
	}

	sheet, err := resolveSheet(f, "")
	if err != nil {
		return Region{}, err
	}
	if region, ok := parseAddress(sheet, qualified); ok {
		return region, nil
	}
	if region, ok := resolveDefinedName(f, qualified, ""); ok {
		return region, nil
	}
	return Region{}, NewError(KindAutomation, "cannot resolve range "+qualified, nil)
}

// resolveSheet maps a page identifier to a sheet name, defaulting to the
// first sheet.
func resolveSheet(f *excelize.File, page string) (string, error) {
	if page == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return "", NewError(KindAutomation, "workbook has no sheets", nil)
		}
		return sheets[0], nil
	}
	for _, name := range f.GetSheetList() {
		if strings.EqualFold(name, page) {
			return name, nil
		}
	}
	return "", NewError(KindAutomation, "no such sheet: "+page, nil)
}

// usedRegion computes the minimal rectangle containing all populated cells.
func usedRegion(f *excelize.File, sheet string) (Region, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Region{}, NewError(KindAutomation, "read used area of "+sheet, err)
	}

	region := Region{Sheet: sheet, StartCol: 1, StartRow: 1, EndCol: 1, EndRow: 1}
	found := false
	for r, row := range rows {
		for c, value := range row {
			if value == "" {
				continue
			}
			if !found {
				region.StartRow, region.EndRow = r+1, r+1
				region.StartCol, region.EndCol = c+1, c+1
				found = true
				continue
			}
			if r+1 < region.StartRow {
				region.StartRow = r + 1
			}
			if r+1 > region.EndRow {
				region.EndRow = r + 1
			}
			if c+1 < region.StartCol {
				region.StartCol = c + 1
			}
			if c+1 > region.EndCol {
				region.EndCol = c + 1
			}
		}
	}
	return region, nil
}

// splitQualified splits a 'Sheet'!A1:B2 style reference.
func splitQualified(ref string) (sheet, addr string, ok bool) {
	idx := strings.LastIndex(ref, "!")
	if idx < 0 {
		return "", ref, false
	}
	sheet = strings.Trim(ref[:idx], "'")
	addr = ref[idx+1:]
	if sheet == "" || addr == "" {
		return "", ref, false
	}
	return sheet, addr, true
}

// parseAddress parses an A1-style cell or range address on the given sheet.
func parseAddress(sheet, addr string) (Region, bool) {
	addr = strings.ReplaceAll(strings.TrimSpace(addr), "$", "")
	if addr == "" {
		return Region{}, false
	}

	start, end, ok := strings.Cut(addr, ":")
	if !ok {
		end = start
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(start)
	if err != nil {
		return Region{}, false
	}
	endCol, endRow, err := excelize.CellNameToCoordinates(end)
	if err != nil {
		return Region{}, false
	}

	if endCol < startCol {
		startCol, endCol = endCol, startCol
	}
	if endRow < startRow {
		startRow, endRow = endRow, startRow
	}
	return Region{Sheet: sheet, StartCol: startCol, StartRow: startRow, EndCol: endCol, EndRow: endRow}, true
}

// resolveDefinedName resolves a named range. Names scoped to the given sheet
// take precedence over workbook-level names.
func resolveDefinedName(f *excelize.File, name, sheetScope string) (Region, bool) {
	var workbookLevel *excelize.DefinedName
	for _, dn := range f.GetDefinedName() {
		if !strings.EqualFold(dn.Name, name) {
			continue
		}
		dn := dn
		if sheetScope != "" && strings.EqualFold(dn.Scope, sheetScope) {
			return regionFromRefersTo(dn.RefersTo)
		}
		if dn.Scope == "" || strings.EqualFold(dn.Scope, "workbook") {
			workbookLevel = &dn
		}
	}
	if workbookLevel != nil {
		return regionFromRefersTo(workbookLevel.RefersTo)
	}
	return Region{}, false
}

// regionFromRefersTo parses a defined name reference such as
// 'Sheet One'!$A$1:$D$10. Multi-area references use their first area.
func regionFromRefersTo(refersTo string) (Region, bool) {
	ref := refersTo
	if idx := strings.Index(ref, ","); idx >= 0 {
		ref = ref[:idx]
	}
	ref = strings.TrimSpace(ref)

	sheet, addr, ok := splitQualified(ref)
	if !ok {
		return Region{}, false
	}
	return parseAddress(sheet, addr)
}
