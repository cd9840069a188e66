package pipeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/shandysiswandi/hijackaudit/internal/audit/entity"
	"github.com/xuri/excelize/v2"
)

var (
	errNoColumns = errors.New("no columns to parse from file")
	errNoSheets  = errors.New("workbook has no sheets")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type rawRow struct {
	line  int
	cells []entity.NullString
}

// rawTable is a decoded grid: the header row plus every non-empty data row.
type rawTable struct {
	header []string
	rows   []rawRow
}

func (t *rawTable) cell(row rawRow, col int) entity.NullString {
	if col < 0 || col >= len(row.cells) {
		return entity.NullString{}
	}
	return row.cells[col]
}

type format int

const (
	formatDelimited format = iota
	formatXLSX
	formatXLS
)

func detectFormat(name string) format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return formatXLSX
	case ".xls":
		return formatXLS
	default:
		return formatDelimited
	}
}

// decode parses content into a rawTable. linkHeaders names the columns whose
// blank cells are filled from the cell hyperlink, when the format has them.
func decode(name string, content []byte, linkHeaders []string) (*rawTable, error) {
	switch detectFormat(name) {
	case formatXLSX:
		return decodeXLSX(content, linkHeaders)
	case formatXLS:
		return decodeXLS(content)
	default:
		return decodeCSV(content)
	}
}

func decodeCSV(content []byte) (*rawTable, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, utf8BOM)))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var grid [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		grid = append(grid, record)
	}

	return fromGrid(grid, func(v string) entity.NullString {
		if v == "" {
			return entity.NullString{}
		}
		return entity.NewString(v)
	})
}

func decodeXLSX(content []byte, linkHeaders []string) (*rawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errNoSheets
	}
	sheet := sheets[0]

	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	table, err := fromGrid(grid, cellFromSpreadsheet)
	if err != nil {
		return nil, err
	}

	linkCol := columnIndex(table.header, linkHeaders)
	if linkCol < 0 {
		return table, nil
	}

	for i, row := range table.rows {
		if !table.cell(row, linkCol).Blank() {
			continue
		}
		axis, err := excelize.CoordinatesToCellName(linkCol+1, row.line)
		if err != nil {
			return nil, err
		}
		ok, target, err := f.GetCellHyperLink(sheet, axis)
		if err != nil {
			return nil, err
		}
		if !ok || strings.TrimSpace(target) == "" {
			continue
		}
		for len(table.rows[i].cells) <= linkCol {
			table.rows[i].cells = append(table.rows[i].cells, entity.NullString{})
		}
		table.rows[i].cells[linkCol] = entity.NewString(target)
	}

	return table, nil
}

func decodeXLS(content []byte) (*rawTable, error) {
	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, err
	}
	if wb.NumSheets() == 0 {
		return nil, errNoSheets
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errNoSheets
	}

	grid := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		grid = append(grid, cells)
	}

	return fromGrid(grid, cellFromSpreadsheet)
}

func cellFromSpreadsheet(v string) entity.NullString {
	if strings.TrimSpace(v) == "" {
		return entity.NullString{}
	}
	return entity.NewString(v)
}

// fromGrid takes the first non-empty line as the header. Line numbers are
// 1-based positions in the grid so they map back onto spreadsheet rows.
func fromGrid(grid [][]string, toCell func(string) entity.NullString) (*rawTable, error) {
	headerAt := -1
	for i, line := range grid {
		if !emptyLine(line) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, errNoColumns
	}

	table := &rawTable{header: headerNames(grid[headerAt])}
	for i := headerAt + 1; i < len(grid); i++ {
		if emptyLine(grid[i]) {
			continue
		}
		cells := make([]entity.NullString, len(grid[i]))
		for c, v := range grid[i] {
			cells[c] = toCell(v)
		}
		table.rows = append(table.rows, rawRow{line: i + 1, cells: cells})
	}

	return table, nil
}

func emptyLine(line []string) bool {
	for _, v := range line {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// headerNames trims headers, names blank ones "Unnamed: <i>" and suffixes
// duplicates with ".<n>" so every column stays addressable.
func headerNames(line []string) []string {
	out := make([]string, len(line))
	seen := make(map[string]int, len(line))
	for i, h := range line {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n+1)
		} else {
			seen[h] = 0
		}
		out[i] = h
	}
	return out
}
