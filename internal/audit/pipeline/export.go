package pipeline

import (
	"strings"

	"github.com/shandysiswandi/hijackaudit/internal/audit/entity"
	"github.com/xuri/excelize/v2"
)

const (
	HeaderSourceAuditor    = "Source_Auditor"
	HeaderAssignedVerifier = "Assigned_Verifier"
)

// Exporter encodes result tables as xlsx workbooks.
type Exporter struct {
	schema Schema
}

func NewExporter(schema Schema) *Exporter {
	return &Exporter{schema: schema.WithDefaults()}
}

// Table writes one record per row. ProofLink cells holding an http(s) URL are
// written as clickable hyperlinks.
func (e *Exporter) Table(table *entity.Table, sheet string) ([]byte, error) {
	if table == nil {
		table = &entity.Table{}
	}

	withVerifier := false
	for _, rec := range table.Records {
		if rec.AssignedVerifier != "" {
			withVerifier = true
			break
		}
	}

	header := []any{e.schema.Decision[0], e.schema.UniqueID[0], e.schema.ProofLink[0]}
	for _, c := range table.Columns {
		header = append(header, c)
	}
	header = append(header, HeaderSourceAuditor)
	if withVerifier {
		header = append(header, HeaderAssignedVerifier)
	}

	return writeWorkbook(sheet, header, func(f *excelize.File, linkStyle int) error {
		for i, rec := range table.Records {
			line := i + 2
			row := []any{nullable(rec.Decision), rec.UniqueID, nullable(rec.ProofLink)}
			for _, c := range table.Columns {
				if v, ok := rec.Extra[c]; ok {
					row = append(row, v)
				} else {
					row = append(row, nil)
				}
			}
			row = append(row, rec.SourceAuditor)
			if withVerifier {
				row = append(row, rec.AssignedVerifier)
			}

			axis, err := excelize.CoordinatesToCellName(1, line)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, axis, &row); err != nil {
				return err
			}

			if !isURL(rec.ProofLink) {
				continue
			}
			proofAxis, err := excelize.CoordinatesToCellName(3, line)
			if err != nil {
				return err
			}
			if err := f.SetCellHyperLink(sheet, proofAxis, strings.TrimSpace(rec.ProofLink.Value), "External"); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, proofAxis, proofAxis, linkStyle); err != nil {
				return err
			}
		}
		return nil
	})
}

// Stats writes the productivity report.
func (e *Exporter) Stats(stats []entity.StatsRow, sheet string) ([]byte, error) {
	header := []any{"Auditor", "Valid", "Invalid", "Plausible"}

	return writeWorkbook(sheet, header, func(f *excelize.File, _ int) error {
		for i, s := range stats {
			axis, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			row := []any{s.Auditor, s.Valid, s.Invalid, s.Plausible}
			if err := f.SetSheetRow(sheet, axis, &row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeWorkbook(sheet string, header []any, fill func(f *excelize.File, linkStyle int) error) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	linkStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "1265BE", Underline: "single"},
	})
	if err != nil {
		return nil, err
	}

	if err := fill(f, linkStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func nullable(n entity.NullString) any {
	if !n.Valid {
		return nil
	}
	return n.Value
}

func isURL(n entity.NullString) bool {
	if n.Blank() {
		return false
	}
	v := strings.ToLower(strings.TrimSpace(n.Value))
	return strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://")
}
