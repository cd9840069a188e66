package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/hijackaudit/internal/audit/entity"
	"github.com/shandysiswandi/hijackaudit/internal/pkg/pkgroutine"
)

// IngestResult holds either a validated table or the reason the file was rejected.
type IngestResult struct {
	Table *entity.Table
	Err   *entity.IngestError
}

// Validator turns one uploaded file into a validated table.
type Validator struct {
	schema Schema
}

func NewValidator(schema Schema) *Validator {
	return &Validator{schema: schema.WithDefaults()}
}

// Ingest never panics; every decode or validation failure becomes an IngestError.
func (v *Validator) Ingest(file entity.UploadedFile) (res IngestResult) {
	defer func() {
		if rvr := recover(); rvr != nil {
			res = IngestResult{Err: &entity.IngestError{
				Class:    entity.ErrorClassFile,
				FileName: file.Name,
				Detail:   fmt.Sprintf("unreadable file: %v", rvr),
			}}
		}
	}()

	raw, err := decode(file.Name, file.Content, v.schema.ProofLink)
	if err != nil {
		return IngestResult{Err: &entity.IngestError{
			Class:    entity.ErrorClassFile,
			FileName: file.Name,
			Detail:   err.Error(),
		}}
	}

	decisionCol := columnIndex(raw.header, v.schema.Decision)
	uniqueIDCol := columnIndex(raw.header, v.schema.UniqueID)
	proofCol := columnIndex(raw.header, v.schema.ProofLink)

	var missing []string
	if decisionCol < 0 {
		missing = append(missing, v.schema.Decision[0])
	}
	if uniqueIDCol < 0 {
		missing = append(missing, v.schema.UniqueID[0])
	}
	if proofCol < 0 {
		missing = append(missing, v.schema.ProofLink[0])
	}
	if len(missing) > 0 {
		return IngestResult{Err: &entity.IngestError{
			Class:    entity.ErrorClassHeader,
			FileName: file.Name,
			Detail:   "missing required headers: " + strings.Join(missing, ", "),
		}}
	}

	// Source_Auditor and Assigned_Verifier are re-derived on every run, so a
	// re-uploaded export must not carry its old values along as extras.
	extra := make([]int, 0, len(raw.header))
	for i, h := range raw.header {
		switch {
		case i == decisionCol, i == uniqueIDCol, i == proofCol:
		case h == HeaderSourceAuditor, h == HeaderAssignedVerifier:
		default:
			extra = append(extra, i)
		}
	}

	table := &entity.Table{Records: make([]entity.Record, 0, len(raw.rows))}
	for _, i := range extra {
		table.Columns = append(table.Columns, raw.header[i])
	}

	missingProof := 0
	for n, row := range raw.rows {
		rec := entity.Record{
			Row:           n + 1,
			Decision:      raw.cell(row, decisionCol),
			UniqueID:      raw.cell(row, uniqueIDCol).Value,
			ProofLink:     raw.cell(row, proofCol),
			SourceAuditor: file.Name,
		}

		for _, i := range extra {
			if c := raw.cell(row, i); c.Valid {
				if rec.Extra == nil {
					rec.Extra = make(map[string]string)
				}
				rec.Extra[raw.header[i]] = c.Value
			}
		}

		if rec.NormalizedDecision() == "valid" && rec.ProofLink.Blank() {
			missingProof++
		}

		table.Records = append(table.Records, rec)
	}

	if missingProof > 0 {
		return IngestResult{Err: &entity.IngestError{
			Class:    entity.ErrorClassProof,
			FileName: file.Name,
			Detail:   fmt.Sprintf("%d row(s) marked Valid without a proof link", missingProof),
		}}
	}

	return IngestResult{Table: table}
}

// IngestAll validates files concurrently and waits for all of them. Tables and
// errors keep the upload order.
func (v *Validator) IngestAll(ctx context.Context, files []entity.UploadedFile, workers int) ([]*entity.Table, []*entity.IngestError) {
	results := make([]IngestResult, len(files))
	done := make([]bool, len(files))

	pool := pkgroutine.NewManager(workers)
	for i := range files {
		if !pool.Go(ctx, func(context.Context) error {
			results[i] = v.Ingest(files[i])
			done[i] = true
			return nil
		}) {
			break
		}
	}
	if err := pool.Wait(); err != nil {
		slog.WarnContext(ctx, "ingestion workers reported errors", "error", err)
	}

	tables := make([]*entity.Table, 0, len(files))
	var errs []*entity.IngestError
	for i, res := range results {
		switch {
		case !done[i]:
			errs = append(errs, &entity.IngestError{
				Class:    entity.ErrorClassFile,
				FileName: files[i].Name,
				Detail:   "ingestion canceled",
			})
		case res.Err != nil:
			errs = append(errs, res.Err)
		default:
			tables = append(tables, res.Table)
		}
	}

	return tables, errs
}
