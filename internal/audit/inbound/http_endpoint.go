package inbound

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shandysiswandi/hijackaudit/internal/audit/entity"
	"github.com/shandysiswandi/hijackaudit/internal/audit/pipeline"
	"github.com/shandysiswandi/hijackaudit/internal/audit/usecase"
	"github.com/shandysiswandi/hijackaudit/internal/pkg/pkgerror"
	"github.com/shandysiswandi/hijackaudit/internal/pkg/pkgrouter"
)

const (
	defaultMaxUploadBytes = 128 << 20
	maxFieldBytes         = 64 << 10
	xlsxContentType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type HTTPEndpoint struct {
	uc             uc
	maxUploadBytes int64
}

func (h *HTTPEndpoint) Collate(ctx context.Context, r *http.Request) (any, error) {
	in, err := h.readUpload(r)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Collate(ctx, in)
	if err != nil {
		return nil, err
	}

	if len(result.Errors) > 0 {
		return RejectedResponse{State: result.State, Errors: result.Errors}, nil
	}

	return CollateResponse{
		RunID:      result.RunID,
		State:      result.State,
		Summary:    toHTTPSummary(result.Summary),
		Stratified: result.Stratified,
	}, nil
}

func (h *HTTPEndpoint) Summary(ctx context.Context, r *http.Request) (any, error) {
	result, err := h.uc.Summary(ctx, pkgrouter.GetParam(ctx, "id"))
	if err != nil {
		return nil, err
	}

	return SummaryResponse{
		RunID:         result.RunID,
		State:         result.State,
		Summary:       toHTTPSummary(result.Summary),
		SamplePercent: result.Fraction * 100,
		Verifiers:     result.Verifiers,
		Stratified:    result.Stratified,
		Stats:         toHTTPStats(result.Stats),
	}, nil
}

func (h *HTTPEndpoint) Export(ctx context.Context, r *http.Request) (any, error) {
	kind := entity.ExportKind(strings.ToLower(pkgrouter.GetParam(ctx, "kind")))

	result, err := h.uc.Export(ctx, pkgrouter.GetParam(ctx, "id"), kind)
	if err != nil {
		return nil, err
	}

	return pkgrouter.File{
		Name:        result.FileName,
		ContentType: xlsxContentType,
		Content:     result.Content,
	}, nil
}

func (h *HTTPEndpoint) Reset(ctx context.Context, r *http.Request) (any, error) {
	if err := h.uc.Reset(ctx, pkgrouter.GetParam(ctx, "id")); err != nil {
		return nil, err
	}
	return nil, nil
}

// readUpload buffers every uploaded file fully so parsing never depends on the
// request stream.
func (h *HTTPEndpoint) readUpload(r *http.Request) (usecase.CollateInput, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || !strings.EqualFold(mediaType, "multipart/form-data") {
		return usecase.CollateInput{}, pkgerror.NewUnsupportedMedia("multipart/form-data")
	}

	r.Body = http.MaxBytesReader(nil, r.Body, h.maxUploadBytes)
	reader, err := r.MultipartReader()
	if err != nil {
		return usecase.CollateInput{}, pkgerror.NewInvalidFormat()
	}

	var in usecase.CollateInput
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return usecase.CollateInput{}, h.uploadErr(err)
		}

		switch part.FormName() {
		case "files", "file":
			name := filepath.Base(part.FileName())
			if name == "." || name == string(filepath.Separator) || name == "" {
				_ = part.Close()
				return usecase.CollateInput{}, pkgerror.NewInvalidInput(errors.New("uploaded file has no name"))
			}
			content, err := io.ReadAll(part)
			_ = part.Close()
			if err != nil {
				return usecase.CollateInput{}, h.uploadErr(err)
			}
			in.Files = append(in.Files, entity.UploadedFile{Name: name, Content: content})

		case "sample_percent":
			raw, err := readField(part)
			if err != nil {
				return usecase.CollateInput{}, h.uploadErr(err)
			}
			if raw == "" {
				continue
			}
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return usecase.CollateInput{}, pkgerror.NewInvalidInput(errors.New("invalid sample_percent"))
			}
			in.SamplePercent = &value

		case "verifiers":
			raw, err := readField(part)
			if err != nil {
				return usecase.CollateInput{}, h.uploadErr(err)
			}
			in.Verifiers = append(in.Verifiers, pipeline.ParseVerifiers(raw)...)

		default:
			_ = part.Close()
		}
	}

	return in, nil
}

func readField(part io.ReadCloser) (string, error) {
	defer func() {
		_ = part.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func (h *HTTPEndpoint) uploadErr(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return pkgerror.NewTooLarge(h.maxUploadBytes)
	}
	return pkgerror.NewInvalidFormat()
}
