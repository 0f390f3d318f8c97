package http

import (
	"bytes"
	_ "embed"
	"errors"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/sheetmerge/pkg/domain/interfaces"
	"github.com/m-mizutani/sheetmerge/pkg/domain/model"
	"github.com/m-mizutani/sheetmerge/pkg/domain/types"
	"github.com/m-mizutani/sheetmerge/pkg/usecase"
	"github.com/m-mizutani/sheetmerge/pkg/utils/errutil"
)

//go:embed templates/index.html
var indexTemplate string

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	multipartMemory = 8 << 20
)

// pageData is the view model of the index page
type pageData struct {
	Settings model.FilterSettings
	Previews []*model.Preview
	Notices  []string
	Version  string
}

// pageHandler serves the browser UI: one page showing the forms, the previews
// of the session's files and any notices
type pageHandler struct {
	mergeUC       interfaces.MergeUseCase
	maxUploadSize int64
	tmpl          *template.Template
}

func newPageHandler(mergeUC interfaces.MergeUseCase, maxUploadSize int64) (*pageHandler, error) {
	tmpl, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse index template")
	}

	return &pageHandler{
		mergeUC:       mergeUC,
		maxUploadSize: maxUploadSize,
		tmpl:          tmpl,
	}, nil
}

// Index shows the current state of the session
func (h *pageHandler) Index(w http.ResponseWriter, r *http.Request) {
	result := h.mergeUC.State(r.Context(), sessionFrom(r.Context()))
	h.render(w, r, http.StatusOK, result)
}

// Upload replaces the session's files with the uploaded ones
func (h *pageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := sessionFrom(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		status := http.StatusBadRequest
		notice := "The upload could not be read."
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			status = http.StatusRequestEntityTooLarge
			notice = "The upload exceeds the limit of " + strconv.FormatInt(h.maxUploadSize, 10) + " bytes."
		}
		ctxlog.From(ctx).Warn("Failed to parse upload", "error", err)
		h.render(w, r, status, h.mergeUC.State(ctx, id), notice)
		return
	}
	defer r.MultipartForm.RemoveAll()

	uploads, err := readUploads(r.MultipartForm.File["files"])
	if err != nil {
		errutil.Handle(ctx, "failed to read uploaded files", err)
		h.render(w, r, http.StatusBadRequest, h.mergeUC.State(ctx, id), "The upload could not be read.")
		return
	}

	var settings *model.FilterSettings
	if _, ok := r.MultipartForm.Value["rows_to_skip"]; ok {
		parsed := settingsFromForm(r)
		settings = &parsed
	}

	result, err := h.mergeUC.LoadFiles(ctx, id, uploads, settings)
	if err != nil {
		errutil.Handle(ctx, "failed to load files", err)
		h.render(w, r, http.StatusInternalServerError, h.mergeUC.State(ctx, id), "The files could not be processed.")
		return
	}

	h.render(w, r, http.StatusOK, result)
}

// Settings applies new filter settings to the session's files
func (h *pageHandler) Settings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := sessionFrom(ctx)

	if err := r.ParseForm(); err != nil {
		ctxlog.From(ctx).Warn("Failed to parse settings form", "error", err)
	}

	result, err := h.mergeUC.UpdateSettings(ctx, id, settingsFromForm(r))
	if err != nil {
		errutil.Handle(ctx, "failed to apply settings", err)
		h.render(w, r, http.StatusInternalServerError, h.mergeUC.State(ctx, id), "The files could not be processed.")
		return
	}

	h.render(w, r, http.StatusOK, result)
}

// Download sends the combined workbook of the session
func (h *pageHandler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := sessionFrom(ctx)

	var buf bytes.Buffer
	if err := h.mergeUC.Download(ctx, id, &buf); err != nil {
		if errors.Is(err, model.ErrNoData) {
			ctxlog.From(ctx).Info("Download requested without files")
			h.render(w, r, http.StatusConflict, h.mergeUC.State(ctx, id), model.NoticeNoData)
			return
		}
		errutil.Handle(ctx, "failed to build combined workbook", err)
		h.render(w, r, http.StatusInternalServerError, h.mergeUC.State(ctx, id), "The combined file could not be created.")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+usecase.CombinedFileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		ctxlog.From(ctx).Error("Failed to write combined workbook", "error", err)
	}
}

func (h *pageHandler) render(w http.ResponseWriter, r *http.Request, status int, result *model.PassResult, notices ...string) {
	data := &pageData{
		Settings: result.Settings,
		Previews: result.Previews,
		Notices:  append(append([]string{}, result.Notices...), notices...),
		Version:  types.Version,
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		errutil.Handle(r.Context(), "failed to render page", goerr.Wrap(err, "template execution failed"))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		ctxlog.From(r.Context()).Error("Failed to write page", "error", err)
	}
}

func settingsFromForm(r *http.Request) model.FilterSettings {
	return model.ParseFilterSettings(
		r.FormValue("rows_to_skip"),
		model.ParseToggle(r.FormValue("column_filter")),
		r.FormValue("column_number"),
	)
}

func readUploads(headers []*multipart.FileHeader) ([]*model.Upload, error) {
	uploads := make([]*model.Upload, 0, len(headers))
	for _, fh := range headers {
		content, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, &model.Upload{
			Name:    fh.Filename,
			Content: content,
		})
	}
	return uploads, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open uploaded file", goerr.V("file", fh.Filename))
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read uploaded file", goerr.V("file", fh.Filename))
	}
	return content, nil
}
