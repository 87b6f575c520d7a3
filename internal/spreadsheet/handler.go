package spreadsheet

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/freitasmatheusrn/olist-helper/internal/upload"
	"github.com/freitasmatheusrn/olist-helper/internal/user"
	"github.com/freitasmatheusrn/olist-helper/pkg/rest"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// statusByKind is the only place errors become HTTP statuses. Empty input
// stays a 500, matching what the dashboard already handles.
var statusByKind = map[ErrorKind]int{
	KindOversize:       http.StatusRequestEntityTooLarge,
	KindUnknownLayout:  http.StatusBadRequest,
	KindColumnCount:    http.StatusBadRequest,
	KindColumnMismatch: http.StatusBadRequest,
	KindArchive:        http.StatusInternalServerError,
	KindEmptyInput:     http.StatusInternalServerError,
	KindDecode:         http.StatusInternalServerError,
}

type Handler struct {
	service Service
	uploads *upload.Store
	logger  *zap.Logger
}

func NewHandler(service Service, uploads *upload.Store, logger *zap.Logger) *Handler {
	return &Handler{service: service, uploads: uploads, logger: logger}
}

// ListLayouts handles GET /api/spreadsheets/layouts
func (h *Handler) ListLayouts(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Layouts())
}

// ValidateLayout handles POST /api/spreadsheets/validate-layout
// Checks the uploaded header against the selected layout
func (h *Handler) ValidateLayout(c echo.Context) error {
	file, apiErr := h.receiveUpload(c)
	if apiErr != nil {
		return apiErr
	}
	defer h.removeUpload(file)

	err := h.service.ValidateLayout(c.Request().Context(), ValidateInput{
		Path:     file.Path,
		FileName: file.OriginalName,
		Layout:   c.FormValue("layoutType"),
	})
	if err != nil {
		return toApiErr(err)
	}

	return c.JSON(http.StatusOK, ValidateOutput{Valid: true})
}

// Split handles POST /api/spreadsheets/split
// Splits the uploaded spreadsheet into smaller workbooks returned as a zip
func (h *Handler) Split(c echo.Context) error {
	file, apiErr := h.receiveUpload(c)
	if apiErr != nil {
		return apiErr
	}
	defer h.removeUpload(file)

	layout := c.FormValue("layoutType")
	if layout == "" {
		return rest.NewBadRequestError("tipo de layout nao informado")
	}

	var email string
	if u, err := user.GetCurrentUser(c); err == nil {
		email = u.Email
	}

	result, err := h.service.Split(c.Request().Context(), SplitInput{
		Path:      file.Path,
		FileName:  file.OriginalName,
		Layout:    layout,
		UserEmail: email,
	})
	if err != nil {
		return toApiErr(err)
	}

	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition, "attachment; filename="+result.FileName)
	header.Set("X-Chunk-Count", strconv.Itoa(result.Chunks))
	header.Set("X-Rows-Per-Chunk", strconv.Itoa(result.RowsPerChunk))
	return c.Blob(http.StatusOK, "application/zip", result.Archive)
}

// receiveUpload stores the "file" field on disk. Oversized files are
// rejected from the declared size before any byte is copied.
func (h *Handler) receiveUpload(c echo.Context) (*upload.File, *rest.ApiErr) {
	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, rest.NewBadRequestError("arquivo nao fornecido")
		}
		if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
			return nil, toApiErr(NewOversizeError(h.uploads.MaxBytes()))
		}
		h.logger.Error("failed to parse multipart form", zap.Error(err))
		return nil, rest.NewInternalServerError("erro ao processar formulario: " + err.Error())
	}

	file, err := h.uploads.Save(fh)
	if err != nil {
		if errors.Is(err, upload.ErrTooLarge) {
			return nil, toApiErr(NewOversizeError(h.uploads.MaxBytes()))
		}
		h.logger.Error("failed to store upload", zap.Error(err))
		return nil, rest.NewInternalServerError("erro ao salvar arquivo")
	}
	return file, nil
}

func (h *Handler) removeUpload(file *upload.File) {
	if err := file.Remove(); err != nil {
		h.logger.Warn("failed to remove upload",
			zap.String("path", file.Path),
			zap.Error(err),
		)
	}
}

func toApiErr(err error) *rest.ApiErr {
	var e *Error
	if !errors.As(err, &e) {
		return rest.NewInternalServerError("erro inesperado: " + err.Error())
	}

	code, ok := statusByKind[e.Kind]
	if !ok {
		code = http.StatusInternalServerError
	}

	var causes []rest.Causes
	switch e.Kind {
	case KindColumnMismatch:
		causes = []rest.Causes{{
			Field:   "coluna " + strconv.Itoa(e.Position),
			Message: e.Message,
		}}
	case KindColumnCount:
		causes = []rest.Causes{{
			Field:   "colunas",
			Message: e.Message,
		}}
	}

	return rest.NewApiErr(e.Error(), code, causes)
}
