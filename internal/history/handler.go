package history

import (
	"net/http"

	"github.com/freitasmatheusrn/olist-helper/internal/database"
	"github.com/freitasmatheusrn/olist-helper/pkg/parser"
	"github.com/freitasmatheusrn/olist-helper/pkg/rest"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Handler struct {
	recorder Recorder
	logger   *zap.Logger
}

func NewHandler(recorder Recorder, logger *zap.Logger) *Handler {
	return &Handler{recorder: recorder, logger: logger}
}

// ListSplitJobs handles GET /api/spreadsheets/history
func (h *Handler) ListSplitJobs(c echo.Context) error {
	var input ListInput
	if err := c.Bind(&input); err != nil {
		return rest.NewUnprocessableEntity("erro ao processar parametros")
	}
	if input.Limit <= 0 {
		input.Limit = defaultListLimit
	}
	if input.Limit > maxListLimit {
		input.Limit = maxListLimit
	}

	jobs, err := h.recorder.ListRecent(c.Request().Context(), input.Limit)
	if err != nil {
		h.logger.Error("failed to list split jobs", zap.Error(err))
		return database.ToApiErr(err, "erro ao buscar historico")
	}

	out := make([]SplitJobOutput, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toSplitJobOutput(j))
	}
	return c.JSON(http.StatusOK, out)
}

func toSplitJobOutput(j SplitJob) SplitJobOutput {
	id, _ := parser.PgUUIDToString(j.ID)
	return SplitJobOutput{
		ID:           id,
		Layout:       j.Layout,
		FileName:     j.FileName,
		TotalRows:    int(j.TotalRows),
		Chunks:       int(j.Chunks),
		RowsPerChunk: int(j.RowsPerChunk),
		Grouped:      j.Grouped,
		UserEmail:    j.UserEmail.String,
		CreatedAt:    j.CreatedAt.Time,
	}
}
