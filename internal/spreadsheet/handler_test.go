package spreadsheet

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/freitasmatheusrn/olist-helper/internal/history"
	"github.com/freitasmatheusrn/olist-helper/internal/upload"
	"github.com/freitasmatheusrn/olist-helper/internal/user"
	"github.com/freitasmatheusrn/olist-helper/pkg/rest"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRecorder struct {
	mu   sync.Mutex
	jobs []history.SplitJob
	err  error
}

func (f *fakeRecorder) Record(ctx context.Context, job *history.SplitJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, *job)
	return f.err
}

func (f *fakeRecorder) ListRecent(ctx context.Context, limit int) ([]history.SplitJob, error) {
	return f.jobs, nil
}

type handlerFixture struct {
	handler  *Handler
	recorder *fakeRecorder
	dir      string
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	dir := t.TempDir()
	store, err := upload.NewStore(dir, DefaultMaxInputBytes)
	require.NoError(t, err)

	recorder := &fakeRecorder{}
	logger := zap.NewNop()
	packer := NewPacker(WorkbookEstimator{}, PackerConfig{})
	service := NewService(packer, NewArchiveBuilder(2), recorder, logger)

	return &handlerFixture{
		handler:  NewHandler(service, store, logger),
		recorder: recorder,
		dir:      dir,
	}
}

func (f *handlerFixture) assertNoLeftovers(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "uploads must be removed after the request")
}

func newUploadContext(t *testing.T, fileName string, content []byte, layout string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if layout != "" {
		require.NoError(t, mw.WriteField("layoutType", layout))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func customersCSV(rows int) []byte {
	cols, _ := ExpectedLayout(LayoutCustomers)
	var b strings.Builder
	b.WriteString(strings.Join(cols, ";"))
	b.WriteString("\n")
	for i := 1; i <= rows; i++ {
		fields := make([]string, len(cols))
		fields[0] = fmt.Sprint(i)
		fields[2] = fmt.Sprintf("Cliente %d", i)
		b.WriteString(strings.Join(fields, ";"))
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func requireApiErr(t *testing.T, err error, code int) *rest.ApiErr {
	t.Helper()
	var apiErr *rest.ApiErr
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, code, apiErr.Code)
	return apiErr
}

func TestHandler_ValidateLayout_Success(t *testing.T) {
	f := newHandlerFixture(t)
	c, rec := newUploadContext(t, "clientes.csv", customersCSV(3), LayoutCustomers)

	require.NoError(t, f.handler.ValidateLayout(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":true}`, rec.Body.String())
	f.assertNoLeftovers(t)
}

func TestHandler_ValidateLayout_ColumnMismatch(t *testing.T) {
	f := newHandlerFixture(t)
	content := bytes.Replace(customersCSV(1), []byte("Fantasia"), []byte("Apelido"), 1)
	c, _ := newUploadContext(t, "clientes.csv", content, LayoutCustomers)

	apiErr := requireApiErr(t, f.handler.ValidateLayout(c), http.StatusBadRequest)

	assert.Contains(t, apiErr.Message, "coluna 4")
	require.Len(t, apiErr.Causes, 1)
	assert.Equal(t, "coluna 4", apiErr.Causes[0].Field)
	f.assertNoLeftovers(t)
}

func TestHandler_ValidateLayout_ColumnCount(t *testing.T) {
	f := newHandlerFixture(t)
	c, _ := newUploadContext(t, "clientes.csv", []byte("ID;Nome\n1;Ana\n"), LayoutCustomers)

	apiErr := requireApiErr(t, f.handler.ValidateLayout(c), http.StatusBadRequest)
	assert.Contains(t, apiErr.Message, "esperado 19, encontrado 2")
}

func TestHandler_ValidateLayout_UnknownLayout(t *testing.T) {
	f := newHandlerFixture(t)
	c, _ := newUploadContext(t, "clientes.csv", customersCSV(1), "pedidos")

	requireApiErr(t, f.handler.ValidateLayout(c), http.StatusBadRequest)
	f.assertNoLeftovers(t)
}

func TestHandler_MissingFile(t *testing.T) {
	f := newHandlerFixture(t)

	c, _ := newUploadContext(t, "", nil, LayoutCustomers)
	apiErr := requireApiErr(t, f.handler.ValidateLayout(c), http.StatusBadRequest)
	assert.Equal(t, "arquivo nao fornecido", apiErr.Message)

	c, _ = newUploadContext(t, "", nil, LayoutCustomers)
	requireApiErr(t, f.handler.Split(c), http.StatusBadRequest)
}

func TestHandler_SizeLimitBoundary(t *testing.T) {
	f := newHandlerFixture(t)

	// exactly at the limit is accepted and reaches layout validation
	atLimit := []byte("ID;Nome\n1;")
	atLimit = append(atLimit, bytes.Repeat([]byte("a"), int(DefaultMaxInputBytes)-len(atLimit)-1)...)
	atLimit = append(atLimit, '\n')
	require.Len(t, atLimit, int(DefaultMaxInputBytes))

	c, _ := newUploadContext(t, "clientes.csv", atLimit, LayoutCustomers)
	requireApiErr(t, f.handler.ValidateLayout(c), http.StatusBadRequest)

	overLimit := append(atLimit, 'b')
	c, _ = newUploadContext(t, "clientes.csv", overLimit, LayoutCustomers)
	apiErr := requireApiErr(t, f.handler.ValidateLayout(c), http.StatusRequestEntityTooLarge)
	assert.Equal(t, "o arquivo excede o limite de 5 MB", apiErr.Message)

	c, _ = newUploadContext(t, "clientes.csv", overLimit, LayoutCustomers)
	requireApiErr(t, f.handler.Split(c), http.StatusRequestEntityTooLarge)

	f.assertNoLeftovers(t)
}

func TestHandler_Split_ReturnsZip(t *testing.T) {
	f := newHandlerFixture(t)
	c, rec := newUploadContext(t, "clientes.csv", customersCSV(1200), LayoutCustomers)
	user.SetCurrentUser(c, user.CurrentUser{Email: "ana@olist.com"})

	require.NoError(t, f.handler.Split(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "attachment; filename=Planilha_clientes_dividida.zip", rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, "3", rec.Header().Get("X-Chunk-Count"))
	assert.Equal(t, "500", rec.Header().Get("X-Rows-Per-Chunk"))

	data := rec.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 3)
	for i, file := range zr.File {
		assert.Equal(t, fmt.Sprintf("Planilha_clientes_parte_%d.xlsx", i+1), file.Name)
	}

	require.Len(t, f.recorder.jobs, 1)
	job := f.recorder.jobs[0]
	assert.Equal(t, LayoutCustomers, job.Layout)
	assert.Equal(t, int32(1200), job.TotalRows)
	assert.Equal(t, int32(3), job.Chunks)
	assert.Equal(t, "ana@olist.com", job.UserEmail.String)
	assert.True(t, job.UserEmail.Valid)

	f.assertNoLeftovers(t)
}

func TestHandler_Split_RecorderFailureDoesNotFailRequest(t *testing.T) {
	f := newHandlerFixture(t)
	f.recorder.err = errors.New("banco fora do ar")
	c, rec := newUploadContext(t, "clientes.csv", customersCSV(5), LayoutCustomers)

	require.NoError(t, f.handler.Split(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Chunk-Count"))
}

func TestHandler_Split_MissingLayout(t *testing.T) {
	f := newHandlerFixture(t)
	c, _ := newUploadContext(t, "clientes.csv", customersCSV(1), "")

	requireApiErr(t, f.handler.Split(c), http.StatusBadRequest)
	f.assertNoLeftovers(t)
}

func TestHandler_Split_HeaderOnly(t *testing.T) {
	f := newHandlerFixture(t)
	c, _ := newUploadContext(t, "clientes.csv", customersCSV(0), LayoutCustomers)

	apiErr := requireApiErr(t, f.handler.Split(c), http.StatusInternalServerError)
	assert.Contains(t, apiErr.Message, "vazia")
	assert.Empty(t, f.recorder.jobs)
	f.assertNoLeftovers(t)
}

func TestHandler_Split_CorruptWorkbook(t *testing.T) {
	f := newHandlerFixture(t)
	c, _ := newUploadContext(t, "produtos.xlsx", []byte("corrompido"), LayoutProducts)

	apiErr := requireApiErr(t, f.handler.Split(c), http.StatusInternalServerError)
	assert.Contains(t, apiErr.Message, "erro ao ler planilha")
}

func TestHandler_ListLayouts(t *testing.T) {
	f := newHandlerFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, f.handler.ListLayouts(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"produtos"`)
}

func TestToApiErr_UnexpectedError(t *testing.T) {
	apiErr := toApiErr(errors.New("falha qualquer"))

	assert.Equal(t, http.StatusInternalServerError, apiErr.Code)
	assert.Equal(t, "erro inesperado: falha qualquer", apiErr.Message)
}

func TestStatusByKind(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewOversizeError(DefaultMaxInputBytes), http.StatusRequestEntityTooLarge},
		{NewUnknownLayoutError("x"), http.StatusBadRequest},
		{NewColumnCountError("x", 2, 1), http.StatusBadRequest},
		{NewColumnMismatchError("x", 1, "a", "b"), http.StatusBadRequest},
		{NewEmptyInputError(), http.StatusInternalServerError},
		{NewDecodeError(errors.New("eof")), http.StatusInternalServerError},
		{NewArchiveError(errors.New("zip")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(KindOf(tt.err).String(), func(t *testing.T) {
			assert.Equal(t, tt.want, toApiErr(tt.err).Code)
		})
	}
}
