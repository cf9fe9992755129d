package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartshop/internal/core/clock"
	"smartshop/internal/core/id"
	"smartshop/internal/core/lock"
	"smartshop/internal/core/response"
	"smartshop/internal/core/tx/txtest"
	"smartshop/internal/core/types"
	"smartshop/internal/domain/catalogs/product"
	"smartshop/internal/domain/invoice"
	"smartshop/internal/domain/sequence"
	"smartshop/internal/infrastructure/http/v1/dto"
	"smartshop/internal/infrastructure/http/v1/middleware"
)

var testNow = time.Date(2025, 9, 20, 13, 30, 15, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success    bool                   `json:"success"`
	Message    string                 `json:"message"`
	Data       json.RawMessage        `json:"data"`
	Errors     []response.ErrorDetail `json:"errors"`
	StatusCode int                    `json:"statusCode"`
}

type testAPI struct {
	router   *gin.Engine
	products productRepo
	invoices *invoiceStore

	widget, gadget *product.Product
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	products := newProductRepo()
	invoices := newInvoiceStore()
	sequences := newSequenceStore()
	txm := txtest.New(products, invoices, sequences)
	clk := clock.NewFixed(testNow)

	seqSvc := sequence.NewService(sequences, txm, lock.NewKeyed(), clk)
	productSvc := product.NewService(products, txm, seqSvc)
	invoiceSvc, err := invoice.NewService(invoice.Deps{
		Repo:   invoices,
		Prices: productSvc,
		TxMgr:  txm,
		Clock:  clk,
	}, invoice.Options{})
	require.NoError(t, err)

	api := &testAPI{
		products: products,
		invoices: invoices,
		widget:   product.NewProduct("Widget", types.MustMoney("10.00"), 5),
		gadget:   product.NewProduct("Gadget", types.MustMoney("5.00"), 5),
	}
	products.Put(api.widget)
	products.Put(api.gadget)

	r := gin.New()
	r.Use(middleware.ErrorHandler(), middleware.Recovery())

	base := NewBaseHandler()
	ph := NewProductHandler(base, productSvc)
	pg := r.Group("/api/products")
	pg.GET("", ph.List)
	pg.POST("", ph.Create)
	pg.GET("/:id", ph.Get)
	pg.PUT("/:id", ph.Update)
	pg.DELETE("/:id", ph.Delete)

	ih := NewInvoiceHandler(base, invoiceSvc)
	ig := r.Group("/api/invoices")
	ig.GET("", ih.List)
	ig.POST("", ih.Create)
	ig.GET("/:id", ih.Get)
	ig.PUT("/:id", ih.Update)
	ig.DELETE("/:id", ih.Delete)

	sh := NewSequenceHandler(base, seqSvc)
	sg := r.Group("/api/sequences")
	sg.GET("", sh.List)
	sg.GET("/:key/next", sh.Next)
	sg.PUT("/:key", sh.Configure)

	api.router = r
	return api
}

func (a *testAPI) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *testAPI) invoiceBody() gin.H {
	return gin.H{
		"customerId": id.New(),
		"status":     int(invoice.StatusIssued),
		"items": []gin.H{
			{"productId": a.widget.ID, "quantity": 2},
			{"productId": a.gadget.ID, "quantity": 3},
		},
		"payments": []gin.H{
			{"amount": "35.00", "paymentMethodId": id.New(), "status": int(invoice.PaymentCompleted)},
		},
	}
}

func TestProductHandler_CRUD(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(t, http.MethodPost, "/api/products", gin.H{"name": "Lamp", "price": "12.50", "stock": 3})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, http.StatusCreated, env.StatusCode)
	assert.Equal(t, "Product created successfully.", env.Message)

	var created dto.ProductResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "000001", created.Code)
	assert.Equal(t, "12.50", created.Price)
	assert.Equal(t, "/api/products/"+created.ID, w.Header().Get("Location"))

	w, env = api.do(t, http.MethodGet, "/api/products/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Product retrieved successfully.", env.Message)

	w, env = api.do(t, http.MethodPut, "/api/products/"+created.ID,
		gin.H{"name": "Desk lamp", "price": "13.00", "stock": 2, "version": created.Version})
	require.Equal(t, http.StatusOK, w.Code)
	var updated dto.ProductResponse
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Desk lamp", updated.Name)
	assert.Equal(t, "000001", updated.Code)
	assert.Equal(t, created.Version+1, updated.Version)

	w, _ = api.do(t, http.MethodPut, "/api/products/"+created.ID,
		gin.H{"name": "Stale", "price": "1", "version": created.Version})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = api.do(t, http.MethodDelete, "/api/products/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, env = api.do(t, http.MethodGet, "/api/products/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
}

func TestProductHandler_BadRequests(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(t, http.MethodGet, "/api/products/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotEmpty(t, env.Errors)
	assert.Equal(t, "id", env.Errors[0].Field)

	w, _ = api.do(t, http.MethodPost, "/api/products", gin.H{"price": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(t, http.MethodPost, "/api/products", gin.H{"name": "Neg", "price": "-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_List(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(t, http.MethodGet, "/api/products?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Items      []dto.ProductResponse `json:"items"`
		TotalCount int64                 `json:"totalCount"`
		Limit      int                   `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Items, 1)
	assert.EqualValues(t, 2, page.TotalCount)
	assert.Equal(t, 1, page.Limit)
}

func TestInvoiceHandler_CreateGetDelete(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(t, http.MethodPost, "/api/invoices", api.invoiceBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Invoice created successfully.", env.Message)

	var created dto.InvoiceResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "35.00", created.Total)
	assert.Equal(t, testNow, created.InvoiceDate)
	assert.Regexp(t, `^INV-20250920133015-[0-9a-f]{8}$`, created.InvoiceNumber)
	assert.Len(t, created.Items, 2)
	require.Len(t, created.Payments, 1)
	assert.Equal(t, testNow, created.Payments[0].Date)

	w, env = api.do(t, http.MethodGet, "/api/invoices/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got dto.InvoiceResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, created.InvoiceNumber, got.InvoiceNumber)
	assert.Len(t, got.Items, 2)

	w, env = api.do(t, http.MethodDelete, "/api/invoices/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Invoice deleted successfully.", env.Message)

	w, _ = api.do(t, http.MethodGet, "/api/invoices/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, api.invoices.items)
	assert.Empty(t, api.invoices.payments)
}

func TestInvoiceHandler_CreateRejectsMissingItems(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(t, http.MethodPost, "/api/invoices", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invoice or items missing.", env.Message)

	body := api.invoiceBody()
	body["items"] = []gin.H{}
	w, _ = api.do(t, http.MethodPost, "/api/invoices", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, api.invoices.invoices)
}

func TestInvoiceHandler_UpdateKeepsNumberAndReplacesItems(t *testing.T) {
	api := newTestAPI(t)

	_, env := api.do(t, http.MethodPost, "/api/invoices", api.invoiceBody())
	var created dto.InvoiceResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))

	date := testNow.Add(-24 * time.Hour)
	w, env := api.do(t, http.MethodPut, "/api/invoices/"+created.ID, gin.H{
		"customerId":  created.CustomerID,
		"status":      int(invoice.StatusPaid),
		"invoiceDate": date,
		"items":       []gin.H{{"productId": api.gadget.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated dto.InvoiceResponse
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, created.InvoiceNumber, updated.InvoiceNumber)
	assert.Equal(t, "5.00", updated.Total)
	assert.Equal(t, date, updated.InvoiceDate)
	assert.Len(t, updated.Items, 1)
	assert.Len(t, updated.Payments, 1, "absent payments array keeps stored payments")

	w, _ = api.do(t, http.MethodPut, "/api/invoices/"+id.New().String(), api.invoiceBody())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceHandler_ListRejectsBadCustomerID(t *testing.T) {
	api := newTestAPI(t)

	w, _ := api.do(t, http.MethodGet, "/api/invoices?customerId=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := api.do(t, http.MethodGet, "/api/invoices", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Invoices retrieved successfully.", env.Message)
}

func TestSequenceHandler_NextAndConfigure(t *testing.T) {
	api := newTestAPI(t)

	next := func(path string) string {
		w, env := api.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var v dto.NextValueResponse
		require.NoError(t, json.Unmarshal(env.Data, &v))
		return v.Value
	}

	assert.Equal(t, "000001", next("/api/sequences/Order/next"))
	assert.Equal(t, "000001", next("/api/sequences/Order/next?increment=false"))
	assert.Equal(t, "000002", next("/api/sequences/Order/next?increment=true"))

	w, env := api.do(t, http.MethodPut, "/api/sequences/Order", gin.H{"prefix": "ORD", "length": 4})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cfg dto.SequenceResponse
	require.NoError(t, json.Unmarshal(env.Data, &cfg))
	assert.Equal(t, "ORD-0002", cfg.Current)

	assert.Equal(t, "ORD-0003", next("/api/sequences/Order/next?increment=true"))

	w, _ = api.do(t, http.MethodGet, "/api/sequences/Order/next?increment=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(t, http.MethodPut, "/api/sequences/Order", gin.H{"length": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
