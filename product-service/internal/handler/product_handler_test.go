package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/storefront/services/shared/apperr"
	"github.com/storefront/services/shared/cqrs"
	"github.com/storefront/services/shared/models"
)

type mockProductCommander struct {
	saveFn   func(cqrs.SaveProductCommand) (uint, error)
	deleteFn func(cqrs.DeleteProductCommand) error
}

func (m *mockProductCommander) Save(_ context.Context, cmd cqrs.SaveProductCommand) (uint, error) {
	if m.saveFn != nil {
		return m.saveFn(cmd)
	}
	return 0, fmt.Errorf("not configured")
}

func (m *mockProductCommander) Delete(_ context.Context, cmd cqrs.DeleteProductCommand) error {
	if m.deleteFn != nil {
		return m.deleteFn(cmd)
	}
	return fmt.Errorf("not configured")
}

type mockProductQuerier struct {
	listFn func(cqrs.ListProductsQuery) (*models.ProductPage, error)
	getFn  func(cqrs.GetProductQuery) (*models.ProductView, error)
}

func (m *mockProductQuerier) ListProducts(_ context.Context, q cqrs.ListProductsQuery) (*models.ProductPage, error) {
	if m.listFn != nil {
		return m.listFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockProductQuerier) GetProduct(_ context.Context, q cqrs.GetProductQuery) (*models.ProductView, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

func newProductTestRouter(cmds ProductCommander, qrys ProductQuerier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewProductHandler(cmds, qrys, 16)
	g := r.Group("/product")
	g.POST("/save", h.SaveProduct)
	g.GET("/all", h.ListProducts)
	g.GET("/:product_id", h.GetProduct)
	g.DELETE("/delete/:product_id", h.DeleteProduct)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if image != nil {
		part, err := w.CreateFormFile("image", "photo.png")
		if err != nil {
			t.Fatal(err)
		}
		part.Write(image)
	}
	w.Close()
	return body, w.FormDataContentType()
}

func TestSaveProduct(t *testing.T) {
	tests := []struct {
		name            string
		fields          map[string]string
		image           []byte
		saveFn          func(cqrs.SaveProductCommand) (uint, error)
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:   "create",
			fields: map[string]string{"name": "Lamp", "description": "Desk", "price": "12.5", "current_user_id": "3"},
			image:  []byte("png"),
			saveFn: func(cmd cqrs.SaveProductCommand) (uint, error) {
				if cmd.ProductID != 0 || *cmd.Patch.Name != "Lamp" || *cmd.Patch.Price != 12.5 {
					return 0, fmt.Errorf("unexpected command %+v", cmd)
				}
				if cmd.Image == nil || cmd.Image.Filename != "photo.png" || string(cmd.Image.Data) != "png" {
					return 0, fmt.Errorf("unexpected image")
				}
				if cmd.Patch.Rating != nil || cmd.CurrentUserID != 3 {
					return 0, fmt.Errorf("unexpected fields")
				}
				return 11, nil
			},
			expectedStatus:  http.StatusOK,
			expectedMessage: "Product created successfully",
		},
		{
			name:   "update without image",
			fields: map[string]string{"product_id": "11", "rating": "4", "current_user_id": "3"},
			saveFn: func(cmd cqrs.SaveProductCommand) (uint, error) {
				if cmd.Image != nil || cmd.Patch.Name != nil || *cmd.Patch.Rating != 4 {
					return 0, fmt.Errorf("unexpected command %+v", cmd)
				}
				return cmd.ProductID, nil
			},
			expectedStatus:  http.StatusOK,
			expectedMessage: "Product updated successfully",
		},
		{
			name:            "missing current user",
			fields:          map[string]string{"name": "Lamp"},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid request data",
		},
		{
			name:            "non-numeric price",
			fields:          map[string]string{"price": "cheap", "current_user_id": "3"},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid form data",
		},
		{
			name:           "image too large",
			fields:         map[string]string{"name": "Lamp", "current_user_id": "3"},
			image:          bytes.Repeat([]byte("x"), 17),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "image required",
			fields: map[string]string{"name": "Lamp", "description": "Desk", "price": "1", "current_user_id": "3"},
			saveFn: func(cqrs.SaveProductCommand) (uint, error) {
				return 0, apperr.Validation("image is required")
			},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "image is required",
		},
		{
			name:   "unknown product",
			fields: map[string]string{"product_id": "99", "current_user_id": "3"},
			saveFn: func(cqrs.SaveProductCommand) (uint, error) {
				return 0, apperr.NotFound("Product not found")
			},
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Product not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newProductTestRouter(&mockProductCommander{saveFn: tt.saveFn}, &mockProductQuerier{})
			body, contentType := multipartBody(t, tt.fields, tt.image)
			req := httptest.NewRequest(http.MethodPost, "/product/save", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedMessage != "" {
				var resp map[string]any
				json.Unmarshal(w.Body.Bytes(), &resp)
				if resp["message"] != tt.expectedMessage {
					t.Errorf("expected message %q, got %v", tt.expectedMessage, resp["message"])
				}
			}
		})
	}
}

func TestListProducts(t *testing.T) {
	var got cqrs.ListProductsQuery
	qrys := &mockProductQuerier{listFn: func(q cqrs.ListProductsQuery) (*models.ProductPage, error) {
		got = q
		if q.PageSize > 100 {
			return nil, apperr.Validation("page_size must be between 1 and 100")
		}
		return &models.ProductPage{Items: []models.ProductView{{ID: 1}}, Total: 1, Page: 1, PageSize: q.PageSize, Pages: 1}, nil
	}}
	router := newProductTestRouter(&mockProductCommander{}, qrys)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/product/all?search=lamp&sort_by=price&sort_order=desc&page=1&page_size=5&include_inactive=true", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	want := cqrs.ListProductsQuery{Search: "lamp", SortBy: "price", SortOrder: "desc", Page: 1, PageSize: 5, IncludeInactive: true}
	if got != want {
		t.Errorf("expected query %+v, got %+v", want, got)
	}
	var page models.ProductPage
	json.Unmarshal(w.Body.Bytes(), &page)
	if page.Total != 1 || len(page.Items) != 1 {
		t.Errorf("unexpected page %+v", page)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/product/all?page_size=500", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/product/all?page=one", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-numeric page, got %d", w.Code)
	}
}

func TestGetProduct(t *testing.T) {
	qrys := &mockProductQuerier{getFn: func(q cqrs.GetProductQuery) (*models.ProductView, error) {
		if q.ProductID != 4 {
			return nil, apperr.NotFound("Product not found")
		}
		return &models.ProductView{ID: 4, Name: "Lamp"}, nil
	}}
	router := newProductTestRouter(&mockProductCommander{}, qrys)

	tests := []struct {
		url    string
		status int
	}{
		{"/product/4", http.StatusOK},
		{"/product/5", http.StatusNotFound},
		{"/product/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))
		if w.Code != tt.status {
			t.Errorf("%s: expected %d, got %d", tt.url, tt.status, w.Code)
		}
	}
}

func TestDeleteProduct(t *testing.T) {
	cmds := &mockProductCommander{deleteFn: func(cmd cqrs.DeleteProductCommand) error {
		if cmd.ProductID != 4 {
			return apperr.NotFound("Product not found")
		}
		if cmd.CurrentUserID != 2 {
			return fmt.Errorf("unexpected actor %d", cmd.CurrentUserID)
		}
		return nil
	}}
	router := newProductTestRouter(cmds, &mockProductQuerier{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/product/delete/4?current_user_id=2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Product deleted successfully") {
		t.Errorf("unexpected body %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/product/delete/4", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without current_user_id, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/product/delete/8?current_user_id=2", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
