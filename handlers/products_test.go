package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecom-backend/models"
)

// formField is one multipart field; repeated names build form arrays.
type formField struct {
	name  string
	value string
}

// fileField is one uploaded file in a multipart request.
type fileField struct {
	field    string
	filename string
	content  string
}

func doMultipart(t *testing.T, r *gin.Engine, method, path string, fields []formField, files []fileField) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		require.NoError(t, mw.WriteField(f.name, f.value))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("API-Authorization", testToken)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createProduct(t *testing.T, r *gin.Engine, categoryID uint, name string, price float64, stock int) uint {
	t.Helper()
	w := doMultipart(t, r, "POST", "/products", []formField{
		{"category_id", fmt.Sprint(categoryID)},
		{"name", name},
		{"description", name + " description"},
		{"price", fmt.Sprint(price)},
		{"stock", fmt.Sprint(stock)},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return uint(dataMap(t, w)["product_id"].(float64))
}

func TestCreateProductWithImagesAndVariations(t *testing.T) {
	r, _, _ := newTestRouter(t)
	category := createCategory(t, r, "Electronics", nil)

	w := doMultipart(t, r, "POST", "/products", []formField{
		{"category_id", fmt.Sprint(category)},
		{"name", "Phone"},
		{"description", "A phone"},
		{"price", "499.99"},
		{"stock", "10"},
		{"variation_names", "Color"},
		{"variation_values", "Black"},
		{"variation_prices", "0"},
		{"variation_stocks", "5"},
		{"variation_names", "Color"},
		{"variation_values", "White"},
		{"variation_prices", "10"},
		{"variation_stocks", "5"},
	}, []fileField{
		{"images", "front.jpg", "front-bytes"},
		{"images", "back.jpg", "back-bytes"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := dataMap(t, w)
	assert.Equal(t, "Phone", data["name"])
	assert.EqualValues(t, 499.99, data["price"])

	images := data["images"].([]interface{})
	require.Len(t, images, 2)
	first := images[0].(map[string]interface{})
	// The first uploaded image becomes the primary one.
	assert.Equal(t, true, first["is_primary"])
	// The file was written to disk.
	if _, err := os.Stat(first["image_url"].(string)); err != nil {
		t.Errorf("uploaded image not on disk: %v", err)
	}

	variations := data["variations"].([]interface{})
	require.Len(t, variations, 2)
}

func TestCreateProductCategoryMustExist(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doMultipart(t, r, "POST", "/products", []formField{
		{"category_id", "9999"},
		{"name", "Orphan"},
		{"price", "1.00"},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Category not found", envelope(t, w).Message)
}

func TestCreateProductMismatchedVariationArrays(t *testing.T) {
	r, _, _ := newTestRouter(t)
	category := createCategory(t, r, "Electronics", nil)

	w := doMultipart(t, r, "POST", "/products", []formField{
		{"category_id", fmt.Sprint(category)},
		{"name", "Phone"},
		{"price", "1.00"},
		{"variation_names", "Color"},
		{"variation_names", "Size"},
		{"variation_values", "Black"},
		{"variation_prices", "0"},
		{"variation_stocks", "1"},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "All variation arrays must have the same length", envelope(t, w).Message)
}

func TestListProductsFilters(t *testing.T) {
	r, _, _ := newTestRouter(t)
	category := createCategory(t, r, "Electronics", nil)

	createProduct(t, r, category, "Cheap", 5, 3)
	createProduct(t, r, category, "Mid", 50, 0)
	createProduct(t, r, category, "Pricey", 500, 7)

	w := doRequest(t, r, "GET", "/products?min_price=10&max_price=100", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, dataMap(t, w)["total"])

	w = doRequest(t, r, "GET", "/products?in_stock_only=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, dataMap(t, w)["total"])

	w = doRequest(t, r, "GET", "/products?search=Pricey", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, dataMap(t, w)["total"])

	w = doRequest(t, r, "GET", "/products?min_price=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProductPartial(t *testing.T) {
	r, _, _ := newTestRouter(t)
	category := createCategory(t, r, "Electronics", nil)
	id := createProduct(t, r, category, "Phone", 499.99, 10)

	w := doMultipart(t, r, "PUT", fmt.Sprintf("/products/%d", id), []formField{
		{"price", "399.99"},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := dataMap(t, w)
	assert.EqualValues(t, 399.99, data["price"])
	assert.Equal(t, "Phone", data["name"])

	// Nothing at all to change is a client error.
	w = doMultipart(t, r, "PUT", fmt.Sprintf("/products/%d", id), nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No fields to update", envelope(t, w).Message)
}

func TestUpdateProductAppendedImageNotPrimary(t *testing.T) {
	r, _, _ := newTestRouter(t)
	category := createCategory(t, r, "Electronics", nil)
	id := createProduct(t, r, category, "Phone", 499.99, 10)

	w := doMultipart(t, r, "PUT", fmt.Sprintf("/products/%d", id), nil, []fileField{
		{"images", "extra.jpg", "extra-bytes"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	images := dataMap(t, w)["images"].([]interface{})
	require.Len(t, images, 1)
	appended := images[0].(map[string]interface{})
	assert.Equal(t, false, appended["is_primary"])

	// Appended files are stored as {id}_{date}_{time}_{name}, with no
	// positional index segment.
	base := filepath.Base(appended["image_url"].(string))
	parts := strings.Split(base, "_")
	require.Len(t, parts, 4)
	assert.Equal(t, fmt.Sprint(id), parts[0])
	assert.Equal(t, "extra.jpg", parts[3])
}

func TestUpdateVariationConflictIsIntegrityError(t *testing.T) {
	r, db, _ := newTestRouter(t)
	category := createCategory(t, r, "Electronics", nil)
	id := createProduct(t, r, category, "Phone", 499.99, 10)

	black := models.Variation{ProductID: id, AttributeName: "Color", AttributeValue: "Black"}
	white := models.Variation{ProductID: id, AttributeName: "Color", AttributeValue: "White"}
	require.NoError(t, db.Create(&black).Error)
	require.NoError(t, db.Create(&white).Error)

	// No pre-check covers an update colliding with another variation's
	// attribute pair; the unique index catches it and it must surface as a
	// client error, not a 500.
	w := doRequest(t, r, "PUT", fmt.Sprintf("/products/%d/variations/%d", id, white.ID), gin.H{
		"attribute_value": "Black",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, envelope(t, w).Message, "Data integrity error")
}

func TestUpdateProductReplaceVariations(t *testing.T) {
	r, db, _ := newTestRouter(t)
	category := createCategory(t, r, "Electronics", nil)
	id := createProduct(t, r, category, "Phone", 499.99, 10)
	require.NoError(t, db.Create(&models.Variation{
		ProductID: id, AttributeName: "Color", AttributeValue: "Black",
	}).Error)

	w := doMultipart(t, r, "PUT", fmt.Sprintf("/products/%d", id), []formField{
		{"replace_variations", "true"},
		{"variation_names", "Size"},
		{"variation_values", "XL"},
		{"variation_prices", "5"},
		{"variation_stocks", "2"},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	variations := dataMap(t, w)["variations"].([]interface{})
	require.Len(t, variations, 1)
	v := variations[0].(map[string]interface{})
	assert.Equal(t, "Size", v["attribute_name"])
	assert.Equal(t, "XL", v["attribute_value"])
}

func TestDeleteProduct(t *testing.T) {
	r, db, _ := newTestRouter(t)
	category := createCategory(t, r, "Electronics", nil)
	id := createProduct(t, r, category, "Phone", 499.99, 10)
	require.NoError(t, db.Create(&models.Variation{
		ProductID: id, AttributeName: "Color", AttributeValue: "Black",
	}).Error)

	w := doRequest(t, r, "DELETE", fmt.Sprintf("/products/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	get := doRequest(t, r, "GET", fmt.Sprintf("/products/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, get.Code)

	var variationCount int64
	db.Model(&models.Variation{}).Where("product_id = ?", id).Count(&variationCount)
	assert.EqualValues(t, 0, variationCount)
}

func TestDeleteProductReferencedByOrder(t *testing.T) {
	r, db, _ := newTestRouter(t)
	category := createCategory(t, r, "Electronics", nil)
	id := createProduct(t, r, category, "Phone", 499.99, 10)

	order := models.Order{GuestName: "G", GuestEmail: "g@x.com", TotalAmount: 1, Status: models.OrderStatusPending}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Create(&models.OrderItem{
		OrderID: order.ID, ProductID: id, Quantity: 1, Price: 499.99,
	}).Error)

	w := doRequest(t, r, "DELETE", fmt.Sprintf("/products/%d", id), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot delete product 'Phone' as it exists in 1 orders", envelope(t, w).Message)
}

func TestAddProductImagePrimaryIsExclusive(t *testing.T) {
	r, db, _ := newTestRouter(t)
	category := createCategory(t, r, "Electronics", nil)
	id := createProduct(t, r, category, "Phone", 499.99, 10)

	w := doMultipart(t, r, "POST", fmt.Sprintf("/products/%d/images", id),
		[]formField{{"is_primary", "true"}},
		[]fileField{{"image", "one.jpg", "one"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doMultipart(t, r, "POST", fmt.Sprintf("/products/%d/images", id),
		[]formField{{"is_primary", "true"}},
		[]fileField{{"image", "two.jpg", "two"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var primaries int64
	db.Model(&models.ProductImage{}).Where("product_id = ? AND is_primary = ?", id, true).Count(&primaries)
	assert.EqualValues(t, 1, primaries)
}

func TestAddProductImageRequiresFile(t *testing.T) {
	r, _, _ := newTestRouter(t)
	category := createCategory(t, r, "Electronics", nil)
	id := createProduct(t, r, category, "Phone", 499.99, 10)

	w := doMultipart(t, r, "POST", fmt.Sprintf("/products/%d/images", id), nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file provided", envelope(t, w).Message)
}

func TestDeleteProductImage(t *testing.T) {
	r, db, _ := newTestRouter(t)
	category := createCategory(t, r, "Electronics", nil)
	id := createProduct(t, r, category, "Phone", 499.99, 10)

	// The row may point at a file that no longer exists; the delete still
	// succeeds.
	image := models.ProductImage{ProductID: id, ImageURL: "uploads/missing.jpg"}
	require.NoError(t, db.Create(&image).Error)

	w := doRequest(t, r, "DELETE", fmt.Sprintf("/products/%d/images/%d", id, image.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var count int64
	db.Model(&models.ProductImage{}).Where("id = ?", image.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestProductVariationLifecycle(t *testing.T) {
	r, _, _ := newTestRouter(t)
	category := createCategory(t, r, "Electronics", nil)
	id := createProduct(t, r, category, "Phone", 499.99, 10)

	w := doRequest(t, r, "POST", fmt.Sprintf("/products/%d/variations", id), gin.H{
		"attribute_name":   "Color",
		"attribute_value":  "Black",
		"additional_price": 5.0,
		"stock":            3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	variationID := uint(dataMap(t, w)["variation_id"].(float64))

	// Duplicate attribute pair is rejected.
	w = doRequest(t, r, "POST", fmt.Sprintf("/products/%d/variations", id), gin.H{
		"attribute_name":  "Color",
		"attribute_value": "Black",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Variation Color: Black already exists", envelope(t, w).Message)

	w = doRequest(t, r, "PUT", fmt.Sprintf("/products/%d/variations/%d", id, variationID), gin.H{
		"stock": 9,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := dataMap(t, w)
	assert.EqualValues(t, 9, updated["stock"])
	assert.Equal(t, "Black", updated["attribute_value"])

	w = doRequest(t, r, "DELETE", fmt.Sprintf("/products/%d/variations/%d", id, variationID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteVariationReferencedByOrder(t *testing.T) {
	r, db, _ := newTestRouter(t)
	category := createCategory(t, r, "Electronics", nil)
	id := createProduct(t, r, category, "Phone", 499.99, 10)

	variation := models.Variation{ProductID: id, AttributeName: "Color", AttributeValue: "Black"}
	require.NoError(t, db.Create(&variation).Error)
	order := models.Order{GuestName: "G", GuestEmail: "g@x.com", TotalAmount: 1, Status: models.OrderStatusPending}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Create(&models.OrderItem{
		OrderID: order.ID, ProductID: id, VariationID: &variation.ID, Quantity: 1, Price: 1,
	}).Error)

	w := doRequest(t, r, "DELETE", fmt.Sprintf("/products/%d/variations/%d", id, variation.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot delete variation 'Color: Black' as it exists in 1 orders", envelope(t, w).Message)
}

func TestSearchProducts(t *testing.T) {
	r, _, _ := newTestRouter(t)
	category := createCategory(t, r, "Electronics", nil)
	createProduct(t, r, category, "Laptop", 900, 2)
	createProduct(t, r, category, "Desk", 100, 2)

	w := doRequest(t, r, "GET", "/products/search?q=Lap", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := envelope(t, w)
	assert.Equal(t, "Found 1 products matching 'Lap'", resp.Message)
	assert.Len(t, resp.Data.([]interface{}), 1)
}
