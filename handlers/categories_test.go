package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecom-backend/models"
)

func createCategory(t *testing.T, r *gin.Engine, name string, parentID *uint) uint {
	t.Helper()
	body := gin.H{"name": name, "description": name + " stuff"}
	if parentID != nil {
		body["parent_id"] = *parentID
	}
	w := doRequest(t, r, "POST", "/categories", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return uint(dataMap(t, w)["category_id"].(float64))
}

func TestCategoryWithChildren(t *testing.T) {
	r, _, _ := newTestRouter(t)

	electronics := createCategory(t, r, "Electronics", nil)
	createCategory(t, r, "Phones", &electronics)
	createCategory(t, r, "Laptops", &electronics)

	w := doRequest(t, r, "GET", fmt.Sprintf("/categories/%d/with-children", electronics), nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := envelope(t, w)
	assert.Equal(t, "Category retrieved with 2 children", resp.Message)

	data := dataMap(t, w)
	assert.Equal(t, "Electronics", data["name"])
	children := data["children"].([]interface{})
	require.Len(t, children, 2)
	// Children come back name-ordered.
	first := children[0].(map[string]interface{})
	assert.Equal(t, "Laptops", first["name"])
}

func TestCreateCategoryDuplicateNameSameLevel(t *testing.T) {
	r, _, _ := newTestRouter(t)

	parent := createCategory(t, r, "Electronics", nil)
	createCategory(t, r, "Phones", &parent)

	w := doRequest(t, r, "POST", "/categories", gin.H{"name": "Phones", "parent_id": parent})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Category name already exists at this level", envelope(t, w).Message)

	// Same name under a different parent is fine.
	other := createCategory(t, r, "Appliances", nil)
	createCategory(t, r, "Phones", &other)
}

func TestCreateCategoryParentMustExist(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doRequest(t, r, "POST", "/categories", gin.H{"name": "Orphans", "parent_id": 9999})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Parent category not found", envelope(t, w).Message)
}

func TestUpdateCategorySelfParent(t *testing.T) {
	r, _, _ := newTestRouter(t)
	id := createCategory(t, r, "Loop", nil)

	w := doRequest(t, r, "PUT", fmt.Sprintf("/categories/%d", id), gin.H{"parent_id": id})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Category cannot be its own parent", envelope(t, w).Message)
}

func TestUpdateCategory(t *testing.T) {
	r, _, _ := newTestRouter(t)
	id := createCategory(t, r, "Eletronics", nil)

	w := doRequest(t, r, "PUT", fmt.Sprintf("/categories/%d", id), gin.H{"name": "Electronics"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Electronics", dataMap(t, w)["name"])

	w = doRequest(t, r, "PUT", fmt.Sprintf("/categories/%d", id), gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No fields to update", envelope(t, w).Message)
}

func TestDeleteCategoryWithChildren(t *testing.T) {
	r, db, _ := newTestRouter(t)

	parent := createCategory(t, r, "Electronics", nil)
	child := createCategory(t, r, "Phones", &parent)

	w := doRequest(t, r, "DELETE", fmt.Sprintf("/categories/%d", parent), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t,
		"Cannot delete category 'Electronics' with 1 child categories. Use force=true to delete anyway.",
		envelope(t, w).Message)

	w = doRequest(t, r, "DELETE", fmt.Sprintf("/categories/%d?force=true", parent), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var success models.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &success))
	assert.True(t, success.Success)
	assert.Equal(t, "Category 'Electronics' deleted successfully", success.Message)

	// Force delete keeps the child but promotes it to root.
	var promoted models.Category
	require.NoError(t, db.First(&promoted, child).Error)
	assert.Nil(t, promoted.ParentID)
}

func TestDeleteCategoryWithProducts(t *testing.T) {
	r, db, _ := newTestRouter(t)

	id := createCategory(t, r, "Electronics", nil)
	require.NoError(t, db.Create(&models.Product{
		Name: "Widget", CategoryID: id, Price: 9.99, Stock: 1,
	}).Error)

	w := doRequest(t, r, "DELETE", fmt.Sprintf("/categories/%d", id), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t,
		"Cannot delete category 'Electronics' with 1 products. Use force=true to delete anyway.",
		envelope(t, w).Message)
}

func TestCategoryHierarchyOneLevel(t *testing.T) {
	r, _, _ := newTestRouter(t)

	root := createCategory(t, r, "Electronics", nil)
	child := createCategory(t, r, "Phones", &root)
	createCategory(t, r, "Android", &child)

	w := doRequest(t, r, "GET", "/categories/hierarchy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := envelope(t, w)
	assert.Equal(t, "Retrieved category hierarchy with 1 root categories", resp.Message)

	roots := resp.Data.([]interface{})
	require.Len(t, roots, 1)
	top := roots[0].(map[string]interface{})
	children := top["children"].([]interface{})
	require.Len(t, children, 1)
	// Only one level deep: the grandchild is not expanded.
	phones := children[0].(map[string]interface{})
	_, hasGrandchildren := phones["children"]
	assert.False(t, hasGrandchildren)
}

func TestGetRootCategories(t *testing.T) {
	r, _, _ := newTestRouter(t)

	a := createCategory(t, r, "Books", nil)
	createCategory(t, r, "Audio", nil)
	createCategory(t, r, "Fiction", &a)

	w := doRequest(t, r, "GET", "/categories/root", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := envelope(t, w)
	roots := resp.Data.([]interface{})
	require.Len(t, roots, 2)
	assert.Equal(t, "Audio", roots[0].(map[string]interface{})["name"])
	assert.Equal(t, "Books", roots[1].(map[string]interface{})["name"])
}

func TestListCategoriesParentFilter(t *testing.T) {
	r, _, _ := newTestRouter(t)

	parent := createCategory(t, r, "Electronics", nil)
	createCategory(t, r, "Phones", &parent)
	createCategory(t, r, "Laptops", &parent)
	createCategory(t, r, "Books", nil)

	w := doRequest(t, r, "GET", fmt.Sprintf("/categories?parent_id=%d", parent), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, dataMap(t, w)["total"])
}

func TestSearchCategories(t *testing.T) {
	r, _, _ := newTestRouter(t)

	createCategory(t, r, "Electronics", nil)
	createCategory(t, r, "Books", nil)

	w := doRequest(t, r, "GET", "/categories/search?q=tron", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := envelope(t, w)
	assert.Equal(t, "Found 1 categories matching 'tron'", resp.Message)
	assert.Len(t, resp.Data.([]interface{}), 1)

	w = doRequest(t, r, "GET", "/categories/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Search query is required", envelope(t, w).Message)
}

func TestGetCategoryNotFound(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doRequest(t, r, "GET", "/categories/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Category not found", envelope(t, w).Message)
}
