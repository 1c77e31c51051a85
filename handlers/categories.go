package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ecom-backend/models"
)

func (h *Handler) ListCategories(c *gin.Context) {
	page, limit, err := pageParams(c)
	if err != nil {
		respondError(c, err)
		return
	}

	q := h.DB.Model(&models.Category{})
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("(name LIKE ? OR description LIKE ?)", like, like)
	}
	parentID, err := queryUint(c, "parent_id")
	if err != nil {
		respondError(c, err)
		return
	}
	if parentID != nil {
		q = q.Where("parent_id = ?", *parentID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}

	var categories []models.Category
	if err := q.Order("name ASC").Limit(limit).Offset((page - 1) * limit).Find(&categories).Error; err != nil {
		respondError(c, err)
		return
	}

	items := make([]models.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, models.NewCategoryResponse(&categories[i]))
	}

	c.JSON(http.StatusOK, models.Success(
		models.NewPaginated(items, total, page, limit),
		fmt.Sprintf("Retrieved %d categories", len(items)),
	))
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Category not found"))
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Success(models.NewCategoryResponse(&category), "Category retrieved successfully"))
}

// GetCategoryWithChildren expands exactly one level of the tree; deeper
// descendants are not included.
func (h *Handler) GetCategoryWithChildren(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Category not found"))
			return
		}
		respondError(c, err)
		return
	}

	children, err := h.categoryChildren(id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.CategoryWithChildren{
		CategoryResponse: models.NewCategoryResponse(&category),
		Children:         children,
	}
	c.JSON(http.StatusOK, models.Success(resp,
		fmt.Sprintf("Category retrieved with %d children", len(children))))
}

func (h *Handler) categoryChildren(id uint) ([]models.CategoryResponse, error) {
	var rows []models.Category
	if err := h.DB.Where("parent_id = ?", id).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	children := make([]models.CategoryResponse, 0, len(rows))
	for i := range rows {
		children = append(children, models.NewCategoryResponse(&rows[i]))
	}
	return children, nil
}

// siblingNameTaken reports whether name exists at the given tree level,
// excluding excludeID when non-zero.
func (h *Handler) siblingNameTaken(name string, parentID *uint, excludeID uint) (bool, error) {
	q := h.DB.Model(&models.Category{}).Where("name = ?", name)
	if parentID != nil {
		q = q.Where("parent_id = ?", *parentID)
	} else {
		q = q.Where("parent_id IS NULL")
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req models.CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest(err.Error()))
		return
	}

	if req.ParentID != nil {
		var parent models.Category
		if err := h.DB.First(&parent, *req.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, badRequest("Parent category not found"))
				return
			}
			respondError(c, err)
			return
		}
	}

	taken, err := h.siblingNameTaken(req.Name, req.ParentID, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	if taken {
		respondError(c, badRequest("Category name already exists at this level"))
		return
	}

	category := models.Category{
		Name:     req.Name,
		ParentID: req.ParentID,
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if err := h.DB.Create(&category).Error; err != nil {
		respondError(c, err)
		return
	}

	var created models.Category
	if err := h.DB.First(&created, category.ID).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Success(models.NewCategoryResponse(&created), "Category created successfully"))
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req models.CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest(err.Error()))
		return
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Category not found"))
			return
		}
		respondError(c, err)
		return
	}

	if req.ParentID != nil && *req.ParentID == id {
		respondError(c, badRequest("Category cannot be its own parent"))
		return
	}

	updates := map[string]interface{}{}

	if req.Name != nil {
		// The uniqueness scope is the level named in the request: the
		// NULL-parent level when parent_id is absent.
		taken, err := h.siblingNameTaken(*req.Name, req.ParentID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		if taken {
			respondError(c, badRequest("Category name already exists at this level"))
			return
		}
		updates["name"] = *req.Name
	}

	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if req.ParentID != nil {
		var parent models.Category
		if err := h.DB.First(&parent, *req.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, badRequest("Parent category not found"))
				return
			}
			respondError(c, err)
			return
		}
		updates["parent_id"] = *req.ParentID
	}

	if len(updates) == 0 {
		respondError(c, badRequest("No fields to update"))
		return
	}

	if err := h.DB.Model(&category).Updates(updates).Error; err != nil {
		respondError(c, err)
		return
	}

	var updated models.Category
	if err := h.DB.First(&updated, id).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Success(models.NewCategoryResponse(&updated), "Category updated successfully"))
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Category not found"))
			return
		}
		respondError(c, err)
		return
	}

	if !force {
		var childCount int64
		if err := h.DB.Model(&models.Category{}).Where("parent_id = ?", id).Count(&childCount).Error; err != nil {
			respondError(c, err)
			return
		}
		if childCount > 0 {
			respondError(c, badRequest(fmt.Sprintf(
				"Cannot delete category '%s' with %d child categories. Use force=true to delete anyway.",
				category.Name, childCount)))
			return
		}

		var productCount int64
		if err := h.DB.Model(&models.Product{}).Where("category_id = ?", id).Count(&productCount).Error; err != nil {
			respondError(c, err)
			return
		}
		if productCount > 0 {
			respondError(c, badRequest(fmt.Sprintf(
				"Cannot delete category '%s' with %d products. Use force=true to delete anyway.",
				category.Name, productCount)))
			return
		}
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if force {
			// Children are re-parented to the root level rather than deleted.
			if err := tx.Model(&models.Category{}).Where("parent_id = ?", id).
				Update("parent_id", nil).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Category{}, id).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: fmt.Sprintf("Category '%s' deleted successfully", category.Name),
		Data:    map[string]interface{}{"deleted_category_id": id},
	})
}

func (h *Handler) GetRootCategories(c *gin.Context) {
	var categories []models.Category
	if err := h.DB.Where("parent_id IS NULL").Order("name").Find(&categories).Error; err != nil {
		respondError(c, err)
		return
	}

	items := make([]models.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, models.NewCategoryResponse(&categories[i]))
	}

	c.JSON(http.StatusOK, models.Success(items,
		fmt.Sprintf("Retrieved %d root categories", len(items))))
}

// GetCategoryHierarchy returns every root category with one level of
// children.
func (h *Handler) GetCategoryHierarchy(c *gin.Context) {
	var roots []models.Category
	if err := h.DB.Where("parent_id IS NULL").Order("name").Find(&roots).Error; err != nil {
		respondError(c, err)
		return
	}

	hierarchy := make([]models.CategoryWithChildren, 0, len(roots))
	for i := range roots {
		children, err := h.categoryChildren(roots[i].ID)
		if err != nil {
			respondError(c, err)
			return
		}
		hierarchy = append(hierarchy, models.CategoryWithChildren{
			CategoryResponse: models.NewCategoryResponse(&roots[i]),
			Children:         children,
		})
	}

	c.JSON(http.StatusOK, models.Success(hierarchy,
		fmt.Sprintf("Retrieved category hierarchy with %d root categories", len(hierarchy))))
}

func (h *Handler) SearchCategories(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondError(c, badRequest("Search query is required"))
		return
	}
	limit, err := searchLimit(c)
	if err != nil {
		respondError(c, err)
		return
	}

	like := "%" + query + "%"
	var categories []models.Category
	if err := h.DB.Where("name LIKE ? OR description LIKE ?", like, like).
		Order("name").Limit(limit).Find(&categories).Error; err != nil {
		respondError(c, err)
		return
	}

	items := make([]models.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, models.NewCategoryResponse(&categories[i]))
	}

	c.JSON(http.StatusOK, models.Success(items,
		fmt.Sprintf("Found %d categories matching '%s'", len(items), query)))
}
