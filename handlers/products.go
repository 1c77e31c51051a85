package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ecom-backend/models"
)

func (h *Handler) ListProducts(c *gin.Context) {
	page, limit, err := pageParams(c)
	if err != nil {
		respondError(c, err)
		return
	}

	q := h.DB.Model(&models.Product{})
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("(name LIKE ? OR description LIKE ?)", like, like)
	}
	categoryID, err := queryUint(c, "category_id")
	if err != nil {
		respondError(c, err)
		return
	}
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	if raw := c.Query("min_price"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil || min < 0 {
			respondError(c, badRequest("Invalid min_price"))
			return
		}
		q = q.Where("price >= ?", min)
	}
	if raw := c.Query("max_price"); raw != "" {
		max, err := strconv.ParseFloat(raw, 64)
		if err != nil || max < 0 {
			respondError(c, badRequest("Invalid max_price"))
			return
		}
		q = q.Where("price <= ?", max)
	}
	if inStock, _ := strconv.ParseBool(c.DefaultQuery("in_stock_only", "false")); inStock {
		q = q.Where("stock > 0")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}

	var products []models.Product
	if err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&products).Error; err != nil {
		respondError(c, err)
		return
	}

	summaries := make([]models.ProductSummary, 0, len(products))
	for i := range products {
		summaries = append(summaries, models.NewProductSummary(&products[i]))
	}

	c.JSON(http.StatusOK, models.Success(
		models.NewPaginated(summaries, total, page, limit),
		fmt.Sprintf("Retrieved %d products", len(summaries)),
	))
}

// fetchProductResponse loads the canonical product representation: the row
// plus its images (primary first) and variations.
func (h *Handler) fetchProductResponse(id uint) (models.ProductResponse, error) {
	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ProductResponse{}, notFound("Product not found")
		}
		return models.ProductResponse{}, err
	}

	var images []models.ProductImage
	if err := h.DB.Where("product_id = ?", id).Order("is_primary DESC").Find(&images).Error; err != nil {
		return models.ProductResponse{}, err
	}

	var variations []models.Variation
	if err := h.DB.Where("product_id = ?", id).
		Order("attribute_name, attribute_value").Find(&variations).Error; err != nil {
		return models.ProductResponse{}, err
	}

	return models.NewProductResponse(&product, images, variations), nil
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.fetchProductResponse(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Success(resp, "Product retrieved successfully"))
}

// variationInput is one row of the parallel variation form arrays.
type variationInput struct {
	name  string
	value string
	price float64
	stock int
}

// parseVariationArrays reads the parallel form arrays and requires equal
// lengths when any variations are supplied.
func parseVariationArrays(c *gin.Context) ([]variationInput, error) {
	names := c.PostFormArray("variation_names")
	if len(names) == 0 {
		return nil, nil
	}
	values := c.PostFormArray("variation_values")
	prices := c.PostFormArray("variation_prices")
	stocks := c.PostFormArray("variation_stocks")
	if len(values) != len(names) || len(prices) != len(names) || len(stocks) != len(names) {
		return nil, badRequest("All variation arrays must have the same length")
	}

	inputs := make([]variationInput, 0, len(names))
	for i := range names {
		price, err := strconv.ParseFloat(prices[i], 64)
		if err != nil {
			return nil, badRequest("Invalid variation price")
		}
		stock, err := strconv.Atoi(stocks[i])
		if err != nil {
			return nil, badRequest("Invalid variation stock")
		}
		inputs = append(inputs, variationInput{
			name:  names[i],
			value: values[i],
			price: price,
			stock: stock,
		})
	}
	return inputs, nil
}

// saveImageFile writes an uploaded file under the upload directory, keyed by
// product id, timestamp, position and original filename. A negative position
// omits the index segment; appended uploads are stored without one.
func (h *Handler) saveImageFile(c *gin.Context, fh *multipart.FileHeader, productID uint, position int) (string, error) {
	ts := time.Now().Format("20060102_150405")
	var filename string
	if position >= 0 {
		filename = fmt.Sprintf("%d_%s_%d_%s", productID, ts, position, filepath.Base(fh.Filename))
	} else {
		filename = fmt.Sprintf("%d_%s_%s", productID, ts, filepath.Base(fh.Filename))
	}
	path := filepath.Join(h.Cfg.UploadDir, filename)
	if err := c.SaveUploadedFile(fh, path); err != nil {
		return "", fmt.Errorf("saving image %q: %w", fh.Filename, err)
	}
	return path, nil
}

func (h *Handler) CreateProduct(c *gin.Context) {
	categoryID, err := strconv.ParseUint(c.PostForm("category_id"), 10, 32)
	if err != nil {
		respondError(c, badRequest("Invalid category_id"))
		return
	}
	name := c.PostForm("name")
	if name == "" {
		respondError(c, badRequest("Product name is required"))
		return
	}
	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil || price < 0 {
		respondError(c, badRequest("Invalid price"))
		return
	}
	stock, err := strconv.Atoi(c.DefaultPostForm("stock", "0"))
	if err != nil || stock < 0 {
		respondError(c, badRequest("Invalid stock"))
		return
	}
	description := c.PostForm("description")

	variations, err := parseVariationArrays(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["images"]
	}

	var category models.Category
	if err := h.DB.First(&category, uint(categoryID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, badRequest("Category not found"))
			return
		}
		respondError(c, err)
		return
	}

	product := models.Product{
		CategoryID:  uint(categoryID),
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
	}
	var savedImages []models.ProductImage
	var savedVariations []models.Variation

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}

		for i, fh := range files {
			if fh.Filename == "" {
				continue
			}
			path, err := h.saveImageFile(c, fh, product.ID, i)
			if err != nil {
				return err
			}
			img := models.ProductImage{
				ProductID: product.ID,
				ImageURL:  path,
				IsPrimary: i == 0,
			}
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
			savedImages = append(savedImages, img)
		}

		for _, in := range variations {
			v := models.Variation{
				ProductID:       product.ID,
				AttributeName:   in.name,
				AttributeValue:  in.value,
				AdditionalPrice: in.price,
				Stock:           in.stock,
			}
			if err := tx.Create(&v).Error; err != nil {
				return err
			}
			savedVariations = append(savedVariations, v)
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	var created models.Product
	if err := h.DB.First(&created, product.ID).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Success(
		models.NewProductResponse(&created, savedImages, savedVariations),
		"Product created successfully",
	))
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Product not found"))
			return
		}
		respondError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if raw, ok := c.GetPostForm("category_id"); ok {
		categoryID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, badRequest("Invalid category_id"))
			return
		}
		var category models.Category
		if err := h.DB.First(&category, uint(categoryID)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, badRequest("Category not found"))
				return
			}
			respondError(c, err)
			return
		}
		updates["category_id"] = uint(categoryID)
	}
	if name, ok := c.GetPostForm("name"); ok {
		updates["name"] = name
	}
	if description, ok := c.GetPostForm("description"); ok {
		updates["description"] = description
	}
	if raw, ok := c.GetPostForm("price"); ok {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price < 0 {
			respondError(c, badRequest("Invalid price"))
			return
		}
		updates["price"] = price
	}
	if raw, ok := c.GetPostForm("stock"); ok {
		stock, err := strconv.Atoi(raw)
		if err != nil || stock < 0 {
			respondError(c, badRequest("Invalid stock"))
			return
		}
		updates["stock"] = stock
	}

	replaceImages, _ := strconv.ParseBool(c.DefaultPostForm("replace_images", "false"))
	replaceVariations, _ := strconv.ParseBool(c.DefaultPostForm("replace_variations", "false"))

	variations, err := parseVariationArrays(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["images"]
	}

	if len(updates) == 0 && len(files) == 0 && len(variations) == 0 && !replaceVariations {
		respondError(c, badRequest("No fields to update"))
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&product).Updates(updates).Error; err != nil {
				return err
			}
		}

		if replaceImages && len(files) > 0 {
			if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
				return err
			}
		}
		for i, fh := range files {
			if fh.Filename == "" {
				continue
			}
			path, err := h.saveImageFile(c, fh, id, -1)
			if err != nil {
				return err
			}
			img := models.ProductImage{
				ProductID: id,
				ImageURL:  path,
				// Appended images never displace an existing primary.
				IsPrimary: replaceImages && i == 0,
			}
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
		}

		if replaceVariations {
			if err := tx.Where("product_id = ?", id).Delete(&models.Variation{}).Error; err != nil {
				return err
			}
			for _, in := range variations {
				v := models.Variation{
					ProductID:       id,
					AttributeName:   in.name,
					AttributeValue:  in.value,
					AdditionalPrice: in.price,
					Stock:           in.stock,
				}
				if err := tx.Create(&v).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.fetchProductResponse(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Success(resp, "Product updated successfully"))
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Product not found"))
			return
		}
		respondError(c, err)
		return
	}

	var orderCount int64
	if err := h.DB.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&orderCount).Error; err != nil {
		respondError(c, err)
		return
	}
	if orderCount > 0 {
		respondError(c, badRequest(fmt.Sprintf(
			"Cannot delete product '%s' as it exists in %d orders", product.Name, orderCount)))
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Variation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: fmt.Sprintf("Product '%s' deleted successfully", product.Name),
		Data:    map[string]interface{}{"deleted_product_id": id},
	})
}

func (h *Handler) AddProductImage(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Product not found"))
			return
		}
		respondError(c, err)
		return
	}

	fh, err := c.FormFile("image")
	if err != nil || fh.Filename == "" {
		respondError(c, badRequest("No file provided"))
		return
	}
	isPrimary, _ := strconv.ParseBool(c.DefaultPostForm("is_primary", "false"))

	var image models.ProductImage
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if isPrimary {
			// At most one primary image per product.
			if err := tx.Model(&models.ProductImage{}).Where("product_id = ?", id).
				Update("is_primary", false).Error; err != nil {
				return err
			}
		}
		path, err := h.saveImageFile(c, fh, id, -1)
		if err != nil {
			return err
		}
		image = models.ProductImage{
			ProductID: id,
			ImageURL:  path,
			IsPrimary: isPrimary,
		}
		return tx.Create(&image).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Success(
		models.NewProductImageResponse(&image), "Product image added successfully"))
}

func (h *Handler) DeleteProductImage(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	imageID, err := paramID(c, "image_id")
	if err != nil {
		respondError(c, err)
		return
	}

	var image models.ProductImage
	if err := h.DB.Where("id = ? AND product_id = ?", imageID, id).First(&image).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Product image not found"))
			return
		}
		respondError(c, err)
		return
	}

	if err := h.DB.Delete(&models.ProductImage{}, imageID).Error; err != nil {
		respondError(c, err)
		return
	}

	// Physical removal is best-effort; a missing or locked file must not
	// fail the delete.
	_ = os.Remove(image.ImageURL)

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Product image deleted successfully",
		Data:    map[string]interface{}{"deleted_image_id": imageID},
	})
}

func (h *Handler) AddProductVariation(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req models.VariationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest(err.Error()))
		return
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Product not found"))
			return
		}
		respondError(c, err)
		return
	}

	var count int64
	if err := h.DB.Model(&models.Variation{}).
		Where("product_id = ? AND attribute_name = ? AND attribute_value = ?",
			id, req.AttributeName, req.AttributeValue).
		Count(&count).Error; err != nil {
		respondError(c, err)
		return
	}
	if count > 0 {
		respondError(c, badRequest(fmt.Sprintf(
			"Variation %s: %s already exists", req.AttributeName, req.AttributeValue)))
		return
	}

	variation := models.Variation{
		ProductID:      id,
		AttributeName:  req.AttributeName,
		AttributeValue: req.AttributeValue,
	}
	if req.AdditionalPrice != nil {
		variation.AdditionalPrice = *req.AdditionalPrice
	}
	if req.Stock != nil {
		variation.Stock = *req.Stock
	}
	if err := h.DB.Create(&variation).Error; err != nil {
		respondError(c, err)
		return
	}

	var created models.Variation
	if err := h.DB.First(&created, variation.ID).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Success(
		models.NewVariationResponse(&created), "Product variation added successfully"))
}

func (h *Handler) UpdateProductVariation(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	variationID, err := paramID(c, "variation_id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req models.VariationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest(err.Error()))
		return
	}

	var variation models.Variation
	if err := h.DB.Where("id = ? AND product_id = ?", variationID, id).First(&variation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Product variation not found"))
			return
		}
		respondError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.AttributeName != nil {
		updates["attribute_name"] = *req.AttributeName
	}
	if req.AttributeValue != nil {
		updates["attribute_value"] = *req.AttributeValue
	}
	if req.AdditionalPrice != nil {
		updates["additional_price"] = *req.AdditionalPrice
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if len(updates) == 0 {
		respondError(c, badRequest("No fields to update"))
		return
	}

	if err := h.DB.Model(&variation).Updates(updates).Error; err != nil {
		respondError(c, err)
		return
	}

	var updated models.Variation
	if err := h.DB.First(&updated, variationID).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Success(
		models.NewVariationResponse(&updated), "Product variation updated successfully"))
}

func (h *Handler) DeleteProductVariation(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	variationID, err := paramID(c, "variation_id")
	if err != nil {
		respondError(c, err)
		return
	}

	var variation models.Variation
	if err := h.DB.Where("id = ? AND product_id = ?", variationID, id).First(&variation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Product variation not found"))
			return
		}
		respondError(c, err)
		return
	}

	var orderCount int64
	if err := h.DB.Model(&models.OrderItem{}).Where("variation_id = ?", variationID).Count(&orderCount).Error; err != nil {
		respondError(c, err)
		return
	}
	if orderCount > 0 {
		respondError(c, badRequest(fmt.Sprintf(
			"Cannot delete variation '%s: %s' as it exists in %d orders",
			variation.AttributeName, variation.AttributeValue, orderCount)))
		return
	}

	if err := h.DB.Delete(&models.Variation{}, variationID).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: fmt.Sprintf("Product variation '%s: %s' deleted successfully",
			variation.AttributeName, variation.AttributeValue),
		Data: map[string]interface{}{"deleted_variation_id": variationID},
	})
}

func (h *Handler) SearchProducts(c *gin.Context) {
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
	var products []models.Product
	if err := h.DB.Where("name LIKE ? OR description LIKE ?", like, like).
		Order("name").Limit(limit).Find(&products).Error; err != nil {
		respondError(c, err)
		return
	}

	summaries := make([]models.ProductSummary, 0, len(products))
	for i := range products {
		summaries = append(summaries, models.NewProductSummary(&products[i]))
	}

	c.JSON(http.StatusOK, models.Success(summaries,
		fmt.Sprintf("Found %d products matching '%s'", len(summaries), query)))
}
