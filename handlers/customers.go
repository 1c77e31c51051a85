package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ecom-backend/models"
)

func (h *Handler) ListCustomers(c *gin.Context) {
	page, limit, err := pageParams(c)
	if err != nil {
		respondError(c, err)
		return
	}

	q := h.DB.Model(&models.Customer{})
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}

	var customers []models.Customer
	if err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&customers).Error; err != nil {
		respondError(c, err)
		return
	}

	summaries := make([]models.CustomerSummary, 0, len(customers))
	for i := range customers {
		summaries = append(summaries, models.NewCustomerSummary(&customers[i]))
	}

	c.JSON(http.StatusOK, models.Success(
		models.NewPaginated(summaries, total, page, limit),
		fmt.Sprintf("Retrieved %d customers", len(summaries)),
	))
}

func (h *Handler) GetCustomer(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var customer models.Customer
	if err := h.DB.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Customer not found"))
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Success(models.NewCustomerResponse(&customer), "Customer retrieved successfully"))
}

func (h *Handler) CreateCustomer(c *gin.Context) {
	var req models.CustomerCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest(err.Error()))
		return
	}

	var existing models.Customer
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		respondError(c, badRequest("Email already registered"))
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err)
		return
	}

	customer := models.Customer{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if err := h.DB.Create(&customer).Error; err != nil {
		respondError(c, err)
		return
	}

	// Re-fetch so the response carries server-assigned defaults.
	var created models.Customer
	if err := h.DB.First(&created, customer.ID).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Success(models.NewCustomerResponse(&created), "Customer created successfully"))
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req models.CustomerUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest(err.Error()))
		return
	}

	var customer models.Customer
	if err := h.DB.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Customer not found"))
			return
		}
		respondError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		var other models.Customer
		err := h.DB.Where("email = ? AND id <> ?", *req.Email, id).First(&other).Error
		if err == nil {
			respondError(c, badRequest("Email already registered"))
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, err)
			return
		}
		updates["email"] = *req.Email
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, err)
			return
		}
		updates["password"] = string(hash)
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}

	if len(updates) == 0 {
		respondError(c, badRequest("No fields to update"))
		return
	}

	if err := h.DB.Model(&customer).Updates(updates).Error; err != nil {
		respondError(c, err)
		return
	}

	var updated models.Customer
	if err := h.DB.First(&updated, id).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Success(models.NewCustomerResponse(&updated), "Customer updated successfully"))
}

func (h *Handler) DeleteCustomer(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var orderCount int64
	if err := h.DB.Model(&models.Order{}).Where("customer_id = ?", id).Count(&orderCount).Error; err != nil {
		respondError(c, err)
		return
	}
	if orderCount > 0 {
		respondError(c, badRequest(fmt.Sprintf("Cannot delete customer with %d existing orders", orderCount)))
		return
	}

	res := h.DB.Delete(&models.Customer{}, id)
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, notFound("Customer not found"))
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Customer deleted successfully",
		Data:    map[string]interface{}{"deleted_customer_id": id},
	})
}

func (h *Handler) LoginCustomer(c *gin.Context) {
	var req models.CustomerLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest(err.Error()))
		return
	}

	var customer models.Customer
	if err := h.DB.Where("email = ?", req.Email).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, unauthorized("Invalid email or password"))
			return
		}
		respondError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(customer.Password), []byte(req.Password)); err != nil {
		respondError(c, unauthorized("Invalid email or password"))
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"customer_id": customer.ID,
		"email":       customer.Email,
		"exp":         time.Now().Add(24 * time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(h.Cfg.JWTSecret))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.CustomerLoginResponse{
		CustomerResponse: models.NewCustomerResponse(&customer),
		AccessToken:      signed,
	}
	c.JSON(http.StatusOK, models.Success(resp, "Login successful"))
}

// GetCustomerWithPassword is an admin read that includes the stored password
// hash.
func (h *Handler) GetCustomerWithPassword(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var customer models.Customer
	if err := h.DB.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Customer not found"))
			return
		}
		respondError(c, err)
		return
	}

	resp := models.CustomerWithPasswordResponse{
		CustomerResponse: models.NewCustomerResponse(&customer),
		Password:         customer.Password,
	}
	c.JSON(http.StatusOK, models.Success(resp, "Customer with password retrieved successfully"))
}

func (h *Handler) SearchCustomers(c *gin.Context) {
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
	var customers []models.Customer
	if err := h.DB.Where("name LIKE ? OR email LIKE ?", like, like).
		Order("name").Limit(limit).Find(&customers).Error; err != nil {
		respondError(c, err)
		return
	}

	summaries := make([]models.CustomerSummary, 0, len(customers))
	for i := range customers {
		summaries = append(summaries, models.NewCustomerSummary(&customers[i]))
	}

	c.JSON(http.StatusOK, models.Success(summaries,
		fmt.Sprintf("Found %d customers matching '%s'", len(summaries), query)))
}
