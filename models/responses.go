package models

import "time"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIResponse is the uniform envelope around every JSON payload.
type APIResponse struct {
	Status    string      `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Errors    []string    `json:"errors,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func Success(data interface{}, message string) APIResponse {
	return APIResponse{
		Status:    StatusSuccess,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func Error(message string) APIResponse {
	return APIResponse{
		Status:    StatusError,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// PaginatedResponse wraps list payloads. Total is counted with the same
// predicate as the page query.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
	HasNext    bool        `json:"has_next"`
	HasPrev    bool        `json:"has_prev"`
}

func NewPaginated(data interface{}, total int64, page, limit int) PaginatedResponse {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// SuccessResponse is the slim envelope used by delete-style mutations.
type SuccessResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

type CustomerResponse struct {
	CustomerID uint      `json:"customer_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewCustomerResponse(c *Customer) CustomerResponse {
	return CustomerResponse{
		CustomerID: c.ID,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		CreatedAt:  c.CreatedAt,
	}
}

type CustomerWithPasswordResponse struct {
	CustomerResponse
	Password string `json:"password"`
}

type CustomerLoginResponse struct {
	CustomerResponse
	AccessToken string `json:"access_token"`
}

type CustomerSummary struct {
	CustomerID uint      `json:"customer_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewCustomerSummary(c *Customer) CustomerSummary {
	return CustomerSummary{
		CustomerID: c.ID,
		Name:       c.Name,
		Email:      c.Email,
		CreatedAt:  c.CreatedAt,
	}
}

type CategoryResponse struct {
	CategoryID  uint   `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parent_id"`
}

func NewCategoryResponse(cat *Category) CategoryResponse {
	return CategoryResponse{
		CategoryID:  cat.ID,
		Name:        cat.Name,
		Description: cat.Description,
		ParentID:    cat.ParentID,
	}
}

type CategoryWithChildren struct {
	CategoryResponse
	Children []CategoryResponse `json:"children"`
}

type ProductImageResponse struct {
	ImageID   uint   `json:"image_id"`
	ProductID uint   `json:"product_id"`
	ImageURL  string `json:"image_url"`
	IsPrimary bool   `json:"is_primary"`
}

func NewProductImageResponse(img *ProductImage) ProductImageResponse {
	return ProductImageResponse{
		ImageID:   img.ID,
		ProductID: img.ProductID,
		ImageURL:  img.ImageURL,
		IsPrimary: img.IsPrimary,
	}
}

type VariationResponse struct {
	VariationID     uint    `json:"variation_id"`
	ProductID       uint    `json:"product_id"`
	AttributeName   string  `json:"attribute_name"`
	AttributeValue  string  `json:"attribute_value"`
	AdditionalPrice float64 `json:"additional_price"`
	Stock           int     `json:"stock"`
}

func NewVariationResponse(v *Variation) VariationResponse {
	return VariationResponse{
		VariationID:     v.ID,
		ProductID:       v.ProductID,
		AttributeName:   v.AttributeName,
		AttributeValue:  v.AttributeValue,
		AdditionalPrice: v.AdditionalPrice,
		Stock:           v.Stock,
	}
}

type ProductResponse struct {
	ProductID   uint                   `json:"product_id"`
	CategoryID  uint                   `json:"category_id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Price       float64                `json:"price"`
	Stock       int                    `json:"stock"`
	CreatedAt   time.Time              `json:"created_at"`
	Images      []ProductImageResponse `json:"images"`
	Variations  []VariationResponse    `json:"variations"`
}

func NewProductResponse(p *Product, images []ProductImage, variations []Variation) ProductResponse {
	resp := ProductResponse{
		ProductID:   p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		Images:      make([]ProductImageResponse, 0, len(images)),
		Variations:  make([]VariationResponse, 0, len(variations)),
	}
	for i := range images {
		resp.Images = append(resp.Images, NewProductImageResponse(&images[i]))
	}
	for i := range variations {
		resp.Variations = append(resp.Variations, NewVariationResponse(&variations[i]))
	}
	return resp
}

type ProductSummary struct {
	ProductID   uint      `json:"product_id"`
	CategoryID  uint      `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewProductSummary(p *Product) ProductSummary {
	return ProductSummary{
		ProductID:   p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
	}
}

type OrderItemResponse struct {
	OrderItemID uint    `json:"order_item_id"`
	OrderID     uint    `json:"order_id"`
	ProductID   uint    `json:"product_id"`
	VariationID *uint   `json:"variation_id"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`

	// Enrichment pulled from the referenced product/variation rows.
	ProductName    *string `json:"product_name"`
	VariationName  *string `json:"variation_name"`
	VariationValue *string `json:"variation_value"`
}

type OrderResponse struct {
	OrderID      uint                `json:"order_id"`
	CustomerID   *uint               `json:"customer_id"`
	GuestName    string              `json:"guest_name"`
	GuestEmail   string              `json:"guest_email"`
	GuestPhone   string              `json:"guest_phone"`
	GuestAddress string              `json:"guest_address"`
	TotalAmount  float64             `json:"total_amount"`
	Status       OrderStatus         `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	Items        []OrderItemResponse `json:"items"`

	CustomerName  *string `json:"customer_name"`
	CustomerEmail *string `json:"customer_email"`
}

type OrderSummary struct {
	OrderID     uint        `json:"order_id"`
	CustomerID  *uint       `json:"customer_id"`
	GuestName   string      `json:"guest_name"`
	GuestEmail  string      `json:"guest_email"`
	TotalAmount float64     `json:"total_amount"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	ItemsCount  int         `json:"items_count"`
}
