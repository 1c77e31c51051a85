package models

// Request records. Update requests use pointer fields so that absent and
// zero-valued inputs can be told apart when building partial updates.

type CustomerCreateRequest struct {
	Name     string  `json:"name" binding:"required,min=1,max=100"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=6,max=255"`
	Phone    *string `json:"phone" binding:"omitempty,max=20"`
	Address  *string `json:"address"`
}

type CustomerUpdateRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6,max=255"`
	Phone    *string `json:"phone" binding:"omitempty,max=20"`
	Address  *string `json:"address"`
}

type CustomerLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CategoryCreateRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	Description *string `json:"description"`
	ParentID    *uint   `json:"parent_id"`
}

type CategoryUpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	ParentID    *uint   `json:"parent_id"`
}

type VariationCreateRequest struct {
	AttributeName   string   `json:"attribute_name" binding:"required,min=1,max=100"`
	AttributeValue  string   `json:"attribute_value" binding:"required,min=1,max=100"`
	AdditionalPrice *float64 `json:"additional_price"`
	Stock           *int     `json:"stock"`
}

type VariationUpdateRequest struct {
	AttributeName   *string  `json:"attribute_name" binding:"omitempty,min=1,max=100"`
	AttributeValue  *string  `json:"attribute_value" binding:"omitempty,min=1,max=100"`
	AdditionalPrice *float64 `json:"additional_price"`
	Stock           *int     `json:"stock"`
}

type OrderItemCreateRequest struct {
	ProductID   uint    `json:"product_id" binding:"required"`
	VariationID *uint   `json:"variation_id"`
	Quantity    int     `json:"quantity" binding:"required,gt=0"`
	Price       float64 `json:"price" binding:"gte=0"`
}

type OrderItemUpdateRequest struct {
	ProductID   *uint    `json:"product_id"`
	VariationID *uint    `json:"variation_id"`
	Quantity    *int     `json:"quantity" binding:"omitempty,gt=0"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
}

type OrderCreateRequest struct {
	CustomerID   *uint       `json:"customer_id"`
	GuestName    *string     `json:"guest_name"`
	GuestEmail   *string     `json:"guest_email"`
	GuestPhone   *string     `json:"guest_phone"`
	GuestAddress *string     `json:"guest_address"`
	TotalAmount  float64     `json:"total_amount" binding:"gte=0"`
	Status       OrderStatus `json:"status"`

	Items []OrderItemCreateRequest `json:"items"`
}

type OrderUpdateRequest struct {
	TotalAmount  *float64     `json:"total_amount" binding:"omitempty,gte=0"`
	CustomerID   *uint        `json:"customer_id"`
	GuestName    *string      `json:"guest_name"`
	GuestEmail   *string      `json:"guest_email"`
	GuestPhone   *string      `json:"guest_phone"`
	GuestAddress *string      `json:"guest_address"`
	Status       *OrderStatus `json:"status"`
}

type OrderStatusUpdateRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}
