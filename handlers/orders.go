package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ecom-backend/models"
)

// orderSummaryQuery is the base listing query: order columns plus an item
// count from a LEFT JOIN, so empty orders still report zero items.
func (h *Handler) orderSummaryQuery() *gorm.DB {
	return h.DB.Table("orders o").
		Select("o.id AS order_id, o.customer_id, o.guest_name, o.guest_email, " +
			"o.total_amount, o.status, o.created_at, COUNT(oi.id) AS items_count").
		Joins("LEFT JOIN order_items oi ON o.id = oi.order_id")
}

const orderItemSelect = "oi.id AS order_item_id, oi.order_id, oi.product_id, oi.variation_id, " +
	"oi.quantity, oi.price, p.name AS product_name, " +
	"v.attribute_name AS variation_name, v.attribute_value AS variation_value"

func (h *Handler) orderItemQuery() *gorm.DB {
	return h.DB.Table("order_items oi").
		Select(orderItemSelect).
		Joins("LEFT JOIN products p ON oi.product_id = p.id").
		Joins("LEFT JOIN variations v ON oi.variation_id = v.id")
}

func (h *Handler) ListOrders(c *gin.Context) {
	page, limit, err := pageParams(c)
	if err != nil {
		respondError(c, err)
		return
	}

	q := h.orderSummaryQuery()
	countQ := h.DB.Model(&models.Order{})

	if raw := c.Query("status"); raw != "" {
		status := models.OrderStatus(raw)
		if !status.Valid() {
			respondError(c, badRequest("Invalid order status"))
			return
		}
		q = q.Where("o.status = ?", status)
		countQ = countQ.Where("status = ?", status)
	}
	customerID, err := queryUint(c, "customer_id")
	if err != nil {
		respondError(c, err)
		return
	}
	if customerID != nil {
		q = q.Where("o.customer_id = ?", *customerID)
		countQ = countQ.Where("customer_id = ?", *customerID)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("(o.guest_name LIKE ? OR o.guest_email LIKE ?)", like, like)
		countQ = countQ.Where("(guest_name LIKE ? OR guest_email LIKE ?)", like, like)
	}

	var total int64
	if err := countQ.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}

	var summaries []models.OrderSummary
	if err := q.Group("o.id").Order("o.created_at DESC").
		Limit(limit).Offset((page - 1) * limit).Scan(&summaries).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Success(
		models.NewPaginated(summaries, total, page, limit),
		fmt.Sprintf("Retrieved %d orders", len(summaries)),
	))
}

// fetchOrderResponse loads the canonical order view: the row, its items with
// product/variation enrichment, and the customer contact when linked.
func (h *Handler) fetchOrderResponse(id uint) (models.OrderResponse, error) {
	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.OrderResponse{}, notFound("Order not found")
		}
		return models.OrderResponse{}, err
	}

	items := []models.OrderItemResponse{}
	if err := h.orderItemQuery().Where("oi.order_id = ?", id).Order("oi.id").Scan(&items).Error; err != nil {
		return models.OrderResponse{}, err
	}

	resp := models.OrderResponse{
		OrderID:      order.ID,
		CustomerID:   order.CustomerID,
		GuestName:    order.GuestName,
		GuestEmail:   order.GuestEmail,
		GuestPhone:   order.GuestPhone,
		GuestAddress: order.GuestAddress,
		TotalAmount:  order.TotalAmount,
		Status:       order.Status,
		CreatedAt:    order.CreatedAt,
		Items:        items,
	}

	if order.CustomerID != nil {
		var customer models.Customer
		if err := h.DB.First(&customer, *order.CustomerID).Error; err == nil {
			resp.CustomerName = &customer.Name
			resp.CustomerEmail = &customer.Email
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.OrderResponse{}, err
		}
	}
	return resp, nil
}

func (h *Handler) fetchOrderItemResponse(itemID uint) (models.OrderItemResponse, error) {
	var rows []models.OrderItemResponse
	if err := h.orderItemQuery().Where("oi.id = ?", itemID).Scan(&rows).Error; err != nil {
		return models.OrderItemResponse{}, err
	}
	if len(rows) == 0 {
		return models.OrderItemResponse{}, notFound("Order item not found")
	}
	return rows[0], nil
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.fetchOrderResponse(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Success(resp, "Order retrieved successfully"))
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req models.OrderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest(err.Error()))
		return
	}

	if req.CustomerID != nil {
		var customer models.Customer
		if err := h.DB.First(&customer, *req.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, badRequest("Customer not found"))
				return
			}
			respondError(c, err)
			return
		}
	}
	if req.CustomerID == nil && (req.GuestEmail == nil || *req.GuestEmail == "") {
		respondError(c, badRequest("Either customer_id or guest information must be provided"))
		return
	}

	status := req.Status
	if status == "" {
		status = models.OrderStatusPending
	}
	if !status.Valid() {
		respondError(c, badRequest("Invalid order status"))
		return
	}

	order := models.Order{
		CustomerID:  req.CustomerID,
		TotalAmount: req.TotalAmount,
		Status:      status,
	}
	if req.GuestName != nil {
		order.GuestName = *req.GuestName
	}
	if req.GuestEmail != nil {
		order.GuestEmail = *req.GuestEmail
	}
	if req.GuestPhone != nil {
		order.GuestPhone = *req.GuestPhone
	}
	if req.GuestAddress != nil {
		order.GuestAddress = *req.GuestAddress
	}

	// The order and all of its items commit or roll back together: one bad
	// item aborts the whole order.
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, item := range req.Items {
			var product models.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return badRequest(fmt.Sprintf("Product %d not found", item.ProductID))
				}
				return err
			}

			if item.VariationID != nil {
				var variation models.Variation
				if err := tx.Where("id = ? AND product_id = ?", *item.VariationID, item.ProductID).
					First(&variation).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return badRequest(fmt.Sprintf(
							"Variation %d not found for product %d", *item.VariationID, item.ProductID))
					}
					return err
				}
			}

			orderItem := models.OrderItem{
				OrderID:     order.ID,
				ProductID:   item.ProductID,
				VariationID: item.VariationID,
				Quantity:    item.Quantity,
				Price:       item.Price,
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.fetchOrderResponse(order.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Success(resp, "Order created successfully"))
}

func (h *Handler) UpdateOrder(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req models.OrderUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest(err.Error()))
		return
	}

	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Order not found"))
			return
		}
		respondError(c, err)
		return
	}

	if req.CustomerID != nil {
		var customer models.Customer
		if err := h.DB.First(&customer, *req.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, badRequest("Customer not found"))
				return
			}
			respondError(c, err)
			return
		}
	}

	updates := map[string]interface{}{}
	if req.TotalAmount != nil {
		updates["total_amount"] = *req.TotalAmount
	}
	if req.CustomerID != nil {
		updates["customer_id"] = *req.CustomerID
	}
	if req.GuestName != nil {
		updates["guest_name"] = *req.GuestName
	}
	if req.GuestEmail != nil {
		updates["guest_email"] = *req.GuestEmail
	}
	if req.GuestPhone != nil {
		updates["guest_phone"] = *req.GuestPhone
	}
	if req.GuestAddress != nil {
		updates["guest_address"] = *req.GuestAddress
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			respondError(c, badRequest("Invalid order status"))
			return
		}
		updates["status"] = *req.Status
	}

	if len(updates) == 0 {
		respondError(c, badRequest("No fields to update"))
		return
	}

	if err := h.DB.Model(&order).Updates(updates).Error; err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.fetchOrderResponse(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Success(resp, "Order updated successfully"))
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req models.OrderStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest(err.Error()))
		return
	}
	if !req.Status.Valid() {
		respondError(c, badRequest("Invalid order status"))
		return
	}

	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Order not found"))
			return
		}
		respondError(c, err)
		return
	}

	if err := h.DB.Model(&order).Update("status", req.Status).Error; err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.fetchOrderResponse(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Success(resp, "Order status updated successfully"))
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Order not found"))
			return
		}
		respondError(c, err)
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, id).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Order deleted successfully",
		Data:    map[string]interface{}{"deleted_order_id": id},
	})
}

func (h *Handler) AddOrderItem(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req models.OrderItemCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest(err.Error()))
		return
	}

	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Order not found"))
			return
		}
		respondError(c, err)
		return
	}

	var product models.Product
	if err := h.DB.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, badRequest(fmt.Sprintf("Product %d not found", req.ProductID)))
			return
		}
		respondError(c, err)
		return
	}

	if req.VariationID != nil {
		var variation models.Variation
		if err := h.DB.Where("id = ? AND product_id = ?", *req.VariationID, req.ProductID).
			First(&variation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, badRequest(fmt.Sprintf(
					"Variation %d not found for product %d", *req.VariationID, req.ProductID)))
				return
			}
			respondError(c, err)
			return
		}
	}

	item := models.OrderItem{
		OrderID:     id,
		ProductID:   req.ProductID,
		VariationID: req.VariationID,
		Quantity:    req.Quantity,
		Price:       req.Price,
	}
	if err := h.DB.Create(&item).Error; err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.fetchOrderItemResponse(item.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Success(resp, "Item added to order successfully"))
}

func (h *Handler) UpdateOrderItem(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	itemID, err := paramID(c, "item_id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req models.OrderItemUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest(err.Error()))
		return
	}

	var item models.OrderItem
	if err := h.DB.Where("id = ? AND order_id = ?", itemID, id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Order item not found"))
			return
		}
		respondError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.ProductID != nil {
		var product models.Product
		if err := h.DB.First(&product, *req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, badRequest(fmt.Sprintf("Product %d not found", *req.ProductID)))
				return
			}
			respondError(c, err)
			return
		}
		updates["product_id"] = *req.ProductID
	}
	if req.VariationID != nil {
		// The variation is checked against the product the item will
		// reference after the update.
		productID := item.ProductID
		if req.ProductID != nil {
			productID = *req.ProductID
		}
		var variation models.Variation
		if err := h.DB.Where("id = ? AND product_id = ?", *req.VariationID, productID).
			First(&variation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, badRequest(fmt.Sprintf(
					"Variation %d not found for product %d", *req.VariationID, productID)))
				return
			}
			respondError(c, err)
			return
		}
		updates["variation_id"] = *req.VariationID
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}

	if len(updates) == 0 {
		respondError(c, badRequest("No fields to update"))
		return
	}

	if err := h.DB.Model(&item).Updates(updates).Error; err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.fetchOrderItemResponse(itemID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Success(resp, "Order item updated successfully"))
}

func (h *Handler) DeleteOrderItem(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	itemID, err := paramID(c, "item_id")
	if err != nil {
		respondError(c, err)
		return
	}

	var item models.OrderItem
	if err := h.DB.Where("id = ? AND order_id = ?", itemID, id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Order item not found"))
			return
		}
		respondError(c, err)
		return
	}

	if err := h.DB.Delete(&models.OrderItem{}, itemID).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Order item deleted successfully",
		Data:    map[string]interface{}{"deleted_item_id": itemID},
	})
}

func (h *Handler) GetOrdersByCustomer(c *gin.Context) {
	customerID, err := paramID(c, "customer_id")
	if err != nil {
		respondError(c, err)
		return
	}
	page, limit, err := pageParams(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var customer models.Customer
	if err := h.DB.First(&customer, customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, notFound("Customer not found"))
			return
		}
		respondError(c, err)
		return
	}

	q := h.orderSummaryQuery().Where("o.customer_id = ?", customerID)
	countQ := h.DB.Model(&models.Order{}).Where("customer_id = ?", customerID)

	if raw := c.Query("status"); raw != "" {
		status := models.OrderStatus(raw)
		if !status.Valid() {
			respondError(c, badRequest("Invalid order status"))
			return
		}
		q = q.Where("o.status = ?", status)
		countQ = countQ.Where("status = ?", status)
	}

	var total int64
	if err := countQ.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}

	var summaries []models.OrderSummary
	if err := q.Group("o.id").Order("o.created_at DESC").
		Limit(limit).Offset((page - 1) * limit).Scan(&summaries).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Success(
		models.NewPaginated(summaries, total, page, limit),
		fmt.Sprintf("Retrieved %d orders for customer %d", len(summaries), customerID),
	))
}
