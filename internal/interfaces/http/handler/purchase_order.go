package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	poapp "github.com/pohub/backend/internal/application/purchaseorder"
	"github.com/pohub/backend/internal/interfaces/http/dto"
	"github.com/pohub/backend/internal/interfaces/http/middleware"
)

// ReplayedHeader is set on import responses served from the idempotency cache
const ReplayedHeader = "Idempotent-Replayed"

// PurchaseOrderHandler handles the PO upload, import and CRUD endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	service *poapp.Service
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(service *poapp.Service) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{service: service}
}

// Vendors godoc
// @ID           listVendors
// @Summary      List supported vendors
// @Tags         purchase-orders
// @Produce      json
// @Success      200 {object} VendorListResponse
// @Router       /po/vendors [get]
func (h *PurchaseOrderHandler) Vendors(c *gin.Context) {
	h.Success(c, h.service.Vendors())
}

// Preview godoc
// @ID           previewPurchaseOrderFile
// @Summary      Parse an uploaded PO file
// @Description  Detects the vendor (or uses the forced one), parses the file and returns the normalized POs without storing them
// @Tags         purchase-orders
// @Accept       multipart/form-data
// @Produce      json
// @Param        file   formData file   true  "CSV or XLSX purchase order"
// @Param        vendor formData string false "Force a vendor parser"
// @Param        X-User header   string false "Uploader name"
// @Success      200 {object} PreviewResponse
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Router       /po/preview [post]
func (h *PurchaseOrderHandler) Preview(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge,
				fmt.Sprintf("file exceeds the %d byte upload limit", h.service.MaxFileSize()))
			return
		}
		h.Error(c, http.StatusBadRequest, dto.ErrCodeFileMissing, "No file uploaded")
		return
	}
	if fh.Size > h.service.MaxFileSize() {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge,
			fmt.Sprintf("file exceeds the %d byte upload limit", h.service.MaxFileSize()))
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.BadRequest(c, "Unable to read uploaded file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		h.BadRequest(c, "Unable to read uploaded file")
		return
	}

	result, err := h.service.Preview(c.Request.Context(), poapp.PreviewInput{
		Filename:   fh.Filename,
		Data:       data,
		Vendor:     c.PostForm("vendor"),
		UploadedBy: getUploader(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Import godoc
// @ID           importPurchaseOrders
// @Summary      Store previewed purchase orders
// @Description  Accepts {header, lines} or {poList}. A single PO returns 201 with the stored order; multi-PO imports return 200 with a per-PO report.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        vendor          path   string               true  "Vendor code"
// @Param        Idempotency-Key header string               false "Retry key"
// @Param        request         body   poapp.ImportRequest  true  "Previewed payload"
// @Success      201 {object} POResponse
// @Success      200 {object} ImportReportResponse
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /po/import/{vendor} [post]
func (h *PurchaseOrderHandler) Import(c *gin.Context) {
	var req poapp.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	out, err := h.service.Import(c.Request.Context(), c.Param("vendor"), poapp.ImportInput{
		Orders:         req.Orders(),
		IdempotencyKey: c.GetHeader(middleware.IdempotencyKeyHeader),
		UploadedBy:     getUploader(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if out.Replayed {
		c.Header(ReplayedHeader, "true")
	}
	if out.Order != nil {
		h.Created(c, out.Order)
		return
	}
	h.Success(c, out.Report)
}

// Create godoc
// @ID           createPurchaseOrder
// @Summary      Create a purchase order from the manual form
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        vendor  path string          true "Vendor code"
// @Param        request body poapp.POPayload true "Header and lines"
// @Success      201 {object} POResponse
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /po/{vendor} [post]
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req poapp.POPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	order, err := h.service.Create(c.Request.Context(), c.Param("vendor"), req, getUploader(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// List godoc
// @ID           listPurchaseOrders
// @Summary      List purchase orders
// @Tags         purchase-orders
// @Produce      json
// @Param        vendor    query string false "Vendor code"
// @Param        status    query string false "Status"
// @Param        search    query string false "PO number or supplier"
// @Param        from      query string false "Order date from"
// @Param        to        query string false "Order date to"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20) maximum(100)
// @Param        order_by  query string false "Order by field" default(created_at)
// @Param        order_dir query string false "asc or desc" default(desc)
// @Success      200 {object} POListResponse
// @Failure      400 {object} ErrorResponse
// @Router       /po [get]
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var q poapp.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @ID           getPurchaseOrder
// @Summary      Get a purchase order with its lines
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase order ID"
// @Success      200 {object} POResponse
// @Failure      404 {object} ErrorResponse
// @Router       /po/{id} [get]
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	order, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// GetByNumber godoc
// @ID           getPurchaseOrderByNumber
// @Summary      Get a purchase order by vendor and PO number
// @Tags         purchase-orders
// @Produce      json
// @Param        vendor path string true "Vendor code"
// @Param        number path string true "PO number"
// @Success      200 {object} POResponse
// @Failure      404 {object} ErrorResponse
// @Router       /po/by-number/{vendor}/{number} [get]
func (h *PurchaseOrderHandler) GetByNumber(c *gin.Context) {
	order, err := h.service.GetByNumber(c.Request.Context(), c.Param("vendor"), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Update godoc
// @ID           updatePurchaseOrder
// @Summary      Edit a purchase order
// @Description  Patches header fields; a non-null lines array replaces every line
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id      path string            true "Purchase order ID"
// @Param        request body poapp.UpdateInput true "Fields to change"
// @Success      200 {object} POResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /po/{id} [put]
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req poapp.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	order, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// UpdateStatus godoc
// @ID           updatePurchaseOrderStatus
// @Summary      Change the status of a purchase order
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id      path string                    true "Purchase order ID"
// @Param        request body poapp.UpdateStatusRequest true "New status"
// @Success      200 {object} POResponse
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /po/{id}/status [patch]
func (h *PurchaseOrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req poapp.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	order, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Delete godoc
// @ID           deletePurchaseOrder
// @Summary      Delete a purchase order and its lines
// @Tags         purchase-orders
// @Param        id path string true "Purchase order ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Router       /po/{id} [delete]
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *PurchaseOrderHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID format")
		return uuid.Nil, false
	}
	return id, true
}
