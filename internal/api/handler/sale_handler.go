package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carsale/marketplace-api/internal/api/metrics"
	"github.com/carsale/marketplace-api/internal/api/response"
	"github.com/carsale/marketplace-api/internal/core/domain"
	"github.com/carsale/marketplace-api/internal/core/ports"
)

type SaleHandler struct {
	sales ports.SaleService
}

func NewSaleHandler(sales ports.SaleService) *SaleHandler {
	return &SaleHandler{sales: sales}
}

type saleDocumentsRequest struct {
	Contract         string   `json:"contract"         validate:"omitempty,url"`
	Invoice          string   `json:"invoice"          validate:"omitempty,url"`
	TransferDocument string   `json:"transferDocument" validate:"omitempty,url"`
	Other            []string `json:"other"            validate:"max=10,dive,url"`
}

func (d *saleDocumentsRequest) toDomain() domain.SaleDocuments {
	if d == nil {
		return domain.SaleDocuments{}
	}
	return domain.SaleDocuments{
		Contract:         d.Contract,
		Invoice:          d.Invoice,
		TransferDocument: d.TransferDocument,
		Other:            d.Other,
	}
}

type commissionRequest struct {
	Amount     float64    `json:"amount"     validate:"gte=0"`
	Percentage float64    `json:"percentage" validate:"gte=0,lte=100"`
	IsPaid     bool       `json:"isPaid"`
	PaidDate   *time.Time `json:"paidDate"`
}

func (c *commissionRequest) toDomain() domain.Commission {
	if c == nil {
		return domain.Commission{}
	}
	return domain.Commission{Amount: c.Amount, Percentage: c.Percentage, IsPaid: c.IsPaid, PaidDate: c.PaidDate}
}

type createSaleRequest struct {
	Car                string                `json:"car"                validate:"required,mongodb"`
	Buyer              string                `json:"buyer"              validate:"required,mongodb"`
	Price              float64               `json:"price"              validate:"gte=0"`
	PaymentMethod      string                `json:"paymentMethod"      validate:"required,oneof=cash bank_transfer credit installment"`
	PaymentStatus      string                `json:"paymentStatus"      validate:"omitempty,oneof=pending paid partially_paid refunded"`
	SaleDate           *time.Time            `json:"saleDate"`
	DeliveryDate       *time.Time            `json:"deliveryDate"`
	Notes              string                `json:"notes"              validate:"max=1000"`
	Documents          *saleDocumentsRequest `json:"documents"`
	Status             string                `json:"status"             validate:"omitempty,oneof=pending completed cancelled"`
	CancellationReason string                `json:"cancellationReason" validate:"max=500"`
	Commission         *commissionRequest    `json:"commission"`
}

type updateSaleRequest struct {
	Price              *float64              `json:"price"              validate:"omitempty,gte=0"`
	PaymentMethod      *string               `json:"paymentMethod"      validate:"omitempty,oneof=cash bank_transfer credit installment"`
	PaymentStatus      *string               `json:"paymentStatus"      validate:"omitempty,oneof=pending paid partially_paid refunded"`
	SaleDate           *time.Time            `json:"saleDate"`
	DeliveryDate       *time.Time            `json:"deliveryDate"`
	Notes              *string               `json:"notes"              validate:"omitempty,max=1000"`
	Documents          *saleDocumentsRequest `json:"documents"`
	Status             *string               `json:"status"             validate:"omitempty,oneof=pending completed cancelled"`
	CancellationReason *string               `json:"cancellationReason" validate:"omitempty,max=500"`
	Commission         *commissionRequest    `json:"commission"`
}

func (r updateSaleRequest) toPatch() ports.SalePatch {
	p := ports.SalePatch{
		Price:              r.Price,
		PaymentMethod:      enumPtr[domain.PaymentMethod](r.PaymentMethod),
		PaymentStatus:      enumPtr[domain.PaymentStatus](r.PaymentStatus),
		SaleDate:           r.SaleDate,
		DeliveryDate:       r.DeliveryDate,
		Notes:              r.Notes,
		Status:             enumPtr[domain.SaleStatus](r.Status),
		CancellationReason: r.CancellationReason,
	}
	if r.Documents != nil {
		d := r.Documents.toDomain()
		p.Documents = &d
	}
	if r.Commission != nil {
		c := r.Commission.toDomain()
		p.Commission = &c
	}
	return p
}

type saleData struct {
	Sale any `json:"sale"`
}

// List returns sales the caller sold or bought; admins see all.
//
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        status         query     string  false  "pending, completed or cancelled"
// @Param        paymentStatus  query     string  false  "pending, paid, partially_paid or refunded"
// @Param        page           query     int     false  "Page, from 1"
// @Param        limit          query     int     false  "Page size, max 100"
// @Success      200            {object}  response.Envelope
// @Failure      401            {object}  response.Envelope
// @Router       /sales [get]
func (h *SaleHandler) List(c echo.Context) error {
	q := newQuery(c)
	f := domain.SaleFilter{
		Status:        domain.SaleStatus(q.str("status")),
		PaymentStatus: domain.PaymentStatus(q.str("paymentStatus")),
	}
	p := q.page()
	if err := q.err(); err != nil {
		return err
	}

	res, err := h.sales.List(c.Request().Context(), actor(c), f, p)
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Sales retrieved successfully", listData("sales", res.Items, res.Pagination))
}

// Get returns a sale with its car and participants.
//
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sale ID"
// @Success      200  {object}  response.Envelope{data=saleData}
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /sales/{id} [get]
func (h *SaleHandler) Get(c echo.Context) error {
	detail, err := h.sales.Get(c.Request().Context(), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Sale retrieved successfully", saleData{Sale: detail})
}

// Create records the sale of one of the caller's cars.
//
// @Summary      Record a sale
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createSaleRequest  true  "Sale"
// @Success      201   {object}  response.Envelope{data=saleData}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /sales [post]
func (h *SaleHandler) Create(c echo.Context) error {
	var req createSaleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	sale, err := h.sales.Create(c.Request().Context(), actor(c), ports.SaleInput{
		CarID:              req.Car,
		BuyerID:            req.Buyer,
		Price:              req.Price,
		PaymentMethod:      domain.PaymentMethod(req.PaymentMethod),
		PaymentStatus:      domain.PaymentStatus(req.PaymentStatus),
		SaleDate:           req.SaleDate,
		DeliveryDate:       req.DeliveryDate,
		Notes:              req.Notes,
		Documents:          req.Documents.toDomain(),
		Status:             domain.SaleStatus(req.Status),
		CancellationReason: req.CancellationReason,
		Commission:         req.Commission.toDomain(),
	})
	if err != nil {
		return err
	}
	metrics.SalesTotal.WithLabelValues(string(sale.Status)).Inc()
	return response.Success(c, http.StatusCreated, "Sale created successfully", saleData{Sale: sale})
}

// Update edits a sale. Only its seller or an admin may do so.
//
// @Summary      Update a sale
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Sale ID"
// @Param        body  body      updateSaleRequest  true  "Fields to change"
// @Success      200   {object}  response.Envelope{data=saleData}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /sales/{id} [put]
func (h *SaleHandler) Update(c echo.Context) error {
	var req updateSaleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	sale, err := h.sales.Update(c.Request().Context(), actor(c), c.Param("id"), req.toPatch())
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Sale updated successfully", saleData{Sale: sale})
}

// Delete removes a sale record.
//
// @Summary      Delete a sale
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sale ID"
// @Success      200  {object}  response.Envelope
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /sales/{id} [delete]
func (h *SaleHandler) Delete(c echo.Context) error {
	if err := h.sales.Delete(c.Request().Context(), actor(c), c.Param("id")); err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Sale deleted successfully", nil)
}
