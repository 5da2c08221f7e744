package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/Domenick1991/clinicbooking/internal/domain"
	"github.com/Domenick1991/clinicbooking/internal/service/availability"
	"github.com/Domenick1991/clinicbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type AppointmentHandler struct {
	bookings     booking.BookingUseCase
	availability availability.AvailabilityUseCase
}

type bookRequest struct {
	Date       string `json:"date"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
}

type cancelRequest struct {
	Phone string `json:"phone"`
}

type appointmentData struct {
	ID         string `json:"id,omitempty"`
	Department string `json:"department"`
	Date       string `json:"date"`
	Phone      string `json:"phone"`
}

type apiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewAppointmentHandler(bookings booking.BookingUseCase, availability availability.AvailabilityUseCase) *AppointmentHandler {
	return &AppointmentHandler{bookings: bookings, availability: availability}
}

func (h *AppointmentHandler) Register(router *gin.RouterGroup) {
	router.POST("/book", h.book)
	router.POST("/cancel", h.cancel)
	router.GET("/availability", h.list)
}

func (h *AppointmentHandler) book(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiResponse{Success: false, Message: domain.ErrMissingParameter.Error()})
		return
	}

	appt, err := h.bookings.Book(c.Request.Context(), booking.BookInput{
		Date:       req.Date,
		Department: req.Department,
		Phone:      req.Phone,
	})
	if err != nil {
		h.reject(c, err)
		return
	}

	c.JSON(http.StatusOK, apiResponse{
		Success: true,
		Message: "appointment booked",
		Data: appointmentData{
			ID:         appt.ID,
			Department: appt.Department,
			Date:       appt.Date,
			Phone:      appt.Phone,
		},
	})
}

func (h *AppointmentHandler) cancel(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiResponse{Success: false, Message: domain.ErrMissingParameter.Error()})
		return
	}

	appt, err := h.bookings.Cancel(c.Request.Context(), req.Phone)
	if err != nil {
		h.reject(c, err)
		return
	}

	c.JSON(http.StatusOK, apiResponse{
		Success: true,
		Message: "appointment cancelled",
		Data: appointmentData{
			Department: appt.Department,
			Date:       appt.Date,
			Phone:      appt.Phone,
		},
	})
}

func (h *AppointmentHandler) list(c *gin.Context) {
	availability, err := h.availability.List(c.Request.Context())
	if err != nil {
		h.reject(c, err)
		return
	}
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: availability})
}

// reject maps business outcomes to 400/404 with their own message and
// everything else to an opaque 500.
func (h *AppointmentHandler) reject(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNoActiveBooking):
		c.JSON(http.StatusNotFound, apiResponse{Success: false, Message: domain.ErrNoActiveBooking.Error()})
	case domain.IsBusinessError(err):
		c.JSON(http.StatusBadRequest, apiResponse{Success: false, Message: businessMessage(err)})
	default:
		log.Printf("storage failure: %v", err)
		c.JSON(http.StatusInternalServerError, apiResponse{Success: false, Message: "internal error"})
	}
}

func businessMessage(err error) string {
	for _, known := range []error{
		domain.ErrMissingParameter,
		domain.ErrOutOfWindow,
		domain.ErrUnknownDepartment,
		domain.ErrInvalidPhone,
		domain.ErrAlreadyBooked,
		domain.ErrFull,
		domain.ErrDepartmentExists,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return err.Error()
}
