package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trainup/training-api/internal/service"
	appErrors "github.com/trainup/training-api/pkg/errors"
	"github.com/trainup/training-api/pkg/response"
)

// CertificationHandler exposes certificate endpoints.
type CertificationHandler struct {
	certifications *service.CertificationService
}

// NewCertificationHandler constructs CertificationHandler.
func NewCertificationHandler(certifications *service.CertificationService) *CertificationHandler {
	return &CertificationHandler{certifications: certifications}
}

type issueCertificateRequest struct {
	EnrollmentID int64 `json:"enrollment_id" binding:"required"`
}

// Issue godoc
// @Summary Issue a certificate for a completed enrollment
// @Tags Certificates
// @Accept json
// @Produce json
// @Param payload body issueCertificateRequest true "Issue payload"
// @Success 201 {object} response.Envelope
// @Router /certificates [post]
func (h *CertificationHandler) Issue(c *gin.Context) {
	var req issueCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	issuedBy := ""
	if claims := claimsFromContext(c); claims != nil {
		issuedBy = claims.Name
	}
	cert, err := h.certifications.Issue(c.Request.Context(), req.EnrollmentID, issuedBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cert)
}

// Get godoc
// @Summary Get a certificate
// @Tags Certificates
// @Produce json
// @Param id path int true "Certificate ID"
// @Success 200 {object} response.Envelope
// @Router /certificates/{id} [get]
func (h *CertificationHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	cert, err := h.certifications.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cert, nil)
}

// Verify godoc
// @Summary Verify a certificate by its verification code
// @Tags Certificates
// @Produce json
// @Param code path string true "Verification code"
// @Success 200 {object} response.Envelope
// @Router /certificates/verify/{code} [get]
func (h *CertificationHandler) Verify(c *gin.Context) {
	cert, err := h.certifications.Verify(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cert, nil)
}

// ListByEnrollment godoc
// @Summary List certificates for an enrollment
// @Tags Certificates
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/certificates [get]
func (h *CertificationHandler) ListByEnrollment(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	certs, err := h.certifications.ListByEnrollment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, certs, nil)
}

// Download godoc
// @Summary Download a certificate as PDF
// @Tags Certificates
// @Produce application/pdf
// @Param id path int true "Certificate ID"
// @Success 200 {string} string "PDF content"
// @Router /certificates/{id}/pdf [get]
func (h *CertificationHandler) Download(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	data, err := h.certifications.RenderPDF(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("certificate-%d.pdf", id)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
