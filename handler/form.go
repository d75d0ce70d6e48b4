package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/AnTengye/qualitytrack/model"
	"github.com/AnTengye/qualitytrack/pkg/logger"
	"github.com/AnTengye/qualitytrack/service"
	"github.com/gin-gonic/gin"
)

type FormHandler struct {
	forms *service.FormService
}

func NewFormHandler(forms *service.FormService) *FormHandler {
	return &FormHandler{forms: forms}
}

type createFormRequest struct {
	Kind string `json:"kind" binding:"required"`
}

type setFieldRequest struct {
	Value any `json:"value"`
}

// Schemas lists the field layout of every form
func (h *FormHandler) Schemas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"schemas": service.Schemas()})
}

// Schema returns the field layout of one form
func (h *FormHandler) Schema(c *gin.Context) {
	kind, ok := model.ParseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown record kind"})
		return
	}
	schema, err := service.SchemaFor(kind)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, schema)
}

// Create opens a new form instance filled with defaults
func (h *FormHandler) Create(c *gin.Context) {
	var req createFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	kind, ok := model.ParseKind(req.Kind)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown record kind"})
		return
	}

	form, err := h.forms.Create(c.Request.Context(), kind)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, form.View())
}

// Get returns the current state of a form
func (h *FormHandler) Get(c *gin.Context) {
	form, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, form.View())
}

// Delete discards a form instance
func (h *FormHandler) Delete(c *gin.Context) {
	err := h.forms.Discard(c.Param("id"))
	switch {
	case errors.Is(err, service.ErrFormNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Form not found"})
	case errors.Is(err, service.ErrSubmitInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "Submission in progress"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Form discarded"})
	}
}

// SetField updates one field value
func (h *FormHandler) SetField(c *gin.Context) {
	form, ok := h.lookup(c)
	if !ok {
		return
	}

	var req setFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := form.SetField(c.Param("name"), req.Value); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrUnknownField) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, form.View())
}

// AttachImage reads the uploaded image into the form's preview
func (h *FormHandler) AttachImage(c *gin.Context) {
	form, ok := h.lookup(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile(service.ImageField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
		return
	}
	defer file.Close()

	preview, err := form.AttachImage(c.Request.Context(), file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		var fieldErrs service.FieldErrors
		switch {
		case errors.Is(err, service.ErrNoImageField):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrSelectionSuperseded):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.As(err, &fieldErrs):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  service.PreviewErrorMessage,
				"errors": fieldErrs,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"preview": preview,
		"form":    form.View(),
	})
}

// Submit validates the form and hands it to the submission pipeline. With
// ?wait=true the response carries the pipeline outcome, otherwise it is
// delivered on the event stream.
func (h *FormHandler) Submit(c *gin.Context) {
	form, ok := h.lookup(c)
	if !ok {
		return
	}

	var (
		res *service.SubmitResult
		err error
	)
	if c.Query("wait") == "true" {
		res, err = form.Submit(c.Request.Context())
	} else {
		// The pipeline outlives the request
		res, _, err = form.SubmitAsync(context.WithoutCancel(c.Request.Context()))
	}

	if err != nil {
		if errors.Is(err, service.ErrSubmitInFlight) {
			c.JSON(http.StatusConflict, gin.H{"error": "Submission in progress"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch res.State {
	case service.StateInvalid:
		c.JSON(http.StatusUnprocessableEntity, res)
	case service.StateSubmitting:
		c.JSON(http.StatusAccepted, res)
	case service.StateFailed:
		c.JSON(http.StatusBadGateway, res)
	default:
		c.JSON(http.StatusOK, res)
	}
}

// Reset restores the form defaults
func (h *FormHandler) Reset(c *gin.Context) {
	form, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := form.Reset(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Submission in progress"})
		return
	}
	c.JSON(http.StatusOK, form.View())
}

// ValidateRecord checks a complete record without opening a form
func (h *FormHandler) ValidateRecord(c *gin.Context) {
	kind, ok := model.ParseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown record kind"})
		return
	}

	var values service.Values
	if err := c.ShouldBindJSON(&values); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	rec, errs, err := h.forms.Validate(kind, values)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"valid": false, "errors": errs})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "record": rec})
}

// lookup resolves the :id form and scopes the request logger to it
func (h *FormHandler) lookup(c *gin.Context) (*service.Form, bool) {
	id := c.Param("id")
	form, err := h.forms.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Form not found"})
		return nil, false
	}
	c.Request = c.Request.WithContext(logger.WithForm(c.Request.Context(), id, string(form.Kind())))
	return form, true
}
