package records

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"humangov/internal/documents"
	"humangov/internal/shared/server/flash"
	"humangov/internal/shared/server/middleware"
	"humangov/internal/shared/server/respond"
)

// multipartOverhead covers the text fields and part headers around the file.
const multipartOverhead = 1 << 20

const (
	msgCreated        = "Record addeed successfully."
	msgFileMissing    = "File not selected."
	msgFileType       = "Invalid file format. Only PDFs allowed."
	msgFileTooLarge   = "File too large."
	msgCreateFailed   = "Error while trying to add record."
	msgUpdated        = "Record updated successfully."
	msgUpdateFailed   = "Error while trying to update record."
	msgDeleted        = "Deleted successfully."
	msgDeleteFailed   = "Error while deleting."
	msgRecordNotFound = "Error: Record not found."
	msgDocumentFailed = "Error while retrieving document."
	msgPageNotFound   = "Record not found."
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64

	// UploadLimit guards POST /new_record; nil means unlimited.
	UploadLimit gin.HandlerFunc
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches the record pages to the router.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.home)
	r.GET("/new_record", h.newRecordForm)
	if h.UploadLimit != nil {
		r.POST("/new_record", h.UploadLimit, h.createRecord)
	} else {
		r.POST("/new_record", h.createRecord)
	}
	r.GET("/edit_record/:id", h.editRecordForm)
	r.POST("/edit_record/:id", h.updateRecord)
	r.GET("/records", h.list)
	r.GET("/search", h.search)
	r.POST("/records/delete", h.delete)
	r.GET("/records/pdf/:id", h.viewDocument)
}

func (h *Handler) home(c *gin.Context) {
	respond.HTML(c, http.StatusOK, "home.html", nil)
}

func (h *Handler) newRecordForm(c *gin.Context) {
	renderNew(c, http.StatusOK, RecordForm{}, nil)
}

func (h *Handler) createRecord(c *gin.Context) {
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+multipartOverhead)
	}

	var form RecordForm
	if err := c.ShouldBind(&form); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			flash.Add(c, flash.Warning, msgFileTooLarge)
			renderNew(c, http.StatusOK, form, nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "bad_request", "The form could not be read.")
		return
	}
	if errs := form.Validate(); errs != nil {
		renderNew(c, http.StatusOK, form, errs)
		return
	}

	up := Upload{}
	fileHeader, err := c.FormFile("pdf")
	switch {
	case err == nil:
		file, openErr := fileHeader.Open()
		if openErr != nil {
			flash.Add(c, flash.Danger, msgCreateFailed)
			renderNew(c, http.StatusOK, form, nil)
			return
		}
		defer file.Close()
		up = Upload{FileName: fileHeader.Filename, Body: file}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		flash.Add(c, flash.Danger, msgCreateFailed)
		renderNew(c, http.StatusOK, form, nil)
		return
	}

	rec, err := h.Svc.Create(c.Request.Context(), form.Fields(), up)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrMissingFile):
			flash.Add(c, flash.Danger, msgFileMissing)
		case errors.Is(err, documents.ErrFileType):
			flash.Add(c, flash.Warning, msgFileType)
		case errors.Is(err, documents.ErrTooLarge):
			flash.Add(c, flash.Warning, msgFileTooLarge)
		case errors.Is(err, ErrInvalidInput):
			renderNew(c, http.StatusOK, form, form.Validate())
			return
		default:
			_ = c.Error(err)
			flash.Add(c, flash.Danger, msgCreateFailed)
		}
		renderNew(c, http.StatusOK, form, nil)
		return
	}

	c.Set(middleware.RecordIDKey, rec.ID)
	flash.Add(c, flash.Success, msgCreated)
	respond.Redirect(c, "/records")
}

func (h *Handler) editRecordForm(c *gin.Context) {
	rec, ok := h.loadForEdit(c)
	if !ok {
		return
	}
	renderEdit(c, http.StatusOK, rec, FormFromRecord(rec), nil)
}

func (h *Handler) updateRecord(c *gin.Context) {
	rec, ok := h.loadForEdit(c)
	if !ok {
		return
	}

	var form RecordForm
	if err := c.ShouldBind(&form); err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "The form could not be read.")
		return
	}
	if errs := form.Validate(); errs != nil {
		renderEdit(c, http.StatusOK, rec, form, errs)
		return
	}

	if err := h.Svc.Update(c.Request.Context(), rec.ID, form.Fields()); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.NotFound(c, msgPageNotFound)
			return
		}
		_ = c.Error(err)
		flash.Add(c, flash.Danger, msgUpdateFailed)
		renderEdit(c, http.StatusOK, rec, form, nil)
		return
	}

	flash.Add(c, flash.Success, msgUpdated)
	respond.Redirect(c, "/records")
}

// loadForEdit fetches the record named in the path or writes the 404/500
// page and reports false.
func (h *Handler) loadForEdit(c *gin.Context) (Record, bool) {
	id := c.Param("id")
	c.Set(middleware.RecordIDKey, id)

	rec, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.NotFound(c, msgPageNotFound)
			return Record{}, false
		}
		respond.Error(c, http.StatusInternalServerError, "store_error", "The record could not be loaded.")
		return Record{}, false
	}
	return rec, true
}

func (h *Handler) list(c *gin.Context) {
	respond.HTML(c, http.StatusOK, "records.html", gin.H{
		"Records": h.Svc.List(c.Request.Context()),
	})
}

func (h *Handler) search(c *gin.Context) {
	name := c.Query("name")
	respond.HTML(c, http.StatusOK, "records.html", gin.H{
		"Records": h.Svc.Search(c.Request.Context(), name),
		"Query":   name,
	})
}

func (h *Handler) delete(c *gin.Context) {
	id := c.PostForm("id")
	c.Set(middleware.RecordIDKey, id)

	switch err := h.Svc.Delete(c.Request.Context(), id); {
	case err == nil:
		flash.Add(c, flash.Danger, msgDeleted)
	case errors.Is(err, ErrNotFound):
		flash.Add(c, flash.Danger, msgRecordNotFound)
	default:
		_ = c.Error(err)
		flash.Add(c, flash.Danger, msgDeleteFailed)
	}
	respond.Redirect(c, "/records")
}

func (h *Handler) viewDocument(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.RecordIDKey, id)

	url, err := h.Svc.DocumentURL(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			flash.Add(c, flash.Danger, msgRecordNotFound)
		} else {
			_ = c.Error(err)
			flash.Add(c, flash.Danger, msgDocumentFailed)
		}
		respond.Redirect(c, "/records")
		return
	}
	respond.Redirect(c, url)
}

func renderNew(c *gin.Context, status int, form RecordForm, errs map[string]string) {
	if errs == nil {
		errs = map[string]string{}
	}
	respond.HTML(c, status, "new_record.html", gin.H{
		"Form":   form,
		"Errors": errs,
	})
}

func renderEdit(c *gin.Context, status int, rec Record, form RecordForm, errs map[string]string) {
	if errs == nil {
		errs = map[string]string{}
	}
	respond.HTML(c, status, "edit_record.html", gin.H{
		"Item":   rec,
		"Form":   form,
		"Errors": errs,
	})
}
