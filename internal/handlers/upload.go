package handlers

import (
	"errors"
	"net/http"
	"strings"

	"finax/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	avatarField = "avatar"
	// room for multipart boundaries and headers on top of the file itself
	multipartOverhead = 1 << 20
)

type uploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// @Summary      Upload avatar image
// @Description  JPEG, PNG or WebP in the "avatar" form field
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Param        avatar  formData  file  true  "Image file"
// @Success      200     {object}  uploadResponse
// @Failure      400     {object}  map[string]string
// @Failure      401     {object}  map[string]string
// @Router       /upload/avatar [post]
// @Security     BearerAuth
func (h *Handler) uploadAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadSize+multipartOverhead)

	fh, err := c.FormFile(avatarField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge), strings.Contains(err.Error(), "request body too large"):
			h.respondError(c, "upload_rejected", service.ErrFileTooLarge)
		default:
			h.respondError(c, "upload_rejected", service.ErrFileRequired, "cause", err.Error())
		}
		return
	}

	file, err := fh.Open()
	if err != nil {
		h.respondError(c, "upload_open_failed", err)
		return
	}
	defer file.Close()

	uid := currentUserID(c)
	res, err := h.services.SaveAvatar(c.Request.Context(), service.UploadFile{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     file,
	})
	if err != nil {
		h.respondError(c, "upload_failed", err, "user_id", uid)
		return
	}

	c.JSON(http.StatusOK, uploadResponse{
		URL:      h.publicBase(c) + "/uploads/avatars/" + res.Filename,
		Filename: res.Filename,
		Size:     res.Size,
	})
}

// publicBase is the configured public URL or the scheme and host of the request.
func (h *Handler) publicBase(c *gin.Context) string {
	if h.opts.PublicURL != "" {
		return strings.TrimRight(h.opts.PublicURL, "/")
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.SplitN(proto, ",", 2)[0])
	}
	return scheme + "://" + c.Request.Host
}
