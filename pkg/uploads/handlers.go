package uploads

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rakbuku/rakbuku/pkg/errcodes"
)

// multipartOverhead is the room left for multipart framing on top of the file
// size ceiling.
const multipartOverhead = 64 << 10

type handler struct {
	uploadService *Service
}

func (h *handler) upload(c echo.Context) error {
	ctx := c.Request().Context()
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, h.uploadService.maxBytes+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errcodes.ValidationError(h.uploadService.TooLargeMessage())
		}
		return errcodes.ValidationError("No file provided")
	}

	result, err := h.uploadService.UploadCover(ctx, fh)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "File uploaded successfully",
		"data":    result,
	}))
}
