package http

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/garyjia/ar-reminder/internal/spreadsheet"
	"golang.org/x/sync/errgroup"
)

var errMissingUpload = errors.New("missing required upload")

// upload names one multipart file field holding a spreadsheet
type upload struct {
	field    string
	required bool
}

// fileHeader returns the first file of field, nil when absent
func fileHeader(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil {
		return nil
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

// decodeUploads parses every present upload concurrently. Absent optional
// uploads are missing from the result map.
func decodeUploads(ctx context.Context, form *multipart.Form, uploads []upload) (map[string]*spreadsheet.Sheet, error) {
	headers := make([]*multipart.FileHeader, len(uploads))
	for i, u := range uploads {
		headers[i] = fileHeader(form, u.field)
		if headers[i] == nil && u.required {
			return nil, fmt.Errorf("%w: %s", errMissingUpload, u.field)
		}
	}

	sheets := make([]*spreadsheet.Sheet, len(uploads))
	g, ctx := errgroup.WithContext(ctx)
	for i, fh := range headers {
		if fh == nil {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := fh.Open()
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", uploads[i].field, err)
			}
			defer f.Close()

			sheet, err := spreadsheet.Read(f, fh.Filename)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", uploads[i].field, err)
			}
			sheets[i] = sheet
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*spreadsheet.Sheet, len(uploads))
	for i, sheet := range sheets {
		if sheet != nil {
			out[uploads[i].field] = sheet
		}
	}
	return out, nil
}
