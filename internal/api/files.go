package api

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"

	apperrors "lovedu_client/internal/errors"
	"lovedu_client/internal/models"
)

type formField struct {
	name, value string
}

// multipartRequest buffers the form so the request carries a Content-Length and the writer's
// boundary content type.
func multipartRequest(endpoint string, fields []formField, fileName string, file io.Reader) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return request{}, apperrors.NewValidationError("Failed to build upload: " + err.Error())
		}
	}
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return request{}, apperrors.NewValidationError("Failed to build upload: " + err.Error())
	}
	if _, err := io.Copy(part, file); err != nil {
		return request{}, apperrors.NewValidationError("Failed to read file: " + err.Error())
	}
	if err := w.Close(); err != nil {
		return request{}, apperrors.NewValidationError("Failed to build upload: " + err.Error())
	}

	return request{
		method:      http.MethodPost,
		endpoint:    endpoint,
		body:        &buf,
		contentType: w.FormDataContentType(),
	}, nil
}

func (c *Client) upload(ctx context.Context, req request) (*models.UploadedFile, error) {
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	var file models.UploadedFile
	if err := decode(resp, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

func (c *Client) download(ctx context.Context, endpoint, fileName string) (*models.Download, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, endpoint: endpoint})
	if err != nil {
		return nil, err
	}
	name := fileName
	if _, params, err := mime.ParseMediaType(resp.header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}
	return &models.Download{
		FileName:    name,
		ContentType: resp.contentType,
		Data:        resp.body,
	}, nil
}

func (c *Client) UploadAssistantFile(ctx context.Context, assistantID, fileName string, file io.Reader) (*models.UploadedFile, error) {
	req, err := multipartRequest("/admin/upload", []formField{{"assistant_id", assistantID}}, fileName, file)
	if err != nil {
		return nil, err
	}
	return c.upload(ctx, req)
}

func (c *Client) ListAssistantFiles(ctx context.Context, assistantID string) (*models.FileList, error) {
	var list models.FileList
	if err := c.call(ctx, http.MethodGet, "/admin/files/"+url.PathEscape(assistantID), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) DeleteAssistantFile(ctx context.Context, assistantID, fileName string) error {
	endpoint := "/admin/files/" + url.PathEscape(assistantID) + "/" + url.PathEscape(fileName)
	return c.call(ctx, http.MethodDelete, endpoint, nil, nil)
}

func (c *Client) DownloadAssistantFile(ctx context.Context, assistantID, fileName string) (*models.Download, error) {
	endpoint := "/admin/files/" + url.PathEscape(assistantID) + "/" + url.PathEscape(fileName) + "/download"
	return c.download(ctx, endpoint, fileName)
}

func (c *Client) UploadCourseFile(ctx context.Context, courseID, fileName string, file io.Reader, fileType models.FileType) (*models.UploadedFile, error) {
	if fileType == "" {
		fileType = models.FileTypeContent
	}
	if !fileType.Valid() {
		return nil, apperrors.NewValidationError("File type must be behavior or content")
	}
	endpoint := "/admin/courses/" + url.PathEscape(courseID) + "/upload"
	req, err := multipartRequest(endpoint, []formField{{"file_type", string(fileType)}}, fileName, file)
	if err != nil {
		return nil, err
	}
	return c.upload(ctx, req)
}

func (c *Client) ListCourseFiles(ctx context.Context, courseID string) (*models.FileList, error) {
	var list models.FileList
	if err := c.call(ctx, http.MethodGet, "/admin/courses/"+url.PathEscape(courseID)+"/files", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) DeleteCourseFile(ctx context.Context, courseID, fileName string) error {
	endpoint := "/admin/courses/" + url.PathEscape(courseID) + "/files/" + url.PathEscape(fileName)
	return c.call(ctx, http.MethodDelete, endpoint, nil, nil)
}

func (c *Client) DownloadCourseFile(ctx context.Context, courseID, fileName string) (*models.Download, error) {
	endpoint := "/admin/courses/" + url.PathEscape(courseID) + "/files/" + url.PathEscape(fileName) + "/download"
	return c.download(ctx, endpoint, fileName)
}
