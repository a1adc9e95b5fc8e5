package hawkbit

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"

	domain "github.com/foundriesio/hawkbit-publish/internal/domain/hawkbit"
)

// artifactFormField is the multipart field hawkBit reads the upload from.
const artifactFormField = "file"

// CheckSoftwareModules lists at most one software module to verify the server
// is reachable and accepts the credentials.
func (c *Client) CheckSoftwareModules(ctx context.Context) error {
	const op = "check server"

	target, err := url.Parse(c.endpoints.SoftwareModules)
	if err != nil {
		return &APIError{Op: op, StatusCode: NoStatus, Message: "parse url", Err: err}
	}

	query := target.Query()
	query.Set("limit", "1")
	target.RawQuery = query.Encode()

	_, err = c.do(ctx, &request{
		op:       op,
		method:   http.MethodGet,
		url:      target.String(),
		expected: []int{http.StatusOK},
	})

	return err
}

// CreateSoftwareModule posts the module and returns it with the server-assigned
// ID and self link.
func (c *Client) CreateSoftwareModule(ctx context.Context, m *domain.SoftwareModule) (*domain.SoftwareModule, error) {
	const op = "create software module"

	req, err := jsonRequest(op, http.MethodPost, c.endpoints.SoftwareModules,
		[]softwareModuleJSON{toSoftwareModuleJSON(m)}, http.StatusCreated)
	if err != nil {
		return nil, err
	}

	var created []softwareModuleJSON
	if err = c.doJSON(ctx, req, &created); err != nil {
		return nil, err
	}

	if len(created) == 0 || created[0].ID == 0 {
		return nil, missingField(op, "id")
	}

	module := fromSoftwareModuleJSON(&created[0])
	if module.Links.Self == "" {
		return nil, missingField(op, "_links.self")
	}

	return module, nil
}

// GetSoftwareModule reads a module through its self link, with every hyperlink
// the publisher relies on.
func (c *Client) GetSoftwareModule(ctx context.Context, selfLink string) (*domain.SoftwareModule, error) {
	const op = "fetch software module links"

	var fetched softwareModuleJSON

	err := c.doJSON(ctx, &request{
		op:       op,
		method:   http.MethodGet,
		url:      selfLink,
		expected: []int{http.StatusOK},
	}, &fetched)
	if err != nil {
		return nil, err
	}

	module := fromSoftwareModuleJSON(&fetched)
	if module.Links.Self == "" {
		module.Links.Self = selfLink
	}

	if missing := module.Links.Missing(); len(missing) > 0 {
		return nil, missingField(op, "_links."+missing[0])
	}

	return module, nil
}

// UploadArtifact uploads content as a multipart file to the module's artifacts link.
// The body is buffered so that retries can replay it.
func (c *Client) UploadArtifact(
	ctx context.Context,
	artifactsLink, filename string,
	content io.Reader,
) (*domain.Artifact, error) {
	const op = "upload artifact"

	var body bytes.Buffer

	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile(artifactFormField, filepath.Base(filename))
	if err != nil {
		return nil, &APIError{Op: op, StatusCode: NoStatus, Message: "create form file", Err: err}
	}

	if _, err = io.Copy(part, content); err != nil {
		return nil, &APIError{Op: op, StatusCode: NoStatus, Message: "read artifact", Err: err}
	}

	if err = form.Close(); err != nil {
		return nil, &APIError{Op: op, StatusCode: NoStatus, Message: "close form", Err: err}
	}

	var uploaded artifactJSON

	err = c.doJSON(ctx, &request{
		op:          op,
		method:      http.MethodPost,
		url:         artifactsLink,
		body:        body.Bytes(),
		contentType: form.FormDataContentType(),
		expected:    []int{http.StatusCreated},
	}, &uploaded)
	if err != nil {
		return nil, err
	}

	return fromArtifactJSON(&uploaded), nil
}
