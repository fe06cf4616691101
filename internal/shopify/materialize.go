package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

const fileCreateMutation = `
mutation fileCreate($files: [FileCreateInput!]!) {
  fileCreate(files: $files) {
    files {
      __typename
      alt
      createdAt
      ... on MediaImage {
        image {
          url
        }
      }
      ... on GenericFile {
        url
      }
      ... on Video {
        originalSource {
          url
        }
      }
    }
    userErrors {
      field
      message
    }
  }
}
`

const stagedUploadsCreateMutation = `
mutation stagedUploadsCreate($input: [StagedUploadInput!]!) {
  stagedUploadsCreate(input: $input) {
    stagedTargets {
      url
      resourceUrl
      parameters {
        name
        value
      }
    }
    userErrors {
      field
      message
    }
  }
}
`

// Strategy names the way a descriptor was (or would be) materialized.
type Strategy string

const (
	StrategyDirect Strategy = "direct"
	StrategyStaged Strategy = "staged"
)

// MaterializeResult reports the outcome of one successful materialization.
type MaterializeResult struct {
	// DeliveryURL is the asset's URL on the target store. Empty when the
	// store is still processing the file and has not assigned one yet.
	DeliveryURL string
	// Recoded is set when the target store re-encoded the asset to a
	// different file extension than the source filename. Informational,
	// never an error.
	Recoded  bool
	Strategy Strategy
}

// Materializer creates file resources on the target store, either by
// reference (the store fetches the source URL itself) or by staged upload of
// local bytes. Each call is one attempt; a failed staged upload is retried
// from scratch with a fresh target by whoever reruns the batch.
type Materializer struct {
	client   *Client
	uploader *http.Client
	logger   *zap.Logger
}

func NewMaterializer(client *Client, logger *zap.Logger) *Materializer {
	return &Materializer{
		client:   client,
		uploader: &http.Client{Timeout: 10 * time.Minute},
		logger:   logger,
	}
}

// Materialize picks the strategy by what the descriptor offers: a reachable
// source URL means direct reference, a local path means staged upload.
func (m *Materializer) Materialize(ctx context.Context, f File) (MaterializeResult, error) {
	switch {
	case f.SourceURL != "":
		return m.direct(ctx, f)
	case f.LocalPath != "":
		return m.staged(ctx, f)
	default:
		return MaterializeResult{}, fmt.Errorf("%w: %s", ErrNotMaterializable, f.Filename)
	}
}

func (m *Materializer) direct(ctx context.Context, f File) (MaterializeResult, error) {
	url, err := m.createFile(ctx, f, f.SourceURL)
	if err != nil {
		return MaterializeResult{}, err
	}
	return m.result(f, url, StrategyDirect), nil
}

func (m *Materializer) staged(ctx context.Context, f File) (MaterializeResult, error) {
	target, err := m.stagedTarget(ctx, f)
	if err != nil {
		return MaterializeResult{}, err
	}

	if err := m.uploadStaged(ctx, target, f); err != nil {
		return MaterializeResult{}, err
	}

	url, err := m.createFile(ctx, f, target.ResourceURL)
	if err != nil {
		return MaterializeResult{}, err
	}
	return m.result(f, url, StrategyStaged), nil
}

func (m *Materializer) result(f File, deliveryURL string, s Strategy) MaterializeResult {
	res := MaterializeResult{DeliveryURL: deliveryURL, Strategy: s}
	if deliveryURL != "" {
		srcExt := filepath.Ext(f.Filename)
		dstExt := filepath.Ext(FilenameFromURL(deliveryURL))
		if srcExt != "" && dstExt != "" && srcExt != dstExt {
			res.Recoded = true
			m.logger.Info("target store re-encoded file",
				zap.String("filename", f.Filename),
				zap.String("original_ext", srcExt),
				zap.String("delivery_ext", dstExt))
		}
	}
	return res
}

// createFile registers a file on the target store. originalSource is either
// the source store's public URL or the resourceUrl of a consumed staged
// target. Mutation userErrors fail only this file.
func (m *Materializer) createFile(ctx context.Context, f File, originalSource string) (string, error) {
	variables := map[string]any{
		"files": []map[string]any{{
			"alt":            f.Alt,
			"contentType":    string(f.Kind),
			"originalSource": originalSource,
		}},
	}

	resp, err := m.client.Execute(ctx, fileCreateMutation, variables)
	if err != nil {
		return "", fmt.Errorf("fileCreate for %s: %w", f.Filename, err)
	}

	var result struct {
		FileCreate struct {
			Files      []fileNode  `json:"files"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"fileCreate"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return "", fmt.Errorf("decoding fileCreate result: %w", err)
	}

	if len(result.FileCreate.UserErrors) > 0 {
		return "", &UserErrorsError{Mutation: "fileCreate", Errors: result.FileCreate.UserErrors}
	}
	if len(result.FileCreate.Files) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoFileReturned, f.Filename)
	}

	// The delivery URL can legitimately be absent right after creation,
	// while the store is still processing the upload.
	created, _ := result.FileCreate.Files[0].descriptor()
	return created.SourceURL, nil
}

// stagedTarget requests a single-use upload destination for the file.
func (m *Materializer) stagedTarget(ctx context.Context, f File) (StagedTarget, error) {
	mime, err := mimetype.DetectFile(f.LocalPath)
	if err != nil {
		return StagedTarget{}, fmt.Errorf("detecting content type of %s: %w", f.LocalPath, err)
	}

	size := f.Size
	if size == 0 {
		fi, err := os.Stat(f.LocalPath)
		if err != nil {
			return StagedTarget{}, fmt.Errorf("stat %s: %w", f.LocalPath, err)
		}
		size = fi.Size()
	}

	variables := map[string]any{
		"input": []map[string]any{{
			"filename":   f.Filename,
			"mimeType":   mime.String(),
			"resource":   string(f.Kind),
			"fileSize":   strconv.FormatInt(size, 10),
			"httpMethod": "POST",
		}},
	}

	resp, err := m.client.Execute(ctx, stagedUploadsCreateMutation, variables)
	if err != nil {
		return StagedTarget{}, fmt.Errorf("stagedUploadsCreate for %s: %w", f.Filename, err)
	}

	var result struct {
		StagedUploadsCreate struct {
			StagedTargets []StagedTarget `json:"stagedTargets"`
			UserErrors    []UserError    `json:"userErrors"`
		} `json:"stagedUploadsCreate"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return StagedTarget{}, fmt.Errorf("decoding stagedUploadsCreate result: %w", err)
	}

	if len(result.StagedUploadsCreate.UserErrors) > 0 {
		return StagedTarget{}, &UserErrorsError{Mutation: "stagedUploadsCreate", Errors: result.StagedUploadsCreate.UserErrors}
	}
	if len(result.StagedUploadsCreate.StagedTargets) == 0 {
		return StagedTarget{}, fmt.Errorf("%w: %s", ErrNoStagedTarget, f.Filename)
	}

	return result.StagedUploadsCreate.StagedTargets[0], nil
}

// uploadStaged posts the file to the staged target as multipart/form-data.
// The presigned parameters go first, in server order, then the file part;
// the body is piped so the file is never buffered whole in memory.
func (m *Materializer) uploadStaged(ctx context.Context, target StagedTarget, f File) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeMultipartBody(mw, target, f)
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.UploadURL, pr)
	if err != nil {
		return fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := m.uploader.Do(req)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", f.Filename, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: upload of %s returned %s: %s", ErrUnexpectedStatus, f.Filename, resp.Status, string(body))
	}
}

func writeMultipartBody(mw *multipart.Writer, target StagedTarget, f File) error {
	for _, p := range target.Parameters {
		if err := mw.WriteField(p.Name, p.Value); err != nil {
			return err
		}
	}

	part, err := mw.CreateFormFile("file", f.Filename)
	if err != nil {
		return err
	}

	src, err := os.Open(f.LocalPath)
	if err != nil {
		return err
	}
	defer src.Close()

	if _, err := io.Copy(part, src); err != nil {
		return err
	}
	return mw.Close()
}
