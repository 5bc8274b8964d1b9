package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// Bucket folders for the platform's uploaded media. Course thumbnails
// arrive as external URLs and never pass through the blob store.
const (
	StorageFolderAvatars        = "avatars"
	StorageFolderHomestayPhotos = "homestays"
)

const signedURLTTL = time.Hour

type StorageService interface {
	UploadFile(ctx context.Context, file multipart.File, filename string, folder string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
	GetSignedURL(ctx context.Context, fileURL string) (string, error)
}

// SupabaseStorageService keeps all uploaded media in one bucket, split
// by folder. Objects are public-read; signed URLs exist for clients
// that cannot use the public path.
type SupabaseStorageService struct {
	baseURL    string
	bucket     string
	serviceKey string
	httpClient *http.Client
}

func NewSupabaseStorageService(baseURL, bucket, serviceKey string) *SupabaseStorageService {
	return &SupabaseStorageService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		bucket:     bucket,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SupabaseStorageService) UploadFile(ctx context.Context, file multipart.File, filename string, folder string) (string, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	objectPath := path.Join(strings.Trim(folder, "/"), filename)
	resp, err := s.do(
		ctx,
		http.MethodPost,
		s.objectURL(objectPath),
		http.DetectContentType(content),
		bytes.NewReader(content),
	)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()

	if !statusOK(resp.StatusCode) {
		return "", fmt.Errorf("upload file: %s", responseError(resp))
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, objectPath), nil
}

func (s *SupabaseStorageService) DeleteFile(ctx context.Context, fileURL string) error {
	objectPath, err := s.objectPathFromURL(fileURL)
	if err != nil {
		return err
	}

	resp, err := s.do(ctx, http.MethodDelete, s.objectURL(objectPath), "", nil)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	defer resp.Body.Close()

	// Already gone counts as deleted.
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if !statusOK(resp.StatusCode) {
		return fmt.Errorf("delete file: %s", responseError(resp))
	}

	return nil
}

func (s *SupabaseStorageService) GetSignedURL(ctx context.Context, fileURL string) (string, error) {
	objectPath, err := s.objectPathFromURL(fileURL)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]int{
		"expiresIn": int(signedURLTTL.Seconds()),
	})
	if err != nil {
		return "", fmt.Errorf("marshal signed url payload: %w", err)
	}

	signURL := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", s.baseURL, s.bucket, objectPath)
	resp, err := s.do(ctx, http.MethodPost, signURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("get signed url: %w", err)
	}
	defer resp.Body.Close()

	if !statusOK(resp.StatusCode) {
		return "", fmt.Errorf("get signed url: %s", responseError(resp))
	}

	var response struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("decode signed url response: %w", err)
	}
	if response.SignedURL == "" {
		return "", fmt.Errorf("signed url missing from response")
	}

	return fmt.Sprintf("%s/storage/v1%s", s.baseURL, response.SignedURL), nil
}

// do issues an authenticated request against the storage API. Uploads
// carry x-upsert so re-uploading under the same object path replaces
// the previous content.
func (s *SupabaseStorageService) do(
	ctx context.Context,
	method string,
	requestURL string,
	contentType string,
	body io.Reader,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("apikey", s.serviceKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if method == http.MethodPost && body != nil && contentType != "application/json" {
		req.Header.Set("x-upsert", "true")
	}

	return s.httpClient.Do(req)
}

func (s *SupabaseStorageService) objectURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, objectPath)
}

func (s *SupabaseStorageService) objectPathFromURL(fileURL string) (string, error) {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("parse file url: %w", err)
	}

	publicPrefix := "/storage/v1/object/public/" + s.bucket + "/"
	objectPrefix := "/storage/v1/object/" + s.bucket + "/"

	switch {
	case strings.HasPrefix(parsed.Path, publicPrefix):
		return strings.TrimPrefix(parsed.Path, publicPrefix), nil
	case strings.HasPrefix(parsed.Path, objectPrefix):
		return strings.TrimPrefix(parsed.Path, objectPrefix), nil
	default:
		return "", fmt.Errorf("file url does not belong to configured bucket")
	}
}

func statusOK(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

func responseError(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
