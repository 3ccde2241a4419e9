// Package dataset fetches example datasets from the Kaggle API. It is a
// sibling utility for sourcing reference imagery and is not consumed by
// the rendering pipeline.
package dataset

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.kaggle.com/api/v1"

type Client struct {
	Username    string
	Key         string
	BaseURL     string
	DownloadDir string
	HTTPClient  *http.Client
}

// NewClientFromEnv reads KAGGLE_USERNAME / KAGGLE_KEY (populated by the
// .env loader in main) and downloads under data/.
func NewClientFromEnv() *Client {
	return &Client{
		Username:    os.Getenv("KAGGLE_USERNAME"),
		Key:         os.Getenv("KAGGLE_KEY"),
		BaseURL:     defaultBaseURL,
		DownloadDir: "data",
		HTTPClient:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// Download fetches a dataset ("owner/dataset-name"), unpacks the zip
// archive and returns the local directory holding its files. Network
// and auth failures surface as errors; nothing is retried.
func (c *Client) Download(ctx context.Context, ref string) (string, error) {
	parts := strings.Split(ref, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("bad dataset reference %q: want owner/dataset-name", ref)
	}

	url := fmt.Sprintf("%s/datasets/download/%s", c.BaseURL, ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	if c.Username != "" {
		req.SetBasicAuth(c.Username, c.Key)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("dataset download failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", fmt.Errorf("dataset download unauthorized (status %d): check KAGGLE_USERNAME/KAGGLE_KEY", resp.StatusCode)
	default:
		return "", fmt.Errorf("dataset download failed: status %d", resp.StatusCode)
	}

	zipFile, err := os.CreateTemp("", "dataset_*.zip")
	if err != nil {
		return "", err
	}
	defer os.Remove(zipFile.Name())

	if _, err := io.Copy(zipFile, resp.Body); err != nil {
		zipFile.Close()
		return "", fmt.Errorf("dataset download failed: %w", err)
	}
	zipFile.Close()

	destDir := filepath.Join(c.DownloadDir, parts[0], parts[1])
	if err := unzip(zipFile.Name(), destDir); err != nil {
		return "", fmt.Errorf("dataset unpack failed: %w", err)
	}

	return destDir, nil
}

func unzip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	for _, f := range r.File {
		target := filepath.Join(destDir, f.Name)
		// Reject entries escaping the destination (zip slip).
		if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes destination", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}

		src, err := f.Open()
		if err != nil {
			return err
		}
		dst, err := os.Create(target)
		if err != nil {
			src.Close()
			return err
		}
		_, err = io.Copy(dst, src)
		dst.Close()
		src.Close()
		if err != nil {
			return err
		}
	}

	return nil
}
