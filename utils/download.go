package utils

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// IsURL reports whether the source should be fetched over http.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// DownloadImage retrieves the url and copies the response body into a temporary file.
// The caller is responsible for removing the file.
func DownloadImage(url string) (*os.File, error) {
	res, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("unable to download image file from URI: %s: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to download image file from URI: %s, status %v", url, res.Status)
	}

	tmpfile, err := os.CreateTemp("", "image")
	if err != nil {
		return nil, fmt.Errorf("unable to create temporary file: %w", err)
	}

	// Copy the image binary data into the temporary file.
	if _, err = io.Copy(tmpfile, res.Body); err != nil {
		tmpfile.Close()
		os.Remove(tmpfile.Name())
		return nil, fmt.Errorf("unable to copy the source URI into the destination file: %w", err)
	}
	if _, err = tmpfile.Seek(0, io.SeekStart); err != nil {
		tmpfile.Close()
		os.Remove(tmpfile.Name())
		return nil, fmt.Errorf("unable to rewind the temporary file: %w", err)
	}
	return tmpfile, nil
}
