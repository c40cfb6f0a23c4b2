// Package capture provides image frame acquisition for the Mudra gesture classifier.
package capture

import (
	"encoding/base64"
	"fmt"
	"strings"

	"gocv.io/x/gocv"
)

// MaxImageBytes is the maximum accepted size of a decoded image payload (50MB).
const MaxImageBytes = 50 * 1024 * 1024

// DecodeBase64Image decodes a base64-encoded image string into a frame.
// The string may carry a data URL prefix ("data:image/...;base64,").
// The caller owns the returned Mat and must Close it.
func DecodeBase64Image(encoded string) (*gocv.Mat, error) {
	if strings.HasPrefix(encoded, "data:image/") {
		parts := strings.SplitN(encoded, ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed data URL")
		}
		encoded = parts[1]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("image payload exceeds %d bytes", MaxImageBytes)
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("unrecognized image format")
	}

	return &mat, nil
}
