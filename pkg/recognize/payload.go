package recognize

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeImagePayload returns the image bytes carried by s, either a data URL
// (data:image/jpeg;base64,...) or bare base64. Only the text after the first
// comma is decoded when one is present.
func DecodeImagePayload(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if _, after, found := strings.Cut(s, ","); found {
		s = after
	}
	if s == "" {
		return nil, ErrEmptyPayload
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		// some encoders drop the padding
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	return data, nil
}
