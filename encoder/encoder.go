package encoder

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// Encode converts raw image bytes to their base64 text form. Any byte
// sequence encodes successfully.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Decode reverses Encode.
func Decode(encoded string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(encoded)
}

// DataURI wraps image bytes in a data:<mime>;base64,<payload> URI suitable
// for embedding in an upstream request. The mime type is sniffed from the
// bytes; anything that doesn't sniff as an image is sent as image/jpeg.
func DataURI(data []byte) string {
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, Encode(data))
}
