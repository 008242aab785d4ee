package headers

import (
	"fmt"
	"net/http"
	"strings"
)

// Parse converts "Key: Value" strings into request headers. Keys are
// canonicalised and repeated keys keep every value.
func Parse(lines []string) (http.Header, error) {
	h := make(http.Header, len(lines))
	for _, line := range lines {
		key, value, ok := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" || strings.ContainsAny(key, " \t") {
			return nil, fmt.Errorf("invalid header %q (expected \"Key: Value\")", line)
		}
		h.Add(key, strings.TrimSpace(value))
	}
	return h, nil
}

// Apply sets every header of extra on req, replacing existing values
func Apply(req *http.Request, extra http.Header) {
	for key, values := range extra {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
}
