package pagination

import "strings"

const defaultErrorMessage = "request failed"

// DetectError reports whether a successfully transported payload is an
// application-level failure, and returns the message to show for it.
//
// Recognised flags: error:true, a non-empty error string, success:false and
// status:"error"/"fail"/"failed".
func DetectError(raw any) (string, bool) {
	root, ok := asMap(decodeBytes(raw))
	if !ok {
		return "", false
	}

	failed := false
	switch v := root["error"].(type) {
	case bool:
		failed = v
	case string:
		failed = strings.TrimSpace(v) != ""
	}
	if ok, present := root["success"].(bool); present && !ok {
		failed = true
	}
	if s, present := root["status"].(string); present {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "error", "fail", "failed":
			failed = true
		}
	}
	if !failed {
		return "", false
	}
	return errorMessage(root), true
}

func errorMessage(root map[string]any) string {
	for _, name := range []string{"message", "error_message", "msg", "error"} {
		if s, ok := root[name].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return defaultErrorMessage
}
