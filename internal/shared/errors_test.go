package shared

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHelpers(t *testing.T) {
	tests := []struct {
		name   string
		err    *echo.HTTPError
		status int
		code   string
	}{
		{"bad request", BadRequest("missing_image", "image file is required"), http.StatusBadRequest, "missing_image"},
		{"unauthorized", Unauthorized("token_expired", "token has expired"), http.StatusUnauthorized, "token_expired"},
		{"not found", NotFound("scan_not_found", "scan not found"), http.StatusNotFound, "scan_not_found"},
		{"conflict", Conflict("scan_exists", "a scan with this id already exists"), http.StatusConflict, "scan_exists"},
		{"unprocessable", Unprocessable("no_suggestions", "no plant could be identified"), http.StatusUnprocessableEntity, "no_suggestions"},
		{"bad gateway", BadGateway("storage_failed", "failed to store the image"), http.StatusBadGateway, "storage_failed"},
		{"internal", InternalError("persist_failed", "failed to save the scan"), http.StatusInternalServerError, "persist_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.status {
				t.Errorf("status = %d, want %d", tt.err.Code, tt.status)
			}
			apiErr, ok := tt.err.Message.(*APIError)
			if !ok {
				t.Fatalf("message is %T, want *APIError", tt.err.Message)
			}
			if apiErr.Code != tt.code {
				t.Errorf("code = %q, want %q", apiErr.Code, tt.code)
			}
			if apiErr.Message == "" {
				t.Error("message must not be empty")
			}
		})
	}
}

func TestAPIError_DetailsSerialization(t *testing.T) {
	plain, _ := json.Marshal(NewAPIError("invalid_scan_id", "scan_id must be a UUID"))
	if string(plain) != `{"code":"invalid_scan_id","message":"scan_id must be a UUID"}` {
		t.Errorf("unexpected body %s", plain)
	}

	httpErr := NewAPIError("image_too_large", "image exceeds the maximum upload size").
		WithDetails(map[string]int64{"max_bytes": 1024}).
		ToHTTP(http.StatusBadRequest)
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("status = %d", httpErr.Code)
	}

	body, _ := json.Marshal(httpErr.Message)
	want := `{"code":"image_too_large","message":"image exceeds the maximum upload size","details":{"max_bytes":1024}}`
	if string(body) != want {
		t.Errorf("body = %s, want %s", body, want)
	}
}
