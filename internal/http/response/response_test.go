package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/deenkids/deenkids-backend/internal/pkg/errors"
)

func TestRespondServiceErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{pkgerrors.ErrNotFound, http.StatusNotFound, "not_found"},
		{fmt.Errorf("wrapped: %w", pkgerrors.ErrNotFound), http.StatusNotFound, "not_found"},
		{pkgerrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{pkgerrors.ErrForbidden, http.StatusForbidden, "forbidden"},
		{fmt.Errorf("%w: bad learner ref", pkgerrors.ErrInvalidArgument), http.StatusBadRequest, "invalid_request"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		RespondServiceError(c, tc.err)

		if w.Code != tc.wantStatus {
			t.Fatalf("%v: status = %d, want %d", tc.err, w.Code, tc.wantStatus)
		}
		var envelope ErrorEnvelope
		if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("%v: decode body: %v", tc.err, err)
		}
		if envelope.Error.Code != tc.wantCode {
			t.Fatalf("%v: code = %q, want %q", tc.err, envelope.Error.Code, tc.wantCode)
		}
	}
}
