package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParseIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		raw  string
		want uint
		ok   bool
	}{
		{"plain id", "42", 42, true},
		{"max 32-bit id", "4294967295", 4294967295, true},
		{"zero", "0", 0, false},
		{"negative", "-3", 0, false},
		{"not a number", "abc", 0, false},
		{"beyond 32 bits", "4294967296", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Params = gin.Params{{Key: "id", Value: tc.raw}}

			id, ok := parseIDParam(c)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, id)
			if !tc.ok {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			}
		})
	}
}
