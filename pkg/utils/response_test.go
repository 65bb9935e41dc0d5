package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabboard/pkg/errors"
)

func record(t *testing.T, fn func(c *gin.Context)) map[string]interface{} {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHidesInternalMessage(t *testing.T) {
	body := record(t, func(c *gin.Context) { Error(c, errors.ErrProjectNotFound) })
	assert.Equal(t, float64(errors.ErrProjectNotFound.Code), body["code"])
	assert.Equal(t, errors.ErrProjectNotFound.Message, body["message"])

	body = record(t, func(c *gin.Context) { Error(c, fmt.Errorf("dial tcp 10.0.0.1:3306: refused")) })
	assert.Equal(t, float64(errors.CodeInternalError), body["code"])
	assert.Equal(t, errors.ErrInternalError.Message, body["message"])
	assert.NotContains(t, body, "detail")
}

func TestPageSuccessCountsPages(t *testing.T) {
	body := record(t, func(c *gin.Context) { PageSuccess(c, []int{1, 2}, 21, 2, 10) })
	assert.Equal(t, float64(errors.CodeSuccess), body["code"])
	assert.Equal(t, float64(21), body["total"])
	assert.Equal(t, float64(3), body["pages"])
	assert.Len(t, body["data"], 2)

	body = record(t, func(c *gin.Context) { PageSuccess(c, []int{}, 0, 1, 0) })
	assert.Equal(t, float64(0), body["pages"])
}

func TestBindErrorListsFields(t *testing.T) {
	type req struct {
		Title string `json:"title" validate:"required"`
	}
	err := ValidateStruct(&req{})
	require.Error(t, err)

	body := record(t, func(c *gin.Context) { BindError(c, err) })
	assert.Equal(t, float64(errors.CodeBadRequest), body["code"])
	assert.NotEmpty(t, body["detail"])
}
