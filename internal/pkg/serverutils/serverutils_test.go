package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"legal-annotation-be/internal/dto"
	"legal-annotation-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest(t *testing.T) {
	req := dto.CreateDocumentRequest{StoragePath: "s3://bucket/a.pdf", MimeType: "application/pdf"}
	err := ValidateRequest(req)

	var validationErr *dto.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "title", validationErr.Field)
	assert.Equal(t, "is required", validationErr.Message)

	req.Title = "Lease agreement"
	assert.NoError(t, ValidateRequest(req))
}

func TestValidateRequestOneOf(t *testing.T) {
	err := ValidateRequest(dto.ShareAnnotationRequest{UserId: uuid.New(), Permission: "own"})
	var validationErr *dto.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "permission", validationErr.Field)
	assert.Contains(t, validationErr.Message, "view comment edit")
}

func TestErrorHandlerStatusCodes(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{dto.NotFound("annotation"), fiber.StatusNotFound},
		{fmt.Errorf("wrap: %w", dto.ErrForbidden), fiber.StatusForbidden},
		{dto.NewValidationError("color", "bad"), fiber.StatusBadRequest},
		{&dto.LimitExceededError{Resource: "ai_query", Limit: 3, Used: 3, ResetAfter: time.Now()}, fiber.StatusTooManyRequests},
		{fiber.NewError(fiber.StatusMethodNotAllowed, "nope"), fiber.StatusMethodNotAllowed},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandlerMiddleware(logger.NewNopLogger())})
		app.Get("/", func(*fiber.Ctx) error { return tt.err })

		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, tt.code, resp.StatusCode, tt.err.Error())
	}
}

func TestLimitExceededBody(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandlerMiddleware(logger.NewNopLogger())})
	app.Get("/", func(*fiber.Ctx) error {
		return &dto.LimitExceededError{Resource: "document_upload", Limit: 5, Used: 5}
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	var body dto.LimitExceededResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "LIMIT_EXCEEDED", body.ErrorType)
	assert.Equal(t, 5, body.Data.Limit)
	assert.Equal(t, "document_upload", body.Data.Resource)
}

func TestJwtMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	userId := uuid.New()

	app := fiber.New()
	app.Get("/", JwtMiddleware, func(ctx *fiber.Ctx) error {
		id, err := UserID(ctx)
		if err != nil {
			return err
		}
		return ctx.SendString(id.String())
	})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userId.String()})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	forged, err := token.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
