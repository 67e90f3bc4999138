package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"ridebooking/internal/database"
	"ridebooking/internal/models"
	"ridebooking/internal/service"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLambdaHandler(t *testing.T) {
	store := database.NewMemoryStore()
	handler := LambdaHandler(NewRouter(RouterDeps{
		Bookings: service.NewBookingService(store, nil, nil),
		Tracking: service.NewTrackingService(store, nil, nil),
	}))
	ctx := context.Background()

	t.Run("Booking", func(t *testing.T) {
		resp, err := handler(ctx, awsevents.APIGatewayProxyRequest{
			HTTPMethod: http.MethodPost,
			Path:       models.DefaultHTTPPath,
			Headers:    map[string]string{"Content-Type": "application/json", "Origin": "https://app.example.com"},
			Body:       validBooking,
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "https://app.example.com", resp.Headers["Access-Control-Allow-Origin"])

		var body map[string]string
		require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
		assert.Equal(t, models.MsgBooked, body["message"])
		assert.Len(t, store.Documents(models.CollectionBookings), 1)
	})

	t.Run("Base64Body", func(t *testing.T) {
		resp, err := handler(ctx, awsevents.APIGatewayProxyRequest{
			HTTPMethod:      http.MethodPost,
			Path:            models.DefaultHTTPPath,
			Body:            base64.StdEncoding.EncodeToString([]byte(validBooking)),
			IsBase64Encoded: true,
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("BadBase64", func(t *testing.T) {
		_, err := handler(ctx, awsevents.APIGatewayProxyRequest{
			HTTPMethod:      http.MethodPost,
			Path:            models.DefaultHTTPPath,
			Body:            "%%%",
			IsBase64Encoded: true,
		})
		assert.Error(t, err)
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		resp, err := handler(ctx, awsevents.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: models.DefaultHTTPPath})
		require.NoError(t, err)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.JSONEq(t, `{"message":"Method Not Allowed. Use POST."}`, resp.Body)
	})

	t.Run("Preflight", func(t *testing.T) {
		resp, err := handler(ctx, awsevents.APIGatewayProxyRequest{
			HTTPMethod: http.MethodOptions,
			Path:       models.DefaultHTTPPath,
			MultiValueHeaders: map[string][]string{
				"Origin":                        {"https://app.example.com"},
				"Access-Control-Request-Method": {"POST"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []string{"https://app.example.com"}, resp.MultiValueHeaders["Access-Control-Allow-Origin"])
	})
}
