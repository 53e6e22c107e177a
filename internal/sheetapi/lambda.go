package sheetapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/spec-kit/dispute-portal/internal/rowstore"
)

// HandleLambda serves the endpoint behind an API Gateway HTTP API.
func (g *Gateway) HandleLambda(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	switch strings.ToUpper(req.RequestContext.HTTP.Method) {
	case http.MethodOptions:
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNoContent, Headers: lambdaHeaders()}, nil
	case http.MethodGet:
		status, env := g.Get(ctx, req.QueryStringParameters["tab"], req.QueryStringParameters["meta"])
		return lambdaJSON(status, env), nil
	case http.MethodPost:
		body := []byte(req.Body)
		if req.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(req.Body)
			if err != nil {
				return lambdaJSON(http.StatusOK, rowstore.Envelope{Success: false, Message: "invalid request body", Code: "VALIDATION_FAILED"}), nil
			}
			body = decoded
		}
		status, env := g.Post(ctx, body)
		return lambdaJSON(status, env), nil
	default:
		return lambdaJSON(http.StatusMethodNotAllowed, rowstore.Envelope{Success: false, Message: "method not allowed"}), nil
	}
}

func lambdaJSON(status int, v any) events.APIGatewayV2HTTPResponse {
	b, _ := json.Marshal(v)
	headers := lambdaHeaders()
	headers["Content-Type"] = "application/json"
	return events.APIGatewayV2HTTPResponse{StatusCode: status, Headers: headers, Body: string(b)}
}

func lambdaHeaders() map[string]string {
	headers := make(map[string]string, len(CORSHeaders)+1)
	for k, v := range CORSHeaders {
		headers[k] = v
	}
	return headers
}
