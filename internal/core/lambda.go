package core

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
)

// LambdaHandler returns the API Gateway HTTP API (payload v2) entry point for
// the mounted router. Pass it to lambda.Start. Call MountRoutes first.
func (s *Server) LambdaHandler() func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return chiadapter.NewV2(s.router).ProxyWithContextV2
}
