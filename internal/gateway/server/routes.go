package server

import (
	"net/http"

	"go.uber.org/zap"

	"schemefinder/internal/gateway/handler"
	"schemefinder/internal/gateway/handler/rpc"
	"schemefinder/internal/gateway/middleware"
)

func NewMux(api *handler.Service, schemeHandler *rpc.SchemeHandler, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// JSON API
	api.Register(mux)

	// RPC and websocket
	schemeHandler.Register(mux)

	// Middleware
	return middleware.CORS(middleware.Logging(log)(mux))
}
