package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/gaiheki-navi/broker-api/internal/config"
)

// CORS builds the cross-origin middleware from application config.
// With no configured origins the behavior depends on the environment:
// development allows everything, production denies everything.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	switch {
	case hasWildcardOrigin(cfg.AllowedOrigins):
		if !isDevEnvironment(environment) {
			logger.Warn("CORS wildcard origin outside development",
				zap.String("environment", environment))
		}
		options.AllowOriginFunc = allowAnyOrigin

	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS restricted to configured origins",
			zap.Strings("origins", cfg.AllowedOrigins))

	case isDevEnvironment(environment):
		options.AllowOriginFunc = allowAnyOrigin
		logger.Info("CORS open for development")

	default:
		// An empty AllowedOrigins slice makes the chi middleware fall back
		// to "*", so denial has to go through AllowOriginFunc.
		options.AllowOriginFunc = func(r *http.Request, origin string) bool {
			return false
		}
		logger.Warn("CORS has no allowed origins, cross-origin requests will be denied",
			zap.String("environment", environment))
	}

	return cors.Handler(options)
}

func allowAnyOrigin(r *http.Request, origin string) bool {
	return origin != ""
}

func hasWildcardOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func isDevEnvironment(environment string) bool {
	return environment == "development" || environment == "local" || environment == ""
}
