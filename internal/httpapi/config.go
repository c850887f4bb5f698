package httpapi

import "github.com/go-chi/cors"

// corsOpts is nil while CORS is disabled; NewMux then adds no middleware.
var corsOpts *cors.Options

// SetCORSOptions configures CORS for the admin listener. With enabled set,
// empty origins allow any origin, empty methods allow GET and OPTIONS, and
// empty headers allow Accept and Last-Event-ID so browsers can resume
// /events streams.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	if !enabled {
		corsOpts = nil
		return
	}
	opts := cors.Options{
		AllowedOrigins: withDefault(origins, "*"),
		AllowedMethods: withDefault(methods, "GET", "OPTIONS"),
		AllowedHeaders: withDefault(headers, "Accept", "Last-Event-ID"),
		MaxAge:         300,
	}
	corsOpts = &opts
}

func withDefault(vals []string, def ...string) []string {
	if len(vals) == 0 {
		return def
	}
	return append([]string(nil), vals...)
}
