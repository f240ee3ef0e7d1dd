package handler

import (
	"net"
	"net/http"
	"strings"

	"github.com/fitlens/backend/pkg/geo"
)

// GeoHandler handles the currency-display geolocation endpoint.
type GeoHandler struct {
	geo *geo.Client
}

// NewGeoHandler creates a new GeoHandler.
func NewGeoHandler(client *geo.Client) *GeoHandler {
	return &GeoHandler{geo: client}
}

// Lookup handles GET /api/geo. Failures degrade to the USD defaults inside
// the client, so this endpoint always returns 200.
func (h *GeoHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.geo.Lookup(r.Context(), clientIP(r)))
}

// clientIP returns the requesting IP, preferring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.SplitN(xff, ",", 2)
		return strings.TrimSpace(parts[0])
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
