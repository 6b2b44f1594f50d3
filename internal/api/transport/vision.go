package transport

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tjfontaine/movi-transport-agent/internal/core/domain"
	"github.com/tjfontaine/movi-transport-agent/internal/server"
)

const (
	maxUploadBytes  = 32 << 20
	matchConfidence = 0.75
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// VisionMatch is the result of matching an uploaded image to a trip.
type VisionMatch struct {
	Match      *string `json:"match"`
	Confidence float64 `json:"confidence"`
}

// normalizeName lower-cases s and collapses every run of characters
// outside [a-z0-9] into a single space.
func normalizeName(s string) string {
	return strings.TrimSpace(nonAlphanumeric.ReplaceAllString(strings.ToLower(s), " "))
}

// fileStem returns the base name of filename without its final extension.
func fileStem(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" {
		return stem
	}
	return base
}

// matchTrip returns the first trip whose normalised display name contains,
// or is contained in, the normalised stem. An empty stem matches nothing.
func matchTrip(stem string, trips []domain.DailyTrip) VisionMatch {
	needle := normalizeName(stem)
	if needle == "" {
		return VisionMatch{}
	}
	for _, trip := range trips {
		name := normalizeName(trip.DisplayName)
		if name == "" {
			continue
		}
		if strings.Contains(needle, name) || strings.Contains(name, needle) {
			match := trip.DisplayName
			return VisionMatch{Match: &match, Confidence: matchConfidence}
		}
	}
	return VisionMatch{}
}

// handleVisionMatch matches an uploaded image to a daily trip by file name.
// The image content itself is not inspected.
func (h *Handler) handleVisionMatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			server.WriteError(w, r, missingField("file"))
			return
		}
		server.WriteError(w, r, domain.ErrInvalidRequest("invalid multipart upload").WithCause(err))
		return
	}
	file.Close()

	trips, err := h.store.ListDailyTrips(r.Context())
	if err != nil {
		server.WriteError(w, r, err)
		return
	}

	result := matchTrip(fileStem(header.Filename), trips)
	if result.Match != nil {
		server.AddLogField(r.Context(), "vision_match", *result.Match)
	}
	h.logger.Debug("vision match",
		slog.String("filename", header.Filename),
		slog.Bool("matched", result.Match != nil),
	)
	server.WriteJSON(w, http.StatusOK, result)
}
