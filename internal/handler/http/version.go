package http

import (
	"net/http"

	"github.com/MKhiriev/go-blog/internal/utils"
)

func (h *Handler) getServerVersion(w http.ResponseWriter, r *http.Request) {
	serverVersion := h.services.AppInfoService.GetAppVersion(r.Context())

	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(serverVersion))
}

func (h *Handler) getBuildInfo(w http.ResponseWriter, r *http.Request) {
	info := h.services.AppInfoService.GetBuildInfo(r.Context())

	utils.WriteJSON(w, map[string]string{
		"version": info.BuildVersion(),
		"date":    info.BuildDate(),
		"commit":  info.BuildCommit(),
	}, http.StatusOK)
}
