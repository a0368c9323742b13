package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"medstock/app/errs"
	"medstock/global"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps a BackupError to the wire: recoverable codes are
// the caller's problem (400, code echoed); everything else is a 500 with
// details kept server-side.
func writeDomainError(w http.ResponseWriter, err error) {
	var be *errs.BackupError
	if errors.As(err, &be) {
		if be.Recoverable {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":       be.Message,
				"code":        string(be.Code),
				"recoverable": true,
			})
			return
		}
		global.Logger.Error().Err(err).Str("code", string(be.Code)).Msg("backup operation failed")
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":       "internal error",
			"code":        string(be.Code),
			"recoverable": false,
		})
		return
	}
	global.Logger.Error().Err(err).Msg("unhandled error")
	writeJSONError(w, http.StatusInternalServerError, "internal error")
}
