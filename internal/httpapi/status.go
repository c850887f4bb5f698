package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"modelpipe/pkg/types"
)

const contentTypeCBOR = "application/cbor"

// cborEnc uses Core Deterministic Encoding so equal snapshots encode to
// equal bytes.
var cborEnc = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("httpapi: CBOR encoder initialization failed: " + err.Error())
	}
	return em
}()

// wantsCBOR reports whether the client asked for CBOR through ?format=cbor
// or the Accept header.
func wantsCBOR(r *http.Request) bool {
	if f := r.URL.Query().Get("format"); f != "" {
		return strings.EqualFold(f, "cbor")
	}
	return strings.Contains(r.Header.Get("Accept"), contentTypeCBOR)
}

func writeStatus(w http.ResponseWriter, r *http.Request, st types.StatusResponse) {
	if wantsCBOR(r) {
		b, err := cborEnc.Marshal(st)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", contentTypeCBOR)
		_, _ = w.Write(b)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(st)
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
