package httpd

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cumulusid/adaptive/pkg/adaptive"
	"github.com/cumulusid/adaptive/pkg/httpx"
	"github.com/cumulusid/adaptive/pkg/slogx"
)

// decodeBody parses the JSON request body into dst. A missing body decodes
// to the zero value so parameterless flow calls stay simple.
func decodeBody(req *http.Request, dst any) error {
	err := json.NewDecoder(req.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// clientContext assembles the session/device context forwarded to the
// policy engine. The IP is the browser's, not this proxy's.
func clientContext(req *http.Request, sessionID string) adaptive.Context {
	return adaptive.Context{
		SessionID: sessionID,
		UserAgent: req.UserAgent(),
		IPAddress: httpx.IPKeyExtractor(req),
	}
}

// writeResult maps a flow result onto an HTTP status. Deny is the only
// outcome that changes the code; everything else is reported as 200 with
// the status inside the body.
func writeResult(w http.ResponseWriter, result *adaptive.Result) {
	code := http.StatusOK
	if result.Status == adaptive.StatusDeny {
		code = http.StatusForbidden
	}
	httpx.WriteJSON(w, code, result)
}

// writeFlowError distinguishes caller mistakes (bad or expired transaction
// ids) from tenant failures.
func writeFlowError(w http.ResponseWriter, req *http.Request, err error) {
	var terr *adaptive.TransactionError
	if errors.As(err, &terr) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", terr.Message)
		return
	}

	slogx.FromContext(req.Context()).Error("tenant request failed", "error", err)
	httpx.WriteError(w, http.StatusBadGateway, "upstream_error", "the identity tenant could not be reached")
}

func writeInvalidBody(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "request body is not valid JSON")
}
