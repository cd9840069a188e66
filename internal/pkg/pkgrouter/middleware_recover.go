package pkgrouter

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
)

// middlewareRecoverer turns a handler panic into a 500 envelope. It runs
// outside the correlation middleware, so the ID is read back from the
// response header that middleware already set.
func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			//nolint:err113,errorlint // sentinel must propagate unchanged
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			slog.ErrorContext(r.Context(), "panic on the server",
				"because", rvr,
				"method", r.Method,
				"path", r.URL.Path,
				"_cID", w.Header().Get(HeaderCorrelationID),
				"stack", appFrames(debug.Stack()),
			)

			if r.Header.Get("Connection") == "Upgrade" {
				return
			}
			writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}

// appFrames keeps the file:line frames under /internal/, trimmed to the
// repository-relative path, so a panic log points at our code only.
func appFrames(stack []byte) []string {
	var frames []string
	for _, line := range strings.Split(string(stack), "\n") {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, ".go:")
		if idx == -1 || !strings.Contains(line, "/internal/") {
			continue
		}
		if end := strings.IndexByte(line[idx:], ' '); end != -1 {
			line = line[:idx+end]
		}
		frames = append(frames, line[strings.Index(line, "/internal/")+1:])
	}
	return frames
}
