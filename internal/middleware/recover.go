package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"go_memo_keep/internal/model"
	"go_memo_keep/internal/webutil"
)

// Recoverer は chi の Recoverer と同様に panic を捕捉し、共通形式の500を返します。
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			logger := GetLogger(r.Context())
			logger.Error("Panic recovered",
				slog.Any("panic", rvr),
				slog.String("stack", string(debug.Stack())),
			)
			webutil.HandleError(w, logger, fmt.Errorf("%w: panic: %v", model.ErrInternalServer, rvr))
		}()
		next.ServeHTTP(w, r)
	})
}
