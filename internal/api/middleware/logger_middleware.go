package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/RoyceAzure/lab/barcheckout/internal/api/response"
	"github.com/RoyceAzure/lab/barcheckout/internal/util"
	"github.com/rs/zerolog"
)

type StatusRecoder struct {
	http.ResponseWriter
	status int
}

func (w *StatusRecoder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *StatusRecoder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func getUserID(r *http.Request) string {
	payload := util.GetTokenPayloadFromContext(r.Context())
	if payload == nil {
		return "unknown"
	}
	return strconv.FormatInt(payload.UserID, 10)
}

// 記錄request 請求, 有一起處理recover
// 帶有 request_id 的 logger 放進 ctx, handler 用 zerolog.Ctx 取得
func LoggerMiddleware(logger *zerolog.Logger) func(next http.Handler) http.Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recoder := &StatusRecoder{ResponseWriter: w}
			reqLogger := logger.With().Str("request_id", util.GetRequestIDFromContext(r.Context())).Logger()
			r = r.WithContext(reqLogger.WithContext(r.Context()))

			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					reqLogger.Error().
						Str("user_id", getUserID(r)).
						Str("method", r.Method).
						Str("url", r.URL.String()).
						Str("error", fmt.Sprintf("%v", err)).
						Bytes("stack", debug.Stack()).
						Msg("request panic")
					if recoder.status == 0 {
						response.ErrorJSON(recoder, http.StatusInternalServerError, "internal server error")
					}
					return
				}

				reqLogger.Info().
					Str("user_id", getUserID(r)).
					Str("method", r.Method).
					Str("url", r.URL.String()).
					Int("status", recoder.Status()).
					Dur("duration", time.Since(start)).
					Msg("request completed")
			}()

			next.ServeHTTP(recoder, r)
		})
	}
}
