package middleware

import (
	"net/http"
	"strings"

	"github.com/RoyceAzure/lab/barcheckout/internal/constants"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/token"
	"github.com/RoyceAzure/lab/barcheckout/internal/util"
)

// 只解析token payload, token 有任何錯誤都不中斷, 只是不設置context
// 是否需要登入由 AuthMiddleware 決定
func AuthPayloadMiddleware(tokenMaker token.Maker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload, ok := checkAuthPayload(tokenMaker, r)
			if ok {
				next.ServeHTTP(w, r.WithContext(util.WithTokenPayload(r.Context(), payload)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func checkAuthPayload(tokenMaker token.Maker, r *http.Request) (*token.Payload, bool) {
	authorizationHeader := r.Header.Get(string(constants.AuthorizationHeaderKey))
	if len(authorizationHeader) == 0 {
		return nil, false
	}

	fields := strings.Fields(authorizationHeader)
	if len(fields) != 2 {
		return nil, false
	}

	authorizationType := strings.ToLower(fields[0])
	if authorizationType != string(constants.AuthorizationTypeBearer) {
		return nil, false
	}

	payload, err := tokenMaker.VerifyToken(fields[1])
	if err != nil {
		return nil, false
	}
	return payload, true
}
