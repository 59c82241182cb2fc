package gemini

import (
	"errors"
	"net/http"

	"google.golang.org/genai"
)

// IsRetryable はエラーが再試行で回復しうるかどうかを判定します。
// 認証・リクエスト不正など 4xx 系の API エラーは再試行しません（429 を除く）。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests, apiErr.Code == http.StatusRequestTimeout:
			return true
		case apiErr.Code >= 400 && apiErr.Code < 500:
			return false
		}
	}
	return true
}
