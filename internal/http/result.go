package httpapi

// Result 统一响应信封
// - code: 2000 成功，-1 失败，60401 会话失效
// - type: 'success' | 'error' | 'warning'
// - message: string
// - result: any
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
	// TokenExpired 使用 code=60401 + HTTP 401
	ResultTokenExpired = 60401
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}

func TokenExpired() Result[any] {
	return Result[any]{Code: ResultTokenExpired, Type: "error", Message: "session expired, please sign in again", Result: nil}
}
