package request

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultTimeout    = 10 * time.Second
	DefaultRetryCount = 3
)

// Request is the shared client used when no configuration is available.
var Request = New(DefaultTimeout, DefaultRetryCount)

// New builds a resty client that honours HTTP(S)_PROXY and retries transport errors.
func New(timeout time.Duration, retryCount int) *resty.Client {
	return resty.New().SetTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment, // 通用适配环境变量
	}).
		SetTimeout(timeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetHeader("Accept", "application/json")
}
