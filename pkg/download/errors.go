package download

import "errors"

// Downloader error definitions using sentinel errors pattern
var (
	// ErrPermanentStatus 非5xx错误状态码，不重试
	ErrPermanentStatus = errors.New("permanent http status")
	// ErrRetriesExhausted 重试次数用尽
	ErrRetriesExhausted = errors.New("download retries exhausted")
)
