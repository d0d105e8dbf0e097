package store

import "errors"

// ErrInvalidRun 运行记录缺少 ID
var ErrInvalidRun = errors.New("run id is required")
