package errors

import "errors"

// ErrStaleWrite 受保护写入冲突：目标字段已被其他轮询/操作写入
var ErrStaleWrite = errors.New("记录已被其他操作写入，本次写入被拒绝")
