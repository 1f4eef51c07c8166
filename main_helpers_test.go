package main

import (
	"bytes"
	"testing"
)

// captureStderr 把 runner 的诊断输出重定向到内存，测试结束时恢复。
func captureStderr(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := stdErr
	stdErr = buf
	t.Cleanup(func() { stdErr = prev })
	return buf
}
