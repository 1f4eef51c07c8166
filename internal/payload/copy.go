package payload

import (
	"context"
	"io"
)

const copyChunkSize = 32 * 1024

// cancelableReader 在每次 Read 之前检查 ctx，解包大文件时可以尽早中止。
type cancelableReader struct {
	ctx context.Context
	r   io.Reader
}

func (c cancelableReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// copyChunks 把 src 写入 dst，ctx 取消后下一次读取即返回 ctx.Err()。
func copyChunks(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	return io.CopyBuffer(dst, cancelableReader{ctx: ctx, r: src}, make([]byte, copyChunkSize))
}

// countingWriter 记录写入的字节数，用于计算 archive 长度。
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
