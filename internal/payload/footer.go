package payload

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	footerMagic = "WARPPAK1"
	footerSize  = 8 + len(footerMagic)
)

// ErrNoPayload 表示文件末尾没有合法的 payload footer。
var ErrNoPayload = errors.New("no payload appended to executable")

// Locate 从文件末尾读取 footer，返回 archive 的起始偏移与长度。
func Locate(r io.ReaderAt, size int64) (offset, length int64, err error) {
	if size < int64(footerSize) {
		return 0, 0, ErrNoPayload
	}

	var footer [footerSize]byte
	if _, err := r.ReadAt(footer[:], size-int64(footerSize)); err != nil {
		return 0, 0, fmt.Errorf("read payload footer: %w", err)
	}
	if string(footer[8:]) != footerMagic {
		return 0, 0, ErrNoPayload
	}

	n := binary.LittleEndian.Uint64(footer[:8])
	if n == 0 || n > uint64(size-int64(footerSize)) {
		return 0, 0, fmt.Errorf("%w: archive length %d out of range", ErrNoPayload, n)
	}
	length = int64(n)
	return size - int64(footerSize) - length, length, nil
}

// writeFooter 追加 footer。
func writeFooter(w io.Writer, length int64) error {
	var footer [footerSize]byte
	binary.LittleEndian.PutUint64(footer[:8], uint64(length))
	copy(footer[8:], footerMagic)
	_, err := w.Write(footer[:])
	return err
}
