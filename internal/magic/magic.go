package magic

import (
	"bytes"
	"unicode/utf8"

	"github.com/warp-runner/warp-runner/internal/config"
)

// 占位符会被 packer 原地覆写：新值写入开头，其余字节以 NUL 填充，总长度不变。
const (
	TargetFileNamePlaceholder = "u8jzPde0IgxLd6GncfBAepfJBd0Kh8oOOL8dKLzdocJ2isAjIhKtJ0RlgLKOmxgJTeKdNnFRIBXuDL7DxtpYlSXpfKtHF4vUCsMehGAkWvj7FAc9QeWJKY40uvSwMFLZ"
	BuildUIDPlaceholder       = "De1f8rESQedUStPKR0CsTy4Qwb8DwkNhFdnXsiVp"
)

const (
	targetFileNameName = "TARGET_FILE_NAME_BUF"
	buildUIDName       = "TARGET_UID_BUF"
)

var (
	targetFileNameBuf = []byte(TargetFileNamePlaceholder + "\x00")
	buildUIDBuf       = []byte(BuildUIDPlaceholder + "\x00")
)

// Identifiers 是启动时解码一次的两个内嵌标识。
type Identifiers struct {
	BuildUID       string
	TargetFileName string
}

// Read 在 buf 中查找第一个 NUL，返回其之前的文本。name 仅用于诊断信息。
func Read(name string, buf []byte) (string, error) {
	nul := bytes.IndexByte(buf, 0)
	if nul < 0 {
		return "", &config.ConfigError{Kind: config.ErrMissingTerminator, Name: name}
	}
	text := buf[:nul]
	if !utf8.Valid(text) {
		return "", &config.ConfigError{Kind: config.ErrInvalidEncoding, Name: name}
	}
	return string(text), nil
}

// BuildUID 解码区分构建版本的标识。
func BuildUID() (string, error) {
	return Read(buildUIDName, buildUIDBuf)
}

// TargetFileName 解码 payload 内目标程序的文件名。
func TargetFileName() (string, error) {
	return Read(targetFileNameName, targetFileNameBuf)
}

// Load 依次解码两个标识，任何一个失败都直接返回 ConfigError。
func Load() (Identifiers, error) {
	uid, err := BuildUID()
	if err != nil {
		return Identifiers{}, err
	}
	target, err := TargetFileName()
	if err != nil {
		return Identifiers{}, err
	}
	return Identifiers{BuildUID: uid, TargetFileName: target}, nil
}

// Buffer 按 packer 的写法生成 value + NUL 填充的缓冲区，长度与占位符缓冲区一致。
// value 过长时返回 false。
func Buffer(placeholder, value string) ([]byte, bool) {
	size := len(placeholder) + 1
	if len(value) >= size {
		return nil, false
	}
	buf := make([]byte, size)
	copy(buf, value)
	return buf, true
}
