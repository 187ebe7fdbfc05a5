// Package codec 变更通知的二进制编码，用于跨进程投递（Redis 频道）
package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"

	"github.com/palemoky/wudi/internal/protocol"
	"github.com/palemoky/wudi/internal/protocol/convert"
)

var marshalOptions = proto.MarshalOptions{Deterministic: true}

// Encode 将 ChangeEvent 编码为 protobuf 字节
func Encode(e protocol.ChangeEvent) ([]byte, error) {
	s, err := convert.EventToStruct(e)
	if err != nil {
		return nil, err
	}

	buf := GetBuffer()
	defer PutBuffer(buf)

	out, err := marshalOptions.MarshalAppend(buf.Bytes(), s)
	if err != nil {
		return nil, fmt.Errorf("编码变更通知失败: %w", err)
	}
	// buf 会被复用，返回副本
	return append([]byte(nil), out...), nil
}

// Decode 解码 Encode 的输出
func Decode(data []byte) (protocol.ChangeEvent, error) {
	s := GetStruct()
	defer PutStruct(s)

	if err := proto.Unmarshal(data, s); err != nil {
		return protocol.ChangeEvent{}, fmt.Errorf("解码变更通知失败: %w", err)
	}
	return convert.StructToEvent(s)
}
