package codec

import (
	"bytes"
	"sync"

	"google.golang.org/protobuf/types/known/structpb"
)

// 复用编解码用的对象，减少 GC 压力
var (
	structPool = sync.Pool{
		New: func() any {
			return &structpb.Struct{}
		},
	}

	bufferPool = sync.Pool{
		New: func() any {
			return new(bytes.Buffer)
		},
	}
)

// GetStruct retrieves a structpb.Struct from the pool
func GetStruct() *structpb.Struct {
	return structPool.Get().(*structpb.Struct)
}

// PutStruct returns a structpb.Struct to the pool
func PutStruct(s *structpb.Struct) {
	if s == nil {
		return
	}
	s.Reset()
	structPool.Put(s)
}

// GetBuffer retrieves a bytes.Buffer from the pool
func GetBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

// PutBuffer returns a bytes.Buffer to the pool
// The buffer is reset but capacity is preserved
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}
