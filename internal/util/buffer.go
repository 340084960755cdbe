package util

import (
	"bytes"
	"sync"
)

var bytesBuffer = sync.Pool{
	New: func() any { return &bytes.Buffer{} },
}

func GetBytesBuffer() *bytes.Buffer {
	return bytesBuffer.Get().(*bytes.Buffer)
}

// PutBytesBuffer resets p and returns it to the pool.
func PutBytesBuffer(p *bytes.Buffer) {
	p.Reset()
	bytesBuffer.Put(p)
}
