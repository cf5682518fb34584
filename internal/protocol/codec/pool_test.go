package codec

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestMessagePool_GetPut(t *testing.T) {
	t.Parallel()

	msg := GetMessage()
	assert.NotNil(t, msg)

	msg.Type = "test"
	msg.ID = "42"
	msg.Payload = []byte("data")

	PutMessage(msg)

	// Get again - should be reset
	msg2 := GetMessage()
	assert.NotNil(t, msg2)
	assert.Empty(t, msg2.Type)
	assert.Empty(t, msg2.ID)
	assert.Nil(t, msg2.Payload)
}

func TestPools_PutNil(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		PutMessage(nil)
		PutStruct(nil)
		PutBuffer(nil)
	})
}

func TestStructPool_Reset(t *testing.T) {
	t.Parallel()

	st := GetStruct()
	st.Fields = map[string]*structpb.Value{"type": structpb.NewStringValue("ping")}
	PutStruct(st)

	st2 := GetStruct()
	assert.Empty(t, st2.GetFields())
}

func TestBufferPool_Concurrent(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := GetBuffer()
			buf.WriteString("hello")
			assert.Equal(t, "hello", buf.String())
			PutBuffer(buf)
		}()
	}
	wg.Wait()
}
