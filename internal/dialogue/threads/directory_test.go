package threads

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectory(t *testing.T) {
	d := New()
	_, ok := d.Get(1)
	assert.False(t, ok)

	d.Set(1, 10)
	d.Set(2, 20)
	d.Set(1, 11)

	id, ok := d.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 11, id)
	id, _ = d.Get(2)
	assert.Equal(t, 20, id)
}

func TestDirectoryConcurrentUsers(t *testing.T) {
	d := New()
	var wg sync.WaitGroup
	for i := int64(0); i < 50; i++ {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			d.Set(uid, int(uid)*2)
		}(i)
	}
	wg.Wait()
	for i := int64(0); i < 50; i++ {
		id, ok := d.Get(i)
		assert.True(t, ok)
		assert.Equal(t, int(i)*2, id)
	}
}
