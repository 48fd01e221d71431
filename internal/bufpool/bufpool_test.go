package bufpool

import "testing"

func TestGetSizes(t *testing.T) {
	cases := []struct {
		class Class
		want  int
	}{
		{ClassPointer, pointerSize},
		{ClassScanWindow, scanWindowSize},
		{ClassString, MaxStringBytes},
	}
	for _, c := range cases {
		buf := Get(c.class)
		if len(buf) != c.want {
			t.Errorf("Get(%v) len = %d, want %d", c.class, len(buf), c.want)
		}
		Put(c.class, buf)
	}
}

func TestPutRestoresCapacity(t *testing.T) {
	buf := Get(ClassString)
	shrunk := buf[:4]
	Put(ClassString, shrunk)

	again := Get(ClassString)
	if len(again) != MaxStringBytes {
		t.Errorf("len(again) = %d, want %d (Put should not shrink the pooled buffer)", len(again), MaxStringBytes)
	}
	Put(ClassString, again)
}
