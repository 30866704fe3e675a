package confirm

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStaticAndFunc(t *testing.T) {
	ctx := context.Background()
	assert.True(t, Static(true).Confirm(ctx, "t", "b"))
	assert.False(t, Static(false).Confirm(ctx, "t", "b"))

	var gotTitle string
	g := Func(func(_ context.Context, title, _ string) bool {
		gotTitle = title
		return true
	})
	assert.True(t, g.Confirm(ctx, "Delete order?", ""))
	assert.Equal(t, "Delete order?", gotTitle)

	var nilFunc Func
	assert.False(t, nilFunc.Confirm(ctx, "", ""))
}

func TestAnswer(t *testing.T) {
	ctx := context.Background()
	for _, v := range []string{"1", "y", "true", "YES", " on "} {
		assert.True(t, Answer(v).Confirm(ctx, "", ""), v)
	}
	for _, v := range []string{"", "0", "no", "maybe"} {
		assert.False(t, Answer(v).Confirm(ctx, "", ""), v)
	}
}

func TestTerminal(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	g := Terminal(strings.NewReader("y\n\nno\n"), &out)

	assert.True(t, g.Confirm(ctx, "Delete this order?", "This order will be permanently deleted."))
	assert.Contains(t, out.String(), "Delete this order?\nThis order will be permanently deleted. [y/N]: ")
	assert.False(t, g.Confirm(ctx, "t", "b"), "blank line")
	assert.False(t, g.Confirm(ctx, "t", "b"), "explicit no")
	assert.False(t, g.Confirm(ctx, "t", "b"), "end of input")
}

func TestTerminalCancelledContextDeclines(t *testing.T) {
	in, w := io.Pipe()
	defer w.Close()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool, 1)
	go func() { done <- Terminal(in, io.Discard).Confirm(ctx, "t", "b") }()
	cancel()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("gate kept waiting after cancel")
	}
}
