package terminator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// units drives the reader the same way the request parser does: the head is delimited by
// an empty line, and the rest is read by the length found in it.
func units(r *Reader, chunks [][]byte, bodyLen int) (got []string) {
	for _, chunk := range chunks {
		r.Feed(chunk)

		for {
			unit, ok := r.Poll()
			if !ok {
				break
			}

			got = append(got, string(unit))
			if r.Terminator().Kind() == Delimiter {
				r.SetTerminator(Count(bodyLen))
			}
		}
	}

	return got
}

func disperse(data []byte, n int) (parts [][]byte) {
	for len(data) > n {
		parts = append(parts, data[:n])
		data = data[n:]
	}

	if len(data) > 0 {
		parts = append(parts, data)
	}

	return parts
}

func TestReader(t *testing.T) {
	t.Run("delimiter", func(t *testing.T) {
		r := New(Delim("\r\n\r\n"))
		r.Feed([]byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n"))
		unit, ok := r.Poll()
		require.True(t, ok)
		require.Equal(t, "GET / HTTP/1.1\r\nHost: x", string(unit))
		require.Zero(t, r.Buffered())

		_, ok = r.Poll()
		require.False(t, ok)
	})

	t.Run("delimiter split across chunks", func(t *testing.T) {
		r := New(Delim("\r\n\r\n"))
		r.Feed([]byte("hello\r\n"))
		_, ok := r.Poll()
		require.False(t, ok)
		r.Feed([]byte("\r"))
		_, ok = r.Poll()
		require.False(t, ok)
		r.Feed([]byte("\nworld"))
		unit, ok := r.Poll()
		require.True(t, ok)
		require.Equal(t, "hello", string(unit))
		require.Equal(t, len("world"), r.Buffered())
	})

	t.Run("count leaves excess", func(t *testing.T) {
		r := New(Count(5))
		r.Feed([]byte("hel"))
		_, ok := r.Poll()
		require.False(t, ok)
		r.Feed([]byte("lo, world"))
		unit, ok := r.Poll()
		require.True(t, ok)
		require.Equal(t, "hello", string(unit))
		require.Equal(t, len(", world"), r.Buffered())
	})

	t.Run("switch applies to buffered data", func(t *testing.T) {
		r := New(Delim("\r\n\r\n"))
		r.Feed([]byte("head\r\n\r\nbody!"))
		unit, ok := r.Poll()
		require.True(t, ok)
		require.Equal(t, "head", string(unit))

		r.SetTerminator(Count(5))
		unit, ok = r.Poll()
		require.True(t, ok)
		require.Equal(t, "body!", string(unit))
	})

	t.Run("zero count", func(t *testing.T) {
		r := New(Count(0))
		unit, ok := r.Poll()
		require.True(t, ok)
		require.Empty(t, unit)
	})

	t.Run("returned units are not overridden", func(t *testing.T) {
		r := New(Delim(";"))
		r.Feed([]byte("first;sec"))
		first, ok := r.Poll()
		require.True(t, ok)
		r.Feed([]byte("ond;"))
		second, ok := r.Poll()
		require.True(t, ok)
		require.Equal(t, "first", string(first))
		require.Equal(t, "second", string(second))
	})

	t.Run("chunk boundary independence", func(t *testing.T) {
		body := strings.Repeat("abcdefgh", 64)
		raw := []byte("POST / HTTP/1.1\r\nContent-Length: 512\r\n\r\n" + body + "trailing")
		want := units(New(Delim("\r\n\r\n")), [][]byte{raw}, len(body))
		require.Equal(t, []string{"POST / HTTP/1.1\r\nContent-Length: 512", body}, want)

		for n := 1; n <= len(raw); n++ {
			got := units(New(Delim("\r\n\r\n")), disperse(raw, n), len(body))
			require.Equal(t, want, got, "chunk size %d", n)
		}
	})
}

func TestTerminatorString(t *testing.T) {
	require.Equal(t, `delimiter("\r\n\r\n")`, Delim("\r\n\r\n").String())
	require.Equal(t, "count(10)", Count(10).String())
	require.Equal(t, "unset", Terminator{}.String())
}
