package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn is an in-memory stand-in for a redis connection
type fakeConn struct {
	data     map[string][]byte
	commands [][]interface{}
	failWith error
	closed   int
}

func newFakeConn() *fakeConn {
	return &fakeConn{data: make(map[string][]byte)}
}

func (c *fakeConn) Close() error { c.closed++; return nil }
func (c *fakeConn) Err() error   { return nil }
func (c *fakeConn) Flush() error { return nil }

func (c *fakeConn) Send(cmd string, args ...interface{}) error { return nil }

func (c *fakeConn) Receive() (interface{}, error) { return nil, nil }

func (c *fakeConn) Do(cmd string, args ...interface{}) (interface{}, error) {
	c.commands = append(c.commands, append([]interface{}{cmd}, args...))
	if c.failWith != nil {
		return nil, c.failWith
	}
	switch cmd {
	case "GET":
		v, ok := c.data[args[0].(string)]
		if !ok {
			return nil, nil
		}
		return v, nil
	case "SET":
		c.data[args[0].(string)] = args[1].([]byte)
		return "OK", nil
	case "PING":
		return "PONG", nil
	}
	return nil, errors.New("unexpected command " + cmd)
}

type fakeSource struct {
	conn *fakeConn
	err  error
}

func (s *fakeSource) GetContext(ctx context.Context) (redis.Conn, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.conn, nil
}

func TestRedis_SetGet(t *testing.T) {
	ctx := context.Background()
	conn := newFakeConn()
	r := NewRedis(&fakeSource{conn: conn})

	require.NoError(t, r.Set(ctx, "wp:aqi:1.0000:2.0000:auto", []byte(`{"aqi":{}}`), AQITTL))
	assert.Equal(t, []interface{}{"SET", "wp:aqi:1.0000:2.0000:auto", []byte(`{"aqi":{}}`), "PX", int64(900000)}, conn.commands[0])

	got, ok, err := r.Get(ctx, "wp:aqi:1.0000:2.0000:auto")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"aqi":{}}`), got)
	assert.Equal(t, 2, conn.closed)
}

func TestRedis_SetWithoutTTL(t *testing.T) {
	conn := newFakeConn()
	r := NewRedis(&fakeSource{conn: conn})

	require.NoError(t, r.Set(context.Background(), "k", []byte("v"), 0))
	assert.Equal(t, []interface{}{"SET", "k", []byte("v")}, conn.commands[0])
}

func TestRedis_SetSubMillisecondTTL(t *testing.T) {
	conn := newFakeConn()
	r := NewRedis(&fakeSource{conn: conn})

	require.NoError(t, r.Set(context.Background(), "k", []byte("v"), 500*time.Microsecond))
	assert.Equal(t, []interface{}{"SET", "k", []byte("v"), "PX", int64(1)}, conn.commands[0])
}

func TestRedis_Miss(t *testing.T) {
	r := NewRedis(&fakeSource{conn: newFakeConn()})

	got, ok, err := r.Get(context.Background(), "absent")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestRedis_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("command failure", func(t *testing.T) {
		conn := newFakeConn()
		conn.failWith = errors.New("connection reset")
		r := NewRedis(&fakeSource{conn: conn})

		_, ok, err := r.Get(ctx, "k")
		assert.False(t, ok)
		assert.ErrorContains(t, err, "connection reset")
		assert.Error(t, r.Set(ctx, "k", []byte("v"), time.Second))
		assert.Error(t, r.Ping(ctx))
	})

	t.Run("pool exhausted", func(t *testing.T) {
		r := NewRedis(&fakeSource{err: errors.New("pool closed")})

		_, _, err := r.Get(ctx, "k")
		assert.ErrorContains(t, err, "pool closed")
	})
}

func TestRedis_JSONHelpers(t *testing.T) {
	ctx := context.Background()
	r := NewRedis(&fakeSource{conn: newFakeConn()})

	require.NoError(t, SetJSON(ctx, r, "k", payload{Name: "Oslo"}, time.Minute))

	var got payload
	ok, err := GetJSON(ctx, r, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Oslo", got.Name)
}

func TestRedis_Ping(t *testing.T) {
	r := NewRedis(&fakeSource{conn: newFakeConn()})
	assert.NoError(t, r.Ping(context.Background()))
}

var _ redis.Conn = (*fakeConn)(nil)
