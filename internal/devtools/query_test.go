package devtools

import (
	"bytes"
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/purdah/internal/event"
)

type login struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

func loginEvent(user, password string) event.Event {
	return event.New("session.login", login{User: user, Password: password},
		event.WithAction(func(l login) add { return add{N: 1} }),
	)
}

func TestFilters(t *testing.T) {
	rec := NewRecorder(10)
	d, _, _ := setup(t, rec)
	ctx := context.Background()

	d.Dispatch(ctx, addEvent(1))
	d.Dispatch(ctx, loginEvent("ada", "pw1"))
	d.Dispatch(ctx, loginEvent("bob", "pw2"))
	entries := rec.Entries()
	require.Len(t, entries, 3)

	ofSession := OfType("session.*")
	assert.False(t, ofSession(entries[0]))
	assert.True(t, ofSession(entries[1]))

	isBob := Where("user", "bob")
	assert.False(t, isBob(entries[0]), "scalar payload has no fields")
	assert.False(t, isBob(entries[1]))
	assert.True(t, isBob(entries[2]))

	both := All(ofSession, Where("user", "ada"), nil)
	assert.True(t, both(entries[1]))
	assert.False(t, both(entries[2]))
	assert.True(t, All()(entries[0]))
}

func TestReplay_Where(t *testing.T) {
	rec := NewRecorder(10)
	d, _, _ := setup(t, rec)
	ctx := context.Background()
	d.Dispatch(ctx, loginEvent("ada", "pw"))
	d.Dispatch(ctx, loginEvent("bob", "pw"))

	fresh, _, h := setup(t, nil)
	reports := rec.Replay(ctx, fresh, Where("user", "ada"))
	require.Len(t, reports, 1)
	assert.Equal(t, 1, h.State())
}

func TestExportRedacted(t *testing.T) {
	rec := NewRecorder(10)
	d, _, _ := setup(t, rec)
	ctx := context.Background()
	d.Dispatch(ctx, loginEvent("ada", "secret"))
	d.Dispatch(ctx, addEvent(4))

	var buf bytes.Buffer
	require.NoError(t, rec.ExportRedacted(&buf, "password", "missing"))
	assert.NotContains(t, buf.String(), "secret")
	assert.Contains(t, buf.String(), "\n  ", "output is indented")

	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	payload, ok := out[0]["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, Redacted, payload["password"])
	assert.Equal(t, "ada", payload["user"])
	assert.EqualValues(t, 4, out[1]["payload"])
}
