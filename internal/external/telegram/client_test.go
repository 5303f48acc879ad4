package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/propopol/internal/contracts"
	"github.com/wonny/propopol/pkg/logger"
)

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) SendMessage(text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, SplitMessage("short\n", 100))

	text := strings.Repeat("0123456789\n", 5)
	chunks := SplitMessage(text, 25)
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 25)
	}
	assert.Equal(t, "0123456789\n0123456789", chunks[0])
}

func TestSplitMessage_LongLine(t *testing.T) {
	long := strings.Repeat("a", 60)
	chunks := SplitMessage("head\n"+long+"\ntail", 25)

	require.Len(t, chunks, 4)
	assert.Equal(t, "head", chunks[0])
	assert.Equal(t, strings.Repeat("a", 25), chunks[1])
	assert.Equal(t, strings.Repeat("a", 25), chunks[2])
	assert.Equal(t, strings.Repeat("a", 10)+"\ntail", chunks[3])
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 25)
	}
}

func TestSplitMessage_LongLineKeepsRunes(t *testing.T) {
	line := strings.Repeat("가", 20) // 60 bytes
	chunks := SplitMessage(line, 25)

	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 25)
		assert.True(t, utf8.ValidString(c))
	}
	assert.Equal(t, line, strings.Join(chunks, ""))
}

func TestChannel_Publish(t *testing.T) {
	fake := &fakeNotifier{}
	ch := NewChannel(fake, logger.Nop())

	err := ch.Publish(context.Background(), &contracts.Report{}, "# title\n|a|b|")
	require.NoError(t, err)
	assert.Equal(t, []string{"# title\n|a|b|"}, fake.sent)
	assert.Equal(t, "telegram", ch.Name())
}

func TestChannel_PublishError(t *testing.T) {
	ch := NewChannel(&fakeNotifier{err: errors.New("forbidden")}, logger.Nop())

	err := ch.Publish(context.Background(), &contracts.Report{}, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forbidden")
}

func TestBotNotifier_SendMessage(t *testing.T) {
	var methods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		method := parts[len(parts)-1]
		methods = append(methods, method)

		w.Header().Set("Content-Type", "application/json")
		switch method {
		case "getMe":
			w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"propopol","username":"propopol_bot"}}`))
		case "sendMessage":
			assert.Equal(t, "42", r.FormValue("chat_id"))
			w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`))
		default:
			w.Write([]byte(`{"ok":false,"description":"unknown"}`))
		}
	}))
	defer server.Close()

	notifier, err := NewNotifierWithEndpoint("token", 42, server.URL+"/bot%s/%s")
	require.NoError(t, err)

	require.NoError(t, notifier.SendMessage("hello"))
	assert.Equal(t, []string{"getMe", "sendMessage"}, methods)
}
