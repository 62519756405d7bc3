package notify

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// readSentMessage accepts both the multipart and the json encodings of
// a Bot API request.
func readSentMessage(t *testing.T, r *http.Request) sentMessage {
	t.Helper()
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var m sentMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
		return m
	}
	require.NoError(t, r.ParseMultipartForm(1<<20))
	return sentMessage{
		ChatID: strings.Trim(r.FormValue("chat_id"), `"`),
		Text:   r.FormValue("text"),
	}
}

func TestTelegramSend(t *testing.T) {
	var got sentMessage
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		got = readSentMessage(t, r)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":-100200,"type":"group"}}}`))
	}))
	defer srv.Close()

	tg, err := NewTelegram("123:abc", srv.URL+"/", srv.Client())
	require.NoError(t, err)
	require.NoError(t, tg.Send(context.Background(), "-100200", "halo"))
	require.Equal(t, "/bot123:abc/sendMessage", path)
	require.Equal(t, sentMessage{ChatID: "-100200", Text: "halo"}, got)
}

func TestTelegramSendErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	tg, err := NewTelegram("secret-token", srv.URL, nil)
	require.NoError(t, err)
	err = tg.Send(context.Background(), "1", "halo")
	require.ErrorContains(t, err, "chat not found")

	require.ErrorContains(t, tg.Send(context.Background(), "", "halo"), "empty chat id")

	srv.Close()
	err = tg.Send(context.Background(), "1", "halo")
	require.Error(t, err)
	require.NotContains(t, err.Error(), "secret-token")
}

func TestTelegramSendNotOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":false,"error_code":500,"description":"Internal Server Error"}`))
	}))
	defer srv.Close()

	tg, err := NewTelegram("t", srv.URL, nil)
	require.NoError(t, err)
	require.Error(t, tg.Send(context.Background(), "1", "halo"))
}
