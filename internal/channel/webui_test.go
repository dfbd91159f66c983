package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/SIDHANTH-S/Voigent/internal/bus"
	"github.com/SIDHANTH-S/Voigent/internal/config"
)

func TestNewWebUIChannel(t *testing.T) {
	b := bus.NewMessageBus(10)

	ch, err := NewWebUIChannel(config.WebUIConfig{Enabled: true}, config.GatewayConfig{}, b)
	if err != nil {
		t.Fatalf("NewWebUIChannel: %v", err)
	}
	if ch.Name() != "webui" {
		t.Errorf("Name() = %q, want webui", ch.Name())
	}
	if ch.port != config.DefaultPort {
		t.Errorf("port = %d, want default %d", ch.port, config.DefaultPort)
	}
}

func TestNewWebUIChannel_PortFallback(t *testing.T) {
	b := bus.NewMessageBus(10)

	ch, _ := NewWebUIChannel(config.WebUIConfig{Port: 9001}, config.GatewayConfig{Port: 9002}, b)
	if ch.port != 9001 {
		t.Errorf("channel port should win, got %d", ch.port)
	}

	ch, _ = NewWebUIChannel(config.WebUIConfig{}, config.GatewayConfig{Port: 9002}, b)
	if ch.port != 9002 {
		t.Errorf("gateway port should be the fallback, got %d", ch.port)
	}
}

func TestWebUIChannel_SendUnknownClient(t *testing.T) {
	b := bus.NewMessageBus(10)
	ch, _ := NewWebUIChannel(config.WebUIConfig{}, config.GatewayConfig{}, b)

	err := ch.Send(bus.OutboundMessage{ChatID: "webui-gone", Content: "hello"})
	if err == nil || !strings.Contains(err.Error(), "not connected") {
		t.Errorf("err = %v, want not-connected error", err)
	}
}

func TestWebUIChannel_WebSocketRoundTrip(t *testing.T) {
	b := bus.NewMessageBus(10)
	ch, _ := NewWebUIChannel(config.WebUIConfig{}, config.GatewayConfig{}, b)

	srv := httptest.NewServer(http.HandlerFunc(ch.handleWS))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	payload, _ := json.Marshal(wsMessage{Type: "message", Content: "how's business?"})
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	var inbound bus.InboundMessage
	select {
	case inbound = <-b.Inbound():
	case <-time.After(2 * time.Second):
		t.Fatal("inbound message never arrived")
	}
	if inbound.Content != "how's business?" {
		t.Errorf("content = %q", inbound.Content)
	}
	if !strings.HasPrefix(inbound.ChatID, "webui-") {
		t.Errorf("chat id = %q, want webui- prefix", inbound.ChatID)
	}

	// Reply back over the same connection.
	if err := ch.Send(bus.OutboundMessage{ChatID: inbound.ChatID, Content: "Revenue is up."}); err != nil {
		t.Fatalf("send: %v", err)
	}
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got wsMessage
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Type != "message" || got.Content != "Revenue is up." {
		t.Errorf("reply = %+v", got)
	}
}

func TestWebUIChannel_SessionEndedSendsEndFrame(t *testing.T) {
	b := bus.NewMessageBus(10)
	ch, _ := NewWebUIChannel(config.WebUIConfig{}, config.GatewayConfig{}, b)

	srv := httptest.NewServer(http.HandlerFunc(ch.handleWS))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	payload, _ := json.Marshal(wsMessage{Type: "message", Content: "bye"})
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		t.Fatal(err)
	}
	var inbound bus.InboundMessage
	select {
	case inbound = <-b.Inbound():
	case <-time.After(2 * time.Second):
		t.Fatal("inbound message never arrived")
	}

	if err := ch.Send(bus.OutboundMessage{
		ChatID:       inbound.ChatID,
		Content:      "Bye! Take care.",
		SessionEnded: true,
	}); err != nil {
		t.Fatal(err)
	}

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var first wsMessage
	json.Unmarshal(data, &first)
	if first.Type != "message" {
		t.Errorf("first frame = %+v", first)
	}

	_, data, err = conn.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var second wsMessage
	json.Unmarshal(data, &second)
	if second.Type != "end" {
		t.Errorf("second frame = %+v, want end", second)
	}
}
