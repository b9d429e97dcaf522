package mqttctrl

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Agrid-Dev/thermoprops/internal/saturation"
	"github.com/Agrid-Dev/thermoprops/internal/testutil"
	"github.com/Agrid-Dev/thermoprops/pkg/api"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type fakeToken struct {
	err error
}

func (t fakeToken) Done() <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}

func (t fakeToken) Wait() bool                       { return true }
func (t fakeToken) WaitTimeout(_ time.Duration) bool { return true }
func (t fakeToken) Error() error                     { return t.err }

type publishCall struct {
	topic   string
	qos     byte
	retain  bool
	payload []byte
}

type fakeClient struct {
	mu        sync.Mutex
	publishes []publishCall
}

func (c *fakeClient) IsConnected() bool      { return true }
func (c *fakeClient) IsConnectionOpen() bool { return true }
func (c *fakeClient) Connect() mqtt.Token    { return fakeToken{} }
func (c *fakeClient) Disconnect(_ uint)      {}
func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	var b []byte
	switch v := payload.(type) {
	case []byte:
		b = append([]byte(nil), v...)
	case string:
		b = []byte(v)
	default:
		tmp, _ := json.Marshal(v)
		b = tmp
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publishes = append(c.publishes, publishCall{
		topic: topic, qos: qos, retain: retained, payload: b,
	})
	return fakeToken{}
}
func (c *fakeClient) Subscribe(_ string, _ byte, _ mqtt.MessageHandler) mqtt.Token {
	return fakeToken{}
}
func (c *fakeClient) SubscribeMultiple(_ map[string]byte, _ mqtt.MessageHandler) mqtt.Token {
	return fakeToken{}
}
func (c *fakeClient) Unsubscribe(_ ...string) mqtt.Token       { return fakeToken{} }
func (c *fakeClient) AddRoute(_ string, _ mqtt.MessageHandler) {}
func (c *fakeClient) OptionsReader() mqtt.ClientOptionsReader  { return mqtt.ClientOptionsReader{} }

// ---- tests ----

func newTestController(t *testing.T, cfg Config) (*Controller, *testutil.FakePropertiesService, *fakeClient) {
	t.Helper()
	svc := testutil.NewFakePropertiesService()
	if cfg.InstanceID == "" {
		cfg.InstanceID = "lab1"
	}
	c, err := New(svc, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	fc := &fakeClient{}
	c.client = fc
	return c, svc, fc
}

func onlyPublish(t *testing.T, fc *fakeClient) publishCall {
	t.Helper()
	if len(fc.publishes) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(fc.publishes))
	}
	return fc.publishes[0]
}

func TestNewDefaults(t *testing.T) {
	c, err := New(testutil.NewFakePropertiesService(), Config{InstanceID: "lab1"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if c.cfg.BrokerURL != "tcp://localhost:1883" {
		t.Fatalf("expected default BrokerURL, got %q", c.cfg.BrokerURL)
	}
	if c.cfg.BaseTopic != "thermoprops/lab1" {
		t.Fatalf("expected default BaseTopic, got %q", c.cfg.BaseTopic)
	}
	if c.cfg.ClientID != "thermoprops-lab1" {
		t.Fatalf("expected default ClientID, got %q", c.cfg.ClientID)
	}
}

func TestNewValidation(t *testing.T) {
	svc := testutil.NewFakePropertiesService()

	if _, err := New(svc, Config{}, nil); err == nil {
		t.Fatal("expected error when InstanceID missing")
	}
	if _, err := New(svc, Config{InstanceID: "x", QoS: 2}, nil); err == nil {
		t.Fatal("expected error when QoS > 1")
	}
}

func TestTopicJoin(t *testing.T) {
	c, _, _ := newTestController(t, Config{BaseTopic: "thermoprops/lab1/"})
	if got := c.topic("reply/42"); got != "thermoprops/lab1/reply/42" {
		t.Fatalf("expected topic without double slashes, got %q", got)
	}
}

func TestDecodeQueryStrict(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		v, err := decodeQueryStrict([]byte(`{"pressurePa": 101325}`))
		if err != nil {
			t.Fatal(err)
		}
		if v != 101325 {
			t.Fatalf("expected 101325, got %v", v)
		}
	})

	t.Run("missing value", func(t *testing.T) {
		if _, err := decodeQueryStrict([]byte(`{}`)); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		if _, err := decodeQueryStrict([]byte(`{"pressurePa":1,"extra":1}`)); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		if _, err := decodeQueryStrict([]byte(`{"pressurePa":"high"}`)); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := decodeQueryStrict([]byte(`{"pressurePa":`)); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestOnMessage_IgnoresWrongPrefix(t *testing.T) {
	c, svc, fc := newTestController(t, Config{})

	c.onMessage(nil, fakeMessage{
		topic:   "otherprefix/query/1",
		payload: []byte(`{"pressurePa":101325}`),
	})
	c.onMessage(nil, fakeMessage{
		topic:   "thermoprops/lab1/query/",
		payload: []byte(`{"pressurePa":101325}`),
	})

	if svc.CallCount() != 0 || len(fc.publishes) != 0 {
		t.Fatalf("expected message ignored, got %d calls %d publishes", svc.CallCount(), len(fc.publishes))
	}
}

func TestOnMessage_RepliesWithProperties(t *testing.T) {
	c, svc, fc := newTestController(t, Config{QoS: 1})

	c.onMessage(nil, fakeMessage{
		topic:   "thermoprops/lab1/query/req-7",
		payload: []byte(`{"pressurePa":101325}`),
	})

	if len(svc.Calls) != 1 || svc.Calls[0] != 101325 {
		t.Fatalf("expected lookup at 101325, got %v", svc.Calls)
	}
	p := onlyPublish(t, fc)
	if p.topic != "thermoprops/lab1/reply/req-7" {
		t.Fatalf("expected reply topic, got %q", p.topic)
	}
	if p.qos != 1 || p.retain {
		t.Fatalf("expected qos=1 retain=false, got qos=%d retain=%v", p.qos, p.retain)
	}

	var got api.PropertiesV1
	if err := json.Unmarshal(p.payload, &got); err != nil {
		t.Fatalf("invalid published json: %v payload=%s", err, string(p.payload))
	}
	if got.Pressure != 101325 || got.Temperature != svc.P.Temperature {
		t.Fatalf("unexpected reply %+v", got)
	}
}

func TestOnMessage_ErrorReplies(t *testing.T) {
	cases := []struct {
		name       string
		payload    string
		svcErr     error
		wantStatus int
		wantCalls  int
	}{
		{"malformed", `{"pressurePa":`, nil, 400, 0},
		{"missing field", `{"pressure":1}`, nil, 400, 0},
		{"invalid pressure", `{"pressurePa":-1}`, saturation.ErrInvalidPressure, 400, 1},
		{"out of range", `{"pressurePa":25000000}`, &saturation.OutOfRangeError{PressurePa: 25e6}, 422, 1},
		{"unexpected", `{"pressurePa":1000}`, errors.New("boom"), 500, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, svc, fc := newTestController(t, Config{})
			svc.Err = tc.svcErr

			c.onMessage(nil, fakeMessage{topic: "thermoprops/lab1/query/x", payload: []byte(tc.payload)})

			if svc.CallCount() != tc.wantCalls {
				t.Fatalf("expected %d lookups, got %d", tc.wantCalls, svc.CallCount())
			}
			p := onlyPublish(t, fc)
			var got errorReply
			if err := json.Unmarshal(p.payload, &got); err != nil {
				t.Fatal(err)
			}
			if got.Status != tc.wantStatus || got.Detail == "" {
				t.Fatalf("unexpected error reply %+v", got)
			}
		})
	}
}

func TestOnMessage_OutOfRangeDetail(t *testing.T) {
	c, _, fc := newTestController(t, Config{})
	c.svc = saturation.NewService(nil)

	c.onMessage(nil, fakeMessage{topic: "thermoprops/lab1/query/x", payload: []byte(`{"pressurePa":25000000}`)})

	var got errorReply
	if err := json.Unmarshal(onlyPublish(t, fc).payload, &got); err != nil {
		t.Fatal(err)
	}
	if got.Detail != "Pressure 250.000 bar(abs) is outside IAPWS saturation range." {
		t.Fatalf("unexpected detail %q", got.Detail)
	}
}
