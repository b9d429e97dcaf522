package mqttctrl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Agrid-Dev/thermoprops/internal/ports"
	"github.com/Agrid-Dev/thermoprops/internal/saturation"
	"github.com/Agrid-Dev/thermoprops/pkg/api"
)

const (
	statusOnline  = "online"
	statusOffline = "offline"
)

type Config struct {
	// Identity
	InstanceID string

	// MQTT connection
	BrokerURL string
	ClientID  string

	// Topics
	BaseTopic string

	QoS byte

	Username string
	Password string
}

type Controller struct {
	svc ports.PropertiesService
	cfg Config
	log *slog.Logger

	ctx    context.Context
	client mqtt.Client
}

func New(svc ports.PropertiesService, cfg Config, logger *slog.Logger) (*Controller, error) {
	if cfg.BrokerURL == "" {
		cfg.BrokerURL = "tcp://localhost:1883"
	}
	if cfg.InstanceID == "" {
		return nil, errors.New("mqtt: InstanceID is required")
	}
	if cfg.BaseTopic == "" {
		cfg.BaseTopic = "thermoprops/" + cfg.InstanceID
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "thermoprops-" + cfg.InstanceID
	}
	if cfg.QoS > 1 {
		return nil, errors.New("mqtt: QoS must be 0 or 1")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		svc: svc,
		cfg: cfg,
		log: logger.With("controller", "mqtt"),
		ctx: context.Background(),
	}, nil
}

func (c *Controller) Run(ctx context.Context) error {
	c.ctx = ctx

	opts := mqtt.NewClientOptions().
		AddBroker(c.cfg.BrokerURL).
		SetClientID(c.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2*time.Second).
		SetWill(c.topic("status"), statusOffline, c.cfg.QoS, true)

	if c.cfg.Username != "" {
		opts.SetUsername(c.cfg.Username)
		opts.SetPassword(c.cfg.Password)
	}

	// Subscribe when connected/reconnected.
	opts.OnConnect = func(cl mqtt.Client) {
		token := cl.Subscribe(c.topic("query/+"), c.cfg.QoS, c.onMessage)
		token.Wait()
		if err := token.Error(); err != nil {
			c.log.Error("subscribe failed", "err", err)
			return
		}
		cl.Publish(c.topic("status"), c.cfg.QoS, true, statusOnline)
	}

	c.client = mqtt.NewClient(opts)
	tok := c.client.Connect()
	tok.Wait()
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	c.log.Info("mqtt controller connected", "broker", c.cfg.BrokerURL, "base_topic", c.cfg.BaseTopic)

	<-ctx.Done()
	c.client.Publish(c.topic("status"), c.cfg.QoS, true, statusOffline).WaitTimeout(time.Second)
	c.client.Disconnect(250)
	return ctx.Err()
}

// Query payload format: {"pressurePa": 101325}
type queryReq struct {
	PressurePa *float64 `json:"pressurePa"`
}

// errorReply is published instead of the properties when a query fails.
// Status uses the HTTP codes of the equivalent REST call.
type errorReply struct {
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func (c *Controller) onMessage(_ mqtt.Client, msg mqtt.Message) {
	// topic format: <base>/query/<correlation id>
	t := msg.Topic()
	prefix := strings.TrimRight(c.cfg.BaseTopic, "/") + "/query/"
	if !strings.HasPrefix(t, prefix) {
		return
	}
	id := strings.TrimPrefix(t, prefix)
	if id == "" || strings.Contains(id, "/") {
		return
	}

	pa, err := decodeQueryStrict(msg.Payload())
	if err != nil {
		c.reply(id, errorReply{Status: http.StatusBadRequest, Detail: err.Error()})
		return
	}

	props, err := c.svc.Properties(c.ctx, pa)
	if err != nil {
		c.reply(id, c.toErrorReply(err))
		return
	}
	c.reply(id, api.FromProperties(props))
}

func (c *Controller) toErrorReply(err error) errorReply {
	var oor *saturation.OutOfRangeError
	switch {
	case errors.Is(err, saturation.ErrInvalidPressure):
		return errorReply{Status: http.StatusBadRequest, Detail: err.Error()}
	case errors.As(err, &oor):
		return errorReply{Status: http.StatusUnprocessableEntity, Detail: oor.Error()}
	default:
		c.log.Error("lookup failed", "err", err)
		return errorReply{Status: http.StatusInternalServerError, Detail: "internal server error"}
	}
}

func (c *Controller) reply(id string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		c.log.Error("encode reply", "err", err)
		return
	}
	c.client.Publish(c.topic("reply/"+id), c.cfg.QoS, false, b)
}

func (c *Controller) topic(suffix string) string {
	return strings.TrimRight(c.cfg.BaseTopic, "/") + "/" + suffix
}

func decodeQueryStrict(b []byte) (float64, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var req queryReq
	if err := dec.Decode(&req); err != nil {
		return 0, fmt.Errorf("invalid json: %w", err)
	}
	if req.PressurePa == nil {
		return 0, errors.New("missing field 'pressurePa'")
	}
	return *req.PressurePa, nil
}
