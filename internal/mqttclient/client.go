// Package mqttclient wraps paho's MQTT client with the connect/retry
// defaults zonecore's ingestion sources (passive check submission,
// serial probe forwarding) share, logging connection state transitions
// through zlog the way every other long-lived component in this core
// does.
package mqttclient

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/beaconhq/zonecore/internal/zlog"
)

var log = zlog.Component("mqttclient")

type Options struct {
	BrokerURL string
	ClientID  string
}

type Client struct {
	raw mqtt.Client
}

func New(opts Options) (*Client, error) {
	o := mqtt.NewClientOptions()
	o.AddBroker(opts.BrokerURL)
	o.SetClientID(opts.ClientID)
	o.SetConnectRetry(true)
	o.SetConnectRetryInterval(2 * time.Second)
	o.SetOnConnectHandler(func(mqtt.Client) {
		log.Notice("connected", zap.String("broker", opts.BrokerURL), zap.String("client_id", opts.ClientID))
	})
	o.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warning("connection lost, retrying", zap.String("broker", opts.BrokerURL), zap.Error(err))
	})
	o.SetReconnectingHandler(func(mqtt.Client, *mqtt.ClientOptions) {
		log.Notice("reconnecting", zap.String("broker", opts.BrokerURL))
	})
	c := mqtt.NewClient(o)

	token := c.Connect()
	if token.Wait() && token.Error() != nil {
		log.Warning("connect failed", zap.String("broker", opts.BrokerURL), zap.Error(token.Error()))
		return nil, token.Error()
	}
	return &Client{raw: c}, nil
}

func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	token := c.raw.Publish(topic, qos, retained, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		log.Warning("publish failed", zap.String("topic", topic), zap.Error(err))
		return err
	}
	return nil
}

func (c *Client) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	token := c.raw.Subscribe(topic, qos, handler)
	token.Wait()
	if err := token.Error(); err != nil {
		log.Warning("subscribe failed", zap.String("topic", topic), zap.Error(err))
		return err
	}
	log.Notice("subscribed", zap.String("topic", topic))
	return nil
}

func (c *Client) Close() {
	c.raw.Disconnect(250)
	log.Notice("disconnected")
}
