package location

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/tilequery-overlay/internal/config"
	"github.com/tilequery-overlay/internal/usecase"
	"github.com/tilequery-overlay/internal/worker"
	"go.uber.org/zap"
)

const (
	mqttConnectTimeout = 10 * time.Second
	mqttDisconnectWait = 250 // ms
)

// MQTTFixWorker принимает позиции устройств из MQTT топика
type MQTTFixWorker struct {
	*worker.BaseWorker
	client mqtt.Client
	topic  string
	qos    byte
	sink   FixSink
	now    func() time.Time
}

// NewMQTTClientOptions собирает опции paho из конфигурации
func NewMQTTClientOptions(cfg *config.MQTTConfig, logger *zap.Logger) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(mqttConnectTimeout).
		SetCleanSession(true).
		SetOrderMatters(true)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", zap.Error(err))
	})

	return opts
}

// NewMQTTFixWorker создает воркер. Подписка восстанавливается при каждом (пере)подключении.
func NewMQTTFixWorker(cfg *config.MQTTConfig, sink FixSink, logger *zap.Logger) *MQTTFixWorker {
	w := &MQTTFixWorker{
		BaseWorker: worker.NewBaseWorker("location-fix-mqtt", "", logger),
		topic:      cfg.Topic,
		qos:        byte(cfg.QoS),
		sink:       sink,
		now:        time.Now,
	}

	opts := NewMQTTClientOptions(cfg, w.Logger())
	opts.SetOnConnectHandler(w.subscribe)
	w.client = mqtt.NewClient(opts)

	return w
}

// Start подключается к брокеру и ждёт остановки
func (w *MQTTFixWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting MQTTFixWorker", zap.String("topic", w.topic))

	token := w.client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return fmt.Errorf("mqtt connect timed out after %v", mqttConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to mqtt broker: %w", err)
	}

	select {
	case <-w.StopChan():
	case <-ctx.Done():
	}

	if token := w.client.Unsubscribe(w.topic); token.WaitTimeout(time.Second) && token.Error() != nil {
		logger.Warn("Failed to unsubscribe", zap.Error(token.Error()))
	}
	w.client.Disconnect(mqttDisconnectWait)
	logger.Info("Worker stopped")

	return nil
}

func (w *MQTTFixWorker) subscribe(c mqtt.Client) {
	token := c.Subscribe(w.topic, w.qos, w.onMessage)
	if !token.WaitTimeout(mqttConnectTimeout) || token.Error() != nil {
		w.Logger().Error("Failed to subscribe to MQTT topic",
			zap.String("topic", w.topic),
			zap.Error(token.Error()))
		return
	}
	w.Logger().Info("Subscribed to MQTT topic", zap.String("topic", w.topic))
}

func (w *MQTTFixWorker) onMessage(_ mqtt.Client, msg mqtt.Message) {
	fix, err := ParseFixEvent(msg.Payload(), w.now().UTC())
	if err != nil {
		w.Logger().Warn("Failed to parse MQTT location fix, skipping",
			zap.String("topic", msg.Topic()),
			zap.Error(err))
		return
	}

	delivered := w.sink.Push(usecase.FixSourceMQTT, fix)
	w.Logger().Debug("Location fix received",
		zap.String("topic", msg.Topic()),
		zap.Bool("delivered", delivered))
}
