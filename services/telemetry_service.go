package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"greenhouse-http-service/config"
	"greenhouse-http-service/models"
)

// InterfaceTelemetryService defines the telemetry ingester interface
type InterfaceTelemetryService interface {
	Connect() error
	Disconnect()
	SubscribeToTopics() error
	StartOfflineSweeper(interval time.Duration) chan<- struct{}
	RecordHeartbeat(companyID uint, deviceNumber string, report *DeviceReport) error
	PublishSystemMessage(level, message string) error
}

// Status topic pattern devices report under: company/<id>/device/<number>/status.
const (
	topicDeviceStatus  = "company/+/device/+/status"
	topicSystemMessage = "greenhouse/system"
)

// DeviceReport is the payload a device publishes on its status topic.
type DeviceReport struct {
	Status    string            `json:"status"` // "online" or "offline"
	Timestamp int64             `json:"timestamp"`
	Metrics   map[string]string `json:"metrics,omitempty"` // e.g. {"temperature": "24.5"}
}

// SystemMessage is the payload published on the system topic.
type SystemMessage struct {
	Level     string `json:"level"` // info/warning/error
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// TelemetryService is the heartbeat/telemetry ingester. It is the only
// writer of is_online/last_seen and of telemetry rows; the rest of the
// service only reads them.
type TelemetryService struct {
	DB             *gorm.DB
	Config         *config.Config
	DeviceService  InterfaceDeviceService
	Redis          InterfaceRedisService // optional status snapshot cache
	Client         mqtt.Client
	IsConnected    bool
	connectedMutex sync.RWMutex
	publishMutex   sync.Mutex
}

// NewTelemetryService creates a new telemetry ingester.
func NewTelemetryService(db *gorm.DB, cfg *config.Config, deviceService InterfaceDeviceService, redisService InterfaceRedisService) InterfaceTelemetryService {
	return &TelemetryService{
		DB:            db,
		Config:        cfg,
		DeviceService: deviceService,
		Redis:         redisService,
	}
}

// Connect dials the MQTT broker and installs the reconnect handlers.
func (s *TelemetryService) Connect() error {
	opts := mqtt.NewClientOptions().
		AddBroker(s.Config.MQTTBrokerURL).
		SetClientID(fmt.Sprintf("greenhouse-ingester-%s", uuid.NewString()[:8])).
		SetUsername(s.Config.MQTTUsername).
		SetPassword(s.Config.MQTTPassword).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)

	opts.OnConnect = func(client mqtt.Client) {
		s.setConnected(true)
		config.Info("MQTT connected to %s", s.Config.MQTTBrokerURL)
		if err := s.SubscribeToTopics(); err != nil {
			config.Error("MQTT subscribe failed: %v", err)
		}
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		s.setConnected(false)
		config.Warning("MQTT connection lost: %v", err)
	}

	s.Client = mqtt.NewClient(opts)
	token := s.Client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("timed out connecting to MQTT broker %s", s.Config.MQTTBrokerURL)
	}
	return token.Error()
}

// Disconnect closes the MQTT connection.
func (s *TelemetryService) Disconnect() {
	if s.Client != nil && s.Client.IsConnected() {
		s.Client.Disconnect(250)
	}
	s.setConnected(false)
}

func (s *TelemetryService) setConnected(v bool) {
	s.connectedMutex.Lock()
	defer s.connectedMutex.Unlock()
	s.IsConnected = v
}

// SubscribeToTopics subscribes to the device status pattern plus every
// active subscribe-direction topic registered under a zone.
func (s *TelemetryService) SubscribeToTopics() error {
	if token := s.Client.Subscribe(topicDeviceStatus, 1, s.handleStatusMessage); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	var topics []models.Topic
	if err := s.DB.Where("is_active = ? AND direction IN ?", true,
		[]models.TopicDirection{models.DirectionSubscribe, models.DirectionBoth}).
		Find(&topics).Error; err != nil {
		return err
	}
	for _, t := range topics {
		if token := s.Client.Subscribe(t.TopicPath, byte(t.QoS), s.handleZoneMessage); token.Wait() && token.Error() != nil {
			config.Warning("failed to subscribe to %s: %v", t.TopicPath, token.Error())
		}
	}
	return nil
}

// handleStatusMessage processes one heartbeat published by a device.
func (s *TelemetryService) handleStatusMessage(client mqtt.Client, msg mqtt.Message) {
	companyID, deviceNumber, ok := parseStatusTopic(msg.Topic())
	if !ok {
		config.Warning("ignoring status message on unexpected topic %s", msg.Topic())
		return
	}

	var report DeviceReport
	if err := json.Unmarshal(msg.Payload(), &report); err != nil {
		config.Warning("bad status payload on %s: %v", msg.Topic(), err)
		return
	}

	if err := s.RecordHeartbeat(companyID, deviceNumber, &report); err != nil {
		config.Error("failed to record heartbeat for %s: %v", msg.Topic(), err)
	}
}

// handleZoneMessage stores readings arriving on registered zone topics.
func (s *TelemetryService) handleZoneMessage(client mqtt.Client, msg mqtt.Message) {
	var topic models.Topic
	if err := s.DB.Where("topic_path = ? AND is_active = ?", msg.Topic(), true).First(&topic).Error; err != nil {
		return
	}

	var zone models.Zone
	if err := s.DB.First(&zone, topic.ZoneID).Error; err != nil {
		return
	}

	var metrics map[string]string
	if err := json.Unmarshal(msg.Payload(), &metrics); err != nil {
		config.Warning("bad telemetry payload on %s: %v", msg.Topic(), err)
		return
	}

	now := time.Now()
	for metric, value := range metrics {
		row := models.Telemetry{
			DeviceID:   zone.DeviceID,
			Metric:     metric,
			Value:      value,
			RecordedAt: now,
		}
		if err := s.DB.Create(&row).Error; err != nil {
			config.Error("failed to store telemetry for device %d: %v", zone.DeviceID, err)
			return
		}
	}
}

// RecordHeartbeat resolves the device by company id and device number and
// applies the reported liveness plus any attached metric readings.
func (s *TelemetryService) RecordHeartbeat(companyID uint, deviceNumber string, report *DeviceReport) error {
	var device models.Device
	if err := s.DB.Where("company_id = ? AND device_number = ?", companyID, deviceNumber).
		First(&device).Error; err != nil {
		return fmt.Errorf("unknown device %s in company %d: %w", deviceNumber, companyID, err)
	}

	at := time.Now()
	if report.Timestamp > 0 {
		at = time.UnixMilli(report.Timestamp)
	}

	if report.Status == "offline" {
		if err := s.DeviceService.MarkOffline(device.ID); err != nil {
			return err
		}
	} else {
		if err := s.DeviceService.MarkHeartbeat(device.ID, at); err != nil {
			return err
		}
	}

	for metric, value := range report.Metrics {
		row := models.Telemetry{
			DeviceID:   device.ID,
			Metric:     metric,
			Value:      value,
			RecordedAt: at,
		}
		if err := s.DB.Create(&row).Error; err != nil {
			return err
		}
	}

	if s.Redis != nil {
		snapshot := deviceStatusSnapshot{
			Status:   report.Status,
			LastSeen: at,
			Metrics:  report.Metrics,
		}
		if err := s.Redis.CacheDeviceStatus(device.ID, snapshot, s.Config.DeviceOfflineAfter); err != nil {
			config.Warning("failed to cache status for device %d: %v", device.ID, err)
		}
	}

	return nil
}

// StartOfflineSweeper periodically flags devices offline whose heartbeat
// went stale. Returns a channel that stops the sweeper when closed.
func (s *TelemetryService) StartOfflineSweeper(interval time.Duration) chan<- struct{} {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				flagged, err := s.DeviceService.SweepStaleDevices(s.Config.DeviceOfflineAfter)
				if err != nil {
					config.Error("offline sweep failed: %v", err)
				} else if flagged > 0 {
					config.Info("offline sweep flagged %d stale devices", flagged)
					notice := fmt.Sprintf("%d devices went offline after missing heartbeats", flagged)
					if err := s.PublishSystemMessage("warning", notice); err != nil {
						config.Warning("failed to publish offline notice: %v", err)
					}
				}
			case <-stop:
				return
			}
		}
	}()
	return stop
}

// PublishSystemMessage publishes an operator notice on the system topic.
func (s *TelemetryService) PublishSystemMessage(level, message string) error {
	s.publishMutex.Lock()
	defer s.publishMutex.Unlock()

	if s.Client == nil || !s.Client.IsConnected() {
		return fmt.Errorf("MQTT client is not connected")
	}

	payload, err := json.Marshal(SystemMessage{
		Level:     level,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	token := s.Client.Publish(topicSystemMessage, 1, false, payload)
	token.Wait()
	return token.Error()
}

// parseStatusTopic extracts company id and device number from
// company/<id>/device/<number>/status.
func parseStatusTopic(topic string) (uint, string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 5 || parts[0] != "company" || parts[2] != "device" || parts[4] != "status" {
		return 0, "", false
	}
	companyID, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, "", false
	}
	return uint(companyID), parts[3], true
}
