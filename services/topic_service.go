package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"greenhouse-http-service/config"
	"greenhouse-http-service/models"
)

// InterfaceTopicService defines the topic service interface
type InterfaceTopicService interface {
	GetTopicByID(scope *models.ActorScope, id uint) (*models.Topic, error)
	CreateTopic(scope *models.ActorScope, topic *models.Topic) error
	UpdateTopic(scope *models.ActorScope, id uint, updates map[string]interface{}) (*models.Topic, error)
	DeleteTopic(scope *models.ActorScope, id uint) error
	SetTopicActive(scope *models.ActorScope, id uint, active bool) (*models.Topic, error)
	GetTopicsForZone(scope *models.ActorScope, zoneID uint, activeOnly bool) ([]models.Topic, error)
}

// TopicService manages the MQTT channels under a zone.
type TopicService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewTopicService creates a new topic service.
func NewTopicService(db *gorm.DB, cfg *config.Config) InterfaceTopicService {
	return &TopicService{
		DB:     db,
		Config: cfg,
	}
}

// zoneAccess resolves a zone and the device owning it, checking visibility.
func (s *TopicService) zoneAccess(scope *models.ActorScope, zoneID uint) (*models.Zone, *models.Device, error) {
	var zone models.Zone
	if err := s.DB.First(&zone, zoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: zone %d", ErrNotFound, zoneID)
		}
		return nil, nil, err
	}

	var device models.Device
	if err := s.DB.First(&device, zone.DeviceID).Error; err != nil {
		return nil, nil, err
	}
	if !scope.CanViewCompany(device.CompanyID) {
		return nil, nil, fmt.Errorf("%w: zone %d", ErrNotFound, zoneID)
	}
	return &zone, &device, nil
}

// GetTopicByID fetches a topic inside the caller's visible scope.
func (s *TopicService) GetTopicByID(scope *models.ActorScope, id uint) (*models.Topic, error) {
	var topic models.Topic
	if err := s.DB.First(&topic, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: topic %d", ErrNotFound, id)
		}
		return nil, err
	}

	if _, _, err := s.zoneAccess(scope, topic.ZoneID); err != nil {
		return nil, fmt.Errorf("%w: topic %d", ErrNotFound, id)
	}
	return &topic, nil
}

// CreateTopic creates a channel under a zone the caller manages.
// topic_path must be unique within the zone.
func (s *TopicService) CreateTopic(scope *models.ActorScope, topic *models.Topic) error {
	if topic.TopicPath == "" || topic.ZoneID == 0 {
		return fmt.Errorf("%w: topic_path and zone_id are required", ErrValidation)
	}
	if topic.Direction == "" {
		topic.Direction = models.DirectionSubscribe
	}
	if !models.ValidTopicDirection(topic.Direction) {
		return fmt.Errorf("%w: unknown direction %q", ErrValidation, topic.Direction)
	}
	if topic.QoS < 0 || topic.QoS > 2 {
		return fmt.Errorf("%w: qos must be 0, 1 or 2", ErrValidation)
	}

	_, device, err := s.zoneAccess(scope, topic.ZoneID)
	if err != nil {
		return err
	}
	if !scope.CanManageCompany(device.CompanyID) {
		return fmt.Errorf("%w: zone %d is outside your scope", ErrUnauthorized, topic.ZoneID)
	}

	var count int64
	if err := s.DB.Model(&models.Topic{}).
		Where("zone_id = ? AND topic_path = ?", topic.ZoneID, topic.TopicPath).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: topic path %q already exists in zone %d", ErrConflict, topic.TopicPath, topic.ZoneID)
	}

	topic.IsActive = true
	return s.DB.Create(topic).Error
}

// UpdateTopic updates topic fields, re-validating direction, qos and
// per-zone path uniqueness.
func (s *TopicService) UpdateTopic(scope *models.ActorScope, id uint, updates map[string]interface{}) (*models.Topic, error) {
	topic, err := s.GetTopicByID(scope, id)
	if err != nil {
		return nil, err
	}

	_, device, err := s.zoneAccess(scope, topic.ZoneID)
	if err != nil {
		return nil, err
	}
	if !scope.CanManageCompany(device.CompanyID) {
		return nil, fmt.Errorf("%w: topic %d is outside your scope", ErrUnauthorized, id)
	}

	// A topic never moves between zones.
	delete(updates, "zone_id")

	if dirVal, ok := updates["direction"]; ok {
		direction := models.TopicDirection(fmt.Sprintf("%v", dirVal))
		if !models.ValidTopicDirection(direction) {
			return nil, fmt.Errorf("%w: unknown direction %q", ErrValidation, direction)
		}
		updates["direction"] = direction
	}
	if qosVal, ok := updates["qos"]; ok {
		qos, okNum := toInt(qosVal)
		if !okNum || qos < 0 || qos > 2 {
			return nil, fmt.Errorf("%w: qos must be 0, 1 or 2", ErrValidation)
		}
		updates["qos"] = qos
	}

	if topicPath, ok := updates["topic_path"].(string); ok && topicPath != topic.TopicPath {
		var count int64
		if err := s.DB.Model(&models.Topic{}).
			Where("zone_id = ? AND topic_path = ? AND id != ?", topic.ZoneID, topicPath, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: topic path %q already exists in zone %d", ErrConflict, topicPath, topic.ZoneID)
		}
	}

	if err := s.DB.Model(topic).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetTopicByID(scope, id)
}

// DeleteTopic removes a topic.
func (s *TopicService) DeleteTopic(scope *models.ActorScope, id uint) error {
	topic, err := s.GetTopicByID(scope, id)
	if err != nil {
		return err
	}

	_, device, err := s.zoneAccess(scope, topic.ZoneID)
	if err != nil {
		return err
	}
	if !scope.CanManageCompany(device.CompanyID) {
		return fmt.Errorf("%w: topic %d is outside your scope", ErrUnauthorized, id)
	}

	return s.DB.Delete(topic).Error
}

// SetTopicActive toggles a topic without touching its other fields.
func (s *TopicService) SetTopicActive(scope *models.ActorScope, id uint, active bool) (*models.Topic, error) {
	topic, err := s.GetTopicByID(scope, id)
	if err != nil {
		return nil, err
	}

	_, device, err := s.zoneAccess(scope, topic.ZoneID)
	if err != nil {
		return nil, err
	}
	if !scope.CanManageCompany(device.CompanyID) {
		return nil, fmt.Errorf("%w: topic %d is outside your scope", ErrUnauthorized, id)
	}

	if err := s.DB.Model(topic).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	return s.GetTopicByID(scope, id)
}

// GetTopicsForZone lists the topics of a zone, ordered by id.
// With activeOnly, disabled topics are filtered out.
func (s *TopicService) GetTopicsForZone(scope *models.ActorScope, zoneID uint, activeOnly bool) ([]models.Topic, error) {
	if _, _, err := s.zoneAccess(scope, zoneID); err != nil {
		return nil, err
	}

	query := s.DB.Where("zone_id = ?", zoneID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var topics []models.Topic
	if err := query.Order("id asc").Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}
