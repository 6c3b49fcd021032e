package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenhouse-http-service/models"
)

func TestCreateTopicValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTopicService(db, testConfig())

	company := seedCompany(t, db, "GH001")
	manager := seedUser(t, db, company.ID, models.RoleManager, "manager@gh001.test")
	device := seedDevice(t, db, company.ID, "DEV001")
	zone := seedZone(t, db, device.ID, "seedling-bay")

	scope := scopeFor(manager)

	// Direction defaults to subscribe.
	topic := &models.Topic{ZoneID: zone.ID, TopicPath: "gh/seedling/temp", QoS: 1}
	require.NoError(t, svc.CreateTopic(scope, topic))
	assert.Equal(t, models.DirectionSubscribe, topic.Direction)
	assert.True(t, topic.IsActive)

	// Unknown direction is rejected.
	err := svc.CreateTopic(scope, &models.Topic{
		ZoneID: zone.ID, TopicPath: "gh/seedling/vents", Direction: "bidirectional",
	})
	assert.ErrorIs(t, err, ErrValidation)

	// QoS outside 0..2 is rejected.
	err = svc.CreateTopic(scope, &models.Topic{
		ZoneID: zone.ID, TopicPath: "gh/seedling/co2", QoS: 3,
	})
	assert.ErrorIs(t, err, ErrValidation)

	// Duplicate path inside the same zone is a conflict.
	err = svc.CreateTopic(scope, &models.Topic{
		ZoneID: zone.ID, TopicPath: "gh/seedling/temp",
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGetTopicsForZoneActiveFilter(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTopicService(db, testConfig())

	company := seedCompany(t, db, "GH001")
	manager := seedUser(t, db, company.ID, models.RoleManager, "manager@gh001.test")
	device := seedDevice(t, db, company.ID, "DEV001")
	zone := seedZone(t, db, device.ID, "seedling-bay")

	scope := scopeFor(manager)

	temp := &models.Topic{ZoneID: zone.ID, TopicPath: "gh/seedling/temp"}
	vents := &models.Topic{ZoneID: zone.ID, TopicPath: "gh/seedling/vents", Direction: models.DirectionPublish}
	require.NoError(t, svc.CreateTopic(scope, temp))
	require.NoError(t, svc.CreateTopic(scope, vents))

	_, err := svc.SetTopicActive(scope, vents.ID, false)
	require.NoError(t, err)

	all, err := svc.GetTopicsForZone(scope, zone.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.GetTopicsForZone(scope, zone.ID, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, temp.ID, active[0].ID)

	// Toggling back restores it.
	_, err = svc.SetTopicActive(scope, vents.ID, true)
	require.NoError(t, err)
	active, err = svc.GetTopicsForZone(scope, zone.ID, true)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestUpdateTopicAcceptsDecodedJSONQoS(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTopicService(db, testConfig())

	company := seedCompany(t, db, "GH001")
	manager := seedUser(t, db, company.ID, models.RoleManager, "manager@gh001.test")
	device := seedDevice(t, db, company.ID, "DEV001")
	zone := seedZone(t, db, device.ID, "seedling-bay")

	scope := scopeFor(manager)
	topic := &models.Topic{ZoneID: zone.ID, TopicPath: "gh/seedling/temp", QoS: 0}
	require.NoError(t, svc.CreateTopic(scope, topic))

	// Request bodies arrive as map[string]interface{}, where
	// encoding/json turns numbers into float64.
	var updates map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"qos": 2}`), &updates))

	updated, err := svc.UpdateTopic(scope, topic.ID, updates)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.QoS)

	require.NoError(t, json.Unmarshal([]byte(`{"qos": 3}`), &updates))
	_, err = svc.UpdateTopic(scope, topic.ID, updates)
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, json.Unmarshal([]byte(`{"qos": 1.5}`), &updates))
	_, err = svc.UpdateTopic(scope, topic.ID, updates)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTopicVisibilityFollowsDeviceCompany(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTopicService(db, testConfig())

	companyA := seedCompany(t, db, "GH001")
	companyB := seedCompany(t, db, "GH002")
	managerA := seedUser(t, db, companyA.ID, models.RoleManager, "manager@gh001.test")
	managerB := seedUser(t, db, companyB.ID, models.RoleManager, "manager@gh002.test")
	device := seedDevice(t, db, companyA.ID, "DEV001")
	zone := seedZone(t, db, device.ID, "seedling-bay")

	topic := &models.Topic{ZoneID: zone.ID, TopicPath: "gh/seedling/temp"}
	require.NoError(t, svc.CreateTopic(scopeFor(managerA), topic))

	_, err := svc.GetTopicByID(scopeFor(managerB), topic.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetTopicsForZone(scopeFor(managerB), zone.ID, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTopicNeverMovesZones(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTopicService(db, testConfig())

	company := seedCompany(t, db, "GH001")
	manager := seedUser(t, db, company.ID, models.RoleManager, "manager@gh001.test")
	device := seedDevice(t, db, company.ID, "DEV001")
	zoneA := seedZone(t, db, device.ID, "seedling-bay")
	zoneB := seedZone(t, db, device.ID, "vine-row")

	scope := scopeFor(manager)
	topic := &models.Topic{ZoneID: zoneA.ID, TopicPath: "gh/seedling/temp"}
	require.NoError(t, svc.CreateTopic(scope, topic))

	updated, err := svc.UpdateTopic(scope, topic.ID, map[string]interface{}{
		"zone_id":     zoneB.ID,
		"description": "ambient readings",
	})
	require.NoError(t, err)
	assert.Equal(t, zoneA.ID, updated.ZoneID)
	assert.Equal(t, "ambient readings", updated.Description)
}
