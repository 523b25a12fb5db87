package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type sample struct {
	ID   uint
	Name string
}

func TestRegisterDatabaseMetrics(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&sample{}))

	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterDatabaseMetrics(db, reg))

	require.NoError(t, db.Create(&sample{Name: "a"}).Error)
	var out []sample
	require.NoError(t, db.Find(&out).Error)

	assert.GreaterOrEqual(t, testutil.CollectAndCount(DatabaseQueryLatency), 2)
	assert.Len(t, out, 1)

	count, err := testutil.GatherAndCount(reg, "go_sql_max_open_connections")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecordCacheLookup(t *testing.T) {
	RecordCacheLookup("user", true)
	RecordCacheLookup("user", false)
	RecordCacheLookup("user", false)

	assert.GreaterOrEqual(t, testutil.ToFloat64(CacheLookups.WithLabelValues("user", "miss")), 2.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(CacheLookups.WithLabelValues("user", "hit")), 1.0)
}

func TestRecordEvent(t *testing.T) {
	start := testutil.ToFloat64(SocialEvents.WithLabelValues("follow"))
	RecordEvent("follow")
	assert.Equal(t, start+1, testutil.ToFloat64(SocialEvents.WithLabelValues("follow")))
}
