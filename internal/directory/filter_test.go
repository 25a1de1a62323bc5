package directory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"murmax-onboarding/internal/onboarding"
)

func day(s string) int64 {
	t, _ := time.Parse(time.RFC3339, s)
	return t.UnixMilli()
}

var sample = []Record{
	{ID: "Driver-1", Role: onboarding.RoleDriver, Name: "Jo Rivera", CreatedAt: day("2025-03-01T10:00:00Z")},
	{ID: "Dispatcher-2", Role: onboarding.RoleDispatcher, Company: "Acme Dispatch", CreatedAt: day("2025-03-02T23:59:00Z")},
	{ID: "Shipper-3", Role: onboarding.RoleShipper, Biz: "Gulf Foods", CreatedAt: day("2025-03-03T08:00:00Z")},
	{ID: "Broker-4", Role: onboarding.RoleBroker, MC: "567", CreatedAt: day("2025-03-04T08:00:00Z")},
}

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name                   string
		role, search, from, to string
		want                   []string
	}{
		{"all newest first", "", "", "", "", []string{"Broker-4", "Shipper-3", "Dispatcher-2", "Driver-1"}},
		{"role filter", "shipper", "", "", "", []string{"Shipper-3"}},
		{"explicit all", "All", "", "", "", []string{"Broker-4", "Shipper-3", "Dispatcher-2", "Driver-1"}},
		{"search name", "", "RIVERA", "", "", []string{"Driver-1"}},
		{"search company", "", "acme", "", "", []string{"Dispatcher-2"}},
		{"search role text", "", "broker", "", "", []string{"Broker-4"}},
		{"search id", "", "shipper-3", "", "", []string{"Shipper-3"}},
		{"to includes whole day", "", "", "", "2025-03-02", []string{"Dispatcher-2", "Driver-1"}},
		{"from", "", "", "2025-03-03", "", []string{"Broker-4", "Shipper-3"}},
		{"range", "", "", "2025-03-02", "2025-03-03", []string{"Shipper-3", "Dispatcher-2"}},
		{"no match", "driver", "acme", "", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseQuery(tt.role, tt.search, tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(Filter(sample, q)))
		})
	}
}

func TestFilter_DoesNotReorderInput(t *testing.T) {
	in := append([]Record(nil), sample...)
	_ = Filter(in, Query{})
	assert.Equal(t, sample, in)
}

func TestParseQuery_Errors(t *testing.T) {
	_, err := ParseQuery("carrier", "", "", "")
	assert.ErrorIs(t, err, onboarding.ErrUnknownRole)

	_, err = ParseQuery("", "", "03/01/2025", "")
	assert.Error(t, err)

	_, err = ParseQuery("", "", "2025-03-05", "2025-03-01")
	assert.Error(t, err)
}

func TestFind(t *testing.T) {
	rec, ok := Find(sample, "Broker-4")
	require.True(t, ok)
	assert.Equal(t, "567", rec.MC)

	_, ok = Find(sample, "missing")
	assert.False(t, ok)
}
