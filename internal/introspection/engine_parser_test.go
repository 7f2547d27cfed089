package introspection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEngine(t *testing.T) {
	tests := []struct {
		name       string
		engine     string
		engineFull string
		wantFamily string
		wantRepl   bool
		wantParams []string
		wantErr    bool
	}{
		{
			name:       "plain MergeTree",
			engine:     "MergeTree",
			engineFull: "MergeTree ORDER BY id SETTINGS index_granularity = 8192",
			wantFamily: "MergeTree",
		},
		{
			name:       "ReplacingMergeTree with version column",
			engine:     "ReplacingMergeTree",
			engineFull: "ReplacingMergeTree(version) ORDER BY id",
			wantFamily: "MergeTree",
			wantParams: []string{"version"},
		},
		{
			name:       "ReplicatedMergeTree with quoted params",
			engine:     "ReplicatedMergeTree",
			engineFull: "ReplicatedMergeTree('/clickhouse/tables/{shard}/events', '{replica}') PARTITION BY toYYYYMM(ts) ORDER BY id",
			wantFamily: "MergeTree",
			wantRepl:   true,
			wantParams: []string{"/clickhouse/tables/{shard}/events", "{replica}"},
		},
		{
			name:       "SummingMergeTree with column tuple",
			engine:     "SummingMergeTree",
			engineFull: "SummingMergeTree((impressions, clicks)) ORDER BY (date, site)",
			wantFamily: "MergeTree",
			wantParams: []string{"(impressions, clicks)"},
		},
		{
			name:       "CollapsingMergeTree",
			engine:     "CollapsingMergeTree",
			engineFull: "CollapsingMergeTree(sign) ORDER BY id",
			wantFamily: "MergeTree",
			wantParams: []string{"sign"},
		},
		{
			name:       "Distributed with sharding key",
			engine:     "Distributed",
			engineFull: "Distributed(events_cluster, analytics, events_local, rand())",
			wantFamily: "Distributed",
			wantParams: []string{"events_cluster", "analytics", "events_local", "rand()"},
		},
		{
			name:       "Distributed missing params",
			engine:     "Distributed",
			engineFull: "Distributed(cluster)",
			wantErr:    true,
		},
		{
			name:       "Log engine",
			engine:     "Log",
			engineFull: "Log",
			wantFamily: "Log",
		},
		{
			name:       "TinyLog maps to Log family",
			engine:     "TinyLog",
			engineFull: "TinyLog",
			wantFamily: "Log",
		},
		{
			name:       "Kafka with quoted broker list",
			engine:     "Kafka",
			engineFull: "Kafka('broker1:9092,broker2:9092', 'events', 'group1', 'JSONEachRow')",
			wantFamily: "Kafka",
			wantParams: []string{"broker1:9092,broker2:9092", "events", "group1", "JSONEachRow"},
		},
		{
			name:       "MaterializedView",
			engine:     "MaterializedView",
			engineFull: "MaterializedView",
			wantFamily: "MaterializedView",
		},
		{
			name:    "unsupported engine",
			engine:  "EmbeddedRocksDB",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseEngine(tt.engine, tt.engineFull)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.engine, parsed.Name)
			assert.Equal(t, tt.wantFamily, parsed.Family)
			assert.Equal(t, tt.wantRepl, parsed.Replicated)
			assert.Equal(t, tt.wantParams, parsed.Params)
		})
	}
}

func TestExtractDeclaration(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ReplacingMergeTree(version) ORDER BY id SETTINGS index_granularity = 8192", "ReplacingMergeTree(version)"},
		{"MergeTree PARTITION BY toYYYYMM(ts) ORDER BY id", "MergeTree"},
		{"MergeTree ORDER BY id TTL ts + INTERVAL 30 DAY", "MergeTree"},
		{"Log", "Log"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractDeclaration(tt.in), "input %q", tt.in)
	}
}

func TestSupportedEngine(t *testing.T) {
	assert.True(t, SupportedEngine("MergeTree"))
	assert.True(t, SupportedEngine("Log"))
	assert.False(t, SupportedEngine("Memory"))
	assert.False(t, SupportedEngine(""))
}
