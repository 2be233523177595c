package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var serverFlags = []string{"-a", "-d", "-issue-token", "--issue-token"}

func TestFilterArgs(t *testing.T) {
	cases := map[string]struct {
		args []string
		want []string
	}{
		"keeps known flag and its value": {
			args: []string{"-a", ":6000", "--store", "redis"},
			want: []string{"-a", ":6000"},
		},
		"equals form": {
			args: []string{"--issue-token=nurse-1", "--db", "x.db"},
			want: []string{"--issue-token=nurse-1"},
		},
		"value never taken from next flag": {
			args: []string{"-d", "-a", ":7000"},
			want: []string{"-d", "-a", ":7000"},
		},
		"empty value is consumed": {
			args: []string{"-d", "", "-a", ":7000"},
			want: []string{"-d", "", "-a", ":7000"},
		},
		"unknown equals flag dropped": {
			args: []string{"--log-level=debug", "positional"},
			want: []string{},
		},
		"nothing in": {
			args: nil,
			want: []string{},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, FilterArgs(tc.args, serverFlags))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	assert.Equal(t, "server.json", ConfigFileFlag([]string{"-a", ":1", "-c", "server.json"}))
	assert.Equal(t, "alt.json", ConfigFileFlag([]string{"--config=alt.json"}))
	assert.Equal(t, "long.json", ConfigFileFlag([]string{"-config", "long.json", "-d", "dsn"}))
	assert.Equal(t, "", ConfigFileFlag([]string{"-a", ":1"}))
	assert.Equal(t, "", ConfigFileFlag(nil))
}
