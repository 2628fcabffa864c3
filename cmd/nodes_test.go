package cmd

import (
	"testing"

	"racectl/internal/topology"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNodeCount(t *testing.T) {
	linux := topology.InstanceBucket{Platform: topology.PlatformLinux, Arch: topology.ArchX86_64}
	gpu := topology.InstanceBucket{Platform: topology.PlatformLinux, GPU: true, Arch: topology.ArchArm64}

	tests := []struct {
		input   string
		want    topology.NodeCount
		wantErr string
	}{
		{
			input: "linux-x86_64-client=10:2",
			want: topology.NodeCount{
				Bucket:    topology.Bucket{InstanceBucket: linux, Role: topology.RoleClient},
				Count:     10,
				Bootstrap: 2,
			},
		},
		{
			input: "linux-gpu-arm64-server=3",
			want: topology.NodeCount{
				Bucket: topology.Bucket{InstanceBucket: gpu, Role: topology.RoleServer},
				Count:  3,
			},
		},
		{input: "linux-x86_64-client", wantErr: "expected BUCKET-ROLE=COUNT"},
		{input: "client=3", wantErr: "missing role"},
		{input: "solaris-sparc-client=3", wantErr: "unknown instance bucket"},
		{input: "linux-x86_64-client=many", wantErr: "invalid node count"},
		{input: "linux-x86_64-client=4:x", wantErr: "invalid bootstrap count"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseNodeCount(tt.input)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRequirements(t *testing.T) {
	_, err := parseRequirements(nil)
	assert.ErrorContains(t, err, "at least one --node")

	_, err = parseRequirements([]string{"linux-x86_64-server=2:1"})
	assert.ErrorContains(t, err, "only clients can bootstrap")

	req, err := parseRequirements([]string{"linux-x86_64-client=4", "android-arm64-client=2"})
	require.NoError(t, err)
	assert.Len(t, req.Nodes, 2)
}
