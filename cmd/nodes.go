package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"racectl/internal/topology"

	"github.com/spf13/cobra"
)

// parseNodeCount parses BUCKET-ROLE=COUNT[:BOOTSTRAP], for example
// "linux-x86_64-client=10:2" or "android-arm64-client=4".
func parseNodeCount(s string) (topology.NodeCount, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return topology.NodeCount{}, fmt.Errorf("invalid node count %q: expected BUCKET-ROLE=COUNT[:BOOTSTRAP]", s)
	}
	i := strings.LastIndex(key, "-")
	if i < 0 {
		return topology.NodeCount{}, fmt.Errorf("invalid node count %q: missing role", s)
	}
	ib, err := topology.ParseInstanceBucket(key[:i])
	if err != nil {
		return topology.NodeCount{}, fmt.Errorf("invalid node count %q: %w", s, err)
	}
	role := topology.Role(key[i+1:])

	countStr, bootstrapStr, hasBootstrap := strings.Cut(value, ":")
	count, err := strconv.Atoi(countStr)
	if err != nil {
		return topology.NodeCount{}, fmt.Errorf("invalid node count %q: %w", s, err)
	}
	nc := topology.NodeCount{
		Bucket: topology.Bucket{InstanceBucket: ib, Role: role},
		Count:  count,
	}
	if hasBootstrap {
		if nc.Bootstrap, err = strconv.Atoi(bootstrapStr); err != nil {
			return topology.NodeCount{}, fmt.Errorf("invalid bootstrap count %q: %w", s, err)
		}
	}
	return nc, nil
}

// parseRequirements builds validated requirements from --node values.
func parseRequirements(values []string) (topology.Requirements, error) {
	if len(values) == 0 {
		return topology.Requirements{}, fmt.Errorf("at least one --node is required")
	}
	var req topology.Requirements
	for _, v := range values {
		nc, err := parseNodeCount(v)
		if err != nil {
			return topology.Requirements{}, err
		}
		req.Nodes = append(req.Nodes, nc)
	}
	return req, req.Validate()
}

func addNodeFlags(cmd *cobra.Command, nodes *[]string, colocate *bool) {
	cmd.Flags().StringArrayVar(nodes, "node", nil,
		"Persona count as BUCKET-ROLE=COUNT[:BOOTSTRAP], e.g. linux-x86_64-client=10:2 (repeatable)")
	cmd.Flags().BoolVar(colocate, "colocate", false, "Let linux clients and servers share hosts")
	_ = cmd.RegisterFlagCompletionFunc("node", completeNodeCounts)
}

// completeNodeCounts offers every bucket and role combination.
func completeNodeCounts(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, ib := range topology.InstanceBuckets() {
		for _, role := range []topology.Role{topology.RoleClient, topology.RoleServer} {
			out = append(out, topology.Bucket{InstanceBucket: ib, Role: role}.String()+"=")
		}
	}
	return out, cobra.ShellCompDirectiveNoSpace
}
