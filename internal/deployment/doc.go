// Package deployment manages the persisted records racectl operates on.
//
// An Environment is a named set of hosts (local docker or an AWS stack)
// with a host topology. A Deployment is a RACE network placed on one
// environment: its Settings are fixed at creation and stamped with the tool
// version, its Metadata records the last lifecycle operations, and its
// node distribution is computed once at creation and stored next to the
// record.
//
// Records are YAML documents kept by config.Storage under the data
// directory:
//
//	{dataDir}/environments/{name}.yaml
//	{dataDir}/deployments/{name}.yaml
//	{dataDir}/deployments/{name}/node-distribution.yaml
//	{dataDir}/deployments/{name}/active-operation
//
// The active-operation marker serializes lifecycle operations against one
// deployment across processes.
package deployment
