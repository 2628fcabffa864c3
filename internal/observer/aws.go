package observer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"racectl/internal/config"
	"racectl/internal/deployment"
	"racectl/pkg/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"golang.org/x/sync/errgroup"
)

// CloudFormationAPI is the part of the CloudFormation client AWSObserver uses.
type CloudFormationAPI interface {
	cloudformation.DescribeStacksAPIClient
}

// EC2API is the part of the EC2 client AWSObserver uses.
type EC2API interface {
	ec2.DescribeInstancesAPIClient
	ec2.DescribeVolumesAPIClient
}

// AWSObserver observes an environment provisioned as a CloudFormation stack
// of EC2 instances running docker.
type AWSObserver struct {
	stacks      CloudFormationAPI
	compute     EC2API
	dockerPort  int
	maxParallel int
	docker      *DockerObserver
}

// NewAWSObserver creates an observer on the given clients that reaches
// instance docker daemons on dockerPort.
func NewAWSObserver(stacks CloudFormationAPI, compute EC2API, dockerPort, maxParallel int, docker *DockerObserver) *AWSObserver {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &AWSObserver{
		stacks:      stacks,
		compute:     compute,
		dockerPort:  dockerPort,
		maxParallel: maxParallel,
		docker:      docker,
	}
}

// LoadAWSObserver creates an observer for env from the shared aws
// configuration. The environment's region wins over the configured one.
func LoadAWSObserver(ctx context.Context, env *deployment.Environment, cfg config.AWSConfig, dockerPort, maxParallel int, docker *DockerObserver) (*AWSObserver, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	region := cfg.Region
	if env.Region != "" {
		region = env.Region
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("environment %s: failed to load aws configuration: %w", env.Name, err)
	}
	if awsCfg.Region == "" {
		return nil, fmt.Errorf("environment %s: no aws region set (use --region, aws.region or the aws profile)", env.Name)
	}
	logging.Debug("Observer", "Observing environment %s in region %s", env.Name, awsCfg.Region)

	return NewAWSObserver(cloudformation.NewFromConfig(awsCfg), ec2.NewFromConfig(awsCfg), dockerPort, maxParallel, docker), nil
}

func (o *AWSObserver) Resources(ctx context.Context, env *deployment.Environment) (*Resources, error) {
	res := &Resources{
		Stacks:    map[string]string{},
		Instances: map[string]string{},
		Volumes:   map[string]string{},
		Daemons:   map[string]error{},
	}

	var instances []ec2types.Instance
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p := cloudformation.NewDescribeStacksPaginator(o.stacks, &cloudformation.DescribeStacksInput{
			StackName: aws.String(env.Name),
		})
		for p.HasMorePages() {
			page, err := p.NextPage(gctx)
			if isStackMissing(err) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to describe stack %s: %w", env.Name, err)
			}
			for _, s := range page.Stacks {
				res.Stacks[aws.ToString(s.StackName)] = string(s.StackStatus)
			}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		instances, err = o.instances(gctx, env, false)
		return err
	})
	g.Go(func() error {
		p := ec2.NewDescribeVolumesPaginator(o.compute, &ec2.DescribeVolumesInput{
			Filters: []ec2types.Filter{environmentFilter(env)},
		})
		for p.HasMorePages() {
			page, err := p.NextPage(gctx)
			if err != nil {
				return fmt.Errorf("failed to describe volumes of environment %s: %w", env.Name, err)
			}
			for _, v := range page.Volumes {
				res.Volumes[aws.ToString(v.VolumeId)] = string(v.State)
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var running []string
	for _, inst := range instances {
		state := instanceState(inst)
		res.Instances[aws.ToString(inst.InstanceId)] = state
		if dns := aws.ToString(inst.PublicDnsName); state == string(ec2types.InstanceStateNameRunning) && dns != "" {
			running = append(running, dns)
		}
	}

	pings := make([]error, len(running))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(o.maxParallel)
	for i, dns := range running {
		g.Go(func() error {
			pings[i] = o.docker.Ping(gctx, o.dockerHost(dns))
			return nil
		})
	}
	_ = g.Wait()
	for i, dns := range running {
		res.Daemons[dns] = pings[i]
	}

	return res, nil
}

// RuntimeInfo lists the running instances of the requested roles and the
// containers on each. A host whose daemon cannot be reached is reported with
// Unreachable set instead of failing the whole fetch.
func (o *AWSObserver) RuntimeInfo(ctx context.Context, env *deployment.Environment, roles []string) (RuntimeInfo, error) {
	instances, err := o.instances(ctx, env, true)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(roles))
	for _, role := range roles {
		wanted[role] = true
	}

	var hosts []InstanceRuntimeInfo
	for _, inst := range instances {
		tags := make(map[string]string, len(inst.Tags))
		for _, t := range inst.Tags {
			tags[aws.ToString(t.Key)] = aws.ToString(t.Value)
		}
		if !wanted[tags[TagRole]] {
			continue
		}
		hosts = append(hosts, InstanceRuntimeInfo{
			PublicDNS:  aws.ToString(inst.PublicDnsName),
			PublicIP:   aws.ToString(inst.PublicIpAddress),
			PrivateDNS: aws.ToString(inst.PrivateDnsName),
			PrivateIP:  aws.ToString(inst.PrivateIpAddress),
			Tags:       tags,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxParallel)
	for i := range hosts {
		g.Go(func() error {
			containers, err := o.docker.Containers(gctx, o.dockerHost(hosts[i].PublicDNS))
			if err != nil {
				logging.Warn("Observer", "Cannot list containers on %s: %v", hosts[i].PublicDNS, err)
				hosts[i].Unreachable = err.Error()
				return nil
			}
			hosts[i].Containers = containers
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info := make(RuntimeInfo, len(roles))
	for _, role := range roles {
		info[role] = nil
	}
	for _, h := range hosts {
		role := h.Tags[TagRole]
		info[role] = append(info[role], h)
	}
	return info, nil
}

// instances pages through every instance tagged with the environment.
func (o *AWSObserver) instances(ctx context.Context, env *deployment.Environment, runningOnly bool) ([]ec2types.Instance, error) {
	filters := []ec2types.Filter{environmentFilter(env)}
	if runningOnly {
		filters = append(filters, ec2types.Filter{
			Name:   aws.String("instance-state-name"),
			Values: []string{string(ec2types.InstanceStateNameRunning)},
		})
	}

	var instances []ec2types.Instance
	p := ec2.NewDescribeInstancesPaginator(o.compute, &ec2.DescribeInstancesInput{Filters: filters})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances of environment %s: %w", env.Name, err)
		}
		for _, r := range page.Reservations {
			instances = append(instances, r.Instances...)
		}
	}
	return instances, nil
}

func (o *AWSObserver) dockerHost(dns string) string {
	return "tcp://" + net.JoinHostPort(dns, strconv.Itoa(o.dockerPort))
}

func environmentFilter(env *deployment.Environment) ec2types.Filter {
	return ec2types.Filter{Name: aws.String("tag:" + TagEnvironment), Values: []string{env.Name}}
}

func instanceState(inst ec2types.Instance) string {
	if inst.State == nil {
		return ""
	}
	return string(inst.State.Name)
}

// isStackMissing matches the ValidationError CloudFormation returns for a
// stack name it does not know.
func isStackMissing(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) &&
		apiErr.ErrorCode() == "ValidationError" &&
		strings.Contains(apiErr.ErrorMessage(), "does not exist")
}
