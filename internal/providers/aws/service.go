package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
)

// DefaultWaitInterval is used when WaitUntilStopped is given no interval
const DefaultWaitInterval = 10 * time.Second

// waiterFailureMessage is what the SDK waiter reports on a failure state
const waiterFailureMessage = "waiter state transitioned to Failure"

// RevokeRequest describes one ingress rule to remove: a single source range
// for a protocol and port pair.
type RevokeRequest struct {
	GroupID   string
	GroupName string
	Protocol  string
	FromPort  int
	ToPort    int
	CIDR      string
	IPv6      bool
}

// Target returns the identifier used in errors and logs
func (r RevokeRequest) Target() string {
	if r.GroupID != "" {
		return r.GroupID
	}
	return r.GroupName
}

// Service performs remediation calls against EC2
type Service struct {
	client EC2ClientAPI
}

// NewServiceWithDefaultConfig creates a new Service with the default AWS SDK configuration.
// An empty region falls back to the SDK's environment resolution.
func NewServiceWithDefaultConfig(ctx context.Context, region string) (*Service, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	return NewServiceWithClient(ec2.NewFromConfig(cfg)), nil
}

// NewServiceWithClient creates a new Service with a provided client
func NewServiceWithClient(client EC2ClientAPI) *Service {
	return &Service{
		client: client,
	}
}

// RevokeIngress removes exactly one protocol/port/CIDR tuple from a security group.
// A rule that is already absent yields an ErrResourceNotFound error.
func (s *Service) RevokeIngress(ctx context.Context, req RevokeRequest) error {
	perm := types.IpPermission{
		IpProtocol: aws.String(req.Protocol),
		FromPort:   aws.Int32(int32(req.FromPort)),
		ToPort:     aws.Int32(int32(req.ToPort)),
	}
	if req.IPv6 {
		perm.Ipv6Ranges = []types.Ipv6Range{{CidrIpv6: aws.String(req.CIDR)}}
	} else {
		perm.IpRanges = []types.IpRange{{CidrIp: aws.String(req.CIDR)}}
	}

	input := &ec2.RevokeSecurityGroupIngressInput{
		IpPermissions: []types.IpPermission{perm},
	}
	if req.GroupID != "" {
		input.GroupId = aws.String(req.GroupID)
	} else {
		input.GroupName = aws.String(req.GroupName)
	}

	out, err := s.client.RevokeSecurityGroupIngress(ctx, input)
	if err != nil {
		return ClassifyAWSError(err, SecurityGroupResourceType, req.Target())
	}

	// VPC groups report rules they could not find instead of failing
	if out != nil && len(out.UnknownIpPermissions) > 0 {
		return NewAWSError(ErrResourceNotFound, SecurityGroupResourceType, req.Target(),
			"Ingress rule not found", nil)
	}
	return nil
}

// DescribeInstanceState returns the current state name of an instance
func (s *Service) DescribeInstanceState(ctx context.Context, instanceID string) (string, error) {
	resp, err := s.client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return "", ClassifyAWSError(err, EC2ResourceType, instanceID)
	}

	if len(resp.Reservations) == 0 || len(resp.Reservations[0].Instances) == 0 {
		return "", NewAWSError(ErrResourceNotFound, EC2ResourceType, instanceID,
			"EC2 instance not found", nil)
	}

	instance := resp.Reservations[0].Instances[0]
	if instance.State == nil {
		return "", nil
	}
	return string(instance.State.Name), nil
}

// StopInstance requests an instance stop
func (s *Service) StopInstance(ctx context.Context, instanceID string) error {
	_, err := s.client.StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return ClassifyAWSError(err, EC2ResourceType, instanceID)
	}
	return nil
}

// TerminateInstance requests an instance termination
func (s *Service) TerminateInstance(ctx context.Context, instanceID string) error {
	_, err := s.client.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return ClassifyAWSError(err, EC2ResourceType, instanceID)
	}
	return nil
}

// WaitUntilStopped polls the instance every interval until it is stopped.
// It returns an ErrWaitTimeout error when timeout elapses first.
func (s *Service) WaitUntilStopped(ctx context.Context, instanceID string, interval, timeout time.Duration) error {
	if interval <= 0 {
		interval = DefaultWaitInterval
	}
	if timeout < interval {
		timeout = interval
	}

	waiter := ec2.NewInstanceStoppedWaiter(s.client, func(o *ec2.InstanceStoppedWaiterOptions) {
		o.MinDelay = interval
		o.MaxDelay = interval
	})

	err := waiter.Wait(ctx, &ec2.DescribeInstancesInput{InstanceIds: []string{instanceID}}, timeout)
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	switch {
	case ctx.Err() != nil:
		return NewAWSError(ErrCanceled, EC2ResourceType, instanceID,
			"stopped waiting: caller context ended", err)
	case errors.As(err, &apiErr):
		return ClassifyAWSError(err, EC2ResourceType, instanceID)
	case strings.Contains(err.Error(), waiterFailureMessage):
		// pending, shutting-down and terminated can never reach stopped
		return NewAWSError(ErrInvalidState, EC2ResourceType, instanceID,
			"instance entered a state that cannot reach stopped", err)
	default:
		return NewAWSError(ErrWaitTimeout, EC2ResourceType, instanceID,
			fmt.Sprintf("instance not stopped within %s", timeout), err)
	}
}
