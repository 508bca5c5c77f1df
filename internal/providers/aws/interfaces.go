package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

// EC2ClientAPI defines the EC2 operations remediation needs
//
//go:generate mockery --name=EC2ClientAPI --output=./mocks
type EC2ClientAPI interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	StopInstances(ctx context.Context, params *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
	TerminateInstances(ctx context.Context, params *ec2.TerminateInstancesInput, optFns ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error)
	RevokeSecurityGroupIngress(ctx context.Context, params *ec2.RevokeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.RevokeSecurityGroupIngressOutput, error)
}

// RemediationAPI defines the remediation operations against EC2.
// Returned errors are *Error values.
//
//go:generate mockery --name=RemediationAPI --output=./mocks
type RemediationAPI interface {
	RevokeIngress(ctx context.Context, req RevokeRequest) error
	DescribeInstanceState(ctx context.Context, instanceID string) (string, error)
	StopInstance(ctx context.Context, instanceID string) error
	TerminateInstance(ctx context.Context, instanceID string) error
	WaitUntilStopped(ctx context.Context, instanceID string, interval, timeout time.Duration) error
}
