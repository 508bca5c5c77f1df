package aws_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	awsprovider "autoremediator/internal/providers/aws"
	"autoremediator/internal/providers/aws/mocks"
)

func describeOutput(state types.InstanceStateName) *ec2.DescribeInstancesOutput {
	return &ec2.DescribeInstancesOutput{
		Reservations: []types.Reservation{
			{
				Instances: []types.Instance{
					{
						InstanceId: aws.String("i-1234567890abcdef0"),
						State:      &types.InstanceState{Name: state},
					},
				},
			},
		},
	}
}

func TestRevokeIngress_SingleCIDR(t *testing.T) {
	mockClient := mocks.NewEC2ClientAPI(t)

	mockClient.On("RevokeSecurityGroupIngress",
		mock.Anything,
		mock.MatchedBy(func(input *ec2.RevokeSecurityGroupIngressInput) bool {
			if aws.ToString(input.GroupId) != "sg-123" || len(input.IpPermissions) != 1 {
				return false
			}
			p := input.IpPermissions[0]
			return aws.ToString(p.IpProtocol) == "tcp" &&
				aws.ToInt32(p.FromPort) == 22 &&
				aws.ToInt32(p.ToPort) == 22 &&
				len(p.IpRanges) == 1 &&
				aws.ToString(p.IpRanges[0].CidrIp) == "0.0.0.0/0" &&
				len(p.Ipv6Ranges) == 0
		}),
	).Return(&ec2.RevokeSecurityGroupIngressOutput{Return: aws.Bool(true)}, nil)

	service := awsprovider.NewServiceWithClient(mockClient)
	err := service.RevokeIngress(context.Background(), awsprovider.RevokeRequest{
		GroupID: "sg-123", Protocol: "tcp", FromPort: 22, ToPort: 22, CIDR: "0.0.0.0/0",
	})
	assert.NoError(t, err)
}

func TestRevokeIngress_ByGroupNameIPv6(t *testing.T) {
	mockClient := mocks.NewEC2ClientAPI(t)

	mockClient.On("RevokeSecurityGroupIngress",
		mock.Anything,
		mock.MatchedBy(func(input *ec2.RevokeSecurityGroupIngressInput) bool {
			return input.GroupId == nil &&
				aws.ToString(input.GroupName) == "default" &&
				len(input.IpPermissions[0].Ipv6Ranges) == 1 &&
				aws.ToString(input.IpPermissions[0].Ipv6Ranges[0].CidrIpv6) == "::/0"
		}),
	).Return(&ec2.RevokeSecurityGroupIngressOutput{}, nil)

	service := awsprovider.NewServiceWithClient(mockClient)
	err := service.RevokeIngress(context.Background(), awsprovider.RevokeRequest{
		GroupName: "default", Protocol: "-1", FromPort: 22, ToPort: 22, CIDR: "::/0", IPv6: true,
	})
	assert.NoError(t, err)
}

func TestRevokeIngress_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		output *ec2.RevokeSecurityGroupIngressOutput
		err    error
	}{
		{
			name: "API error code",
			err:  &smithy.GenericAPIError{Code: "InvalidPermission.NotFound", Message: "The specified rule does not exist"},
		},
		{
			name: "unknown permissions in output",
			output: &ec2.RevokeSecurityGroupIngressOutput{
				Return:               aws.Bool(true),
				UnknownIpPermissions: []types.IpPermission{{IpProtocol: aws.String("tcp")}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := mocks.NewEC2ClientAPI(t)
			mockClient.On("RevokeSecurityGroupIngress", mock.Anything, mock.Anything).Return(tt.output, tt.err)

			service := awsprovider.NewServiceWithClient(mockClient)
			err := service.RevokeIngress(context.Background(), awsprovider.RevokeRequest{
				GroupID: "sg-123", Protocol: "tcp", FromPort: 22, ToPort: 22, CIDR: "0.0.0.0/0",
			})

			require.Error(t, err)
			assert.True(t, awsprovider.IsNotFound(err))

			var awsErr *awsprovider.Error
			require.True(t, errors.As(err, &awsErr))
			assert.Equal(t, awsprovider.SecurityGroupResourceType, awsErr.ResourceType)
			assert.Equal(t, "sg-123", awsErr.ResourceID)
		})
	}
}

func TestDescribeInstanceState(t *testing.T) {
	mockClient := mocks.NewEC2ClientAPI(t)

	mockClient.On("DescribeInstances",
		mock.Anything,
		mock.MatchedBy(func(input *ec2.DescribeInstancesInput) bool {
			return len(input.InstanceIds) == 1 && input.InstanceIds[0] == "i-1234567890abcdef0"
		}),
	).Return(describeOutput(types.InstanceStateNameRunning), nil)

	service := awsprovider.NewServiceWithClient(mockClient)
	state, err := service.DescribeInstanceState(context.Background(), "i-1234567890abcdef0")

	assert.NoError(t, err)
	assert.Equal(t, "running", state)
}

func TestDescribeInstanceState_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		output *ec2.DescribeInstancesOutput
		err    error
	}{
		{name: "empty reservations", output: &ec2.DescribeInstancesOutput{}},
		{name: "API error", err: &smithy.GenericAPIError{Code: "InvalidInstanceID.NotFound"}},
		{name: "plain error text", err: errors.New("InvalidInstanceID.NotFound: gone")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := mocks.NewEC2ClientAPI(t)
			mockClient.On("DescribeInstances", mock.Anything, mock.Anything).Return(tt.output, tt.err)

			service := awsprovider.NewServiceWithClient(mockClient)
			_, err := service.DescribeInstanceState(context.Background(), "i-nonexistent")

			var awsErr *awsprovider.Error
			require.True(t, errors.As(err, &awsErr))
			assert.Equal(t, awsprovider.ErrResourceNotFound, awsErr.Category)
			assert.Equal(t, awsprovider.EC2ResourceType, awsErr.ResourceType)
			assert.Equal(t, "i-nonexistent", awsErr.ResourceID)
		})
	}
}

func TestStopAndTerminateInstance(t *testing.T) {
	mockClient := mocks.NewEC2ClientAPI(t)

	mockClient.On("StopInstances",
		mock.Anything,
		mock.MatchedBy(func(input *ec2.StopInstancesInput) bool {
			return len(input.InstanceIds) == 1 && input.InstanceIds[0] == "i-1"
		}),
	).Return(&ec2.StopInstancesOutput{}, nil)
	mockClient.On("TerminateInstances",
		mock.Anything,
		mock.MatchedBy(func(input *ec2.TerminateInstancesInput) bool {
			return len(input.InstanceIds) == 1 && input.InstanceIds[0] == "i-1"
		}),
	).Return(nil, &smithy.GenericAPIError{Code: "UnauthorizedOperation"})

	service := awsprovider.NewServiceWithClient(mockClient)
	assert.NoError(t, service.StopInstance(context.Background(), "i-1"))

	err := service.TerminateInstance(context.Background(), "i-1")
	assert.True(t, awsprovider.IsErrorCategory(err, awsprovider.ErrPermissionDenied))
}

func TestWaitUntilStopped_AlreadyStopped(t *testing.T) {
	mockClient := mocks.NewEC2ClientAPI(t)

	// The waiter passes one extra option function.
	mockClient.On("DescribeInstances", mock.Anything, mock.Anything, mock.Anything).
		Return(describeOutput(types.InstanceStateNameStopped), nil).Once()

	service := awsprovider.NewServiceWithClient(mockClient)
	err := service.WaitUntilStopped(context.Background(), "i-1234567890abcdef0", time.Millisecond, time.Second)
	assert.NoError(t, err)
}

func TestWaitUntilStopped_Timeout(t *testing.T) {
	mockClient := mocks.NewEC2ClientAPI(t)

	mockClient.On("DescribeInstances", mock.Anything, mock.Anything, mock.Anything).
		Return(describeOutput(types.InstanceStateNameStopping), nil)

	service := awsprovider.NewServiceWithClient(mockClient)
	err := service.WaitUntilStopped(context.Background(), "i-1234567890abcdef0", 5*time.Millisecond, 30*time.Millisecond)

	require.Error(t, err)
	assert.True(t, awsprovider.IsErrorCategory(err, awsprovider.ErrWaitTimeout))
}

func TestWaitUntilStopped_UnreachableState(t *testing.T) {
	mockClient := mocks.NewEC2ClientAPI(t)

	mockClient.On("DescribeInstances", mock.Anything, mock.Anything, mock.Anything).
		Return(describeOutput(types.InstanceStateNameTerminated), nil).Once()

	service := awsprovider.NewServiceWithClient(mockClient)
	err := service.WaitUntilStopped(context.Background(), "i-1234567890abcdef0", time.Millisecond, 5*time.Minute)

	require.Error(t, err)
	assert.True(t, awsprovider.IsErrorCategory(err, awsprovider.ErrInvalidState))
	assert.False(t, awsprovider.IsErrorCategory(err, awsprovider.ErrWaitTimeout))
}

func TestWaitUntilStopped_CallerDeadline(t *testing.T) {
	mockClient := mocks.NewEC2ClientAPI(t)

	mockClient.On("DescribeInstances", mock.Anything, mock.Anything, mock.Anything).
		Return(describeOutput(types.InstanceStateNameStopping), nil).Maybe()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	service := awsprovider.NewServiceWithClient(mockClient)
	err := service.WaitUntilStopped(ctx, "i-1234567890abcdef0", 5*time.Millisecond, 5*time.Minute)

	require.Error(t, err)
	assert.True(t, awsprovider.IsErrorCategory(err, awsprovider.ErrCanceled))
}
