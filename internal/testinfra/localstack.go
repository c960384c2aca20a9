// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultLocalStackImage is pinned so the S3 and SQS wire behavior is stable.
	DefaultLocalStackImage = "localstack/localstack:3.0"

	// LocalStackPort is the edge port for every emulated service.
	LocalStackPort = "4566"

	// LocalStackRegion is the region both the container and the clients use.
	LocalStackRegion = "us-east-1"

	// LocalStackEndpointEnvVar points tests at an already running LocalStack.
	LocalStackEndpointEnvVar = "LOCALSTACK_ENDPOINT"
)

// LocalStack is a running LocalStack with S3 and SQS.
type LocalStack struct {
	Container testcontainers.Container
	Endpoint  string
}

// Credentials returns the static credentials LocalStack accepts.
func (l *LocalStack) Credentials() func(*awsconfig.LoadOptions) error {
	return awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", ""))
}

// StartLocalStack starts LocalStack, or reuses LOCALSTACK_ENDPOINT when set.
// The container is terminated when the test finishes.
func StartLocalStack(t *testing.T) *LocalStack {
	t.Helper()

	if endpoint := os.Getenv(LocalStackEndpointEnvVar); endpoint != "" {
		return &LocalStack{Endpoint: endpoint}
	}
	SkipIfNoDocker(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        DefaultLocalStackImage,
			ExposedPorts: []string{LocalStackPort + "/tcp"},
			Env: map[string]string{
				"SERVICES":              "s3,sqs",
				"DEFAULT_REGION":        LocalStackRegion,
				"EAGER_SERVICE_LOADING": "1",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(LocalStackPort+"/tcp"),
				wait.ForHTTP("/_localstack/health").WithPort(LocalStackPort+"/tcp"),
			).WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start localstack container: %v", err)
	}
	t.Cleanup(func() { CleanupContainer(t, container) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, LocalStackPort)
	if err != nil {
		t.Fatalf("get mapped port: %v", err)
	}

	return &LocalStack{
		Container: container,
		Endpoint:  fmt.Sprintf("http://%s:%s", host, port.Port()),
	}
}
