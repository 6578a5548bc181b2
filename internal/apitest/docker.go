package apitest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

// SkipWithoutDocker skips t in short mode or when no docker host answers a ping.
func SkipWithoutDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	if err := pingDocker(); err != nil {
		t.Skipf("skipping container test, docker unavailable with error=%s", err)
	}
}

// pingDocker recovers the panic testcontainers raises when it finds no docker host.
func pingDocker() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docker host lookup panicked: %v", r)
		}
	}()

	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := testcontainers.NewDockerClientWithOpts(c)
	if err != nil {
		return err
	}
	defer client.Close()
	_, err = client.Ping(c)
	return err
}
