//go:build integration

package probe

import (
	"context"
	"os"
	"testing"
	"time"
)

const (
	dockerEnv = "/.dockerenv"
	podmanEnv = "/run/.containerenv"
)

// isContainerEnv reports whether the tests run inside of a container, where
// the services are reachable by their compose service names.
func isContainerEnv() bool {
	if _, err := os.Stat(dockerEnv); err == nil {
		return true
	} else if _, err := os.Stat(podmanEnv); err == nil {
		return true
	}

	return false
}

// svcHost returns either hostAddr or containerAddr
// depending on the current execution environment.
func svcHost(hostAddr, containerAddr string) string {
	if isContainerEnv() {
		return containerAddr
	}

	return hostAddr
}

// svcPort returns either hostPort or containerPort
// depending on the current execution environment.
func svcPort(hostPort, containerPort uint) uint {
	if isContainerEnv() {
		return containerPort
	}

	return hostPort
}

func integrationContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}
