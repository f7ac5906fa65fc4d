package adapters

import (
	"storybook-generator/application/ports/outbound"
	"sync/atomic"
)

// hostAuthorizer stands in for the host key selection dialog. The client confirms it through the API.
type hostAuthorizer struct {
	granted atomic.Bool
	pending atomic.Bool
	logger  outbound.LoggerPort
}

func NewHostAuthorizer(preAuthorized bool, logger outbound.LoggerPort) outbound.AuthorizationPort {
	a := &hostAuthorizer{logger: logger}
	a.granted.Store(preAuthorized)
	return a
}

func (a *hostAuthorizer) HasAuthorization() bool {
	return a.granted.Load()
}

func (a *hostAuthorizer) RequestAuthorization() {
	a.granted.Store(false)
	if !a.pending.Swap(true) {
		a.logger.Info("Video authorization requested from the host")
	}
}

func (a *hostAuthorizer) Grant() {
	a.pending.Store(false)
	a.granted.Store(true)
}
