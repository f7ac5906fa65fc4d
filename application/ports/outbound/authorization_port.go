package outbound

// AuthorizationPort is the host capability that gates premium (video) generation.
type AuthorizationPort interface {
	HasAuthorization() bool
	RequestAuthorization()
	// Grant records that the host selection dialog was confirmed.
	Grant()
}
