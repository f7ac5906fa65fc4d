package config

import "time"

type VideoConfig struct {
	PollInterval time.Duration
	// Authorized pre-confirms the host dialog, for keys known to have video access.
	Authorized bool
}

func GetVideoConfig() (*VideoConfig, error) {
	pollInterval, err := getDurationEnv("VIDEO_POLL_INTERVAL", 10*time.Second)
	if err != nil {
		return nil, err
	}
	authorized, err := getBoolEnv("VIDEO_AUTHORIZED", false)
	if err != nil {
		return nil, err
	}
	return &VideoConfig{
		PollInterval: pollInterval,
		Authorized:   authorized,
	}, nil
}
