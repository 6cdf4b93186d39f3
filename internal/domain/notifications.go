package domain

import (
	"strings"
	"time"
)

type DevicePlatform string

const (
	PlatformAndroid DevicePlatform = "android"
	PlatformIOS     DevicePlatform = "ios"
)

func ParseDevicePlatform(s string) (DevicePlatform, bool) {
	switch p := DevicePlatform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformAndroid, PlatformIOS:
		return p, true
	default:
		return "", false
	}
}

// DeviceToken is a push registration used to deliver friend-invitation notices.
type DeviceToken struct {
	UserID    string         `json:"-"`
	Token     string         `json:"token"`
	Platform  DevicePlatform `json:"platform"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
