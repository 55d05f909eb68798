package services

import (
	"strings"

	"github.com/mssola/useragent"

	"github.com/AnshRaj112/authgate-backend/internal/models"
)

// ParseLoginMeta derives browser, OS and device from a User-Agent header.
// Unknown parts keep the defaults of models.DefaultLoginMeta.
func ParseLoginMeta(ip, userAgent string) models.LoginMeta {
	meta := models.DefaultLoginMeta()
	if ip != "" {
		meta.IP = ip
	}
	if strings.TrimSpace(userAgent) == "" {
		return meta
	}
	meta.UserAgent = userAgent

	ua := useragent.New(userAgent)

	if name, version := ua.Browser(); name != "" {
		meta.Browser = strings.TrimSpace(name + " " + version)
	}

	osInfo := ua.OSInfo()
	if osInfo.Name != "" {
		meta.OS = strings.TrimSpace(osInfo.Name + " " + osInfo.Version)
	}

	switch {
	case ua.Bot():
		meta.Device = "Bot"
	case isTablet(userAgent):
		meta.Device = "Tablet"
	case ua.Mobile():
		meta.Device = "Mobile"
	}
	return meta
}

func isTablet(userAgent string) bool {
	lower := strings.ToLower(userAgent)
	return strings.Contains(lower, "ipad") ||
		(strings.Contains(lower, "android") && !strings.Contains(lower, "mobile"))
}
