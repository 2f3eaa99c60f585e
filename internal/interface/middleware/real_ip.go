package middleware

import (
	"github.com/gin-gonic/gin"
)

const RealIPKey = "real_ip"

// TrustProxies limits which peers may set the client address. Forwarding headers
// are read only from the listed proxies (IPs or CIDRs); with none, the socket
// peer is the client. cloudflare trusts CF-Connecting-IP from any peer, so only
// enable it when the origin is reachable through Cloudflare alone.
func TrustProxies(r *gin.Engine, proxies []string, cloudflare bool) error {
	if len(proxies) == 0 {
		proxies = nil
	}
	if err := r.SetTrustedProxies(proxies); err != nil {
		return err
	}
	if cloudflare {
		r.TrustedPlatform = gin.PlatformCloudflare
	}
	return nil
}

// RealIP stores the client IP, as resolved under TrustProxies, under RealIPKey.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(RealIPKey, c.ClientIP())
		c.Next()
	}
}
