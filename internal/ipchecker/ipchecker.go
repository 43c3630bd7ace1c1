// Package ipchecker guards operational endpoints by client address.
// The connection peer is authoritative. X-Real-IP and X-Forwarded-For are
// read only when the peer itself lies inside the trusted subnet, i.e. it is
// a reverse proxy of the deployment.
package ipchecker

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/favaddr/internal/logger"
	"github.com/patric-chuzhbe/favaddr/internal/models"
)

type IPChecker struct {
	trustedSubnet netip.Prefix
	enabled       bool
}

// New parses trustedSubnet in CIDR notation. An empty subnet trusts nobody.
func New(trustedSubnet string) (*IPChecker, error) {
	if trustedSubnet == "" {
		return &IPChecker{}, nil
	}

	prefix, err := netip.ParsePrefix(trustedSubnet)
	if err != nil {
		return nil, fmt.Errorf("in internal/ipchecker/ipchecker.go/New(): error while `netip.ParsePrefix()` calling: %w", err)
	}

	return &IPChecker{
		trustedSubnet: prefix.Masked(),
		enabled:       true,
	}, nil
}

// Check reports whether addr lies inside the trusted subnet.
func (checker *IPChecker) Check(addr netip.Addr) bool {
	return checker.enabled && checker.trustedSubnet.Contains(addr.Unmap())
}

// ClientIP extracts the client address of the request. Forwarding headers
// sent by a peer outside the trusted subnet are ignored.
func (checker *IPChecker) ClientIP(request *http.Request) (netip.Addr, error) {
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("in internal/ipchecker/ipchecker.go/ClientIP(): error while `net.SplitHostPort()` calling: %w", err)
	}
	peer, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("in internal/ipchecker/ipchecker.go/ClientIP(): error while `netip.ParseAddr()` calling: %w", err)
	}

	if !checker.Check(peer) {
		return peer, nil
	}

	if realIP := strings.TrimSpace(request.Header.Get("X-Real-IP")); realIP != "" {
		addr, err := netip.ParseAddr(realIP)
		if err != nil {
			return netip.Addr{}, fmt.Errorf("in internal/ipchecker/ipchecker.go/ClientIP(): error while `netip.ParseAddr()` calling: %w", err)
		}
		return addr, nil
	}

	// the last hop is the one appended by the trusted proxy
	if xff := request.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		addr, err := netip.ParseAddr(strings.TrimSpace(hops[len(hops)-1]))
		if err != nil {
			return netip.Addr{}, fmt.Errorf("in internal/ipchecker/ipchecker.go/ClientIP(): error while `netip.ParseAddr()` calling: %w", err)
		}
		return addr, nil
	}

	return peer, nil
}

// TrustedOnly answers 403 to every request coming from outside the subnet.
func (checker *IPChecker) TrustedOnly(h http.Handler) http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		addr, err := checker.ClientIP(request)
		if err != nil || !checker.Check(addr) {
			logger.Log.Debugw("untrusted client rejected",
				zap.String("remote_addr", request.RemoteAddr),
				zap.Error(err),
			)
			response.Header().Set("Content-Type", "application/json")
			response.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(response).Encode(models.ErrorResponse{Message: "Forbidden"})
			return
		}

		h.ServeHTTP(response, request)
	})
}
