package freedvtnc

/*------------------------------------------------------------------
 *
 * Purpose:   	Announce the command channel using DNS-SD
 *
 * Description:
 *
 *     Most people have typed in enough IP addresses and ports by now, and
 *     would rather just select an available TNC that is automatically
 *     discovered on the local network.
 *
 *     This uses the pure-Go github.com/brutella/dnssd package for
 *     cross-platform mDNS/DNS-SD service announcement without requiring
 *     any system daemon or C library dependencies.
 */

import (
	"context"
	"fmt"
	"os"

	"github.com/brutella/dnssd"
	"github.com/charmbracelet/log"
)

const DNS_SD_SERVICE = "_freedvtnc-cmd._tcp"

// dnsSDDefaultName is "FreeDV TNC on <hostname>".
func dnsSDDefaultName() string {
	var host, err = os.Hostname()
	if err != nil || host == "" {
		return "FreeDV TNC"
	}

	return "FreeDV TNC on " + host
}

// AnnounceCommandPort advertises port until ctx is cancelled.
// The responder runs in its own goroutine; setup errors are returned.
func AnnounceCommandPort(ctx context.Context, name string, port int, logger *log.Logger) error {
	if name == "" {
		name = dnsSDDefaultName()
	}

	var cfg = dnssd.Config{ //nolint:exhaustruct
		Name: name,
		Type: DNS_SD_SERVICE,
		Port: port,
	}

	var sv, svErr = dnssd.NewService(cfg)
	if svErr != nil {
		return fmt.Errorf("DNS-SD: failed to create service: %w", svErr)
	}

	var rp, rpErr = dnssd.NewResponder()
	if rpErr != nil {
		return fmt.Errorf("DNS-SD: failed to create responder: %w", rpErr)
	}

	var _, addErr = rp.Add(sv)
	if addErr != nil {
		return fmt.Errorf("DNS-SD: failed to add service: %w", addErr)
	}

	logger.Info("DNS-SD: announcing command port", "port", port, "name", name)

	go func() {
		var respondErr = rp.Respond(ctx)
		if respondErr != nil && ctx.Err() == nil {
			logger.Error("DNS-SD: responder error", "err", respondErr)
		}
	}()

	return nil
}
